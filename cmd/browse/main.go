// cmd/browse/main.go
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ammerola/cultureconnect-be/internal/adapters/apiclient"
	"github.com/ammerola/cultureconnect-be/internal/pkg/logger"
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the CultureConnect catalog from a terminal",
	Long: `browse talks to the CultureConnect item API the way the web client does.

List commands fetch the whole collection once and filter, sort and
paginate it locally. The showcase command rotates the featured slides.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("api", "http://localhost:8080", "Base URL of the item API")
	flags.String("user", "", "User ID sent as X-User-ID for seller and review commands")
	flags.Duration("timeout", 10*time.Second, "Per-request timeout")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")

	// flags win over the environment
	_ = viper.BindPFlag("api_url", flags.Lookup("api"))
	_ = viper.BindPFlag("user_id", flags.Lookup("user"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindEnv("api_url", "CULTURECONNECT_API_URL")
	_ = viper.BindEnv("user_id", "CULTURECONNECT_USER_ID")
	_ = viper.BindEnv("timeout", "CLIENT_TIMEOUT")

	rootCmd.AddCommand(productsCmd, coursesCmd, showcaseCmd, reviewCmd, publishCmd, deleteCmd)
}

// newClient builds an API client from flags and environment.
func newClient() (*apiclient.Client, error) {
	log := logger.New(logger.Options{
		Level:  viper.GetString("log_level"),
		Format: "text",
		Output: os.Stderr,
	})
	return apiclient.New(apiclient.Config{
		BaseURL:     viper.GetString("api_url"),
		UserID:      strings.TrimSpace(viper.GetString("user_id")),
		Timeout:     viper.GetDuration("timeout"),
		MaxFailures: 3,
		OpenTimeout: 30 * time.Second,
	}, nil, log)
}

// describe turns client errors into messages for the terminal.
func describe(err error) string {
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &apiErr):
		return fmt.Sprintf("request failed: %s", apiErr.Message)
	case errors.Is(err, apiclient.ErrCircuitOpen):
		return "the API is unavailable right now, try again later"
	default:
		return err.Error()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}
