// cmd/browse/seller.go
package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
)

// sellerAPI is the part of the API client used by the write commands.
type sellerAPI interface {
	SubmitReview(ctx context.Context, kind domain.ItemKind, itemID string, rating int, comment string) (*domain.ReviewSummary, error)
	PublishProduct(ctx context.Context, id string) ([]domain.Product, error)
	DeleteProduct(ctx context.Context, id string, permanent bool) ([]domain.Product, error)
}

var (
	reviewComment   string
	deletePermanent bool
)

var reviewCmd = &cobra.Command{
	Use:     "review <product|course> <item-id> <rating>",
	Short:   "Submit a review for a product or course",
	Example: `  browse review course 6f1c... 5 --comment "Patient instructor" --user u-42`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return runReview(cmd.Context(), client, args, reviewComment, cmd.OutOrStdout())
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish <product-id>",
	Short: "Publish one of your draft products",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		products, err := client.PublishProduct(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printCollection(cmd.OutOrStdout(), products)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <product-id>",
	Short: "Delete one of your products",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		products, err := client.DeleteProduct(cmd.Context(), args[0], deletePermanent)
		if err != nil {
			return err
		}
		printCollection(cmd.OutOrStdout(), products)
		return nil
	},
}

func init() {
	reviewCmd.Flags().StringVar(&reviewComment, "comment", "", "Review text")
	deleteCmd.Flags().BoolVar(&deletePermanent, "permanent", false, "Remove the product instead of hiding it")
}

func runReview(ctx context.Context, api sellerAPI, args []string, comment string, w io.Writer) error {
	kind, ok := domain.ParseItemKind(args[0])
	if !ok {
		return fmt.Errorf("item kind must be product or course, got %q", args[0])
	}
	rating, err := strconv.Atoi(args[2])
	if err != nil || rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be a whole number from 1 to 5")
	}

	summary, err := api.SubmitReview(ctx, kind, args[1], rating, comment)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Thanks! The %s now averages %.1f from %d reviews.\n", kind, summary.Average, summary.Count)
	return nil
}

// printCollection shows the seller's products as returned after a change.
func printCollection(w io.Writer, products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "You have no products.")
		return
	}
	for _, p := range products {
		fmt.Fprintf(w, "%s  %-9s  %s\n", p.ID, p.Status, p.Name)
	}
}
