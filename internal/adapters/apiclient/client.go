// internal/adapters/apiclient/client.go
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
)

// ErrCircuitOpen is returned while the breaker rejects requests.
var ErrCircuitOpen = gobreaker.ErrOpenState

// APIError is a failed call: a non-2xx status or success:false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: %s (status %d)", e.Message, e.StatusCode)
}

// Config holds client settings
type Config struct {
	BaseURL     string
	UserID      string
	Timeout     time.Duration
	MaxFailures uint32        // consecutive failures that open the breaker
	OpenTimeout time.Duration // how long the breaker stays open
}

// Client talks to the CultureConnect item API. Requests are never retried.
type Client struct {
	base    *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	userID  string
	logger  *slog.Logger
}

// New creates a client. A nil httpClient gets a default one with cfg.Timeout.
func New(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}

	logger = logger.With(slog.String("client", "api"))
	settings := gobreaker.Settings{
		Name:        "cultureconnect-api",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		// 4xx and success:false are answers, not outages
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			return err == nil || (errors.As(err, &apiErr) && apiErr.StatusCode < 500)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &Client{
		base:    base,
		http:    httpClient,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		userID:  cfg.UserID,
		logger:  logger,
	}, nil
}

// State reports the breaker state
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Products fetches the whole public product collection
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	dtos, err := getList[ProductDTO](ctx, c, "/api/v1/products", url.Values{"page_size": {"all"}})
	if err != nil {
		return nil, err
	}
	return productsFromDTO(dtos), nil
}

// Courses fetches the whole course collection
func (c *Client) Courses(ctx context.Context) ([]domain.Course, error) {
	dtos, err := getList[CourseDTO](ctx, c, "/api/v1/courses", url.Values{"page_size": {"all"}})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Course, len(dtos))
	for i, d := range dtos {
		out[i] = d.ToDomain()
	}
	return out, nil
}

// Showcase fetches the live carousel slides
func (c *Client) Showcase(ctx context.Context) ([]domain.ShowcaseSlide, error) {
	dtos, err := getList[SlideDTO](ctx, c, "/api/v1/showcase", nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ShowcaseSlide, len(dtos))
	for i, d := range dtos {
		out[i] = d.ToDomain()
	}
	return out, nil
}

// SubmitReview posts a review and returns the item's refreshed summary
func (c *Client) SubmitReview(ctx context.Context, kind domain.ItemKind, itemID string, rating int, comment string) (*domain.ReviewSummary, error) {
	form := url.Values{
		"item_kind": {string(kind)},
		"item_id":   {itemID},
		"rating":    {strconv.Itoa(rating)},
		"comment":   {comment},
	}
	body, err := c.do(ctx, http.MethodPost, "/api/v1/reviews", nil, form)
	if err != nil {
		return nil, err
	}
	var resp reviewEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode review response: %w", err)
	}
	return &resp.Summary, nil
}

// PublishProduct publishes a draft and returns the seller's collection
func (c *Client) PublishProduct(ctx context.Context, id string) ([]domain.Product, error) {
	return c.sellerMutation(ctx, "/api/v1/seller/products/"+url.PathEscape(id)+"/publish", url.Values{})
}

// DeleteProduct deletes a product and returns the seller's collection
func (c *Client) DeleteProduct(ctx context.Context, id string, permanent bool) ([]domain.Product, error) {
	return c.sellerMutation(ctx, "/api/v1/seller/products/"+url.PathEscape(id)+"/delete",
		url.Values{"permanent": {strconv.FormatBool(permanent)}})
}

func (c *Client) sellerMutation(ctx context.Context, path string, form url.Values) ([]domain.Product, error) {
	body, err := c.do(ctx, http.MethodPost, path, nil, form)
	if err != nil {
		return nil, err
	}
	var resp listEnvelope[ProductDTO]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode product collection: %w", err)
	}
	return productsFromDTO(resp.Items), nil
}

func productsFromDTO(dtos []ProductDTO) []domain.Product {
	out := make([]domain.Product, len(dtos))
	for i, d := range dtos {
		out[i] = d.ToDomain()
	}
	return out
}

func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	var resp listEnvelope[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return resp.Items, nil
}

func (c *Client) do(ctx context.Context, method, path string, query, form url.Values) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.send(ctx, method, path, query, form)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrCircuitOpen)
	}
	return body, err
}

func (c *Client) send(ctx context.Context, method, path string, query, form url.Values) ([]byte, error) {
	u := *c.base
	u.Path += path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader = http.NoBody
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Error
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.logger.DebugContext(ctx, "api call failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if env.Success != nil && !*env.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Error}
	}
	return body, nil
}
