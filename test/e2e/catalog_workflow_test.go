//go:build e2e
// +build e2e

package e2e_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/cultureconnect-be/internal/adapters/db"
	redis_a "github.com/ammerola/cultureconnect-be/internal/adapters/redis_adapter"
	"github.com/ammerola/cultureconnect-be/internal/adapters/events"
	"github.com/ammerola/cultureconnect-be/internal/adapters/storage"
	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/services"
	"github.com/ammerola/cultureconnect-be/internal/handlers"
	"github.com/ammerola/cultureconnect-be/internal/handlers/middleware"
	"github.com/ammerola/cultureconnect-be/test/helpers"
)

type CatalogE2ESuite struct {
	suite.Suite
	server    *httptest.Server
	client    *http.Client
	baseURL   string
	testDB    *helpers.TestDB
	testRedis *helpers.TestRedis
	tasks     *asynq.Client
	products  []domain.Product
}

type productPage struct {
	Success    bool             `json:"success"`
	Items      []domain.Product `json:"items"`
	Page       int              `json:"page"`
	TotalCount int              `json:"total_count"`
	TotalPages int              `json:"total_pages"`
	HasNext    bool             `json:"has_next"`
	Empty      bool             `json:"empty"`
}

func (s *CatalogE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())
	s.tasks = asynq.NewClient(asynq.RedisClientOpt{Addr: s.testRedis.Server.Addr()})

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"
}

func (s *CatalogE2ESuite) TearDownSuite() {
	s.server.Close()
	s.tasks.Close()
}

func (s *CatalogE2ESuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
	s.testRedis.Server.FlushAll()

	s.products = helpers.CreateTestProducts(30)
	repo := db.NewProductRepository(s.testDB.Database, helpers.TestLogger())
	n, err := repo.UpsertBatch(context.Background(), s.products)
	s.Require().NoError(err)
	s.Require().Equal(len(s.products), n)
}

func (s *CatalogE2ESuite) TestBrowseWorkflow() {
	// 1. First page, newest first
	var page productPage
	resp := s.makeRequest(http.MethodGet, "/products?page_size=12", nil, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &page)

	s.Equal(30, page.TotalCount)
	s.Equal(3, page.TotalPages)
	s.Len(page.Items, 12)
	s.True(page.HasNext)
	for i := 1; i < len(page.Items); i++ {
		s.False(page.Items[i].CreatedAt.After(page.Items[i-1].CreatedAt), "newest first")
	}

	// 2. Last page is partial
	resp = s.makeRequest(http.MethodGet, "/products?page_size=12&page=3", nil, "")
	s.decodeResponse(resp, &page)
	s.Len(page.Items, 6)
	s.False(page.HasNext)

	// 3. Filters narrow the total and reset to what matches
	resp = s.makeRequest(http.MethodGet, "/products?category=pottery&max_price=1000&sort=price-asc&page_size=all", nil, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &page)
	s.NotEmpty(page.Items)
	for i, p := range page.Items {
		s.Equal(domain.CategoryPottery, p.Category)
		s.True(p.Price.LessThanOrEqual(decimal.NewFromInt(1000)))
		if i > 0 {
			s.True(p.Price.GreaterThanOrEqual(page.Items[i-1].Price), "ascending price")
		}
	}

	// 4. Nothing matches
	resp = s.makeRequest(http.MethodGet, "/products?min_price=100000", nil, "")
	s.decodeResponse(resp, &page)
	s.True(page.Empty)
	s.Equal(0, page.TotalCount)

	// 5. Unknown filter values are rejected
	resp = s.makeRequest(http.MethodGet, "/products?category=spaceships", nil, "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// 6. Single product
	target := s.products[0]
	resp = s.makeRequest(http.MethodGet, "/products/"+target.ID.String(), nil, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	var got struct {
		Item domain.Product `json:"item"`
	}
	s.decodeResponse(resp, &got)
	s.Equal(target.Name, got.Item.Name)
}

func (s *CatalogE2ESuite) TestSellerWorkflow() {
	const seller = "seller-e2e"

	// 1. Create a draft
	form := url.Values{
		"name":         {"Kalamkari Wall Hanging"},
		"description":  {"Block printed with vegetable dyes"},
		"category":     {"textiles"},
		"condition":    {"handmade"},
		"availability": {"in_stock"},
		"price":        {"2400"},
		"currency":     {"INR"},
	}
	resp := s.makeRequest(http.MethodPost, "/seller/products", strings.NewReader(form.Encode()), seller)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var created struct {
		Item  domain.Product   `json:"item"`
		Items []domain.Product `json:"items"`
	}
	s.decodeResponse(resp, &created)
	s.Equal(domain.StatusDraft, created.Item.Status)
	s.Len(created.Items, 1)
	id := created.Item.ID.String()

	// 2. Drafts stay out of the public list and cannot be reviewed
	s.Equal(30, s.publicCount())
	draftReview := url.Values{"item_kind": {"product"}, "item_id": {id}, "rating": {"5"}}
	resp = s.makeRequest(http.MethodPost, "/reviews", strings.NewReader(draftReview.Encode()), "buyer-1")
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// 3. Another seller may not publish it
	resp = s.makeRequest(http.MethodPost, "/seller/products/"+id+"/publish", nil, "someone-else")
	s.Equal(http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// 4. Publish
	resp = s.makeRequest(http.MethodPost, "/seller/products/"+id+"/publish", nil, seller)
	s.Equal(http.StatusOK, resp.StatusCode)
	var collection struct {
		Items []domain.Product `json:"items"`
	}
	s.decodeResponse(resp, &collection)
	s.Require().Len(collection.Items, 1)
	s.Equal(domain.StatusPublished, collection.Items[0].Status)
	s.Equal(31, s.publicCount())

	// 5. Review it
	review := url.Values{
		"item_kind": {"product"},
		"item_id":   {id},
		"rating":    {"4"},
		"comment":   {"Colours are even better in person"},
	}
	resp = s.makeRequest(http.MethodPost, "/reviews", strings.NewReader(review.Encode()), "buyer-1")
	s.Equal(http.StatusCreated, resp.StatusCode)
	var submitted struct {
		Summary domain.ReviewSummary `json:"summary"`
	}
	s.decodeResponse(resp, &submitted)
	s.Equal(1, submitted.Summary.Count)
	s.InDelta(4.0, submitted.Summary.Average, 0.001)

	// 6. Delete hides it again
	resp = s.makeRequest(http.MethodPost, "/seller/products/"+id+"/delete", nil, seller)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	s.Equal(30, s.publicCount())

	resp = s.makeRequest(http.MethodGet, "/products/"+id, nil, "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest(http.MethodPost, "/reviews", strings.NewReader(draftReview.Encode()), "buyer-2")
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (s *CatalogE2ESuite) TestSellerRequiresIdentity() {
	resp := s.makeRequest(http.MethodGet, "/seller/products", nil, "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func (s *CatalogE2ESuite) TestExportMatchesFilters() {
	resp := s.makeRequest(http.MethodGet, "/export/products.xlsx?category=jewelry", nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	wb, err := xlsx.OpenBinary(body)
	s.Require().NoError(err)
	s.Require().NotEmpty(wb.Sheets)

	want := 0
	for _, p := range s.products {
		if p.Category == domain.CategoryJewelry {
			want++
		}
	}
	// header row plus one row per product
	s.Equal(want+1, wb.Sheets[0].MaxRow)
}

func (s *CatalogE2ESuite) TestConcurrentRequests() {
	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("/products?page=%d&page_size=5&sort=rating-desc", i%6+1)
			resp, err := s.client.Get(s.baseURL + path)
			if err != nil {
				errs <- err
				return
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				errs <- fmt.Errorf("%s: status %d", path, resp.StatusCode)
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}
}

func (s *CatalogE2ESuite) TestHealthCheck() {
	resp, err := s.client.Get(s.server.URL + "/health")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	s.NoError(json.NewDecoder(resp.Body).Decode(&health))
	s.Equal("healthy", health["status"])
}

func (s *CatalogE2ESuite) publicCount() int {
	var page productPage
	resp := s.makeRequest(http.MethodGet, "/products?page_size=all", nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &page)
	return page.TotalCount
}

func (s *CatalogE2ESuite) startTestServer() *httptest.Server {
	cfg := helpers.LoadTestConfig()
	logger := helpers.TestLogger()

	products := db.NewProductRepository(s.testDB.Database, logger)
	courses := db.NewCourseRepository(s.testDB.Database, logger)
	reviews := db.NewReviewRepository(s.testDB.Database, logger)
	showcase := db.NewShowcaseRepository(s.testDB.Database, logger)
	jobs := db.NewJobRepository(s.testDB.Database, logger)

	cache := redis_a.NewCache(s.testRedis.Client, time.Minute, logger)
	store := storage.NewLocalStorage(s.T().TempDir(), logger)
	publisher := events.NewNoopPublisher(logger)

	catalog, err := services.NewCatalogService(products, courses, cache, services.CatalogOptions{
		CacheTTL: cfg.Catalog.CacheTTL,
		MemoSize: cfg.Catalog.MemoSize,
	}, logger)
	s.Require().NoError(err)

	limits := handlers.ListLimits{
		DefaultPageSize: cfg.Catalog.DefaultPageSize,
		MaxPageSize:     cfg.Catalog.MaxPageSize,
	}
	catalogHandler := handlers.NewCatalogHandler(catalog, limits, logger)
	reviewHandler := handlers.NewReviewHandler(
		services.NewReviewService(reviews, catalog, s.tasks, publisher, logger), logger)
	sellerHandler := handlers.NewSellerHandler(
		services.NewSellerService(products, store, catalog, publisher, 5<<20, logger), 30<<20, logger)
	showcaseHandler := handlers.NewShowcaseHandler(
		services.NewShowcaseService(showcase, cache, cfg.Catalog.FeaturedLimit, cfg.Catalog.CacheTTL, logger), logger)
	exportHandler := handlers.NewExportHandler(catalog, limits, logger)
	importHandler := handlers.NewImportHandler(store, jobs, s.tasks, 100<<20, 50<<20, logger)
	healthHandler := handlers.NewHealthHandler(s.testDB.Database, s.testRedis.Client, nil, "test", "test", logger)

	const api = "/api/v1"
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET "+api+"/products", catalogHandler.ListProducts)
	mux.HandleFunc("GET "+api+"/products/{id}", catalogHandler.GetProduct)
	mux.HandleFunc("GET "+api+"/courses", catalogHandler.ListCourses)
	mux.HandleFunc("GET "+api+"/courses/{id}", catalogHandler.GetCourse)
	mux.HandleFunc("GET "+api+"/showcase", showcaseHandler.Featured)
	mux.HandleFunc("GET "+api+"/reviews", reviewHandler.List)
	mux.HandleFunc("POST "+api+"/reviews", reviewHandler.Submit)
	mux.HandleFunc("GET "+api+"/seller/products", sellerHandler.ListOwn)
	mux.HandleFunc("POST "+api+"/seller/products", sellerHandler.CreateDraft)
	mux.HandleFunc("POST "+api+"/seller/products/{id}/publish", sellerHandler.Publish)
	mux.HandleFunc("POST "+api+"/seller/products/{id}/delete", sellerHandler.Delete)
	mux.HandleFunc("GET "+api+"/export/products.xlsx", exportHandler.ExportProducts)
	mux.HandleFunc("POST "+api+"/import/catalog", importHandler.ImportCatalog)
	mux.HandleFunc("GET "+api+"/import/status/{jobId}", importHandler.ImportStatus)

	handler := middleware.Chain(mux,
		middleware.Recovery(logger),
		middleware.RequestID(cfg.Security.RequestIDHeader),
		middleware.Identity(cfg.Security.UserIDHeader),
	)
	return httptest.NewServer(handler)
}

func (s *CatalogE2ESuite) makeRequest(method, path string, body io.Reader, userID string) *http.Response {
	req, err := http.NewRequest(method, s.baseURL+path, body)
	s.Require().NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *CatalogE2ESuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(v))
}

func TestCatalogE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(CatalogE2ESuite))
}
