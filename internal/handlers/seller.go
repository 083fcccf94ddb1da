// internal/handlers/seller.go
package handlers

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/internal/pkg/validator"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// SellerHandler handles a seller's own product collection
type SellerHandler struct {
	responder
	service      ports.SellerService
	maxBodyBytes int64
}

// NewSellerHandler creates a new seller handler. maxBodyBytes bounds the
// size of a draft request including its images.
func NewSellerHandler(service ports.SellerService, maxBodyBytes int64, logger *slog.Logger) *SellerHandler {
	return &SellerHandler{
		responder:    responder{logger: logger.With(slog.String("handler", "seller"))},
		service:      service,
		maxBodyBytes: maxBodyBytes,
	}
}

// DraftRequest is the form of a product draft
type DraftRequest struct {
	Name         string `form:"name" validate:"required,max=200"`
	Description  string `form:"description" validate:"max=5000"`
	Category     string `form:"category" validate:"omitempty,oneof=handicrafts textiles paintings pottery jewelry instruments books sculpture other"`
	Condition    string `form:"condition" validate:"omitempty,oneof=new handmade vintage antique pre_owned unspecified"`
	Availability string `form:"availability" validate:"omitempty,oneof=in_stock made_to_order out_of_stock"`
	Price        string `form:"price" validate:"omitempty,numeric"`
	Currency     string `form:"currency" validate:"omitempty,iso4217"`
}

// ToDomain converts the request into a service draft
func (req *DraftRequest) ToDomain(images []ports.ImageUpload) ports.ProductDraft {
	price := decimal.Zero
	if req.Price != "" {
		price, _ = decimal.NewFromString(req.Price)
	}
	return ports.ProductDraft{
		Name:         req.Name,
		Description:  req.Description,
		Category:     domain.ProductCategory(req.Category),
		Condition:    domain.ProductCondition(req.Condition),
		Availability: domain.Availability(req.Availability),
		Price:        price,
		Currency:     req.Currency,
		Images:       images,
	}
}

// ListOwn handles GET /api/v1/seller/products
func (h *SellerHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	products, err := h.service.ListOwn(r.Context(), sellerID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list products")
		return
	}

	h.respondJSON(w, http.StatusOK, newItemsResponse(products))
}

// CreateDraft handles POST /api/v1/seller/products
func (h *SellerHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	draft, cleanup, err := h.parseDraft(w, r)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create draft")
		return
	}
	defer cleanup()

	product, all, err := h.service.CreateDraft(r.Context(), sellerID, draft)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create draft")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"item":    product,
		"items":   all,
	})
}

// UpdateDraft handles POST /api/v1/seller/products/{id}
func (h *SellerHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	draft, cleanup, err := h.parseDraft(w, r)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update product")
		return
	}
	defer cleanup()

	product, all, err := h.service.UpdateDraft(r.Context(), sellerID, id, draft)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update product")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"item":    product,
		"items":   all,
	})
}

// Publish handles POST /api/v1/seller/products/{id}/publish
func (h *SellerHandler) Publish(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	all, err := h.service.Publish(r.Context(), sellerID, id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to publish product")
		return
	}

	h.respondJSON(w, http.StatusOK, newItemsResponse(all))
}

// Delete handles POST /api/v1/seller/products/{id}/delete
func (h *SellerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	permanent := false
	if v := r.FormValue("permanent"); v != "" {
		permanent, err = strconv.ParseBool(v)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "permanent must be true or false")
			return
		}
	}

	all, err := h.service.Delete(r.Context(), sellerID, id, permanent)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to delete product")
		return
	}

	h.logger.InfoContext(r.Context(), "product deleted",
		slog.String("product_id", id.String()),
		slog.Bool("permanent", permanent))

	h.respondJSON(w, http.StatusOK, newItemsResponse(all))
}

// parseDraft reads a url-encoded or multipart draft form. The returned
// cleanup closes uploaded files and must be called once the draft has been
// handled.
func (h *SellerHandler) parseDraft(w http.ResponseWriter, r *http.Request) (ports.ProductDraft, func(), error) {
	noop := func() {}
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	isMultipart := strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
	var err error
	if isMultipart {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ports.ProductDraft{}, noop, &domain.ValidationError{Field: "image", Message: "upload is too large"}
		}
		return ports.ProductDraft{}, noop, &domain.ValidationError{Field: "form", Message: "could not be parsed"}
	}

	req := DraftRequest{
		Name:         strings.TrimSpace(r.FormValue("name")),
		Description:  r.FormValue("description"),
		Category:     strings.ToLower(strings.TrimSpace(r.FormValue("category"))),
		Condition:    strings.ToLower(strings.TrimSpace(r.FormValue("condition"))),
		Availability: strings.ToLower(strings.TrimSpace(r.FormValue("availability"))),
		Price:        strings.TrimSpace(r.FormValue("price")),
		Currency:     strings.ToUpper(strings.TrimSpace(r.FormValue("currency"))),
	}
	if err := validator.Validate(req); err != nil {
		return ports.ProductDraft{}, noop, err
	}

	if !isMultipart || r.MultipartForm == nil {
		return req.ToDomain(nil), noop, nil
	}

	headers := r.MultipartForm.File["image"]
	images := make([]ports.ImageUpload, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	cleanup := func() {
		for _, f := range files {
			f.Close()
		}
		r.MultipartForm.RemoveAll()
	}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			cleanup()
			return ports.ProductDraft{}, noop, &domain.ValidationError{Field: "image", Message: "could not be read"}
		}
		files = append(files, f)
		images = append(images, ports.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}

	return req.ToDomain(images), cleanup, nil
}
