// internal/handlers/export.go
package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/cultureconnect-be/internal/core/listing"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/internal/workers"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler renders catalog spreadsheets
type ExportHandler struct {
	responder
	catalog ports.CatalogService
	limits  ListLimits
}

// NewExportHandler creates a new export handler
func NewExportHandler(catalog ports.CatalogService, limits ListLimits, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		responder: responder{logger: logger.With(slog.String("handler", "export"))},
		catalog:   catalog,
		limits:    limits,
	}
}

// ExportProducts handles GET /api/v1/export/products.xlsx. It accepts the
// same filters and sort as the product list and always exports every match.
// The sheet uses the import layout.
func (h *ExportHandler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := parseListQuery(r.URL.Query(), h.limits, productTagGroups, normalizeProductTag)
	if err != nil {
		h.respondServiceError(w, r, err, "Invalid export parameters")
		return
	}
	q.Page, q.PageSize = 1, listing.All

	page, err := h.catalog.ListProducts(ctx, q)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to export products")
		return
	}

	file := xlsx.NewFile()
	if err := workers.WriteProductSheet(file, page.Items); err != nil {
		h.respondServiceError(w, r, err, "Failed to generate export")
		return
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		h.respondServiceError(w, r, err, "Failed to generate export")
		return
	}

	filename := fmt.Sprintf("products_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.ErrorContext(ctx, "failed to write export",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "products exported",
		slog.Int("rows", len(page.Items)),
		slog.String("sort", string(q.Sort)))
}
