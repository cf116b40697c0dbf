package http

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/tuanvumaihuynh/product-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalog/internal/http/apierr"
	"github.com/tuanvumaihuynh/product-catalog/internal/http/view"
	"github.com/tuanvumaihuynh/product-catalog/internal/service"
)

const maxFormBytes = 1 << 20 // 1 MB

type catalogHandler struct {
	logger     *slog.Logger
	productSvc service.ProductService
}

func newCatalogHandler(logger *slog.Logger, productSvc service.ProductService) *catalogHandler {
	return &catalogHandler{
		logger:     logger,
		productSvc: productSvc,
	}
}

func (h *catalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.Home())
}

func (h *catalogHandler) CreateProductForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.CreateProductForm())
}

func (h *catalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	if _, err := h.productSvc.CreateProduct(r.Context(), service.CreateProductParams{
		Name:        r.PostForm.Get("name"),
		Description: r.PostForm.Get("description"),
		Price:       r.PostForm.Get("price"),
	}); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.Message("Product created successfully!", view.HomeLink))
}

func (h *catalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productSvc.ListProducts(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.ProductList(products))
}

func (h *catalogHandler) EditProductForm(w http.ResponseWriter, r *http.Request) {
	product, err := h.productSvc.GetProductForEdit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.EditProductForm(product))
}

func (h *catalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	if _, err := h.productSvc.UpdateProduct(r.Context(), chi.URLParam(r, "id"), service.UpdateProductParams{
		Name:        r.PostForm.Get("name"),
		Description: r.PostForm.Get("description"),
		Price:       r.PostForm.Get("price"),
	}); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.Message("Product updated successfully!", view.ProductsLink))
}

func (h *catalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.productSvc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.Message("Product deleted successfully!", view.ProductsLink))
}

func (h *catalogHandler) DeleteAllProducts(w http.ResponseWriter, r *http.Request) {
	if err := h.productSvc.DeleteAllProducts(r.Context()); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.Message("All products deleted successfully!", view.ProductsLink))
}

func (h *catalogHandler) Health(w http.ResponseWriter, r *http.Request) {
	ok, err := h.productSvc.IsHealthy(r.Context())
	if err != nil || !ok {
		h.logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *catalogHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.handleError(w, r, apperr.ValidationErr.WrapParent(err))
		return false
	}
	return true
}

// render buffers the page so a template failure can still become a 500.
func (h *catalogHandler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.WarnContext(r.Context(), "error writing response", slog.Any("error", err))
	}
}

func (h *catalogHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	h.logger.Log(r.Context(), logLevel, "http response error",
		slog.String("code", res.Code),
		slog.Any("error", err),
	)

	if errors.Is(err, apperr.ProductNotFoundErr) {
		h.render(w, r, res.StatusCode, view.Message(res.Message, view.ProductsLink))
		return
	}

	if res.Retryable {
		w.Header().Set("Retry-After", "1")
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(res.StatusCode)
	_, _ = w.Write([]byte(res.Message))
}
