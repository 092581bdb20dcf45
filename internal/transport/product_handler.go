package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"inventory-api/internal/domain"
	"inventory-api/internal/logger"
	"inventory-api/internal/middleware"
	"inventory-api/internal/repository"
	"inventory-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductRequest is the payload of create and full replace
type ProductRequest struct {
	Name        string   `json:"name" validate:"required,max=255,nonul"`
	Description *string  `json:"description" validate:"omitempty,nonul"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Quantity    *int     `json:"quantity" validate:"required,gte=0,lte=2147483647"`
}

// Input converts a validated request into service input
func (req ProductRequest) Input() domain.ProductInput {
	return domain.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Quantity:    *req.Quantity,
	}
}

// PatchProductRequest is the payload of a partial update; absent keys are left untouched
type PatchProductRequest struct {
	Name        domain.Optional[string]  `json:"name" validate:"omitempty,min=1,max=255,nonul"`
	Description domain.Optional[string]  `json:"description" validate:"omitempty,nonul"`
	Price       domain.Optional[float64] `json:"price" validate:"omitempty,gte=0"`
	Quantity    domain.Optional[int]     `json:"quantity" validate:"omitempty,gte=0,lte=2147483647"`
}

// nullErrors rejects explicit nulls on attributes that cannot be empty
func (req PatchProductRequest) nullErrors() []middleware.ValidationError {
	var result []middleware.ValidationError
	for _, f := range []struct {
		name string
		null bool
	}{
		{"name", req.Name.Null},
		{"price", req.Price.Null},
		{"quantity", req.Quantity.Null},
	} {
		if f.null {
			result = append(result, middleware.ValidationError{Field: f.name, Message: "This field cannot be null"})
		}
	}
	return result
}

// Patch converts a validated request into a domain patch
func (req PatchProductRequest) Patch() domain.ProductPatch {
	return domain.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/{id}", h.GetProduct)
		r.Put("/{id}", h.ReplaceProduct)
		r.Patch("/{id}", h.PatchProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})
}

// ListProducts handles listing products with search and pagination
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := service.ListQuery{
		Search: r.URL.Query().Get("search"),
		Page:   service.DefaultPage,
		Limit:  service.DefaultLimit,
	}

	var validationErrors []middleware.ValidationError
	for _, param := range []struct {
		name   string
		target *int
	}{
		{"page", &query.Page},
		{"limit", &query.Limit},
	} {
		raw := r.URL.Query().Get(param.name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			validationErrors = append(validationErrors, middleware.ValidationError{Field: param.name, Message: "Value must be an integer"})
			continue
		}
		*param.target = value
	}
	if len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	products, err := h.productService.List(r.Context(), query)
	if err != nil {
		h.handleServiceError(w, r, err, 0)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetProduct handles retrieving a single product
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err, id)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct handles product creation
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.productService.Create(r.Context(), req.Input())
	if err != nil {
		h.handleServiceError(w, r, err, 0)
		return
	}

	logger.FromContext(r.Context(), h.logger).Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// ReplaceProduct handles a full update; omitted description is cleared
func (h *ProductHandler) ReplaceProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.productService.Replace(r.Context(), id, req.Input())
	if err != nil {
		h.handleServiceError(w, r, err, id)
		return
	}

	logger.FromContext(r.Context(), h.logger).Info("Product replaced", zap.Int64("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// PatchProduct handles a partial update
func (h *ProductHandler) PatchProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req PatchProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	if nullErrors := req.nullErrors(); len(nullErrors) > 0 {
		middleware.RespondWithValidationErrors(w, nullErrors)
		return
	}

	product, err := h.productService.Patch(r.Context(), id, req.Patch())
	if err != nil {
		h.handleServiceError(w, r, err, id)
		return
	}

	logger.FromContext(r.Context(), h.logger).Info("Product updated", zap.Int64("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct handles product deletion and echoes the removed record
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.productService.Delete(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err, id)
		return
	}

	logger.FromContext(r.Context(), h.logger).Info("Product deleted", zap.Int64("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// productID parses the {id} path parameter, answering 400 when it is not an integer
func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "id", Message: "Value must be an integer"},
		})
		return 0, false
	}
	return id, true
}

// decode reads and validates the JSON body, answering 400 on failure
func (h *ProductHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := middleware.DecodeAndValidate(r, v)
	if err == nil {
		return true
	}

	logger.FromContext(r.Context(), h.logger).Debug("Request validation failed", zap.Error(err))

	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return false
	}
	if decodeErrors := middleware.FormatDecodeError(err); len(decodeErrors) > 0 {
		middleware.RespondWithValidationErrors(w, decodeErrors)
		return false
	}

	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
	return false
}

// handleServiceError maps service errors to HTTP responses
func (h *ProductHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, id int64) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, fmt.Sprintf("product with id: %d not found", id))
	case errors.Is(err, repository.ErrProductAlreadyExists):
		middleware.RespondWithError(w, http.StatusConflict, "product with this name already exists")
	default:
		logger.FromContext(r.Context(), h.logger).Error("Product operation failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
