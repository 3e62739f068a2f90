package transport

import (
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest represents the create/update product payload
type ProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	CategoryID  string          `json:"category_id" validate:"required,uuid"`
	ImageURL    string          `json:"image_url"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

// CategoryRequest represents the create/update category payload
type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// ProductDetailResponse pairs a product with its category
type ProductDetailResponse struct {
	Product  interface{} `json:"product"`
	Category interface{} `json:"category"`
}

// ProductHandler handles HTTP requests for the product catalog
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers catalog routes. Reads are public; writes require
// an authenticated admin.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.CreateCategory)
			r.Put("/{id}", h.UpdateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})
	})
}

// ListProducts handles catalog listing with search, category filter,
// sorting and pagination
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	opts := service.ProductListOptions{
		Search:    r.URL.Query().Get("search"),
		Page:      page,
		PageSize:  pageSize,
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}

	if v := r.URL.Query().Get("category_id"); v != "" {
		categoryID, err := uuid.Parse(v)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
			return
		}
		opts.CategoryID = &categoryID
	}

	products, total, err := h.catalogService.ListProducts(r.Context(), opts)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, NewPaginatedResponse(products, page, pageSize, total))
}

// GetProduct handles fetching a single product with its category
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, category, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductDetailResponse{Product: product, Category: category})
}

// CreateProduct handles admin product creation
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeProductInput(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), input)
	if err != nil {
		if err == repository.ErrCategoryNotFound {
			middleware.RespondWithError(w, http.StatusBadRequest, "category not found")
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles admin product updates
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	input, ok := h.decodeProductInput(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, input)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		if err == repository.ErrCategoryNotFound {
			middleware.RespondWithError(w, http.StatusBadRequest, "category not found")
			return
		}
		h.logger.Error("Failed to update product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct handles admin product deletion
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// ListCategories handles listing all categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// CreateCategory handles admin category creation
func (h *ProductHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.catalogService.CreateCategory(r.Context(), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		if err == repository.ErrCategoryAlreadyExists {
			middleware.RespondWithError(w, http.StatusConflict, "category with this name already exists")
			return
		}
		h.logger.Error("Failed to create category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// UpdateCategory handles admin category updates
func (h *ProductHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.catalogService.UpdateCategory(r.Context(), id, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		if err == repository.ErrCategoryNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		if err == repository.ErrCategoryAlreadyExists {
			middleware.RespondWithError(w, http.StatusConflict, "category with this name already exists")
			return
		}
		h.logger.Error("Failed to update category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// DeleteCategory handles admin category deletion. Categories with assigned
// products cannot be removed.
func (h *ProductHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	if err := h.catalogService.DeleteCategory(r.Context(), id); err != nil {
		if err == repository.ErrCategoryNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		if err == repository.ErrCategoryInUse {
			middleware.RespondWithError(w, http.StatusConflict, "category still has products assigned")
			return
		}
		h.logger.Error("Failed to delete category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// decodeProductInput decodes and validates the shared product payload,
// writing the error response itself when the payload is bad
func (h *ProductHandler) decodeProductInput(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return service.ProductInput{}, false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return service.ProductInput{}, false
	}

	if !req.Price.IsPositive() {
		middleware.RespondWithError(w, http.StatusBadRequest, "price must be greater than zero")
		return service.ProductInput{}, false
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return service.ProductInput{}, false
	}

	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  categoryID,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
	}, true
}
