package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/apm-demo-service/internal/model"
	"github.com/iyhunko/apm-demo-service/internal/service"
)

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService *service.ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ProductResponse represents the response body for a product.
type ProductResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	CreatedAt string  `json:"created_at"`
}

// ListProducts handles GET /products.
func (pc *ProductController) ListProducts(c *gin.Context) {
	products, err := pc.productService.ListProducts(c.Request.Context())
	if err != nil {
		writeError(c, defaultErrorText, err)
		return
	}

	productResponses := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		productResponses = append(productResponses, toProductResponse(product))
	}

	writeJSON(c, http.StatusOK, productResponses)
}

// ListProductsSlow handles GET /products/slow.
func (pc *ProductController) ListProductsSlow(c *gin.Context) {
	count, err := pc.productService.CountProductsSlowly(c.Request.Context())
	if err != nil {
		writeError(c, slowProductsErrorText, err)
		return
	}

	c.String(http.StatusOK, fmt.Sprintf("Slow products query returned %d rows", count))
}

func toProductResponse(product *model.Product) ProductResponse {
	return ProductResponse{
		ID:        product.ID,
		Name:      product.Name,
		Category:  product.Category,
		Price:     product.Price.InexactFloat64(),
		CreatedAt: product.CreatedAt.Format(time.RFC3339Nano),
	}
}
