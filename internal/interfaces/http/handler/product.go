package handler

import (
	"io"
	"mime/multipart"
	"strconv"
	"time"

	appcatalog "github.com/catalogdash/backend/internal/application/catalog"
	"github.com/catalogdash/backend/internal/domain/catalog"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// maxImageSize caps product image uploads (8MB)
const maxImageSize = 8 * 1024 * 1024

// ProductHandler exposes the catalog store over HTTP
type ProductHandler struct {
	BaseHandler
	catalog *appcatalog.ProductService
	guards  []gin.HandlerFunc
}

// NewProductHandler creates a new ProductHandler. Guards run before every
// product route.
func NewProductHandler(catalog *appcatalog.ProductService, guards ...gin.HandlerFunc) *ProductHandler {
	return &ProductHandler{catalog: catalog, guards: guards}
}

// ProductResponse is the API representation of a product
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       string    `json:"price"`
	Stock       int64     `json:"stock"`
	Description string    `json:"description,omitempty"`
	ImageID     string    `json:"image_id,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProductResponse(p catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		Description: p.Description,
		ImageID:     p.ImageID,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}

func toProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

// RegisterRoutes registers product routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	products.Use(h.guards...)
	{
		products.GET("", h.List)
		products.POST("", h.Create)
		products.PATCH("/:id", h.Update)
		products.DELETE("/:id", h.Delete)
	}
}

// List refreshes the catalog from the platform and returns it
func (h *ProductHandler) List(c *gin.Context) {
	if err := h.catalog.Refresh(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}

	products := h.catalog.Products()
	h.SuccessWithMeta(c, toProductResponses(products), len(products), h.catalog.IsLoading())
}

// Create adds a product from a multipart form with an optional image file
func (h *ProductHandler) Create(c *gin.Context) {
	fields, ok := h.bindProductFields(c)
	if !ok {
		return
	}

	image, ok := h.readImageFile(c)
	if !ok {
		return
	}

	product, err := h.catalog.Add(c.Request.Context(), fields, image)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toProductResponse(*product))
}

// Update edits a product from a multipart form. A new image file replaces the
// one named by old_image_id; without a file the old reference is kept.
func (h *ProductHandler) Update(c *gin.Context) {
	id := c.Param("id")

	fields, ok := h.bindProductFields(c)
	if !ok {
		return
	}

	image, ok := h.readImageFile(c)
	if !ok {
		return
	}

	oldImageID := c.PostForm("old_image_id")

	product, err := h.catalog.Update(c.Request.Context(), id, fields, image, oldImageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProductResponse(*product))
}

// Delete removes a product and its image. The image to remove is named by the
// image_id query parameter.
func (h *ProductHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	imageID := c.Query("image_id")

	if err := h.catalog.Delete(c.Request.Context(), id, imageID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// bindProductFields parses the product form fields from a multipart request.
func (h *ProductHandler) bindProductFields(c *gin.Context) (catalog.ProductFields, bool) {
	var fields catalog.ProductFields

	fields.Name = c.PostForm("name")
	fields.Category = c.PostForm("category")
	fields.Description = c.PostForm("description")

	priceStr := c.PostForm("price")
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		h.BadRequest(c, "Invalid price: "+priceStr)
		return fields, false
	}
	fields.Price = price

	stockStr := c.PostForm("stock")
	if stockStr != "" {
		stock, err := strconv.ParseInt(stockStr, 10, 64)
		if err != nil {
			h.BadRequest(c, "Invalid stock: "+stockStr)
			return fields, false
		}
		fields.Stock = stock
	}

	return fields, true
}

// readImageFile reads the optional image file from the multipart form.
// Returns (nil, true) when no file was submitted.
func (h *ProductHandler) readImageFile(c *gin.Context) (*appcatalog.ImageUpload, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, true
	}

	if fileHeader.Size > maxImageSize {
		h.BadRequest(c, "Image exceeds the maximum allowed size")
		return nil, false
	}

	data, ok := h.readAll(c, fileHeader)
	if !ok {
		return nil, false
	}

	return &appcatalog.ImageUpload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

func (h *ProductHandler) readAll(c *gin.Context, fileHeader *multipart.FileHeader) ([]byte, bool) {
	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Failed to read image file")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		h.BadRequest(c, "Failed to read image file")
		return nil, false
	}
	if len(data) > maxImageSize {
		h.BadRequest(c, "Image exceeds the maximum allowed size")
		return nil, false
	}

	return data, true
}
