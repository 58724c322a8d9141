package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	appcatalog "github.com/catalogdash/backend/internal/application/catalog"
	"github.com/catalogdash/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// productDocument is a document in the products collection. Price travels as
// a float on the wire; decimal conversion happens at the boundary.
type productDocument struct {
	ID          string  `json:"$id"`
	CreatedAt   string  `json:"$createdAt"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int64   `json:"stock"`
	Description string  `json:"description"`
	ImageID     string  `json:"imageId"`
}

func (d *productDocument) toProduct() catalog.Product {
	p := catalog.Product{
		ID:          d.ID,
		Name:        d.Name,
		Category:    d.Category,
		Price:       decimal.NewFromFloat(d.Price),
		Stock:       d.Stock,
		Description: d.Description,
		ImageID:     d.ImageID,
	}
	if d.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, d.CreatedAt); err == nil {
			p.CreatedAt = t
		}
	}
	return p
}

func productData(fields catalog.ProductFields, imageID string) map[string]any {
	data := map[string]any{
		"name":        fields.Name,
		"category":    fields.Category,
		"price":       fields.Price.InexactFloat64(),
		"stock":       fields.Stock,
		"description": fields.Description,
	}
	if imageID != "" {
		data["imageId"] = imageID
	}
	return data
}

// ListProducts returns all product documents ordered by descending creation
// time.
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	query := url.Values{}
	query.Add("queries[]", queryOrderDesc("$createdAt"))

	path := c.collectionPath(c.config.ProductsCollectionID) + "/documents"
	respBody, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	var list struct {
		Total     int               `json:"total"`
		Documents []productDocument `json:"documents"`
	}
	if err := json.Unmarshal(respBody, &list); err != nil {
		return nil, fmt.Errorf("remote: failed to parse product list: %w", err)
	}

	products := make([]catalog.Product, 0, len(list.Documents))
	for i := range list.Documents {
		products = append(products, list.Documents[i].toProduct())
	}

	c.logger.Debug("Listed products", zap.Int("count", len(products)))
	return products, nil
}

// CreateProduct creates a product document and returns the stored result.
func (c *Client) CreateProduct(ctx context.Context, fields catalog.ProductFields, imageID string) (*catalog.Product, error) {
	body := map[string]any{
		"documentId": "unique()",
		"data":       productData(fields, imageID),
	}

	path := c.collectionPath(c.config.ProductsCollectionID) + "/documents"
	respBody, err := c.doRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}

	var doc productDocument
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, fmt.Errorf("remote: failed to parse product document: %w", err)
	}

	product := doc.toProduct()
	return &product, nil
}

// UpdateProduct patches a product document. The platform applies the full
// data set atomically; an error means nothing changed.
func (c *Client) UpdateProduct(ctx context.Context, id string, fields catalog.ProductFields, imageID string) (*catalog.Product, error) {
	body := map[string]any{
		"data": productData(fields, imageID),
	}

	path := c.collectionPath(c.config.ProductsCollectionID) + "/documents/" + url.PathEscape(id)
	respBody, err := c.doRequest(ctx, http.MethodPatch, path, nil, body)
	if err != nil {
		return nil, err
	}

	var doc productDocument
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, fmt.Errorf("remote: failed to parse product document: %w", err)
	}

	product := doc.toProduct()
	return &product, nil
}

// DeleteProduct deletes a product document.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	path := c.collectionPath(c.config.ProductsCollectionID) + "/documents/" + url.PathEscape(id)
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// collectionPath builds the base path of a collection in the configured
// database.
func (c *Client) collectionPath(collectionID string) string {
	return fmt.Sprintf("/databases/%s/collections/%s",
		url.PathEscape(c.config.DatabaseID), url.PathEscape(collectionID))
}

// queryEqual builds an equality filter in the platform's query encoding.
func queryEqual(attribute string, value string) string {
	q := map[string]any{
		"method":    "equal",
		"attribute": attribute,
		"values":    []string{value},
	}
	encoded, _ := json.Marshal(q)
	return string(encoded)
}

// queryOrderDesc builds a descending order clause.
func queryOrderDesc(attribute string) string {
	q := map[string]any{
		"method":    "orderDesc",
		"attribute": attribute,
	}
	encoded, _ := json.Marshal(q)
	return string(encoded)
}

var _ appcatalog.CatalogDirectory = (*Client)(nil)
