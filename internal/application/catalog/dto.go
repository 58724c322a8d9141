package catalog

import (
	"context"

	"github.com/catalogdash/backend/internal/domain/catalog"
)

// CatalogDirectory defines the remote document operations the catalog store
// depends on. Implemented by the infrastructure layer against the platform's
// document database.
type CatalogDirectory interface {
	// ListProducts returns all products ordered by descending creation time.
	// Image URLs are not resolved here; the store enriches them.
	ListProducts(ctx context.Context) ([]catalog.Product, error)

	// CreateProduct creates a product document. imageID is stored only when
	// non-empty.
	CreateProduct(ctx context.Context, fields catalog.ProductFields, imageID string) (*catalog.Product, error)

	// UpdateProduct updates a product document with the merged field set and
	// the resolved image reference. An error always means the update did not
	// happen; there is no partial success.
	UpdateProduct(ctx context.Context, id string, fields catalog.ProductFields, imageID string) (*catalog.Product, error)

	// DeleteProduct deletes a product document.
	DeleteProduct(ctx context.Context, id string) error
}

// ImageRef identifies an uploaded image and its display URL.
type ImageRef struct {
	ID  string
	URL string
}

// ImageStorage defines the file storage operations for product images.
type ImageStorage interface {
	// Upload stores the image bytes and returns its identifier and display URL.
	Upload(ctx context.Context, fileName, contentType string, data []byte) (*ImageRef, error)

	// Delete removes an uploaded image.
	Delete(ctx context.Context, imageID string) error

	// ResolveURL derives a display URL for a stored image.
	ResolveURL(ctx context.Context, imageID string) (string, error)
}

// ImageUpload carries a raw image file submitted with a product operation.
type ImageUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// CatalogState is a consistent snapshot of the catalog store.
type CatalogState struct {
	Products  []catalog.Product
	IsLoading bool
	LastError string
}
