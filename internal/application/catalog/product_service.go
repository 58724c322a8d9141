package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/catalogdash/backend/internal/domain/catalog"
	"github.com/catalogdash/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService is the catalog store: it holds the product collection, the
// loading flag and the last error, and reconciles optimistic local mutations
// against the remote document store and image storage. Constructed once at
// application start; state is guarded by a mutex.
type ProductService struct {
	directory CatalogDirectory
	images    ImageStorage
	logger    *zap.Logger

	mu        sync.RWMutex
	products  []catalog.Product
	isLoading bool
	lastError string
}

// NewProductService creates a new catalog store with an empty collection.
func NewProductService(directory CatalogDirectory, images ImageStorage, logger *zap.Logger) *ProductService {
	return &ProductService{
		directory: directory,
		images:    images,
		logger:    logger,
	}
}

// Refresh replaces the local collection wholesale with the remote list.
// Per-item image URL resolution failures are tolerated: the failure is
// logged and the URL left empty. On error the prior collection is kept and
// the last error recorded.
func (s *ProductService) Refresh(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	list, err := s.directory.ListProducts(ctx)
	if err != nil {
		s.recordError(err)
		s.logger.Error("Failed to fetch products", zap.Error(err))
		return err
	}

	for i := range list {
		if list[i].ImageID == "" {
			continue
		}
		url, err := s.images.ResolveURL(ctx, list[i].ImageID)
		if err != nil {
			s.logger.Warn("Failed to resolve product image URL",
				zap.String("product_id", list[i].ID),
				zap.String("image_id", list[i].ImageID),
				zap.Error(err))
			continue
		}
		list[i].ImageURL = url
	}

	s.mu.Lock()
	s.products = list
	s.lastError = ""
	s.mu.Unlock()

	s.logger.Info("Products refreshed", zap.Int("count", len(list)))
	return nil
}

// Add uploads the optional image, creates the product document carrying the
// image reference, and prepends the result to the local collection. When
// document creation fails after a successful upload, the uploaded image is
// deleted so no orphaned storage object remains.
func (s *ProductService) Add(ctx context.Context, fields catalog.ProductFields, image *ImageUpload) (*catalog.Product, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	var ref *ImageRef
	if image != nil {
		uploaded, err := s.images.Upload(ctx, image.FileName, image.ContentType, image.Data)
		if err != nil {
			s.recordError(err)
			s.logger.Error("Failed to upload product image", zap.Error(err))
			return nil, err
		}
		ref = uploaded
	}

	imageID := ""
	if ref != nil {
		imageID = ref.ID
	}

	created, err := s.directory.CreateProduct(ctx, fields, imageID)
	if err != nil {
		if ref != nil {
			if delErr := s.images.Delete(ctx, ref.ID); delErr != nil {
				s.logger.Warn("Failed to delete uploaded image after create failure",
					zap.String("image_id", ref.ID), zap.Error(delErr))
			}
		}
		s.recordError(err)
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, err
	}

	if ref != nil {
		created.ImageURL = ref.URL
	}

	s.mu.Lock()
	s.products = append([]catalog.Product{*created}, s.products...)
	s.lastError = ""
	s.mu.Unlock()

	s.logger.Info("Product added", zap.String("product_id", created.ID))
	return created, nil
}

// Update uploads the optional replacement image, updates the product
// document with the merged field set and resolved image reference, and
// replaces the matching local entry. The old image is removed only after the
// document update succeeds, so a failed update never leaves the document
// pointing at a deleted file; a failed update after a successful upload
// deletes the new upload instead.
func (s *ProductService) Update(ctx context.Context, id string, fields catalog.ProductFields, image *ImageUpload, oldImageID string) (*catalog.Product, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	imageID := oldImageID
	var ref *ImageRef
	if image != nil {
		uploaded, err := s.images.Upload(ctx, image.FileName, image.ContentType, image.Data)
		if err != nil {
			s.recordError(err)
			s.logger.Error("Failed to upload replacement image", zap.Error(err))
			return nil, err
		}
		ref = uploaded
		imageID = ref.ID
	}

	updated, err := s.directory.UpdateProduct(ctx, id, fields, imageID)
	if err != nil {
		if ref != nil {
			if delErr := s.images.Delete(ctx, ref.ID); delErr != nil {
				s.logger.Warn("Failed to delete uploaded image after update failure",
					zap.String("image_id", ref.ID), zap.Error(delErr))
			}
		}
		s.recordError(err)
		s.logger.Error("Failed to update product", zap.String("product_id", id), zap.Error(err))
		return nil, err
	}

	if ref != nil {
		updated.ImageURL = ref.URL
		if oldImageID != "" {
			// Best effort: the document already references the new image.
			if delErr := s.images.Delete(ctx, oldImageID); delErr != nil {
				s.logger.Warn("Failed to delete replaced image",
					zap.String("image_id", oldImageID), zap.Error(delErr))
			}
		}
	} else {
		updated.ImageURL = s.localImageURL(id)
	}

	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i] = *updated
			break
		}
	}
	s.lastError = ""
	s.mu.Unlock()

	s.logger.Info("Product updated", zap.String("product_id", id))
	return updated, nil
}

// Delete removes a product. Image deletion is a precondition: when the
// product has an image and its deletion fails, the document deletion is
// never attempted and local state is unchanged, keeping document and image
// consistent rather than risking a dangling reference.
func (s *ProductService) Delete(ctx context.Context, id, imageID string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if imageID != "" {
		if err := s.images.Delete(ctx, imageID); err != nil {
			s.recordError(err)
			s.logger.Error("Failed to delete product image, keeping document",
				zap.String("product_id", id),
				zap.String("image_id", imageID),
				zap.Error(err))
			return err
		}
	}

	if err := s.directory.DeleteProduct(ctx, id); err != nil {
		s.recordError(err)
		s.logger.Error("Failed to delete product", zap.String("product_id", id), zap.Error(err))
		return err
	}

	s.mu.Lock()
	kept := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
	s.lastError = ""
	s.mu.Unlock()

	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

// Products returns a copy of the current collection.
func (s *ProductService) Products() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Product, len(s.products))
	copy(out, s.products)
	return out
}

// IsLoading reports whether a catalog operation is in flight.
func (s *ProductService) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLoading
}

// LastError returns the message of the most recent failed operation, or an
// empty string after a successful one.
func (s *ProductService) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// State returns a consistent snapshot of the store.
func (s *ProductService) State() CatalogState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	products := make([]catalog.Product, len(s.products))
	copy(products, s.products)
	return CatalogState{
		Products:  products,
		IsLoading: s.isLoading,
		LastError: s.lastError,
	}
}

func (s *ProductService) setLoading(v bool) {
	s.mu.Lock()
	s.isLoading = v
	s.mu.Unlock()
}

func (s *ProductService) recordError(err error) {
	msg := err.Error()
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		msg = domainErr.Message
	}
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
}

func (s *ProductService) localImageURL(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p.ImageURL
		}
	}
	return ""
}
