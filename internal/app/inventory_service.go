package app

import (
	"context"

	"github.com/example/pnpimport/internal/models"
	"github.com/example/pnpimport/internal/ports/secondary"
)

// InventoryServiceImpl implements the InventoryService interface.
type InventoryServiceImpl struct {
	store secondary.ConfigStore
}

// NewInventoryService creates a new InventoryService with injected dependencies.
func NewInventoryService(store secondary.ConfigStore) *InventoryServiceImpl {
	return &InventoryServiceImpl{store: store}
}

// Packages returns all persisted packages in document order. Entries
// the store holds opaquely are omitted.
func (s *InventoryServiceImpl) Packages(ctx context.Context) ([]*models.Package, error) {
	ids := s.store.PackageIDs()
	packages := make([]*models.Package, 0, len(ids))
	for _, id := range ids {
		if pkg, ok := s.store.GetPackage(id); ok {
			packages = append(packages, pkg)
		}
	}
	return packages, nil
}

// Parts returns all persisted parts in document order.
func (s *InventoryServiceImpl) Parts(ctx context.Context) ([]*models.Part, error) {
	ids := s.store.PartIDs()
	parts := make([]*models.Part, 0, len(ids))
	for _, id := range ids {
		if part, ok := s.store.GetPart(id); ok {
			parts = append(parts, part)
		}
	}
	return parts, nil
}
