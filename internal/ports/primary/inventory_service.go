package primary

import (
	"context"

	"github.com/example/pnpimport/internal/models"
)

// InventoryService defines the primary port for inspecting the
// configured packages and parts.
type InventoryService interface {
	// Packages returns all persisted packages in document order.
	Packages(ctx context.Context) ([]*models.Package, error)

	// Parts returns all persisted parts in document order.
	Parts(ctx context.Context) ([]*models.Part, error)
}
