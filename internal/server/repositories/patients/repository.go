// Package patients persists patient records. Sensitive fields arrive here
// already encrypted; the repository treats them as opaque text.
package patients

import (
	"context"

	"github.com/dmitrijs2005/medvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, patient *models.Patient) (*models.Patient, error)
	GetByID(ctx context.Context, id string) (*models.Patient, error)
	List(ctx context.Context, limit, offset int) ([]*models.Patient, error)
	Update(ctx context.Context, patient *models.Patient) error
	Delete(ctx context.Context, id string) error
}
