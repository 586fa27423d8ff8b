package ports

import (
	"context"

	"github.com/appcanvas/builder/internal/domain/models"
)

// ProjectRepository stores project metadata and published snapshots
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	Get(ctx context.Context, projectID string) (*models.Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	// Delete removes the project with its document and snapshots.
	Delete(ctx context.Context, projectID string) error

	SavePublished(ctx context.Context, snapshot *models.PublishedSnapshot) error
	GetPublished(ctx context.Context, publishedID string) (*models.PublishedSnapshot, error)
}
