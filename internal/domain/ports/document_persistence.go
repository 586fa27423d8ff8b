package ports

import (
	"context"

	"github.com/appcanvas/builder/internal/domain/models"
)

// DocumentPersistence stores a project's screens and databases in a
// table-like backend keyed by project, screen and database id.
type DocumentPersistence interface {
	// LoadProjectDocument returns the stored document. A project with no
	// screens gets a single synthesized "Home" screen.
	LoadProjectDocument(ctx context.Context, projectID string) (*models.Document, error)

	// SaveScreen upserts a screen and replaces its component list.
	SaveScreen(ctx context.Context, screen *models.Screen, projectID string) error

	// SaveDatabase upserts a database, its field list and its records.
	SaveDatabase(ctx context.Context, database *models.Database, projectID string) error

	// DeleteScreen removes a screen and its components. Unknown ids are not an error.
	DeleteScreen(ctx context.Context, screenID, projectID string) error

	// DeleteDatabase removes a database and its records. Unknown ids are not an error.
	DeleteDatabase(ctx context.Context, databaseID, projectID string) error
}
