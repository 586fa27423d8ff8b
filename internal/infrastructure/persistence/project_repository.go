package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/internal/domain/ports"
	"github.com/appcanvas/builder/pkg/constants"
	"github.com/appcanvas/builder/pkg/errors"
	"github.com/appcanvas/builder/pkg/query"
	"github.com/appcanvas/builder/pkg/utils"
)

// ProjectRepository handles project rows and published snapshots
type ProjectRepository struct {
	db *sql.DB
	tx *TransactionManager
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *sql.DB, tx *TransactionManager) *ProjectRepository {
	return &ProjectRepository{db: db, tx: tx}
}

// Create inserts a project row
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	q := query.Insert(constants.TableProject, map[string]interface{}{
		constants.FieldID:               p.ID,
		constants.FieldOwnerID:          p.OwnerID,
		constants.FieldTitle:            p.Title,
		constants.FieldDescription:      nullable(p.Description),
		constants.FieldCreatedDate:      p.CreatedAt.UnixMilli(),
		constants.FieldLastModifiedDate: p.UpdatedAt.UnixMilli(),
	}).Build()

	_, err := r.db.ExecContext(ctx, q.SQL, q.Params...)
	return err
}

// Get loads a project by id
func (r *ProjectRepository) Get(ctx context.Context, projectID string) (*models.Project, error) {
	q := query.From(constants.TableProject).
		Select([]string{"*"}).
		Where("`"+constants.FieldID+"` = ?", projectID).
		Limit(1).
		Build()

	projects, err := r.list(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, errors.NewNotFoundError("Project", projectID)
	}
	return projects[0], nil
}

// ListByOwner returns the owner's projects, most recently modified first
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	q := query.From(constants.TableProject).
		Select([]string{"*"}).
		Where("`"+constants.FieldOwnerID+"` = ?", ownerID).
		OrderBy(constants.FieldLastModifiedDate, constants.SortDESC).
		OrderBy(constants.FieldID, constants.SortASC).
		Build()
	return r.list(ctx, q)
}

func (r *ProjectRepository) list(ctx context.Context, q query.QueryResult) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results, err := query.ScanRows(rows)
	if err != nil {
		return nil, err
	}

	projects := make([]*models.Project, 0, len(results))
	for _, row := range results {
		p := &models.Project{
			ID:          row.String(constants.FieldID),
			OwnerID:     row.String(constants.FieldOwnerID),
			Title:       row.String(constants.FieldTitle),
			Description: row.String(constants.FieldDescription),
			PublishedID: row.NullableString(constants.FieldPublishedID),
			CreatedAt:   utils.FromMillis(row.Int64(constants.FieldCreatedDate)),
			UpdatedAt:   utils.FromMillis(row.Int64(constants.FieldLastModifiedDate)),
		}
		if row[constants.FieldPublishedAt] != nil {
			at := utils.FromMillis(row.Int64(constants.FieldPublishedAt))
			p.PublishedAt = &at
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// Update writes the editable metadata and publish state
func (r *ProjectRepository) Update(ctx context.Context, p *models.Project) error {
	values := map[string]interface{}{
		constants.FieldTitle:            p.Title,
		constants.FieldDescription:      nullable(p.Description),
		constants.FieldPublishedID:      p.PublishedID,
		constants.FieldPublishedAt:      nil,
		constants.FieldLastModifiedDate: p.UpdatedAt.UnixMilli(),
	}
	if p.PublishedAt != nil {
		values[constants.FieldPublishedAt] = p.PublishedAt.UnixMilli()
	}

	q := query.Update(constants.TableProject).
		Set(values).
		Where("`"+constants.FieldID+"` = ?", p.ID).
		Build()

	res, err := r.db.ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		found, err := exists(ctx, r.db, constants.TableProject, p.ID)
		if err != nil {
			return err
		}
		if !found {
			return errors.NewNotFoundError("Project", p.ID)
		}
	}
	return nil
}

// Delete removes the project together with its document and snapshots
func (r *ProjectRepository) Delete(ctx context.Context, projectID string) error {
	return r.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		found, err := exists(ctx, tx, constants.TableProject, projectID)
		if err != nil {
			return err
		}
		if !found {
			return errors.NewNotFoundError("Project", projectID)
		}

		children := []string{
			constants.TableRecord,
			constants.TableComponent,
			constants.TableDatabase,
			constants.TableScreen,
			constants.TablePublished,
		}
		for _, table := range children {
			q := query.Delete(table).Where("`"+constants.FieldProjectID+"` = ?", projectID).Build()
			if _, err := tx.ExecContext(ctx, q.SQL, q.Params...); err != nil {
				return fmt.Errorf("delete from %s: %w", table, err)
			}
		}

		q := query.Delete(constants.TableProject).Where("`"+constants.FieldID+"` = ?", projectID).Build()
		_, err = tx.ExecContext(ctx, q.SQL, q.Params...)
		return err
	})
}

// SavePublished stores or replaces the snapshot behind a share id
func (r *ProjectRepository) SavePublished(ctx context.Context, snap *models.PublishedSnapshot) error {
	doc, err := json.Marshal(snap.Document)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return r.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		values := map[string]interface{}{
			constants.FieldProjectID:   snap.ProjectID,
			constants.FieldTitle:       snap.Title,
			constants.FieldSnapshot:    string(doc),
			constants.FieldPublishedAt: snap.PublishedAt.UnixMilli(),
		}

		found, err := exists(ctx, tx, constants.TablePublished, snap.PublishedID)
		if err != nil {
			return err
		}
		var q query.QueryResult
		if found {
			q = query.Update(constants.TablePublished).
				Set(values).
				Where("`"+constants.FieldID+"` = ?", snap.PublishedID).
				Build()
		} else {
			values[constants.FieldID] = snap.PublishedID
			q = query.Insert(constants.TablePublished, values).Build()
		}
		_, err = tx.ExecContext(ctx, q.SQL, q.Params...)
		return err
	})
}

// GetPublished loads a snapshot by share id
func (r *ProjectRepository) GetPublished(ctx context.Context, publishedID string) (*models.PublishedSnapshot, error) {
	q := query.From(constants.TablePublished).
		Select([]string{"*"}).
		Where("`"+constants.FieldID+"` = ?", publishedID).
		Limit(1).
		Build()

	rows, err := r.db.QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results, err := query.ScanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, errors.NewNotFoundError("Published app", publishedID)
	}

	row := results[0]
	snap := &models.PublishedSnapshot{
		PublishedID: row.String(constants.FieldID),
		ProjectID:   row.String(constants.FieldProjectID),
		Title:       row.String(constants.FieldTitle),
		PublishedAt: utils.FromMillis(row.Int64(constants.FieldPublishedAt)),
	}
	if err := json.Unmarshal([]byte(row.String(constants.FieldSnapshot)), &snap.Document); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", publishedID, err)
	}
	for _, sc := range snap.Document.Screens {
		for i, c := range sc.Components {
			sc.Components[i] = models.NormalizeComponent(c)
		}
	}
	return snap, nil
}
