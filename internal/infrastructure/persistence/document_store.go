package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/internal/domain/ports"
	"github.com/appcanvas/builder/pkg/constants"
	"github.com/appcanvas/builder/pkg/logutils"
	"github.com/appcanvas/builder/pkg/query"
	"github.com/appcanvas/builder/pkg/utils"
)

// DocumentStore keeps project documents in the builder_* tables. Styles,
// actions, bindings, field lists and record data are stored as JSON text.
type DocumentStore struct {
	db *sql.DB
	tx *TransactionManager
}

var _ ports.DocumentPersistence = (*DocumentStore)(nil)

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *sql.DB, tx *TransactionManager) *DocumentStore {
	return &DocumentStore{db: db, tx: tx}
}

// LoadProjectDocument reads every screen, component, database and record of
// a project in stored order. A project without screens gets a "Home" screen,
// which is persisted before returning.
func (s *DocumentStore) LoadProjectDocument(ctx context.Context, projectID string) (*models.Document, error) {
	screens, err := s.loadScreens(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load screens: %w", err)
	}

	if len(screens) == 0 {
		home := &models.Screen{
			ID:         utils.GenerateID(),
			Name:       constants.DefaultScreenName,
			Components: []*models.Component{},
		}
		if err := s.SaveScreen(ctx, home, projectID); err != nil {
			return nil, fmt.Errorf("create default screen: %w", err)
		}
		logutils.Log.WithFields(logutils.Fields{"project": projectID, "screen": home.ID}).Info("📄 Created default screen")
		screens = []*models.Screen{home}
	} else if err := s.attachComponents(ctx, projectID, screens); err != nil {
		return nil, fmt.Errorf("load components: %w", err)
	}

	databases, err := s.loadDatabases(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load databases: %w", err)
	}

	return &models.Document{Screens: screens, Databases: databases}, nil
}

func (s *DocumentStore) loadScreens(ctx context.Context, projectID string) ([]*models.Screen, error) {
	q := query.From(constants.TableScreen).
		Select([]string{"*"}).
		Where("`"+constants.FieldProjectID+"` = ?", projectID).
		OrderBy(constants.FieldPosition, constants.SortASC).
		OrderBy(constants.FieldCreatedDate, constants.SortASC).
		Build()

	rows, err := s.db.QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results, err := query.ScanRows(rows)
	if err != nil {
		return nil, err
	}

	screens := make([]*models.Screen, 0, len(results))
	for _, row := range results {
		screens = append(screens, &models.Screen{
			ID:                 row.String(constants.FieldID),
			Name:               row.String(constants.FieldName),
			Components:         []*models.Component{},
			IsDefaultLoggedIn:  row.Bool(constants.FieldIsDefaultLoggedIn),
			IsDefaultLoggedOut: row.Bool(constants.FieldIsDefaultLoggedOut),
			IsHome:             row.Bool(constants.FieldIsHome),
			BackgroundColor:    row.String(constants.FieldBackgroundColor),
			BackgroundImage:    row.String(constants.FieldBackgroundImage),
		})
	}
	return screens, nil
}

func (s *DocumentStore) attachComponents(ctx context.Context, projectID string, screens []*models.Screen) error {
	q := query.From(constants.TableComponent).
		Select([]string{"*"}).
		Where("`"+constants.FieldProjectID+"` = ?", projectID).
		OrderBy(constants.FieldScreenID, constants.SortASC).
		OrderBy(constants.FieldPosition, constants.SortASC).
		Build()

	rows, err := s.db.QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return err
	}
	defer rows.Close()

	results, err := query.ScanRows(rows)
	if err != nil {
		return err
	}

	byScreen := make(map[string]*models.Screen, len(screens))
	for _, sc := range screens {
		byScreen[sc.ID] = sc
	}
	for _, row := range results {
		sc := byScreen[row.String(constants.FieldScreenID)]
		if sc == nil {
			continue
		}
		sc.Components = append(sc.Components, componentFromRow(row))
	}
	return nil
}

func componentFromRow(row query.Row) *models.Component {
	typ := models.ComponentType(row.String(constants.FieldType))
	c := &models.Component{
		ID:                 row.String(constants.FieldID),
		Type:               typ,
		X:                  row.Float(constants.FieldX),
		Y:                  row.Float(constants.FieldY),
		Width:              row.Float(constants.FieldWidth),
		Height:             row.Float(constants.FieldHeight),
		Content:            row.NullableString(constants.FieldContent),
		Styles:             models.DecodeStyles(row.String(constants.FieldStyles), typ),
		Actions:            models.DecodeActions(row.String(constants.FieldActions)),
		DatabaseConnection: models.DecodeConnection(row.String(constants.FieldConnection)),
	}
	return models.NormalizeComponent(c)
}

func (s *DocumentStore) loadDatabases(ctx context.Context, projectID string) ([]*models.Database, error) {
	q := query.From(constants.TableDatabase).
		Select([]string{"*"}).
		Where("`"+constants.FieldProjectID+"` = ?", projectID).
		OrderBy(constants.FieldPosition, constants.SortASC).
		OrderBy(constants.FieldCreatedDate, constants.SortASC).
		Build()

	rows, err := s.db.QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	results, err := query.ScanRows(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	databases := make([]*models.Database, 0, len(results))
	byID := make(map[string]*models.Database, len(results))
	for _, row := range results {
		db := &models.Database{
			ID:      row.String(constants.FieldID),
			Name:    row.String(constants.FieldName),
			Fields:  models.DecodeFields(row.String(constants.FieldFields)),
			Records: []models.Record{},
		}
		databases = append(databases, db)
		byID[db.ID] = db
	}
	if len(databases) == 0 {
		return databases, nil
	}

	rq := query.From(constants.TableRecord).
		Select([]string{"*"}).
		Where("`"+constants.FieldProjectID+"` = ?", projectID).
		OrderBy(constants.FieldDatabaseID, constants.SortASC).
		OrderBy(constants.FieldPosition, constants.SortASC).
		Build()

	recRows, err := s.db.QueryContext(ctx, rq.SQL, rq.Params...)
	if err != nil {
		return nil, err
	}
	defer recRows.Close()

	records, err := query.ScanRows(recRows)
	if err != nil {
		return nil, err
	}
	for _, row := range records {
		db := byID[row.String(constants.FieldDatabaseID)]
		if db == nil {
			continue
		}
		db.Records = append(db.Records, models.Record{
			ID:   row.String(constants.FieldID),
			Data: models.DecodeRecordData(row.String(constants.FieldData)),
		})
	}
	return databases, nil
}

// SaveScreen upserts the screen row and rewrites its components in one transaction.
// New screens are appended after the project's existing screens.
func (s *DocumentStore) SaveScreen(ctx context.Context, screen *models.Screen, projectID string) error {
	return s.tx.WithRetry(ctx, func(tx *sql.Tx) error {
		now := utils.NowMillis()
		values := map[string]interface{}{
			constants.FieldName:               screen.Name,
			constants.FieldIsDefaultLoggedIn:  screen.IsDefaultLoggedIn,
			constants.FieldIsDefaultLoggedOut: screen.IsDefaultLoggedOut,
			constants.FieldIsHome:             screen.IsHome,
			constants.FieldBackgroundColor:    nullable(screen.BackgroundColor),
			constants.FieldBackgroundImage:    nullable(screen.BackgroundImage),
			constants.FieldLastModifiedDate:   now,
		}
		if err := upsertPositioned(ctx, tx, constants.TableScreen, screen.ID, projectID, values, now); err != nil {
			return err
		}

		del := query.Delete(constants.TableComponent).
			Where("`"+constants.FieldScreenID+"` = ?", screen.ID).
			Build()
		if _, err := tx.ExecContext(ctx, del.SQL, del.Params...); err != nil {
			return fmt.Errorf("clear components: %w", err)
		}

		for i, c := range screen.Components {
			ins := query.Insert(constants.TableComponent, map[string]interface{}{
				constants.FieldID:         c.ID,
				constants.FieldProjectID:  projectID,
				constants.FieldScreenID:   screen.ID,
				constants.FieldPosition:   i,
				constants.FieldType:       string(c.Type),
				constants.FieldX:          c.X,
				constants.FieldY:          c.Y,
				constants.FieldWidth:      c.Width,
				constants.FieldHeight:     c.Height,
				constants.FieldContent:    c.Content,
				constants.FieldStyles:     models.EncodeJSON(c.Styles),
				constants.FieldActions:    models.EncodeJSON(c.Actions),
				constants.FieldConnection: models.EncodeJSON(c.DatabaseConnection),
			}).Build()
			if _, err := tx.ExecContext(ctx, ins.SQL, ins.Params...); err != nil {
				return fmt.Errorf("insert component %s: %w", c.ID, err)
			}
		}
		return nil
	}, 3)
}

// SaveDatabase upserts the database row and rewrites its records in one transaction
func (s *DocumentStore) SaveDatabase(ctx context.Context, database *models.Database, projectID string) error {
	return s.tx.WithRetry(ctx, func(tx *sql.Tx) error {
		now := utils.NowMillis()
		values := map[string]interface{}{
			constants.FieldName:             database.Name,
			constants.FieldFields:           models.EncodeJSON(database.Fields),
			constants.FieldLastModifiedDate: now,
		}
		if err := upsertPositioned(ctx, tx, constants.TableDatabase, database.ID, projectID, values, now); err != nil {
			return err
		}

		del := query.Delete(constants.TableRecord).
			Where("`"+constants.FieldDatabaseID+"` = ?", database.ID).
			Build()
		if _, err := tx.ExecContext(ctx, del.SQL, del.Params...); err != nil {
			return fmt.Errorf("clear records: %w", err)
		}

		for i, r := range database.Records {
			ins := query.Insert(constants.TableRecord, map[string]interface{}{
				constants.FieldID:         r.ID,
				constants.FieldDatabaseID: database.ID,
				constants.FieldProjectID:  projectID,
				constants.FieldPosition:   i,
				constants.FieldData:       models.EncodeJSON(r.Data),
			}).Build()
			if _, err := tx.ExecContext(ctx, ins.SQL, ins.Params...); err != nil {
				return fmt.Errorf("insert record %s: %w", r.ID, err)
			}
		}
		return nil
	}, 3)
}

// DeleteScreen removes a screen and its components
func (s *DocumentStore) DeleteScreen(ctx context.Context, screenID, projectID string) error {
	return s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		return deleteWithChildren(ctx, tx, constants.TableScreen, constants.TableComponent, constants.FieldScreenID, screenID, projectID)
	})
}

// DeleteDatabase removes a database and its records
func (s *DocumentStore) DeleteDatabase(ctx context.Context, databaseID, projectID string) error {
	return s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		return deleteWithChildren(ctx, tx, constants.TableDatabase, constants.TableRecord, constants.FieldDatabaseID, databaseID, projectID)
	})
}

func deleteWithChildren(ctx context.Context, tx *sql.Tx, table, childTable, childColumn, id, projectID string) error {
	children := query.Delete(childTable).
		Where("`"+childColumn+"` = ?", id).
		Where("`"+constants.FieldProjectID+"` = ?", projectID).
		Build()
	if _, err := tx.ExecContext(ctx, children.SQL, children.Params...); err != nil {
		return fmt.Errorf("delete from %s: %w", childTable, err)
	}

	parent := query.Delete(table).
		Where("`"+constants.FieldID+"` = ?", id).
		Where("`"+constants.FieldProjectID+"` = ?", projectID).
		Build()
	if _, err := tx.ExecContext(ctx, parent.SQL, parent.Params...); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}

// upsertPositioned updates an existing row or inserts it at the end of the
// project's ordering. Portable across MySQL and SQLite, unlike native upserts.
func upsertPositioned(ctx context.Context, tx *sql.Tx, table, id, projectID string, values map[string]interface{}, now int64) error {
	found, err := exists(ctx, tx, table, id)
	if err != nil {
		return fmt.Errorf("lookup %s %s: %w", table, id, err)
	}

	if found {
		upd := query.Update(table).
			Set(values).
			Where("`"+constants.FieldID+"` = ?", id).
			Where("`"+constants.FieldProjectID+"` = ?", projectID).
			Build()
		if _, err := tx.ExecContext(ctx, upd.SQL, upd.Params...); err != nil {
			return fmt.Errorf("update %s %s: %w", table, id, err)
		}
		return nil
	}

	var next int64
	posSQL := fmt.Sprintf("SELECT COALESCE(MAX(`%s`), -1) + 1 FROM `%s` WHERE `%s` = ?",
		constants.FieldPosition, table, constants.FieldProjectID)
	if err := tx.QueryRowContext(ctx, posSQL, projectID).Scan(&next); err != nil {
		return fmt.Errorf("next position in %s: %w", table, err)
	}

	row := make(map[string]interface{}, len(values)+4)
	for k, v := range values {
		row[k] = v
	}
	row[constants.FieldID] = id
	row[constants.FieldProjectID] = projectID
	row[constants.FieldPosition] = next
	row[constants.FieldCreatedDate] = now

	ins := query.Insert(table, row).Build()
	if _, err := tx.ExecContext(ctx, ins.SQL, ins.Params...); err != nil {
		return fmt.Errorf("insert %s %s: %w", table, id, err)
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
