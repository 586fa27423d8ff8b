package baas

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/internal/domain/ports"
	"github.com/appcanvas/builder/pkg/constants"
	"github.com/appcanvas/builder/pkg/logutils"
	"github.com/appcanvas/builder/pkg/utils"
)

type screenRow struct {
	ID                 string  `json:"id"`
	ProjectID          string  `json:"project_id"`
	Name               string  `json:"name"`
	IsDefaultLoggedIn  bool    `json:"is_default_logged_in"`
	IsDefaultLoggedOut bool    `json:"is_default_logged_out"`
	IsHome             bool    `json:"is_home"`
	BackgroundColor    *string `json:"background_color"`
	BackgroundImage    *string `json:"background_image"`
}

type componentRow struct {
	ComponentID        string          `json:"component_id"`
	ScreenID           string          `json:"screen_id"`
	Position           int             `json:"position"`
	Type               string          `json:"type"`
	Content            *string         `json:"content"`
	X                  float64         `json:"x"`
	Y                  float64         `json:"y"`
	Width              float64         `json:"width"`
	Height             float64         `json:"height"`
	Styles             json.RawMessage `json:"styles"`
	Actions            json.RawMessage `json:"actions"`
	DatabaseConnection json.RawMessage `json:"database_connection"`
}

type databaseRow struct {
	DatabaseID string          `json:"database_id"`
	ProjectID  string          `json:"project_id"`
	Name       string          `json:"name"`
	Fields     json.RawMessage `json:"fields"`
}

type recordRow struct {
	RecordID   string          `json:"record_id"`
	DatabaseID string          `json:"database_id"`
	Position   int             `json:"position"`
	Data       json.RawMessage `json:"data"`
}

// DocumentStore persists project documents in BaaS tables. Each screen or
// database save is a sequence of REST calls and is not atomic.
type DocumentStore struct {
	client *Client
}

var _ ports.DocumentPersistence = (*DocumentStore)(nil)

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(client *Client) *DocumentStore {
	return &DocumentStore{client: client}
}

// LoadProjectDocument reads screens, components, databases and records.
// A project without screens gets a persisted "Home" screen.
func (s *DocumentStore) LoadProjectDocument(ctx context.Context, projectID string) (*models.Document, error) {
	var screenRows []screenRow
	if err := s.client.selectRows(ctx, constants.TableScreen,
		map[string]string{constants.FieldProjectID: eq(projectID)}, "created_at.asc", &screenRows); err != nil {
		return nil, err
	}

	screens := make([]*models.Screen, 0, len(screenRows))
	for _, row := range screenRows {
		screens = append(screens, &models.Screen{
			ID:                 row.ID,
			Name:               row.Name,
			Components:         []*models.Component{},
			IsDefaultLoggedIn:  row.IsDefaultLoggedIn,
			IsDefaultLoggedOut: row.IsDefaultLoggedOut,
			IsHome:             row.IsHome,
			BackgroundColor:    lo.FromPtr(row.BackgroundColor),
			BackgroundImage:    lo.FromPtr(row.BackgroundImage),
		})
	}

	if len(screens) == 0 {
		home := &models.Screen{ID: utils.GenerateID(), Name: constants.DefaultScreenName, Components: []*models.Component{}}
		if err := s.SaveScreen(ctx, home, projectID); err != nil {
			return nil, fmt.Errorf("create default screen: %w", err)
		}
		logutils.Log.WithFields(logutils.Fields{"project": projectID, "screen": home.ID}).Info("📄 Created default screen")
		screens = append(screens, home)
	} else if err := s.attachComponents(ctx, screens); err != nil {
		return nil, err
	}

	databases, err := s.loadDatabases(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &models.Document{Screens: screens, Databases: databases}, nil
}

func (s *DocumentStore) attachComponents(ctx context.Context, screens []*models.Screen) error {
	ids := lo.Map(screens, func(sc *models.Screen, _ int) string { return sc.ID })
	var rows []componentRow
	if err := s.client.selectRows(ctx, constants.TableComponent,
		map[string]string{constants.FieldScreenID: in(ids)}, "position.asc", &rows); err != nil {
		return err
	}

	byID := lo.KeyBy(screens, func(sc *models.Screen) string { return sc.ID })
	for _, row := range rows {
		sc := byID[row.ScreenID]
		if sc == nil {
			continue
		}
		typ := models.ComponentType(row.Type)
		sc.Components = append(sc.Components, models.NormalizeComponent(&models.Component{
			ID:                 row.ComponentID,
			Type:               typ,
			X:                  row.X,
			Y:                  row.Y,
			Width:              row.Width,
			Height:             row.Height,
			Content:            row.Content,
			Styles:             models.DecodeStyles(string(row.Styles), typ),
			Actions:            models.DecodeActions(string(row.Actions)),
			DatabaseConnection: models.DecodeConnection(string(row.DatabaseConnection)),
		}))
	}
	return nil
}

func (s *DocumentStore) loadDatabases(ctx context.Context, projectID string) ([]*models.Database, error) {
	var rows []databaseRow
	if err := s.client.selectRows(ctx, constants.TableDatabase,
		map[string]string{constants.FieldProjectID: eq(projectID)}, "created_at.asc", &rows); err != nil {
		return nil, err
	}

	databases := make([]*models.Database, 0, len(rows))
	for _, row := range rows {
		databases = append(databases, &models.Database{
			ID:      row.DatabaseID,
			Name:    row.Name,
			Fields:  models.DecodeFields(string(row.Fields)),
			Records: []models.Record{},
		})
	}
	if len(databases) == 0 {
		return databases, nil
	}

	ids := lo.Map(databases, func(db *models.Database, _ int) string { return db.ID })
	var records []recordRow
	if err := s.client.selectRows(ctx, constants.TableRecord,
		map[string]string{constants.FieldDatabaseID: in(ids)}, "position.asc", &records); err != nil {
		return nil, err
	}
	byID := lo.KeyBy(databases, func(db *models.Database) string { return db.ID })
	for _, row := range records {
		if db := byID[row.DatabaseID]; db != nil {
			db.Records = append(db.Records, models.Record{ID: row.RecordID, Data: models.DecodeRecordData(string(row.Data))})
		}
	}
	return databases, nil
}

// SaveScreen upserts the screen, then replaces its components
func (s *DocumentStore) SaveScreen(ctx context.Context, screen *models.Screen, projectID string) error {
	row := screenRow{
		ID:                 screen.ID,
		ProjectID:          projectID,
		Name:               screen.Name,
		IsDefaultLoggedIn:  screen.IsDefaultLoggedIn,
		IsDefaultLoggedOut: screen.IsDefaultLoggedOut,
		IsHome:             screen.IsHome,
		BackgroundColor:    emptyToNil(screen.BackgroundColor),
		BackgroundImage:    emptyToNil(screen.BackgroundImage),
	}
	if err := s.client.upsertRows(ctx, constants.TableScreen, row); err != nil {
		return err
	}
	if err := s.client.deleteRows(ctx, constants.TableComponent,
		map[string]string{constants.FieldScreenID: eq(screen.ID)}); err != nil {
		return err
	}
	if len(screen.Components) == 0 {
		return nil
	}

	rows := lo.Map(screen.Components, func(c *models.Component, i int) componentRow {
		return componentRow{
			ComponentID:        c.ID,
			ScreenID:           screen.ID,
			Position:           i,
			Type:               string(c.Type),
			Content:            c.Content,
			X:                  c.X,
			Y:                  c.Y,
			Width:              c.Width,
			Height:             c.Height,
			Styles:             json.RawMessage(models.EncodeJSON(c.Styles)),
			Actions:            json.RawMessage(models.EncodeJSON(c.Actions)),
			DatabaseConnection: json.RawMessage(models.EncodeJSON(c.DatabaseConnection)),
		}
	})
	return s.client.insertRows(ctx, constants.TableComponent, rows)
}

// SaveDatabase upserts the database, then replaces its records
func (s *DocumentStore) SaveDatabase(ctx context.Context, database *models.Database, projectID string) error {
	fields := database.Fields
	if fields == nil {
		fields = []models.Field{}
	}
	row := databaseRow{
		DatabaseID: database.ID,
		ProjectID:  projectID,
		Name:       database.Name,
		Fields:     json.RawMessage(models.EncodeJSON(fields)),
	}
	if err := s.client.upsertRows(ctx, constants.TableDatabase, row); err != nil {
		return err
	}
	if err := s.client.deleteRows(ctx, constants.TableRecord,
		map[string]string{constants.FieldDatabaseID: eq(database.ID)}); err != nil {
		return err
	}
	if len(database.Records) == 0 {
		return nil
	}

	rows := lo.Map(database.Records, func(r models.Record, i int) recordRow {
		return recordRow{RecordID: r.ID, DatabaseID: database.ID, Position: i, Data: json.RawMessage(models.EncodeJSON(r.Data))}
	})
	return s.client.insertRows(ctx, constants.TableRecord, rows)
}

// DeleteScreen removes the screen's components, then the screen
func (s *DocumentStore) DeleteScreen(ctx context.Context, screenID, projectID string) error {
	if err := s.client.deleteRows(ctx, constants.TableComponent,
		map[string]string{constants.FieldScreenID: eq(screenID)}); err != nil {
		return err
	}
	return s.client.deleteRows(ctx, constants.TableScreen, map[string]string{
		constants.FieldID:        eq(screenID),
		constants.FieldProjectID: eq(projectID),
	})
}

// DeleteDatabase removes the database's records, then the database
func (s *DocumentStore) DeleteDatabase(ctx context.Context, databaseID, projectID string) error {
	if err := s.client.deleteRows(ctx, constants.TableRecord,
		map[string]string{constants.FieldDatabaseID: eq(databaseID)}); err != nil {
		return err
	}
	return s.client.deleteRows(ctx, constants.TableDatabase, map[string]string{
		constants.FieldDatabaseID: eq(databaseID),
		constants.FieldProjectID:  eq(projectID),
	})
}

// in renders a PostgREST "in" filter; values are quoted so commas survive
func in(values []string) string {
	quoted := lo.Map(values, func(v string, _ int) string {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	})
	return "in.(" + strings.Join(quoted, ",") + ")"
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
