package services

import (
	"context"
	"strings"

	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/errors"
	"github.com/appcanvas/builder/pkg/expression"
	"github.com/appcanvas/builder/pkg/utils"
)

// RecordService filters database records of an open document
type RecordService struct {
	editor *EditorService
	engine *expression.Engine
}

// NewRecordService creates a new RecordService
func NewRecordService(editor *EditorService, engine *expression.Engine) *RecordService {
	return &RecordService{editor: editor, engine: engine}
}

// Query returns the records of a database, in order, for which filter holds.
// Record fields are exposed by name, plus `id`; number fields are compared
// as numbers. An empty filter returns every record.
func (s *RecordService) Query(ctx context.Context, user *models.UserSession, projectID, databaseID, filter string) ([]models.Record, error) {
	es, err := s.editor.Open(ctx, user, projectID)
	if err != nil {
		return nil, err
	}
	db := es.State().FindDatabase(databaseID)
	if db == nil {
		return nil, errors.NewNotFoundError("Database", databaseID)
	}

	filter = strings.TrimSpace(filter)
	if filter == "" {
		return append([]models.Record{}, db.Records...), nil
	}
	if err := s.engine.Validate(filter); err != nil {
		return nil, errors.NewValidationError("filter", err.Error())
	}

	out := []models.Record{}
	for _, rec := range db.Records {
		ok, err := s.engine.Match(filter, recordEnv(db, rec))
		if err != nil {
			return nil, errors.NewValidationError("filter", err.Error())
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func recordEnv(db *models.Database, rec models.Record) map[string]interface{} {
	env := make(map[string]interface{}, len(rec.Data)+1)
	for k, v := range rec.Data {
		env[k] = v
	}
	for _, f := range db.Fields {
		if f.Type != models.FieldNumber {
			continue
		}
		if n, ok := utils.ToFloat(env[f.Name]); ok {
			env[f.Name] = n
		}
	}
	env["id"] = rec.ID
	return env
}
