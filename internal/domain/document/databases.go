package document

import (
	"strings"

	"github.com/samber/lo"

	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/errors"
	"github.com/appcanvas/builder/pkg/utils"
)

// DatabasePatch is a shallow database update; nil fields are left unchanged
type DatabasePatch struct {
	Name   *string         `json:"name,omitempty"`
	Fields *[]models.Field `json:"fields,omitempty"`
}

// AddDatabase appends a project database
func AddDatabase(s State, db *models.Database) (State, error) {
	if db == nil || strings.TrimSpace(db.Name) == "" {
		return s, errors.NewValidationError("name", "database name must not be empty")
	}
	if err := validateFields(db.Fields); err != nil {
		return s, err
	}

	cp := db.Clone()
	cp.Name = strings.TrimSpace(cp.Name)
	if cp.ID == "" {
		cp.ID = utils.GenerateID()
	}
	if s.databaseIndex(cp.ID) >= 0 {
		return s, errors.NewValidationError("id", "database id already exists in project")
	}
	for i := range cp.Records {
		if cp.Records[i].ID == "" {
			cp.Records[i].ID = utils.GenerateID()
		}
	}

	s.Databases = append(append(make([]*models.Database, 0, len(s.Databases)+1), s.Databases...), cp)
	return s, nil
}

// UpdateDatabase merges patch into a database. Unknown ids are a no-op.
func UpdateDatabase(s State, databaseID string, patch DatabasePatch) (State, error) {
	idx := s.databaseIndex(databaseID)
	if idx < 0 {
		return s, nil
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return s, errors.NewValidationError("name", "database name must not be empty")
	}
	if patch.Fields != nil {
		if err := validateFields(*patch.Fields); err != nil {
			return s, err
		}
	}

	s.Databases = s.withDatabase(idx, func(db *models.Database) *models.Database {
		cp := db.Clone()
		if patch.Name != nil {
			cp.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Fields != nil {
			cp.Fields = append([]models.Field{}, (*patch.Fields)...)
		}
		return cp
	})
	return s, nil
}

// AddField declares a new column on a database
func AddField(s State, databaseID string, field models.Field) (State, error) {
	idx := s.databaseIndex(databaseID)
	if idx < 0 {
		return s, nil
	}
	db := s.Databases[idx]
	if err := validateFields(append(append([]models.Field{}, db.Fields...), field)); err != nil {
		return s, err
	}

	s.Databases = s.withDatabase(idx, func(db *models.Database) *models.Database {
		cp := db.Clone()
		cp.Fields = append(cp.Fields, models.Field{Name: strings.TrimSpace(field.Name), Type: field.Type})
		return cp
	})
	return s, nil
}

// DeleteDatabase removes a database. Bindings pointing at it degrade to static content.
func DeleteDatabase(s State, databaseID string) (State, error) {
	if s.databaseIndex(databaseID) < 0 {
		return s, nil
	}
	s.Databases = lo.Reject(s.Databases, func(db *models.Database, _ int) bool { return db.ID == databaseID })
	return s, nil
}

// SaveRecord appends a record after checking that every declared field has a
// non-empty value. Keys that are not declared fields are kept as-is. An
// unknown database is a no-op and returns a nil record.
func SaveRecord(s State, databaseID string, data map[string]any) (State, *models.Record, error) {
	idx := s.databaseIndex(databaseID)
	if idx < 0 {
		return s, nil, nil
	}

	missing := MissingFields(s.Databases[idx], data)
	if len(missing) > 0 {
		return s, nil, errors.NewMissingFieldsError(missing)
	}

	record := models.Record{ID: utils.GenerateID(), Data: make(map[string]any, len(data))}
	for k, v := range data {
		record.Data[k] = v
	}

	s.Databases = s.withDatabase(idx, func(db *models.Database) *models.Database {
		cp := db.Clone()
		cp.Records = append(cp.Records, record)
		return cp
	})
	return s, &record, nil
}

// DeleteRecord removes a record by id. Unknown ids are a no-op.
func DeleteRecord(s State, databaseID, recordID string) (State, error) {
	idx := s.databaseIndex(databaseID)
	if idx < 0 {
		return s, nil
	}
	if !lo.ContainsBy(s.Databases[idx].Records, func(r models.Record) bool { return r.ID == recordID }) {
		return s, nil
	}

	s.Databases = s.withDatabase(idx, func(db *models.Database) *models.Database {
		cp := db.Clone()
		cp.Records = lo.Reject(cp.Records, func(r models.Record, _ int) bool { return r.ID == recordID })
		return cp
	})
	return s, nil
}

// MissingFields lists declared fields that data leaves empty, in declaration order.
// nil and blank strings count as empty; zero and false are values.
func MissingFields(db *models.Database, data map[string]any) []string {
	var missing []string
	for _, f := range db.Fields {
		if isEmptyValue(data[f.Name]) {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

func validateFields(fields []models.Field) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return errors.NewValidationError("fields", "field name must not be empty")
		}
		if seen[name] {
			return errors.NewValidationError("fields", "duplicate field name '"+name+"'")
		}
		if !f.Type.Valid() {
			return errors.NewValidationError("fields", "unknown field type '"+string(f.Type)+"'")
		}
		seen[name] = true
	}
	return nil
}
