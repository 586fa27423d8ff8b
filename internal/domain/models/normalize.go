package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/appcanvas/builder/pkg/logutils"
)

// Persisted styles, actions, bindings and field lists are loosely typed JSON.
// The decoders below turn them into tagged values; anything malformed degrades
// to a default instead of reaching the renderer.

// DecodeStyles reads a styles blob on top of the type defaults. Only absent
// or unusable keys take the default; stored zero and empty values are kept.
// Numbers may arrive as JSON numbers or as strings such as "16" or "16px".
func DecodeStyles(raw string, t ComponentType) Styles {
	styles := DefaultStyles(t)
	m := decodeObject(raw)
	if m == nil {
		return styles
	}
	if s, ok := m["backgroundColor"].(string); ok {
		styles.BackgroundColor = s
	}
	if s, ok := m["color"].(string); ok {
		styles.Color = s
	}
	if f, ok := looseNumber(m["fontSize"]); ok && f >= 0 {
		styles.FontSize = f
	}
	if f, ok := looseNumber(m["borderRadius"]); ok && f >= 0 {
		styles.BorderRadius = f
	}
	return styles
}

// DecodeActions reads an action list. A single object is accepted as a
// one-element list. Entries with an unknown type are dropped.
func DecodeActions(raw string) []Action {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		single := decodeObject(raw)
		if single == nil {
			logutils.Log.Debugf("dropping malformed actions payload: %v", err)
			return nil
		}
		items = []map[string]any{single}
	}

	actions := make([]Action, 0, len(items))
	for _, item := range items {
		typ, _ := item["type"].(string)
		action := Action{Type: ActionType(typ)}
		if !action.Type.Valid() {
			logutils.Log.Debugf("dropping action with unknown type %q", typ)
			continue
		}
		if target, ok := item["targetScreenId"].(string); ok {
			action.TargetScreenID = target
		}
		actions = append(actions, action)
	}
	if len(actions) == 0 {
		return nil
	}
	return actions
}

// DecodeConnection reads a binding. Missing ids yield nil (static content);
// a negative or non-integer recordIndex is treated as unset.
func DecodeConnection(raw string) *DatabaseConnection {
	m := decodeObject(raw)
	if m == nil {
		return nil
	}
	dbID, _ := m["databaseId"].(string)
	field, _ := m["fieldName"].(string)
	if dbID == "" || field == "" {
		return nil
	}
	conn := &DatabaseConnection{DatabaseID: dbID, FieldName: field}
	if f, ok := looseNumber(m["recordIndex"]); ok && f >= 0 && f == math.Trunc(f) {
		conn.RecordIndex = IntPtr(int(f))
	}
	return conn
}

// DecodeFields reads a field list. Unnamed entries are dropped, duplicate
// names keep the first declaration and unknown types become text.
func DecodeFields(raw string) []Field {
	var items []map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &items); err != nil {
		return []Field{}
	}
	return NormalizeFields(fieldsFromMaps(items))
}

// NormalizeFields applies the DecodeFields rules to already typed fields
func NormalizeFields(in []Field) []Field {
	seen := make(map[string]bool, len(in))
	out := make([]Field, 0, len(in))
	for _, f := range in {
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" || seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		if !f.Type.Valid() {
			f.Type = FieldText
		}
		out = append(out, f)
	}
	return out
}

// DecodeRecordData reads a record payload; non-objects become an empty map
func DecodeRecordData(raw string) map[string]any {
	m := decodeObject(raw)
	if m == nil {
		return map[string]any{}
	}
	return m
}

// NormalizeComponent repairs a component coming from an untrusted payload.
// Unknown types fall back to text and non-positive sizes to the palette size.
func NormalizeComponent(c *Component) *Component {
	out := c.Clone()
	if !out.Type.Valid() {
		logutils.Log.Debugf("component %s has unknown type %q, rendering as text", c.ID, c.Type)
		out.Type = ComponentText
	}
	size := DefaultSize(out.Type)
	if out.Width <= 0 {
		out.Width = size.Width
	}
	if out.Height <= 0 {
		out.Height = size.Height
	}
	if out.Styles.FontSize < 0 {
		out.Styles.FontSize = defaultFontSize
	}
	if out.Styles.BorderRadius < 0 {
		out.Styles.BorderRadius = 0
	}
	valid := out.Actions[:0]
	for _, a := range out.Actions {
		if a.Type.Valid() {
			valid = append(valid, a)
		}
	}
	if len(valid) == 0 {
		out.Actions = nil
	} else {
		out.Actions = valid
	}
	if conn := out.DatabaseConnection; conn != nil {
		if conn.DatabaseID == "" || conn.FieldName == "" {
			out.DatabaseConnection = nil
		} else if conn.RecordIndex != nil && *conn.RecordIndex < 0 {
			conn.RecordIndex = nil
		}
	}
	return out
}

// EncodeJSON marshals v for a TEXT column; nil values become "null"
func EncodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		logutils.Log.Warnf("⚠️  failed to encode %T: %v", v, err)
		return "null"
	}
	return string(b)
}

func fieldsFromMaps(items []map[string]any) []Field {
	fields := make([]Field, 0, len(items))
	for _, item := range items {
		name, _ := item["name"].(string)
		typ, _ := item["type"].(string)
		fields = append(fields, Field{Name: name, Type: FieldType(typ)})
	}
	return fields
}

func decodeObject(raw string) map[string]any {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil
	}
	return m
}

func looseNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(n), "px"), 64)
		return f, err == nil
	}
	return 0, false
}
