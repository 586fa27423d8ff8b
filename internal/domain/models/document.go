package models

// Screen is one navigable page of the built app
type Screen struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Components         []*Component `json:"components"`
	IsDefaultLoggedIn  bool         `json:"isDefaultLoggedIn,omitempty"`
	IsDefaultLoggedOut bool         `json:"isDefaultLoggedOut,omitempty"`
	IsHome             bool         `json:"isHome,omitempty"`
	BackgroundColor    string       `json:"backgroundColor,omitempty"`
	BackgroundImage    string       `json:"backgroundImage,omitempty"`
}

// Clone copies the screen and its component slice; components themselves are shared
func (s *Screen) Clone() *Screen {
	cp := *s
	cp.Components = append(make([]*Component, 0, len(s.Components)), s.Components...)
	return &cp
}

// FindComponent returns the component with id or nil
func (s *Screen) FindComponent(id string) *Component {
	for _, c := range s.Components {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// FieldType is the declared type of a database column
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldImage  FieldType = "image"
)

// Valid reports whether t is a known field type
func (t FieldType) Valid() bool {
	return t == FieldText || t == FieldNumber || t == FieldImage
}

// Field is a named, typed column of a project database
type Field struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// Record is one row; Data may omit declared fields or carry extra keys
type Record struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// Database is a project-scoped user table
type Database struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Fields  []Field  `json:"fields"`
	Records []Record `json:"records"`
}

// Clone copies the database with fresh field and record slices
func (d *Database) Clone() *Database {
	cp := *d
	cp.Fields = append(make([]Field, 0, len(d.Fields)), d.Fields...)
	cp.Records = append(make([]Record, 0, len(d.Records)), d.Records...)
	return &cp
}

// HasField reports whether a field with name is declared
func (d *Database) HasField(name string) bool {
	for _, f := range d.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Document is the persisted part of a project
type Document struct {
	Screens   []*Screen   `json:"screens"`
	Databases []*Database `json:"databases"`
}

// FindScreen returns the screen with id or nil
func (d *Document) FindScreen(id string) *Screen {
	for _, s := range d.Screens {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// FindDatabase returns the database with id or nil
func (d *Document) FindDatabase(id string) *Database {
	for _, db := range d.Databases {
		if db.ID == id {
			return db
		}
	}
	return nil
}
