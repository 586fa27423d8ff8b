package models

// ComponentType is the closed set of placeable canvas elements
type ComponentType string

const (
	ComponentButton    ComponentType = "button"
	ComponentText      ComponentType = "text"
	ComponentInput     ComponentType = "input"
	ComponentImage     ComponentType = "image"
	ComponentContainer ComponentType = "container"
)

// ComponentTypes lists every variant in palette order
func ComponentTypes() []ComponentType {
	return []ComponentType{ComponentButton, ComponentText, ComponentInput, ComponentImage, ComponentContainer}
}

// Valid reports whether t is a known variant
func (t ComponentType) Valid() bool {
	switch t {
	case ComponentButton, ComponentText, ComponentInput, ComponentImage, ComponentContainer:
		return true
	}
	return false
}

// Bindable reports whether the variant can display a bound database value
func (t ComponentType) Bindable() bool {
	return t == ComponentText || t == ComponentImage
}

// ActionType is what a click on a component does in preview
type ActionType string

const (
	ActionNavigate ActionType = "navigate"
	ActionSubmit   ActionType = "submit"
	ActionLogin    ActionType = "login"
	ActionLogout   ActionType = "logout"
)

// Valid reports whether a is a known action
func (a ActionType) Valid() bool {
	switch a {
	case ActionNavigate, ActionSubmit, ActionLogin, ActionLogout:
		return true
	}
	return false
}

// Action is one step of a component's click handler
type Action struct {
	Type           ActionType `json:"type"`
	TargetScreenID string     `json:"targetScreenId,omitempty"`
}

// Styles are the visual properties applied to a component
type Styles struct {
	BackgroundColor string  `json:"backgroundColor"`
	Color           string  `json:"color"`
	FontSize        float64 `json:"fontSize"`
	BorderRadius    float64 `json:"borderRadius"`
}

// DatabaseConnection binds a component's displayed value to a record field
type DatabaseConnection struct {
	DatabaseID  string `json:"databaseId"`
	FieldName   string `json:"fieldName"`
	RecordIndex *int   `json:"recordIndex,omitempty"`
}

// Index returns the bound record index, defaulting to the first record
func (c *DatabaseConnection) Index() int {
	if c == nil || c.RecordIndex == nil {
		return 0
	}
	return *c.RecordIndex
}

// Component is a single positioned element on a screen
type Component struct {
	ID                 string              `json:"id"`
	Type               ComponentType       `json:"type"`
	X                  float64             `json:"x"`
	Y                  float64             `json:"y"`
	Width              float64             `json:"width"`
	Height             float64             `json:"height"`
	Content            *string             `json:"content,omitempty"`
	Styles             Styles              `json:"styles"`
	Actions            []Action            `json:"actions,omitempty"`
	DatabaseConnection *DatabaseConnection `json:"databaseConnection,omitempty"`
}

// StaticContent returns content or "" when unset
func (c *Component) StaticContent() string {
	if c.Content == nil {
		return ""
	}
	return *c.Content
}

// Clone returns a shallow copy whose slices and pointers are not shared with c
func (c *Component) Clone() *Component {
	cp := *c
	if c.Content != nil {
		content := *c.Content
		cp.Content = &content
	}
	if c.Actions != nil {
		cp.Actions = append([]Action(nil), c.Actions...)
	}
	if c.DatabaseConnection != nil {
		conn := *c.DatabaseConnection
		if conn.RecordIndex != nil {
			idx := *conn.RecordIndex
			conn.RecordIndex = &idx
		}
		cp.DatabaseConnection = &conn
	}
	return &cp
}

// StringPtr is a helper for optional content
func StringPtr(s string) *string {
	return &s
}

// IntPtr is a helper for optional record indexes
func IntPtr(i int) *int {
	return &i
}
