package models

import "time"

// Project is the owned container of one app document
type Project struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	PublishedID *string    `json:"publishedId,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsPublished reports whether a share link exists
func (p *Project) IsPublished() bool {
	return p.PublishedID != nil && *p.PublishedID != ""
}

// ProjectPatch carries the editable project metadata
type ProjectPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// PublishedSnapshot is the frozen document served on a share link
type PublishedSnapshot struct {
	PublishedID string    `json:"publishedId"`
	ProjectID   string    `json:"projectId"`
	Title       string    `json:"title"`
	Document    Document  `json:"document"`
	PublishedAt time.Time `json:"publishedAt"`
}
