package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/appcanvas/builder/internal/domain/events"
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/internal/domain/ports"
	"github.com/appcanvas/builder/pkg/constants"
	"github.com/appcanvas/builder/pkg/errors"
	"github.com/appcanvas/builder/pkg/logutils"
	"github.com/appcanvas/builder/pkg/utils"
)

// ShareLinker builds the public URL for a published id
type ShareLinker interface {
	ShareURL(publishedID string) string
}

// ProjectService manages project metadata, publishing and share lookups
type ProjectService struct {
	repo      ports.ProjectRepository
	documents ports.DocumentPersistence
	bus       ports.EventPublisher
	links     ShareLinker
	metrics   *Metrics
}

// NewProjectService creates a new ProjectService
func NewProjectService(repo ports.ProjectRepository, documents ports.DocumentPersistence, bus ports.EventPublisher, links ShareLinker, metrics *Metrics) *ProjectService {
	return &ProjectService{
		repo:      repo,
		documents: documents,
		bus:       bus,
		links:     links,
		metrics:   metrics,
	}
}

// CreateProjectInput carries the fields of a new project
type CreateProjectInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PublishResult describes a published project
type PublishResult struct {
	PublishedID string    `json:"publishedId"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Create stores a new project owned by the caller and seeds its document
// with the default Home screen.
func (s *ProjectService) Create(ctx context.Context, user *models.UserSession, in CreateProjectInput) (*models.Project, error) {
	if err := requireOwner(user); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = constants.DefaultProjectTitle
	}
	now := time.Now()
	project := &models.Project{
		ID:          utils.GenerateID(),
		OwnerID:     user.ID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	// Loading an empty project persists the synthesized Home screen.
	if _, err := s.documents.LoadProjectDocument(ctx, project.ID); err != nil {
		return nil, errors.NewPersistenceError("load document", err)
	}

	if s.metrics != nil {
		s.metrics.ProjectsCreated.Inc()
	}
	s.publish(ctx, events.ProjectCreated, project.ID)
	logutils.Log.WithFields(logutils.Fields{"project": project.ID, "owner": user.ID}).Info("✅ Project created")
	return project, nil
}

// List returns the caller's projects, most recently modified first
func (s *ProjectService) List(ctx context.Context, user *models.UserSession) ([]*models.Project, error) {
	if err := requireOwner(user); err != nil {
		return nil, err
	}
	projects, err := s.repo.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if projects == nil {
		projects = []*models.Project{}
	}
	return projects, nil
}

// Get returns a project the caller owns
func (s *ProjectService) Get(ctx context.Context, user *models.UserSession, projectID string) (*models.Project, error) {
	if err := requireOwner(user); err != nil {
		return nil, err
	}
	project, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != user.ID {
		return nil, errors.NewPermissionError("access", "project")
	}
	return project, nil
}

// Update changes the title or description of a project
func (s *ProjectService) Update(ctx context.Context, user *models.UserSession, projectID string, patch models.ProjectPatch) (*models.Project, error) {
	project, err := s.Get(ctx, user, projectID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, errors.NewValidationError("title", "title must not be empty")
		}
		project.Title = title
	}
	if patch.Description != nil {
		project.Description = strings.TrimSpace(*patch.Description)
	}
	project.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes a project with its document and share link
func (s *ProjectService) Delete(ctx context.Context, user *models.UserSession, projectID string) error {
	if _, err := s.Get(ctx, user, projectID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, projectID); err != nil {
		return err
	}

	s.publish(ctx, events.ProjectDeleted, projectID)
	logutils.Log.WithFields(logutils.Fields{"project": projectID}).Info("🗑️  Project deleted")
	return nil
}

// Publish freezes the stored document under the project's share id. The
// id is generated on first publish and reused afterwards.
func (s *ProjectService) Publish(ctx context.Context, user *models.UserSession, projectID string) (*PublishResult, error) {
	project, err := s.Get(ctx, user, projectID)
	if err != nil {
		return nil, err
	}

	doc, err := s.documents.LoadProjectDocument(ctx, projectID)
	if err != nil {
		return nil, errors.NewPersistenceError("load document", err)
	}

	publishedID := utils.GenerateID()
	if project.IsPublished() {
		publishedID = *project.PublishedID
	}
	now := time.Now()

	snapshot := &models.PublishedSnapshot{
		PublishedID: publishedID,
		ProjectID:   projectID,
		Title:       project.Title,
		Document:    *doc,
		PublishedAt: now,
	}

	// The project records its share id before the snapshot is written so a
	// failed write is retried under the same id.
	project.PublishedID = &publishedID
	project.PublishedAt = &now
	project.UpdatedAt = now
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}
	if err := s.repo.SavePublished(ctx, snapshot); err != nil {
		return nil, errors.NewPersistenceError("publish", err)
	}

	s.publish(ctx, events.ProjectPublished, projectID)
	logutils.Log.WithFields(logutils.Fields{"project": projectID, "share": publishedID}).Info("🚀 Project published")
	return &PublishResult{
		PublishedID: publishedID,
		URL:         s.links.ShareURL(publishedID),
		PublishedAt: now,
	}, nil
}

// GetShared loads a published snapshot. It needs no caller.
func (s *ProjectService) GetShared(ctx context.Context, publishedID string) (*models.PublishedSnapshot, error) {
	if strings.TrimSpace(publishedID) == "" {
		return nil, errors.NewNotFoundError("Published app", publishedID)
	}
	return s.repo.GetPublished(ctx, publishedID)
}

func (s *ProjectService) publish(ctx context.Context, eventType events.EventType, projectID string) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, eventType, events.DocumentPayload{ProjectID: projectID}); err != nil {
		logutils.Log.Warnf("⚠️ %s handlers failed: %v", eventType, err)
	}
}

// requireOwner rejects calls without a signed-in, non-anonymous caller.
// Anonymous sessions belong to preview app users, not builders.
func requireOwner(user *models.UserSession) error {
	if user == nil || user.ID == "" {
		return errors.NewUnauthorizedError("Sign in required")
	}
	if user.IsAnonymous {
		return errors.NewPermissionError("manage", "projects")
	}
	return nil
}
