package services

import (
	"context"
	"time"

	"github.com/appcanvas/builder/internal/application/render"
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/internal/domain/ports"
	"github.com/appcanvas/builder/pkg/errors"
)

// ExportService renders downloadable copies of a project and share previews
type ExportService struct {
	projects  *ProjectService
	editor    *EditorService
	documents ports.DocumentPersistence
	metrics   *Metrics
}

// NewExportService creates a new ExportService
func NewExportService(projects *ProjectService, editor *EditorService, documents ports.DocumentPersistence, metrics *Metrics) *ExportService {
	return &ExportService{
		projects:  projects,
		editor:    editor,
		documents: documents,
		metrics:   metrics,
	}
}

// document returns the open editor state when there is one, so downloads
// include unsaved edits, and the stored document otherwise.
func (s *ExportService) document(ctx context.Context, user *models.UserSession, projectID string) (*models.Project, *models.Document, error) {
	project, err := s.projects.Get(ctx, user, projectID)
	if err != nil {
		return nil, nil, err
	}
	if es, ok := s.editor.Lookup(projectID); ok {
		return project, es.State().Document(), nil
	}
	doc, err := s.documents.LoadProjectDocument(ctx, projectID)
	if err != nil {
		return nil, nil, errors.NewPersistenceError("load document", err)
	}
	return project, doc, nil
}

// HTML renders the project as a single static page. startScreenID may be
// empty to start on the home screen, or the first screen without one.
func (s *ExportService) HTML(ctx context.Context, user *models.UserSession, projectID, startScreenID string) (string, error) {
	project, doc, err := s.document(ctx, user, projectID)
	if err != nil {
		return "", err
	}
	if startScreenID == "" {
		startScreenID = render.HomeScreenID(doc)
	}
	html, err := render.RenderExport(doc, render.ExportOptions{Title: project.Title, StartScreenID: startScreenID})
	if err != nil {
		return "", errors.NewInternalError("Failed to render export", err)
	}
	s.observe("html")
	return html, nil
}

// Config returns the JSON configuration download
func (s *ExportService) Config(ctx context.Context, user *models.UserSession, projectID string) (render.ConfigExport, error) {
	_, doc, err := s.document(ctx, user, projectID)
	if err != nil {
		return render.ConfigExport{}, err
	}
	s.observe("config")
	return render.RenderConfig(doc, time.Now()), nil
}

// SharePage renders a published app for anyone holding the link
func (s *ExportService) SharePage(ctx context.Context, publishedID string) (string, error) {
	snap, err := s.projects.GetShared(ctx, publishedID)
	if err != nil {
		return "", err
	}
	html, err := render.RenderShare(snap)
	if err != nil {
		return "", errors.NewInternalError("Failed to render shared app", err)
	}
	s.observe("share")
	return html, nil
}

func (s *ExportService) observe(format string) {
	if s.metrics != nil {
		s.metrics.Exports.WithLabelValues(format).Inc()
	}
}
