package services

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/appcanvas/builder/internal/domain/events"
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/internal/domain/ports"
	"github.com/appcanvas/builder/pkg/errors"
)

// MockAuthProvider
type MockAuthProvider struct {
	mock.Mock
	listeners events.Listeners[ports.SessionChange]
}

func (m *MockAuthProvider) GetSession(ctx context.Context, token string) (*models.AuthSession, error) {
	args := m.Called(ctx, token)
	s, _ := args.Get(0).(*models.AuthSession)
	return s, args.Error(1)
}

func (m *MockAuthProvider) SignInAnonymously(ctx context.Context) (*models.AuthSession, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*models.AuthSession)
	return s, args.Error(1)
}

func (m *MockAuthProvider) SignInWithPassword(ctx context.Context, email, password string) (*models.AuthSession, error) {
	args := m.Called(ctx, email, password)
	s, _ := args.Get(0).(*models.AuthSession)
	return s, args.Error(1)
}

func (m *MockAuthProvider) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthProvider) OnSessionChange(fn func(ports.SessionChange)) func() {
	return m.listeners.Add(fn)
}

// MockDocumentPersistence
type MockDocumentPersistence struct {
	mock.Mock
}

func (m *MockDocumentPersistence) LoadProjectDocument(ctx context.Context, projectID string) (*models.Document, error) {
	args := m.Called(ctx, projectID)
	doc, _ := args.Get(0).(*models.Document)
	return doc, args.Error(1)
}

func (m *MockDocumentPersistence) SaveScreen(ctx context.Context, screen *models.Screen, projectID string) error {
	return m.Called(ctx, screen, projectID).Error(0)
}

func (m *MockDocumentPersistence) SaveDatabase(ctx context.Context, database *models.Database, projectID string) error {
	return m.Called(ctx, database, projectID).Error(0)
}

func (m *MockDocumentPersistence) DeleteScreen(ctx context.Context, screenID, projectID string) error {
	return m.Called(ctx, screenID, projectID).Error(0)
}

func (m *MockDocumentPersistence) DeleteDatabase(ctx context.Context, databaseID, projectID string) error {
	return m.Called(ctx, databaseID, projectID).Error(0)
}

// memProjects is an in-memory ports.ProjectRepository
type memProjects struct {
	mu        sync.Mutex
	projects  map[string]*models.Project
	published map[string]*models.PublishedSnapshot

	// publishErrs are returned by SavePublished, one per call, before it
	// starts succeeding
	publishErrs []error
}

func newMemProjects() *memProjects {
	return &memProjects{
		projects:  map[string]*models.Project{},
		published: map[string]*models.PublishedSnapshot{},
	}
}

func (r *memProjects) Create(_ context.Context, p *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r *memProjects) Get(_ context.Context, id string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, errors.NewNotFoundError("Project", id)
	}
	cp := *p
	return &cp, nil
}

func (r *memProjects) ListByOwner(_ context.Context, ownerID string) ([]*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Project
	for _, p := range r.projects {
		if p.OwnerID == ownerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memProjects) Update(_ context.Context, p *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[p.ID]; !ok {
		return errors.NewNotFoundError("Project", p.ID)
	}
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r *memProjects) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return errors.NewNotFoundError("Project", id)
	}
	delete(r.projects, id)
	for k, snap := range r.published {
		if snap.ProjectID == id {
			delete(r.published, k)
		}
	}
	return nil
}

func (r *memProjects) SavePublished(_ context.Context, snap *models.PublishedSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.publishErrs) > 0 {
		err := r.publishErrs[0]
		r.publishErrs = r.publishErrs[1:]
		return err
	}
	cp := *snap
	r.published[snap.PublishedID] = &cp
	return nil
}

func (r *memProjects) GetPublished(_ context.Context, id string) (*models.PublishedSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.published[id]
	if !ok {
		return nil, errors.NewNotFoundError("Published app", id)
	}
	cp := *snap
	return &cp, nil
}

type staticLinks struct{}

func (staticLinks) ShareURL(id string) string {
	return "http://localhost:3001/share?share=" + id
}

// Test fixtures

var testOwner = &models.UserSession{ID: "owner-1", Name: "Owner"}

func homeDocument() *models.Document {
	return &models.Document{
		Screens: []*models.Screen{{
			ID:         "home",
			Name:       "Home",
			Components: []*models.Component{},
		}},
		Databases: []*models.Database{},
	}
}

type editorFixture struct {
	bus       *EventBus
	metrics   *Metrics
	repo      *memProjects
	documents *MockDocumentPersistence
	auth      *MockAuthProvider
	projects  *ProjectService
	editor    *EditorService
	projectID string
}

// newEditorFixture creates a project owned by testOwner whose stored
// document is doc.
func newEditorFixture(doc *models.Document) *editorFixture {
	f := &editorFixture{
		bus:       NewEventBus(),
		metrics:   NewMetrics(),
		repo:      newMemProjects(),
		documents: new(MockDocumentPersistence),
		auth:      new(MockAuthProvider),
		projectID: "project-1",
	}
	now := time.Now()
	_ = f.repo.Create(context.Background(), &models.Project{
		ID:        f.projectID,
		OwnerID:   testOwner.ID,
		Title:     "Demo App",
		CreatedAt: now,
		UpdatedAt: now,
	})
	f.documents.On("LoadProjectDocument", mock.Anything, f.projectID).Return(doc, nil)

	f.projects = NewProjectService(f.repo, f.documents, f.bus, staticLinks{}, f.metrics)
	f.editor = NewEditorService(f.projects, f.documents, NewActionInterpreter(f.auth, f.metrics), f.bus, f.metrics)
	return f
}
