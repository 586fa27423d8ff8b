package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/appcanvas/builder/internal/domain/events"
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/constants"
	"github.com/appcanvas/builder/pkg/errors"
)

func TestProjectService_CreateSeedsDocument(t *testing.T) {
	repo := newMemProjects()
	documents := new(MockDocumentPersistence)
	documents.On("LoadProjectDocument", mock.Anything, mock.Anything).Return(homeDocument(), nil)
	bus := NewEventBus()
	var created []string
	bus.Subscribe(events.ProjectCreated, func(_ context.Context, p interface{}) error {
		created = append(created, p.(events.DocumentPayload).ProjectID)
		return nil
	})
	svc := NewProjectService(repo, documents, bus, staticLinks{}, NewMetrics())

	p, err := svc.Create(context.Background(), testOwner, CreateProjectInput{Title: "  "})
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultProjectTitle, p.Title)
	assert.Equal(t, testOwner.ID, p.OwnerID)
	assert.Equal(t, []string{p.ID}, created)
	documents.AssertCalled(t, "LoadProjectDocument", mock.Anything, p.ID)

	list, err := svc.List(context.Background(), testOwner)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProjectService_RequiresOwner(t *testing.T) {
	svc := NewProjectService(newMemProjects(), new(MockDocumentPersistence), nil, staticLinks{}, nil)

	_, err := svc.List(context.Background(), nil)
	assert.True(t, errors.IsUnauthorized(err))

	_, err = svc.Create(context.Background(), &models.UserSession{ID: "guest", IsAnonymous: true}, CreateProjectInput{})
	assert.True(t, errors.IsPermission(err))
}

func TestProjectService_Update(t *testing.T) {
	f := newEditorFixture(homeDocument())
	ctx := context.Background()

	title := "Renamed"
	p, err := f.projects.Update(ctx, testOwner, f.projectID, models.ProjectPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Title)

	blank := " "
	_, err = f.projects.Update(ctx, testOwner, f.projectID, models.ProjectPatch{Title: &blank})
	assert.True(t, errors.IsValidation(err))
}

func TestProjectService_PublishAndShare(t *testing.T) {
	doc := homeDocument()
	doc.Screens[0].Components = []*models.Component{{
		ID: "t1", Type: models.ComponentText, Width: 200, Height: 30, Content: models.StringPtr("Welcome"),
	}}
	f := newEditorFixture(doc)
	ctx := context.Background()

	first, err := f.projects.Publish(ctx, testOwner, f.projectID)
	require.NoError(t, err)
	assert.NotEmpty(t, first.PublishedID)
	assert.Equal(t, "http://localhost:3001/share?share="+first.PublishedID, first.URL)

	again, err := f.projects.Publish(ctx, testOwner, f.projectID)
	require.NoError(t, err)
	assert.Equal(t, first.PublishedID, again.PublishedID)

	// Share lookup needs no caller
	snap, err := f.projects.GetShared(ctx, first.PublishedID)
	require.NoError(t, err)
	assert.Equal(t, "Demo App", snap.Title)
	require.Len(t, snap.Document.Screens, 1)
	assert.Equal(t, "Welcome", snap.Document.Screens[0].Components[0].StaticContent())

	_, err = f.projects.GetShared(ctx, "unknown")
	assert.True(t, errors.IsNotFound(err))
}

func TestProjectService_PublishRetryKeepsShareID(t *testing.T) {
	f := newEditorFixture(homeDocument())
	ctx := context.Background()
	f.repo.publishErrs = []error{fmt.Errorf("disk full")}

	_, err := f.projects.Publish(ctx, testOwner, f.projectID)
	require.Error(t, err)
	assert.True(t, errors.IsPersistence(err))

	project, err := f.projects.Get(ctx, testOwner, f.projectID)
	require.NoError(t, err)
	require.True(t, project.IsPublished())
	assert.Empty(t, f.repo.published, "no snapshot without a share id on the project")

	pub, err := f.projects.Publish(ctx, testOwner, f.projectID)
	require.NoError(t, err)
	assert.Equal(t, *project.PublishedID, pub.PublishedID)
	assert.Len(t, f.repo.published, 1)

	snap, err := f.projects.GetShared(ctx, pub.PublishedID)
	require.NoError(t, err)
	assert.Equal(t, f.projectID, snap.ProjectID)
}

func TestProjectService_DeleteRemovesShareLink(t *testing.T) {
	f := newEditorFixture(homeDocument())
	ctx := context.Background()

	pub, err := f.projects.Publish(ctx, testOwner, f.projectID)
	require.NoError(t, err)
	require.NoError(t, f.projects.Delete(ctx, testOwner, f.projectID))

	_, err = f.projects.GetShared(ctx, pub.PublishedID)
	assert.True(t, errors.IsNotFound(err))
	_, err = f.projects.Get(ctx, testOwner, f.projectID)
	assert.True(t, errors.IsNotFound(err))
}
