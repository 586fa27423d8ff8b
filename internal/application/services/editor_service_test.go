package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/appcanvas/builder/internal/domain/document"
	"github.com/appcanvas/builder/internal/domain/events"
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/errors"
)

func TestEditor_PlaceCentersOnDropPoint(t *testing.T) {
	f := newEditorFixture(homeDocument())
	ctx := context.Background()

	snap, err := f.editor.Place(ctx, testOwner, f.projectID, PlaceRequest{Type: models.ComponentButton, X: 100, Y: 100})
	require.NoError(t, err)
	require.Len(t, snap.View.Nodes, 1)

	node := snap.View.Nodes[0]
	assert.Equal(t, 40.0, node.Box.X)
	assert.Equal(t, 80.0, node.Box.Y)
	assert.Equal(t, 120.0, node.Box.Width)
	assert.Equal(t, 40.0, node.Box.Height)
	assert.Equal(t, "Button", node.Content)
	assert.True(t, node.Selected)
	assert.True(t, snap.Dirty)
}

func TestEditor_PlaceRejectsUnknownType(t *testing.T) {
	f := newEditorFixture(homeDocument())
	_, err := f.editor.Place(context.Background(), testOwner, f.projectID, PlaceRequest{Type: "slider"})
	assert.True(t, errors.IsValidation(err))
}

func TestEditor_OpenChecksOwnership(t *testing.T) {
	f := newEditorFixture(homeDocument())
	stranger := &models.UserSession{ID: "someone-else"}

	_, err := f.editor.View(context.Background(), stranger, f.projectID)
	assert.True(t, errors.IsPermission(err))

	_, err = f.editor.View(context.Background(), testOwner, "missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestEditor_DragKeepsPointerOffset(t *testing.T) {
	f := newEditorFixture(homeDocument())
	ctx := context.Background()

	_, err := f.editor.Apply(ctx, testOwner, f.projectID, Operation{
		Type:      OpAddComponent,
		ScreenID:  "home",
		Component: &models.Component{ID: "c1", Type: models.ComponentText, X: 10, Y: 20, Width: 200, Height: 30},
	})
	require.NoError(t, err)

	_, err = f.editor.DragStart(ctx, testOwner, f.projectID, PointerRequest{ComponentID: "c1", X: 15, Y: 30})
	require.NoError(t, err)

	snap, err := f.editor.DragMove(ctx, testOwner, f.projectID, PointerRequest{X: 115, Y: 230})
	require.NoError(t, err)
	assert.Equal(t, 110.0, snap.View.Nodes[0].Box.X)
	assert.Equal(t, 220.0, snap.View.Nodes[0].Box.Y)

	snap, err = f.editor.DragEnd(ctx, testOwner, f.projectID, PointerRequest{X: 65, Y: 40})
	require.NoError(t, err)
	assert.Equal(t, 60.0, snap.View.Nodes[0].Box.X)
	assert.Equal(t, 30.0, snap.View.Nodes[0].Box.Y)

	es, ok := f.editor.Lookup(f.projectID)
	require.True(t, ok)
	assert.Zero(t, es.bus.HandlerCount(events.PointerMove))
	assert.Zero(t, es.bus.HandlerCount(events.PointerUp))

	// Moves after release change nothing
	snap, err = f.editor.DragMove(ctx, testOwner, f.projectID, PointerRequest{X: 500, Y: 500})
	require.NoError(t, err)
	assert.Equal(t, 60.0, snap.View.Nodes[0].Box.X)
}

func TestEditor_DragUnknownComponent(t *testing.T) {
	f := newEditorFixture(homeDocument())
	_, err := f.editor.DragStart(context.Background(), testOwner, f.projectID, PointerRequest{ComponentID: "nope"})
	assert.True(t, errors.IsNotFound(err))
}

func TestEditor_SaveWritesChangesInOrder(t *testing.T) {
	doc := homeDocument()
	doc.Screens = append(doc.Screens, &models.Screen{ID: "old", Name: "Old", Components: []*models.Component{}})
	f := newEditorFixture(doc)
	ctx := context.Background()

	var order []string
	f.documents.On("SaveScreen", mock.Anything, mock.Anything, f.projectID).
		Run(func(args mock.Arguments) { order = append(order, "screen:"+args.Get(1).(*models.Screen).Name) }).
		Return(nil)
	f.documents.On("SaveDatabase", mock.Anything, mock.Anything, f.projectID).
		Run(func(args mock.Arguments) { order = append(order, "database:"+args.Get(1).(*models.Database).Name) }).
		Return(nil)
	f.documents.On("DeleteScreen", mock.Anything, "old", f.projectID).
		Run(func(mock.Arguments) { order = append(order, "delete:old") }).
		Return(nil)

	ops := []Operation{
		{Type: OpAddDatabase, Database: &models.Database{Name: "Users", Fields: []models.Field{{Name: "name", Type: models.FieldText}}}},
		{Type: OpUpdateScreen, ScreenID: "home", ScreenPatch: &document.ScreenPatch{Name: lo.ToPtr("Start")}},
		{Type: OpDeleteScreen, ScreenID: "old"},
	}
	for _, op := range ops {
		_, err := f.editor.Apply(ctx, testOwner, f.projectID, op)
		require.NoError(t, err)
	}

	res, err := f.editor.Save(ctx, testOwner, f.projectID)
	require.NoError(t, err)
	assert.Equal(t, []string{"screen:Start", "database:Users", "delete:old"}, order)
	assert.Equal(t, 1, res.SavedScreens)
	assert.Equal(t, 1, res.SavedDatabases)
	assert.Equal(t, 1, res.DeletedScreens)
	assert.False(t, res.Dirty)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DocumentSaves.WithLabelValues("success")))

	// Nothing changed since
	res, err = f.editor.Save(ctx, testOwner, f.projectID)
	require.NoError(t, err)
	assert.Zero(t, res.SavedScreens)
	f.documents.AssertNumberOfCalls(t, "SaveScreen", 1)
}

func TestEditor_SaveFailureKeepsState(t *testing.T) {
	f := newEditorFixture(homeDocument())
	ctx := context.Background()

	var failed []events.DocumentPayload
	f.bus.Subscribe(events.DocumentSaveFailed, func(_ context.Context, p interface{}) error {
		failed = append(failed, p.(events.DocumentPayload))
		return nil
	})
	f.documents.On("SaveScreen", mock.Anything, mock.Anything, f.projectID).Return(fmt.Errorf("connection reset"))

	_, err := f.editor.Place(ctx, testOwner, f.projectID, PlaceRequest{Type: models.ComponentText, X: 50, Y: 50})
	require.NoError(t, err)
	_, err = f.editor.Apply(ctx, testOwner, f.projectID, Operation{
		Type: OpAddDatabase, Database: &models.Database{Name: "Items"},
	})
	require.NoError(t, err)

	_, err = f.editor.Save(ctx, testOwner, f.projectID)
	require.Error(t, err)
	assert.True(t, errors.IsPersistence(err))
	f.documents.AssertNotCalled(t, "SaveDatabase", mock.Anything, mock.Anything, mock.Anything)
	require.Len(t, failed, 1)
	assert.Equal(t, f.projectID, failed[0].ProjectID)

	snap, err := f.editor.View(ctx, testOwner, f.projectID)
	require.NoError(t, err)
	assert.True(t, snap.Dirty)
	assert.Len(t, snap.View.Nodes, 1)
	assert.Len(t, snap.View.Databases, 1)
}

func TestEditor_ReloadDiscardsUnsavedChanges(t *testing.T) {
	f := newEditorFixture(homeDocument())
	ctx := context.Background()

	_, err := f.editor.Place(ctx, testOwner, f.projectID, PlaceRequest{Type: models.ComponentImage, X: 200, Y: 200})
	require.NoError(t, err)

	snap, err := f.editor.Reload(ctx, testOwner, f.projectID)
	require.NoError(t, err)
	assert.Empty(t, snap.View.Nodes)
	assert.False(t, snap.Dirty)
}

func TestEditor_PreviewClickKeepsPreviewSession(t *testing.T) {
	doc := &models.Document{
		Screens: []*models.Screen{
			{ID: "start", Name: "Start", IsDefaultLoggedOut: true, Components: []*models.Component{{
				ID: "login", Type: models.ComponentButton, Width: 120, Height: 40,
				Actions: []models.Action{{Type: models.ActionLogin}},
			}}},
			{ID: "dash", Name: "Dashboard", IsDefaultLoggedIn: true, Components: []*models.Component{}},
		},
	}
	f := newEditorFixture(doc)
	ctx := context.Background()
	session := &models.AuthSession{ID: "s", Token: "preview-token"}
	f.auth.On("SignInAnonymously", mock.Anything).Return(session, nil)

	// Outside preview the click does nothing
	snap, err := f.editor.PreviewClick(ctx, testOwner, f.projectID, "login")
	require.NoError(t, err)
	assert.Equal(t, "start", snap.View.ScreenID)

	_, err = f.editor.Apply(ctx, testOwner, f.projectID, Operation{Type: OpTogglePreview})
	require.NoError(t, err)

	snap, err = f.editor.PreviewClick(ctx, testOwner, f.projectID, "login")
	require.NoError(t, err)
	assert.Equal(t, "dash", snap.View.ScreenID)
	assert.True(t, snap.View.LoggedIn)
	assert.Equal(t, session, snap.Session)
	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, "Logged in", snap.Notifications[0].Message)
	assert.False(t, snap.Dirty)
}

func TestEditor_ProjectDeletedClosesSession(t *testing.T) {
	f := newEditorFixture(homeDocument())
	ctx := context.Background()

	_, err := f.editor.View(ctx, testOwner, f.projectID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OpenSessions))

	require.NoError(t, f.projects.Delete(ctx, testOwner, f.projectID))
	_, ok := f.editor.Lookup(f.projectID)
	assert.False(t, ok)
	assert.Zero(t, testutil.ToFloat64(f.metrics.OpenSessions))
}

func TestApplyOperation_UnknownType(t *testing.T) {
	f := newEditorFixture(homeDocument())
	_, err := f.editor.Apply(context.Background(), testOwner, f.projectID, Operation{Type: "explode"})
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, OperationTypes(), string(OpSaveRecord))
}

func TestApplyOperation_SaveRecordReportsMissingFields(t *testing.T) {
	f := newEditorFixture(homeDocument())
	ctx := context.Background()

	_, err := f.editor.Apply(ctx, testOwner, f.projectID, Operation{Type: OpAddDatabase, Database: &models.Database{
		ID:   "db1",
		Name: "Contacts",
		Fields: []models.Field{
			{Name: "name", Type: models.FieldText},
			{Name: "age", Type: models.FieldNumber},
		},
	}})
	require.NoError(t, err)

	_, err = f.editor.Apply(ctx, testOwner, f.projectID, Operation{Type: OpSaveRecord, DatabaseID: "db1", Data: map[string]any{"name": " "}})
	require.Error(t, err)
	assert.Equal(t, []string{"name", "age"}, errors.MissingFields(err))

	snap, err := f.editor.Apply(ctx, testOwner, f.projectID, Operation{Type: OpSaveRecord, DatabaseID: "db1", Data: map[string]any{"name": "Ada", "age": 0, "extra": true}})
	require.NoError(t, err)
	require.Len(t, snap.View.Databases[0].Records, 1)
	assert.Equal(t, "Ada", snap.View.Databases[0].Records[0].Data["name"])
}
