package services

import (
	"context"
	"sync"
	"time"

	"github.com/appcanvas/builder/internal/application/render"
	"github.com/appcanvas/builder/internal/domain/document"
	"github.com/appcanvas/builder/internal/domain/events"
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/internal/domain/ports"
	"github.com/appcanvas/builder/pkg/errors"
	"github.com/appcanvas/builder/pkg/logutils"
)

// EditorSession is one open project document. Mutations are serialized by
// mu; saves are serialized by saveMu and never hold mu while persisting.
type EditorSession struct {
	projectID string

	mu       sync.Mutex
	state    document.State
	baseline document.State
	preview  *models.AuthSession
	drag     *document.DragSession
	dragStop func()

	saveMu sync.Mutex

	// bus carries pointer events of this session only
	bus *EventBus
}

func newEditorSession(projectID string, doc *models.Document) *EditorSession {
	st := document.New(projectID, doc)
	return &EditorSession{
		projectID: projectID,
		state:     st,
		baseline:  st,
		bus:       NewEventBus(),
	}
}

// State returns the current document state
func (es *EditorSession) State() document.State {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.state
}

// Dirty reports unsaved changes
func (es *EditorSession) Dirty() bool {
	es.mu.Lock()
	defer es.mu.Unlock()
	return !document.Diff(es.baseline, es.state).Empty()
}

// Apply runs fn against the current state and keeps the result unless fn fails
func (es *EditorSession) Apply(fn func(document.State) (document.State, error)) (document.State, error) {
	es.mu.Lock()
	defer es.mu.Unlock()
	next, err := fn(es.state)
	if err != nil {
		return es.state, err
	}
	es.state = next
	return next, nil
}

// releaseDragLocked ends the active drag, if any. Callers hold mu.
func (es *EditorSession) releaseDragLocked() {
	if es.drag == nil {
		return
	}
	if es.drag.Release() && es.dragStop != nil {
		es.dragStop()
	}
	es.drag = nil
	es.dragStop = nil
}

// EditorSnapshot is what editor endpoints return
type EditorSnapshot struct {
	View          render.EditorView     `json:"view"`
	Dirty         bool                  `json:"dirty"`
	Notifications []models.Notification `json:"notifications,omitempty"`
	Session       *models.AuthSession   `json:"previewSession,omitempty"`
}

// SaveResult summarizes one save
type SaveResult struct {
	SavedScreens     int  `json:"savedScreens"`
	SavedDatabases   int  `json:"savedDatabases"`
	DeletedScreens   int  `json:"deletedScreens"`
	DeletedDatabases int  `json:"deletedDatabases"`
	Dirty            bool `json:"dirty"`
}

// PlaceRequest drops a palette item on the canvas
type PlaceRequest struct {
	Type     models.ComponentType `json:"type"`
	X        float64              `json:"x"`
	Y        float64              `json:"y"`
	ScreenID string               `json:"screenId,omitempty"`
}

// PointerRequest carries pointer coordinates in canvas pixels
type PointerRequest struct {
	ScreenID    string  `json:"screenId,omitempty"`
	ComponentID string  `json:"componentId,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// EditorService holds the open editor sessions, one per project
type EditorService struct {
	projects    *ProjectService
	documents   ports.DocumentPersistence
	interpreter *ActionInterpreter
	bus         ports.EventPublisher
	metrics     *Metrics

	mu       sync.Mutex
	sessions map[string]*EditorSession
}

// NewEditorService creates a new EditorService. Sessions of deleted
// projects are dropped when bus delivers ProjectDeleted.
func NewEditorService(projects *ProjectService, documents ports.DocumentPersistence, interpreter *ActionInterpreter, bus ports.EventPublisher, metrics *Metrics) *EditorService {
	s := &EditorService{
		projects:    projects,
		documents:   documents,
		interpreter: interpreter,
		bus:         bus,
		metrics:     metrics,
		sessions:    make(map[string]*EditorSession),
	}
	if bus != nil {
		bus.Subscribe(events.ProjectDeleted, func(_ context.Context, payload interface{}) error {
			if p, ok := payload.(events.DocumentPayload); ok {
				s.Close(p.ProjectID)
			}
			return nil
		})
	}
	return s
}

// Open returns the project's editor session, loading the document on first use
func (s *EditorService) Open(ctx context.Context, user *models.UserSession, projectID string) (*EditorSession, error) {
	if _, err := s.projects.Get(ctx, user, projectID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if es, ok := s.sessions[projectID]; ok {
		s.mu.Unlock()
		return es, nil
	}
	s.mu.Unlock()

	doc, err := s.documents.LoadProjectDocument(ctx, projectID)
	if err != nil {
		return nil, errors.NewPersistenceError("load document", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have loaded it meanwhile
	if es, ok := s.sessions[projectID]; ok {
		return es, nil
	}
	es := newEditorSession(projectID, doc)
	s.sessions[projectID] = es
	s.gauge()
	logutils.Log.WithFields(logutils.Fields{"project": projectID, "screens": len(doc.Screens)}).Info("📂 Editor session opened")
	return es, nil
}

// Close drops a session without saving. Unknown projects are ignored.
func (s *EditorService) Close(projectID string) {
	s.mu.Lock()
	es, ok := s.sessions[projectID]
	delete(s.sessions, projectID)
	s.gauge()
	s.mu.Unlock()

	if !ok {
		return
	}
	es.mu.Lock()
	es.releaseDragLocked()
	es.mu.Unlock()
	es.bus.Clear()
	logutils.Log.WithFields(logutils.Fields{"project": projectID}).Info("📁 Editor session closed")
}

// Lookup returns an already open session without checking ownership
func (s *EditorService) Lookup(projectID string) (*EditorSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	es, ok := s.sessions[projectID]
	return es, ok
}

func (s *EditorService) gauge() {
	if s.metrics != nil {
		s.metrics.OpenSessions.Set(float64(len(s.sessions)))
	}
}

// View renders the current screen of a project
func (s *EditorService) View(ctx context.Context, user *models.UserSession, projectID string) (*EditorSnapshot, error) {
	es, err := s.Open(ctx, user, projectID)
	if err != nil {
		return nil, err
	}
	return snapshotOf(es, nil), nil
}

// Apply runs one tagged operation against the project document
func (s *EditorService) Apply(ctx context.Context, user *models.UserSession, projectID string, op Operation) (*EditorSnapshot, error) {
	es, err := s.Open(ctx, user, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := es.Apply(func(st document.State) (document.State, error) {
		return applyOperation(st, op)
	}); err != nil {
		return nil, err
	}
	return snapshotOf(es, nil), nil
}

// Place drops a new component of the given type centered on (X, Y) of the
// target screen, or of the current screen when none is given.
func (s *EditorService) Place(ctx context.Context, user *models.UserSession, projectID string, req PlaceRequest) (*EditorSnapshot, error) {
	if !req.Type.Valid() {
		return nil, errors.NewValidationError("type", "unknown component type '"+string(req.Type)+"'")
	}
	es, err := s.Open(ctx, user, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := es.Apply(func(st document.State) (document.State, error) {
		screenID := req.ScreenID
		if screenID == "" {
			screenID = st.CurrentScreenID
		}
		return document.AddComponent(st, screenID, document.PlaceComponent(req.Type, req.X, req.Y))
	}); err != nil {
		return nil, err
	}
	return snapshotOf(es, nil), nil
}

// DragStart begins dragging a component. Pointer moves and the final
// pointer-up are delivered through the session bus until the drag ends.
func (s *EditorService) DragStart(ctx context.Context, user *models.UserSession, projectID string, req PointerRequest) (*EditorSnapshot, error) {
	es, err := s.Open(ctx, user, projectID)
	if err != nil {
		return nil, err
	}

	es.mu.Lock()
	if es.state.PreviewMode {
		es.mu.Unlock()
		return nil, errors.NewValidationError("previewMode", "components cannot be dragged in preview")
	}
	screenID := req.ScreenID
	if screenID == "" {
		screenID = es.state.CurrentScreenID
	}
	drag, ok := document.BeginDrag(es.state, screenID, req.ComponentID, req.X, req.Y)
	if !ok {
		es.mu.Unlock()
		return nil, errors.NewNotFoundError("Component", req.ComponentID)
	}
	es.releaseDragLocked()
	es.state = document.SelectComponent(es.state, req.ComponentID)
	es.drag = drag

	unsubMove := es.bus.Subscribe(events.PointerMove, func(_ context.Context, payload interface{}) error {
		p, ok := payload.(events.PointerPayload)
		if !ok {
			return nil
		}
		es.mu.Lock()
		defer es.mu.Unlock()
		if es.drag != drag {
			return nil
		}
		next, err := drag.Move(es.state, p.X, p.Y)
		if err != nil {
			return err
		}
		es.state = next
		return nil
	})
	var unsubUp func()
	var once sync.Once
	es.dragStop = func() {
		once.Do(func() {
			unsubMove()
			unsubUp()
		})
	}
	unsubUp = es.bus.Subscribe(events.PointerUp, func(_ context.Context, _ interface{}) error {
		es.mu.Lock()
		defer es.mu.Unlock()
		if es.drag == drag {
			es.releaseDragLocked()
		}
		return nil
	})
	es.mu.Unlock()

	return snapshotOf(es, nil), nil
}

// DragMove delivers a pointer move to the active drag. Without a drag it
// changes nothing.
func (s *EditorService) DragMove(ctx context.Context, user *models.UserSession, projectID string, req PointerRequest) (*EditorSnapshot, error) {
	es, err := s.Open(ctx, user, projectID)
	if err != nil {
		return nil, err
	}
	if err := es.bus.Publish(ctx, events.PointerMove, events.PointerPayload{X: req.X, Y: req.Y}); err != nil {
		return nil, err
	}
	return snapshotOf(es, nil), nil
}

// DragEnd delivers the pointer-up that finishes the drag
func (s *EditorService) DragEnd(ctx context.Context, user *models.UserSession, projectID string, req PointerRequest) (*EditorSnapshot, error) {
	es, err := s.Open(ctx, user, projectID)
	if err != nil {
		return nil, err
	}
	if err := es.bus.Publish(ctx, events.PointerMove, events.PointerPayload{X: req.X, Y: req.Y}); err != nil {
		return nil, err
	}
	if err := es.bus.Publish(ctx, events.PointerUp, events.PointerPayload{X: req.X, Y: req.Y}); err != nil {
		return nil, err
	}
	return snapshotOf(es, nil), nil
}

// Save persists what changed since the last successful save or load:
// changed screens, then changed databases, then removals. The first failure
// stops the save with a PersistenceError; the in-memory document is kept
// and stays dirty.
func (s *EditorService) Save(ctx context.Context, user *models.UserSession, projectID string) (*SaveResult, error) {
	es, err := s.Open(ctx, user, projectID)
	if err != nil {
		return nil, err
	}

	es.saveMu.Lock()
	defer es.saveMu.Unlock()

	es.mu.Lock()
	target := es.state
	changes := document.Diff(es.baseline, target)
	es.mu.Unlock()

	if changes.Empty() {
		s.observeSave("noop", 0)
		return &SaveResult{}, nil
	}

	start := time.Now()
	result := &SaveResult{}
	if err := s.persist(ctx, projectID, changes, result); err != nil {
		s.observeSave("failure", time.Since(start))
		s.publish(ctx, events.DocumentSaveFailed, events.DocumentPayload{ProjectID: projectID, Err: err})
		logutils.Log.WithFields(logutils.Fields{"project": projectID}).Errorf("❌ Save failed: %v", err)
		return nil, err
	}

	es.mu.Lock()
	es.baseline = target
	result.Dirty = !document.Diff(es.baseline, es.state).Empty()
	es.mu.Unlock()

	s.observeSave("success", time.Since(start))
	s.publish(ctx, events.DocumentSaved, events.DocumentPayload{
		ProjectID: projectID,
		Screens:   result.SavedScreens,
		Databases: result.SavedDatabases,
	})
	logutils.Log.WithFields(logutils.Fields{
		"project":   projectID,
		"screens":   result.SavedScreens,
		"databases": result.SavedDatabases,
	}).Info("💾 Document saved")
	return result, nil
}

func (s *EditorService) persist(ctx context.Context, projectID string, changes document.Changes, result *SaveResult) error {
	for _, sc := range changes.ChangedScreens {
		if err := s.documents.SaveScreen(ctx, sc, projectID); err != nil {
			return errors.NewPersistenceError("save screen "+sc.Name, err)
		}
		result.SavedScreens++
	}
	for _, db := range changes.ChangedDatabases {
		if err := s.documents.SaveDatabase(ctx, db, projectID); err != nil {
			return errors.NewPersistenceError("save database "+db.Name, err)
		}
		result.SavedDatabases++
	}
	for _, id := range changes.RemovedScreenIDs {
		if err := s.documents.DeleteScreen(ctx, id, projectID); err != nil {
			return errors.NewPersistenceError("delete screen", err)
		}
		result.DeletedScreens++
	}
	for _, id := range changes.RemovedDatabaseIDs {
		if err := s.documents.DeleteDatabase(ctx, id, projectID); err != nil {
			return errors.NewPersistenceError("delete database", err)
		}
		result.DeletedDatabases++
	}
	return nil
}

// Reload discards unsaved changes and reads the stored document again.
// Canvas size and preview mode survive; the current screen survives when
// it still exists.
func (s *EditorService) Reload(ctx context.Context, user *models.UserSession, projectID string) (*EditorSnapshot, error) {
	es, err := s.Open(ctx, user, projectID)
	if err != nil {
		return nil, err
	}

	es.saveMu.Lock()
	defer es.saveMu.Unlock()

	doc, err := s.documents.LoadProjectDocument(ctx, projectID)
	if err != nil {
		return nil, errors.NewPersistenceError("load document", err)
	}

	es.mu.Lock()
	prev := es.state
	es.releaseDragLocked()
	next := document.New(projectID, doc)
	next.CanvasSize = prev.CanvasSize
	next.PreviewMode = prev.PreviewMode
	next.LoggedIn = prev.LoggedIn
	next = document.SelectScreen(next, prev.CurrentScreenID)
	es.state = next
	es.baseline = next
	es.mu.Unlock()

	s.publish(ctx, events.DocumentReloaded, events.DocumentPayload{
		ProjectID: projectID,
		Screens:   len(doc.Screens),
		Databases: len(doc.Databases),
	})
	return snapshotOf(es, nil), nil
}

// PreviewClick runs the actions of a component clicked in preview mode
func (s *EditorService) PreviewClick(ctx context.Context, user *models.UserSession, projectID, componentID string) (*EditorSnapshot, error) {
	es, err := s.Open(ctx, user, projectID)
	if err != nil {
		return nil, err
	}

	// Held across the auth calls so clicks of one session do not interleave.
	es.mu.Lock()
	result, err := s.interpreter.HandleClick(ctx, es.state, componentID, es.preview)
	if err != nil {
		es.mu.Unlock()
		return nil, err
	}
	es.state = result.State
	es.preview = result.Session
	es.mu.Unlock()

	return snapshotOf(es, result.Notifications), nil
}

func (s *EditorService) publish(ctx context.Context, eventType events.EventType, payload events.DocumentPayload) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, eventType, payload); err != nil {
		logutils.Log.Warnf("⚠️ %s handlers failed: %v", eventType, err)
	}
}

func (s *EditorService) observeSave(result string, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.DocumentSaves.WithLabelValues(result).Inc()
	if result != "noop" {
		s.metrics.SaveDuration.Observe(elapsed.Seconds())
	}
}

func snapshotOf(es *EditorSession, notes []models.Notification) *EditorSnapshot {
	es.mu.Lock()
	defer es.mu.Unlock()
	return &EditorSnapshot{
		View:          render.RenderEditor(es.state),
		Dirty:         !document.Diff(es.baseline, es.state).Empty(),
		Notifications: notes,
		Session:       es.preview,
	}
}
