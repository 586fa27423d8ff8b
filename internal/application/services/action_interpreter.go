package services

import (
	"context"

	"github.com/appcanvas/builder/internal/domain/document"
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/internal/domain/ports"
	"github.com/appcanvas/builder/pkg/logutils"
)

// ClickResult is the outcome of a preview click
type ClickResult struct {
	State         document.State        `json:"-"`
	Notifications []models.Notification `json:"notifications"`
	// Session is the preview app's sign-in after the click; nil when signed out
	Session *models.AuthSession `json:"session,omitempty"`
}

// clickContext is the mutable state threaded through one action chain
type clickContext struct {
	result ClickResult
}

func (c *clickContext) notify(level models.NotificationLevel, msg string) {
	c.result.Notifications = append(c.result.Notifications, models.Notification{Level: level, Message: msg})
}

// task is one compiled action
type task struct {
	kind models.ActionType
	run  func(ctx context.Context, cc *clickContext)
}

// taskQueue runs tasks one after another on the caller's goroutine. A task
// that fails records its outcome in the click context; the queue always
// proceeds to the next one.
type taskQueue struct {
	tasks []task
}

func (q *taskQueue) push(t task) {
	q.tasks = append(q.tasks, t)
}

func (q *taskQueue) drain(ctx context.Context, cc *clickContext) {
	for _, t := range q.tasks {
		logutils.Log.Debugf("▶️  preview action %s", t.kind)
		t.run(ctx, cc)
	}
	q.tasks = nil
}

// ActionInterpreter executes component actions in preview mode
type ActionInterpreter struct {
	auth    ports.AuthProvider
	metrics *Metrics
}

// NewActionInterpreter creates a new ActionInterpreter
func NewActionInterpreter(auth ports.AuthProvider, metrics *Metrics) *ActionInterpreter {
	return &ActionInterpreter{auth: auth, metrics: metrics}
}

// HandleClick runs the actions of a clicked component in order. Outside
// preview mode, or for components on other screens or without actions, the
// state is returned unchanged. session is the preview app's current sign-in.
func (ai *ActionInterpreter) HandleClick(ctx context.Context, s document.State, componentID string, session *models.AuthSession) (ClickResult, error) {
	cc := &clickContext{result: ClickResult{State: s, Session: session}}
	if !s.PreviewMode {
		return cc.result, nil
	}
	sc := s.CurrentScreen()
	if sc == nil {
		return cc.result, nil
	}
	c := sc.FindComponent(componentID)
	if c == nil || len(c.Actions) == 0 {
		return cc.result, nil
	}

	q := ai.compile(c.Actions)
	q.drain(ctx, cc)
	return cc.result, nil
}

func (ai *ActionInterpreter) compile(actions []models.Action) *taskQueue {
	q := &taskQueue{}
	for _, a := range actions {
		switch a.Type {
		case models.ActionNavigate:
			target := a.TargetScreenID
			q.push(task{kind: a.Type, run: func(_ context.Context, cc *clickContext) {
				ai.navigate(cc, target)
			}})
		case models.ActionLogin:
			q.push(task{kind: a.Type, run: ai.login})
		case models.ActionLogout:
			q.push(task{kind: a.Type, run: ai.logout})
		case models.ActionSubmit:
			q.push(task{kind: a.Type, run: func(context.Context, *clickContext) {
				ai.observe(models.ActionSubmit, "noop")
			}})
		default:
			logutils.Log.WithFields(logutils.Fields{"type": a.Type}).Warn("⚠️  Skipping unknown action type")
		}
	}
	return q
}

func (ai *ActionInterpreter) navigate(cc *clickContext, target string) {
	if target == "" || cc.result.State.FindScreen(target) == nil {
		ai.observe(models.ActionNavigate, "noop")
		return
	}
	cc.result.State = document.Navigate(cc.result.State, target)
	ai.observe(models.ActionNavigate, "success")
}

func (ai *ActionInterpreter) login(ctx context.Context, cc *clickContext) {
	session, err := ai.auth.SignInAnonymously(ctx)
	if err != nil {
		logutils.Log.Warnf("⚠️ Preview login failed: %v", err)
		cc.notify(models.NotificationError, "Login failed")
		ai.observe(models.ActionLogin, "failure")
		return
	}

	cc.result.Session = session
	cc.result.State = document.SetLoggedIn(cc.result.State, true)
	if home := cc.result.State.DefaultLoggedInScreen(); home != nil {
		cc.result.State = document.Navigate(cc.result.State, home.ID)
	}
	cc.notify(models.NotificationSuccess, "Logged in")
	ai.observe(models.ActionLogin, "success")
}

func (ai *ActionInterpreter) logout(ctx context.Context, cc *clickContext) {
	token := ""
	if cc.result.Session != nil {
		token = cc.result.Session.Token
	}
	if err := ai.auth.SignOut(ctx, token); err != nil {
		logutils.Log.Warnf("⚠️ Preview logout failed: %v", err)
		cc.notify(models.NotificationError, "Logout failed")
		ai.observe(models.ActionLogout, "failure")
		return
	}

	cc.result.Session = nil
	cc.result.State = document.SetLoggedIn(cc.result.State, false)
	if login := cc.result.State.DefaultLoggedOutScreen(); login != nil {
		cc.result.State = document.Navigate(cc.result.State, login.ID)
	}
	cc.notify(models.NotificationSuccess, "Logged out")
	ai.observe(models.ActionLogout, "success")
}

func (ai *ActionInterpreter) observe(kind models.ActionType, result string) {
	if ai.metrics != nil {
		ai.metrics.PreviewActions.WithLabelValues(string(kind), result).Inc()
	}
}
