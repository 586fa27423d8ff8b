package services

import (
	"context"
	"time"

	"github.com/appcanvas/builder/internal/domain/events"
	"github.com/appcanvas/builder/internal/domain/ports"
	"github.com/appcanvas/builder/internal/infrastructure/baas"
	"github.com/appcanvas/builder/internal/infrastructure/database"
	"github.com/appcanvas/builder/internal/infrastructure/persistence"
	"github.com/appcanvas/builder/pkg/auth"
	"github.com/appcanvas/builder/pkg/config"
	"github.com/appcanvas/builder/pkg/expression"
	"github.com/appcanvas/builder/pkg/logutils"
)

// ServiceManager orchestrates all services with dependency injection
type ServiceManager struct {
	db  *database.Connection
	cfg *config.Config

	// Infrastructure
	TxManager *persistence.TransactionManager
	Users     *persistence.UserRepository
	Sessions  *persistence.SessionRepository
	Projects  ports.ProjectRepository
	Documents ports.DocumentPersistence

	// Core services
	EventBus    *EventBus
	Metrics     *Metrics
	LocalAuth   *AuthService
	Auth        ports.AuthProvider
	Interpreter *ActionInterpreter
	ProjectSvc  *ProjectService
	Editor      *EditorService
	Records     *RecordService
	Export      *ExportService
	Scheduler   *SchedulerService

	unsubscribeAuth func()
}

// NewServiceManager creates a new service manager with all dependencies wired.
// The persistence backend decides where documents and sign-ins live;
// project metadata always stays in SQL.
func NewServiceManager(cfg *config.Config, db *database.Connection) *ServiceManager {
	sm := &ServiceManager{
		db:  db,
		cfg: cfg,
	}

	// Initialize services in dependency order
	sm.TxManager = persistence.NewTransactionManager(db.DB())
	sm.EventBus = NewEventBus()
	sm.Metrics = NewMetrics()

	sm.Users = persistence.NewUserRepository(db.DB())
	sm.Sessions = persistence.NewSessionRepository(db.DB())
	sm.Projects = persistence.NewProjectRepository(db.DB(), sm.TxManager)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	sm.LocalAuth = NewAuthService(sm.Users, sm.Sessions, tokens, cfg.Auth.AllowAnonymous)

	switch cfg.Persistence.Backend {
	case config.BackendBaaS:
		client := baas.NewClient(cfg)
		sm.Documents = baas.NewDocumentStore(client)
		sm.Auth = baas.NewAuthProvider(client)
		logutils.Log.Infof("🌐 Documents and sign-in use BaaS at %s", cfg.BaaS.URL)
	default:
		sm.Documents = persistence.NewDocumentStore(db.DB(), sm.TxManager)
		sm.Auth = sm.LocalAuth
	}

	// Forward sign-in changes onto the bus for anyone interested
	sm.unsubscribeAuth = sm.Auth.OnSessionChange(func(change ports.SessionChange) {
		sm.EventBus.PublishAsync(events.SessionChanged, change)
	})

	sm.Interpreter = NewActionInterpreter(sm.Auth, sm.Metrics)
	sm.ProjectSvc = NewProjectService(sm.Projects, sm.Documents, sm.EventBus, cfg, sm.Metrics)
	sm.Editor = NewEditorService(sm.ProjectSvc, sm.Documents, sm.Interpreter, sm.EventBus, sm.Metrics)
	sm.Records = NewRecordService(sm.Editor, expression.NewEngine())
	sm.Export = NewExportService(sm.ProjectSvc, sm.Editor, sm.Documents, sm.Metrics)
	sm.Scheduler = NewSchedulerService(sm.LocalAuth, cfg.Auth.SessionCleanup, sm.Metrics)

	return sm
}

// Shutdown stops background work
func (sm *ServiceManager) Shutdown(_ context.Context) {
	if sm.Scheduler != nil {
		sm.Scheduler.Stop()
	}
	if sm.unsubscribeAuth != nil {
		sm.unsubscribeAuth()
	}
	sm.EventBus.Clear()
}
