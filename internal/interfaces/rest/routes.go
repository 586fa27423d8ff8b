package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/appcanvas/builder/internal/application/services"
	"github.com/appcanvas/builder/internal/interfaces/middleware"
)

// RegisterRoutes mounts the public and authenticated API on router
func RegisterRoutes(router *gin.Engine, svcMgr *services.ServiceManager) {
	authHandler := NewAuthHandler(svcMgr)
	projectHandler := NewProjectHandler(svcMgr)
	editorHandler := NewEditorHandler(svcMgr)
	recordHandler := NewRecordHandler(svcMgr)
	exportHandler := NewExportHandler(svcMgr)

	// Public
	router.GET("/share", exportHandler.SharePage)

	api := router.Group("/api")
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/anonymous", authHandler.Anonymous)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/share/:publishedId", exportHandler.Shared)
	api.GET("/editor/operations", editorHandler.Operations)

	// Protected
	protected := api.Group("")
	protected.Use(middleware.RequireAuth(svcMgr.Auth))
	{
		protected.GET("/auth/session", authHandler.Session)

		protected.GET("/projects", projectHandler.List)
		protected.POST("/projects", projectHandler.Create)
		protected.GET("/projects/:projectId", projectHandler.Get)
		protected.PATCH("/projects/:projectId", projectHandler.Update)
		protected.DELETE("/projects/:projectId", projectHandler.Delete)
		protected.POST("/projects/:projectId/publish", projectHandler.Publish)

		editor := protected.Group("/projects/:projectId/editor")
		editor.GET("", editorHandler.View)
		editor.DELETE("", editorHandler.Close)
		editor.POST("/operations", editorHandler.Apply)
		editor.POST("/place", editorHandler.Place)
		editor.POST("/drag/start", editorHandler.DragStart)
		editor.POST("/drag/move", editorHandler.DragMove)
		editor.POST("/drag/end", editorHandler.DragEnd)
		editor.POST("/save", editorHandler.Save)
		editor.POST("/reload", editorHandler.Reload)
		editor.POST("/preview/click", editorHandler.PreviewClick)

		protected.GET("/projects/:projectId/databases/:databaseId/records", recordHandler.List)

		protected.GET("/projects/:projectId/export/html", exportHandler.HTML)
		protected.GET("/projects/:projectId/export/config", exportHandler.Config)
	}
}
