// Package main writes the static HTML or JSON configuration of a stored
// project without going through the HTTP API.
//
// Usage: go run ./cmd/export <projectId> [html|config] [output file]
//
// The output defaults to exported-app.html or app-config.json in the
// current directory. Database and backend settings come from the same
// config.yaml / environment as the server.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/appcanvas/builder/internal/application/render"
	"github.com/appcanvas/builder/internal/application/services"
	"github.com/appcanvas/builder/internal/infrastructure/database"
	"github.com/appcanvas/builder/internal/interfaces/rest"
	"github.com/appcanvas/builder/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <projectId> [html|config] [output file]", os.Args[0])
	}
	projectID := os.Args[1]
	format := "html"
	if len(os.Args) > 2 {
		format = os.Args[2]
	}
	output := rest.ExportHTMLFile
	if format == "config" {
		output = rest.ExportConfigFile
	}
	if len(os.Args) > 3 {
		output = os.Args[3]
	}

	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	svcMgr := services.NewServiceManager(cfg, db)
	defer svcMgr.Shutdown(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	project, err := svcMgr.Projects.Get(ctx, projectID)
	if err != nil {
		log.Fatalf("Failed to load project %s: %v", projectID, err)
	}
	doc, err := svcMgr.Documents.LoadProjectDocument(ctx, projectID)
	if err != nil {
		log.Fatalf("Failed to load document: %v", err)
	}

	var body []byte
	switch format {
	case "html":
		page, err := render.RenderExport(doc, render.ExportOptions{
			Title:         project.Title,
			StartScreenID: render.HomeScreenID(doc),
		})
		if err != nil {
			log.Fatalf("Failed to render export: %v", err)
		}
		body = []byte(page)
	case "config":
		body, err = render.RenderConfig(doc, time.Now()).JSON()
		if err != nil {
			log.Fatalf("Failed to encode configuration: %v", err)
		}
	default:
		log.Fatalf("unknown format %q (want html or config)", format)
	}

	if err := os.WriteFile(output, body, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", output, err)
	}
	log.Printf("✅ Exported %q (%d screens, %d databases) to %s", project.Title, len(doc.Screens), len(doc.Databases), output)
}
