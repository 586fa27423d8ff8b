package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appcanvas/builder/internal/application/services"
	"github.com/appcanvas/builder/internal/bootstrap"
	"github.com/appcanvas/builder/internal/infrastructure/database"
	"github.com/appcanvas/builder/internal/interfaces/rest"
	"github.com/appcanvas/builder/pkg/config"
)

const (
	adminEmail    = "owner@example.com"
	adminPassword = "correct-horse"
)

type apiFixture struct {
	router *gin.Engine
	sm     *services.ServiceManager
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Admin.Email = adminEmail
	cfg.Admin.Password = adminPassword

	conn, err := database.Open(config.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx := context.Background()
	require.NoError(t, bootstrap.InitializeSchema(ctx, conn))

	sm := services.NewServiceManager(cfg, conn)
	t.Cleanup(func() { sm.Shutdown(context.Background()) })
	require.NoError(t, bootstrap.InitializeAdmin(ctx, cfg, sm.Users))

	router := gin.New()
	rest.RegisterRoutes(router, sm)
	return &apiFixture{router: router, sm: sm}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) login(t *testing.T) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/auth/login", "", rest.LoginRequest{Email: adminEmail, Password: adminPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Session.Token)
	return resp.Session.Token
}

func (f *apiFixture) createProject(t *testing.T, token, title string) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/projects", token, services.CreateProjectInput{Title: title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Project struct {
			ID string `json:"id"`
		} `json:"project"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Project.ID)
	return resp.Project.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAPI_RequiresBearerToken(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, w)["code"])

	w = f.do(t, http.MethodGet, "/api/projects", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_LoginRejectsWrongPassword(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/auth/login", "", rest.LoginRequest{Email: adminEmail, Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode(t, w)["message"])
}

func TestAPI_LoginRequiresBody(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": adminEmail})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_SessionAndLogout(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)

	w := f.do(t, http.MethodGet, "/api/auth/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, adminEmail, user["email"])

	w = f.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/auth/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_AnonymousUsersCannotOwnProjects(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/auth/anonymous", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = f.do(t, http.MethodPost, "/api/projects", resp.Session.Token, services.CreateProjectInput{Title: "Mine"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAPI_ProjectLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)
	id := f.createProject(t, token, "Demo App")

	w := f.do(t, http.MethodGet, "/api/projects", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["projects"], 1)

	w = f.do(t, http.MethodPatch, "/api/projects/"+id, token, map[string]string{"title": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	project := decode(t, w)["project"].(map[string]interface{})
	assert.Equal(t, "Renamed", project["title"])

	w = f.do(t, http.MethodDelete, "/api/projects/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/projects/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_PlaceSavePublishShare(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)
	id := f.createProject(t, token, "Demo App")

	w := f.do(t, http.MethodPost, "/api/projects/"+id+"/editor/place", token, services.PlaceRequest{Type: "button", X: 100, Y: 100})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var snap services.EditorSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.Len(t, snap.View.Nodes, 1)
	assert.Equal(t, 40.0, snap.View.Nodes[0].Box.X)
	assert.Equal(t, 80.0, snap.View.Nodes[0].Box.Y)
	assert.True(t, snap.Dirty)

	w = f.do(t, http.MethodPost, "/api/projects/"+id+"/editor/save", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["notifications"])

	w = f.do(t, http.MethodPost, "/api/projects/"+id+"/publish", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var published struct {
		Published services.PublishResult `json:"published"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &published))
	require.NotEmpty(t, published.Published.PublishedID)
	assert.Contains(t, published.Published.URL, "/share?share="+published.Published.PublishedID)

	// No token: share previews are public
	w = f.do(t, http.MethodGet, "/share?share="+published.Published.PublishedID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Demo App")
	assert.Contains(t, w.Body.String(), "Button")

	w = f.do(t, http.MethodGet, "/api/share/"+published.Published.PublishedID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snapshot := decode(t, w)["snapshot"].(map[string]interface{})
	assert.Equal(t, "Demo App", snapshot["title"])
}

func TestAPI_ShareUnknownID(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/share?share=does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "App not found")

	w = f.do(t, http.MethodGet, "/share", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/api/share/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_OperationsAndRecords(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)
	id := f.createProject(t, token, "Demo App")
	base := "/api/projects/" + id + "/editor/operations"

	w := f.do(t, http.MethodPost, base, token, map[string]interface{}{
		"type": "addDatabase",
		"database": map[string]interface{}{
			"id":     "people",
			"name":   "People",
			"fields": []map[string]string{{"name": "name", "type": "text"}, {"name": "age", "type": "number"}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, rec := range []map[string]interface{}{{"name": "Ada", "age": 36}, {"name": "Linus", "age": 21}} {
		w = f.do(t, http.MethodPost, base, token, map[string]interface{}{"type": "saveRecord", "databaseId": "people", "data": rec})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = f.do(t, http.MethodPost, base, token, map[string]interface{}{"type": "saveRecord", "databaseId": "people", "data": map[string]interface{}{"name": ""}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/projects/"+id+"/databases/people/records?filter=age%20%3E%2030", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	records := decode(t, w)["records"].([]interface{})
	require.Len(t, records, 1)
	assert.Equal(t, "Ada", records[0].(map[string]interface{})["data"].(map[string]interface{})["name"])

	w = f.do(t, http.MethodGet, "/api/projects/"+id+"/databases/people/records?filter=age%20%3E", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/projects/"+id+"/databases/missing/records", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_ExportDownloads(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)
	id := f.createProject(t, token, "Demo App")

	w := f.do(t, http.MethodGet, "/api/projects/"+id+"/export/html", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), rest.ExportHTMLFile)
	assert.Contains(t, w.Body.String(), "<!DOCTYPE html>")

	w = f.do(t, http.MethodGet, "/api/projects/"+id+"/export/config", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), rest.ExportConfigFile)
	cfg := decode(t, w)
	assert.Equal(t, "1.0", cfg["version"])
	assert.Len(t, cfg["screens"], 1)
}

func TestAPI_ListsOperationTypes(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/editor/operations", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w)["operations"], "addComponent")
}
