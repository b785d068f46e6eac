package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/projectsync/projectsync/internal/application/dto"
	appservice "github.com/projectsync/projectsync/internal/application/service"
	"github.com/projectsync/projectsync/internal/config"
	"github.com/projectsync/projectsync/internal/domain/models"
	domainservice "github.com/projectsync/projectsync/internal/domain/service"
	"github.com/projectsync/projectsync/internal/infrastructure/database"
	"github.com/projectsync/projectsync/internal/infrastructure/repository"
	"github.com/projectsync/projectsync/internal/infrastructure/storage"
	"github.com/projectsync/projectsync/internal/injectable"
	"github.com/projectsync/projectsync/internal/server"
	"github.com/projectsync/projectsync/pkg/logger"
)

type testApp struct {
	srv  *server.Server
	deps injectable.Dependencies
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	fsStorage, err := storage.NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	return newTestAppWithStorage(t, fsStorage)
}

func newTestAppWithStorage(t *testing.T, store domainservice.StorageService) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gormDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(gormDB))

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Auth:   config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: 1},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}

	userRepo := repository.NewUserRepository(gormDB)
	repoRepo := repository.NewRepoRepository(gormDB)
	clientRepo := repository.NewClientRepository(gormDB)

	authService := appservice.NewAuthService(userRepo, &cfg.Auth)
	deps := injectable.Dependencies{
		AuthService:    authService,
		RepoService:    appservice.NewRepoService(repoRepo, userRepo, clientRepo, store),
		UserService:    appservice.NewUserService(userRepo, repoRepo, authService),
		ClientService:  appservice.NewClientService(clientRepo, repoRepo),
		SweeperService: appservice.NewSweeperService(repoRepo, store, ""),
		Storage:        store,
	}

	srv := server.NewWithConfig(cfg, database.NewDatabaseFromGorm(gormDB))
	r := NewRouterWithDeps(srv, &deps)
	r.RegisterRoutes()

	return &testApp{srv: srv, deps: deps}
}

func (app *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	app.srv.ServeHTTP(w, req)
	return w
}

func (app *testApp) register(t *testing.T, username, email, password string) {
	t.Helper()
	w := app.do(t, http.MethodPost, "/api/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (app *testApp) login(t *testing.T, email, password string) string {
	t.Helper()
	w := app.do(t, http.MethodPost, "/api/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK!", w.Body.String())

	w = app.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWelcomeRequiresAuth(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/main", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	app.register(t, "ana", "ana@example.com", "secret1")
	token := app.login(t, "ana@example.com", "secret1")

	w = app.do(t, http.MethodGet, "/main", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterLoginMe(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "ana", "ana@example.com", "secret1")

	// Duplicate registration conflicts.
	w := app.do(t, http.MethodPost, "/api/register", "", gin.H{
		"username": "ana2",
		"email":    "ana@example.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Wrong password is rejected without detail.
	w = app.do(t, http.MethodPost, "/api/login", "", gin.H{
		"email":    "ana@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := app.login(t, "ana@example.com", "secret1")

	w = app.do(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decodeJSON(t, w)
	assert.Equal(t, "ana", me["username"])

	w = app.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func multipartRepoRequest(t *testing.T, fields map[string]string, fileName, fileContent string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestRepoLifecycle(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "owner", "owner@example.com", "secret1")
	token := app.login(t, "owner@example.com", "secret1")

	// Create via multipart with an attached file.
	body, contentType := multipartRepoRequest(t, map[string]string{
		"projectname": "delivery-platform",
		"description": "logistics rewrite",
		"fechaInicio": "2024-03-01",
		"fechaFin":    "2024-12-31",
	}, "plan.pdf", "the plan")

	req := httptest.NewRequest(http.MethodPost, "/api/newrepo", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	app.srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decodeJSON(t, w)
	repoID := created["id"].(string)
	require.NotEmpty(t, repoID)

	// Owner sees it in their list.
	w = app.do(t, http.MethodGet, "/api/repos", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeJSON(t, w)
	assert.EqualValues(t, 1, list["total"])

	// The unguarded endpoints work without a token.
	w = app.do(t, http.MethodGet, "/api/repos/all", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/repos/find/"+repoID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := decodeJSON(t, w)
	assert.Equal(t, "delivery-platform", found["projectname"])

	// Download streams the artifact under its stored name, no token needed.
	w = app.do(t, http.MethodGet, "/api/repo/"+repoID+"/download", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "the plan", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	// The guarded detail endpoint requires a token.
	w = app.do(t, http.MethodGet, "/api/repo/"+repoID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Partial update: rename and clear the description, leave dates alone.
	w = app.do(t, http.MethodPut, "/api/updaterepo/"+repoID, token, json.RawMessage(
		`{"projectname":"renamed","description":null}`,
	))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeJSON(t, w)
	assert.Equal(t, "renamed", updated["projectname"])
	assert.Nil(t, updated["description"])
	assert.Equal(t, "2024-03-01", updated["fechaInicio"])

	// Clearing the projectname is rejected.
	w = app.do(t, http.MethodPut, "/api/updaterepo/"+repoID, token, json.RawMessage(
		`{"projectname":null}`,
	))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Delete, then the record is gone.
	w = app.do(t, http.MethodDelete, "/api/deleterepo/"+repoID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/repos/find/"+repoID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRepoAccessControl(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "owner", "owner@example.com", "secret1")
	app.register(t, "collab", "collab@example.com", "secret1")
	app.register(t, "stranger", "stranger@example.com", "secret1")

	ownerToken := app.login(t, "owner@example.com", "secret1")
	collabToken := app.login(t, "collab@example.com", "secret1")
	strangerToken := app.login(t, "stranger@example.com", "secret1")

	w := app.do(t, http.MethodPost, "/api/newrepo", ownerToken, gin.H{
		"projectname": "private-project",
		"fechaInicio": "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	repoID := decodeJSON(t, w)["id"].(string)

	var collabID string
	{
		w := app.do(t, http.MethodGet, "/api/me", collabToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		collabID = decodeJSON(t, w)["id"].(string)
	}

	// Only the owner may add collaborators.
	w = app.do(t, http.MethodPost, "/api/repos/"+repoID+"/colaboradores", strangerToken, gin.H{"userId": collabID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPost, "/api/repos/"+repoID+"/colaboradores", ownerToken, gin.H{"userId": collabID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Adding the same user twice is a validation error.
	w = app.do(t, http.MethodPost, "/api/repos/"+repoID+"/colaboradores", ownerToken, gin.H{"userId": collabID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The collaborator can now read but not modify.
	w = app.do(t, http.MethodGet, "/api/repo/"+repoID, collabToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPut, "/api/updaterepo/"+repoID, collabToken, gin.H{"projectname": "hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodDelete, "/api/deleterepo/"+repoID, collabToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A stranger cannot read the guarded endpoints at all.
	w = app.do(t, http.MethodGet, "/api/repo/"+repoID, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The repo shows up in the collaborator's collaborations list.
	w = app.do(t, http.MethodGet, "/api/repos/colaboraciones", collabToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeJSON(t, w)["total"])

	// Collaborator list is readable by members.
	w = app.do(t, http.MethodGet, "/api/repos/"+repoID+"/colaboradores", collabToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeJSON(t, w)["total"])

	// Remove, then the collaborator loses access.
	w = app.do(t, http.MethodDelete, fmt.Sprintf("/api/repos/%s/colaboradores/%s", repoID, collabID), ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/repo/"+repoID, collabToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Removing a non-member fails validation.
	w = app.do(t, http.MethodDelete, fmt.Sprintf("/api/repos/%s/colaboradores/%s", repoID, collabID), ownerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (app *testApp) seedAdmin(t *testing.T) string {
	t.Helper()
	_, err := app.deps.UserService.CreateUser(context.Background(), &dto.CreateUserRequest{
		Username: "admin",
		Email:    "admin@example.com",
		Password: "secret1",
		Cargo:    models.RoleAdmin,
	})
	require.NoError(t, err)
	return app.login(t, "admin@example.com", "secret1")
}

func TestAdminRoutes(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "plain", "plain@example.com", "secret1")
	plainToken := app.login(t, "plain@example.com", "secret1")
	adminToken := app.seedAdmin(t)

	// Account administration is admin-only.
	w := app.do(t, http.MethodPost, "/api/createuser", plainToken, gin.H{
		"username": "newbie",
		"email":    "newbie@example.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPost, "/api/createuser", adminToken, gin.H{
		"username": "newbie",
		"email":    "newbie@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Any authenticated user can browse the directory.
	w = app.do(t, http.MethodGet, "/api/users", plainToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decodeJSON(t, w)["total"])

	w = app.do(t, http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClientRoutes(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "plain", "plain@example.com", "secret1")
	plainToken := app.login(t, "plain@example.com", "secret1")
	adminToken := app.seedAdmin(t)

	// Client mutations are admin-only.
	w := app.do(t, http.MethodPost, "/api/clients", plainToken, gin.H{"name": "Acme SL"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPost, "/api/clients", adminToken, gin.H{
		"name":  "Acme SL",
		"cif":   "B12345678",
		"email": "contact@acme.example",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	clientID := decodeJSON(t, w)["id"].(string)

	// Reads only need a valid token.
	w = app.do(t, http.MethodGet, "/api/clients", plainToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/clients/"+clientID, plainToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// A repo referencing the client blocks deletion.
	w = app.do(t, http.MethodPost, "/api/newrepo", plainToken, gin.H{
		"projectname": "for-acme",
		"fechaInicio": "2024-03-01",
		"client":      clientID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	repoID := decodeJSON(t, w)["id"].(string)

	w = app.do(t, http.MethodDelete, "/api/clients/"+clientID, adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.do(t, http.MethodDelete, "/api/deleterepo/"+repoID, plainToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodDelete, "/api/clients/"+clientID, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRepoCreateWithUnknownClient(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "ana", "ana@example.com", "secret1")
	token := app.login(t, "ana@example.com", "secret1")

	w := app.do(t, http.MethodPost, "/api/newrepo", token, gin.H{
		"projectname": "p",
		"fechaInicio": "2024-03-01",
		"client":      uuid.New().String(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// brokenReadStorage serves one artifact whose reader fails partway
// through, simulating a storage backend dropping mid-stream.
type brokenReadStorage struct {
	storedName string
	prefix     []byte
}

func (s *brokenReadStorage) Store(_ context.Context, _ string, _ io.Reader) (string, error) {
	return s.storedName, nil
}

func (s *brokenReadStorage) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	return io.NopCloser(io.MultiReader(
		bytes.NewReader(s.prefix),
		&failingReader{},
	)), nil
}

func (s *brokenReadStorage) Exists(context.Context, string) (bool, error) { return true, nil }
func (s *brokenReadStorage) Delete(context.Context, string) error         { return nil }
func (s *brokenReadStorage) List(context.Context) ([]string, error)       { return nil, nil }

type failingReader struct{}

func (*failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read: connection reset")
}

func TestDownloadStreamFailureIsLogged(t *testing.T) {
	app := newTestAppWithStorage(t, &brokenReadStorage{
		storedName: "11111111-1111-1111-1111-111111111111-plan.pdf",
		prefix:     []byte("the pl"),
	})

	observed, logs := observer.New(zapcore.WarnLevel)
	prev := logger.Get()
	logger.SetGlobal(logger.NewWithCore(nil, observed))
	defer logger.SetGlobal(prev)

	app.register(t, "owner", "owner@example.com", "secret1")
	token := app.login(t, "owner@example.com", "secret1")

	body, contentType := multipartRepoRequest(t, map[string]string{
		"projectname": "delivery-platform",
		"fechaInicio": "2024-03-01",
	}, "plan.pdf", "the plan")

	req := httptest.NewRequest(http.MethodPost, "/api/newrepo", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	app.srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	repoID := decodeJSON(t, w)["id"].(string)

	w = app.do(t, http.MethodGet, "/api/repo/"+repoID+"/download", "", nil)

	// Headers were already sent, so the client sees a truncated 200.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "the pl", w.Body.String())

	entries := logs.FilterMessage("artifact download stream interrupted").All()
	require.Len(t, entries, 1)
}
