package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/onemsu/onemsu-be/config"
	"github.com/onemsu/onemsu-be/controllers"
	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/db/file"
	"github.com/onemsu/onemsu-be/services"
)

type testEnv struct {
	engine *gin.Engine
	db     appDb.Database
	cfg    *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := file.GetDatabase(t.TempDir())
	if err != nil {
		t.Fatalf("GetDatabase: %v", err)
	}
	cfg := &config.Config{
		Port:      "8080",
		JWTSecret: "test-secret",
		OTPSalt:   "test-salt",
	}
	mailer := services.NewMailer(nil)
	directory, err := controllers.NewDirectoryController(context.Background(), db)
	if err != nil {
		t.Fatalf("NewDirectoryController: %v", err)
	}
	groupController, err := controllers.NewGroupController(context.Background(), db)
	if err != nil {
		t.Fatalf("NewGroupController: %v", err)
	}

	engine := gin.New()
	AddHealthCheckRoutes(engine)
	api := engine.Group("/api")
	AddAuthRoutes(api, db, nil, mailer, directory, cfg)
	AddUserRoutes(api, db, directory, nil, nil, cfg.JWTSecret)
	AddFollowRoutes(api, db, nil, nil, cfg.JWTSecret)
	AddPostRoutes(api, db, nil, cfg.JWTSecret)
	AddFeedRoutes(api, db, nil, cfg.JWTSecret)
	AddThreadRoutes(api, db, nil, cfg.JWTSecret)
	AddNotificationRoutes(api, db, nil, cfg.JWTSecret)
	AddGroupRoutes(api, db, groupController, nil, cfg.JWTSecret)

	return &testEnv{engine: engine, db: db, cfg: cfg}
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	env.engine.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response %q: %v", recorder.Body.String(), err)
	}
	return body
}

// register creates an account through the API and returns its token and user
// id.
func (env *testEnv) register(t *testing.T, email, password, displayName string) (token, userId string) {
	t.Helper()
	recorder := env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"email":       email,
		"password":    password,
		"displayName": displayName,
	}, "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("register %v: status %v body %v", email, recorder.Code, recorder.Body.String())
	}
	body := decodeBody(t, recorder)
	token, _ = body["token"].(string)
	user, _ := body["user"].(map[string]interface{})
	userId, _ = user["id"].(string)
	if token == "" || userId == "" {
		t.Fatalf("register %v: incomplete response %v", email, recorder.Body.String())
	}
	return token, userId
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	for _, method := range []string{http.MethodGet, http.MethodHead} {
		recorder := env.do(t, method, "/health", nil, "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("%v /health: status %v", method, recorder.Code)
		}
		if got := recorder.Header().Get("Cache-Control"); got != "no-store" {
			t.Fatalf("Cache-Control = %q", got)
		}
	}
}
