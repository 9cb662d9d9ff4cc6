package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/isys3001/todo-backend/internal/events"
	"github.com/isys3001/todo-backend/internal/middleware"
	"github.com/isys3001/todo-backend/internal/models"
	"github.com/isys3001/todo-backend/internal/repo"
	"github.com/isys3001/todo-backend/internal/service"
	"github.com/isys3001/todo-backend/internal/tokens"
	"github.com/isys3001/todo-backend/internal/transport"
)

type testEnv struct {
	t *testing.T
	e *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Todo{}))

	gormRepo := repo.New(db)
	authSvc := &service.AuthService{
		Repo:   gormRepo,
		Tokens: tokens.New([]byte("test-jwt-secret"), time.Hour),
	}
	todoSvc := &service.TodoService{Repo: gormRepo}

	e := echo.New()
	Register(e, &Deps{
		AuthHandler: &AuthHTTP{Svc: authSvc},
		TodoHandler: &TodoHTTP{Svc: todoSvc, Producer: &events.Producer{}},
		AuthMW:      middleware.NewBearerAuth(authSvc),
	})

	return &testEnv{t: t, e: e}
}

func (env *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	env.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(env.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) registerAndLogin(email, password string) string {
	env.t.Helper()

	rec := env.do(http.MethodPost, "/auth/register", "", map[string]string{"email": email, "password": password})
	require.Equal(env.t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(env.t, http.StatusOK, rec.Code)

	var res transport.TokenResponse
	require.NoError(env.t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(env.t, res.Token)
	return res.Token
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	payload := map[string]string{"email": "alice@example.com", "password": "secret123"}

	rec := env.do(http.MethodPost, "/auth/register", "", payload)
	require.Equal(t, http.StatusOK, rec.Code)

	var msg transport.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, "User registered successfully", msg.Message)

	rec = env.do(http.MethodPost, "/auth/register", "", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/register", "", map[string]string{"email": "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.registerAndLogin("alice@example.com", "secret123")

	rec := env.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTodos_RequireBearerToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/todos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/todos", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTodos_FullLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.registerAndLogin("alice@example.com", "secret123")

	rec := env.do(http.MethodPost, "/todos", token, map[string]string{"title": "Buy milk"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created transport.TodoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Buy milk", created.Title)
	assert.False(t, created.Completed)
	require.NotZero(t, created.ID)

	_, err := time.Parse(time.RFC3339, created.CreatedAt)
	require.NoError(t, err)

	rec = env.do(http.MethodGet, "/todos", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []transport.TodoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	rec = env.do(http.MethodPut, fmt.Sprintf("/todos/%d", created.ID), token, map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated transport.TodoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Title)

	rec = env.do(http.MethodDelete, fmt.Sprintf("/todos/%d", created.ID), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, fmt.Sprintf("/todos/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTodos_CrossUserIsNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	aliceToken := env.registerAndLogin("alice@example.com", "secret123")
	bobToken := env.registerAndLogin("bob@example.com", "hunter22")

	rec := env.do(http.MethodPost, "/todos", aliceToken, map[string]string{"title": "private"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created transport.TodoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(http.MethodGet, fmt.Sprintf("/todos/%d", created.ID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPut, fmt.Sprintf("/todos/%d", created.ID), bobToken, map[string]any{"completed": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodDelete, fmt.Sprintf("/todos/%d", created.ID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/todos", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []transport.TodoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list)
}

func TestTodos_CreateValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.registerAndLogin("alice@example.com", "secret123")

	rec := env.do(http.MethodPost, "/todos", token, map[string]string{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTodos_BadID(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.registerAndLogin("alice@example.com", "secret123")

	rec := env.do(http.MethodGet, "/todos/not-a-number", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
