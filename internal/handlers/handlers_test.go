package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devfury/ezcaretech-auth/internal/auth"
	"github.com/devfury/ezcaretech-auth/internal/config"
	"github.com/devfury/ezcaretech-auth/internal/flow"
	"github.com/devfury/ezcaretech-auth/internal/metrics"
	"github.com/devfury/ezcaretech-auth/internal/middleware"
	"github.com/devfury/ezcaretech-auth/internal/services"
	"github.com/devfury/ezcaretech-auth/internal/store"
)

const testRealm = "ezcaretech"

// newBizBox answers alice/p@ss and refuses everything else. /broken/* always fails.
func newBizBox(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LoginID  string `json:"loginId"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "p@ss" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"token":"T1"}`)
	})
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"list":[{"loginId":"alice","personName":{"firstName":"Alice","lastName":"Kim"},"email":"a@x","seq":"42","depth":2}]}`)
	})
	mux.HandleFunc("/broken/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setupRouter(t *testing.T, tokenPath string) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bizbox := newBizBox(t)
	cfg := &config.Config{
		Realm:                testRealm,
		DefaultRoles:         []string{config.DefaultRole},
		BizBoxTokenURL:       bizbox.URL + tokenPath,
		BizBoxProfileURL:     bizbox.URL + "/profile",
		BizBoxTokenPath:      "token",
		BizBoxTimeout:        2 * time.Second,
		BizBoxConnectTimeout: time.Second,
		BizBoxAuthMode:       config.BackendAuthModeNone,
	}

	db, err := store.New(context.Background(), "sqlite", ":memory:", cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	recorder := metrics.NewNoopMetrics()
	client, err := auth.NewBizBoxClient(cfg, recorder)
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	registry := flow.NewRegistry()
	require.NoError(t, registry.Register(
		services.NewEzcaretechFactory(client, cfg.DefaultRoles, logger, recorder),
	))
	runner := flow.NewRunner(registry, db, logger)

	authHandler := NewAuthHandler(runner, services.EzcaretechProviderID, testRealm, logger)
	userHandler := NewUserHandler(db, logger)

	r := gin.New()
	r.Use(sessions.Sessions("ezauth_session", cookie.NewStore([]byte("test-secret"))))
	realms := r.Group("/realms/:realm")
	realms.POST("/login", authHandler.Login)
	realms.POST("/logout", authHandler.Logout)
	realms.GET("/users/:username", middleware.RequireSession(), userHandler.GetUser)
	return r, db
}

func postLogin(r *gin.Engine, realm, username, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(
		http.MethodPost,
		"/realms/"+realm+"/login",
		strings.NewReader(form.Encode()),
	)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getUser(r *gin.Engine, username string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/realms/"+testRealm+"/users/"+username, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_Success(t *testing.T) {
	r, _ := setupRouter(t, "/token")

	w := postLogin(r, testRealm, "ALICE", "p@ss")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.Username)
	assert.Equal(t, "Alice", *body.FirstName)
	assert.True(t, body.Enabled)
	assert.True(t, body.EmailVerified)
	assert.Equal(t, "42", body.Attributes["userSeq"])
	assert.Equal(t, "2", body.Attributes["deptDepth"])
	assert.Equal(t, []string{config.DefaultRole}, body.Roles)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	lookup := getUser(r, "alice", cookies)
	assert.Equal(t, http.StatusOK, lookup.Code)
	assert.Contains(t, lookup.Body.String(), `"username":"alice"`)

	missing := getUser(r, "bob", cookies)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	r, db := setupRouter(t, "/token")

	w := postLogin(r, testRealm, "alice", "wrong")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, services.UnauthorizedMessage, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Empty(t, w.Result().Cookies())

	user, err := db.GetUserByUsername(context.Background(), testRealm, "alice")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestLogin_MissingFields(t *testing.T) {
	r, _ := setupRouter(t, "/token")

	w := postLogin(r, testRealm, "", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, services.UnauthorizedMessage, w.Body.String())
}

func TestLogin_BackendFailure(t *testing.T) {
	r, _ := setupRouter(t, "/broken/token")

	w := postLogin(r, testRealm, "alice", "p@ss")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal_error"}`, w.Body.String())
}

func TestLogin_UnknownRealm(t *testing.T) {
	r, _ := setupRouter(t, "/token")

	w := postLogin(r, "other", "alice", "p@ss")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUser_RequiresSession(t *testing.T) {
	r, _ := setupRouter(t, "/token")

	w := getUser(r, "alice", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout(t *testing.T) {
	r, _ := setupRouter(t, "/token")

	login := postLogin(r, testRealm, "alice", "p@ss")
	require.Equal(t, http.StatusOK, login.Code)

	req := httptest.NewRequest(http.MethodPost, "/realms/"+testRealm+"/logout", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// the cleared cookie no longer authenticates
	assert.Equal(t, http.StatusUnauthorized, getUser(r, "alice", w.Result().Cookies()).Code)
}

// unsavableSession is a session whose backend refuses every write
type unsavableSession struct {
	sessions.Session
	cleared bool
}

func (s *unsavableSession) Clear()                   { s.cleared = true }
func (s *unsavableSession) Options(sessions.Options) {}
func (s *unsavableSession) Save() error              { return errors.New("session backend unavailable") }

func TestLogout_SaveFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	handler := NewAuthHandler(nil, services.EzcaretechProviderID, testRealm, logger)

	session := &unsavableSession{}
	r := gin.New()
	r.POST("/logout", func(c *gin.Context) {
		c.Set(sessions.DefaultKey, session)
	}, handler.Logout)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal_error"}`, w.Body.String())
	assert.True(t, session.cleared)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "failed to clear session", entry.Message)
	assert.EqualError(t, entry.Data[logrus.ErrorKey].(error), "session backend unavailable")
}
