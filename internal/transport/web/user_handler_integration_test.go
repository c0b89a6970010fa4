package web

import (
	"bytes"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/Olprog59/go-familyhub/internal/app"
	"github.com/Olprog59/go-familyhub/internal/config"
	"github.com/Olprog59/go-familyhub/internal/dto"
	"github.com/Olprog59/go-familyhub/internal/repository/db"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "Str0ng!Pass"

// testServer runs the full router over a fresh SQLite database
type testServer struct {
	t         *testing.T
	srv       *httptest.Server
	container *app.Container
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	return &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{Port: "0", FrontendURL: "http://family.test"},
		Database: config.DatabaseConfig{
			Type: "sqlite",
			DSN:  db.SQLiteDSN(filepath.Join(dir, "family.db")),
		},
		Backup: config.BackupConfig{Path: filepath.Join(dir, "backups"), Interval: time.Hour},
		Auth: config.AuthConfig{
			JWTSecret:            "integration-secret-0123456789abcdef",
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: time.Hour,
			CookiePath:           "/",
		},
		Security: config.SecurityConfig{
			BcryptCost:        4,
			MaxFailedAttempts: 3,
			LockoutDuration:   time.Minute,
		},
		Media: config.MediaConfig{Path: filepath.Join(dir, "media"), MaxUploadBytes: 256 << 10},
		Scheduler: config.SchedulerConfig{
			TokenPurgeSchedule:        "@daily",
			HelpRequestExpirySchedule: "@hourly",
			HelpRequestGrace:          24 * time.Hour,
		},
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := testConfig(t)
	container, err := app.NewContainer(cfg)
	require.NoError(t, err)

	handler := NewMux(NewHandler(container), cfg, container)
	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		srv.Close()
		container.Close()
	})

	return &testServer{t: t, srv: srv, container: container}
}

// testClient keeps cookies between calls like a browser would
type testClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func (s *testServer) newClient() *testClient {
	jar, err := cookiejar.New(nil)
	require.NoError(s.t, err)
	return &testClient{t: s.t, base: s.srv.URL, http: &http.Client{Jar: jar}}
}

// signUp registers and logs a member in / Inscrit et connecte un membre
func (s *testServer) signUp(email string) *testClient {
	c := s.newClient()
	resp := c.do(http.MethodPost, "/api/register", dto.RegisterDTOReq{Email: email, Password: testPassword})
	resp.Body.Close()
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)

	resp = c.do(http.MethodPost, "/api/login", dto.UserDTOReq{Username: email, Password: testPassword})
	resp.Body.Close()
	require.Equal(s.t, http.StatusOK, resp.StatusCode)
	return c
}

func (c *testClient) cookie(name string) string {
	u, _ := url.Parse(c.base)
	for _, ck := range c.http.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func (c *testClient) do(method, path string, body any) *http.Response {
	c.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.cookie("csrf_token"); token != "" {
		req.Header.Set("X-CSRF-Token", token)
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	return resp
}

// call sends a request, checks the status and decodes the body into out
func (c *testClient) call(method, path string, body any, wantStatus int, out any) {
	c.t.Helper()

	resp := c.do(method, path, body)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	require.Equal(c.t, wantStatus, resp.StatusCode, "%s %s: %s", method, path, raw)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(raw, out), string(raw))
	}
}

func TestIntegration_RegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	c := s.newClient()

	var msg map[string]string
	c.call(http.MethodPost, "/api/register", dto.RegisterDTOReq{Email: "Alice@Family.test", Password: testPassword}, http.StatusCreated, &msg)
	assert.Equal(t, registrationMessage, msg["message"])

	// A taken email answers exactly like a new one
	var dup map[string]string
	c.call(http.MethodPost, "/api/register", dto.RegisterDTOReq{Email: "alice@family.test", Password: testPassword}, http.StatusCreated, &dup)
	assert.Equal(t, msg, dup)

	c.call(http.MethodPost, "/api/login", dto.UserDTOReq{Username: "alice@family.test", Password: "wrong"}, http.StatusUnauthorized, nil)

	var user dto.UserDTOResponse
	c.call(http.MethodPost, "/api/login", dto.UserDTOReq{Username: "alice@family.test", Password: testPassword}, http.StatusOK, &user)
	assert.Equal(t, "alice@family.test", user.Email)
	assert.Equal(t, "admin", user.Role, "first member administers the family")
	assert.Equal(t, "alice", user.DisplayName)

	assert.NotEmpty(t, c.cookie("access_token"))
	assert.NotEmpty(t, c.cookie("refresh_token"))
	assert.NotEmpty(t, c.cookie("csrf_token"))
}

func TestIntegration_Me(t *testing.T) {
	s := newTestServer(t)
	c := s.signUp("me@family.test")

	var me dto.UserDTOResponse
	c.call(http.MethodGet, "/api/me", nil, http.StatusOK, &me)
	assert.Equal(t, "me@family.test", me.Email)

	var updated dto.UserDTOResponse
	c.call(http.MethodPatch, "/api/me", map[string]any{"display_name": "Mamie", "birthday": "1950-04-12"}, http.StatusOK, &updated)
	assert.Equal(t, "Mamie", updated.DisplayName)
	require.NotNil(t, updated.Birthday)

	var bad map[string]any
	c.call(http.MethodPatch, "/api/me", map[string]any{"display_name": "   "}, http.StatusBadRequest, &bad)
	assert.Contains(t, bad["fields"], "display_name")

	anonymous := s.newClient()
	anonymous.call(http.MethodGet, "/api/me", nil, http.StatusUnauthorized, nil)
}

func TestIntegration_CSRFRequired(t *testing.T) {
	s := newTestServer(t)
	c := s.signUp("csrf@family.test")

	req, err := http.NewRequest(http.MethodGet, c.base+"/api/me", nil)
	require.NoError(t, err)
	resp, err := c.http.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestIntegration_InvalidJSON(t *testing.T) {
	s := newTestServer(t)
	c := s.newClient()

	for _, path := range []string{"/api/register", "/api/login"} {
		t.Run(path, func(t *testing.T) {
			c.call(http.MethodPost, path, "{not json", http.StatusBadRequest, nil)
		})
	}
}

func TestIntegration_WeakPassword(t *testing.T) {
	s := newTestServer(t)
	c := s.newClient()

	tests := []struct {
		name     string
		email    string
		password string
		field    string
	}{
		{"too short", "short@family.test", "Ab1!", "password"},
		{"no digit", "nodigit@family.test", "NoDigits!Here", "password"},
		{"bad email", "not-an-email", testPassword, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				Error  string            `json:"error"`
				Fields map[string]string `json:"fields"`
			}
			c.call(http.MethodPost, "/api/register", dto.RegisterDTOReq{Email: tt.email, Password: tt.password}, http.StatusBadRequest, &body)
			assert.Contains(t, body.Fields, tt.field)
		})
	}
}

func TestIntegration_AccountLockout(t *testing.T) {
	s := newTestServer(t)
	s.signUp("locked@family.test")
	c := s.newClient()

	for range 3 {
		c.call(http.MethodPost, "/api/login", dto.UserDTOReq{Username: "locked@family.test", Password: "nope"}, http.StatusUnauthorized, nil)
	}

	var body map[string]string
	c.call(http.MethodPost, "/api/login", dto.UserDTOReq{Username: "locked@family.test", Password: testPassword}, http.StatusUnauthorized, &body)
	assert.Contains(t, body["error"], "locked")
}

func TestIntegration_RefreshAndLogout(t *testing.T) {
	s := newTestServer(t)
	c := s.signUp("refresh@family.test")
	oldRefresh := c.cookie("refresh_token")

	var pair map[string]any
	c.call(http.MethodPost, "/api/refresh", nil, http.StatusOK, &pair)
	assert.NotEmpty(t, pair["access_token"])
	assert.NotEqual(t, oldRefresh, c.cookie("refresh_token"), "refresh token rotates")

	// The rotated token cannot be replayed
	c.call(http.MethodPost, "/api/refresh", map[string]string{"refresh_token": oldRefresh}, http.StatusUnauthorized, nil)

	c.call(http.MethodPost, "/api/logout", nil, http.StatusOK, nil)
	assert.Empty(t, c.cookie("access_token"))
	c.call(http.MethodGet, "/api/me", nil, http.StatusUnauthorized, nil)
}

func TestIntegration_FamilyProfiles(t *testing.T) {
	s := newTestServer(t)
	admin := s.signUp("admin@family.test")
	bob := s.signUp("bob@family.test")

	var family dto.ListDTOResponse[dto.UserDTOResponse]
	bob.call(http.MethodGet, "/api/users", nil, http.StatusOK, &family)
	require.Len(t, family.Items, 2)
	for _, u := range family.Items {
		assert.Empty(t, u.Email, "family listing hides emails")
	}

	var me dto.UserDTOResponse
	admin.call(http.MethodGet, "/api/me", nil, http.StatusOK, &me)

	var profile dto.ProfileDTOResponse
	bob.call(http.MethodGet, "/api/users/"+itoa(me.ID), nil, http.StatusOK, &profile)
	assert.Equal(t, me.ID, profile.User.ID)
	assert.Empty(t, profile.User.Email)

	bob.call(http.MethodGet, "/api/users/9999", nil, http.StatusNotFound, nil)
	bob.call(http.MethodGet, "/api/users/abc", nil, http.StatusBadRequest, nil)
}
