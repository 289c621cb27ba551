package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/PsycoVenom0/security-relay/src/config"
	"github.com/PsycoVenom0/security-relay/src/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelay struct {
	mu       sync.Mutex
	triggers []models.Trigger
	events   []models.Event
	stats    models.Stats
}

func (r *fakeRelay) Dispatch(trigger models.Trigger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers = append(r.triggers, trigger)
}

func (r *fakeRelay) Events() []models.Event { return r.events }
func (r *fakeRelay) Stats() models.Stats    { return r.stats }

func newTestRouter(t *testing.T, relay Relay) (*gin.Engine, *models.Communication) {
	return newRouterWithAPI(t, relay, models.APIConfig{
		Port:     "8080",
		Username: "admin",
		Password: "s3cret",
		Secret:   "jwt-secret",
	})
}

func newRouterWithAPI(t *testing.T, relay Relay, api models.APIConfig) (*gin.Engine, *models.Communication) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c := config.Defaults()
	c.Name = "porch"
	c.Webhook.URL = "https://discord.com/api/webhooks/1/secret-token"
	c.API = api
	configuration := &models.Configuration{Config: c}
	communication := models.NewCommunication()
	communication.Version = "1.0.0"

	r, err := NewRouter(configuration, communication, relay, nil)
	require.NoError(t, err)
	return r, communication
}

func request(r *gin.Engine, method string, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := request(r, http.MethodPost, "/api/login", models.Authentication{Username: "admin", Password: "s3cret"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var authorization models.Authorization
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &authorization))
	assert.Equal(t, "admin", authorization.Username)
	assert.Equal(t, "admin", authorization.Role)
	require.NotEmpty(t, authorization.Token)
	return authorization.Token
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, &fakeRelay{})
	w := request(r, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":"ok","message":null}`, w.Body.String())
}

func TestStatus(t *testing.T) {
	relay := &fakeRelay{stats: models.Stats{Received: 3, Delivered: 2, Failed: 1}}
	r, _ := newTestRouter(t, relay)

	w := request(r, http.MethodGet, "/api/status", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data models.Status `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "porch", response.Data.Name)
	assert.Equal(t, "1.0.0", response.Data.Version)
	assert.Equal(t, "127.0.0.1:7070", response.Data.Listener)
	assert.Equal(t, "http://192.168.4.1/still", response.Data.Camera)
	assert.Equal(t, relay.stats, response.Data.Stats)
}

func TestEvents(t *testing.T) {
	relay := &fakeRelay{events: []models.Event{{ID: "2"}, {ID: "1"}}}
	r, _ := newTestRouter(t, relay)

	w := request(r, http.MethodGet, "/api/events", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []models.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data, 2)
	assert.Equal(t, "2", response.Data[0].ID)
}

func TestLoginWithWrongPassword(t *testing.T) {
	r, _ := newTestRouter(t, &fakeRelay{})
	w := request(r, http.MethodPost, "/api/login", models.Authentication{Username: "admin", Password: "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTriggerRequiresToken(t *testing.T) {
	relay := &fakeRelay{}
	r, _ := newTestRouter(t, relay)
	w := request(r, http.MethodPost, "/api/trigger", models.TriggerRequest{Message: "motion!"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, relay.triggers)
}

func TestTrigger(t *testing.T) {
	relay := &fakeRelay{}
	r, _ := newTestRouter(t, relay)
	token := login(t, r)

	w := request(r, http.MethodPost, "/api/trigger", models.TriggerRequest{Message: "  motion at the gate \n"}, token)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	require.Len(t, relay.triggers, 1)
	assert.Equal(t, "motion at the gate", relay.triggers[0].Message)
	assert.Equal(t, models.SourceHTTP, relay.triggers[0].Source)
}

func TestTriggerWithoutMessage(t *testing.T) {
	relay := &fakeRelay{}
	r, _ := newTestRouter(t, relay)
	token := login(t, r)

	w := request(r, http.MethodPost, "/api/trigger", map[string]string{}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, relay.triggers)
}

func TestTriggerWhileShuttingDown(t *testing.T) {
	relay := &fakeRelay{}
	r, communication := newTestRouter(t, relay)
	token := login(t, r)
	communication.IsShuttingDown.Set()

	w := request(r, http.MethodPost, "/api/trigger", models.TriggerRequest{Message: "motion!"}, token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, relay.triggers)
}

func TestConfigIsRedacted(t *testing.T) {
	r, _ := newTestRouter(t, &fakeRelay{})
	token := login(t, r)

	w := request(r, http.MethodGet, "/api/config", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://discord.com/***")
	assert.NotContains(t, w.Body.String(), "secret-token")
	assert.NotContains(t, w.Body.String(), "s3cret")
	assert.NotContains(t, w.Body.String(), "jwt-secret")
}

func TestLoginWithRandomSecret(t *testing.T) {
	r, _ := newRouterWithAPI(t, &fakeRelay{}, models.APIConfig{Username: "admin", Password: "s3cret"})
	token := login(t, r)

	w := request(r, http.MethodGet, "/api/config", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	r, _ := newRouterWithAPI(t, &fakeRelay{}, models.APIConfig{Username: "admin"})
	w := request(r, http.MethodPost, "/api/login", models.Authentication{Username: "admin", Password: ""}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func preflight(r *gin.Engine, origin string, method string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/trigger", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", method)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSAllowsAllOriginsByDefault(t *testing.T) {
	r, _ := newTestRouter(t, &fakeRelay{})

	w := preflight(r, "http://dashboard.local", http.MethodPost)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	assert.NotContains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	assert.NotContains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestCORSWithConfiguredOrigins(t *testing.T) {
	r, _ := newRouterWithAPI(t, &fakeRelay{}, models.APIConfig{
		Password:    "s3cret",
		Secret:      "jwt-secret",
		CORSOrigins: "https://dashboard.local, https://ops.local",
	})

	w := preflight(r, "https://ops.local", http.MethodPost)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://ops.local", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = preflight(r, "https://evil.example", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
