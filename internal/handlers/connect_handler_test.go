package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ihere-app/ihere-backend/internal/chat"
	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validators.NewValidator()
	return e
}

// newRequestContext builds an authenticated echo context the way the auth
// middleware would leave it.
func newRequestContext(e *echo.Echo, method, target, body, uid string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("firebaseUID", uid)
	return c, rec
}

func newConnectHandler() (*ConnectHandler, *chat.MemoryBackend) {
	backend := chat.NewMemoryBackend("test-secret")
	bridge := chat.NewChannelBridge(backend)
	exchange := chat.NewTokenExchange(backend, bridge, time.Hour, nil)
	return NewConnectHandler(exchange), backend
}

// memoryAudit is an in-memory stand-in for the Postgres credential audit.
type memoryAudit struct {
	records []models.IssuedCredential
}

func (a *memoryAudit) RecordIssued(cred *models.IssuedCredential) error {
	a.records = append(a.records, *cred)
	return nil
}

func (a *memoryAudit) ListByUserID(userID string) ([]models.IssuedCredential, error) {
	var out []models.IssuedCredential
	for _, c := range a.records {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (a *memoryAudit) PurgeExpired(before time.Time) (int64, error) {
	kept := a.records[:0]
	var purged int64
	for _, c := range a.records {
		if c.ExpiresAt.Before(before) {
			purged++
			continue
		}
		kept = append(kept, c)
	}
	a.records = kept
	return purged, nil
}

func TestConnectHandler_Connect(t *testing.T) {
	e := newEcho()
	h, _ := newConnectHandler()

	c, rec := newRequestContext(e, http.MethodPost, "/api/connect", `{"userId":"ignored","username":"ana"}`, "ana")
	require.NoError(t, h.Connect(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp models.ConnectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestConnectHandler_ConnectRequiresAuth(t *testing.T) {
	e := newEcho()
	h, _ := newConnectHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/connect", strings.NewReader(`{"username":"ana"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Connect(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestConnectHandler_PrivateChat(t *testing.T) {
	e := newEcho()
	h, backend := newConnectHandler()

	body := `{"recipientId":"ben","recipientName":"Ben"}`
	c, rec := newRequestContext(e, http.MethodPost, "/api/privChat", body, "ana")
	require.NoError(t, h.PrivateChat(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp models.PrivateChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ana_ben", resp.ChannelID)

	// Repeating the call resolves the same channel without duplicating
	// membership.
	c, rec = newRequestContext(e, http.MethodPost, "/api/privChat", body, "ana")
	require.NoError(t, h.PrivateChat(c))
	var again models.PrivateChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))
	assert.Equal(t, resp.ChannelID, again.ChannelID)

	ch, err := backend.Channel(c.Request().Context(), resp.ChannelID)
	require.NoError(t, err)
	assert.Len(t, ch.Members, 2)
}

func TestConnectHandler_PrivateChatRejectsSelf(t *testing.T) {
	e := newEcho()
	h, _ := newConnectHandler()

	c, _ := newRequestContext(e, http.MethodPost, "/api/privChat", `{"recipientId":"ana"}`, "ana")
	err := h.PrivateChat(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestConnectHandler_ListCredentials(t *testing.T) {
	e := newEcho()
	backend := chat.NewMemoryBackend("test-secret")
	exchange := chat.NewTokenExchange(backend, chat.NewChannelBridge(backend), time.Hour, &memoryAudit{})
	h := NewConnectHandler(exchange)

	c, _ := newRequestContext(e, http.MethodPost, "/api/connect", `{"username":"ana"}`, "ana")
	require.NoError(t, h.Connect(c))

	c, rec := newRequestContext(e, http.MethodGet, "/api/connect/credentials", "", "ana")
	require.NoError(t, h.ListCredentials(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	var creds []models.IssuedCredential
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &creds))
	require.Len(t, creds, 1)
	assert.Equal(t, "ana", creds[0].UserID)

	// Someone else's trail is empty, as is any trail without an audit store.
	c, rec = newRequestContext(e, http.MethodGet, "/api/connect/credentials", "", "ben")
	require.NoError(t, h.ListCredentials(c))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestConnectHandler_PrivateChatValidatesRecipient(t *testing.T) {
	e := newEcho()
	h, _ := newConnectHandler()

	c, _ := newRequestContext(e, http.MethodPost, "/api/privChat", `{}`, "ana")
	err := h.PrivateChat(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
