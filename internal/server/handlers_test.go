package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatflowhq/chatflow/internal/analytics"
	"github.com/chatflowhq/chatflow/internal/config"
	"github.com/chatflowhq/chatflow/internal/database"
	"github.com/chatflowhq/chatflow/internal/server"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	accounts map[string]string
	feedback []database.Feedback
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[string]string)}
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) CreateAccount(_ context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("missing fields")
	}
	if _, ok := f.accounts[username]; ok {
		return fmt.Errorf("account %q: %w", username, database.ErrDuplicate)
	}
	f.accounts[username] = database.HashPassword(password)
	return nil
}

func (f *fakeStore) Authenticate(_ context.Context, username, password string) error {
	hash, ok := f.accounts[username]
	if !ok || hash != database.HashPassword(password) {
		return database.ErrInvalidCredentials
	}
	return nil
}

func (f *fakeStore) SaveFeedback(_ context.Context, fb *database.Feedback) error {
	if fb == nil || fb.Name == "" || fb.Email == "" || fb.Comment == "" || fb.Rating < 1 || fb.Rating > 5 {
		return fmt.Errorf("invalid feedback")
	}
	fb.ID = int64(len(f.feedback) + 1)
	f.feedback = append([]database.Feedback{*fb}, f.feedback...)
	return nil
}

func (f *fakeStore) ListFeedback(context.Context) ([]database.Feedback, error) {
	return f.feedback, nil
}

func (f *fakeStore) RunMaintenance(context.Context) error { return nil }

func newTestServer(t *testing.T) (http.Handler, *fakeStore) {
	t.Helper()
	cfg := &config.Config{
		HTTPAddr:       ":0",
		MaxUploadBytes: 1 << 20,
		SessionTTL:     time.Hour,
	}
	store := newFakeStore()
	srv := server.New(cfg, store, server.NewSessions(cfg.SessionTTL), nil)
	return srv.Handler(), store
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	creds := map[string]string{"username": "alice", "password": "pw"}
	require.Equal(t, http.StatusCreated, doJSON(t, h, http.MethodPost, "/api/signup", "", creds).Code)

	rec := doJSON(t, h, http.MethodPost, "/api/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}

func upload(t *testing.T, h http.Handler, token, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "chat.txt")
	require.NoError(t, err)
	_, err = io.Copy(fw, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const sampleChat = "12/1/23, 10:00 - Alice: Hello there\n" +
	"12/1/23, 10:01 - Bob: Hi Alice!\n" +
	"12/1/23, 10:02 - Alice: how are you?"

func TestSignupConflict(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t)

	creds := map[string]string{"username": "alice", "password": "pw"}
	assert.Equal(t, http.StatusCreated, doJSON(t, h, http.MethodPost, "/api/signup", "", creds).Code)
	assert.Equal(t, http.StatusConflict, doJSON(t, h, http.MethodPost, "/api/signup", "", creds).Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t)

	creds := map[string]string{"username": "alice", "password": "pw"}
	require.Equal(t, http.StatusCreated, doJSON(t, h, http.MethodPost, "/api/signup", "", creds).Code)

	bad := map[string]string{"username": "alice", "password": "nope"}
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, h, http.MethodPost, "/api/login", "", bad).Code)
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized,
		doJSON(t, h, http.MethodGet, "/api/analysis", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		doJSON(t, h, http.MethodGet, "/api/analysis", "bogus-token", nil).Code)
}

func TestUploadAndAnalysis(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t)
	token := login(t, h)

	rec := upload(t, h, token, sampleChat)
	require.Equal(t, http.StatusOK, rec.Code)

	var uploaded map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))
	assert.Equal(t, 3, uploaded["messages"])
	assert.Equal(t, 0, uploaded["dropped"])

	rec = doJSON(t, h, http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Equal(t, []string{"Overall", "Alice", "Bob"}, users["users"])

	rec = doJSON(t, h, http.MethodGet, "/api/analysis", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rep analytics.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, 3, rep.Stats.Messages)
	assert.Equal(t, 7, rep.Stats.Words)
	require.NotEmpty(t, rep.BusiestUsers)
	assert.Equal(t, "Alice", rep.BusiestUsers[0].User)

	rec = doJSON(t, h, http.MethodGet, "/api/analysis?user=Bob", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "Bob", rep.User)
	assert.Equal(t, 1, rep.Stats.Messages)

	// Unknown users fall back to the Overall scope.
	rec = doJSON(t, h, http.MethodGet, "/api/analysis?user=Mallory", token, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "Overall", rep.User)
}

func TestAnalysisWithoutUpload(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t)
	token := login(t, h)

	assert.Equal(t, http.StatusConflict,
		doJSON(t, h, http.MethodGet, "/api/analysis", token, nil).Code)
	assert.Equal(t, http.StatusConflict,
		doJSON(t, h, http.MethodGet, "/api/users", token, nil).Code)
}

func TestExportEndpoints(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t)
	token := login(t, h)
	require.Equal(t, http.StatusOK, upload(t, h, token, sampleChat).Code)

	rec := doJSON(t, h, http.MethodGet, "/api/export/excel", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, rec.Body.Len())

	rec = doJSON(t, h, http.MethodGet, "/api/export/pdf", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestFeedbackEndpoints(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t)
	token := login(t, h)

	fb := map[string]any{"name": "Alice", "email": "alice@example.com", "rating": 5, "comment": "love it"}
	assert.Equal(t, http.StatusCreated,
		doJSON(t, h, http.MethodPost, "/api/feedback", token, fb).Code)

	rec := doJSON(t, h, http.MethodGet, "/api/feedback", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []database.Feedback
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].Rating)
}

func TestLogout(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t)
	token := login(t, h)

	assert.Equal(t, http.StatusNoContent,
		doJSON(t, h, http.MethodPost, "/api/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		doJSON(t, h, http.MethodGet, "/api/users", token, nil).Code)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t)
	assert.Equal(t, http.StatusOK, doJSON(t, h, http.MethodGet, "/health", "", nil).Code)
}
