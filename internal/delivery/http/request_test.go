package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	delivery "audiodb-backend/internal/delivery/http"
	"audiodb-backend/internal/delivery/http/utils"
	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"
	"audiodb-backend/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequestUseCase struct {
	requests    []*entity.Request
	listErr     error
	acceptErr   error
	rejectErr   error
	acceptedIDs []string
	rejectedIDs []string
	lastReason  string
}

func (f *fakeRequestUseCase) GetRequests(_ context.Context) ([]*entity.Request, error) {
	return f.requests, f.listErr
}

func (f *fakeRequestUseCase) Accept(_ context.Context, requestID string) (int64, error) {
	if f.acceptErr != nil {
		return 0, f.acceptErr
	}
	f.acceptedIDs = append(f.acceptedIDs, requestID)
	return 123456789, nil
}

func (f *fakeRequestUseCase) Reject(_ context.Context, requestID string, reason string) error {
	if f.rejectErr != nil {
		return f.rejectErr
	}
	f.rejectedIDs = append(f.rejectedIDs, requestID)
	f.lastReason = reason
	return nil
}

type requestTestEnv struct {
	server      *echo.Echo
	authManager *utils.AuthManager
	userRepo    *fakeUserRepo
	requestUC   *fakeRequestUseCase
}

func newRequestTestEnv() *requestTestEnv {
	env := &requestTestEnv{
		server:    echo.New(),
		userRepo:  &fakeUserRepo{users: map[string]*entity.DashboardUser{}},
		requestUC: &fakeRequestUseCase{},
	}
	env.authManager = utils.NewAuthManager([]byte("test-secret"), env.userRepo, time.Hour)
	delivery.NewRequest(env.requestUC, env.authManager).Configure(env.server.Group("/api/audio/requests"))
	return env
}

func (env *requestTestEnv) sessionCookie(t *testing.T, userID string, permissionLevel int) *http.Cookie {
	t.Helper()
	env.userRepo.users[userID] = &entity.DashboardUser{
		UserID:          userID,
		Username:        "moderator",
		PermissionLevel: permissionLevel,
	}
	token, err := env.authManager.CreateToken(userID, "moderator")
	require.NoError(t, err)
	return &http.Cookie{Name: "session", Value: token}
}

func firstErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	parsed := utils.APIErrorResponse{}
	require.NoError(t, json.Unmarshal(body, &parsed))
	require.NotEmpty(t, parsed.Errors)
	return parsed.Errors[0].Code
}

func TestGetRequests_ReturnsPendingRequests(t *testing.T) {
	env := newRequestTestEnv()
	env.requestUC.requests = []*entity.Request{
		{ID: "request-1", UserID: "user-1", FileName: "Music --- Song.wav", FileURL: "https://storage.test/a"},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/audio/requests", nil)
	req.AddCookie(env.sessionCookie(t, "mod-1", entity.PermissionModerator))
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var parsed struct {
		Success bool              `json:"success"`
		Data    []*entity.Request `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	assert.True(t, parsed.Success)
	require.Len(t, parsed.Data, 1)
	assert.Equal(t, "https://storage.test/a", parsed.Data[0].FileURL)
}

func TestGetRequests_EmptyReturns404(t *testing.T) {
	env := newRequestTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/api/audio/requests", nil)
	req.AddCookie(env.sessionCookie(t, "mod-1", entity.PermissionModerator))
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no_requests_found", firstErrorCode(t, rec.Body.Bytes()))
}

func TestGetRequests_UploaderLevelForbidden(t *testing.T) {
	env := newRequestTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/api/audio/requests", nil)
	req.AddCookie(env.sessionCookie(t, "user-1", entity.PermissionUpload))
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func resolveRequest(t *testing.T, env *requestTestEnv, cookie *http.Cookie, requestID string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/audio/requests/"+requestID, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

func TestResolveRequest_Accept(t *testing.T) {
	env := newRequestTestEnv()
	cookie := env.sessionCookie(t, "mod-1", entity.PermissionModerator)

	rec := resolveRequest(t, env, cookie, "request-1", `{"action":"accept"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"request-1"}, env.requestUC.acceptedIDs)
}

func TestResolveRequest_RejectWithReason(t *testing.T) {
	env := newRequestTestEnv()
	cookie := env.sessionCookie(t, "mod-1", entity.PermissionModerator)

	rec := resolveRequest(t, env, cookie, "request-2", `{"action":"reject","reason":"duplicate upload"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"request-2"}, env.requestUC.rejectedIDs)
	assert.Equal(t, "duplicate upload", env.requestUC.lastReason)
}

func TestResolveRequest_InvalidAction(t *testing.T) {
	env := newRequestTestEnv()
	cookie := env.sessionCookie(t, "mod-1", entity.PermissionModerator)

	rec := resolveRequest(t, env, cookie, "request-1", `{"action":"archive"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_action", firstErrorCode(t, rec.Body.Bytes()))
}

func TestResolveRequest_AcceptErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"request not found", repo.ErrRequestNotFound, http.StatusNotFound, "request_not_found"},
		{"no bots available", usecase.ErrNoBotsAvailable, http.StatusServiceUnavailable, "no_bots_available"},
		{"metadata moderated", usecase.ErrAudioMetadataModerated, http.StatusBadRequest, "audio_metadata_moderated"},
		{"rate limited", usecase.ErrRateLimited, http.StatusServiceUnavailable, "rate_limited"},
		{"invalid file name", usecase.ErrInvalidFileName, http.StatusBadRequest, "invalid_file_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newRequestTestEnv()
			env.requestUC.acceptErr = tt.err
			cookie := env.sessionCookie(t, "mod-1", entity.PermissionModerator)

			rec := resolveRequest(t, env, cookie, "request-1", `{"action":"accept"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, firstErrorCode(t, rec.Body.Bytes()))
		})
	}
}
