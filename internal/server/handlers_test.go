package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/elitecasino/crash-backend/internal/auth"
	"github.com/elitecasino/crash-backend/internal/domain"
	apperr "github.com/elitecasino/crash-backend/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) Validate(initData string) (*auth.Identity, error) {
	args := m.Called(initData)
	identity, _ := args.Get(0).(*auth.Identity)
	return identity, args.Error(1)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) GetOrCreate(ctx context.Context, id int64, username string) (*domain.User, error) {
	args := m.Called(ctx, id, username)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockLedger) Settle(ctx context.Context, userID int64, gameType string, bet, multiplier float64, won bool) (float64, error) {
	args := m.Called(ctx, userID, gameType, bet, multiplier, won)
	return args.Get(0).(float64), args.Error(1)
}

type noopPush struct{}

func (noopPush) ServeWS(http.ResponseWriter, *http.Request) {}

func newTestServer(ma *mockAuth, ml *mockLedger) *Server {
	return New(ma, ml, noopPush{}, apperr.NewHandler(testLogger(), false), testLogger())
}

func post(t *testing.T, srv *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()

	srv.Handler(nil).ServeHTTP(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	ma := &mockAuth{}
	ml := &mockLedger{}

	ma.On("Validate", "signed-data").
		Return(&auth.Identity{ID: 42, Username: "alice"}, nil).Once()
	ml.On("GetOrCreate", mock.Anything, int64(42), "alice").
		Return(&domain.User{ID: 42, Username: "alice", Balance: 10000.0}, nil).Once()

	rec := post(t, newTestServer(ma, ml), "/api/login", `{"init_data":"signed-data"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","balance":10000,"username":"alice"}`, rec.Body.String())

	ma.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestLoginAuthFailure(t *testing.T) {
	ma := &mockAuth{}
	ml := &mockLedger{}

	ma.On("Validate", "forged").
		Return(nil, apperr.NewAuthError("init data signature mismatch")).Once()

	rec := post(t, newTestServer(ma, ml), "/api/login", `{"init_data":"forged"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)
	ml.AssertNotCalled(t, "GetOrCreate")
}

func TestLoginMalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "{{{"},
		{name: "missing init_data", body: `{}`},
		{name: "empty init_data", body: `{"init_data":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, newTestServer(&mockAuth{}, &mockLedger{}), "/api/login", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestFinishGameSuccess(t *testing.T) {
	ma := &mockAuth{}
	ml := &mockLedger{}

	ma.On("Validate", "signed-data").
		Return(&auth.Identity{ID: 42, Username: "alice"}, nil).Once()
	ml.On("Settle", mock.Anything, int64(42), "crash", 100.0, 2.5, true).
		Return(10150.0, nil).Once()

	body := `{"init_data":"signed-data","game":"crash","bet":100,"multiplier":2.5,"win":true}`
	rec := post(t, newTestServer(ma, ml), "/api/finish_game", body)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"new_balance":10150}`, rec.Body.String())

	ml.AssertExpectations(t)
}

func TestFinishGameLossIsSettled(t *testing.T) {
	ma := &mockAuth{}
	ml := &mockLedger{}

	ma.On("Validate", "signed-data").
		Return(&auth.Identity{ID: 42, Username: "alice"}, nil).Once()
	ml.On("Settle", mock.Anything, int64(42), "crash", 50.0, 0.0, false).
		Return(9950.0, nil).Once()

	body := `{"init_data":"signed-data","game":"crash","bet":50,"multiplier":0,"win":false}`
	rec := post(t, newTestServer(ma, ml), "/api/finish_game", body)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"new_balance":9950}`, rec.Body.String())
}

func TestFinishGameStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		authErr    error
		settleErr  error
		wantStatus int
	}{
		{
			name:       "auth failure",
			authErr:    apperr.NewAuthError("bad signature"),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unknown user",
			settleErr:  apperr.NewNotFoundError("user 42 is not registered"),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "storage failure",
			settleErr:  apperr.NewDatabaseError(io.ErrUnexpectedEOF),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ma := &mockAuth{}
			ml := &mockLedger{}

			if tt.authErr != nil {
				ma.On("Validate", "signed-data").Return(nil, tt.authErr).Once()
			} else {
				ma.On("Validate", "signed-data").
					Return(&auth.Identity{ID: 42}, nil).Once()
				ml.On("Settle", mock.Anything, int64(42), "crash", 10.0, 2.0, true).
					Return(0.0, tt.settleErr).Once()
			}

			body := `{"init_data":"signed-data","game":"crash","bet":10,"multiplier":2,"win":true}`
			rec := post(t, newTestServer(ma, ml), "/api/finish_game", body)

			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestFinishGameMalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "null"},
		{name: "missing win flag", body: `{"init_data":"d","game":"crash","bet":10,"multiplier":2}`},
		{name: "zero bet", body: `{"init_data":"d","game":"crash","bet":0,"multiplier":2,"win":true}`},
		{name: "negative multiplier", body: `{"init_data":"d","game":"crash","bet":10,"multiplier":-1,"win":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ma := &mockAuth{}
			rec := post(t, newTestServer(ma, &mockLedger{}), "/api/finish_game", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			ma.AssertNotCalled(t, "Validate")
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&mockAuth{}, &mockLedger{})

	req := httptest.NewRequest(http.MethodGet, "/api/login", nil)
	rec := httptest.NewRecorder()
	srv.Handler(nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
