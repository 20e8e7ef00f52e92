package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/imihigo-backend/internal/catalog"
	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/handlers"
	"github.com/GregMSThompson/imihigo-backend/internal/middleware"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
	"github.com/GregMSThompson/imihigo-backend/internal/response"
	"github.com/GregMSThompson/imihigo-backend/pkg/logger"
)

type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(_ context.Context, token string) (*auth.Token, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &auth.Token{UID: "planner-1"}, nil
}

type stubUsers struct{}

func (stubUsers) GetUser(_ context.Context, uid string) (*models.User, error) {
	if uid == "planner-1" {
		return &models.User{UID: uid, Role: "planner", IsActive: true}, nil
	}
	return nil, errs.NewNotFoundError("user not found")
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := slog.New(logger.NewTestHandler(slog.LevelInfo))
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	rh := response.New(log)
	deps := &handlers.Deps{Log: log, ResponseHandler: rh, Catalog: cat}
	return NewRouter(deps, Options{
		AllowedOrigins: []string{"*"},
		Auth:           middleware.NewMiddleware(stubVerifier{}, stubUsers{}, rh),
	})
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		method string
		path   string
		token  string
		want   int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/api/quarters", "", http.StatusOK},
		{http.MethodGet, "/api/metadata", "", http.StatusOK},
		{http.MethodGet, "/api/targets?pillarId=social", "", http.StatusOK},
		{http.MethodGet, "/api/submissions", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/slides", "bad", http.StatusUnauthorized},
		{http.MethodGet, "/api/auth/me", "", http.StatusUnauthorized},
		{http.MethodPost, "/api/admin/clear-data", "good", http.StatusForbidden},
		{http.MethodGet, "/api/nope", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Errorf("%s %s: expected %d got %d", tc.method, tc.path, tc.want, rr.Code)
		}
	}
}

func TestHealthzEnvelope(t *testing.T) {
	r := newTestRouter(t)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data["status"] != "ok" {
		t.Fatalf("unexpected body %+v", body)
	}
}
