package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Skedlyze/Skedlyze/internal/dto"
	"github.com/Skedlyze/Skedlyze/internal/model"
)

type stubAuthService struct {
	callbackCalled bool
}

func (s *stubAuthService) GoogleLoginURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (s *stubAuthService) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	s.callbackCalled = true
	return &dto.AuthResponse{AccessToken: "token"}, nil
}

func (s *stubAuthService) DevLogin(ctx context.Context, input dto.DevLoginInput) (*dto.AuthResponse, error) {
	return &dto.AuthResponse{AccessToken: "token"}, nil
}

func (s *stubAuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return &model.User{}, nil
}

func newAuthRouter(svc *stubAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(svc, "")
	r := gin.New()
	r.GET("/auth/google", h.GoogleLogin)
	r.GET("/auth/google/callback", h.GoogleCallback)
	return r
}

func stateCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "oauth_state" {
			return ck
		}
	}
	return nil
}

func TestGoogleLoginIssuesFreshState(t *testing.T) {
	r := newAuthRouter(&stubAuthService{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/google", nil))

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	ck := stateCookie(rec)
	if ck == nil || ck.Value == "" {
		t.Fatal("expected oauth_state cookie to be set")
	}
	if !ck.HttpOnly {
		t.Fatal("expected oauth_state cookie to be httpOnly")
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "state="+url.QueryEscape(ck.Value)) {
		t.Fatalf("redirect %q does not carry the issued state %q", loc, ck.Value)
	}

	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	ck2 := stateCookie(rec2)
	if ck2 == nil || ck2.Value == ck.Value {
		t.Fatal("expected a different state per login request")
	}
}

func TestGoogleCallbackRejectsMismatchedState(t *testing.T) {
	svc := &stubAuthService{}
	r := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state=attacker", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "expected"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for mismatched state, got %d", rec.Code)
	}
	if svc.callbackCalled {
		t.Fatal("token exchange must not run on mismatched state")
	}
}

func TestGoogleCallbackRejectsMissingState(t *testing.T) {
	svc := &stubAuthService{}
	r := newAuthRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing state, got %d", rec.Code)
	}
	if svc.callbackCalled {
		t.Fatal("token exchange must not run without a state check")
	}
}

func TestGoogleCallbackAcceptsMatchingState(t *testing.T) {
	svc := &stubAuthService{}
	r := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state=expected&redirect=false", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "expected"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !svc.callbackCalled {
		t.Fatal("expected token exchange to run on matching state")
	}
}
