package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"finsight/api/auth"
	"finsight/api/db"
	"finsight/api/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAccounts map[string]db.AccountState

func (f fakeAccounts) lookup(_ context.Context, userID string) (*db.AccountState, error) {
	state, ok := f[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &state, nil
}

func newProtectedRouter(tokens *auth.TokenService, accounts fakeAccounts) *gin.Engine {
	router := gin.New()
	router.GET("/protected", Auth(tokens, accounts.lookup), func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": id})
	})
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return body.Error
}

func TestAuthMissingToken(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	router := newProtectedRouter(tokens, fakeAccounts{})

	rec := doRequest(router, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := errorBody(t, rec); got != "unauthenticated" {
		t.Fatalf("expected unauthenticated, got %q", got)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	router := newProtectedRouter(tokens, fakeAccounts{})

	rec := doRequest(router, "Bearer bogus")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := errorBody(t, rec); got != "invalid token" {
		t.Fatalf("expected invalid token, got %q", got)
	}
}

func TestAuthHappyPath(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	user := &models.User{ID: "u-1", Email: "a@example.com", Name: "A", TokenVersion: 2}
	accounts := fakeAccounts{"u-1": {IsActive: true, TokenVersion: 2}}
	router := newProtectedRouter(tokens, accounts)

	token, err := tokens.Issue(user, "org-1", models.RoleAnalyst)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	rec := doRequest(router, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthStaleVersionRejected(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	user := &models.User{ID: "u-1", Email: "a@example.com", TokenVersion: 1}
	router := newProtectedRouter(tokens, fakeAccounts{"u-1": {IsActive: true, TokenVersion: 2}})

	// Token issued at version 1, account now at version 2: the logout bump.
	token, err := tokens.Issue(user, "", "")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	rec := doRequest(router, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := errorBody(t, rec); got != "token no longer valid" {
		t.Fatalf("expected token no longer valid, got %q", got)
	}
}

func TestAuthFreshTokenAfterBumpAccepted(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	router := newProtectedRouter(tokens, fakeAccounts{"u-1": {IsActive: true, TokenVersion: 2}})

	token, err := tokens.Issue(&models.User{ID: "u-1", TokenVersion: 2}, "", "")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if rec := doRequest(router, "Bearer "+token); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthInactiveAccountRejected(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	router := newProtectedRouter(tokens, fakeAccounts{"u-1": {IsActive: false, TokenVersion: 0}})

	token, err := tokens.Issue(&models.User{ID: "u-1"}, "", "")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	rec := doRequest(router, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := errorBody(t, rec); got != "token no longer valid" {
		t.Fatalf("expected token no longer valid, got %q", got)
	}
}

func TestAuthUnknownAccountRejected(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	router := newProtectedRouter(tokens, fakeAccounts{})

	token, err := tokens.Issue(&models.User{ID: "ghost"}, "", "")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	rec := doRequest(router, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthFromQuery(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	accounts := fakeAccounts{"u-1": {IsActive: true, TokenVersion: 0}}
	router := gin.New()
	router.GET("/stream", AuthFromQuery(tokens, accounts.lookup), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	token, err := tokens.Issue(&models.User{ID: "u-1"}, "", "")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream?token="+token, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}
