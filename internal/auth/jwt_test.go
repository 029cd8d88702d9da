package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/isdelr/storefront/internal/models"
)

func testIssuer() *Issuer {
	return NewIssuer("test-secret", time.Minute, time.Hour)
}

func TestIssueAndValidate(t *testing.T) {
	iss := testIssuer()
	pair, err := iss.IssuePair(models.User{ID: "42", Role: models.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}

	claims, err := iss.Validate(pair.Access, AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "42" || claims.Role != models.RoleAdmin || claims.ID == "" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := iss.Validate(pair.Access, RefreshToken); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("access used as refresh err = %v", err)
	}
	refresh, err := iss.Validate(pair.Refresh, RefreshToken)
	if err != nil {
		t.Fatal(err)
	}
	access, err := iss.IssueAccess(refresh)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := iss.Validate(access, AccessToken); err != nil {
		t.Errorf("reissued access invalid: %v", err)
	}
}

func TestValidateRejectsExpiredAndForeign(t *testing.T) {
	iss := testIssuer()
	pair, _ := iss.IssuePair(models.User{ID: "1", Role: models.RoleUser})

	iss.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := iss.Validate(pair.Access, AccessToken); err == nil {
		t.Error("expired token should be rejected")
	}

	other := NewIssuer("other-secret", time.Minute, time.Hour)
	if _, err := other.Validate(pair.Refresh, RefreshToken); err == nil {
		t.Error("token signed with another key should be rejected")
	}
}

func TestMiddleware(t *testing.T) {
	iss := testIssuer()
	pair, _ := iss.IssuePair(models.User{ID: "7", Role: models.RoleUser})

	var seen string
	h := iss.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFrom(r.Context())
		seen = claims.UserID
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"refresh token", "Bearer " + pair.Refresh, http.StatusUnauthorized},
		{"valid", "Bearer " + pair.Access, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
	if seen != "7" {
		t.Errorf("claims user = %q", seen)
	}
}

func TestRequireRole(t *testing.T) {
	iss := testIssuer()
	h := iss.Middleware(RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	for role, want := range map[models.Role]int{models.RoleUser: http.StatusForbidden, models.RoleAdmin: http.StatusNoContent} {
		pair, _ := iss.IssuePair(models.User{ID: "1", Role: role})
		req := httptest.NewRequest(http.MethodDelete, "/products/1", nil)
		req.Header.Set("Authorization", "Bearer "+pair.Access)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("role %s status = %d, want %d", role, rec.Code, want)
		}
	}
}
