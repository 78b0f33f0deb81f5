package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pedrowallacee/palpitarena-v2/services"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims jwt.MapClaims, secret []byte) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestAuthenticate(t *testing.T) {
	valid := signToken(t, jwt.MapClaims{
		"user_id": 7,
		"role":    RoleAdmin,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, testSecret)
	expired := signToken(t, jwt.MapClaims{
		"user_id": 7,
		"role":    RolePlayer,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}, testSecret)
	foreign := signToken(t, jwt.MapClaims{"user_id": 7, "role": RolePlayer}, []byte("other"))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid", "Bearer " + valid, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got services.AuthContext
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				auth, err := AuthFromContext(r.Context())
				if err != nil {
					t.Fatalf("AuthFromContext: %v", err)
				}
				got = auth
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			Authenticate(testSecret)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && (got.UserID != 7 || !got.IsAdmin) {
				t.Errorf("unexpected auth context %+v", got)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"user_id": "3", "role": RolePlayer}, testSecret)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	h := Authenticate(testSecret)(Authorize(RoleAdmin, RoleOrganizer)(ok))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
