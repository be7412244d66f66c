package security_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docs-admin-console/config"
	"docs-admin-console/internal/security"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const secret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, claims security.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() security.Claims {
	return security.Claims{
		UserUUID:       "user-1",
		OrganizationID: "org-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "platform",
		},
	}
}

func TestJWTService_Verify(t *testing.T) {
	service := security.NewJWTService(&config.JWTConfig{SecretKey: secret, Issuer: "platform"})

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	otherIssuer := validClaims()
	otherIssuer.Issuer = "someone-else"

	subjectOnly := validClaims()
	subjectOnly.UserUUID = ""
	subjectOnly.Subject = "user-2"

	tests := []struct {
		name     string
		token    string
		wantUser string
		wantErr  bool
	}{
		{name: "валидный токен", token: signToken(t, jwt.SigningMethodHS512, validClaims()), wantUser: "user-1"},
		{name: "пользователь из sub", token: signToken(t, jwt.SigningMethodHS512, subjectOnly), wantUser: "user-2"},
		{name: "другой алгоритм", token: signToken(t, jwt.SigningMethodHS256, validClaims()), wantErr: true},
		{name: "истёк", token: signToken(t, jwt.SigningMethodHS512, expired), wantErr: true},
		{name: "чужой issuer", token: signToken(t, jwt.SigningMethodHS512, otherIssuer), wantErr: true},
		{name: "мусор", token: "not-a-token", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.Verify(tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, claims.UserUUID)
		})
	}
}

func TestJWTMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("console-admin"), bcrypt.MinCost)
	require.NoError(t, err)

	verifier := security.NewJWTService(&config.JWTConfig{SecretKey: secret})
	adminToken := security.NewAdminToken(&config.AdminConfig{TokenHash: string(hash)})

	var gotClaims *security.Claims
	handler := security.JWTMiddleware(verifier, adminToken)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = security.GetClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name      string
		header    string
		wantCode  int
		wantUser  string
		wantAdmin bool
	}{
		{name: "без заголовка", header: "", wantCode: http.StatusUnauthorized},
		{name: "невалидный токен", header: "Bearer broken", wantCode: http.StatusUnauthorized},
		{name: "токен пользователя", header: "Bearer " + signToken(t, jwt.SigningMethodHS512, validClaims()), wantCode: http.StatusNoContent, wantUser: "user-1"},
		{name: "токен администратора", header: "Bearer console-admin", wantCode: http.StatusNoContent, wantUser: security.AdminUserUUID, wantAdmin: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClaims = nil
			req := httptest.NewRequest(http.MethodGet, "/console/browser", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusNoContent {
				require.NotNil(t, gotClaims)
				assert.Equal(t, tt.wantUser, gotClaims.UserUUID)
				assert.Equal(t, tt.wantAdmin, gotClaims.IsAdmin)
			}
		})
	}
}
