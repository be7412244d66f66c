package security

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"docs-admin-console/config"
	"docs-admin-console/internal/apiclient"
	"docs-admin-console/internal/util"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// AdminUserUUID : идентификатор, под которым в консоли работает сервисный токен администратора
const AdminUserUUID = "admin"

// Claims : access токен платформы; консоль токены только проверяет, но не выпускает
type Claims struct {
	UserUUID       string `json:"user_uuid"`
	OrganizationID string `json:"organization_id,omitempty"`
	Role           string `json:"role,omitempty"`
	IsAdmin        bool   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

// Verifier : проверка access токена
type Verifier interface {
	Verify(tokenString string) (*Claims, error)
}

// JWTService : токены, подписанные общим секретом HS512
type JWTService struct {
	*config.JWTConfig
}

func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{cfg}
}

func (service *JWTService) Verify(jwtTokenStr string) (*Claims, error) {
	var claims = &Claims{}

	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return []byte(service.SecretKey), nil
	}, parserOptions(service.Issuer)...)

	if err != nil || !jwtToken.Valid {
		return nil, fmt.Errorf("невалидный токен: %w", err)
	}

	return normalize(claims)
}

// JWKSVerifier : токены с асимметричной подписью, ключи берутся из JWKS и обновляются библиотекой
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	issuer string
}

func NewJWKSVerifier(ctx context.Context, cfg *config.JWTConfig) (*JWKSVerifier, error) {
	if cfg.JWKSURL == "" {
		return nil, errors.New("[JWKSVerifier] не задан jwks_url")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.JWKSURL})
	if err != nil {
		return nil, util.LogError("[JWKSVerifier] ошибка загрузки JWKS", err)
	}

	log.Printf("[JWKSVerifier] ключи загружаются из %s", cfg.JWKSURL)
	return &JWKSVerifier{jwks: jwks, issuer: cfg.Issuer}, nil
}

func (v *JWKSVerifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	options := append(parserOptions(v.issuer), jwt.WithValidMethods([]string{"RS256", "ES256"}))

	token, err := jwt.ParseWithClaims(tokenString, claims, v.jwks.Keyfunc, options...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("невалидный токен: %w", err)
	}

	return normalize(claims)
}

// NewVerifier : JWKS, если задан адрес, иначе общий секрет
func NewVerifier(ctx context.Context, cfg *config.JWTConfig) (Verifier, error) {
	if cfg.JWKSURL != "" {
		return NewJWKSVerifier(ctx, cfg)
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("[JWTService] не задан ни secret_key, ни jwks_url")
	}
	return NewJWTService(cfg), nil
}

func parserOptions(issuer string) []jwt.ParserOption {
	options := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if issuer != "" {
		options = append(options, jwt.WithIssuer(issuer))
	}
	return options
}

func normalize(claims *Claims) (*Claims, error) {
	if claims.UserUUID == "" {
		claims.UserUUID = claims.Subject
	}
	if claims.UserUUID == "" {
		return nil, errors.New("в токене нет идентификатора пользователя")
	}
	return claims, nil
}

// AdminToken : сервисный токен администратора консоли, в конфиге хранится только bcrypt-хэш
type AdminToken struct {
	hash []byte
}

func NewAdminToken(cfg *config.AdminConfig) *AdminToken {
	return &AdminToken{hash: []byte(cfg.TokenHash)}
}

func (a *AdminToken) Matches(token string) bool {
	if a == nil || len(a.hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.hash, []byte(token)) == nil
}

func JWTMiddleware(verifier Verifier, adminToken *AdminToken) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(verifier, adminToken, next))
	}
}

func handleAuthentication(verifier Verifier, adminToken *AdminToken, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		authorizationHeader := request.Header.Get("Authorization")
		if !strings.HasPrefix(authorizationHeader, "Bearer ") {
			util.HandleError(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authorizationHeader, "Bearer ")

		claims, err := verifier.Verify(token)
		if err == nil {
			// запросы в API идут от имени пользователя
			ctx := context.WithValue(request.Context(), UserContextKey, claims)
			ctx = apiclient.WithToken(ctx, token)
			next.ServeHTTP(writer, request.WithContext(ctx))
			return
		}

		if adminToken.Matches(token) {
			adminClaims := &Claims{
				UserUUID: AdminUserUUID,
				IsAdmin:  true,
			}
			// у администратора нет токена платформы, API вызывается сервисным токеном
			req := request.WithContext(context.WithValue(request.Context(), UserContextKey, adminClaims))
			next.ServeHTTP(writer, req)
			return
		}

		log.Printf("[JWTMiddleware] %v", err)
		util.HandleError(writer, "невалидный токен", http.StatusUnauthorized)
	}
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return claims, nil
}
