package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/nasik90/listmarket/internal/app/logger"
	"go.uber.org/zap"
)

const (
	TokenCookie = "token"
	TokenExp    = 12 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	jwt.RegisteredClaims
	Login string `json:"login"`
}

type LoginContextKey struct{}

var secretKey = []byte{}

// Configure sets the signing key. Tokens cannot be issued or accepted until a
// non-empty key is configured.
func Configure(secret string) {
	secretKey = []byte(secret)
}

func BuildJWTString(login string) (string, error) {
	if len(secretKey) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenExp)),
		},
		Login: login,
	})
	return token.SignedString(secretKey)
}

func ParseLogin(tokenString string) (string, error) {
	if len(secretKey) == 0 {
		return "", ErrInvalidToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil || !token.Valid || claims.Login == "" {
		return "", ErrInvalidToken
	}
	return claims.Login, nil
}

// SetAuthCookie issues a token for login and stores it in the response cookie.
func SetAuthCookie(login string, res http.ResponseWriter) (string, error) {
	token, err := BuildJWTString(login)
	if err != nil {
		return "", err
	}
	http.SetCookie(res, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(TokenExp),
	})
	return token, nil
}

func tokenFromRequest(req *http.Request) string {
	if c, err := req.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := req.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func Auth(h http.HandlerFunc) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		login, err := ParseLogin(tokenFromRequest(req))
		if err != nil {
			logger.Log.Debug("unauthorized request", zap.String("uri", req.RequestURI))
			res.Header().Set("content-type", "application/json")
			res.WriteHeader(http.StatusUnauthorized)
			res.Write([]byte(`{"detail":"unauthorized"}`))
			return
		}
		ctx := context.WithValue(req.Context(), LoginContextKey{}, login)
		h(res, req.WithContext(ctx))
	}
}

func LoginFromContext(ctx context.Context) string {
	login, _ := ctx.Value(LoginContextKey{}).(string)
	return login
}
