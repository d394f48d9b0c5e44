package middleware

import (
	"errors"
	"strings"

	"app/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxSessionTokenKey = "session_token" // string

	// ゲストカートを識別するヘッダ
	SessionTokenHeader = "X-Session-Token"
)

// SessionToken はゲスト識別用トークンを保証する。
// 無ければ発行してレスポンスヘッダで返す（クライアントは以後それを送る）。
func SessionToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := strings.TrimSpace(c.Request().Header.Get(SessionTokenHeader))
			if token == "" {
				token = uuid.NewString()
			}

			c.Set(CtxSessionTokenKey, token)
			c.Response().Header().Set(SessionTokenHeader, token)

			return next(c)
		}
	}
}

// OptionalAuthJWT はJWTがあれば検証してuser_idを載せる。
// 無くても（壊れていても）ゲストとして通す。カート系エンドポイント用。
func OptionalAuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return next(c)
			}

			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return next(c)
			}

			token, err := jwt.Parse(strings.TrimSpace(parts[1]), func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || token == nil || !token.Valid {
				return next(c)
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return next(c)
			}

			userID, err := parseUserID(claims["sub"])
			if err != nil || userID <= 0 {
				return next(c)
			}

			c.Set(CtxUserIDKey, userID)
			return next(c)
		}
	}
}
