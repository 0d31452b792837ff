package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	//ゲストカートを識別するcookie名とcontextキー
	CartSessionCookieName = "cart_session"
	CtxCartSessionKey     = "cart_session"
)

const cartSessionTTL = 30 * 24 * time.Hour

// CartSession は匿名カート用のセッショントークンを保証する。
// cookieが無ければUUIDを発行してセットし、値をcontextに積む。
func CartSession(cookieSecure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ""
			if ck, err := c.Cookie(CartSessionCookieName); err == nil && ck.Value != "" {
				//偽装値をそのままDBキーにしないよう、UUID形式だけ受け付ける
				if _, err := uuid.Parse(ck.Value); err == nil {
					token = ck.Value
				}
			}

			if token == "" {
				token = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     CartSessionCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   cookieSecure,
					SameSite: http.SameSiteLaxMode,
					Expires:  time.Now().Add(cartSessionTTL),
				})
			}

			c.Set(CtxCartSessionKey, token)
			return next(c)
		}
	}
}
