package utils

import (
	"net/http"
	"time"
)

type CookieManager struct {
	secureCookies bool
}

func NewCookieManager(secureCookies bool) *CookieManager {
	return &CookieManager{secureCookies: secureCookies}
}

func (c *CookieManager) NewSessionCookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     "session",
		Value:    token,
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.secureCookies,
		Path:     "/",
	}
}

func (c *CookieManager) ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     "session",
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secureCookies,
		Path:     "/",
	}
}

// NewOAuthStateCookie хранит state между редиректом на OAuth-провайдера
// и обратным вызовом
func (c *CookieManager) NewOAuthStateCookie(state string) *http.Cookie {
	return &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   c.secureCookies,
		Path:     "/",
	}
}
