package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

const localsKey = "session_id"

// cookieMaxAge keeps the cookie across browser restarts; there is no expiry
// logic beyond that.
const cookieMaxAge = 10 * 365 * 24 * time.Hour

// CookieStore reads and writes the token through the request and response
// cookies of a single Fiber request.
type CookieStore struct {
	c      *fiber.Ctx
	secure bool
}

func NewCookieStore(c *fiber.Ctx, secure bool) *CookieStore {
	return &CookieStore{c: c, secure: secure}
}

// Get copies the cookie value out of the request buffer, which fasthttp
// reuses once the request is done; the token outlives it in stored rows.
func (s *CookieStore) Get() (string, error) {
	return utils.CopyString(s.c.Cookies(CookieName)), nil
}

func (s *CookieStore) Set(token string) error {
	s.c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		Expires:  time.Now().Add(cookieMaxAge),
		Secure:   s.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// Middleware resolves the session token for every request and stores it for
// FromCtx. A browser without a valid cookie gets a fresh one.
func Middleware(log logrus.FieldLogger, secureCookie bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := NewProvider(NewCookieStore(c, secureCookie), log)
		c.Locals(localsKey, p.SessionID())
		return c.Next()
	}
}

// FromCtx returns the token Middleware resolved, or "" outside of it.
func FromCtx(c *fiber.Ctx) string {
	sid, _ := c.Locals(localsKey).(string)
	return sid
}
