package handlers

import (
	applog "bookstore/internal/log"
	"bookstore/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const sidCookie = "sid"

// Session makes sure every request carries a session id, minting one in a
// cookie when the client has none (or an invalid one).
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, ok := validate.ID(c.Cookies(sidCookie))
		if !ok {
			sid = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     sidCookie,
				Value:    sid,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
				Secure:   false, // set true behind HTTPS
			})
		}
		c.Locals(applog.SessionKey, sid)
		return c.Next()
	}
}

func sessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(applog.SessionKey).(string)
	return sid
}
