package handlers

import (
	"bookstore/internal/pricing"
	"bookstore/internal/store"

	"github.com/gofiber/fiber/v2"
)

// render fills in the header data every page shows: user, cart and
// wishlist counters and the CSRF token.
func render(c *fiber.Ctx, tmpl string, st store.State, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["User"] = st.User
	data["CartCount"] = store.CartItemCount(st)
	data["WishlistCount"] = store.WishlistCount(st)
	data["SearchTerm"] = st.SearchTerm
	data["Totals"] = pricing.Compute(st.Cart).View()
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		// Fallback: read the CSRF cookie directly if Locals wasn't populated
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg})
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// back redirects to the Referer, or to fallback when there is none.
func back(c *fiber.Ctx, fallback string) error {
	if ref := c.Get(fiber.HeaderReferer); ref != "" {
		return c.Redirect(ref)
	}
	return c.Redirect(fallback)
}
