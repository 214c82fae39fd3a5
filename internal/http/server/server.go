// Package server assembles the fiber application: middleware, templates and
// routes for the storefront pages and the JSON API.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"bookstore/internal/http/handlers"
	applog "bookstore/internal/log"
	"bookstore/web"
)

type Options struct {
	// RateLimit is the per-IP request budget per minute. Zero means 60.
	RateLimit int
	// Metrics, when set, is served at /metrics.
	Metrics http.Handler
	// AccessLog enables the fiber request logger.
	AccessLog bool
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

// ErrorHandler logs the error and shows a friendly message. Client errors
// raised through fiber.NewError keep their status and text; anything else
// becomes a 500 without internal details.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, msg := fiber.StatusInternalServerError, "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		status, msg = fe.Code, fe.Message
	} else {
		applog.Error(c, "server.error", err, nil)
	}
	if isAPI(c) {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(status).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(status).SendString(msg)
	}
	return nil
}

// Engine returns the template engine over the embedded templates.
func Engine() *html.Engine {
	engine := html.NewFileSystem(http.FS(web.Templates()), ".html")
	engine.AddFunc("money", func(v float64) string { return fmt.Sprintf("$%.2f", v) })
	return engine
}

func New(deps *handlers.Deps, opts Options) *fiber.App {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 60
	}

	app := fiber.New(fiber.Config{
		Views:        Engine(),
		ErrorHandler: ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())

	// Health & metrics stay outside sessions and limits
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	if opts.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(opts.Metrics))
	}

	app.Use(limiter.New(limiter.Config{
		Max:        opts.RateLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.hit", nil)
			if isAPI(c) {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
			}
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many requests. Please try again later.")
		},
	}))
	// The JSON API carries no forms; it relies on the Lax session cookie.
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		Next:           isAPI,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			formTok := c.FormValue("csrf")
			applog.Security(c, "csrf.fail", map[string]any{"form": formTok})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})
	app.Use(handlers.Session())

	// ---------- Pages ----------
	app.Get("/", deps.CatalogHandler.Home)
	app.Post("/search", deps.CatalogHandler.Search)
	app.Post("/sort", deps.CatalogHandler.Sort)
	app.Get("/category/:id", deps.CatalogHandler.Category)

	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart", deps.CartHandler.Add)
	app.Post("/cart/update", deps.CartHandler.Update)
	app.Post("/cart/remove", deps.CartHandler.Remove)

	app.Get("/wishlist", deps.WishlistHandler.List)
	app.Post("/wishlist", deps.WishlistHandler.Save)
	app.Post("/wishlist/delete", deps.WishlistHandler.Unsave)

	// ---------- API ----------
	api := app.Group("/api/v1")
	api.Get("/state", deps.StateHandler.Get)
	api.Put("/user", deps.StateHandler.SetUser)
	api.Delete("/user", deps.StateHandler.ClearUser)

	api.Get("/products", deps.CatalogHandler.APIProducts)
	api.Put("/search", deps.CatalogHandler.APISearch)
	api.Patch("/filters", deps.CatalogHandler.APIFilters)
	api.Delete("/filters", deps.CatalogHandler.APIClearFilters)
	api.Post("/filters/category/:category", deps.CatalogHandler.APIToggleCategory)
	api.Put("/sort", deps.CatalogHandler.APISort)

	api.Get("/cart", deps.CartHandler.APIView)
	api.Post("/cart", deps.CartHandler.APIAdd)
	api.Post("/cart/toggle", deps.CartHandler.APIToggle)
	api.Patch("/cart/:id", deps.CartHandler.APIUpdate)
	api.Delete("/cart/:id", deps.CartHandler.APIRemove)
	api.Delete("/cart", deps.CartHandler.APIClear)

	api.Get("/wishlist", deps.WishlistHandler.APIList)
	api.Post("/wishlist", deps.WishlistHandler.APISave)
	api.Post("/wishlist/toggle", deps.WishlistHandler.APIToggle)
	api.Delete("/wishlist/:id", deps.WishlistHandler.APIRemove)

	api.Get("/availability", deps.InventoryHandler.Check)

	// 404
	app.Use(func(c *fiber.Ctx) error {
		if isAPI(c) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})
	return app
}
