package handlers

import (
	"errors"

	applog "bookstore/internal/log"
	"bookstore/internal/services"
	"bookstore/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type WishlistHandler struct {
	Wish *services.WishlistService
}

func (h *WishlistHandler) List(c *fiber.Ctx) error {
	st, err := h.Wish.Sessions.State(c.UserContext(), sessionID(c))
	if err != nil {
		applog.Error(c, "wishlist.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load wishlist"})
	}
	return render(c, "wishlist", st, fiber.Map{"Items": st.Wishlist})
}

func (h *WishlistHandler) Save(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(400).SendString("missing productId")
	}
	if err := h.Wish.Save(c.UserContext(), sessionID(c), pid); err != nil {
		if errors.Is(err, services.ErrUnknownProduct) {
			return notFound(c, "This item is no longer available")
		}
		applog.Error(c, "wishlist.save.fail", err, map[string]any{"product": pid})
		return c.Status(500).SendString("Could not save item")
	}
	applog.Audit(c, "wishlist.save", map[string]any{"product": pid})
	// redirect back to the page the form was on
	return back(c, "/wishlist")
}

func (h *WishlistHandler) Unsave(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(400).SendString("missing productId")
	}
	if err := h.Wish.Unsave(c.UserContext(), sessionID(c), pid); err != nil {
		applog.Error(c, "wishlist.unsave.fail", err, map[string]any{"product": pid})
		return c.Status(500).SendString("Could not unsave item")
	}
	applog.Audit(c, "wishlist.unsave", map[string]any{"product": pid})
	return c.Redirect("/wishlist")
}

func (h *WishlistHandler) APIList(c *fiber.Ctx) error {
	items, err := h.Wish.List(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": items, "count": len(items)})
}

func (h *WishlistHandler) APISave(c *fiber.Ctx) error {
	var req productRef
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	pid, ok := validate.ID(req.ProductID)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "missing productId")
	}
	if err := h.Wish.Save(c.UserContext(), sessionID(c), pid); err != nil {
		if errors.Is(err, services.ErrUnknownProduct) {
			return jsonError(c, fiber.StatusNotFound, "unknown product")
		}
		return err
	}
	applog.Audit(c, "wishlist.save", map[string]any{"product": pid})
	return h.APIList(c)
}

func (h *WishlistHandler) APIToggle(c *fiber.Ctx) error {
	var req productRef
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	pid, ok := validate.ID(req.ProductID)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "missing productId")
	}
	saved, err := h.Wish.Toggle(c.UserContext(), sessionID(c), pid)
	if err != nil {
		if errors.Is(err, services.ErrUnknownProduct) {
			return jsonError(c, fiber.StatusNotFound, "unknown product")
		}
		return err
	}
	applog.Audit(c, "wishlist.toggle", map[string]any{"product": pid, "saved": saved})
	return c.JSON(fiber.Map{"productId": pid, "saved": saved})
}

func (h *WishlistHandler) APIRemove(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid product id")
	}
	if err := h.Wish.Unsave(c.UserContext(), sessionID(c), pid); err != nil {
		return err
	}
	applog.Audit(c, "wishlist.unsave", map[string]any{"product": pid})
	return h.APIList(c)
}
