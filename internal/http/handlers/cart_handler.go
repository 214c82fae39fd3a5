package handlers

import (
	"errors"

	applog "bookstore/internal/log"
	"bookstore/internal/services"
	"bookstore/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

// ---------- pages ----------

func (h *CartHandler) View(c *fiber.Ctx) error {
	st, err := h.Cart.Sessions.State(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return render(c, "cart", st, fiber.Map{"Cart": services.ViewOf(st)})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	if _, err := h.Cart.Add(c.UserContext(), sessionID(c), pid); err != nil {
		if errors.Is(err, services.ErrUnknownProduct) {
			return notFound(c, "This item is no longer available")
		}
		return err
	}
	applog.Audit(c, "cart.add", map[string]any{"product": pid})
	return c.Redirect("/cart")
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	qty, ok := validate.Qty(c.FormValue("qty"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "qty"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid quantity")
	}
	if _, err := h.Cart.SetQuantity(c.UserContext(), sessionID(c), pid, qty); err != nil {
		return err
	}
	applog.Audit(c, "cart.update", map[string]any{"product": pid, "qty": qty})
	return c.Redirect("/cart")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	if _, err := h.Cart.Remove(c.UserContext(), sessionID(c), pid); err != nil {
		return err
	}
	applog.Audit(c, "cart.remove", map[string]any{"product": pid})
	return c.Redirect("/cart")
}

// ---------- API ----------

type productRef struct {
	ProductID string `json:"productId"`
}

type quantityReq struct {
	Quantity *int `json:"quantity"`
}

func (h *CartHandler) APIView(c *fiber.Ctx) error {
	cv, err := h.Cart.View(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(cv)
}

func (h *CartHandler) APIAdd(c *fiber.Ctx) error {
	var req productRef
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	pid, ok := validate.ID(req.ProductID)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return jsonError(c, fiber.StatusBadRequest, "missing productId")
	}
	st, err := h.Cart.Add(c.UserContext(), sessionID(c), pid)
	if err != nil {
		if errors.Is(err, services.ErrUnknownProduct) {
			return jsonError(c, fiber.StatusNotFound, "unknown product")
		}
		return err
	}
	applog.Audit(c, "cart.add", map[string]any{"product": pid})
	return c.JSON(services.ViewOf(st))
}

func (h *CartHandler) APIUpdate(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid product id")
	}
	var req quantityReq
	if err := c.BodyParser(&req); err != nil || req.Quantity == nil {
		return jsonError(c, fiber.StatusBadRequest, "quantity required")
	}
	st, err := h.Cart.SetQuantity(c.UserContext(), sessionID(c), pid, *req.Quantity)
	if err != nil {
		return err
	}
	applog.Audit(c, "cart.update", map[string]any{"product": pid, "qty": *req.Quantity})
	return c.JSON(services.ViewOf(st))
}

func (h *CartHandler) APIRemove(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid product id")
	}
	st, err := h.Cart.Remove(c.UserContext(), sessionID(c), pid)
	if err != nil {
		return err
	}
	applog.Audit(c, "cart.remove", map[string]any{"product": pid})
	return c.JSON(services.ViewOf(st))
}

func (h *CartHandler) APIClear(c *fiber.Ctx) error {
	st, err := h.Cart.Clear(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	applog.Audit(c, "cart.clear", nil)
	return c.JSON(services.ViewOf(st))
}

func (h *CartHandler) APIToggle(c *fiber.Ctx) error {
	st, err := h.Cart.Toggle(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"isCartOpen": st.IsCartOpen})
}
