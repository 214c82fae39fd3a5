package handlers

import (
	"bookstore/internal/domain"
	applog "bookstore/internal/log"
	"bookstore/internal/pricing"
	"bookstore/internal/services"
	"bookstore/internal/store"
	"bookstore/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type StateHandler struct {
	Sessions *services.SessionService
}

// stateView is the whole session state plus what the header shows.
type stateView struct {
	store.State
	Totals        pricing.View `json:"totals"`
	CartCount     int          `json:"cartCount"`
	WishlistCount int          `json:"wishlistCount"`
}

func viewState(st store.State) stateView {
	return stateView{
		State:         st,
		Totals:        pricing.Compute(st.Cart).View(),
		CartCount:     store.CartItemCount(st),
		WishlistCount: store.WishlistCount(st),
	}
}

func (h *StateHandler) Get(c *fiber.Ctx) error {
	st, err := h.Sessions.State(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(viewState(st))
}

type userReq struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// SetUser records who is browsing. There is no authentication: the record
// is taken as given once it is well formed.
func (h *StateHandler) SetUser(c *fiber.Ctx) error {
	var req userReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	id, ok := validate.ID(req.ID)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id"})
		return jsonError(c, fiber.StatusBadRequest, "invalid user id")
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "name"})
		return jsonError(c, fiber.StatusBadRequest, "invalid name")
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "email"})
		return jsonError(c, fiber.StatusBadRequest, "invalid email")
	}
	u := &domain.User{ID: id, Name: name, Email: email, Avatar: req.Avatar}
	st, err := h.Sessions.Dispatch(c.UserContext(), sessionID(c), store.SetUser{User: u})
	if err != nil {
		return err
	}
	applog.Audit(c, "user.set", map[string]any{"user": id})
	return c.JSON(viewState(st))
}

func (h *StateHandler) ClearUser(c *fiber.Ctx) error {
	st, err := h.Sessions.Dispatch(c.UserContext(), sessionID(c), store.SetUser{User: nil})
	if err != nil {
		return err
	}
	applog.Audit(c, "user.clear", nil)
	return c.JSON(viewState(st))
}
