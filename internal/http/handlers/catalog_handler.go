package handlers

import (
	"bookstore/internal/catalog"
	"bookstore/internal/domain"
	applog "bookstore/internal/log"
	"bookstore/internal/services"
	"bookstore/internal/store"
	"bookstore/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	Sessions *services.SessionService
}

// productView is a product card: the product plus its badges and the
// session's cart/wishlist membership.
type productView struct {
	domain.Product
	DiscountPercent int    `json:"discountPercent"`
	StockStatus     string `json:"stockStatus"`
	InCart          bool   `json:"inCart"`
	InWishlist      bool   `json:"inWishlist"`
}

func cards(st store.State) []productView {
	visible := catalog.Visible(st.Products, st.SearchTerm, st.Filters, st.SortBy)
	out := make([]productView, 0, len(visible))
	for _, p := range visible {
		out = append(out, productView{
			Product:         p,
			DiscountPercent: p.DiscountPercent(),
			StockStatus:     catalog.StockStatus(p.Stock),
			InCart:          store.InCart(st, p.ID),
			InWishlist:      store.InWishlist(st, p.ID),
		})
	}
	return out
}

// ---------- pages ----------

func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	st, err := h.Sessions.State(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return render(c, "products", st, fiber.Map{
		"Products":   cards(st),
		"Total":      len(st.Products),
		"Categories": domain.Categories,
		"Filters":    st.Filters,
		"SortBy":     st.SortBy,
		"SortKeys":   domain.SortKeys,
	})
}

func (h *CatalogHandler) Search(c *fiber.Ctx) error {
	term, ok := validate.Search(c.FormValue("q"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid search")
	}
	if _, err := h.Sessions.Dispatch(c.UserContext(), sessionID(c), store.SetSearchTerm{Term: term}); err != nil {
		return err
	}
	return c.Redirect("/")
}

func (h *CatalogHandler) Sort(c *fiber.Ctx) error {
	key, ok := validate.SortKey(c.FormValue("sortBy"))
	if !ok {
		return c.Redirect("/")
	}
	if _, err := h.Sessions.Dispatch(c.UserContext(), sessionID(c), store.SetSortBy{Key: key}); err != nil {
		return err
	}
	return c.Redirect("/")
}

// Category toggles one category in the filter and goes back to the grid.
func (h *CatalogHandler) Category(c *fiber.Ctx) error {
	cat, ok := validate.Category(c.Params("id"))
	if !ok {
		return notFound(c, "Unknown category")
	}
	if err := h.toggleCategory(c, cat); err != nil {
		return err
	}
	return c.Redirect("/")
}

func (h *CatalogHandler) toggleCategory(c *fiber.Ctx, cat domain.Category) error {
	s, err := h.Sessions.Store(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	s.Update(c.UserContext(), func(st store.State) store.Intent {
		return store.ToggleCategory(st, cat)
	})
	return nil
}

// ---------- API ----------

func (h *CatalogHandler) APIProducts(c *fiber.Ctx) error {
	st, err := h.Sessions.State(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	items := cards(st)
	return c.JSON(fiber.Map{
		"items":      items,
		"count":      len(items),
		"total":      len(st.Products),
		"searchTerm": st.SearchTerm,
		"filters":    st.Filters,
		"sortBy":     st.SortBy,
	})
}

type searchReq struct {
	Term string `json:"term"`
}

func (h *CatalogHandler) APISearch(c *fiber.Ctx) error {
	var req searchReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	term, ok := validate.Search(req.Term)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "term"})
		return jsonError(c, fiber.StatusBadRequest, "invalid search term")
	}
	if _, err := h.Sessions.Dispatch(c.UserContext(), sessionID(c), store.SetSearchTerm{Term: term}); err != nil {
		return err
	}
	return h.APIProducts(c)
}

func (h *CatalogHandler) APIFilters(c *fiber.Ctx) error {
	var patch store.FilterPatch
	if err := c.BodyParser(&patch); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if field, ok := checkPatch(patch); !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": field})
		return jsonError(c, fiber.StatusBadRequest, "invalid "+field)
	}
	if _, err := h.Sessions.Dispatch(c.UserContext(), sessionID(c), store.SetFilters{Patch: patch}); err != nil {
		return err
	}
	return h.APIProducts(c)
}

func checkPatch(p store.FilterPatch) (string, bool) {
	if p.Category != nil {
		for _, cat := range *p.Category {
			if !cat.Valid() {
				return "category", false
			}
		}
	}
	if p.PriceRange != nil && !validate.PriceRange(*p.PriceRange) {
		return "priceRange", false
	}
	if p.Rating != nil && !validate.Rating(*p.Rating) {
		return "rating", false
	}
	return "", true
}

func (h *CatalogHandler) APIClearFilters(c *fiber.Ctx) error {
	for _, in := range store.ClearFilters() {
		if _, err := h.Sessions.Dispatch(c.UserContext(), sessionID(c), in); err != nil {
			return err
		}
	}
	return h.APIProducts(c)
}

func (h *CatalogHandler) APIToggleCategory(c *fiber.Ctx) error {
	cat, ok := validate.Category(c.Params("category"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid category")
	}
	if err := h.toggleCategory(c, cat); err != nil {
		return err
	}
	return h.APIProducts(c)
}

type sortReq struct {
	SortBy string `json:"sortBy"`
}

func (h *CatalogHandler) APISort(c *fiber.Ctx) error {
	var req sortReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	key, ok := validate.SortKey(req.SortBy)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid sortBy")
	}
	if _, err := h.Sessions.Dispatch(c.UserContext(), sessionID(c), store.SetSortBy{Key: key}); err != nil {
		return err
	}
	return h.APIProducts(c)
}
