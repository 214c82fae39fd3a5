package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"bookstore/internal/services"
	"bookstore/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Query("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing productId",
		})
	}

	avail, err := h.Inv.CheckAvailability(productID)
	if err != nil {
		if errors.Is(err, services.ErrUnknownProduct) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "unknown product",
			})
		}
		return err
	}
	return c.JSON(fiber.Map{"productId": productID, "status": avail.Status, "qty": avail.Qty})
}
