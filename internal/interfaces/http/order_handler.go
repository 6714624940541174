package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fulfillment-api/internal/application/allocation"
	"github.com/jhoicas/Fulfillment-api/internal/application/dto"
)

// OrderHandler reservas y ciclo de vida de órdenes.
type OrderHandler struct {
	uc *allocation.UseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *allocation.UseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Allocate godoc
// @Summary      Reservar inventario para una orden
// @Tags         orders
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.AllocateOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/allocate [post]
func (h *OrderHandler) Allocate(c *fiber.Ctx) error {
	out, err := h.uc.AllocateOrder(c.UserContext(), c.Params("id"), GetActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ReleaseAllocations libera todas las reservas ACTIVE de la orden.
func (h *OrderHandler) ReleaseAllocations(c *fiber.Ctx) error {
	var in dto.ReleaseRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.ReleaseOrderAllocations(c.UserContext(), c.Params("id"), in.Reason, GetActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel cancela la orden liberando sus reservas.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	var in dto.ReleaseRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.CancelOrder(c.UserContext(), c.Params("id"), in.Reason, GetActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID orden con líneas y reservas.
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ReleaseAllocation libera una reserva puntual.
func (h *OrderHandler) ReleaseAllocation(c *fiber.Ctx) error {
	var in dto.ReleaseRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.ReleaseAllocation(c.UserContext(), c.Params("id"), in.Reason, GetActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
