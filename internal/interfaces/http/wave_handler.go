package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fulfillment-api/internal/application/dto"
	"github.com/jhoicas/Fulfillment-api/internal/application/wave"
)

// WaveHandler planificación y liberación de olas.
type WaveHandler struct {
	uc *wave.UseCase
}

// NewWaveHandler construye el handler.
func NewWaveHandler(uc *wave.UseCase) *WaveHandler {
	return &WaveHandler{uc: uc}
}

// Eligible godoc
// @Summary      Órdenes candidatas a ola
// @Tags         waves
// @Produce      json
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        limit         query  int     false  "Límite"  default(200)
// @Success      200  {object}  dto.EligibleOrdersResponse
// @Router       /api/waves/eligible [get]
func (h *WaveHandler) Eligible(c *fiber.Ctx) error {
	warehouseID := c.Query("warehouse_id")
	if warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouse_id es requerido"})
	}
	limit := c.QueryInt("limit", wave.DefaultEligibleLimit)
	if limit <= 0 || limit > 1000 {
		limit = wave.DefaultEligibleLimit
	}
	out, err := h.uc.EligibleOrders(c.UserContext(), warehouseID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear ola
// @Tags         waves
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWaveRequest  true  "Órdenes de la ola"
// @Success      201   {object}  dto.WaveResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/waves [post]
func (h *WaveHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWaveRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateWave(c.UserContext(), in, GetActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Release genera y secuencia las tareas de picking.
func (h *WaveHandler) Release(c *fiber.Ctx) error {
	out, err := h.uc.ReleaseWave(c.UserContext(), c.Params("id"), GetActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel cancela una ola sin picking iniciado.
func (h *WaveHandler) Cancel(c *fiber.Ctx) error {
	var in dto.ReleaseRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.CancelWave(c.UserContext(), c.Params("id"), in.Reason, GetActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *WaveHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetWave(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Tasks tareas de la ola en orden de recorrido.
func (h *WaveHandler) Tasks(c *fiber.Ctx) error {
	out, err := h.uc.ListWaveTasks(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
