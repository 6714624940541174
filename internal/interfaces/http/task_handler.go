package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fulfillment-api/internal/application/dto"
	"github.com/jhoicas/Fulfillment-api/internal/application/picking"
)

// TaskHandler ejecución de tareas de picking en piso.
type TaskHandler struct {
	uc *picking.UseCase
}

// NewTaskHandler construye el handler.
func NewTaskHandler(uc *picking.UseCase) *TaskHandler {
	return &TaskHandler{uc: uc}
}

// Assign asigna una tarea PENDING a un operario.
func (h *TaskHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignTaskRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.AssignTask(c.UserContext(), c.Params("id"), in.WorkerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Claim godoc
// @Summary      Reclamar la siguiente tarea disponible para el actor
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ClaimTaskRequest  true  "Bodega y ola opcional"
// @Success      200   {object}  dto.TaskResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/tasks/claim [post]
func (h *TaskHandler) Claim(c *fiber.Ctx) error {
	var in dto.ClaimTaskRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.ClaimNextTask(c.UserContext(), in.WarehouseID, in.WaveID, GetActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *TaskHandler) Start(c *fiber.Ctx) error {
	out, err := h.uc.StartPicking(c.UserContext(), c.Params("id"), GetActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Cerrar tarea con la cantidad pickeada
// @Description  Un faltante libera el remanente y, según el motivo, reasigna a otro registro.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la tarea"
// @Param        body  body  dto.CompletePickingRequest  true  "Cantidad y motivo"
// @Success      200   {object}  dto.CompletePickingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c *fiber.Ctx) error {
	var in dto.CompletePickingRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.CompletePicking(c.UserContext(), c.Params("id"), *in.QtyPicked, in.ShortReason, GetActorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *TaskHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
