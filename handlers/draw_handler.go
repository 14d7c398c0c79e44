package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/fenilmodi00/lotto-backend/models"
	"github.com/fenilmodi00/lotto-backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// DrawReader is the read side of a draw sink
type DrawReader interface {
	GetDraw(ctx context.Context, drawNo int) (*models.DrawRecord, error)
	ListDrawNumbers(ctx context.Context) ([]int, error)
}

type DrawHandler struct {
	Reader DrawReader
}

func NewDrawHandler(reader DrawReader) *DrawHandler {
	return &DrawHandler{Reader: reader}
}

// ListDraws returns the stored draw numbers in ascending order
func (h *DrawHandler) ListDraws(c *fiber.Ctx) error {
	drawNumbers, err := h.Reader.ListDrawNumbers(c.Context())
	if err != nil {
		return internalError(c, "ListDraws", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    drawNumbers,
		"count":   len(drawNumbers),
	})
}

func (h *DrawHandler) GetLatestDraw(c *fiber.Ctx) error {
	drawNumbers, err := h.Reader.ListDrawNumbers(c.Context())
	if err != nil {
		return internalError(c, "GetLatestDraw", err)
	}
	if len(drawNumbers) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "No draws stored",
		})
	}
	return h.respondWithDraw(c, drawNumbers[len(drawNumbers)-1])
}

func (h *DrawHandler) GetDraw(c *fiber.Ctx) error {
	drawNo, err := strconv.Atoi(c.Params("drw_no"))
	if err != nil || drawNo <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "drw_no must be a positive integer",
		})
	}
	return h.respondWithDraw(c, drawNo)
}

func (h *DrawHandler) respondWithDraw(c *fiber.Ctx, drawNo int) error {
	record, err := h.Reader.GetDraw(c.Context(), drawNo)
	if errors.Is(err, shared.ErrDrawNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Draw not found",
		})
	}
	if err != nil {
		return internalError(c, "GetDraw", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    record,
	})
}

func internalError(c *fiber.Ctx, operation string, err error) error {
	logrus.WithFields(logrus.Fields{
		"component": "DrawHandler",
		"method":    operation,
	}).WithError(err).Error("Draw query failed")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
