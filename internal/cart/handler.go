package cart

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/obrakomarvelouss/gpower/internal/session"
)

// Handler exposes the cart engine for the caller's session.
type Handler struct {
	service *Service
	log     logrus.FieldLogger
}

func NewHandler(s *Service, log logrus.FieldLogger) *Handler {
	return &Handler{service: s, log: log}
}

// RegisterRoutes expects session.Middleware to run first.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/api/v1/cart", h.getCart)
	app.Get("/api/v1/cart/count", h.getCount)
	app.Post("/api/v1/cart/items", h.addItem)
	app.Patch("/api/v1/cart/items/:id", h.updateItem)
	app.Delete("/api/v1/cart/items/:id", h.removeItem)
}

type addRequest struct {
	ProductID string `json:"productId"`
}

type updateRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext(), session.FromCtx(c))
	if err != nil {
		return h.fail(c, "load cart", err)
	}
	return c.JSON(summary)
}

func (h *Handler) getCount(c *fiber.Ctx) error {
	n, err := h.service.Count(c.UserContext(), session.FromCtx(c))
	if err != nil {
		return h.fail(c, "count cart items", err)
	}
	return c.JSON(fiber.Map{"count": n})
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	payload := new(addRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}

	item, err := h.service.AddToCart(c.UserContext(), session.FromCtx(c), payload.ProductID)
	if err != nil {
		return h.fail(c, "add to cart", err)
	}
	return c.JSON(item)
}

func (h *Handler) updateItem(c *fiber.Ctx) error {
	payload := new(updateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "quantity is required"})
	}

	outcome, err := h.service.UpdateQuantity(c.UserContext(), session.FromCtx(c), c.Params("id"), *payload.Quantity)
	if err != nil {
		return h.fail(c, "update cart item", err)
	}
	if outcome == Missing {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": ErrItemNotFound.Error()})
	}
	return c.JSON(fiber.Map{"outcome": outcome})
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	if err := h.service.RemoveItem(c.UserContext(), session.FromCtx(c), c.Params("id")); err != nil {
		return h.fail(c, "remove cart item", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// fail maps engine errors to statuses. Anything unrecognised came from the
// gateway and is answered with 502; the client keeps its previous state.
func (h *Handler) fail(c *fiber.Ctx, what string, err error) error {
	switch {
	case errors.Is(err, ErrInvalidItem):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrOutOfStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	}
	h.log.WithError(err).WithField("session", session.FromCtx(c)).Error(what + " failed")
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "failed to " + what})
}
