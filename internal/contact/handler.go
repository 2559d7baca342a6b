package contact

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
	log     logrus.FieldLogger
}

func NewHandler(s *Service, log logrus.FieldLogger) *Handler {
	return &Handler{service: s, log: log}
}

// RegisterPublicRoutes mounts the form endpoints behind limit, which may be
// nil.
func (h *Handler) RegisterPublicRoutes(app fiber.Router, limit fiber.Handler) {
	handlers := func(last fiber.Handler) []fiber.Handler {
		if limit == nil {
			return []fiber.Handler{last}
		}
		return []fiber.Handler{limit, last}
	}
	app.Post("/api/v1/contact", handlers(h.submitContact)...)
	app.Post("/api/v1/requests", handlers(h.submitRequest)...)
}

func (h *Handler) submitContact(c *fiber.Ctx) error {
	payload := new(Message)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := h.service.SubmitContact(c.UserContext(), *payload); err != nil {
		return h.fail(c, "contact", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"submitted": true})
}

func (h *Handler) submitRequest(c *fiber.Ctx) error {
	payload := new(Request)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := h.service.SubmitRequest(c.UserContext(), *payload); err != nil {
		return h.fail(c, "request", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"submitted": true})
}

func (h *Handler) fail(c *fiber.Ctx, form string, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ve.Error(), "fields": ve.Fields})
	}
	h.log.WithError(err).WithField("form", form).Error("form submission failed")
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "failed to submit " + form})
}
