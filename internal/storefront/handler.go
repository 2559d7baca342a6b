package storefront

import (
	"github.com/gofiber/fiber/v2"

	"github.com/obrakomarvelouss/gpower/internal/navigation"
	"github.com/obrakomarvelouss/gpower/internal/session"
)

type Handler struct {
	composer *Composer
}

func NewHandler(c *Composer) *Handler {
	return &Handler{composer: c}
}

func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/api/v1/view", h.getView)
}

// getView answers 404 only for an unknown product; failed sections still
// render with 200.
func (h *Handler) getView(c *fiber.Ctx) error {
	state := navigation.Parse(c.Query("page"), c.Query("slug"))
	v := h.composer.Compose(c.UserContext(), state, session.FromCtx(c), c.Query("category"))
	if v.NotFound {
		return c.Status(fiber.StatusNotFound).JSON(v)
	}
	return c.JSON(v)
}
