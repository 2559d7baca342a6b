package product

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
	log     logrus.FieldLogger
}

func NewHandler(service *Service, log logrus.FieldLogger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterPublicRoutes wires the catalog endpoints. /featured is registered
// ahead of /:slug so it is not taken for a slug.
func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/v1/products", h.getProducts)
	app.Get("/api/v1/products/featured", h.getFeatured)
	app.Get("/api/v1/products/:slug", h.getProduct)
	app.Get("/api/v1/products/:slug/related", h.getRelated)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.ListByCategory(c.UserContext(), c.Query("category"))
	if err != nil {
		return h.upstream(c, "list products", err)
	}
	return c.JSON(products)
}

func (h *Handler) getFeatured(c *fiber.Ctx) error {
	products, err := h.service.Featured(c.UserContext())
	if err != nil {
		return h.upstream(c, "list featured products", err)
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	p, err := h.service.BySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return h.upstream(c, "load product", err)
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"notFound": true})
	}
	return c.JSON(p)
}

func (h *Handler) getRelated(c *fiber.Ctx) error {
	p, err := h.service.BySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return h.upstream(c, "load product", err)
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"notFound": true})
	}
	related, err := h.service.Related(c.UserContext(), *p)
	if err != nil {
		return h.upstream(c, "list related products", err)
	}
	return c.JSON(related)
}

func (h *Handler) upstream(c *fiber.Ctx, what string, err error) error {
	h.log.WithError(err).WithField("path", c.Path()).Error(what)
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "failed to " + what})
}
