package product

import (
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/obrakomarvelouss/gpower/internal/gateway"
)

// /featured must win over the /:slug route.
func TestProductHandler_FeaturedNotShadowedBySlug(t *testing.T) {
	h := NewHandler(NewService(NewGatewayRepository(gateway.NewMemory())), quietLog())
	app := fiber.New()
	h.RegisterPublicRoutes(app)

	order := map[string]int{}
	i := 0
	for _, r := range app.GetRoutes() {
		if r.Method != fiber.MethodGet {
			continue
		}
		order[r.Path] = i
		i++
	}

	featured, ok := order["/api/v1/products/featured"]
	if !ok {
		t.Fatalf("expected /api/v1/products/featured to be registered")
	}
	slug, ok := order["/api/v1/products/:slug"]
	if !ok {
		t.Fatalf("expected /api/v1/products/:slug to be registered")
	}
	if featured > slug {
		t.Fatalf("featured route registered after slug route")
	}
}
