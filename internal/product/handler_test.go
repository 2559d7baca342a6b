package product

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/obrakomarvelouss/gpower/internal/gateway"
)

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seededApp(t *testing.T) *fiber.App {
	t.Helper()
	gw := gateway.NewMemory()
	if err := gw.Seed(context.Background(), gateway.TableProducts, SampleCatalog()...); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	app := fiber.New()
	NewHandler(NewService(NewGatewayRepository(gw)), quietLog()).RegisterPublicRoutes(app)
	return app
}

func getProducts(t *testing.T, app *fiber.App, path string) (int, []Product) {
	t.Helper()
	res, err := app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("request %s failed: %v", path, err)
	}
	var out []Product
	if res.StatusCode == fiber.StatusOK {
		if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
			t.Fatalf("decode %s failed: %v", path, err)
		}
	}
	return res.StatusCode, out
}

func TestGetProducts_NewestFirst(t *testing.T) {
	app := seededApp(t)
	status, products := getProducts(t, app, "/api/v1/products")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(products) != len(SampleCatalog()) {
		t.Fatalf("expected full catalog, got %d products", len(products))
	}
	for i := 1; i < len(products); i++ {
		if products[i].CreatedAt.After(products[i-1].CreatedAt) {
			t.Fatalf("products not ordered newest first at %d", i)
		}
	}
}

func TestGetProducts_CategoryFilterIsExact(t *testing.T) {
	app := seededApp(t)

	_, lighting := getProducts(t, app, "/api/v1/products?category=solar-lighting")
	if len(lighting) != 2 {
		t.Fatalf("expected 2 lighting products, got %d", len(lighting))
	}
	for _, p := range lighting {
		if p.Category != "solar-lighting" {
			t.Fatalf("unexpected category %q in filtered list", p.Category)
		}
	}

	_, all := getProducts(t, app, "/api/v1/products?category=all")
	_, unfiltered := getProducts(t, app, "/api/v1/products")
	if len(all) != len(unfiltered) {
		t.Fatalf("category=all should match the unfiltered list: %d vs %d", len(all), len(unfiltered))
	}

	_, none := getProducts(t, app, "/api/v1/products?category=Solar%20Lighting")
	if len(none) != 0 {
		t.Fatalf("label is not a tag; expected no products, got %d", len(none))
	}
}

func TestGetFeatured(t *testing.T) {
	app := seededApp(t)
	status, featured := getProducts(t, app, "/api/v1/products/featured")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(featured) == 0 || len(featured) > FeaturedLimit {
		t.Fatalf("expected 1..%d featured products, got %d", FeaturedLimit, len(featured))
	}
	for _, p := range featured {
		if !p.Featured {
			t.Fatalf("non-featured product %q in featured list", p.Slug)
		}
	}
}

func TestGetProduct_BySlug(t *testing.T) {
	app := seededApp(t)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/products/sunmax-400w-panel", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var p Product
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if p.Price.String() != "249.99" || p.Specifications["Output"] != "400W" {
		t.Fatalf("unexpected product %+v", p)
	}
}

func TestGetProduct_UnknownSlugIsNotFoundState(t *testing.T) {
	app := seededApp(t)

	for _, path := range []string{"/api/v1/products/no-such-panel", "/api/v1/products/no-such-panel/related"} {
		res, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if res.StatusCode != fiber.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, res.StatusCode)
		}
		var body map[string]any
		_ = json.NewDecoder(res.Body).Decode(&body)
		if body["notFound"] != true {
			t.Fatalf("%s: expected notFound flag, got %v", path, body)
		}
	}
}

func TestGetRelated_SameCategoryExcludingSelf(t *testing.T) {
	app := seededApp(t)
	status, related := getProducts(t, app, "/api/v1/products/powerhub-1500-generator/related")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(related) != 1 || related[0].Slug != "powerhub-500-generator" {
		t.Fatalf("unexpected related products %+v", related)
	}
}

type failingGateway struct{ gateway.Gateway }

func (failingGateway) Select(context.Context, string, gateway.Query) ([]gateway.Row, error) {
	return nil, &gateway.Error{Op: "select", Table: gateway.TableProducts, Kind: gateway.ErrTransport, Err: errors.New("down")}
}

func TestHandlers_GatewayFailureIsBadGateway(t *testing.T) {
	app := fiber.New()
	NewHandler(NewService(NewGatewayRepository(failingGateway{})), quietLog()).RegisterPublicRoutes(app)

	for _, path := range []string{"/api/v1/products", "/api/v1/products/featured", "/api/v1/products/x"} {
		res, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if res.StatusCode != fiber.StatusBadGateway {
			t.Fatalf("%s: expected 502, got %d", path, res.StatusCode)
		}
	}
}
