package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/obrakomarvelouss/gpower/internal/cart"
	"github.com/obrakomarvelouss/gpower/internal/gateway"
	"github.com/obrakomarvelouss/gpower/internal/navigation"
	"github.com/obrakomarvelouss/gpower/internal/product"
	"github.com/obrakomarvelouss/gpower/internal/session"
)

const sid = "9b2f7d8e-1c3a-4e5b-8f6d-2a4c6e8b0d1f"

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newComposer(t *testing.T, gw gateway.Gateway) (*Composer, *product.Service, *cart.Service) {
	t.Helper()
	products := product.NewService(product.NewGatewayRepository(gw))
	carts := cart.NewService(cart.NewGatewayRepository(gw), products, quietLog())
	return NewComposer(products, carts, quietLog()), products, carts
}

func seeded(t *testing.T) *gateway.Memory {
	t.Helper()
	gw := gateway.NewMemory()
	if err := gw.Seed(context.Background(), gateway.TableProducts, product.SampleCatalog()...); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return gw
}

func TestCompose_HomeShowsFeaturedAndBadge(t *testing.T) {
	gw := seeded(t)
	c, products, carts := newComposer(t, gw)
	ctx := context.Background()

	p, _ := products.BySlug(ctx, "sunmax-400w-panel")
	_, _ = carts.AddToCart(ctx, sid, p.ID)
	_, _ = carts.AddToCart(ctx, sid, p.ID)

	v := c.Compose(ctx, navigation.Initial(), sid, "")
	if len(v.Featured) == 0 || len(v.Featured) > product.FeaturedLimit {
		t.Fatalf("unexpected featured count %d", len(v.Featured))
	}
	if v.CartCount != 2 {
		t.Fatalf("expected badge 2, got %d", v.CartCount)
	}
	if len(v.Errors) != 0 {
		t.Fatalf("unexpected errors %v", v.Errors)
	}
}

func TestCompose_ProductsPageFiltersByCategory(t *testing.T) {
	c, _, _ := newComposer(t, seeded(t))
	v := c.Compose(context.Background(), navigation.Parse("products", ""), sid, "solar-generators")
	if v.Category != "solar-generators" || len(v.Categories) == 0 {
		t.Fatalf("expected category chips and selection, got %+v", v)
	}
	if len(v.Products) != 2 {
		t.Fatalf("expected 2 generators, got %d", len(v.Products))
	}
}

func TestCompose_ProductDetailWithRelated(t *testing.T) {
	c, _, _ := newComposer(t, seeded(t))
	v := c.Compose(context.Background(), navigation.Parse("product", "flexi-100w-panel"), sid, "")
	if v.Product == nil || v.Product.Slug != "flexi-100w-panel" {
		t.Fatalf("expected product detail, got %+v", v.Product)
	}
	if len(v.Related) != 1 || v.Related[0].Slug != "sunmax-400w-panel" {
		t.Fatalf("unexpected related %+v", v.Related)
	}
}

func TestCompose_UnknownSlugIsNotFound(t *testing.T) {
	c, _, _ := newComposer(t, seeded(t))
	v := c.Compose(context.Background(), navigation.Parse("product", "does-not-exist"), sid, "")
	if !v.NotFound || v.Product != nil || len(v.Errors) != 0 {
		t.Fatalf("expected a clean not-found state, got %+v", v)
	}
}

func TestCompose_CartAndContact(t *testing.T) {
	c, _, _ := newComposer(t, seeded(t))

	v := c.Compose(context.Background(), navigation.Parse("cart", ""), sid, "")
	if v.Cart == nil || len(v.Cart.Items) != 0 || !v.Cart.Totals.Total.IsZero() {
		t.Fatalf("expected empty cart summary, got %+v", v.Cart)
	}

	v = c.Compose(context.Background(), navigation.Parse("contact", ""), sid, "")
	if v.Contact == nil || v.Contact.Email == "" {
		t.Fatalf("expected contact info, got %+v", v.Contact)
	}
}

// flakyGateway fails every read of one table.
type flakyGateway struct {
	gateway.Gateway
	table string
}

func (f flakyGateway) Select(ctx context.Context, table string, q gateway.Query) ([]gateway.Row, error) {
	if table == f.table {
		return nil, &gateway.Error{Op: "select", Table: table, Kind: gateway.ErrTransport, Err: errors.New("timeout")}
	}
	return f.Gateway.Select(ctx, table, q)
}

func TestCompose_FailedSectionIsFlagged(t *testing.T) {
	c, _, _ := newComposer(t, flakyGateway{Gateway: seeded(t), table: gateway.TableCartItems})

	v := c.Compose(context.Background(), navigation.Initial(), sid, "")
	if len(v.Featured) == 0 {
		t.Fatalf("featured should still render when the badge fails")
	}
	if len(v.Errors) != 1 || v.Errors[0] != "cart_count" {
		t.Fatalf("expected cart_count to be flagged, got %v", v.Errors)
	}
}

func TestCompose_EverySectionFailureIsCollected(t *testing.T) {
	c, _, _ := newComposer(t, flakyGateway{Gateway: seeded(t), table: gateway.TableCartItems})

	v := c.Compose(context.Background(), navigation.Initial().Navigate(navigation.Cart, ""), sid, "")
	if v.Cart != nil {
		t.Fatalf("expected no cart section, got %+v", v.Cart)
	}
	flagged := map[string]bool{}
	for _, name := range v.Errors {
		flagged[name] = true
	}
	if len(v.Errors) != 2 || !flagged["cart"] || !flagged["cart_count"] {
		t.Fatalf("expected cart and cart_count to be flagged, got %v", v.Errors)
	}
}

func TestCompose_FailedProductLookupIsNotNotFound(t *testing.T) {
	c, _, _ := newComposer(t, flakyGateway{Gateway: seeded(t), table: gateway.TableProducts})

	v := c.Compose(context.Background(), navigation.Initial().Navigate(navigation.Product, "sunmax-400w-panel"), sid, "")
	if v.NotFound || v.Product != nil {
		t.Fatalf("a failed lookup must not read as not found: %+v", v)
	}
	if len(v.Errors) != 1 || v.Errors[0] != "product" {
		t.Fatalf("expected product to be flagged, got %v", v.Errors)
	}
}

func TestViewHandler(t *testing.T) {
	c, _, _ := newComposer(t, seeded(t))
	app := fiber.New()
	app.Use(session.Middleware(quietLog(), false))
	NewHandler(c).RegisterRoutes(app)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/view?page=product&slug=nope", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", res.StatusCode)
	}
	var v View
	_ = json.NewDecoder(res.Body).Decode(&v)
	if !v.NotFound || v.State.Page != navigation.Product {
		t.Fatalf("unexpected view %+v", v)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/view?page=nowhere", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	_ = json.NewDecoder(res.Body).Decode(&v)
	if v.State.Page != navigation.Home || !v.State.ResetScroll {
		t.Fatalf("unknown page should land home, got %+v", v.State)
	}
}
