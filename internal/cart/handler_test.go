package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/obrakomarvelouss/gpower/internal/gateway"
	"github.com/obrakomarvelouss/gpower/internal/product"
	"github.com/obrakomarvelouss/gpower/internal/session"
)

func makeAppWithCartHandler(svc *Service) *fiber.App {
	app := fiber.New()
	app.Use(session.Middleware(quietLog(), false))
	NewHandler(svc, quietLog()).RegisterRoutes(app)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body, sid string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if sid != "" {
		req.Header.Set("Cookie", session.CookieName+"="+sid)
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return res
}

func TestCartRoutes_AddUpdateRemove(t *testing.T) {
	f := newFixture(t)
	app := makeAppWithCartHandler(f.svc)
	pid := f.productID(t, "sunmax-400w-panel")

	res := do(t, app, "POST", "/api/v1/cart/items", `{"productId":"`+pid+`"}`, sessA)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on add, got %d", res.StatusCode)
	}
	var item CartItem
	if err := json.NewDecoder(res.Body).Decode(&item); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if item.Quantity != 1 || item.SessionID != sessA {
		t.Fatalf("unexpected item %+v", item)
	}

	res = do(t, app, "PATCH", "/api/v1/cart/items/"+item.ID, `{"quantity":0}`, sessA)
	var upd map[string]string
	_ = json.NewDecoder(res.Body).Decode(&upd)
	if res.StatusCode != fiber.StatusOK || upd["outcome"] != string(Noop) {
		t.Fatalf("expected noop, got %d %v", res.StatusCode, upd)
	}

	res = do(t, app, "PATCH", "/api/v1/cart/items/"+item.ID, `{"quantity":5}`, sessA)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on update, got %d", res.StatusCode)
	}

	res = do(t, app, "GET", "/api/v1/cart", "", sessA)
	var summary struct {
		Items  []CartItem     `json:"items"`
		Totals map[string]any `json:"totals"`
	}
	if err := json.NewDecoder(res.Body).Decode(&summary); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(summary.Items) != 1 || summary.Items[0].Quantity != 5 || summary.Items[0].Product == nil {
		t.Fatalf("unexpected cart %+v", summary.Items)
	}
	if summary.Totals["subtotal"] != "1249.95" || summary.Totals["item_count"] != float64(5) {
		t.Fatalf("unexpected totals %v", summary.Totals)
	}

	res = do(t, app, "DELETE", "/api/v1/cart/items/"+item.ID, "", sessA)
	if res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", res.StatusCode)
	}

	res = do(t, app, "GET", "/api/v1/cart/count", "", sessA)
	var count map[string]int
	_ = json.NewDecoder(res.Body).Decode(&count)
	if count["count"] != 0 {
		t.Fatalf("expected empty cart after remove, got %v", count)
	}
}

func TestCartRoutes_ErrorStatuses(t *testing.T) {
	f := newFixture(t)
	app := makeAppWithCartHandler(f.svc)

	cases := []struct {
		name, method, path, body string
		want                     int
	}{
		{"bad json", "POST", "/api/v1/cart/items", `{`, fiber.StatusBadRequest},
		{"missing product id", "POST", "/api/v1/cart/items", `{}`, fiber.StatusBadRequest},
		{"unknown product", "POST", "/api/v1/cart/items", `{"productId":"nope"}`, fiber.StatusNotFound},
		{"out of stock", "POST", "/api/v1/cart/items", `{"productId":"` + f.productID(t, "brightguard-flood-light") + `"}`, fiber.StatusConflict},
		{"missing quantity", "PATCH", "/api/v1/cart/items/x", `{}`, fiber.StatusBadRequest},
		{"unknown item", "PATCH", "/api/v1/cart/items/x", `{"quantity":2}`, fiber.StatusNotFound},
		{"malformed item id", "PATCH", "/api/v1/cart/items/not-a-uuid", `{"quantity":2}`, fiber.StatusNotFound},
		{"remove malformed item id", "DELETE", "/api/v1/cart/items/not-a-uuid", "", fiber.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := do(t, app, tc.method, tc.path, tc.body, sessA)
			if res.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, res.StatusCode)
			}
		})
	}
}

func TestCartRoutes_NewVisitorGetsSessionAndEmptyCart(t *testing.T) {
	f := newFixture(t)
	app := makeAppWithCartHandler(f.svc)

	res := do(t, app, "GET", "/api/v1/cart", "", "")
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if !strings.Contains(res.Header.Get("Set-Cookie"), session.CookieName) {
		t.Fatalf("expected a session cookie for a new visitor")
	}
}

type brokenGateway struct{ gateway.Gateway }

func (brokenGateway) Select(context.Context, string, gateway.Query) ([]gateway.Row, error) {
	return nil, &gateway.Error{Op: "select", Table: gateway.TableCartItems, Kind: gateway.ErrTransport, Err: errors.New("timeout")}
}

func TestCartRoutes_GatewayFailureIsBadGateway(t *testing.T) {
	gw := brokenGateway{Gateway: gateway.NewMemory()}
	products := product.NewService(product.NewGatewayRepository(gw))
	app := makeAppWithCartHandler(NewService(NewGatewayRepository(gw), products, quietLog()))

	for _, path := range []string{"/api/v1/cart", "/api/v1/cart/count"} {
		res := do(t, app, "GET", path, "", sessA)
		if res.StatusCode != fiber.StatusBadGateway {
			t.Fatalf("%s: expected 502, got %d", path, res.StatusCode)
		}
	}
	res := do(t, app, "POST", "/api/v1/cart/items", `{"productId":"9b2f6c1e-3d4a-4f5b-8c6d-7e8f9a0b1c2d"}`, sessA)
	if res.StatusCode != fiber.StatusBadGateway {
		t.Fatalf("expected 502 on add, got %d", res.StatusCode)
	}
}

// writeFailingGateway answers every write with a transport error, the way
// postgres rejects a malformed uuid.
type writeFailingGateway struct{ gateway.Gateway }

func (writeFailingGateway) Update(context.Context, string, []gateway.Filter, gateway.Row) (int, error) {
	return 0, &gateway.Error{Op: "update", Table: gateway.TableCartItems, Kind: gateway.ErrTransport, Err: errors.New("invalid input syntax for type uuid")}
}

func (writeFailingGateway) Delete(context.Context, string, []gateway.Filter) (int, error) {
	return 0, &gateway.Error{Op: "delete", Table: gateway.TableCartItems, Kind: gateway.ErrTransport, Err: errors.New("invalid input syntax for type uuid")}
}

func (writeFailingGateway) Select(_ context.Context, table string, _ gateway.Query) ([]gateway.Row, error) {
	return nil, &gateway.Error{Op: "select", Table: table, Kind: gateway.ErrTransport, Err: errors.New("invalid input syntax for type uuid")}
}

func TestCartRoutes_MalformedIDsNeverReachTheStore(t *testing.T) {
	gw := writeFailingGateway{Gateway: gateway.NewMemory()}
	products := product.NewService(product.NewGatewayRepository(gw))
	app := makeAppWithCartHandler(NewService(NewGatewayRepository(gw), products, quietLog()))

	cases := []struct {
		name, method, path, body string
		want                     int
	}{
		{"update", "PATCH", "/api/v1/cart/items/not-a-uuid", `{"quantity":3}`, fiber.StatusNotFound},
		{"remove", "DELETE", "/api/v1/cart/items/not-a-uuid", "", fiber.StatusNoContent},
		{"add", "POST", "/api/v1/cart/items", `{"productId":"x"}`, fiber.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := do(t, app, tc.method, tc.path, tc.body, sessA)
			if res.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, res.StatusCode)
			}
		})
	}
}
