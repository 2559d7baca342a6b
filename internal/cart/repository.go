package cart

import (
	"context"
	"time"

	"github.com/obrakomarvelouss/gpower/internal/gateway"
)

// Repository provides access to cart rows. Every mutation is scoped by
// session so one session cannot touch another's items.
type Repository interface {
	Find(ctx context.Context, sessionID, productID string) (*CartItem, error)
	ListBySession(ctx context.Context, sessionID string) ([]CartItem, error)
	Insert(ctx context.Context, sessionID, productID string, qty int) (CartItem, error)
	SetQuantity(ctx context.Context, sessionID, itemID string, qty int) (int, error)
	Delete(ctx context.Context, sessionID, itemID string) (int, error)
}

type GatewayRepository struct {
	gw  gateway.Gateway
	now func() time.Time
}

func NewGatewayRepository(gw gateway.Gateway) *GatewayRepository {
	return &GatewayRepository{gw: gw, now: func() time.Time { return time.Now().UTC() }}
}

func (r *GatewayRepository) Find(ctx context.Context, sessionID, productID string) (*CartItem, error) {
	rows, err := r.gw.Select(ctx, gateway.TableCartItems, gateway.Query{
		Filters: []gateway.Filter{gateway.Eq("session_id", sessionID), gateway.Eq("product_id", productID)},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	var item CartItem
	if err := gateway.DecodeOne(rows[0], &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GatewayRepository) ListBySession(ctx context.Context, sessionID string) ([]CartItem, error) {
	rows, err := r.gw.Select(ctx, gateway.TableCartItems, gateway.Query{
		Filters: []gateway.Filter{gateway.Eq("session_id", sessionID)},
		Order:   &gateway.Order{Column: "created_at"},
	})
	if err != nil {
		return nil, err
	}
	items := make([]CartItem, 0, len(rows))
	if err := gateway.Decode(rows, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GatewayRepository) Insert(ctx context.Context, sessionID, productID string, qty int) (CartItem, error) {
	row, err := r.gw.Insert(ctx, gateway.TableCartItems, gateway.Row{
		"session_id": sessionID,
		"product_id": productID,
		"quantity":   qty,
	})
	if err != nil {
		return CartItem{}, err
	}
	var item CartItem
	if err := gateway.DecodeOne(row, &item); err != nil {
		return CartItem{}, err
	}
	return item, nil
}

func (r *GatewayRepository) SetQuantity(ctx context.Context, sessionID, itemID string, qty int) (int, error) {
	return r.gw.Update(ctx, gateway.TableCartItems, scoped(sessionID, itemID), gateway.Row{
		"quantity":   qty,
		"updated_at": r.now(),
	})
}

func (r *GatewayRepository) Delete(ctx context.Context, sessionID, itemID string) (int, error) {
	return r.gw.Delete(ctx, gateway.TableCartItems, scoped(sessionID, itemID))
}

func scoped(sessionID, itemID string) []gateway.Filter {
	return []gateway.Filter{gateway.Eq("id", itemID), gateway.Eq("session_id", sessionID)}
}
