package product

import (
	"context"

	"github.com/obrakomarvelouss/gpower/internal/gateway"
)

type Repository interface {
	List(ctx context.Context) ([]Product, error)
	ListByCategory(ctx context.Context, category string) ([]Product, error)
	Featured(ctx context.Context, limit int) ([]Product, error)
	// BySlug returns nil, nil when no product has the slug.
	BySlug(ctx context.Context, slug string) (*Product, error)
	ByID(ctx context.Context, id string) (*Product, error)
	ByIDs(ctx context.Context, ids []string) ([]Product, error)
	Related(ctx context.Context, p Product, limit int) ([]Product, error)
}

// GatewayRepository reads products through the data access gateway. Nothing
// is cached; every call is one round trip.
type GatewayRepository struct {
	gw gateway.Gateway
}

func NewGatewayRepository(gw gateway.Gateway) *GatewayRepository {
	return &GatewayRepository{gw: gw}
}

var newestFirst = &gateway.Order{Column: "created_at", Desc: true}

func (r *GatewayRepository) List(ctx context.Context) ([]Product, error) {
	return r.query(ctx, gateway.Query{Order: newestFirst})
}

func (r *GatewayRepository) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	return r.query(ctx, gateway.Query{
		Filters: []gateway.Filter{gateway.Eq("category", category)},
		Order:   newestFirst,
	})
}

func (r *GatewayRepository) Featured(ctx context.Context, limit int) ([]Product, error) {
	return r.query(ctx, gateway.Query{
		Filters: []gateway.Filter{gateway.Eq("featured", true)},
		Limit:   limit,
	})
}

func (r *GatewayRepository) BySlug(ctx context.Context, slug string) (*Product, error) {
	return r.one(ctx, gateway.Eq("slug", slug))
}

func (r *GatewayRepository) ByID(ctx context.Context, id string) (*Product, error) {
	return r.one(ctx, gateway.Eq("id", id))
}

func (r *GatewayRepository) ByIDs(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	return r.query(ctx, gateway.Query{Filters: []gateway.Filter{gateway.In("id", ids...)}})
}

func (r *GatewayRepository) Related(ctx context.Context, p Product, limit int) ([]Product, error) {
	return r.query(ctx, gateway.Query{
		Filters: []gateway.Filter{gateway.Eq("category", p.Category), gateway.Neq("id", p.ID)},
		Limit:   limit,
	})
}

func (r *GatewayRepository) one(ctx context.Context, f gateway.Filter) (*Product, error) {
	products, err := r.query(ctx, gateway.Query{Filters: []gateway.Filter{f}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}

func (r *GatewayRepository) query(ctx context.Context, q gateway.Query) ([]Product, error) {
	rows, err := r.gw.Select(ctx, gateway.TableProducts, q)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(rows))
	if err := gateway.Decode(rows, &out); err != nil {
		return nil, err
	}
	return out, nil
}
