package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/obrakomarvelouss/gpower/internal/gateway"
	"github.com/obrakomarvelouss/gpower/internal/metrics"
	"github.com/obrakomarvelouss/gpower/internal/product"
)

// ProductLookup is the slice of the catalog the cart needs.
type ProductLookup interface {
	ByID(ctx context.Context, id string) (*product.Product, error)
	ByIDs(ctx context.Context, ids []string) ([]product.Product, error)
}

// Outcome tells the caller what an UpdateQuantity call did.
type Outcome string

const (
	Updated Outcome = "updated"
	// Noop means the requested quantity was below 1 and nothing was sent.
	Noop Outcome = "noop"
	// Missing means no item with that id exists in the session's cart.
	Missing Outcome = "missing"
)

// Service is the cart engine. It is stateless; every call reads what it
// needs through the repository.
type Service struct {
	repo     Repository
	products ProductLookup
	log      logrus.FieldLogger
}

func NewService(repo Repository, products ProductLookup, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, products: products, log: log}
}

// wellFormed reports whether id can name a row at all. Row ids are uuids; a
// malformed id is treated as no such row and never sent to the store.
func wellFormed(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// AddToCart adds one unit of the product. The existing-row check and the
// write are separate calls; a duplicate insert caused by a concurrent add is
// turned into an increment once.
func (s *Service) AddToCart(ctx context.Context, sessionID, productID string) (CartItem, error) {
	if sessionID == "" || productID == "" {
		return CartItem{}, ErrInvalidItem
	}
	if !wellFormed(productID) {
		metrics.RecordCartOperation("add", "unknown_product")
		return CartItem{}, ErrProductNotFound
	}

	p, err := s.products.ByID(ctx, productID)
	if err != nil {
		metrics.RecordCartOperation("add", "error")
		return CartItem{}, err
	}
	if p == nil {
		metrics.RecordCartOperation("add", "unknown_product")
		return CartItem{}, ErrProductNotFound
	}
	if !p.InStock() {
		metrics.RecordCartOperation("add", "out_of_stock")
		return CartItem{}, ErrOutOfStock
	}

	existing, err := s.repo.Find(ctx, sessionID, productID)
	if err != nil {
		metrics.RecordCartOperation("add", "error")
		return CartItem{}, err
	}
	if existing != nil {
		return s.increment(ctx, *existing)
	}

	item, err := s.repo.Insert(ctx, sessionID, productID, 1)
	if errors.Is(err, gateway.ErrConflict) {
		s.log.WithFields(logrus.Fields{"session": sessionID, "product": productID}).
			Info("concurrent add detected, incrementing existing row")
		existing, ferr := s.repo.Find(ctx, sessionID, productID)
		if ferr != nil {
			metrics.RecordCartOperation("add", "error")
			return CartItem{}, ferr
		}
		if existing == nil {
			metrics.RecordCartOperation("add", "error")
			return CartItem{}, err
		}
		return s.increment(ctx, *existing)
	}
	if err != nil {
		metrics.RecordCartOperation("add", "error")
		return CartItem{}, err
	}
	metrics.RecordCartOperation("add", "inserted")
	return item, nil
}

func (s *Service) increment(ctx context.Context, item CartItem) (CartItem, error) {
	item.Quantity++
	if _, err := s.repo.SetQuantity(ctx, item.SessionID, item.ID, item.Quantity); err != nil {
		metrics.RecordCartOperation("add", "error")
		return CartItem{}, err
	}
	metrics.RecordCartOperation("add", "incremented")
	return item, nil
}

// UpdateQuantity overwrites the quantity of one item. Quantities below 1 are
// ignored without touching the store; removal is a separate operation.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, itemID string, qty int) (Outcome, error) {
	if qty < 1 {
		metrics.RecordCartOperation("update", string(Noop))
		return Noop, nil
	}
	if sessionID == "" || itemID == "" {
		return Missing, ErrInvalidItem
	}
	if !wellFormed(itemID) {
		metrics.RecordCartOperation("update", string(Missing))
		return Missing, nil
	}
	n, err := s.repo.SetQuantity(ctx, sessionID, itemID, qty)
	if err != nil {
		metrics.RecordCartOperation("update", "error")
		return "", err
	}
	if n == 0 {
		metrics.RecordCartOperation("update", string(Missing))
		return Missing, nil
	}
	metrics.RecordCartOperation("update", string(Updated))
	return Updated, nil
}

// RemoveItem deletes one item. Removing an item that is already gone is not
// an error.
func (s *Service) RemoveItem(ctx context.Context, sessionID, itemID string) error {
	if sessionID == "" || itemID == "" {
		return ErrInvalidItem
	}
	if !wellFormed(itemID) {
		metrics.RecordCartOperation("remove", "ok")
		return nil
	}
	if _, err := s.repo.Delete(ctx, sessionID, itemID); err != nil {
		metrics.RecordCartOperation("remove", "error")
		return err
	}
	metrics.RecordCartOperation("remove", "ok")
	return nil
}

// Items returns the session's cart with each product joined in. The join is
// one extra products read, not a store-side join.
func (s *Service) Items(ctx context.Context, sessionID string) ([]CartItem, error) {
	if sessionID == "" {
		return []CartItem{}, nil
	}
	items, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	products, err := s.products.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for i := range items {
		if p, ok := byID[items[i].ProductID]; ok {
			items[i].Product = &p
		}
	}
	return items, nil
}

// Summary returns the joined items and their totals.
func (s *Service) Summary(ctx context.Context, sessionID string) (Summary, error) {
	items, err := s.Items(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Items: items, Totals: ComputeTotals(items)}, nil
}

// Count is the sum of quantities across the session's cart.
func (s *Service) Count(ctx context.Context, sessionID string) (int, error) {
	if sessionID == "" {
		return 0, nil
	}
	items, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return total, nil
}
