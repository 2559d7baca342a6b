package product

import (
	"context"
	"strings"

	"github.com/obrakomarvelouss/gpower/internal/category"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every product, newest first.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// ListByCategory matches the category tag exactly. "all" and "" mean no
// filter.
func (s *Service) ListByCategory(ctx context.Context, tag string) ([]Product, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" || tag == category.All {
		return s.repo.List(ctx)
	}
	return s.repo.ListByCategory(ctx, tag)
}

func (s *Service) Featured(ctx context.Context) ([]Product, error) {
	return s.repo.Featured(ctx, FeaturedLimit)
}

// BySlug returns nil, nil for an unknown slug.
func (s *Service) BySlug(ctx context.Context, slug string) (*Product, error) {
	if slug == "" {
		return nil, nil
	}
	return s.repo.BySlug(ctx, slug)
}

func (s *Service) ByID(ctx context.Context, id string) (*Product, error) {
	if id == "" {
		return nil, nil
	}
	return s.repo.ByID(ctx, id)
}

func (s *Service) ByIDs(ctx context.Context, ids []string) ([]Product, error) {
	return s.repo.ByIDs(ctx, ids)
}

// Related returns up to RelatedLimit other products from p's category.
func (s *Service) Related(ctx context.Context, p Product) ([]Product, error) {
	return s.repo.Related(ctx, p, RelatedLimit)
}
