package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jaehoon-dev/commerce-api/internal/domain"
)

const (
	productKeyPrefix = "product:"
	listKeyPrefix    = "products:"

	defaultListLimit = 20
	maxListLimit     = 100
)

// ProductUsecase serves catalog reads cache-first and invalidates on every
// mutation. Cache failures fall through to the database silently.
type ProductUsecase struct {
	repo     domain.ProductRepository
	cache    domain.ResponseCache
	cacheTTL time.Duration
}

func NewProductUsecase(repo domain.ProductRepository, cache domain.ResponseCache, cacheTTL time.Duration) *ProductUsecase {
	return &ProductUsecase{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// GetByID returns a single product, from cache when possible.
func (u *ProductUsecase) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	key := productKeyPrefix + id

	if data, err := u.cache.Get(ctx, key); err == nil {
		p := &domain.Product{}
		if err := json.Unmarshal(data, p); err == nil {
			return p, nil
		}
	}

	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		_ = u.cache.Set(ctx, key, data, u.cacheTTL)
	}

	return p, nil
}

// List returns a page of products, from cache when possible.
func (u *ProductUsecase) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	key := fmt.Sprintf("%sl%d:o%d", listKeyPrefix, limit, offset)

	if data, err := u.cache.Get(ctx, key); err == nil {
		var products []*domain.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
	}

	products, err := u.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(products); err == nil {
		_ = u.cache.Set(ctx, key, data, u.cacheTTL)
	}

	return products, nil
}

// Create inserts a product and drops stale listings.
func (u *ProductUsecase) Create(ctx context.Context, p *domain.Product) error {
	if err := u.repo.Create(ctx, p); err != nil {
		return err
	}
	u.invalidate(ctx, p.ID)
	return nil
}

// Update modifies a product and drops its cache entries.
func (u *ProductUsecase) Update(ctx context.Context, p *domain.Product) error {
	if err := u.repo.Update(ctx, p); err != nil {
		return err
	}
	u.invalidate(ctx, p.ID)
	return nil
}

// Delete removes a product and drops its cache entries.
func (u *ProductUsecase) Delete(ctx context.Context, id string) error {
	if err := u.repo.Delete(ctx, id); err != nil {
		return err
	}
	u.invalidate(ctx, id)
	return nil
}

func (u *ProductUsecase) invalidate(ctx context.Context, id string) {
	_ = u.cache.Delete(ctx, productKeyPrefix+id)
	_ = u.cache.DeletePrefix(ctx, listKeyPrefix)
}
