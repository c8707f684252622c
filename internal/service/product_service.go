package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bakepos/internal/apierror"
	"bakepos/internal/dto"
	"bakepos/internal/model"
	"bakepos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	catalogCacheKey = "products:catalog"
	catalogCacheTTL = time.Minute
)

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	List(ctx context.Context) ([]dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo repository.ProductRepository
	rdb  *redis.Client
}

func NewProductService(repo repository.ProductRepository, rdb *redis.Client) ProductService {
	return &productService{repo: repo, rdb: rdb}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", apierror.ErrInvalidInput)
	}
	p := &model.Product{Name: req.Name, Price: req.Price, Active: true}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("%w: creating product: %v", apierror.ErrStorage, err)
	}
	s.dropCatalogCache(ctx)
	return productToResponse(p), nil
}

// List serves the catalog from Redis when fresh. The register UI polls this
// endpoint continuously, so even a one-minute TTL removes most reads.
func (s *productService) List(ctx context.Context) ([]dto.ProductResponse, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, catalogCacheKey).Bytes(); err == nil {
			var cached []dto.ProductResponse
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	products, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("%w: listing products: %v", apierror.ErrStorage, err)
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productToResponse(&products[i]))
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(out); err == nil {
			s.rdb.Set(ctx, catalogCacheKey, raw, catalogCacheTTL)
		}
	}
	return out, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: product %s", apierror.ErrNotFound, id)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", apierror.ErrInvalidInput)
	}
	p.Name = req.Name
	p.Price = req.Price
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("%w: updating product: %v", apierror.ErrStorage, err)
	}
	s.dropCatalogCache(ctx)
	return productToResponse(p), nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("%w: product %s", apierror.ErrNotFound, id)
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("%w: deactivating product: %v", apierror.ErrStorage, err)
	}
	s.dropCatalogCache(ctx)
	return nil
}

func (s *productService) dropCatalogCache(ctx context.Context) {
	if s.rdb != nil {
		s.rdb.Del(ctx, catalogCacheKey)
	}
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:     p.ID.String(),
		Name:   p.Name,
		Price:  p.Price,
		Active: p.Active,
	}
}
