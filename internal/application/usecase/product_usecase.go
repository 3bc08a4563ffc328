package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cadmeko-api/internal/application/auth"
	"github.com/jhoicas/cadmeko-api/internal/application/dto"
	"github.com/jhoicas/cadmeko-api/internal/domain"
	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
	"github.com/jhoicas/cadmeko-api/internal/domain/repository"
	"github.com/jhoicas/cadmeko-api/pkg/clock"
)

// DateLayout formato de fechas de caducidad en la API.
const DateLayout = "2006-01-02"

const exportPageSize = 500

// ProductUseCase casos de uso del catálogo. El stock se maneja solo vía movimientos.
type ProductUseCase struct {
	repo  repository.ProductRepository
	clock clock.Clock
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, clk clock.Clock) *ProductUseCase {
	return &ProductUseCase{repo: repo, clock: clk}
}

// Create crea un producto. Código único (ErrDuplicate), caducidad no vencida, precio >= 0.
func (uc *ProductUseCase) Create(ctx context.Context, identity entity.Identity, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := auth.Require(identity, auth.CatalogRoles...); err != nil {
		return nil, err
	}
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if in.Code == "" || in.Name == "" || len(in.Code) > 50 || len(in.Name) > 200 {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitPrice.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	expiry, err := time.Parse(DateLayout, strings.TrimSpace(in.ExpiryDate))
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if expiry.Before(today) {
		return nil, domain.ErrInvalidInput
	}

	existing, err := uc.repo.GetByCode(ctx, in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	product := &entity.Product{
		ID:         uuid.New().String(),
		Code:       in.Code,
		Name:       in.Name,
		Form:       strings.TrimSpace(in.Form),
		Dosage:     strings.TrimSpace(in.Dosage),
		ExpiryDate: expiry,
		UnitPrice:  in.UnitPrice,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, identity entity.Identity, id string) (*dto.ProductResponse, error) {
	if err := auth.Require(identity, auth.CatalogRoles...); err != nil {
		return nil, err
	}
	if !entity.ValidID(id) {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// List lista productos (más recientes primero) con paginación.
func (uc *ProductUseCase) List(ctx context.Context, identity entity.Identity, limit, offset int) (*dto.ProductListResponse, error) {
	if err := auth.Require(identity, auth.CatalogRoles...); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// ExportAll devuelve el catálogo completo (más recientes primero) para exportarlo.
func (uc *ProductUseCase) ExportAll(ctx context.Context, identity entity.Identity) ([]dto.ProductResponse, error) {
	if err := auth.Require(identity, auth.CatalogRoles...); err != nil {
		return nil, err
	}
	out := []dto.ProductResponse{}
	for offset := 0; ; offset += exportPageSize {
		page, err := uc.repo.List(ctx, exportPageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, p := range page {
			out = append(out, *toProductResponse(p))
		}
		if len(page) < exportPageSize {
			return out, nil
		}
	}
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:         p.ID,
		Code:       p.Code,
		Name:       p.Name,
		Form:       p.Form,
		Dosage:     p.Dosage,
		ExpiryDate: p.ExpiryDate.Format(DateLayout),
		UnitPrice:  p.UnitPrice,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
