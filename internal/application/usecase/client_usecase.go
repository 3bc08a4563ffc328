package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/cadmeko-api/internal/application/auth"
	"github.com/jhoicas/cadmeko-api/internal/application/dto"
	"github.com/jhoicas/cadmeko-api/internal/domain"
	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
	"github.com/jhoicas/cadmeko-api/internal/domain/repository"
	"github.com/jhoicas/cadmeko-api/pkg/clock"
)

// ClientUseCase alta y consulta de clientes.
type ClientUseCase struct {
	repo  repository.ClientRepository
	clock clock.Clock
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository, clk clock.Clock) *ClientUseCase {
	return &ClientUseCase{repo: repo, clock: clk}
}

// Create crea un cliente. Nombre obligatorio.
func (uc *ClientUseCase) Create(ctx context.Context, identity entity.Identity, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if err := auth.Require(identity, auth.OrderRoles...); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 200 {
		return nil, domain.ErrInvalidInput
	}
	client := &entity.Client{
		ID:        uuid.New().String(),
		Name:      name,
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: uc.clock.Now(),
	}
	if err := uc.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// GetByID obtiene un cliente.
func (uc *ClientUseCase) GetByID(ctx context.Context, identity entity.Identity, id string) (*dto.ClientResponse, error) {
	if err := auth.Require(identity, auth.OrderRoles...); err != nil {
		return nil, err
	}
	if !entity.ValidID(id) {
		return nil, domain.ErrInvalidInput
	}
	client, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	return toClientResponse(client), nil
}

// List lista clientes por nombre.
func (uc *ClientUseCase) List(ctx context.Context, identity entity.Identity, limit, offset int) (*dto.ClientListResponse, error) {
	if err := auth.Require(identity, auth.OrderRoles...); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ClientResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toClientResponse(c))
	}
	return &dto.ClientListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}
