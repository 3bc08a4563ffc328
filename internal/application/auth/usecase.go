package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/cadmeko-api/internal/application/dto"
	"github.com/jhoicas/cadmeko-api/internal/domain"
	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
	"github.com/jhoicas/cadmeko-api/internal/domain/repository"
	"github.com/jhoicas/cadmeko-api/pkg/clock"
	"github.com/jhoicas/cadmeko-api/pkg/jwt"
	"github.com/jhoicas/cadmeko-api/pkg/logger"
)

const minPasswordLength = 8

// dummyHash se compara cuando el login no existe para no revelar por tiempo de respuesta
// qué logins están registrados.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("cadmeko-dummy-password"), bcrypt.DefaultCost)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase autenticación (login) y administración de cuentas.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	clock    clock.Clock
	log      *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig, clk clock.Clock, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, clock: clk, log: log.Component("auth")}
}

// Authenticate verifica login/password y devuelve la identidad.
// Login desconocido y password incorrecto producen el mismo ErrAuthFailure.
func (uc *AuthUseCase) Authenticate(ctx context.Context, login, password string) (entity.Identity, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return entity.Identity{}, domain.ErrAuthFailure
	}
	user, err := uc.userRepo.GetByLogin(ctx, login)
	if err != nil {
		return entity.Identity{}, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return entity.Identity{}, domain.ErrAuthFailure
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return entity.Identity{}, domain.ErrAuthFailure
	}
	return entity.Identity{UserID: user.ID, Login: user.Login, Role: user.Role}, nil
}

// Login autentica y emite un JWT con la identidad.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	id, err := uc.Authenticate(ctx, in.Login, in.Password)
	if err != nil {
		uc.log.Debug().Str("login", in.Login).Err(err).Msg("login rechazado")
		return nil, err
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, id.UserID, id.Login, id.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("login", id.Login).Str("role", id.Role).Msg("sesión iniciada")
	return &dto.LoginResponse{
		Token:    token,
		Identity: dto.IdentityResponse{UserID: id.UserID, Login: id.Login, Role: id.Role},
	}, nil
}

// CreateUser crea una cuenta (solo admin). Devuelve ErrDuplicate si el login ya existe.
func (uc *AuthUseCase) CreateUser(ctx context.Context, actor entity.Identity, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := Require(actor, UserAdminRoles...); err != nil {
		return nil, err
	}
	in.Login = strings.TrimSpace(in.Login)
	if in.Login == "" || len(in.Login) > 50 || !entity.IsValidRole(in.Role) {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Password) < minPasswordLength || in.Password != in.PasswordConfirm {
		return nil, domain.ErrInvalidInput
	}
	user, err := uc.createUser(ctx, in.Login, in.Password, in.Role)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("by", actor.Login).Str("login", user.Login).Str("role", user.Role).Msg("usuario creado")
	return toUserResponse(user), nil
}

// BootstrapAdmin crea la cuenta admin inicial si el login no existe. Sin identidad:
// solo se usa desde la línea de comandos.
func (uc *AuthUseCase) BootstrapAdmin(ctx context.Context, login, password string) (created bool, err error) {
	login = strings.TrimSpace(login)
	if login == "" || len(password) < minPasswordLength {
		return false, domain.ErrInvalidInput
	}
	existing, err := uc.userRepo.GetByLogin(ctx, login)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if _, err := uc.createUser(ctx, login, password, entity.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *AuthUseCase) createUser(ctx context.Context, login, password, role string) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Login:        login,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers lista las cuentas ordenadas por login.
func (uc *AuthUseCase) ListUsers(ctx context.Context, actor entity.Identity) ([]dto.UserResponse, error) {
	if err := Require(actor, UserAdminRoles...); err != nil {
		return nil, err
	}
	users, err := uc.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *toUserResponse(u))
	}
	return out, nil
}

// UpdateRole cambia el rol de una cuenta. El cambio aplica al siguiente login.
func (uc *AuthUseCase) UpdateRole(ctx context.Context, actor entity.Identity, userID, role string) (*dto.UserResponse, error) {
	if err := Require(actor, UserAdminRoles...); err != nil {
		return nil, err
	}
	if !entity.IsValidRole(role) {
		return nil, domain.ErrInvalidInput
	}
	user, err := uc.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	user.UpdatedAt = uc.clock.Now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("by", actor.Login).Str("login", user.Login).Str("role", role).Msg("rol actualizado")
	return toUserResponse(user), nil
}

// ResetPassword reemplaza el hash de la contraseña.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, actor entity.Identity, userID, password string) error {
	if err := Require(actor, UserAdminRoles...); err != nil {
		return err
	}
	if len(password) < minPasswordLength {
		return domain.ErrInvalidInput
	}
	user, err := uc.mustGet(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = uc.clock.Now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return err
	}
	uc.log.Info().Str("by", actor.Login).Str("login", user.Login).Msg("contraseña reiniciada")
	return nil
}

// DeleteUser elimina una cuenta. Un admin no puede eliminarse a sí mismo.
func (uc *AuthUseCase) DeleteUser(ctx context.Context, actor entity.Identity, userID string) error {
	if err := Require(actor, UserAdminRoles...); err != nil {
		return err
	}
	if userID == actor.UserID {
		return domain.ErrInvalidInput
	}
	user, err := uc.mustGet(ctx, userID)
	if err != nil {
		return err
	}
	if err := uc.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}
	uc.log.Info().Str("by", actor.Login).Str("login", user.Login).Msg("usuario eliminado")
	return nil
}

func (uc *AuthUseCase) mustGet(ctx context.Context, userID string) (*entity.User, error) {
	if !entity.ValidID(userID) {
		return nil, domain.ErrInvalidInput
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Login:     u.Login,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
