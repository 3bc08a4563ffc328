package postgres

import (
	"context"

	"github.com/jhoicas/cadmeko-api/internal/domain"
	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
	"github.com/jhoicas/cadmeko-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id_user, login, pwd_hash, role, created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario. Login repetido (sin distinguir mayúsculas): ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `INSERT INTO utilisateur (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, u.ID, u.Login, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert utilisateur", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, "get utilisateur", `SELECT `+userColumns+` FROM utilisateur WHERE id_user = $1`, id)
}

// GetByLogin obtiene un usuario por login.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*entity.User, error) {
	return r.getOne(ctx, "get utilisateur by login", `SELECT `+userColumns+` FROM utilisateur WHERE lower(login) = lower($1)`, login)
}

func (r *UserRepo) getOne(ctx context.Context, op, query, arg string) (*entity.User, error) {
	var u entity.User
	err := r.q.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrap(op, err)
	}
	return &u, nil
}

// List lista todos los usuarios por login.
func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM utilisateur ORDER BY login`)
	if err != nil {
		return nil, wrap("list utilisateur", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, wrap("scan utilisateur", err)
		}
		list = append(list, &u)
	}
	return list, wrap("list utilisateur", rows.Err())
}

// Update actualiza rol y hash de contraseña.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE utilisateur SET pwd_hash = $2, role = $3, updated_at = $4 WHERE id_user = $1`,
		u.ID, u.PasswordHash, u.Role, u.UpdatedAt,
	)
	if err != nil {
		return wrap("update utilisateur", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un usuario. Los pedidos que creó conservan created_by en NULL.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM utilisateur WHERE id_user = $1`, id)
	return wrap("delete utilisateur", err)
}
