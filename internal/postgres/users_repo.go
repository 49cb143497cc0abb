package postgres

import (
	"context"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/auth"
)

type UserRepo struct{ DB *DB }

var _ auth.UserStore = (*UserRepo)(nil)

func (r *UserRepo) CreateUser(ctx context.Context, u *auth.User) error {
	return r.DB.WithTransaction(ctx, func(ctx context.Context) error {
		q := r.DB.q(ctx)
		_, err := q.Exec(ctx, `
			INSERT INTO users(id, user_name, email, first_name, last_name, password_hash, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			u.ID, u.UserName, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.CreatedAt)
		if err != nil {
			if pgCode(err) == codeUniqueViolation {
				return auth.ErrDuplicateEmail
			}
			return err
		}
		for _, role := range u.Roles {
			if _, err := q.Exec(ctx, `INSERT INTO user_roles(user_id, role) VALUES ($1,$2)
			                          ON CONFLICT DO NOTHING`, u.ID, string(role)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepo) UserByID(ctx context.Context, id string) (*auth.User, error) {
	return r.one(ctx, `WHERE id = $1`, id)
}

func (r *UserRepo) UserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.one(ctx, `WHERE email = $1`, email)
}

func (r *UserRepo) one(ctx context.Context, where string, arg any) (*auth.User, error) {
	q := r.DB.q(ctx)
	var u auth.User
	err := q.QueryRow(ctx, `SELECT id, user_name, email, first_name, last_name, password_hash, created_at
	                        FROM users `+where, arg).
		Scan(&u.ID, &u.UserName, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	rows, err := q.Query(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, u.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		u.Roles = append(u.Roles, auth.Role(role))
	}
	return &u, rows.Err()
}

func (r *UserRepo) AddRole(ctx context.Context, userID string, role auth.Role) error {
	_, err := r.DB.q(ctx).Exec(ctx, `INSERT INTO user_roles(user_id, role) VALUES ($1,$2)
	                                 ON CONFLICT DO NOTHING`, userID, string(role))
	if pgCode(err) == codeForeignKeyViolation {
		return apperr.NotFound("user %s not found", userID)
	}
	return err
}
