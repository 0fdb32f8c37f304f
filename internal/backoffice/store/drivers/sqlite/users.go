package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, name, password_hash, role, client_id, mfa_secret, mfa_enabled_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u         domain.User
		role      string
		clientID  sql.NullString
		mfaSecret sql.NullString
		mfaAt     sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &role, &clientID, &mfaSecret, &mfaAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	u.ClientID = mapNullString(clientID)
	u.MFASecret = mapNullString(mfaSecret)
	u.MFAEnabledAt = mapNullTimePtr(mfaAt)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, strings.ToLower(username)))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, name, password_hash, role, client_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, strings.ToLower(u.Username), u.Name, u.PasswordHash, string(u.Role),
		mapStringNull(u.ClientID), u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *usersRepo) UpdateMFASecret(ctx context.Context, userID, sealed string) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE users SET mfa_secret = ?, mfa_enabled_at = NULL, updated_at = ? WHERE id = ?`,
		mapStringNull(sealed), time.Now().UTC(), userID))
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string, at time.Time) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE users SET mfa_enabled_at = ?, updated_at = ? WHERE id = ? AND mfa_secret IS NOT NULL`,
		at.UTC(), at.UTC(), userID))
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
