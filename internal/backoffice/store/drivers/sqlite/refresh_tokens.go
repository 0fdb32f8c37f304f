package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, session_id, amr, expires_at, revoked, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, t.SessionID, strings.Join(t.AMR, " "),
		t.ExpiresAt.UTC(), t.Revoked, t.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	var (
		t   domain.RefreshToken
		amr string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, session_id, amr, expires_at, revoked, created_at
		FROM refresh_tokens WHERE token_hash = ?`, hash,
	).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.SessionID, &amr, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.AMR = splitFields(amr)
	return t, nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	return expectOne(r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = 1 WHERE token_hash = ?`, hash))
}

func (r *refreshTokensRepo) RevokeSession(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = 1 WHERE session_id = ?`, sessionID)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ? OR (revoked = 1 AND created_at < ?)`,
		before.UTC(), before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
