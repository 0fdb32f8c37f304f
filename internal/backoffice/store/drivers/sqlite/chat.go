package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
)

type chatRepo struct {
	db dbtx
}

const threadColumns = `id, client_id, subject, status, created_by, last_message_at, created_at`

func scanThread(row interface{ Scan(...any) error }) (domain.Thread, error) {
	var (
		t      domain.Thread
		status string
		lastAt sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.ClientID, &t.Subject, &status, &t.CreatedBy, &lastAt, &t.CreatedAt); err != nil {
		return domain.Thread{}, err
	}
	t.Status = domain.ThreadStatus(status)
	t.LastMessageAt = mapNullTimePtr(lastAt)
	return t, nil
}

func (r *chatRepo) CreateThread(ctx context.Context, t domain.Thread) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_threads (id, client_id, subject, status, created_by, last_message_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ClientID, t.Subject, string(t.Status), t.CreatedBy, mapOptionalTime(t.LastMessageAt), t.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *chatRepo) GetThread(ctx context.Context, id string) (domain.Thread, error) {
	t, err := scanThread(r.db.QueryRowContext(ctx, `SELECT `+threadColumns+` FROM chat_threads WHERE id = ?`, id))
	if err != nil {
		return domain.Thread{}, mapNotFound(err)
	}
	return t, nil
}

func (r *chatRepo) ListThreads(ctx context.Context, f store.ThreadFilter) ([]domain.Thread, error) {
	var w where
	if f.ClientID != "" {
		w.add(`client_id = ?`, f.ClientID)
	}
	if f.Status != "" {
		w.add(`status = ?`, string(f.Status))
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+threadColumns+` FROM chat_threads`+w.String()+` ORDER BY COALESCE(last_message_at, created_at) DESC, id`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Thread{}
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *chatRepo) SetThreadStatus(ctx context.Context, id string, status domain.ThreadStatus) error {
	return expectOne(r.db.ExecContext(ctx, `UPDATE chat_threads SET status = ? WHERE id = ?`, string(status), id))
}

func (r *chatRepo) CreateMessage(ctx context.Context, m domain.Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, thread_id, author_id, author_name, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.ThreadID, m.AuthorID, m.AuthorName, m.Body, m.CreatedAt.UTC(),
	)
	if err != nil {
		return mapConstraint(err)
	}
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE chat_threads SET last_message_at = ? WHERE id = ?`, m.CreatedAt.UTC(), m.ThreadID))
}

func (r *chatRepo) ListMessages(ctx context.Context, threadID string) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, thread_id, author_id, author_name, body, created_at
		FROM chat_messages WHERE thread_id = ? ORDER BY created_at, id`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.AuthorID, &m.AuthorName, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
