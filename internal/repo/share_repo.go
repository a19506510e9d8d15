package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/docshare/internal/model"
	"github.com/xxxsen/docshare/internal/pkg/dbutil"
	appErr "github.com/xxxsen/docshare/internal/pkg/errors"
)

var shareColumns = []string{
	"id", "token", "document_id", "owner_id", "access_level", "state", "max_views",
	"view_count", "password_hash", "recipient_email_hint", "created_at", "expires_at",
}

type ShareRepo struct {
	db *sql.DB
}

func NewShareRepo(db *sql.DB) *ShareRepo {
	return &ShareRepo{db: db}
}

func nullString(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func (r *ShareRepo) Create(ctx context.Context, share *model.ShareLink) error {
	var maxViews interface{}
	if share.MaxViews != nil {
		maxViews = *share.MaxViews
	}
	data := map[string]interface{}{
		"id":                   share.ID,
		"token":                share.Token,
		"document_id":          share.DocumentID,
		"owner_id":             share.OwnerID,
		"access_level":         string(share.AccessLevel),
		"state":                share.State,
		"max_views":            maxViews,
		"view_count":           share.ViewCount,
		"password_hash":        nullString(share.PasswordHash),
		"recipient_email_hint": nullString(share.RecipientEmailHint),
		"created_at":           share.CreatedAt,
		"expires_at":           share.ExpiresAt,
	}
	sqlStr, args, err := builder.BuildInsert("share_links", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanShare(row rowScanner) (*model.ShareLink, error) {
	var (
		share        model.ShareLink
		accessLevel  string
		maxViews     sql.NullInt64
		passwordHash sql.NullString
		emailHint    sql.NullString
	)
	if err := row.Scan(&share.ID, &share.Token, &share.DocumentID, &share.OwnerID, &accessLevel, &share.State,
		&maxViews, &share.ViewCount, &passwordHash, &emailHint, &share.CreatedAt, &share.ExpiresAt); err != nil {
		return nil, err
	}
	share.AccessLevel = model.AccessLevel(accessLevel)
	if maxViews.Valid {
		limit := int(maxViews.Int64)
		share.MaxViews = &limit
	}
	share.PasswordHash = passwordHash.String
	share.RecipientEmailHint = emailHint.String
	return &share, nil
}

func (r *ShareRepo) GetByToken(ctx context.Context, token string) (*model.ShareLink, error) {
	where := map[string]interface{}{"token": token}
	sqlStr, args, err := builder.BuildSelect("share_links", where, shareColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, appErr.ErrNotFound
	}
	return scanShare(rows)
}

func (r *ShareRepo) ListByOwner(ctx context.Context, ownerID, documentID string) ([]model.ShareLink, error) {
	where := map[string]interface{}{
		"owner_id": ownerID,
		"_orderby": "created_at desc",
	}
	if documentID != "" {
		where["document_id"] = documentID
	}
	sqlStr, args, err := builder.BuildSelect("share_links", where, shareColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.ShareLink, 0)
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *share)
	}
	return items, rows.Err()
}

func (r *ShareRepo) Revoke(ctx context.Context, ownerID, token string) error {
	where := map[string]interface{}{"owner_id": ownerID, "token": token}
	update := map[string]interface{}{"state": model.ShareStateRevoked}
	sqlStr, args, err := builder.BuildUpdate("share_links", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// ConsumeView increments view_count by one in a single conditional UPDATE.
// The row is only touched while the link is active, unexpired and under its
// quota, so concurrent callers can never push view_count past max_views.
func (r *ShareRepo) ConsumeView(ctx context.Context, token string, now int64) (int, error) {
	const query = `
		UPDATE share_links
		SET view_count = view_count + 1
		WHERE token = $1
			AND state = $2
			AND expires_at >= $3
			AND (max_views IS NULL OR view_count < max_views)
		RETURNING view_count
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, token, model.ShareStateActive, now).Scan(&count)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	share, err := r.GetByToken(ctx, token)
	if err != nil {
		return 0, err
	}
	if denied := share.Check(now); denied != nil {
		return 0, denied
	}
	return 0, appErr.ErrShareExhausted
}
