package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/docshare/internal/model"
	"github.com/xxxsen/docshare/internal/pkg/dbutil"
)

type ShareAccessRepo struct {
	db *sql.DB
}

func NewShareAccessRepo(db *sql.DB) *ShareAccessRepo {
	return &ShareAccessRepo{db: db}
}

func (r *ShareAccessRepo) Create(ctx context.Context, access *model.ShareAccess) error {
	data := map[string]interface{}{
		"id":          access.ID,
		"share_token": access.ShareToken,
		"action":      string(access.Action),
		"view_number": access.ViewNumber,
		"client_ip":   access.ClientIP,
		"user_agent":  access.UserAgent,
		"ctime":       access.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("share_accesses", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ShareAccessRepo) ListByToken(ctx context.Context, token string, limit, offset uint) ([]model.ShareAccess, error) {
	where := map[string]interface{}{
		"share_token": token,
		"_orderby":    "ctime desc",
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("share_accesses", where, []string{"id", "share_token", "action", "view_number", "client_ip", "user_agent", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.ShareAccess, 0)
	for rows.Next() {
		var (
			item   model.ShareAccess
			action string
		)
		if err := rows.Scan(&item.ID, &item.ShareToken, &action, &item.ViewNumber, &item.ClientIP, &item.UserAgent, &item.Ctime); err != nil {
			return nil, err
		}
		item.Action = model.AccessLevel(action)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ShareAccessRepo) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	const query = `DELETE FROM share_accesses WHERE ctime < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
