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

const (
	DocumentStateNormal  = 1
	DocumentStateDeleted = 2
)

// DocumentRepo reads documents owned by the surrounding product.
type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	data := map[string]interface{}{
		"id":        doc.ID,
		"user_id":   doc.UserID,
		"title":     doc.Title,
		"content":   doc.Content,
		"file_key":  doc.FileKey,
		"file_name": doc.FileName,
		"mime_type": doc.MimeType,
		"size":      doc.Size,
		"state":     doc.State,
		"ctime":     doc.Ctime,
		"mtime":     doc.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil && dbutil.IsConflict(err) {
		return appErr.ErrConflict
	}
	return err
}

// GetByID returns a live document together with its owner's display name.
func (r *DocumentRepo) GetByID(ctx context.Context, docID string) (*model.Document, error) {
	const query = `
		SELECT d.id, d.user_id, d.title, d.content, d.file_key, d.file_name, d.mime_type, d.size,
			d.state, d.ctime, d.mtime, COALESCE(NULLIF(u.display_name, ''), u.email, '') AS owner_name
		FROM documents d
		LEFT JOIN users u ON u.id = d.user_id
		WHERE d.id = $1 AND d.state = $2
	`
	var doc model.Document
	err := r.db.QueryRowContext(ctx, query, docID, DocumentStateNormal).Scan(
		&doc.ID, &doc.UserID, &doc.Title, &doc.Content, &doc.FileKey, &doc.FileName, &doc.MimeType, &doc.Size,
		&doc.State, &doc.Ctime, &doc.Mtime, &doc.OwnerName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
