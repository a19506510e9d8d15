package service

import (
	"context"
	"io"

	"github.com/xxxsen/docshare/internal/model"
)

// ShareStore persists share links. ConsumeView must increment view_count
// atomically, refusing once the link is revoked, expired or exhausted.
type ShareStore interface {
	Create(ctx context.Context, share *model.ShareLink) error
	GetByToken(ctx context.Context, token string) (*model.ShareLink, error)
	ListByOwner(ctx context.Context, ownerID, documentID string) ([]model.ShareLink, error)
	Revoke(ctx context.Context, ownerID, token string) error
	ConsumeView(ctx context.Context, token string, now int64) (int, error)
}

type AccessLog interface {
	Create(ctx context.Context, access *model.ShareAccess) error
	ListByToken(ctx context.Context, token string, limit, offset uint) ([]model.ShareAccess, error)
}

// Documents is the view of the document product this service needs.
type Documents interface {
	Get(ctx context.Context, docID string) (*model.Document, error)
	Open(ctx context.Context, doc *model.Document) (io.ReadCloser, error)
}
