package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xxxsen/docshare/internal/filestore"
	"github.com/xxxsen/docshare/internal/model"
	"github.com/xxxsen/docshare/internal/repo"
)

// DocumentCatalog resolves documents from the product database and streams
// their stored files from the configured file store.
type DocumentCatalog struct {
	docs  *repo.DocumentRepo
	files filestore.Store
}

func NewDocumentCatalog(docs *repo.DocumentRepo, files filestore.Store) *DocumentCatalog {
	return &DocumentCatalog{docs: docs, files: files}
}

func (c *DocumentCatalog) Get(ctx context.Context, docID string) (*model.Document, error) {
	return c.docs.GetByID(ctx, docID)
}

// Open streams the stored file of doc, or its text when it has no file.
func (c *DocumentCatalog) Open(ctx context.Context, doc *model.Document) (io.ReadCloser, error) {
	if !doc.HasFile() {
		return io.NopCloser(strings.NewReader(doc.Content)), nil
	}
	if c.files == nil {
		return nil, fmt.Errorf("document %s has a stored file but no file store is configured", doc.ID)
	}
	return c.files.Open(ctx, doc.FileKey)
}
