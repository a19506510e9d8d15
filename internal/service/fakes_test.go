package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/docshare/internal/kvstore"
	"github.com/xxxsen/docshare/internal/model"
	appErr "github.com/xxxsen/docshare/internal/pkg/errors"
)

type fakeDocuments struct {
	docs    map[string]*model.Document
	openErr error
}

func newFakeDocuments(docs ...*model.Document) *fakeDocuments {
	f := &fakeDocuments{docs: make(map[string]*model.Document)}
	for _, doc := range docs {
		f.docs[doc.ID] = doc
	}
	return f
}

func (f *fakeDocuments) Get(_ context.Context, docID string) (*model.Document, error) {
	doc, ok := f.docs[docID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocuments) Open(_ context.Context, doc *model.Document) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	if doc.HasFile() {
		return io.NopCloser(strings.NewReader("file:" + doc.FileKey)), nil
	}
	return io.NopCloser(strings.NewReader(doc.Content)), nil
}

type fakeAccessLog struct {
	mu    sync.Mutex
	items []model.ShareAccess
}

func (f *fakeAccessLog) Create(_ context.Context, access *model.ShareAccess) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, *access)
	return nil
}

func (f *fakeAccessLog) ListByToken(_ context.Context, token string, limit, offset uint) ([]model.ShareAccess, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ShareAccess
	for _, item := range f.items {
		if item.ShareToken == token {
			out = append(out, item)
		}
	}
	if offset >= uint(len(out)) {
		return []model.ShareAccess{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < uint(len(out)) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAccessLog) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fixture struct {
	store     *kvstore.ShareStore
	documents *fakeDocuments
	accesses  *fakeAccessLog
	shares    *ShareService
	gate      *Gatekeeper
	recipient *RecipientService
	clock     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := kvstore.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{
		store: store,
		documents: newFakeDocuments(
			&model.Document{ID: "doc-1", UserID: "owner-1", Title: "Quarterly Plan", Content: "# plan", OwnerName: "Alice"},
			&model.Document{ID: "doc-2", UserID: "owner-1", Title: "Scan", FileKey: "u/scan.pdf", FileName: "scan.pdf", MimeType: "application/pdf", Size: 9},
			&model.Document{ID: "doc-3", UserID: "owner-2", Title: "Other"},
		),
		accesses: &fakeAccessLog{},
		clock:    time.Unix(1_700_000_000, 0),
	}
	now := func() time.Time { return f.clock }
	f.shares = NewShareService(store, f.documents, f.accesses, ShareOptions{PublicBaseURL: "https://docs.example.com/"})
	f.shares.now = now
	f.gate = NewGatekeeper(store, f.documents, f.accesses, nil)
	f.gate.now = now
	f.recipient = NewRecipientService(f.gate, f.documents)
	return f
}

func (f *fixture) create(t *testing.T, in CreateShareInput) *CreatedShare {
	t.Helper()
	if in.OwnerID == "" {
		in.OwnerID = "owner-1"
	}
	if in.DocumentID == "" {
		in.DocumentID = "doc-1"
	}
	if in.AccessLevel == "" {
		in.AccessLevel = model.AccessLevelView
	}
	if in.ExpiresInDays == 0 {
		in.ExpiresInDays = 1
	}
	created, err := f.shares.Create(context.Background(), in)
	require.NoError(t, err)
	return created
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}
