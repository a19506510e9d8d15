// Package kvstore keeps share links in an embedded BadgerDB.
//
// It is meant for single-node deployments. The view quota is consumed inside
// one read-write transaction; badger aborts a commit with ErrConflict when
// another transaction wrote the same key after ours read it, so concurrent
// consumers are serialized by retrying.
package kvstore

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/xxxsen/docshare/internal/model"
	appErr "github.com/xxxsen/docshare/internal/pkg/errors"
)

const (
	sharePrefix = "share/"
	ownerPrefix = "owner/"
)

type ShareStore struct {
	db *badger.DB
}

func Open(dir string) (*ShareStore, error) {
	return open(badger.DefaultOptions(dir).WithLogger(nil))
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*ShareStore, error) {
	return open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func open(opts badger.Options) (*ShareStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &ShareStore{db: db}, nil
}

func (s *ShareStore) Close() error {
	return s.db.Close()
}

func shareKey(token string) []byte {
	return []byte(sharePrefix + token)
}

func ownerIndexPrefix(ownerID string) []byte {
	return []byte(ownerPrefix + url.PathEscape(ownerID) + "/")
}

func ownerKey(ownerID, token string) []byte {
	return append(ownerIndexPrefix(ownerID), token...)
}

func getShare(txn *badger.Txn, token string) (*model.ShareLink, error) {
	item, err := txn.Get(shareKey(token))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var link *model.ShareLink
	err = item.Value(func(val []byte) error {
		decoded, err := decodeShare(val)
		if err != nil {
			return err
		}
		link = decoded
		return nil
	})
	return link, err
}

func putShare(txn *badger.Txn, link *model.ShareLink) error {
	data, err := encodeShare(link)
	if err != nil {
		return err
	}
	return txn.Set(shareKey(link.Token), data)
}

// update runs fn in a read-write transaction, retrying on commit conflicts.
func (s *ShareStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
}

func (s *ShareStore) Create(ctx context.Context, link *model.ShareLink) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(shareKey(link.Token)); err == nil {
			return appErr.ErrConflict
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := putShare(txn, link); err != nil {
			return err
		}
		return txn.Set(ownerKey(link.OwnerID, link.Token), nil)
	})
	if errors.Is(err, badger.ErrConflict) {
		return appErr.ErrConflict
	}
	return err
}

func (s *ShareStore) GetByToken(ctx context.Context, token string) (*model.ShareLink, error) {
	var link *model.ShareLink
	err := s.db.View(func(txn *badger.Txn) error {
		found, err := getShare(txn, token)
		if err != nil {
			return err
		}
		link = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (s *ShareStore) ListByOwner(ctx context.Context, ownerID, documentID string) ([]model.ShareLink, error) {
	items := make([]model.ShareLink, 0)
	prefix := ownerIndexPrefix(ownerID)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			token := strings.TrimPrefix(string(it.Item().Key()), string(prefix))
			link, err := getShare(txn, token)
			if errors.Is(err, appErr.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if documentID != "" && link.DocumentID != documentID {
				continue
			}
			items = append(items, *link)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})
	return items, nil
}

func (s *ShareStore) Revoke(ctx context.Context, ownerID, token string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		link, err := getShare(txn, token)
		if err != nil {
			return err
		}
		if link.OwnerID != ownerID {
			return appErr.ErrNotFound
		}
		if link.IsRevoked() {
			return nil
		}
		link.State = model.ShareStateRevoked
		return putShare(txn, link)
	})
}

func (s *ShareStore) ConsumeView(ctx context.Context, token string, now int64) (int, error) {
	var count int
	err := s.update(ctx, func(txn *badger.Txn) error {
		link, err := getShare(txn, token)
		if err != nil {
			return err
		}
		if err := link.Check(now); err != nil {
			return err
		}
		link.ViewCount++
		if err := putShare(txn, link); err != nil {
			return err
		}
		count = link.ViewCount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
