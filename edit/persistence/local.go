package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/retouch-app/retouch/edit/domain"
)

var _ domain.RecordStore = (*LocalStore)(nil)

// LocalStore is the durable on-disk strategy, backed by badger. Image
// bytes and the metadata sidecar are two keys committed in a single
// transaction, so readers never observe a torn record. Entries carry a
// badger TTL matching the retention window, which reclaims storage
// without a sweeper; logical expiry is still enforced upstream.
type LocalStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewLocalStore opens (or creates) a badger database under dir.
func NewLocalStore(dir string, ttl time.Duration) (*LocalStore, error) {
	if ttl <= 0 {
		ttl = domain.DefaultRetention
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store at %s: %w", dir, domain.ErrStorage)
	}

	return &LocalStore{db: db, ttl: ttl}, nil
}

func (s *LocalStore) Put(ctx context.Context, token string, data []byte, mime, originalName string) (*domain.Handle, error) {
	if token == "" {
		return nil, fmt.Errorf("put: token cannot be empty: %w", domain.ErrInvalidInput)
	}

	mime = domain.NormalizeMime(mime)
	createdAt := time.Now()

	if data == nil {
		existing, err := s.Get(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("put: metadata-only write for unknown token: %w", domain.ErrInvalidInput)
		}
		createdAt = existing.CreatedAt
	}

	meta, err := encodeMetadata(metadata{
		Mime:         mime,
		OriginalName: originalName,
		CreatedAt:    createdAt.UnixMilli(),
	})
	if err != nil {
		return nil, err
	}

	imgKey := imageKey(token, mime)

	err = s.db.Update(func(txn *badger.Txn) error {
		if data != nil {
			entry := badger.NewEntry([]byte(imgKey), data).WithTTL(s.ttl)
			if err := txn.SetEntry(entry); err != nil {
				return fmt.Errorf("failed to write image bytes: %w", err)
			}
		}
		entry := badger.NewEntry([]byte(metaKey(token)), meta).WithTTL(s.ttl)
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("failed to write metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("put %s: %v: %w", token, err, domain.ErrStorage)
	}

	return &domain.Handle{ImageKey: imgKey, MetaKey: metaKey(token)}, nil
}

func (s *LocalStore) Get(_ context.Context, token string) (*domain.Record, error) {
	var (
		img  []byte
		meta metadata
	)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(tokenPrefix(token))
		it := txn.NewIterator(opts)
		defer it.Close()

		foundMeta := false
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())

			val, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", key, err)
			}

			if isMetaKey(key) {
				m, err := decodeMetadata(val)
				if err != nil {
					return err
				}
				meta = m
				foundMeta = true
			} else {
				img = val
			}
		}

		// A record is only complete with both halves; anything else
		// fails closed.
		if !foundMeta || img == nil {
			return badger.ErrKeyNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("get %s: %w", token, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %v: %w", token, err, domain.ErrStorage)
	}

	return &domain.Record{
		Bytes:        img,
		Mime:         domain.NormalizeMime(meta.Mime),
		OriginalName: meta.OriginalName,
		CreatedAt:    time.UnixMilli(meta.CreatedAt),
	}, nil
}

func (s *LocalStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
