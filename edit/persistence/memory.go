package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/retouch-app/retouch/edit/domain"
)

var _ domain.RecordStore = (*MemoryStore)(nil)

// memoryEntry keeps bytes and metadata together; the single map write
// makes Put trivially atomic for readers.
type memoryEntry struct {
	data         []byte
	mime         string
	originalName string
	createdAt    time.Time
}

// MemoryStore is the transient strategy: records live in an expiring
// in-process map and are lost on restart. Intended for local
// development and tests. The TTL doubles as physical reclamation, so
// aged records disappear without a sweeper.
type MemoryStore struct {
	entries *expirable.LRU[string, memoryEntry]
}

// NewMemoryStore creates a MemoryStore whose entries expire after ttl.
// A non-positive ttl falls back to the default retention window.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = domain.DefaultRetention
	}
	return &MemoryStore{
		entries: expirable.NewLRU[string, memoryEntry](0, nil, ttl),
	}
}

// Put stores an independent copy of data under token. Nil data rewrites
// metadata for an existing record only.
func (s *MemoryStore) Put(_ context.Context, token string, data []byte, mime, originalName string) (*domain.Handle, error) {
	if token == "" {
		return nil, fmt.Errorf("put: token cannot be empty: %w", domain.ErrInvalidInput)
	}

	mime = domain.NormalizeMime(mime)

	if data == nil {
		existing, ok := s.entries.Get(token)
		if !ok {
			return nil, fmt.Errorf("put: metadata-only write for unknown token: %w", domain.ErrInvalidInput)
		}
		existing.mime = mime
		existing.originalName = originalName
		s.entries.Add(token, existing)
		return handleFor(token, mime), nil
	}

	s.entries.Add(token, memoryEntry{
		data:         domain.CloneBytes(data),
		mime:         mime,
		originalName: originalName,
		createdAt:    time.Now(),
	})

	return handleFor(token, mime), nil
}

// Get returns a copy of the stored record; the caller may mutate the
// returned bytes freely.
func (s *MemoryStore) Get(_ context.Context, token string) (*domain.Record, error) {
	entry, ok := s.entries.Get(token)
	if !ok {
		return nil, fmt.Errorf("get %s: %w", token, domain.ErrNotFound)
	}

	return &domain.Record{
		Bytes:        domain.CloneBytes(entry.data),
		Mime:         entry.mime,
		OriginalName: entry.originalName,
		CreatedAt:    entry.createdAt,
	}, nil
}

// Close is a no-op; the map is garbage collected with the process.
func (s *MemoryStore) Close() error {
	return nil
}

func handleFor(token, mime string) *domain.Handle {
	return &domain.Handle{
		ImageKey: imageKey(token, mime),
		MetaKey:  metaKey(token),
	}
}
