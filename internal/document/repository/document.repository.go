package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"resumekit/internal/document/model"
	"resumekit/pkg/logger"
	"resumekit/store"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrForbidden = errors.New("document belongs to another user")

	errCorruptIndex = errors.New("corrupt document index")
)

const (
	documentKeyPrefix  = "document:"
	userIndexKeyPrefix = "user_documents:"

	lockStripes = 64
)

func DocumentKey(id string) string { return documentKeyPrefix + id }

func UserIndexKey(ownerID string) string { return userIndexKeyPrefix + ownerID }

// GenerateID builds doc_{owner}_{unixMillis}_{suffix}. The random suffix keeps
// two saves by the same owner in the same millisecond apart.
func GenerateID(ownerID string, now time.Time) string {
	return fmt.Sprintf("doc_%s_%d_%s", ownerID, now.UnixMilli(), uuid.NewString()[:8])
}

// DocumentRepository stores documents and a per-owner id index on a flat
// key-value store. The record is always written before the index entry on save,
// and removed before the index entry on delete, so a crash in between leaves
// either an orphaned record or a stale index entry; List tolerates both.
//
// Index read-modify-writes are serialized per owner inside this process only.
// Several processes sharing one store can still lose an index update.
type DocumentRepository struct {
	Store store.Store
	Now   func() time.Time

	locks [lockStripes]sync.Mutex
}

func NewDocumentRepository(s store.Store) *DocumentRepository {
	return &DocumentRepository{Store: s, Now: time.Now}
}

// Save writes doc under a freshly generated id, appends the id to the owner's
// index and returns it. Any id already set on doc is replaced.
func (r *DocumentRepository) Save(ctx context.Context, doc *model.Document) (string, error) {
	doc.ID = GenerateID(doc.UserID, r.Now())

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	if err := r.Store.Set(ctx, DocumentKey(doc.ID), string(data)); err != nil {
		logger.Sugar.Errorf("Failed to write document %s: %v", doc.ID, err)
		return "", fmt.Errorf("write document %s: %w", doc.ID, err)
	}

	unlock := r.lockOwner(doc.UserID)
	defer unlock()

	ids, err := r.readIndex(ctx, doc.UserID)
	if err != nil {
		logger.Sugar.Errorf("Document %s written but index read failed, record is orphaned: %v", doc.ID, err)
		return "", err
	}
	ids = append(ids, doc.ID)
	if err := r.writeIndex(ctx, doc.UserID, ids); err != nil {
		logger.Sugar.Errorf("Document %s written but index update failed, record is orphaned: %v", doc.ID, err)
		return "", err
	}
	return doc.ID, nil
}

// List returns the owner's documents, most recently updated first. Index entries
// that no longer resolve to a record owned by ownerID are skipped.
func (r *DocumentRepository) List(ctx context.Context, ownerID string) ([]model.Summary, error) {
	ids, err := r.readIndex(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.Summary, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		doc, err := r.load(ctx, id)
		if errors.Is(err, ErrNotFound) {
			logger.Sugar.Debugf("Skipping stale index entry %s for user %s", id, ownerID)
			continue
		}
		if err != nil {
			return nil, err
		}
		if doc.UserID != ownerID {
			logger.Sugar.Warnf("Index of user %s points at document %s owned by %s, skipping", ownerID, id, doc.UserID)
			continue
		}
		summaries = append(summaries, doc.Summary())
	}

	SortByUpdatedDesc(summaries)
	return summaries, nil
}

// Get returns the full record if it exists and belongs to ownerID.
func (r *DocumentRepository) Get(ctx context.Context, ownerID, id string) (*model.Document, error) {
	doc, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.UserID != ownerID {
		return nil, ErrForbidden
	}
	return doc, nil
}

// Delete removes the record and then its index entry. Deleting an id that is
// already gone reports ErrNotFound.
func (r *DocumentRepository) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := r.Get(ctx, ownerID, id); err != nil {
		return err
	}

	if err := r.Store.Delete(ctx, DocumentKey(id)); err != nil {
		logger.Sugar.Errorf("Failed to delete document %s: %v", id, err)
		return fmt.Errorf("delete document %s: %w", id, err)
	}

	unlock := r.lockOwner(ownerID)
	defer unlock()

	ids, err := r.readIndex(ctx, ownerID)
	if errors.Is(err, errCorruptIndex) {
		// The record is already gone; an unreadable index has nothing to remove.
		logger.Sugar.Warnf("Document %s deleted but index for user %s is unreadable, leaving it untouched: %v", id, ownerID, err)
		return nil
	}
	if err != nil {
		logger.Sugar.Errorf("Document %s deleted but index read failed, entry left dangling: %v", id, err)
		return err
	}
	if ids == nil {
		return nil
	}
	kept := ids[:0]
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	if err := r.writeIndex(ctx, ownerID, kept); err != nil {
		logger.Sugar.Errorf("Document %s deleted but index update failed, entry left dangling: %v", id, err)
		return err
	}
	return nil
}

func (r *DocumentRepository) load(ctx context.Context, id string) (*model.Document, error) {
	raw, err := r.Store.Get(ctx, DocumentKey(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to read document %s: %v", id, err)
		return nil, fmt.Errorf("read document %s: %w", id, err)
	}

	var doc model.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		logger.Sugar.Errorf("Document %s is not valid JSON, treating as missing: %v", id, err)
		return nil, ErrNotFound
	}
	return &doc, nil
}

// readIndex returns nil when the owner has no index yet.
func (r *DocumentRepository) readIndex(ctx context.Context, ownerID string) ([]string, error) {
	raw, err := r.Store.Get(ctx, UserIndexKey(ownerID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to read document index for user %s: %v", ownerID, err)
		return nil, fmt.Errorf("read index for %s: %w", ownerID, err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("%w for %s: %v", errCorruptIndex, ownerID, err)
	}
	return ids, nil
}

func (r *DocumentRepository) writeIndex(ctx context.Context, ownerID string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode index for %s: %w", ownerID, err)
	}
	if err := r.Store.Set(ctx, UserIndexKey(ownerID), string(data)); err != nil {
		return fmt.Errorf("write index for %s: %w", ownerID, err)
	}
	return nil
}

func (r *DocumentRepository) lockOwner(ownerID string) func() {
	mu := &r.locks[xxhash.Sum64String(ownerID)%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// SortByUpdatedDesc orders summaries newest first. Ties and unparseable
// timestamps keep their index order; unparseable ones go last.
func SortByUpdatedDesc(summaries []model.Summary) {
	times := make(map[string]time.Time, len(summaries))
	for _, s := range summaries {
		times[s.ID] = ParseTimestamp(s.UpdatedAt)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return times[summaries[i].ID].After(times[summaries[j].ID])
	})
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses the ISO-8601 forms clients send. It returns the zero
// time when nothing matches.
func ParseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
