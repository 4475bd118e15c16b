// Package store owns every persisted key: the capsule index, capsule records and
// per-capsule progress. Read paths never fail; corrupt or missing values degrade to
// empty defaults. Write paths keep the index in step with the records.
package store

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/kv"
	"github.com/hpungsan/pocket/internal/logger"
)

// Persisted key layout.
const (
	IndexKey       = "pc_capsules_index"
	CapsulePrefix  = "pc_capsule_"
	ProgressPrefix = "pc_progress_"
)

// CapsuleKey returns the record key for id.
func CapsuleKey(id string) string { return CapsulePrefix + id }

// ProgressKey returns the progress key for id.
func ProgressKey(id string) string { return ProgressPrefix + id }

// Store is the capsule store over a key-value backend.
type Store struct {
	kv    kv.Backend
	log   *logger.Logger
	now   func() time.Time
	newID func() string

	// mu serializes read-modify-write cycles on the index.
	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for read fallbacks and write failures.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New creates a Store over backend.
func New(backend kv.Backend, opts ...Option) *Store {
	s := &Store{
		kv:    backend,
		log:   logger.Nop(),
		now:   time.Now,
		newID: NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "store")
	return s
}

// NewID returns a new ULID: a millisecond timestamp followed by random entropy.
func NewID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// ListIndex returns the capsule summaries, most recently created first.
// A missing or malformed index yields an empty slice. Malformed entries and entries
// without an id (including null) are skipped.
func (s *Store) ListIndex() []capsule.IndexEntry {
	raw, ok := s.read(IndexKey)
	if !ok {
		return []capsule.IndexEntry{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Debug("index is not a JSON array, using empty index", "key", IndexKey, "error", err)
		return []capsule.IndexEntry{}
	}

	entries := make([]capsule.IndexEntry, 0, len(items))
	for i, item := range items {
		var e capsule.IndexEntry
		if err := json.Unmarshal(item, &e); err != nil {
			s.log.Debug("skipping malformed index entry", "position", i, "error", err)
			continue
		}
		if e.ID == "" {
			s.log.Debug("skipping index entry without id", "position", i)
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// SaveCapsule writes rec under id (a new id when empty) and upserts its index entry.
// An existing entry keeps its position; a new one goes to the front.
// UpdatedAt is stamped to now; CreatedAt keeps the caller's value, then the stored
// record's value, then now. rec itself is not modified.
func (s *Store) SaveCapsule(rec *capsule.Record, id string) (string, error) {
	if rec == nil {
		return "", errors.NewInvalidRequest("capsule record is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = s.newID()
	}

	stamped := rec.Clone()
	ts := capsule.FormatTimestamp(s.now())
	if stamped.CreatedAt == "" {
		if prev, ok := s.loadCapsule(id); ok && prev.CreatedAt != "" {
			stamped.CreatedAt = prev.CreatedAt
		} else {
			stamped.CreatedAt = ts
		}
	}
	stamped.UpdatedAt = ts

	payload, err := json.Marshal(capsule.NewEnvelope(stamped))
	if err != nil {
		return "", errors.NewInternal(err)
	}

	entry := stamped.ToIndexEntry(id)
	index := upsertEntry(s.ListIndex(), entry)
	indexPayload, err := json.Marshal(index)
	if err != nil {
		return "", errors.NewInternal(err)
	}

	if err := s.write(
		kv.Put(CapsuleKey(id), string(payload)),
		kv.Put(IndexKey, string(indexPayload)),
	); err != nil {
		return "", err
	}
	return id, nil
}

// LoadCapsule returns the record stored under id. It reports false when the record is
// missing, unparsable, or tagged with a different schema.
func (s *Store) LoadCapsule(id string) (*capsule.Record, bool) {
	return s.loadCapsule(id)
}

func (s *Store) loadCapsule(id string) (*capsule.Record, bool) {
	key := CapsuleKey(id)
	raw, ok := s.read(key)
	if !ok {
		return nil, false
	}

	env, err := capsule.DecodeEnvelope([]byte(raw))
	if err != nil {
		s.log.Debug("capsule record is not valid JSON", "key", key, "error", err)
		return nil, false
	}
	if env.Schema != capsule.Schema {
		s.log.Debug("capsule record has a foreign schema", "key", key, "schema", env.Schema)
		return nil, false
	}
	if env.Capsule == nil {
		s.log.Debug("capsule record has no capsule", "key", key)
		return nil, false
	}
	return env.Capsule, true
}

// DeleteCapsule removes the record, its index entry and its progress.
// Deleting an unknown id is a no-op.
func (s *Store) DeleteCapsule(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.ListIndex()
	kept := make([]capsule.IndexEntry, 0, len(index))
	for _, e := range index {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	indexPayload, err := json.Marshal(kept)
	if err != nil {
		return errors.NewInternal(err)
	}

	return s.write(
		kv.Del(CapsuleKey(id)),
		kv.Put(IndexKey, string(indexPayload)),
		kv.Del(ProgressKey(id)),
	)
}

// GetProgress returns the stored progress for id, or the default when it is missing
// or corrupt.
func (s *Store) GetProgress(id string) capsule.Progress {
	key := ProgressKey(id)
	raw, ok := s.read(key)
	if !ok {
		return capsule.DefaultProgress()
	}

	var p capsule.Progress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.log.Debug("progress is malformed, using default", "key", key, "error", err)
		return capsule.DefaultProgress()
	}
	return p.Normalize()
}

// SaveProgress overwrites the progress for id.
func (s *Store) SaveProgress(id string, p capsule.Progress) error {
	payload, err := json.Marshal(p.Normalize())
	if err != nil {
		return errors.NewInternal(err)
	}
	return s.write(kv.Put(ProgressKey(id), string(payload)))
}

// ExportCapsuleJSON is the method form of ExportCapsuleJSON.
func (s *Store) ExportCapsuleJSON(rec *capsule.Record) (string, error) {
	return ExportCapsuleJSON(rec)
}

// ExportCapsuleJSON renders rec as the pretty-printed export envelope.
func ExportCapsuleJSON(rec *capsule.Record) (string, error) {
	data, err := capsule.MarshalExport(rec)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return string(data), nil
}

// ValidateImported reports whether candidate is an importable export envelope.
func (s *Store) ValidateImported(candidate []byte) bool {
	return capsule.ValidateImported(candidate)
}

// ImportCapsule stores a validated export envelope under a fresh id and puts its
// index entry at the front. Any id carried by the payload is ignored.
func (s *Store) ImportCapsule(candidate []byte) (string, error) {
	env, err := capsule.DecodeEnvelope(candidate)
	if err != nil {
		return "", errors.NewInvalidSchema(capsule.DecodeFailure(err))
	}
	if reason := capsule.RejectReason(env); reason != "" {
		return "", errors.NewInvalidSchema(reason)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, candidate); err != nil {
		return "", errors.NewInvalidSchema("payload is not valid JSON")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	entry := env.Capsule.ToIndexEntry(id)
	entry.UpdatedAt = capsule.FormatTimestamp(s.now())

	index := append([]capsule.IndexEntry{entry}, s.ListIndex()...)
	indexPayload, err := json.Marshal(index)
	if err != nil {
		return "", errors.NewInternal(err)
	}

	if err := s.write(
		kv.Put(CapsuleKey(id), compact.String()),
		kv.Put(IndexKey, string(indexPayload)),
	); err != nil {
		return "", err
	}
	s.log.Debug("imported capsule", "id", id, "title", entry.Title)
	return id, nil
}

// read returns the raw value under key. Backend errors count as absent.
func (s *Store) read(key string) (string, bool) {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		s.log.Debug("backend read failed, treating as absent", "key", key, "error", err)
		return "", false
	}
	return raw, ok
}

// write applies ops as one batch when the backend supports it, otherwise in order.
func (s *Store) write(ops ...kv.Op) error {
	if b, ok := s.kv.(kv.Batcher); ok {
		if err := b.Apply(ops); err != nil {
			return errors.NewWriteFailed(opKeys(ops), err)
		}
		return nil
	}

	for _, op := range ops {
		var err error
		if op.Value == nil {
			err = s.kv.Remove(op.Key)
		} else {
			err = s.kv.Set(op.Key, *op.Value)
		}
		if err != nil {
			return errors.NewWriteFailed(op.Key, err)
		}
	}
	return nil
}

func opKeys(ops []kv.Op) string {
	keys := make([]string, len(ops))
	for i, op := range ops {
		keys[i] = op.Key
	}
	return strings.Join(keys, ", ")
}

func upsertEntry(index []capsule.IndexEntry, entry capsule.IndexEntry) []capsule.IndexEntry {
	for i := range index {
		if index[i].ID == entry.ID {
			index[i].Title = entry.Title
			index[i].Subject = entry.Subject
			index[i].Level = entry.Level
			index[i].UpdatedAt = entry.UpdatedAt
			return index
		}
	}
	return append([]capsule.IndexEntry{entry}, index...)
}
