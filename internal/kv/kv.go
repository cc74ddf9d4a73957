// Package kv holds the local record store that every triage store persists
// through: a byte-level Backend port plus Records, which adds a key namespace
// and JSON encoding on top of it.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ajramos/inboxpilot/internal/metrics"
	"go.uber.org/zap"
)

// DefaultNamespace prefixes every record key
const DefaultNamespace = "email-ext"

// ErrUnavailable is returned by writes when no persistence medium is configured
var ErrUnavailable = errors.New("record store unavailable")

// Backend is the persistence medium behind Records
type Backend interface {
	// Load returns the stored bytes and whether the key exists
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Records reads and writes JSON values under a namespace.
// A nil backend behaves as an environment without storage: reads are empty
// and writes return ErrUnavailable.
type Records struct {
	backend   Backend
	namespace string
	logger    *zap.Logger
}

// NewRecords creates a record store over backend
func NewRecords(backend Backend, namespace string, logger *zap.Logger) *Records {
	if strings.TrimSpace(namespace) == "" {
		namespace = DefaultNamespace
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Records{backend: backend, namespace: namespace, logger: logger}
}

// Key returns the fully qualified key for name
func (r *Records) Key(name string) string {
	return r.namespace + "-" + name
}

// Available reports whether a backend is configured
func (r *Records) Available() bool {
	return r != nil && r.backend != nil
}

// Get decodes the record into out. It returns false, leaving out untouched,
// when the record is absent, the backend is missing or failing, or the
// stored value is not valid JSON for out.
func (r *Records) Get(ctx context.Context, name string, out any) bool {
	if !r.Available() {
		return false
	}
	key := r.Key(name)
	data, ok, err := r.backend.Load(ctx, key)
	if err != nil {
		metrics.IncrementStoreError("load")
		r.logger.Warn("record load failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok || len(data) == 0 {
		return false
	}
	dst := reflect.ValueOf(out)
	if dst.Kind() != reflect.Pointer || dst.IsNil() {
		r.logger.Error("record output must be a non-nil pointer", zap.String("key", key))
		return false
	}
	// decode into a scratch value so a malformed record cannot half-fill out
	scratch := reflect.New(dst.Elem().Type())
	if err := json.Unmarshal(data, scratch.Interface()); err != nil {
		metrics.IncrementStoreError("decode")
		r.logger.Warn("record is malformed, treating as empty", zap.String("key", key), zap.Error(err))
		return false
	}
	dst.Elem().Set(scratch.Elem())
	return true
}

// Set encodes v and stores it under name
func (r *Records) Set(ctx context.Context, name string, v any) error {
	if !r.Available() {
		return ErrUnavailable
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	key := r.Key(name)
	if err := r.backend.Save(ctx, key, data); err != nil {
		metrics.IncrementStoreError("save")
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Delete removes the record under name
func (r *Records) Delete(ctx context.Context, name string) error {
	if !r.Available() {
		return ErrUnavailable
	}
	key := r.Key(name)
	if err := r.backend.Delete(ctx, key); err != nil {
		metrics.IncrementStoreError("delete")
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
