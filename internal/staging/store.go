// Package staging holds transient image payloads between the chat endpoint
// and the image-analysis tool.
//
// The agent capability only carries a textual instruction channel, so image
// bytes are sideloaded here and retrieved by the tool independently. Entries
// are keyed by a per-request identifier that travels in the request context
// (NewContext/FromContext), so concurrent requests carrying images cannot
// overwrite or discard each other's payloads.
package staging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/opencare/medagent/internal/log"
)

type ctxKey struct{}

// NewContext returns a copy of ctx carrying the staging key for the current
// request. Tools retrieve it with FromContext.
func NewContext(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ctxKey{}, key)
}

// FromContext extracts the staging key threaded through the tool invocation
// context. ok is false when the request staged no image.
func FromContext(ctx context.Context) (key string, ok bool) {
	key, ok = ctx.Value(ctxKey{}).(string)
	return key, ok
}

// Store is a concurrent-safe staging area for request-scoped image bytes.
// Payloads are written to per-key files under a private temporary directory
// and removed when taken or discarded.
type Store struct {
	dir    string
	logger log.Logger

	mu    sync.Mutex
	files map[string]string // key -> file path
}

// NewStore creates a staging store backed by a fresh temporary directory.
func NewStore(logger log.Logger) (*Store, error) {
	if logger == nil {
		return nil, fmt.Errorf("staging: logger is required")
	}

	dir, err := os.MkdirTemp("", "medagent-images-")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	return &Store{
		dir:    dir,
		logger: logger,
		files:  make(map[string]string),
	}, nil
}

// Put stages data under key, replacing any previous payload for that key.
func (s *Store) Put(key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("staging: key is empty")
	}

	path := filepath.Join(s.dir, key+".bin")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("staging image: %w", err)
	}

	s.mu.Lock()
	s.files[key] = path
	s.mu.Unlock()

	s.logger.Debug("image staged", "key", key, "bytes", len(data))
	return nil
}

// Take reads and removes the payload staged under key.
// ok is false when nothing is staged for the key.
func (s *Store) Take(key string) (data []byte, ok bool) {
	s.mu.Lock()
	path, ok := s.files[key]
	if ok {
		delete(s.files, key)
	}
	s.mu.Unlock()

	if !ok {
		return nil, false
	}

	data, err := os.ReadFile(path)
	_ = os.Remove(path)
	if err != nil {
		s.logger.Warn("reading staged image", "key", key, "error", err)
		return nil, false
	}

	s.logger.Debug("image taken", "key", key, "bytes", len(data))
	return data, true
}

// Discard removes the payload staged under key, if any.
// Safe to call after Take; discarding an absent key is a no-op.
func (s *Store) Discard(key string) {
	s.mu.Lock()
	path, ok := s.files[key]
	if ok {
		delete(s.files, key)
	}
	s.mu.Unlock()

	if ok {
		_ = os.Remove(path)
		s.logger.Debug("image discarded", "key", key)
	}
}

// Len returns the number of currently staged payloads.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Close removes the staging directory and all remaining payloads.
func (s *Store) Close() error {
	s.mu.Lock()
	s.files = make(map[string]string)
	s.mu.Unlock()
	return os.RemoveAll(s.dir)
}
