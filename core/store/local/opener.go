package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"giftlist-tools/core/environment"
	"giftlist-tools/core/store"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"
)

type database struct {
	db *pebble.DB
	mu sync.Mutex
}

// Opener opens tables stored under dir, one pebble database per environment.
// Credential strategies are ignored.
type Opener struct {
	dir    string
	logger *zap.Logger

	mu  sync.Mutex
	dbs map[string]*database
}

var _ environment.Opener = (*Opener)(nil)

// NewOpener creates an opener rooted at dir.
func NewOpener(dir string, logger *zap.Logger) *Opener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Opener{dir: dir, logger: logger, dbs: make(map[string]*database)}
}

// Open returns a handle on req.Table in the environment's database.
func (o *Opener) Open(ctx context.Context, req environment.Request) (store.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := req.Environment.Name
	if name == "" {
		name = "default"
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	d, ok := o.dbs[name]
	if !ok {
		path := filepath.Join(o.dir, name)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		db, err := pebble.Open(filepath.Clean(path), &pebble.Options{})
		if err != nil {
			return nil, fmt.Errorf("pebble open: %w", err)
		}
		o.logger.Info("Opened local store", zap.String("environment", name), zap.String("path", path))
		d = &database{db: db}
		o.dbs[name] = d
	}

	return NewTable(d.db, &d.mu, req.Table, req.Schema), nil
}

// Close closes every database opened so far.
func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var firstErr error
	for name, d := range o.dbs {
		if err := d.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", name, err)
		}
		delete(o.dbs, name)
	}
	return firstErr
}
