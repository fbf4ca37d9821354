package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/notiq/pkg/log"
	"tableflip.dev/notiq/pkg/model"
)

// Load creates a Persistence backed by diskv under cfg.BasePath().
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		return nil, errors.New("store: config required")
	}
	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, &PersistenceError{Op: "init", Err: err}
	}
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string

	mu      sync.Mutex
	pending []op
}

func (p *persistence) FetchAll(ctx context.Context, kind model.Kind) ([]model.Record, error) {
	keys := make([]string, 0)
	for key := range p.d.KeysPrefix(toKeyPrefix(kind), ctx.Done()) {
		keys = append(keys, key)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)

	out := make([]model.Record, 0, len(keys))
	for _, key := range keys {
		val, err := p.d.Read(key)
		if err != nil {
			return nil, &PersistenceError{Op: "read", Key: key, Err: err}
		}
		r, err := decode(kind, val)
		if err != nil {
			// A single corrupt file should not hide the rest of the data.
			log.L().Named("store").Warnw("skipping unreadable record", "key", key, "error", err)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (p *persistence) Insert(r model.Record) error {
	data, err := encode(r)
	if err != nil {
		return err
	}
	key := toKey(r.RecordKind(), r.RecordID())
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.d.Has(key) || p.stagedWrite(key) {
		return fmt.Errorf("%w: %s", ErrExists, key)
	}
	p.pending = append(p.pending, op{kind: opWrite, key: key, data: data})
	return nil
}

func (p *persistence) Update(r model.Record) error {
	data, err := encode(r)
	if err != nil {
		return err
	}
	key := toKey(r.RecordKind(), r.RecordID())
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, op{kind: opWrite, key: key, data: data})
	return nil
}

func (p *persistence) DeleteWhere(kind model.Kind, match func(model.Record) bool) (int, error) {
	records, err := p.FetchAll(context.Background(), kind)
	if err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, r := range records {
		if match != nil && !match(r) {
			continue
		}
		p.pending = append(p.pending, op{kind: opErase, key: toKey(kind, r.RecordID())})
		n++
	}
	return n, nil
}

func (p *persistence) Save() error {
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, o := range pending {
		switch o.kind {
		case opWrite:
			if err := p.d.Write(o.key, o.data); err != nil {
				return &PersistenceError{Op: "write", Key: o.key, Err: err}
			}
		case opErase:
			if !p.d.Has(o.key) {
				continue
			}
			if err := p.d.Erase(o.key); err != nil {
				return &PersistenceError{Op: "erase", Key: o.key, Err: err}
			}
		}
	}
	return nil
}

func (p *persistence) Discard() {
	p.mu.Lock()
	p.pending = nil
	p.mu.Unlock()
}

func (p *persistence) stagedWrite(key string) bool {
	for _, o := range p.pending {
		if o.key == key && o.kind == opWrite {
			return true
		}
	}
	return false
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) < 2 {
		return &diskv.PathKey{FileName: s}
	}
	return &diskv.PathKey{
		Path:     parts[:1],
		FileName: parts[1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// toKey makes `kind-id`; the kind becomes the directory.
func toKey(kind model.Kind, id string) string {
	return fmt.Sprintf("%s-%s", kind, id)
}

func toKeyPrefix(kind model.Kind) string {
	return string(kind) + "-"
}
