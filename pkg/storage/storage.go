// Package storage persists uploaded objects as files under a single root directory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Object describes a file written by Save.
type Object struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	// Replaced is true when an existing file was overwritten.
	Replaced bool      `json:"replaced"`
	ModTime  time.Time `json:"mod_time,omitzero"`
}

// System writes and removes objects in the store root.
type System interface {
	// Root returns the directory objects are written to.
	Root() string
	// Policy returns the collision policy applied by Save.
	Policy() CollisionPolicy
	// Save writes the content of r under name, resolving an existing name with the
	// configured collision policy. The returned Object carries the name actually used.
	Save(ctx context.Context, name string, r io.Reader) (*Object, error)
	// Open returns a reader over a stored object. The caller closes it.
	// Returns ErrNotFound if it does not exist.
	Open(ctx context.Context, name string) (io.ReadSeekCloser, *Object, error)
	// Remove deletes the object. Returns ErrNotFound if it does not exist.
	Remove(ctx context.Context, name string) error
}

type filesystem struct {
	root      string
	policy    CollisionPolicy
	maxSuffix int
	logger    *slog.Logger
}

// New creates the root directory if it is missing and returns a filesystem store.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	policy, err := ParseCollisionPolicy(cfg.CollisionPolicy)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory %s: %w", cfg.Root, err)
	}

	l := logger.With("system", "storage")
	l.Info("upload directory ready", "root", cfg.Root, "collision_policy", policy)

	return &filesystem{
		root:      cfg.Root,
		policy:    policy,
		maxSuffix: cfg.MaxSuffix,
		logger:    l,
	}, nil
}

func (f *filesystem) Root() string {
	return f.root
}

func (f *filesystem) Policy() CollisionPolicy {
	return f.policy
}

func (f *filesystem) Save(ctx context.Context, name string, r io.Reader) (*Object, error) {
	if err := validateKey(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, obj, err := f.claim(name)
	if err != nil {
		return nil, err
	}

	n, err := io.Copy(file, r)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(obj.Path)
		return nil, fmt.Errorf("write %s: %w", obj.Name, err)
	}

	obj.SizeBytes = n
	if obj.Replaced {
		f.logger.Warn("existing object overwritten", "name", obj.Name)
	}
	return obj, nil
}

func (f *filesystem) Open(ctx context.Context, name string) (io.ReadSeekCloser, *Object, error) {
	if err := validateKey(name); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	file, err := os.Open(filepath.Join(f.root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("open %s: %w", name, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		file.Close()
		return nil, nil, ErrNotFound
	}

	obj := f.object(name, false)
	obj.SizeBytes = info.Size()
	obj.ModTime = info.ModTime()
	return file, obj, nil
}

func (f *filesystem) Remove(ctx context.Context, name string) error {
	if err := validateKey(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(f.root, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// claim opens the destination for writing according to the collision policy.
func (f *filesystem) claim(name string) (*os.File, *Object, error) {
	switch f.policy {
	case Reject:
		file, err := f.create(name)
		if errors.Is(err, fs.ErrExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrExists, name)
		}
		if err != nil {
			return nil, nil, err
		}
		return file, f.object(name, false), nil

	case Uniquify:
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		for i := 0; i <= f.maxSuffix; i++ {
			candidate := name
			if i > 0 {
				candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
			}
			file, err := f.create(candidate)
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			if err != nil {
				return nil, nil, err
			}
			return file, f.object(candidate, false), nil
		}
		return nil, nil, fmt.Errorf("%w: no free name for %s after %d attempts", ErrExists, name, f.maxSuffix)

	default:
		path := filepath.Join(f.root, name)
		_, statErr := os.Stat(path)
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", name, err)
		}
		return file, f.object(name, statErr == nil), nil
	}
}

func (f *filesystem) create(name string) (*os.File, error) {
	return os.OpenFile(filepath.Join(f.root, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

func (f *filesystem) object(name string, replaced bool) *Object {
	return &Object{
		Name:     name,
		Path:     filepath.Join(f.root, name),
		Replaced: replaced,
	}
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return ErrInvalidKey
	}
	return nil
}
