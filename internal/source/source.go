// Package source reads raw movie records from a data store.
//
// Each Source knows how to identify itself (the cache key), how to cheaply
// fingerprint its current contents (the cache validator) and how to read
// every record in one synchronous pass.
package source

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"moviedash/pkg/models"
)

// ErrSourceUnavailable marks failures to open or read a data source.
var ErrSourceUnavailable = errors.New("source unavailable")

// Error carries the source identity and failing operation of a read failure.
// It matches ErrSourceUnavailable with errors.Is.
type Error struct {
	Source string
	Op     string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrSourceUnavailable, e.Op, e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrSourceUnavailable }

func unavailable(src, op string, err error) error {
	return &Error{Source: src, Op: op, Err: err}
}

type Source interface {
	// Identity names the source; it is stable across loads.
	Identity() string
	// Fingerprint summarizes the current content so a cached table can be
	// reused while the content is unchanged.
	Fingerprint(ctx context.Context) (string, error)
	// Records reads every raw record in source order.
	Records(ctx context.Context) ([]models.RawRecord, error)
}

// fileStamp is the stat data that decides whether a file must be rehashed.
type fileStamp struct {
	exists  bool
	size    int64
	modTime time.Time
}

// fingerprinter memoizes fileFingerprint until a file's size or mtime moves.
type fingerprinter struct {
	mu     sync.Mutex
	stamps []fileStamp
	sum    string
}

func (f *fingerprinter) fingerprint(paths ...string) (string, error) {
	stamps := make([]fileStamp, len(paths))
	for i, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			if i > 0 && errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", err
		}
		stamps[i] = fileStamp{exists: true, size: fi.Size(), modTime: fi.ModTime()}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sum != "" && sameStamps(f.stamps, stamps) {
		return f.sum, nil
	}
	sum, err := fileFingerprint(paths...)
	if err != nil {
		return "", err
	}
	f.stamps, f.sum = stamps, sum
	return sum, nil
}

func sameStamps(a, b []fileStamp) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].exists != b[i].exists || a[i].size != b[i].size || !a[i].modTime.Equal(b[i].modTime) {
			return false
		}
	}
	return true
}

// fileFingerprint hashes the given files in order. Missing optional files
// (such as a sqlite WAL) are skipped; the first path must exist.
func fileFingerprint(paths ...string) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	for i, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			if i > 0 && errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", err
		}
		_, err = io.Copy(h, f)
		_ = f.Close()
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// New returns the source adapter for kind ("sqlite" or "csv").
func New(kind, path, table string) (Source, error) {
	switch kind {
	case "sqlite", "":
		return NewSQLite(path, table), nil
	case "csv":
		return NewCSV(path), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", kind)
	}
}
