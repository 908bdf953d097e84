package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lucasmr/atelier/internal/platform/apperr"
	"github.com/lucasmr/atelier/internal/platform/constants"
	"github.com/lucasmr/atelier/internal/platform/sandbox"
)

// FileStore persists one JSON document per locale under the sandboxed data
// directory, treating the three files as a single atomic unit.
//
// # Write Queue
//
// All mutations serialize through one mutex guarding the whole
// read-modify-write cycle. The process is the only writer, so this converts
// the multi-file update into an effectively atomic operation relative to
// other mutations without file locks or a transaction log.
type FileStore struct {
	box     *sandbox.Box
	dataDir string
	locales []string
	log     *slog.Logger

	// mu is the global write-serialization queue.
	mu sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store for the given locales rooted in box.
func NewFileStore(box *sandbox.Box, dataDir string, locales []string, log *slog.Logger) *FileStore {
	return &FileStore{box: box, dataDir: dataDir, locales: locales, log: log}
}

// filePath resolves one locale's document path through the sandbox.
func (s *FileStore) filePath(locale string) (string, error) {
	return s.box.Join(s.dataDir, constants.CatalogFilePrefix+locale+constants.CatalogFileExt)
}

// ReadAll loads the locale documents in parallel.
//
// A missing or unparsable file fails the whole read: a partial catalog view
// is worse than an error for a tool whose core job is keeping the files aligned.
func (s *FileStore) ReadAll(ctx context.Context) (Set, error) {
	set := make(Set, len(s.locales))
	var setMu sync.Mutex

	group, _ := errgroup.WithContext(ctx)
	for _, locale := range s.locales {
		locale := locale
		group.Go(func() error {
			doc, err := s.readOne(locale)
			if err != nil {
				return err
			}
			setMu.Lock()
			set[locale] = doc
			setMu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *FileStore) readOne(locale string) (*Document, error) {
	path, err := s.filePath(locale)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.CatalogReadError(fmt.Errorf("catalog: read %s: %w", filepath.Base(path), err))
	}

	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, apperr.CatalogReadError(fmt.Errorf("catalog: parse %s: %w", filepath.Base(path), err))
	}
	return doc, nil
}

// Update implements the single-writer read-modify-write cycle.
func (s *FileStore) Update(ctx context.Context, mutate func(Set) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.ReadAll(ctx)
	if err != nil {
		return err
	}

	if err := mutate(set); err != nil {
		return err
	}

	return s.writeAll(set)
}

// writeAll persists every locale document atomically.
//
// Each document is first serialized to a temporary sibling file and then
// renamed over the target; rename is atomic on the same filesystem, so a
// concurrent reader or an interrupted process never observes a half-written
// file at the canonical path. All temp files are written before the first
// rename to keep the cross-file inconsistency window minimal.
func (s *FileStore) writeAll(set Set) error {
	type pending struct {
		temp, final string
	}
	staged := make([]pending, 0, len(s.locales))

	cleanup := func() {
		for _, p := range staged {
			_ = os.Remove(p.temp)
		}
	}

	for _, locale := range s.locales {
		doc, ok := set[locale]
		if !ok {
			cleanup()
			return apperr.CatalogWriteError(fmt.Errorf("catalog: locale %q missing from set", locale))
		}

		final, err := s.filePath(locale)
		if err != nil {
			cleanup()
			return err
		}

		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			cleanup()
			return apperr.CatalogWriteError(fmt.Errorf("catalog: marshal %s: %w", locale, err))
		}
		data = append(data, '\n')

		temp, err := writeTemp(final, data)
		if err != nil {
			cleanup()
			return apperr.CatalogWriteError(err)
		}
		staged = append(staged, pending{temp: temp, final: final})
	}

	for i, p := range staged {
		if err := os.Rename(p.temp, p.final); err != nil {
			// Files renamed before the failure stay in place; the remaining
			// temps are removed. The operator is told exactly which locales
			// were persisted.
			for _, rest := range staged[i:] {
				_ = os.Remove(rest.temp)
			}
			s.log.Error("catalog_partial_write",
				slog.Int("renamed", i),
				slog.Int("total", len(staged)),
				slog.Any("error", err),
			)
			return apperr.CatalogWriteError(fmt.Errorf("catalog: rename %s: %w", filepath.Base(p.final), err))
		}
	}

	return nil
}

// writeTemp writes data to a temporary sibling of final and returns its path.
func writeTemp(final string, data []byte) (string, error) {
	dir := filepath.Dir(final)
	base := filepath.Base(final)

	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("catalog: temp for %s: %w", base, err)
	}
	temp := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(temp)
		return "", fmt.Errorf("catalog: write %s: %w", base, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(temp)
		return "", fmt.Errorf("catalog: sync %s: %w", base, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(temp)
		return "", fmt.Errorf("catalog: close %s: %w", base, err)
	}

	// CreateTemp uses 0600; catalog files are read by the static site build.
	if err := os.Chmod(temp, 0o644); err != nil {
		_ = os.Remove(temp)
		return "", fmt.Errorf("catalog: chmod %s: %w", base, err)
	}

	return temp, nil
}
