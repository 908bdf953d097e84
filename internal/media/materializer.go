package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lucasmr/atelier/internal/platform/apperr"
	"github.com/lucasmr/atelier/internal/platform/constants"
	"github.com/lucasmr/atelier/internal/platform/imagery"
	"github.com/lucasmr/atelier/internal/platform/sandbox"
	"github.com/lucasmr/atelier/internal/platform/validate"
)

// Config tunes image processing and the asset tree layout.
type Config struct {
	// AssetsDir is the gallery tree root, relative to the sandbox root.
	AssetsDir string

	// MaxGalleryWidth bounds gallery image width (no enlarging).
	MaxGalleryWidth int

	// ThumbWidth/ThumbHeight are the fixed thumbnail target dimensions.
	ThumbWidth  int
	ThumbHeight int

	// Encode selects the output format/quality for every processed image.
	Encode imagery.Options
}

// Result carries the canonical root-relative paths of materialized media.
type Result struct {
	Thumbnail string
	Gallery   []string
}

// Materializer turns a media plan plus raw uploads into files on disk.
//
// It owns the asset files; catalog records own the paths referencing them.
// Materialization runs to completion (or fails) before any catalog write, so
// a persisted record never points at a file that was not written.
type Materializer struct {
	box *sandbox.Box
	cfg Config
	log *slog.Logger
}

// NewMaterializer wires the materializer against the sandbox.
func NewMaterializer(box *sandbox.Box, cfg Config, log *slog.Logger) *Materializer {
	return &Materializer{box: box, cfg: cfg, log: log}
}

// Materialize processes the whole plan for one project.
//
// currentThumbnail is the record's existing thumbnail path on update (empty on
// create); the materializer may overwrite that one file in place, but never
// any other existing file.
//
// New gallery images are decoded and resized concurrently, while name
// allocation stays sequential so N uploads into an empty folder get
// consecutive numbers in plan order.
func (m *Materializer) Materialize(ctx context.Context, plan *Plan, uploads Uploads, assetFolder, currentThumbnail string) (*Result, error) {
	if assetFolder == constants.ThumbnailsDirName {
		return nil, validate.RequiredError("assetFolder", `The name "thumbnails" is reserved`)
	}

	processed, err := m.processGallery(ctx, plan.Gallery, uploads)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	// Sequential pass: existing refs verified, new buffers written under
	// collision-avoiding numeric names.
	next := 1
	for i, entry := range plan.Gallery {
		if entry.Kind == KindExisting {
			rel, err := m.verifyExisting(entry.Path)
			if err != nil {
				return nil, err
			}
			result.Gallery = append(result.Gallery, rel)
			continue
		}

		rel, used, err := m.writeSequenced(assetFolder, processed[i], next)
		if err != nil {
			return nil, err
		}
		next = used + 1
		result.Gallery = append(result.Gallery, rel)
	}

	thumb, err := m.materializeThumbnail(plan, uploads, assetFolder, currentThumbnail)
	if err != nil {
		return nil, err
	}
	result.Thumbnail = thumb

	return result, nil
}

// processGallery decodes, resizes and encodes every new gallery upload in
// parallel, returning per-entry encoded buffers (nil for existing entries).
func (m *Materializer) processGallery(ctx context.Context, entries []PlanEntry, uploads Uploads) ([][]byte, error) {
	processed := make([][]byte, len(entries))

	// Presence of every referenced upload is checked before any goroutine
	// starts, so a failure here has no in-flight work to abandon.
	for i, entry := range entries {
		if entry.Kind != KindNew {
			continue
		}
		if _, ok := uploads[entry.FileID]; !ok {
			return nil, validate.RequiredError(
				fmt.Sprintf("galleryPlan[%d]", i),
				fmt.Sprintf("No uploaded file matches id %q", entry.FileID),
			)
		}
	}

	group, _ := errgroup.WithContext(ctx)
	for i, entry := range entries {
		i := i
		if entry.Kind != KindNew {
			continue
		}
		upload := uploads[entry.FileID]

		group.Go(func() error {
			img, err := imagery.Decode(bytes.NewReader(upload.Data))
			if err != nil {
				return apperr.ImageProcessingFailed(fmt.Errorf("%s: %w", upload.OriginalName, err))
			}

			var buf bytes.Buffer
			resized := imagery.FitWidth(img, m.cfg.MaxGalleryWidth)
			if err := imagery.Encode(&buf, resized, m.cfg.Encode); err != nil {
				return apperr.ImageProcessingFailed(fmt.Errorf("%s: %w", upload.OriginalName, err))
			}

			processed[i] = buf.Bytes()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return processed, nil
}

// resolveAsset resolves a root-relative asset reference and requires it to
// sit inside the assets tree. The sandbox alone is not enough here: the root
// also holds the catalog data files, and an asset reference must never be
// able to claim or delete those.
func (m *Materializer) resolveAsset(path string) (string, error) {
	abs, err := m.box.Resolve(path)
	if err != nil {
		return "", err
	}
	assetsAbs, err := m.box.Join(m.cfg.AssetsDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(assetsAbs, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apperr.PathEscape(fmt.Errorf("media: %s is outside the assets directory", path))
	}
	return abs, nil
}

// verifyExisting checks a referenced asset through the sandbox and passes its
// canonical relative form through unchanged.
func (m *Materializer) verifyExisting(path string) (string, error) {
	abs, err := m.resolveAsset(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return "", apperr.NotFound("Referenced asset " + path)
	}
	return m.box.Rel(abs)
}

// writeSequenced stores data as "<assetFolder><n>.<ext>", scanning upward from
// start until an unused integer is found. O_EXCL creation makes the scan a
// collision-avoidance protocol rather than a guess; the global write queue
// keeps whole create/update operations from racing each other anyway.
func (m *Materializer) writeSequenced(assetFolder string, data []byte, start int) (rel string, used int, err error) {
	dirAbs, err := m.box.Join(m.cfg.AssetsDir, assetFolder)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(dirAbs, 0o755); err != nil {
		return "", 0, apperr.Internal(fmt.Errorf("media: mkdir %s: %w", assetFolder, err))
	}

	for n := start; ; n++ {
		name := fmt.Sprintf("%s%d%s", assetFolder, n, m.cfg.Encode.Ext())
		abs := filepath.Join(dirAbs, name)

		f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", 0, apperr.Internal(fmt.Errorf("media: create %s: %w", name, err))
		}

		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(abs)
			return "", 0, apperr.Internal(fmt.Errorf("media: write %s: %w", name, err))
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(abs)
			return "", 0, apperr.Internal(fmt.Errorf("media: close %s: %w", name, err))
		}

		relPath, err := m.box.Rel(abs)
		if err != nil {
			return "", 0, err
		}
		return relPath, n, nil
	}
}

// materializeThumbnail renders (or verifies) the project's single thumbnail.
func (m *Materializer) materializeThumbnail(plan *Plan, uploads Uploads, assetFolder, currentThumbnail string) (string, error) {
	entry := plan.Thumbnail

	if entry.Kind == KindExisting {
		return m.verifyExisting(entry.Path)
	}

	upload, ok := uploads[entry.FileID]
	if !ok {
		return "", validate.RequiredError("thumbnailPlan", fmt.Sprintf("No uploaded file matches id %q", entry.FileID))
	}

	src, err := imagery.Decode(bytes.NewReader(upload.Data))
	if err != nil {
		return "", apperr.ImageProcessingFailed(fmt.Errorf("%s: %w", upload.OriginalName, err))
	}

	var rendered image.Image
	if cfg := plan.ThumbnailConfig; cfg != nil && cfg.Mode == ModeLogoColor {
		background, err := imagery.ParseHexColor(cfg.BackgroundColor)
		if err != nil {
			return "", apperr.ImageProcessingFailed(err)
		}
		rendered = imagery.ComposeLogo(src, background, m.cfg.ThumbWidth, m.cfg.ThumbHeight, cfg.PaddingPercent)
	} else {
		rendered = imagery.CoverCrop(src, m.cfg.ThumbWidth, m.cfg.ThumbHeight)
	}

	var buf bytes.Buffer
	if err := imagery.Encode(&buf, rendered, m.cfg.Encode); err != nil {
		return "", apperr.ImageProcessingFailed(fmt.Errorf("%s: %w", upload.OriginalName, err))
	}

	return m.writeThumbnail(assetFolder, buf.Bytes(), currentThumbnail)
}

// writeThumbnail stores the canonical "<assetFolder>.<ext>" thumbnail.
//
// The project's own current thumbnail may be overwritten in place; an
// unrelated file of the same computed name pushes the write to a "-<n>"
// suffixed sibling instead of clobbering it.
func (m *Materializer) writeThumbnail(assetFolder string, data []byte, currentThumbnail string) (string, error) {
	dirAbs, err := m.box.Join(m.cfg.AssetsDir, constants.ThumbnailsDirName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dirAbs, 0o755); err != nil {
		return "", apperr.Internal(fmt.Errorf("media: mkdir thumbnails: %w", err))
	}

	ext := m.cfg.Encode.Ext()
	for n := 0; ; n++ {
		name := assetFolder + ext
		if n > 0 {
			name = fmt.Sprintf("%s-%d%s", assetFolder, n, ext)
		}
		abs := filepath.Join(dirAbs, name)

		rel, err := m.box.Rel(abs)
		if err != nil {
			return "", err
		}

		// Our own canonical file: overwrite in place.
		if rel == currentThumbnail {
			if err := os.WriteFile(abs, data, 0o644); err != nil {
				return "", apperr.Internal(fmt.Errorf("media: write %s: %w", name, err))
			}
			return rel, nil
		}

		f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", apperr.Internal(fmt.Errorf("media: create %s: %w", name, err))
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(abs)
			return "", apperr.Internal(fmt.Errorf("media: write %s: %w", name, err))
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(abs)
			return "", apperr.Internal(fmt.Errorf("media: close %s: %w", name, err))
		}
		return rel, nil
	}
}

// RemoveAssets deletes the given root-relative asset files, then prunes any
// gallery directories left empty. Failures are logged, not fatal: asset
// cleanup never blocks a catalog operation that already persisted.
func (m *Materializer) RemoveAssets(paths []string) {
	dirs := make(map[string]bool)

	for _, rel := range paths {
		abs, err := m.resolveAsset(rel)
		if err != nil {
			m.log.Error("asset_remove_rejected", slog.String("path", rel), slog.Any("error", err))
			continue
		}
		if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
			m.log.Error("asset_remove_failed", slog.String("path", rel), slog.Any("error", err))
			continue
		}
		dirs[filepath.Dir(abs)] = true
	}

	thumbsAbs, err := m.box.Join(m.cfg.AssetsDir, constants.ThumbnailsDirName)
	if err != nil {
		return
	}
	for dir := range dirs {
		// The shared thumbnails directory is never pruned.
		if dir == thumbsAbs {
			continue
		}
		// Remove fails on non-empty directories, which is exactly the
		// still-referenced guard we want.
		if err := os.Remove(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
			m.log.Debug("asset_dir_kept", slog.String("dir", dir), slog.Any("error", err))
		}
	}
}
