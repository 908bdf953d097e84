package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/lucasmr/atelier/internal/platform/constants"
	"github.com/lucasmr/atelier/internal/platform/validate"
)

// Entry kinds in a media plan.
const (
	KindNew      = "new"
	KindExisting = "existing"
)

// Thumbnail generation modes.
const (
	ModeImage     = "image"
	ModeLogoColor = "logoColor"
)

// PlanEntry references one image: either a fresh upload (by client-generated
// file id) or an already-materialized asset (by root-relative path).
type PlanEntry struct {
	Kind   string `json:"kind"`
	FileID string `json:"fileId,omitempty"`
	Path   string `json:"path,omitempty"`
}

// ThumbnailConfig selects how the thumbnail is generated from its source image.
type ThumbnailConfig struct {
	// Mode is "image" (cover-crop the upload) or "logoColor" (compose the
	// upload as a logo onto a solid background).
	Mode string `json:"mode"`

	// BackgroundColor is the hex fill behind the logo (logoColor mode).
	BackgroundColor string `json:"backgroundColor,omitempty"`

	// PaddingPercent is the margin left around the logo, 0-40 (logoColor mode).
	PaddingPercent float64 `json:"paddingPercent,omitempty"`
}

// Plan is the request-scoped description of a project's media. It is consumed
// once per create/update and never persisted.
type Plan struct {
	Gallery         []PlanEntry      `json:"gallery"`
	Thumbnail       *PlanEntry       `json:"thumbnail"`
	ThumbnailConfig *ThumbnailConfig `json:"thumbnailConfig,omitempty"`
}

// Validate appends the plan's rule violations to the caller's validator chain.
func (p *Plan) Validate(v *validate.Validator) {
	v.NotEmptyList("galleryPlan", len(p.Gallery))
	for i, entry := range p.Gallery {
		entry.validate(v, fmt.Sprintf("galleryPlan[%d]", i))
	}

	if p.Thumbnail == nil {
		v.Custom("thumbnailPlan", true, "This field is required")
	} else {
		p.Thumbnail.validate(v, "thumbnailPlan")
	}

	if cfg := p.ThumbnailConfig; cfg != nil {
		v.OneOf("thumbnailConfig.mode", cfg.Mode, ModeImage, ModeLogoColor)
		if cfg.Mode == ModeLogoColor {
			v.HexColor("thumbnailConfig.backgroundColor", cfg.BackgroundColor)
			v.FiniteRange("thumbnailConfig.paddingPercent", cfg.PaddingPercent, 0, 40)
		}
	}
}

func (e PlanEntry) validate(v *validate.Validator, field string) {
	switch e.Kind {
	case KindNew:
		v.Custom(field, e.FileID == "", "New entries must carry a fileId")
	case KindExisting:
		v.Custom(field, e.Path == "", "Existing entries must carry a path")
	default:
		v.Custom(field, true, `Entry must be tagged "new" or "existing"`)
	}
}

// Upload is one raw uploaded file, keyed by its client-generated id.
type Upload struct {
	FileID       string
	OriginalName string
	Data         []byte
}

// Uploads indexes uploaded files by file id.
type Uploads map[string]Upload

// ParseUploads extracts file parts from a parsed multipart form.
//
// Parts are tagged "<fileId>__<originalName>" in the part name; anything not
// matching that shape is ignored (the payload field among others).
func ParseUploads(form *multipart.Form) (Uploads, error) {
	uploads := make(Uploads)
	if form == nil {
		return uploads, nil
	}

	for name, headers := range form.File {
		fileID, originalName, ok := strings.Cut(name, constants.UploadPartSeparator)
		if !ok || fileID == "" {
			continue
		}

		if len(headers) == 0 {
			continue
		}

		file, err := headers[0].Open()
		if err != nil {
			return nil, fmt.Errorf("media: open upload %q: %w", name, err)
		}
		data, err := io.ReadAll(file)
		closeErr := file.Close()
		if err != nil {
			return nil, fmt.Errorf("media: read upload %q: %w", name, err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("media: close upload %q: %w", name, closeErr)
		}

		uploads[fileID] = Upload{
			FileID:       fileID,
			OriginalName: originalName,
			Data:         data,
		}
	}

	return uploads, nil
}
