package project_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasmr/atelier/internal/catalog"
	"github.com/lucasmr/atelier/internal/media"
	"github.com/lucasmr/atelier/internal/platform/apperr"
	"github.com/lucasmr/atelier/internal/project"
)

/*
TestPayload_Validate_Valid accepts a fully populated payload.
*/
func TestPayload_Validate_Valid(t *testing.T) {
	assert.NoError(t, validPayload().Validate(locales))
}

/*
TestPayload_Validate covers each rule independently: one mutation, one
expected violating field.
*/
func TestPayload_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *project.Payload)
		field  string
	}{
		{
			name:   "empty_category",
			mutate: func(p *project.Payload) { p.Category = "" },
			field:  "category",
		},
		{
			name:   "empty_asset_folder",
			mutate: func(p *project.Payload) { p.AssetFolder = "" },
			field:  "assetFolder",
		},
		{
			name:   "asset_folder_not_a_slug",
			mutate: func(p *project.Payload) { p.AssetFolder = "My App!" },
			field:  "assetFolder",
		},
		{
			name:   "asset_folder_reserved",
			mutate: func(p *project.Payload) { p.AssetFolder = "thumbnails" },
			field:  "assetFolder",
		},
		{
			name:   "missing_locale_block",
			mutate: func(p *project.Payload) { delete(p.Locales, "es") },
			field:  "locales.es",
		},
		{
			name:   "unknown_locale_block",
			mutate: func(p *project.Payload) { p.Locales["fr"] = project.LocaleContent{Title: "x", Description: "y"} },
			field:  "locales.fr",
		},
		{
			name: "empty_title",
			mutate: func(p *project.Payload) {
				c := p.Locales["en"]
				c.Title = "  "
				p.Locales["en"] = c
			},
			field: "locales.en.title",
		},
		{
			name: "empty_description",
			mutate: func(p *project.Payload) {
				c := p.Locales["pt"]
				c.Description = ""
				p.Locales["pt"] = c
			},
			field: "locales.pt.description",
		},
		{
			name:   "empty_initial_date",
			mutate: func(p *project.Payload) { p.Shared.InitialDate = "" },
			field:  "shared.initialDate",
		},
		{
			name:   "empty_end_date",
			mutate: func(p *project.Payload) { p.Shared.EndDate = "" },
			field:  "shared.endDate",
		},
		{
			name:   "bad_project_url",
			mutate: func(p *project.Payload) { p.Shared.ProjectURL = "ftp://example.com" },
			field:  "shared.projectUrlLink",
		},
		{
			name:   "bad_github_url",
			mutate: func(p *project.Payload) { p.Shared.GithubURL = "github.com/x" },
			field:  "shared.githubUrlLink",
		},
		{
			name:   "percentage_out_of_range",
			mutate: func(p *project.Payload) { p.Shared.DevelopingPercentage = 101 },
			field:  "shared.developingPercentage",
		},
		{
			name:   "percentage_not_finite",
			mutate: func(p *project.Payload) { p.Shared.DevelopingPercentage = math.NaN() },
			field:  "shared.developingPercentage",
		},
		{
			name:   "compatibility_out_of_set",
			mutate: func(p *project.Payload) { p.Shared.Compatibility = 4 },
			field:  "shared.compatibility",
		},
		{
			name:   "no_icons",
			mutate: func(p *project.Payload) { p.Shared.Icons = nil },
			field:  "shared.icons",
		},
		{
			name: "icon_missing_tooltip",
			mutate: func(p *project.Payload) {
				p.Shared.Icons = []catalog.Icon{{Class: "devicon-go"}}
			},
			field: "shared.icons[0].tooltip",
		},
		{
			name:   "empty_gallery",
			mutate: func(p *project.Payload) { p.Gallery = nil },
			field:  "galleryPlan",
		},
		{
			name: "gallery_entry_without_tag_data",
			mutate: func(p *project.Payload) {
				p.Gallery = []media.PlanEntry{{Kind: media.KindNew}}
			},
			field: "galleryPlan[0]",
		},
		{
			name:   "missing_thumbnail",
			mutate: func(p *project.Payload) { p.Thumbnail = nil },
			field:  "thumbnailPlan",
		},
		{
			name: "bad_thumbnail_mode",
			mutate: func(p *project.Payload) {
				p.ThumbnailConfig = &media.ThumbnailConfig{Mode: "sparkle"}
			},
			field: "thumbnailConfig.mode",
		},
		{
			name: "logo_mode_bad_color",
			mutate: func(p *project.Payload) {
				p.ThumbnailConfig = &media.ThumbnailConfig{Mode: media.ModeLogoColor, BackgroundColor: "red", PaddingPercent: 10}
			},
			field: "thumbnailConfig.backgroundColor",
		},
		{
			name: "logo_mode_padding_out_of_range",
			mutate: func(p *project.Payload) {
				p.ThumbnailConfig = &media.ThumbnailConfig{Mode: media.ModeLogoColor, BackgroundColor: "#336699", PaddingPercent: 55}
			},
			field: "thumbnailConfig.paddingPercent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(payload)

			err := payload.Validate(locales)
			require.Error(t, err)

			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

			fields := make([]string, 0, len(appErr.Details))
			for _, detail := range appErr.Details {
				fields = append(fields, detail.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

/*
TestPayload_Validate_BatchesViolations reports every failing rule at once.
*/
func TestPayload_Validate_BatchesViolations(t *testing.T) {
	payload := validPayload()
	payload.Category = ""
	payload.Shared.Compatibility = 0
	payload.Gallery = nil

	err := payload.Validate(locales)
	require.Error(t, err)
	assert.GreaterOrEqual(t, len(apperr.As(err).Details), 3)
}
