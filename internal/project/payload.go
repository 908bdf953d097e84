package project

import (
	"fmt"

	"github.com/lucasmr/atelier/internal/catalog"
	"github.com/lucasmr/atelier/internal/media"
	"github.com/lucasmr/atelier/internal/platform/constants"
	"github.com/lucasmr/atelier/internal/platform/validate"
)

// LocaleContent holds the per-locale half of a project payload.
type LocaleContent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SharedFields holds the record fields duplicated verbatim in every locale
// document.
type SharedFields struct {
	InitialDate          string         `json:"initialDate"`
	EndDate              string         `json:"endDate"`
	ProjectURL           string         `json:"projectUrlLink"`
	LinkedinURL          string         `json:"linkedinUrlLink"`
	GithubURL            string         `json:"githubUrlLink"`
	Developed            bool           `json:"developed"`
	DevelopingPercentage float64        `json:"developingPercentage"`
	Compatibility        int            `json:"compatibility"`
	Icons                []catalog.Icon `json:"icons"`
}

// Payload is the JSON body of a create or update request, carried in the
// multipart form's "payload" field alongside the uploaded file parts.
type Payload struct {
	Category    string                   `json:"category"`
	AssetFolder string                   `json:"assetFolder"`
	Locales     map[string]LocaleContent `json:"locales"`
	Shared      SharedFields             `json:"shared"`

	Gallery         []media.PlanEntry      `json:"galleryPlan"`
	Thumbnail       *media.PlanEntry       `json:"thumbnailPlan"`
	ThumbnailConfig *media.ThumbnailConfig `json:"thumbnailConfig,omitempty"`
}

// Plan assembles the payload's media fields into the materializer's input.
func (p *Payload) Plan() *media.Plan {
	return &media.Plan{
		Gallery:         p.Gallery,
		Thumbnail:       p.Thumbnail,
		ThumbnailConfig: p.ThumbnailConfig,
	}
}

// Validate checks every business rule of the payload and returns a
// VALIDATION_ERROR carrying the full batch of field violations, or nil.
// It has no side effects; nothing is mutated on failure.
func (p *Payload) Validate(locales []string) error {
	v := &validate.Validator{}

	v.Required("category", p.Category)
	v.Required("assetFolder", p.AssetFolder).
		Slug("assetFolder", p.AssetFolder).
		Custom("assetFolder", p.AssetFolder == constants.ThumbnailsDirName,
			fmt.Sprintf("The name %q is reserved", constants.ThumbnailsDirName))

	for _, locale := range locales {
		content, ok := p.Locales[locale]
		if !ok {
			v.Custom("locales."+locale, true, "Locale block is required")
			continue
		}
		v.Required("locales."+locale+".title", content.Title)
		v.Required("locales."+locale+".description", content.Description)
	}
	for locale := range p.Locales {
		known := false
		for _, l := range locales {
			if l == locale {
				known = true
				break
			}
		}
		v.Custom("locales."+locale, !known, "Unknown locale")
	}

	v.Required("shared.initialDate", p.Shared.InitialDate)
	v.Required("shared.endDate", p.Shared.EndDate)
	v.URL("shared.projectUrlLink", p.Shared.ProjectURL)
	v.URL("shared.linkedinUrlLink", p.Shared.LinkedinURL)
	v.URL("shared.githubUrlLink", p.Shared.GithubURL)
	v.FiniteRange("shared.developingPercentage", p.Shared.DevelopingPercentage, 0, 100)
	v.Range("shared.compatibility", p.Shared.Compatibility, 1, 3)

	v.NotEmptyList("shared.icons", len(p.Shared.Icons))
	for i, icon := range p.Shared.Icons {
		v.Required(fmt.Sprintf("shared.icons[%d].class", i), icon.Class)
		v.Required(fmt.Sprintf("shared.icons[%d].tooltip", i), icon.Tooltip)
	}

	p.Plan().Validate(v)

	return v.Err()
}
