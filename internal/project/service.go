package project

import (
	"context"
	"log/slog"

	"github.com/lucasmr/atelier/internal/catalog"
	"github.com/lucasmr/atelier/internal/media"
	"github.com/lucasmr/atelier/internal/platform/apperr"
	"github.com/lucasmr/atelier/internal/platform/sanitize"
	"github.com/lucasmr/atelier/internal/platform/validate"
	"github.com/lucasmr/atelier/pkg/slice"
	"github.com/lucasmr/atelier/pkg/slug"
	"github.com/lucasmr/atelier/pkg/uuidv7"
)

// # Service Layer

// Service orchestrates project mutations against the catalog store.
//
// Every mutation follows the same ordering: validate the payload, then inside
// the store's write queue resolve the target, materialize media, and merge the
// record into all locale documents. Media is fully on disk before the catalog
// is persisted, so a stored record never points at a file that was not
// written. A catalog write failure after materialization leaves orphaned
// asset files; those are logged and cleaned up manually.
type Service struct {
	store           catalog.Store
	materializer    *media.Materializer
	sanitizer       *sanitize.Sanitizer
	locales         []string
	referenceLocale string
	logger          *slog.Logger
}

// NewService constructs a new [Service].
func NewService(
	store catalog.Store,
	materializer *media.Materializer,
	sanitizer *sanitize.Sanitizer,
	locales []string,
	referenceLocale string,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:           store,
		materializer:    materializer,
		sanitizer:       sanitizer,
		locales:         locales,
		referenceLocale: referenceLocale,
		logger:          logger,
	}
}

// Detail is the cross-locale view of one project record.
type Detail struct {
	Identifier string                     `json:"identifier"`
	Category   string                     `json:"category"`
	Index      int                        `json:"index"`
	Records    map[string]*catalog.Record `json:"records"`
}

// Listing is one locale's full catalog.
type Listing struct {
	Locale  string            `json:"locale"`
	Catalog *catalog.Document `json:"catalog"`
}

// # Read Side
//
// Reads bypass the write queue. They may observe the state before or after an
// in-flight mutation, which is acceptable for a single-operator tool.

// List returns the full catalog for one locale. An empty locale selects the
// reference locale.
func (service *Service) List(ctx context.Context, locale string) (*Listing, error) {
	if locale == "" {
		locale = service.referenceLocale
	}
	if !service.knownLocale(locale) {
		return nil, validate.RequiredError("locale", "Unknown locale "+locale)
	}

	set, err := service.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return &Listing{Locale: locale, Catalog: set[locale]}, nil
}

// Get returns the record for one identifier across all locales, resolved with
// positional fallback where identifier sync has drifted.
func (service *Service) Get(ctx context.Context, identifier string) (*Detail, error) {
	set, err := service.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	matches, err := catalog.ResolveAcrossLocales(set, service.locales, identifier, service.referenceLocale)
	if err != nil {
		return nil, err
	}
	return service.detail(identifier, matches), nil
}

// Consistency inspects the catalogs for structural divergence without
// repairing anything.
func (service *Service) Consistency(ctx context.Context) (catalog.ConsistencyReport, error) {
	set, err := service.store.ReadAll(ctx)
	if err != nil {
		return catalog.ConsistencyReport{}, err
	}
	return catalog.Inspect(set, service.locales), nil
}

// # Mutations
//
// All mutations run their read-modify-write cycle inside store.Update, the
// single global write queue.

/*
Create validates the payload, materializes its media plan, and appends one new
record to every locale document at the same (category, index).

The identifier is a generated UUIDv7 token, immutable for the record's
lifetime. Uniqueness is still asserted against the current catalogs because
the JSON files are hand-editable.
*/
func (service *Service) Create(ctx context.Context, payload *Payload, uploads media.Uploads) (*Detail, error) {
	if err := payload.Validate(service.locales); err != nil {
		return nil, err
	}

	identifier := uuidv7.New()
	assetFolder := slug.From(payload.AssetFolder)

	var created *Detail
	err := service.store.Update(ctx, func(set catalog.Set) error {
		if err := catalog.AssertCategoryExists(set, service.locales, payload.Category); err != nil {
			return err
		}
		if err := catalog.AssertIdentifierUnique(set, service.locales, identifier, nil); err != nil {
			return err
		}

		// Media must be fully on disk before the catalog write.
		materialized, err := service.materializer.Materialize(ctx, payload.Plan(), uploads, assetFolder, "")
		if err != nil {
			return err
		}

		matches := make(map[string]catalog.Match, len(service.locales))
		for _, locale := range service.locales {
			record := service.buildRecord(identifier, payload, locale, materialized)
			doc := set[locale]
			doc.Append(payload.Category, record)
			matches[locale] = catalog.Match{
				Coordinates: catalog.Coordinates{Category: payload.Category, Index: doc.Len(payload.Category) - 1},
				Record:      record,
			}
		}
		created = service.detail(identifier, matches)
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("project_created",
		slog.String("identifier", identifier),
		slog.String("category", payload.Category))

	return created, nil
}

/*
Update replaces the record's content in every locale, keeping its identifier.

The record may move to a different category; its position is preserved when it
stays. Asset files the old record referenced but the new one no longer does
are removed after the catalog write succeeds.
*/
func (service *Service) Update(ctx context.Context, identifier string, payload *Payload, uploads media.Uploads) (*Detail, error) {
	if err := payload.Validate(service.locales); err != nil {
		return nil, err
	}

	assetFolder := slug.From(payload.AssetFolder)

	var updated *Detail
	var obsolete []string

	err := service.store.Update(ctx, func(set catalog.Set) error {
		if err := catalog.AssertCategoryExists(set, service.locales, payload.Category); err != nil {
			return err
		}

		matches, err := catalog.ResolveAcrossLocales(set, service.locales, identifier, service.referenceLocale)
		if err != nil {
			return err
		}

		anchor := matches[service.referenceLocale]
		own := make(map[string]catalog.Coordinates, len(matches))
		for locale, match := range matches {
			own[locale] = match.Coordinates
		}
		if err := catalog.AssertIdentifierUnique(set, service.locales, identifier, own); err != nil {
			return err
		}

		previous := collectAssetPaths(matches)

		materialized, err := service.materializer.Materialize(
			ctx, payload.Plan(), uploads, assetFolder, anchor.Record.Image)
		if err != nil {
			return err
		}

		replaced := make(map[string]catalog.Match, len(service.locales))
		for _, locale := range service.locales {
			match := matches[locale]
			record := service.buildRecord(identifier, payload, locale, materialized)

			coords := match.Coordinates
			doc := set[locale]
			if payload.Category == match.Category {
				if err := doc.ReplaceAt(match.Category, match.Index, record); err != nil {
					return apperr.Internal(err)
				}
			} else {
				if err := doc.RemoveAt(match.Category, match.Index); err != nil {
					return apperr.Internal(err)
				}
				doc.Append(payload.Category, record)
				coords = catalog.Coordinates{Category: payload.Category, Index: doc.Len(payload.Category) - 1}
			}
			replaced[locale] = catalog.Match{Coordinates: coords, Record: record}
		}
		updated = service.detail(identifier, replaced)

		obsolete = unreferencedPaths(set, service.locales, previous)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Catalog state is already persisted; asset cleanup is best-effort.
	service.materializer.RemoveAssets(obsolete)

	service.logger.Info("project_updated",
		slog.String("identifier", identifier),
		slog.String("category", payload.Category))

	return updated, nil
}

/*
Delete removes the record from every locale document, then removes each asset
file the record referenced unless a surviving record still references it.
*/
func (service *Service) Delete(ctx context.Context, identifier string) error {
	var removable []string

	err := service.store.Update(ctx, func(set catalog.Set) error {
		matches, err := catalog.ResolveAcrossLocales(set, service.locales, identifier, service.referenceLocale)
		if err != nil {
			return err
		}

		candidates := collectAssetPaths(matches)

		for _, locale := range service.locales {
			match := matches[locale]
			if err := set[locale].RemoveAt(match.Category, match.Index); err != nil {
				return apperr.Internal(err)
			}
		}

		removable = unreferencedPaths(set, service.locales, candidates)
		return nil
	})
	if err != nil {
		return err
	}

	service.materializer.RemoveAssets(removable)

	service.logger.Info("project_deleted", slog.String("identifier", identifier))
	return nil
}

/*
Reorder rewrites one category's record order in every locale.

The requested order must be an exact permutation of the reference locale's
identifiers for that category; anything else fails validation with the catalog
untouched. Other locales follow the reference locale's positions, so the
operation stays correct even when their identifier sets have drifted, as long
as the category lengths still agree.
*/
func (service *Service) Reorder(ctx context.Context, category string, order []string) error {
	v := &validate.Validator{}
	v.Required("category", category)
	v.NotEmptyList("order", len(order))
	if err := v.Err(); err != nil {
		return err
	}

	err := service.store.Update(ctx, func(set catalog.Set) error {
		if err := catalog.AssertCategoryExists(set, service.locales, category); err != nil {
			return err
		}

		reference := set[service.referenceLocale].Records(category)
		positions, err := permutationPositions(reference, order)
		if err != nil {
			return err
		}

		for _, locale := range service.locales {
			doc := set[locale]
			current := doc.Records(category)
			if len(current) != len(reference) {
				return apperr.LocaleInconsistency(
					"Category " + category + " has diverging lengths across locales; fix the catalog files manually")
			}

			reordered := slice.Map(positions, func(pos int) *catalog.Record {
				return current[pos]
			})
			doc.SetRecords(category, reordered)
		}
		return nil
	})
	if err != nil {
		return err
	}

	service.logger.Info("projects_reordered", slog.String("category", category))
	return nil
}

// # Helpers

// buildRecord assembles one locale's persisted record from the payload and
// the materialized asset paths. Descriptions always pass through the
// sanitizer here; client-side sanitization is never trusted.
func (service *Service) buildRecord(identifier string, payload *Payload, locale string, materialized *media.Result) *catalog.Record {
	content := payload.Locales[locale]
	return &catalog.Record{
		Identifier:           identifier,
		Title:                content.Title,
		Description:          service.sanitizer.Clean(content.Description),
		Image:                materialized.Thumbnail,
		Images:               append([]string(nil), materialized.Gallery...),
		InitialDate:          payload.Shared.InitialDate,
		EndDate:              payload.Shared.EndDate,
		ProjectURL:           payload.Shared.ProjectURL,
		LinkedinURL:          payload.Shared.LinkedinURL,
		GithubURL:            payload.Shared.GithubURL,
		Developed:            payload.Shared.Developed,
		DevelopingPercentage: payload.Shared.DevelopingPercentage,
		Compatibility:        payload.Shared.Compatibility,
		Icons:                append([]catalog.Icon(nil), payload.Shared.Icons...),
	}
}

func (service *Service) detail(identifier string, matches map[string]catalog.Match) *Detail {
	anchor := matches[service.referenceLocale]
	records := make(map[string]*catalog.Record, len(matches))
	for locale, match := range matches {
		records[locale] = match.Record
	}
	return &Detail{
		Identifier: identifier,
		Category:   anchor.Category,
		Index:      anchor.Index,
		Records:    records,
	}
}

func (service *Service) knownLocale(locale string) bool {
	for _, l := range service.locales {
		if l == locale {
			return true
		}
	}
	return false
}

// collectAssetPaths unions the asset paths of every matched locale record.
// The three copies normally reference identical paths, but hand-edited files
// may not.
func collectAssetPaths(matches map[string]catalog.Match) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, match := range matches {
		for _, path := range match.Record.AssetPaths() {
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
		}
	}
	return paths
}

// unreferencedPaths filters candidates down to those no record in the set
// references anymore.
func unreferencedPaths(set catalog.Set, locales []string, candidates []string) []string {
	live := make(map[string]bool)
	for _, locale := range locales {
		doc := set[locale]
		if doc == nil {
			continue
		}
		for _, category := range doc.Categories() {
			for _, record := range doc.Records(category) {
				for _, path := range record.AssetPaths() {
					live[path] = true
				}
			}
		}
	}
	return slice.Filter(candidates, func(path string) bool {
		return !live[path]
	})
}

// permutationPositions maps each requested identifier to its current index in
// the reference records, failing validation if the request is not an exact
// permutation.
func permutationPositions(reference []*catalog.Record, order []string) ([]int, error) {
	if len(order) != len(reference) {
		return nil, validate.RequiredError("order",
			"Order must list every record of the category exactly once")
	}

	index := make(map[string]int, len(reference))
	for i, record := range reference {
		index[record.Identifier] = i
	}

	positions := make([]int, 0, len(order))
	used := make(map[int]bool, len(order))
	for _, identifier := range order {
		pos, ok := index[identifier]
		if !ok {
			return nil, validate.RequiredError("order", "Unknown identifier "+identifier)
		}
		if used[pos] {
			return nil, validate.RequiredError("order", "Duplicate identifier "+identifier)
		}
		used[pos] = true
		positions = append(positions, pos)
	}
	return positions, nil
}
