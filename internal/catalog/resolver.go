package catalog

import (
	"fmt"

	"github.com/lucasmr/atelier/internal/platform/apperr"
)

// Coordinates locate one record inside a document.
type Coordinates struct {
	Category string `json:"category"`
	Index    int    `json:"index"`
}

// Match pairs a record with its coordinates in one locale.
type Match struct {
	Coordinates
	Record *Record
}

// FindByIdentifier scans every category of a document for the identifier.
func FindByIdentifier(doc *Document, identifier string) (Match, bool) {
	for _, category := range doc.Categories() {
		for index, record := range doc.Records(category) {
			if record.Identifier == identifier {
				return Match{
					Coordinates: Coordinates{Category: category, Index: index},
					Record:      record,
				}, true
			}
		}
	}
	return Match{}, false
}

// ResolveAcrossLocales finds the record in the reference locale, then locates
// its counterpart in every other locale.
//
// # Resolution Algorithm
//
// Per locale: a direct identifier match wins; absent that, the reference
// locale's (category, index) coordinates are tried positionally. Hand-edited
// files routinely drift out of identifier sync, so the fallback keeps the tool
// usable. A locale where even the positional fallback is out of bounds
// means the documents have structurally diverged, which terminates with
// LOCALE_INCONSISTENCY. Nothing is auto-repaired.
func ResolveAcrossLocales(set Set, locales []string, identifier, referenceLocale string) (map[string]Match, error) {
	reference, ok := set[referenceLocale]
	if !ok {
		return nil, apperr.LocaleInconsistency(fmt.Sprintf("Reference locale %q is missing", referenceLocale))
	}

	anchor, found := FindByIdentifier(reference, identifier)
	if !found {
		return nil, apperr.NotFound("Project")
	}

	matches := map[string]Match{referenceLocale: anchor}

	for _, locale := range locales {
		if locale == referenceLocale {
			continue
		}

		doc, ok := set[locale]
		if !ok {
			return nil, apperr.LocaleInconsistency(fmt.Sprintf("Locale %q is missing", locale))
		}

		if match, ok := FindByIdentifier(doc, identifier); ok {
			matches[locale] = match
			continue
		}

		// Positional fallback at the reference coordinates.
		if !doc.Has(anchor.Category) || anchor.Index >= doc.Len(anchor.Category) {
			return nil, apperr.LocaleInconsistency(fmt.Sprintf(
				"Locale %q has no record for identifier %s and no record at %s[%d]; fix the catalog files manually",
				locale, identifier, anchor.Category, anchor.Index,
			))
		}

		matches[locale] = Match{
			Coordinates: anchor.Coordinates,
			Record:      doc.Records(anchor.Category)[anchor.Index],
		}
	}

	return matches, nil
}

// AssertCategoryExists fails unless the category key is present in every locale.
//
// A category known to no locale is a plain validation problem; a category
// known to some locales but not all means the files have diverged.
func AssertCategoryExists(set Set, locales []string, category string) error {
	present := 0
	for _, locale := range locales {
		if doc, ok := set[locale]; ok && doc.Has(category) {
			present++
		}
	}

	switch present {
	case len(locales):
		return nil
	case 0:
		return apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   "category",
			Message: fmt.Sprintf("Unknown category %q", category),
		})
	default:
		return apperr.LocaleInconsistency(fmt.Sprintf(
			"Category %q exists in %d of %d locales; fix the catalog files manually",
			category, present, len(locales),
		))
	}
}

// AssertIdentifierUnique scans all locales for the identifier.
//
// On create (exclude == nil) any match is a conflict. On edit, exclude holds
// the coordinates the edited record occupies per locale; a match only
// conflicts when it sits elsewhere than the record's own slot in that locale.
// Coordinates can differ across drifted locales, so the exclusion has to be
// per locale rather than a single anchor position.
func AssertIdentifierUnique(set Set, locales []string, identifier string, exclude map[string]Coordinates) error {
	for _, locale := range locales {
		doc, ok := set[locale]
		if !ok {
			continue
		}
		match, found := FindByIdentifier(doc, identifier)
		if !found {
			continue
		}
		if own, ok := exclude[locale]; ok && match.Category == own.Category && match.Index == own.Index {
			continue
		}
		return apperr.IdentifierConflict(identifier)
	}
	return nil
}
