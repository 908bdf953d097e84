package catalog

// LocaleSummary describes one locale's structure in a consistency report.
type LocaleSummary struct {
	Categories []string `json:"categories"`
	Records    int      `json:"records"`
}

// ConsistencyReport is the operator's read-only view of cross-locale drift.
// Nothing in it is ever acted on automatically.
type ConsistencyReport struct {
	Consistent bool `json:"consistent"`

	Locales map[string]LocaleSummary `json:"locales"`

	// CategoriesMissing maps a category name to the locales lacking it.
	CategoriesMissing map[string][]string `json:"categoriesMissing,omitempty"`

	// IdentifiersMissing maps an identifier to the locales lacking it.
	IdentifiersMissing map[string][]string `json:"identifiersMissing,omitempty"`

	// DuplicateIdentifiers lists identifiers appearing more than once within
	// a single locale, per locale.
	DuplicateIdentifiers map[string][]string `json:"duplicateIdentifiers,omitempty"`
}

// Inspect builds a consistency report over the locale set.
func Inspect(set Set, locales []string) ConsistencyReport {
	report := ConsistencyReport{
		Consistent:           true,
		Locales:              make(map[string]LocaleSummary, len(locales)),
		CategoriesMissing:    make(map[string][]string),
		IdentifiersMissing:   make(map[string][]string),
		DuplicateIdentifiers: make(map[string][]string),
	}

	allCategories := make(map[string]bool)
	allIdentifiers := make(map[string]bool)
	perLocaleIdentifiers := make(map[string]map[string]int, len(locales))

	for _, locale := range locales {
		doc, ok := set[locale]
		if !ok {
			doc = NewDocument()
		}

		counts := make(map[string]int)
		total := 0
		for _, category := range doc.Categories() {
			allCategories[category] = true
			for _, record := range doc.Records(category) {
				counts[record.Identifier]++
				allIdentifiers[record.Identifier] = true
				total++
			}
		}
		perLocaleIdentifiers[locale] = counts

		report.Locales[locale] = LocaleSummary{
			Categories: doc.Categories(),
			Records:    total,
		}

		for identifier, n := range counts {
			if n > 1 {
				report.DuplicateIdentifiers[locale] = append(report.DuplicateIdentifiers[locale], identifier)
				report.Consistent = false
			}
		}
	}

	for category := range allCategories {
		for _, locale := range locales {
			doc, ok := set[locale]
			if !ok || !doc.Has(category) {
				report.CategoriesMissing[category] = append(report.CategoriesMissing[category], locale)
				report.Consistent = false
			}
		}
	}

	for identifier := range allIdentifiers {
		for _, locale := range locales {
			if perLocaleIdentifiers[locale][identifier] == 0 {
				report.IdentifiersMissing[identifier] = append(report.IdentifiersMissing[identifier], locale)
				report.Consistent = false
			}
		}
	}

	if len(report.CategoriesMissing) == 0 {
		report.CategoriesMissing = nil
	}
	if len(report.IdentifiersMissing) == 0 {
		report.IdentifiersMissing = nil
	}
	if len(report.DuplicateIdentifiers) == 0 {
		report.DuplicateIdentifiers = nil
	}

	return report
}
