// Copyright (c) 2026 Atelier. All rights reserved.
// Author: lucas.m.rezende@gmail.com

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// # Why UUIDv7?
//
// It is the identifier scheme for project records across all locale catalogs.
// Unlike a title-derived slug, a generated token never changes when the title is
// edited, so external links to a project stay valid for its whole lifetime.
// Being time-sortable is a bonus: identifiers roughly follow creation order.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// # Safety
//
// It panics only if the OS random source is unavailable (extremely rare).
// This is acceptable as OS entropy failure is an unrecoverable system-level error.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// IsValid reports whether s parses as any UUID.
//
// Used to sanity-check identifiers coming back from hand-edited catalog files.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
