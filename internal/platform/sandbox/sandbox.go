// Copyright (c) 2026 Atelier. All rights reserved.
// Author: lucas.m.rezende@gmail.com

/*
Package sandbox confines every filesystem path the server touches to one root.

It is the single containment gate of the application: category names, asset
folder tokens, and existing-asset references are all user-controlled path
fragments, and every one of them must pass through [Box.Resolve] before a
read, write, or delete reaches disk. No other code may concatenate paths
destined for I/O.

Invariant: a resolved path is the root itself or strictly nested under it;
anything else fails with a PATH_ESCAPE error.
*/
package sandbox

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lucasmr/atelier/internal/platform/apperr"
)

// Box resolves relative paths against a fixed root directory.
//
// # Concurrency
//
// Box is immutable after construction and safe for concurrent use.
type Box struct {
	root string
}

// New creates a Box rooted at the given directory.
//
// The root is made absolute and cleaned once so later containment checks are
// pure string/path arithmetic with no filesystem access.
func New(root string) (*Box, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("sandbox: cannot absolutize root %q: %w", root, err)
	}
	return &Box{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute sandbox root.
func (b *Box) Root() string { return b.root }

// Resolve maps a caller-supplied path to an absolute path inside the root.
//
// A relative input is joined onto the root; an absolute input is accepted only
// if it already lies inside the root. Either way the result is verified via
// relative-path computation: a result whose relation to the root starts with a
// parent-traversal segment (or is absolute elsewhere) fails with PATH_ESCAPE.
func (b *Box) Resolve(path string) (string, error) {
	var candidate string
	if filepath.IsAbs(path) {
		candidate = filepath.Clean(path)
	} else {
		candidate = filepath.Join(b.root, path)
	}

	rel, err := filepath.Rel(b.root, candidate)
	if err != nil {
		return "", apperr.PathEscape(fmt.Errorf("sandbox: %q is not relatable to root: %w", path, err))
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", apperr.PathEscape(fmt.Errorf("sandbox: %q escapes root", path))
	}

	return candidate, nil
}

// Join resolves the concatenation of several path fragments.
//
// It exists so call sites never build multi-segment paths by hand before the
// containment check.
func (b *Box) Join(parts ...string) (string, error) {
	return b.Resolve(filepath.Join(parts...))
}

// Rel converts an absolute path inside the box back to its root-relative form
// with forward slashes, which is the canonical form persisted in catalog records.
func (b *Box) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(b.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apperr.PathEscape(fmt.Errorf("sandbox: %q is outside root", abs))
	}
	return filepath.ToSlash(rel), nil
}
