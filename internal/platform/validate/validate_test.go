// Copyright (c) 2026 Atelier. All rights reserved.
// Author: lucas.m.rezende@gmail.com

package validate_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasmr/atelier/internal/platform/apperr"
	"github.com/lucasmr/atelier/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "title", "Atelier", false},
		{"empty_string", "title", "", true},
		{"whitespace_only", "title", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_URL checks the optional URL rule (empty allowed, scheme enforced).
*/
func TestValidator_URL(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"empty_allowed", "", true},
		{"https", "https://github.com/lucasmr", true},
		{"http", "http://localhost:3000", true},
		{"no_scheme", "github.com/lucasmr", false},
		{"ftp", "ftp://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.URL("projectUrlLink", tt.value)

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_HexColor checks CSS hex color literal validation.
*/
func TestValidator_HexColor(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"six_digit", "#1a2b3c", true},
		{"three_digit", "#abc", true},
		{"uppercase", "#AABBCC", true},
		{"no_hash", "aabbcc", false},
		{"bad_length", "#abcd", false},
		{"not_hex", "#zzzzzz", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.HexColor("backgroundColor", tt.value)

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_FiniteRange guards against NaN, infinities and out-of-range values.
*/
func TestValidator_FiniteRange(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		isValid bool
	}{
		{"zero", 0, true},
		{"mid", 55.5, true},
		{"max", 100, true},
		{"negative", -1, false},
		{"above", 100.1, false},
		{"nan", math.NaN(), false},
		{"inf", math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.FiniteRange("developingPercentage", tt.value, 0, 100)

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("category", "web").
		Slug("assetFolder", "my-shiny-app").
		URL("githubUrlLink", "https://github.com/x/y").
		Range("compatibility", 2, 1, 3).
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("category", "").          // Fails
		Slug("assetFolder", "Not A Slug"). // Fails
		URL("projectUrlLink", "nope").     // Fails
		Err()

	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Len(t, ae.Details, 3)
	assert.Len(t, v.Violations(), 3)
}
