// Copyright (c) 2026 Atelier. All rights reserved.
// Author: lucas.m.rezende@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lucasmr/atelier/internal/platform/constants"
	"github.com/lucasmr/atelier/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
DecodeMultipartPayload parses a multipart form and decodes the JSON carried in
its "payload" field into the target structure.

The multipart form itself stays attached to the request (request.MultipartForm)
so the caller can walk the accompanying file parts afterwards.
*/
func DecodeMultipartPayload(request *http.Request, target interface{}) error {
	if err := request.ParseMultipartForm(constants.MaxMultipartMemory); err != nil {
		return validate.ErrInvalidMultipart
	}

	raw := request.FormValue(constants.PayloadFormField)
	if strings.TrimSpace(raw) == "" {
		return validate.RequiredError(constants.PayloadFormField, "This field is required")
	}

	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return validate.ErrInvalidJSON
	}

	return nil
}
