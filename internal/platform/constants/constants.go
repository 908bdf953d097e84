// Copyright (c) 2026 Atelier. All rights reserved.
// Author: lucas.m.rezende@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Catalog: The fixed locale set and on-disk naming conventions.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "atelier-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Multipart uploads carry several multi-megabyte images, hence the generous value.
	DefaultReadTimeout = 60 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	// Translation calls stream from a local LLM and can legitimately take minutes.
	GlobalRequestTimeout = 5 * time.Minute

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Catalog

// Locales is the fixed set of languages the portfolio is published in.
// Every category and record exists once per locale; the files must stay aligned.
var Locales = []string{"pt", "en", "es"}

const (
	// ReferenceLocale is the locale whose document drives positional fallback
	// when another locale has drifted out of identifier sync.
	ReferenceLocale = "pt"

	// CatalogFilePrefix + locale + CatalogFileExt names one locale document on disk.
	CatalogFilePrefix = "projects-"
	CatalogFileExt    = ".json"

	// ThumbnailsDirName is the directory under the assets root holding project
	// thumbnails. It is reserved: no project may claim it as an asset folder.
	ThumbnailsDirName = "thumbnails"
)

// # Uploads

const (
	// MaxMultipartMemory is the in-memory budget for parsing a multipart request;
	// larger file parts spill to temporary files.
	MaxMultipartMemory = 32 << 20 // 32 MiB

	// UploadPartSeparator joins the client-generated file id and the original
	// file name in a multipart part name: "<fileId>__<originalName>".
	UploadPartSeparator = "__"

	// PayloadFormField is the multipart form field carrying the JSON project payload.
	PayloadFormField = "payload"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # Response Fields

const (
	FieldCode  = "code"
	FieldError = "error"
)
