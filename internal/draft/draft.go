package draft

import (
	"encoding/json"
	"time"
)

// Draft is one autosaved, in-progress editor record.
//
// The body is an opaque JSON blob owned by the editing client; the server
// never interprets it and never lets it anywhere near the catalogs. Drafts
// expire on their own after the configured TTL.
type Draft struct {
	Key       string          `json:"key"`
	Body      json.RawMessage `json:"body"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
