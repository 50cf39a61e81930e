package artifact

import (
	"net/url"
	"time"
)

// Status tracks where an upload is in its lifecycle. A record starts as
// pending, then moves exactly once to succeeded or failed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Active reports whether the status blocks re-use of the artifact name.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusSucceeded
}

// Terminal reports whether the status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Record represents stored information about an artifact. Name is the
// primary key; URL is derived from name and status and never persisted.
type Record struct {
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	OwnerID     string    `json:"owner_id"`
	UploadedAt  time.Time `json:"uploaded_at"`
	Status      Status    `json:"status"`
	URL         string    `json:"url,omitempty"`
}

// WithURL returns a copy of the record carrying its download URL when
// the upload succeeded and no URL otherwise.
func (r Record) WithURL(baseURL string) Record {
	if r.Status == StatusSucceeded {
		r.URL = baseURL + "/artifacts/" + url.PathEscape(r.Name)
	} else {
		r.URL = ""
	}
	return r
}
