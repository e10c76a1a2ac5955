package storage

import "time"

// TimestampLayout is the client-facing timestamp format. It is fixed-width
// and zero-padded, so string order equals chronological order.
const TimestampLayout = "2006-01-02 15:04:05"

// UsageEvent records one processed file: the tab it came from, the entities
// a detector found in it, and the ones the user kept.
type UsageEvent struct {
	// ID is assigned by the store on insert.
	ID string `json:"_id"`

	// Tab is the application area the event belongs to.
	Tab string `json:"tab"`

	// Filename is the uploaded file's name.
	Filename string `json:"filename"`

	// Timestamp is the capture time formatted with TimestampLayout.
	Timestamp string `json:"timestamp"`

	// DetectedEntities are the labels the upstream detector surfaced.
	DetectedEntities []string `json:"entities"`

	// SelectedEntities are the labels the user chose to act on.
	SelectedEntities []string `json:"selected_entities"`

	// CreatedAt is the server's UTC insert time. Audit only, never serialized.
	CreatedAt time.Time `json:"-"`
}

// Filter narrows a history query. Empty fields are not applied; the rest
// are combined with AND.
type Filter struct {
	Tab       string
	Filename  string
	StartDate string
	EndDate   string
}

// Match reports whether e satisfies the filter.
func (f Filter) Match(e UsageEvent) bool {
	if f.Tab != "" && e.Tab != f.Tab {
		return false
	}
	if f.Filename != "" && e.Filename != f.Filename {
		return false
	}
	if f.StartDate != "" && e.Timestamp < f.StartDate {
		return false
	}
	if f.EndDate != "" && e.Timestamp > f.EndDate {
		return false
	}
	return true
}

// normalize guarantees non-nil entity slices so they encode as [] rather than null.
func normalize(e UsageEvent) UsageEvent {
	if e.DetectedEntities == nil {
		e.DetectedEntities = []string{}
	}
	if e.SelectedEntities == nil {
		e.SelectedEntities = []string{}
	}
	return e
}
