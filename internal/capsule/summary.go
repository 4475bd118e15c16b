package capsule

// UntitledTitle is the index title used when a record has no title.
const UntitledTitle = "Untitled"

// IndexEntry is the denormalized summary of a record kept in the index.
// Used for listing without loading every full record.
type IndexEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subject   string `json:"subject"`
	Level     Level  `json:"level"`
	UpdatedAt string `json:"updatedAt"`
}

// ToIndexEntry derives the index entry for a record stored under id.
func (r *Record) ToIndexEntry(id string) IndexEntry {
	title := r.Meta.Title
	if title == "" {
		title = UntitledTitle
	}
	return IndexEntry{
		ID:        id,
		Title:     title,
		Subject:   r.Meta.Subject,
		Level:     r.Meta.Level,
		UpdatedAt: r.UpdatedAt,
	}
}

// DisplayLevel returns the level for display, "Unknown" when unset.
func (e IndexEntry) DisplayLevel() string {
	if e.Level == "" {
		return "Unknown"
	}
	return string(e.Level)
}
