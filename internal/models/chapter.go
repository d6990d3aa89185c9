package models

// Chapter describes one chapter page of a book. Providers usually expose
// chapters as a singly-linked chain of "next" pointers rather than an index,
// so any of these fields may be absent (zero) for a freshly discovered
// chapter. A chapter can only be fetched when URL is set.
type Chapter struct {
	Number int    `json:"number,omitempty"`
	Name   string `json:"name,omitempty"`
	URL    string `json:"url,omitempty"`
}
