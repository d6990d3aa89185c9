package models

// Book describes one work of serialized fiction as scraped from a provider.
// URL is the canonical identity: two Book values with the same URL are the
// same entity regardless of other field differences, and the last write wins.
type Book struct {
	// Source is the identifier of the provider the book was scraped from.
	Source string `json:"source"`
	// URL is the canonical, fully-qualified page URL. Primary key everywhere.
	URL string `json:"url"`
	// Name is the book title. A book without a name is not a valid book.
	Name string `json:"name"`
	// Image is the cover URL. Empty means the book has no cover; provider
	// placeholder covers are normalized to empty before they get here.
	Image string `json:"image,omitempty"`
	// InLibrary marks books the user added to their library.
	InLibrary bool `json:"in_library"`
}

// HasCover reports whether the book carries a real cover URL.
func (b Book) HasCover() bool {
	return b.Image != ""
}
