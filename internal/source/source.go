// Package source defines the provider abstraction for external serialized
// fiction sites. Callers depend only on the Source interface; concrete
// providers register themselves so new sites plug in without touching the
// caching layer.
package source

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/shelfkeeper/shelfkeeper/internal/errs"
	"github.com/shelfkeeper/shelfkeeper/internal/models"
)

// Source is the contract one external content provider must satisfy. All
// operations perform network I/O and honor context cancellation. Failures are
// reported as errs kinds; an empty search result is a valid success, not an
// error.
type Source interface {
	// Name identifies the provider.
	Name() string
	// Search returns canonical book URLs matching a free-text term, in the
	// order the provider lists them. Zero results is not an error.
	Search(ctx context.Context, term string) ([]string, error)
	// ScrapeBook fetches and parses a book page. A page lacking a name is not
	// a valid book and must error.
	ScrapeBook(ctx context.Context, url string) (models.Book, error)
	// ScrapeChapter fetches one chapter's metadata plus the URL of the next
	// chapter, if the page links one. Providers expose chapters as a
	// singly-linked chain, not a bulk index.
	ScrapeChapter(ctx context.Context, url string) (models.Chapter, string, error)
	// DownloadChapter fetches a chapter's body text. A chapter without a URL
	// is a precondition violation, not a network failure.
	DownloadChapter(ctx context.Context, ch models.Chapter) (string, error)
	// DownloadCover fetches the raw cover bytes for a book.
	DownloadCover(ctx context.Context, b models.Book) ([]byte, error)
}

// Options carries the shared HTTP plumbing handed to provider constructors.
type Options struct {
	HTTPClient *http.Client
	UserAgent  string
}

// Factory builds a provider instance.
type Factory func(opts Options) Source

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a provider available under the given name. Called from
// provider package init functions, database/sql-driver style.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Create instantiates the named provider.
func Create(name string, opts Options) (Source, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errs.Errorf(errs.Precondition, "source.Create", "unknown source %q", name)
	}
	return factory(opts), nil
}

// Names lists the registered providers, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
