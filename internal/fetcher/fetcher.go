// Package fetcher is the orchestration layer between the UI-facing caller,
// the provider and the data manager. It issues the network fetches, folds
// every result back through the manager's write paths, and never retries on
// its own; failures come back as values for the caller to report.
package fetcher

import (
	"context"
	"sync"

	"github.com/shelfkeeper/shelfkeeper/internal/errs"
	"github.com/shelfkeeper/shelfkeeper/internal/logger"
	"github.com/shelfkeeper/shelfkeeper/internal/manager"
	"github.com/shelfkeeper/shelfkeeper/internal/models"
	"github.com/shelfkeeper/shelfkeeper/internal/source"
)

// Fetcher coordinates one provider with one data manager.
type Fetcher struct {
	src         source.Source
	mgr         *manager.Manager
	parallelism int
	log         *logger.Logger
}

// New creates a fetcher. parallelism bounds concurrent book scrapes during a
// search; values below 1 are treated as 1.
func New(src source.Source, mgr *manager.Manager, parallelism int) *Fetcher {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Fetcher{
		src:         src,
		mgr:         mgr,
		parallelism: parallelism,
		log:         logger.Component("fetcher"),
	}
}

// Search runs a provider search and scrapes every hit concurrently. Scraped
// books are written through the manager (keeping an existing library flag for
// URLs already known) and covers are prefetched into the volatile cache only;
// persisting a cover for every search hit shown would be wasted I/O. Result
// order matches the provider's, individual scrape failures are logged and
// skipped.
func (f *Fetcher) Search(ctx context.Context, term string) ([]models.Book, error) {
	urls, err := f.src.Search(ctx, term)
	if err != nil {
		return nil, err
	}

	results := make([]*models.Book, len(urls))
	sem := make(chan struct{}, f.parallelism)
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			book, err := f.scrapeAndStore(ctx, url)
			if err != nil {
				f.log.Warn().Err(err).Str("url", url).Msg("Skipping search result")
				return
			}
			f.prefetchCover(ctx, book)
			results[i] = &book
		}(i, url)
	}
	wg.Wait()

	books := make([]models.Book, 0, len(urls))
	for _, b := range results {
		if b != nil {
			books = append(books, *b)
		}
	}

	f.log.Debug().Str("term", term).Int("hits", len(urls)).Int("scraped", len(books)).Msg("Search finished")
	return books, nil
}

// Refresh re-scrapes a book page and writes it through, overwriting every
// field except the library flag, which survives a refresh.
func (f *Fetcher) Refresh(ctx context.Context, url string) (models.Book, error) {
	return f.scrapeAndStore(ctx, url)
}

// AddToLibrary flags a book as belonging to the library and makes its cover
// durable. The book is fetched first if the manager does not know it yet. A
// failed cover download does not fail the add; the cover stays absent.
func (f *Fetcher) AddToLibrary(ctx context.Context, url string) (models.Book, error) {
	book, found, err := f.mgr.GetBook(url)
	if err != nil {
		return models.Book{}, err
	}
	if !found {
		if book, err = f.src.ScrapeBook(ctx, url); err != nil {
			return models.Book{}, err
		}
	}

	book.InLibrary = true
	if err := f.mgr.SetBook(book); err != nil {
		return models.Book{}, err
	}

	if book.HasCover() {
		if err := f.persistCover(ctx, book); err != nil {
			f.log.Warn().Err(err).Str("url", book.URL).Msg("Failed to persist cover")
		}
	}
	return book, nil
}

// RemoveFromLibrary clears the library flag. The book row and its thumbnail
// stay; only bulk storage reset deletes entities.
func (f *Fetcher) RemoveFromLibrary(url string) (models.Book, error) {
	book, found, err := f.mgr.GetBook(url)
	if err != nil {
		return models.Book{}, err
	}
	if !found {
		return models.Book{}, errs.Errorf(errs.Precondition, "fetcher.RemoveFromLibrary", "unknown book %s", url)
	}

	book.InLibrary = false
	if err := f.mgr.SetBook(book); err != nil {
		return models.Book{}, err
	}
	return book, nil
}

// scrapeAndStore scrapes a book page and writes it through the manager,
// preserving an already-known library flag.
func (f *Fetcher) scrapeAndStore(ctx context.Context, url string) (models.Book, error) {
	book, err := f.src.ScrapeBook(ctx, url)
	if err != nil {
		return models.Book{}, err
	}

	if existing, found, err := f.mgr.GetBook(url); err == nil && found {
		book.InLibrary = existing.InLibrary
	}

	if err := f.mgr.SetBook(book); err != nil {
		return models.Book{}, err
	}
	return book, nil
}

// prefetchCover loads the cover bytes into the volatile cache unless they are
// already cached (memory or durable).
func (f *Fetcher) prefetchCover(ctx context.Context, book models.Book) {
	if !book.HasCover() {
		return
	}
	if _, found, _ := f.mgr.ImageBytes(book); found {
		return
	}

	data, err := f.src.DownloadCover(ctx, book)
	if err != nil {
		f.log.Debug().Err(err).Str("url", book.URL).Msg("Cover prefetch failed")
		return
	}
	f.mgr.CacheImageBytes(book, data)
}

// persistCover makes the cover durable, downloading it first when the
// volatile cache has nothing to flush.
func (f *Fetcher) persistCover(ctx context.Context, book models.Book) error {
	if err := f.mgr.PersistCachedImage(book); err == nil {
		return nil
	}

	data, err := f.src.DownloadCover(ctx, book)
	if err != nil {
		return err
	}
	return f.mgr.SetImageBytes(book, data)
}
