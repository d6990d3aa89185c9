// Package manager implements the data manager: the single authoritative
// gateway for book and thumbnail state. Reads go memory cache, then persistent
// store, then report absence. Writes go through the persistent store first and
// only then update the memory cache, so a crash between the two always leaves
// storage as ground truth.
package manager

import (
	"fmt"
	"os"

	"github.com/shelfkeeper/shelfkeeper/internal/database"
	"github.com/shelfkeeper/shelfkeeper/internal/errs"
	"github.com/shelfkeeper/shelfkeeper/internal/logger"
	"github.com/shelfkeeper/shelfkeeper/internal/models"
	"github.com/shelfkeeper/shelfkeeper/pkg/cache"
)

// Manager mediates between the in-memory caches, the persistent store and
// callers. The caches are pure optimizations: they hold nothing that is not
// reconstructible from storage, and they are only reachable through Manager
// methods. Construct with New and pass the instance around explicitly.
type Manager struct {
	store  *database.Store
	dir    string
	books  *cache.Cache[string, models.Book]
	covers *cache.Cache[string, []byte]
	log    *logger.Logger
}

// New creates an uninitialized manager. Call Init before use.
func New() *Manager {
	return &Manager{
		books:  cache.New[string, models.Book](),
		covers: cache.New[string, []byte](),
		log:    logger.Component("manager"),
	}
}

// Init opens (or creates) the storage directory and ensures the schema
// exists. It is idempotent: re-running against an existing database is a
// no-op that never drops rows. All encountered errors are collected and
// returned rather than aborting; the caller decides whether they are fatal.
func (m *Manager) Init(dir string) []error {
	if m.store != nil {
		// Re-init: drop the old handle first.
		_ = m.store.Close()
		m.store = nil
	}
	m.dir = dir

	store, err := database.Open(dir)
	if err != nil {
		return []error{err}
	}
	if errors := store.Migrate(); len(errors) > 0 {
		_ = store.Close()
		return errors
	}

	m.store = store
	m.log.Debug().Str("dir", dir).Msg("Storage initialized")
	return nil
}

// Close releases the store handle. The manager is unusable afterwards until
// Init is called again.
func (m *Manager) Close() error {
	if m.store == nil {
		return nil
	}
	err := m.store.Close()
	m.store = nil
	return err
}

// Reset destructively removes the database file and re-initializes an empty
// schema. The memory caches are cleared even on failure so no stale entry can
// outlive the store; on failure the store itself may be gone and the caller
// recovers by re-running Init.
func (m *Manager) Reset() error {
	m.books.Clear()
	m.covers.Clear()

	if m.store == nil {
		return errs.Errorf(errs.Precondition, "manager.Reset", "manager is not initialized")
	}

	path := m.store.Path()
	if err := m.store.Close(); err != nil {
		m.store = nil
		return err
	}
	m.store = nil

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errs.E(errs.StorageConnect, "manager.Reset", fmt.Errorf("failed to remove database file: %w", err))
	}

	if errors := m.Init(m.dir); len(errors) > 0 {
		return errs.E(errs.StorageSchema, "manager.Reset", fmt.Errorf("failed to reinit storage: %v", errors))
	}
	return nil
}

func (m *Manager) ready() error {
	if m.store == nil {
		return errs.Errorf(errs.Precondition, "manager", "manager is not initialized")
	}
	return nil
}

// GetBook returns the book for a canonical URL, checking the memory cache
// before the persistent store. A store hit is promoted into the memory cache;
// absence is reported via the bool, never as an error.
func (m *Manager) GetBook(url string) (models.Book, bool, error) {
	if b, ok := m.books.Get(url); ok {
		return b, true, nil
	}
	if err := m.ready(); err != nil {
		return models.Book{}, false, err
	}

	row, found, err := m.store.BookByURL(url)
	if err != nil || !found {
		return models.Book{}, false, err
	}

	b := bookFromRow(row)
	m.books.Set(url, b, 0)
	return b, true, nil
}

// SetBook upserts the book by URL: the store row is fully overwritten (or
// inserted), then the cache entry is replaced. Safe to call repeatedly with
// the same value.
func (m *Manager) SetBook(b models.Book) error {
	if err := m.ready(); err != nil {
		return err
	}
	if err := m.store.UpsertBook(rowFromBook(b)); err != nil {
		return err
	}
	m.books.Set(b.URL, b, 0)
	return nil
}

// LibraryBooks returns all persisted books flagged as in the library. The
// storage placeholder for "no image" (the empty string) never surfaces as a
// cover URL.
func (m *Manager) LibraryBooks() ([]models.Book, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	rows, err := m.store.LibraryBooks()
	if err != nil {
		return nil, err
	}

	books := make([]models.Book, 0, len(rows))
	for _, row := range rows {
		books = append(books, bookFromRow(row))
	}
	return books, nil
}

// ImageBytes returns the cover bytes for a book, memory cache first, then the
// thumbnail table. Store hits are promoted into the cache.
func (m *Manager) ImageBytes(b models.Book) ([]byte, bool, error) {
	if data, ok := m.covers.Get(b.URL); ok {
		return data, true, nil
	}
	if err := m.ready(); err != nil {
		return nil, false, err
	}

	data, found, err := m.store.ThumbnailByURL(b.URL)
	if err != nil || !found {
		return nil, false, err
	}

	m.covers.Set(b.URL, data, 0)
	return data, true, nil
}

// SetImageBytes durably stores the cover bytes for a book (upsert into the
// thumbnail table) and then writes through to the memory cache.
func (m *Manager) SetImageBytes(b models.Book, data []byte) error {
	if err := m.ready(); err != nil {
		return err
	}
	if err := m.store.UpsertThumbnail(b.URL, data); err != nil {
		return err
	}
	m.covers.Set(b.URL, data, 0)
	return nil
}

// CacheImageBytes stores cover bytes in memory only, bypassing persistence.
// Search results prefetch a cover for every hit shown; only books the user
// actually adds to the library should cost durable storage, so everything
// else stays cheap to discard.
func (m *Manager) CacheImageBytes(b models.Book, data []byte) {
	m.covers.Set(b.URL, data, 0)
}

// PersistCachedImage flushes a previously cached volatile cover into the
// durable thumbnail table. It fails with a precondition error when no bytes
// are cached for the book.
func (m *Manager) PersistCachedImage(b models.Book) error {
	data, ok := m.covers.Get(b.URL)
	if !ok {
		return errs.Errorf(errs.Precondition, "manager.PersistCachedImage", "no cover cached for %s", b.URL)
	}
	return m.SetImageBytes(b, data)
}

// RecordChapter persists one discovered chapter for a book.
func (m *Manager) RecordChapter(bookURL string, ch models.Chapter) error {
	if err := m.ready(); err != nil {
		return err
	}
	return m.store.InsertChapter(database.ChapterRow{
		BookURL:    bookURL,
		Name:       ch.Name,
		ChapterURL: ch.URL,
	})
}

// Chapters returns the recorded chapters of a book in discovery order.
func (m *Manager) Chapters(bookURL string) ([]models.Chapter, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	rows, err := m.store.ChaptersByBook(bookURL)
	if err != nil {
		return nil, err
	}
	chapters := make([]models.Chapter, 0, len(rows))
	for i, row := range rows {
		chapters = append(chapters, models.Chapter{
			Number: i + 1,
			Name:   row.Name,
			URL:    row.ChapterURL,
		})
	}
	return chapters, nil
}

func bookFromRow(row database.BookRow) models.Book {
	return models.Book{
		Source:    row.Source,
		URL:       row.URL,
		Name:      row.Name,
		Image:     row.ImageURL,
		InLibrary: row.InLibrary,
	}
}

func rowFromBook(b models.Book) database.BookRow {
	return database.BookRow{
		Source:    b.Source,
		URL:       b.URL,
		Name:      b.Name,
		ImageURL:  b.Image,
		InLibrary: b.InLibrary,
	}
}
