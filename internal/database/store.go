package database

import (
	"gorm.io/gorm/clause"

	"github.com/shelfkeeper/shelfkeeper/internal/errs"
)

// UpsertBook inserts the row or, if a row with the same URL exists, overwrites
// every field. No merging.
func (s *Store) UpsertBook(row BookRow) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return errs.E(errs.StorageQuery, "database.UpsertBook", err)
	}
	return nil
}

// BookByURL fetches one book row. Absence is reported via the bool, not an
// error.
func (s *Store) BookByURL(url string) (BookRow, bool, error) {
	var row BookRow
	err := s.db.Where("url = ?", url).First(&row).Error
	if err != nil {
		if notFound(err) {
			return BookRow{}, false, nil
		}
		return BookRow{}, false, errs.E(errs.StorageQuery, "database.BookByURL", err)
	}
	return row, true, nil
}

// LibraryBooks returns all rows flagged as in the library.
func (s *Store) LibraryBooks() ([]BookRow, error) {
	var rows []BookRow
	if err := s.db.Where("in_library = ?", true).Find(&rows).Error; err != nil {
		return nil, errs.E(errs.StorageQuery, "database.LibraryBooks", err)
	}
	return rows, nil
}

// BookCount returns the total number of book rows.
func (s *Store) BookCount() (int64, error) {
	var n int64
	if err := s.db.Model(&BookRow{}).Count(&n).Error; err != nil {
		return 0, errs.E(errs.StorageQuery, "database.BookCount", err)
	}
	return n, nil
}

// UpsertThumbnail stores the cover bytes for a book URL, replacing any
// existing blob.
func (s *Store) UpsertThumbnail(bookURL string, data []byte) error {
	row := ThumbnailRow{BookURL: bookURL, ImageData: data}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "book_url"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return errs.E(errs.StorageQuery, "database.UpsertThumbnail", err)
	}
	return nil
}

// ThumbnailByURL fetches the stored cover bytes for a book URL.
func (s *Store) ThumbnailByURL(bookURL string) ([]byte, bool, error) {
	var row ThumbnailRow
	err := s.db.Where("book_url = ?", bookURL).First(&row).Error
	if err != nil {
		if notFound(err) {
			return nil, false, nil
		}
		return nil, false, errs.E(errs.StorageQuery, "database.ThumbnailByURL", err)
	}
	return row.ImageData, true, nil
}

// InsertChapter records one discovered chapter. Chapters are append-only;
// the scrape protocol discovers them through "next" links, not a bulk listing.
func (s *Store) InsertChapter(row ChapterRow) error {
	if err := s.db.Create(&row).Error; err != nil {
		return errs.E(errs.StorageQuery, "database.InsertChapter", err)
	}
	return nil
}

// ChaptersByBook returns recorded chapters for a book in insertion order.
func (s *Store) ChaptersByBook(bookURL string) ([]ChapterRow, error) {
	var rows []ChapterRow
	if err := s.db.Where("book_url = ?", bookURL).Order("id").Find(&rows).Error; err != nil {
		return nil, errs.E(errs.StorageQuery, "database.ChaptersByBook", err)
	}
	return rows, nil
}
