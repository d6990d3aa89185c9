package database

// BookRow is the persisted form of a book. URL is the canonical identity;
// ImageURL stores the empty string as the "no image" placeholder.
type BookRow struct {
	Source    string `gorm:"column:source"`
	URL       string `gorm:"column:url;primaryKey"`
	Name      string `gorm:"column:name"`
	ImageURL  string `gorm:"column:image_url"`
	InLibrary bool   `gorm:"column:in_library"`
}

// TableName overrides the GORM default.
func (BookRow) TableName() string {
	return "books"
}

// ChapterRow is the persisted form of a discovered chapter.
type ChapterRow struct {
	ID          uint   `gorm:"column:id;primaryKey"`
	BookURL     string `gorm:"column:book_url;index"`
	Name        string `gorm:"column:name"`
	ChapterURL  string `gorm:"column:chapter_url"`
	ReleaseDate string `gorm:"column:release_date"`
}

// TableName overrides the GORM default.
func (ChapterRow) TableName() string {
	return "chapters"
}

// ThumbnailRow holds the cover image bytes for one book. One row per book URL.
type ThumbnailRow struct {
	BookURL   string `gorm:"column:book_url;primaryKey"`
	ImageData []byte `gorm:"column:image_data"`
}

// TableName overrides the GORM default.
func (ThumbnailRow) TableName() string {
	return "thumbnails"
}
