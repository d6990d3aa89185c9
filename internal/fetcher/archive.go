package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shelfkeeper/shelfkeeper/internal/errs"
	"github.com/shelfkeeper/shelfkeeper/internal/models"
)

// ArchiveBook walks the chapter chain starting at startURL, downloading each
// chapter body into one text file per chapter under dir. The provider exposes
// no bulk chapter index, only a "next chapter" link per page, so the walk is
// strictly sequential. Every visited chapter is recorded in the store. Returns
// the number of chapters archived; the walk stops at the chain's end, on the
// first failure, or when ctx is cancelled.
func (f *Fetcher) ArchiveBook(ctx context.Context, book models.Book, startURL, dir string) (int, error) {
	if startURL == "" {
		return 0, errs.Errorf(errs.Precondition, "fetcher.ArchiveBook", "no starting chapter url")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create archive directory: %w", err)
	}

	count := 0
	url := startURL
	for url != "" {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		chapter, next, err := f.src.ScrapeChapter(ctx, url)
		if err != nil {
			return count, err
		}
		chapter.Number = count + 1

		body, err := f.src.DownloadChapter(ctx, chapter)
		if err != nil {
			return count, err
		}

		path := filepath.Join(dir, chapterFileName(chapter))
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return count, fmt.Errorf("failed to write chapter file: %w", err)
		}

		if err := f.mgr.RecordChapter(book.URL, chapter); err != nil {
			return count, err
		}

		f.log.Debug().Str("chapter", chapter.Name).Str("path", path).Msg("Chapter archived")
		count++
		url = next
	}

	return count, nil
}

// chapterFileName builds a stable, filesystem-safe file name for a chapter.
func chapterFileName(ch models.Chapter) string {
	name := ch.Name
	if name == "" {
		name = "chapter"
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", "*", "", "?", "", "\"", "", "<", "", ">", "", "|", "")
	name = strings.TrimSpace(replacer.Replace(name))
	return fmt.Sprintf("%04d-%s.txt", ch.Number, name)
}
