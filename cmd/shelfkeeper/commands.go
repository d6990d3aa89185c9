package main

import (
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/shelfkeeper/shelfkeeper/internal/config"
	"github.com/shelfkeeper/shelfkeeper/internal/fetcher"
	"github.com/shelfkeeper/shelfkeeper/internal/logger"
	"github.com/shelfkeeper/shelfkeeper/internal/manager"
	"github.com/shelfkeeper/shelfkeeper/internal/models"
	"github.com/shelfkeeper/shelfkeeper/internal/source"
)

// app bundles the wired-up components behind every command.
type app struct {
	cfg *config.Config
	mgr *manager.Manager
	f   *fetcher.Fetcher
}

// bootstrap loads configuration, initializes logging and storage, and wires
// the configured provider to a fetcher. Boot order matters: the logger must
// be up before the manager logs its init.
func bootstrap(c *cli.Context) (*app, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if v := c.String("data-dir"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v := c.String("source"); v != "" {
		cfg.Fetch.Source = v
	}

	logger.Setup(logger.Config{
		Level:  cfg.Logging.Level,
		Format: logger.ParseLogFormat(cfg.Logging.Format),
	})

	mgr := manager.New()
	if errors := mgr.Init(cfg.Storage.Dir); len(errors) > 0 {
		for _, err := range errors {
			logger.Get().Error().Err(err).Msg("Storage init failed")
		}
		return nil, fmt.Errorf("failed to initialize storage in %s", cfg.Storage.Dir)
	}

	src, err := source.Create(cfg.Fetch.Source, source.Options{
		HTTPClient: &http.Client{Timeout: cfg.Fetch.Timeout.Std()},
		UserAgent:  cfg.Fetch.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg: cfg,
		mgr: mgr,
		f:   fetcher.New(src, mgr, cfg.Fetch.Parallelism),
	}, nil
}

func runSearch(c *cli.Context) error {
	term := c.Args().First()
	if term == "" {
		return cli.Exit("usage: shelfkeeper search TERM", 2)
	}

	a, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer a.mgr.Close()

	books, err := a.f.Search(c.Context, term)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, b := range books {
		fmt.Printf("%2d. %s\n    %s\n", i+1, formatBook(b), b.URL)
	}
	return nil
}

func runAdd(c *cli.Context) error {
	url := c.Args().First()
	if url == "" {
		return cli.Exit("usage: shelfkeeper add URL", 2)
	}

	a, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer a.mgr.Close()

	book, err := a.f.AddToLibrary(c.Context, url)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s\n", formatBook(book))
	return nil
}

func runRemove(c *cli.Context) error {
	url := c.Args().First()
	if url == "" {
		return cli.Exit("usage: shelfkeeper remove URL", 2)
	}

	a, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer a.mgr.Close()

	book, err := a.f.RemoveFromLibrary(url)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", formatBook(book))
	return nil
}

func runLibrary(c *cli.Context) error {
	a, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer a.mgr.Close()

	books, err := a.mgr.LibraryBooks()
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Println("Library is empty.")
		return nil
	}

	for _, b := range books {
		fmt.Printf("- %s\n  %s\n", formatBook(b), b.URL)
	}
	return nil
}

func runRefresh(c *cli.Context) error {
	url := c.Args().First()
	if url == "" {
		return cli.Exit("usage: shelfkeeper refresh URL", 2)
	}

	a, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer a.mgr.Close()

	book, err := a.f.Refresh(c.Context, url)
	if err != nil {
		return err
	}
	fmt.Printf("Refreshed %s\n", formatBook(book))
	return nil
}

func runArchive(c *cli.Context) error {
	url := c.Args().First()
	if url == "" {
		return cli.Exit("usage: shelfkeeper archive BOOK_URL --start CHAPTER_URL", 2)
	}

	a, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer a.mgr.Close()

	book, found, err := a.mgr.GetBook(url)
	if err != nil {
		return err
	}
	if !found {
		if book, err = a.f.Refresh(c.Context, url); err != nil {
			return err
		}
	}

	count, err := a.f.ArchiveBook(c.Context, book, c.String("start"), c.String("out"))
	if count > 0 {
		fmt.Printf("Archived %d chapter(s) of %q to %s\n", count, book.Name, c.String("out"))
	}
	return err
}

func runReset(c *cli.Context) error {
	a, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer a.mgr.Close()

	if err := a.mgr.Reset(); err != nil {
		return err
	}
	fmt.Println("Storage cleared.")
	return nil
}

func formatBook(b models.Book) string {
	marker := ""
	if b.InLibrary {
		marker = " [library]"
	}
	return fmt.Sprintf("%s%s", b.Name, marker)
}
