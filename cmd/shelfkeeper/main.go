// shelfkeeper is the command-line front end for the source-backed content
// cache: it searches external providers for serialized fiction, keeps a local
// library in SQLite, and archives chapter text for offline reading.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	// Registered providers.
	_ "github.com/shelfkeeper/shelfkeeper/internal/source/royalroad"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "shelfkeeper",
		Usage:   "Search, track and archive serialized web fiction",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Override the storage directory",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Content source to use",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search the provider for books",
				ArgsUsage: "TERM",
				Action:    runSearch,
			},
			{
				Name:      "add",
				Usage:     "Add a book to the library by canonical URL",
				ArgsUsage: "URL",
				Action:    runAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove a book from the library",
				ArgsUsage: "URL",
				Action:    runRemove,
			},
			{
				Name:   "library",
				Usage:  "List the books in the library",
				Action: runLibrary,
			},
			{
				Name:      "refresh",
				Usage:     "Re-fetch a book's metadata from the provider",
				ArgsUsage: "URL",
				Action:    runRefresh,
			},
			{
				Name:      "archive",
				Usage:     "Download a book's chapters to text files, following the chapter chain",
				ArgsUsage: "BOOK_URL",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "start",
						Usage:    "URL of the first chapter to archive",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   "./books",
					},
				},
				Action: runArchive,
			},
			{
				Name:   "reset",
				Usage:  "Delete all stored data and re-create an empty database",
				Action: runReset,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
