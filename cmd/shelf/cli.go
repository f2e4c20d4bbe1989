package main

import (
	"context"
	"io"

	"github.com/fwojciec/shelf"
	"github.com/fwojciec/shelf/catalog"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Sources   shelf.SourceService
	Books     shelf.BookService
	Chapters  shelf.ChapterService
	Fetcher   shelf.Fetcher
	Searcher  shelf.Searcher
	Catalog   *catalog.Service
	Converter shelf.Converter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config string `short:"c" type:"path" help:"Config file path (default ~/.shelf/config.yaml, or SHELF_CONFIG)"`

	Source   SourceCmd   `cmd:"" help:"Manage book sources"`
	Search   SearchCmd   `cmd:"" help:"Search every enabled source"`
	Add      AddCmd      `cmd:"" help:"Add a book from a source"`
	Books    BooksCmd    `cmd:"" help:"List stored books"`
	Toc      TocCmd      `cmd:"" help:"Show a book's table of contents"`
	Read     ReadCmd     `cmd:"" help:"Print a chapter, fetching it on first read"`
	Progress ProgressCmd `cmd:"" help:"Record reading progress"`
	Refresh  RefreshCmd  `cmd:"" help:"Reload a book's table of contents"`
	Export   ExportCmd   `cmd:"" help:"Export a book as Markdown files"`
	Delete   DeleteCmd   `cmd:"" help:"Delete a book and its chapters"`
}

// SourceCmd groups the source subcommands.
type SourceCmd struct {
	Import  SourceImportCmd  `cmd:"" help:"Import sources from a JSON file or URL"`
	List    SourceListCmd    `cmd:"" help:"List sources by descending weight"`
	Enable  SourceEnableCmd  `cmd:"" help:"Enable a source"`
	Disable SourceDisableCmd `cmd:"" help:"Disable a source"`
	Delete  SourceDeleteCmd  `cmd:"" help:"Delete a source"`
}

// SourceImportCmd is the "source import" subcommand.
type SourceImportCmd struct {
	Location string `arg:"" help:"Path or http(s) URL of a source document"`
}

// SourceListCmd is the "source list" subcommand.
type SourceListCmd struct {
	Group string `short:"g" help:"Only list sources in this group"`
}

// SourceEnableCmd is the "source enable" subcommand.
type SourceEnableCmd struct {
	URL string `arg:"" help:"Source URL"`
}

// SourceDisableCmd is the "source disable" subcommand.
type SourceDisableCmd struct {
	URL string `arg:"" help:"Source URL"`
}

// SourceDeleteCmd is the "source delete" subcommand.
type SourceDeleteCmd struct {
	URL string `arg:"" help:"Source URL"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Keyword string `arg:"" help:"Title or author to search for"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	BookURL   string `arg:"" help:"Book detail page URL"`
	SourceURL string `arg:"" help:"URL of the source the book belongs to"`
}

// BooksCmd is the "books" subcommand.
type BooksCmd struct{}

// TocCmd is the "toc" subcommand.
type TocCmd struct {
	BookID string `arg:"" help:"Book ID"`
}

// ReadCmd is the "read" subcommand.
type ReadCmd struct {
	BookID   string `arg:"" help:"Book ID"`
	Index    int    `arg:"" help:"Chapter index"`
	Markdown bool   `short:"m" help:"Render the chapter as Markdown"`
}

// ProgressCmd is the "progress" subcommand.
type ProgressCmd struct {
	BookID string `arg:"" help:"Book ID"`
	Index  int    `arg:"" help:"Chapter index"`
	Pos    int    `arg:"" optional:"" help:"Offset within the chapter"`
}

// RefreshCmd is the "refresh" subcommand.
type RefreshCmd struct {
	BookID string `arg:"" help:"Book ID"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	BookID string `arg:"" help:"Book ID"`
	Dir    string `short:"d" default:"." type:"path" help:"Directory the book folder is written to"`
	HTML   bool   `help:"Keep chapter HTML instead of converting to Markdown"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	BookID string `arg:"" help:"Book ID"`
	Force  bool   `help:"Confirm deletion"`
}
