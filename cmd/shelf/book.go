package main

import (
	"fmt"

	"github.com/fwojciec/shelf"
	"github.com/fwojciec/shelf/fs"
)

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	book, err := deps.Catalog.AddBook(deps.Ctx, c.BookURL, c.SourceURL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added book %q (%s), %d chapters\n", book.Name, book.ID, book.TotalChapters)
	return nil
}

// Run executes the books command.
func (c *BooksCmd) Run(deps *Dependencies) error {
	books, err := deps.Books.FindBooks(deps.Ctx, shelf.BookFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	if len(books) == 0 {
		fmt.Fprintln(deps.Stdout, "No books found. Use 'shelf search' and 'shelf add' to add one.")
		return nil
	}

	for _, b := range books {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %d/%d (%d unread)\n",
			b.ID, b.Name, b.Author, b.ChapterIndex+1, b.TotalChapters, b.UnreadChapters())
	}
	return nil
}

// Run executes the toc command.
func (c *TocCmd) Run(deps *Dependencies) error {
	if _, err := deps.Books.FindBookByID(deps.Ctx, c.BookID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	chapters, err := deps.Chapters.FindChapters(deps.Ctx, shelf.ChapterFilter{BookID: c.BookID})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	if len(chapters) == 0 {
		fmt.Fprintf(deps.Stdout, "No chapters. Use 'shelf refresh %s' to reload them.\n", c.BookID)
		return nil
	}

	for _, ch := range chapters {
		marker := " "
		if ch.ContentHash != "" {
			marker = "*"
		}
		fmt.Fprintf(deps.Stdout, "%s %4d  %s\n", marker, ch.Index, ch.DisplayTitle())
	}
	return nil
}

// Run executes the read command.
func (c *ReadCmd) Run(deps *Dependencies) error {
	content, err := deps.Catalog.ChapterContent(deps.Ctx, c.BookID, c.Index)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	if c.Markdown {
		content, err = deps.Converter.Convert(content)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
			return err
		}
	}

	fmt.Fprintln(deps.Stdout, content)
	return nil
}

// Run executes the progress command.
func (c *ProgressCmd) Run(deps *Dependencies) error {
	book, err := deps.Catalog.UpdateProgress(deps.Ctx, c.BookID, c.Index, c.Pos)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s: at %q\n", book.Name, book.ChapterTitle)
	return nil
}

// Run executes the refresh command.
func (c *RefreshCmd) Run(deps *Dependencies) error {
	book, err := deps.Catalog.RefreshChapters(deps.Ctx, c.BookID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Refreshed %q, %d chapters\n", book.Name, book.TotalChapters)
	return nil
}

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	book, err := deps.Books.FindBookByID(deps.Ctx, c.BookID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	var conv shelf.Converter
	if !c.HTML {
		conv = deps.Converter
	}

	store := fs.NewBookStore(c.Dir, fs.Slug(book.Name))
	n, err := deps.Catalog.ExportBook(deps.Ctx, book.ID, store, conv)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %d chapters to %s\n", n, store.Dir())
	return nil
}

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return shelf.Errorf(shelf.EINVALID, "use --force to confirm deletion")
	}

	book, err := deps.Books.FindBookByID(deps.Ctx, c.BookID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	if err := deps.Catalog.DeleteBook(deps.Ctx, book.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted book %q\n", book.Name)
	return nil
}
