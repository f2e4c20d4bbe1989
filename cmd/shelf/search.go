package main

import (
	"fmt"

	"github.com/fwojciec/shelf"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	results, err := deps.Searcher.Search(deps.Ctx, c.Keyword)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintf(deps.Stdout, "No results for %q\n", c.Keyword)
		return nil
	}

	for _, r := range results {
		author := r.Author
		if author == "" {
			author = "-"
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  [%s]\n", r.Name, author, r.SourceName)
		fmt.Fprintf(deps.Stdout, "    add with: shelf add %s %s\n", r.BookURL, r.SourceURL)
	}
	return nil
}
