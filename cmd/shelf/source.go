package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fwojciec/shelf"
)

// Run executes the source import command.
func (c *SourceImportCmd) Run(deps *Dependencies) error {
	data, err := c.read(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	sources, err := shelf.ParseSources(data)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	if err := deps.Sources.UpsertSources(deps.Ctx, sources); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Imported %d sources\n", len(sources))
	return nil
}

func (c *SourceImportCmd) read(deps *Dependencies) ([]byte, error) {
	if strings.HasPrefix(c.Location, "http://") || strings.HasPrefix(c.Location, "https://") {
		if deps.Fetcher == nil {
			return nil, shelf.Errorf(shelf.EINVALID, "no fetcher configured")
		}
		body, err := deps.Fetcher.Fetch(deps.Ctx, c.Location, nil)
		if err != nil {
			return nil, err
		}
		return []byte(body), nil
	}

	data, err := os.ReadFile(c.Location)
	if err != nil {
		return nil, shelf.Errorf(shelf.EINVALID, "read %s: %v", c.Location, err)
	}
	return data, nil
}

// Run executes the source list command.
func (c *SourceListCmd) Run(deps *Dependencies) error {
	filter := shelf.SourceFilter{}
	if c.Group != "" {
		filter.Group = &c.Group
	}

	sources, err := deps.Sources.FindSources(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	if len(sources) == 0 {
		fmt.Fprintln(deps.Stdout, "No sources found. Use 'shelf source import' to add some.")
		return nil
	}

	for _, s := range sources {
		state := "enabled"
		if !s.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(deps.Stdout, "%4d  %-8s  %s  %s\n", s.Weight, state, s.Name, s.URL)
	}
	return nil
}

// Run executes the source enable command.
func (c *SourceEnableCmd) Run(deps *Dependencies) error {
	return setSourceEnabled(deps, c.URL, true)
}

// Run executes the source disable command.
func (c *SourceDisableCmd) Run(deps *Dependencies) error {
	return setSourceEnabled(deps, c.URL, false)
}

func setSourceEnabled(deps *Dependencies, url string, enabled bool) error {
	src, err := deps.Sources.FindSourceByURL(deps.Ctx, url)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	if _, err := deps.Sources.UpdateSource(deps.Ctx, src.ID, shelf.SourceUpdate{Enabled: &enabled}); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	state := "Enabled"
	if !enabled {
		state = "Disabled"
	}
	fmt.Fprintf(deps.Stdout, "%s source %q\n", state, src.Name)
	return nil
}

// Run executes the source delete command.
func (c *SourceDeleteCmd) Run(deps *Dependencies) error {
	src, err := deps.Sources.FindSourceByURL(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	if err := deps.Sources.DeleteSource(deps.Ctx, src.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shelf.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted source %q\n", src.Name)
	return nil
}
