package main_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/alecthomas/kong"
	main "github.com/fwojciec/shelf/cmd/shelf"
	shelfhttp "github.com/fwojciec/shelf/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var commands = []string{"source", "search", "add", "books", "toc", "read", "progress", "refresh", "export", "delete"}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	helpOutput := stdout.String()
	for _, cmd := range commands {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
}

func newTestMain(t *testing.T, dir string) *main.Main {
	t.Helper()
	m := main.NewMain()
	m.DBPath = filepath.Join(dir, "shelf.db")
	m.ConfigPath = filepath.Join(dir, "missing.yaml")
	m.Fetcher = shelfhttp.NewFetcher()
	return m
}

func TestMain_Run_HelpShowsKongOutput(t *testing.T) {
	t.Parallel()

	m := newTestMain(t, t.TempDir())
	stdout := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	for _, cmd := range commands {
		assert.Contains(t, stdout.String(), cmd)
	}
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	m := newTestMain(t, t.TempDir())
	err := m.Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

	assert.ErrorContains(t, err, "no command specified")
}

func TestMain_Run_EndToEnd(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "dragon" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<ul><li class="hit"><a href="/book/1">Dragon Road</a><span>Ann</span></li></ul>`)
	})
	mux.HandleFunc("/book/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<h1>Dragon Road</h1><span class="author">Ann</span>
<ol><li><a href="/c/1">The Gate</a></li><li><a href="/c/2">The Road</a></li></ol>`)
	})
	mux.HandleFunc("/c/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div id="text"><p>The <strong>gate</strong> opened.</p></div>`)
	})
	mux.HandleFunc("/c/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div id="text"><p>Onward.</p></div>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	sources := fmt.Sprintf(`[
  {"bookSourceUrl":%[1]q,"bookSourceName":"Test Novels","weight":5,
   "searchUrl":"/search?q={{key}}&page={{page}}",
   "ruleSearch":{"bookList":"li.hit","name":"a","bookUrl":"a","author":"span"},
   "ruleBookInfo":"{\"name\":\"h1\",\"author\":\".author\"}",
   "ruleToc":{"chapterList":"ol li","chapterName":"a","chapterUrl":"a"},
   "ruleContent":{"content":"#text"}},
  {"bookSourceUrl":"http://127.0.0.1:1","bookSourceName":"Dead","enabled":false}
]`, srv.URL)
	sourcesPath := filepath.Join(dir, "sources.json")
	require.NoError(t, os.WriteFile(sourcesPath, []byte(sources), 0o644))

	run := func(args ...string) string {
		t.Helper()
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		err := newTestMain(t, dir).Run(context.Background(), args, stdout, stderr)
		require.NoError(t, err, "shelf %v: %s", args, stderr.String())
		return stdout.String()
	}

	assert.Contains(t, run("source", "import", sourcesPath), "Imported 2 sources")

	list := run("source", "list")
	assert.Contains(t, list, "Test Novels")
	assert.Contains(t, list, "disabled")

	found := run("search", "dragon")
	assert.Contains(t, found, "Dragon Road")
	assert.Contains(t, found, "[Test Novels]")
	assert.Contains(t, found, srv.URL+"/book/1")

	added := run("add", srv.URL+"/book/1", srv.URL)
	assert.Contains(t, added, `Added book "Dragon Road"`)
	assert.Contains(t, added, "2 chapters")
	m := regexp.MustCompile(`\(([^)]+)\)`).FindStringSubmatch(added)
	require.Len(t, m, 2)
	bookID := m[1]

	toc := run("toc", bookID)
	assert.Contains(t, toc, "The Gate")
	assert.Contains(t, toc, "The Road")

	assert.Contains(t, run("read", bookID, "0"), "<p>The <strong>gate</strong> opened.</p>")
	assert.Contains(t, run("read", bookID, "0", "--markdown"), "The **gate** opened.")

	assert.Contains(t, run("progress", bookID, "1", "40"), `at "The Road"`)
	assert.Contains(t, run("books"), "2/2")

	exportDir := filepath.Join(dir, "export")
	assert.Contains(t, run("export", bookID, "--dir", exportDir), "Exported 2 chapters")
	exported, err := os.ReadFile(filepath.Join(exportDir, "dragon-road", "0001-the-gate.md"))
	require.NoError(t, err)
	assert.Contains(t, string(exported), "book: Dragon Road")
	assert.Contains(t, string(exported), "The **gate** opened.")

	assert.Contains(t, run("delete", bookID, "--force"), "Deleted book")
	assert.Contains(t, run("books"), "No books found")
}
