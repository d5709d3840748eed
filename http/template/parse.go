package template

import (
	"errors"
	"fmt"
	html "html/template"
	"io/fs"
	"os"
	"path"
	"sync"

	"github.com/xy-planning-network/trailhead"
)

// ErrNoFiles is returned parsing no file paths.
var ErrNoFiles = errors.New("no files provided")

// Parser is the interface for parsing HTML templates with the functions provided.
type Parser interface {
	AddFn(name string, fn any)
	Parse(fps ...string) (*html.Template, error)
}

// Parse implements Parser with a focus on utilizing embedded HTML templates through fs.FS.
//
// Files are looked up first in the configured filesystem,
// then among the templates embedded in this package.
type Parse struct {
	fs  fs.FS
	fns html.FuncMap
	mu  sync.RWMutex
}

// A ParserOptFn configures a *Parse when constructing it with NewParser.
type ParserOptFn func(*Parse)

// WithFn makes fn available to templates as name.
func WithFn(name string, fn any) ParserOptFn {
	return func(p *Parse) { p.AddFn(name, fn) }
}

// WithFS sets the filesystem searched for templates before the embedded ones.
func WithFS(filesys fs.FS) ParserOptFn {
	return func(p *Parse) { p.fs = filesys }
}

// WithDir searches dir for templates before the embedded ones.
// An empty dir is ignored.
func WithDir(dir string) ParserOptFn {
	return func(p *Parse) {
		if dir == "" {
			return
		}

		p.fs = os.DirFS(dir)
	}
}

// NewParser constructs a Parse with the provided functional options.
//
// Without WithFS, the configured filesystem is the current working directory.
// The env, nonce and rootUrl functions are always available; WithFn replaces them.
func NewParser(opts ...ParserOptFn) Parser {
	p := &Parse{fns: make(html.FuncMap)}
	p.AddFn(Env(trailhead.Development))
	p.AddFn(Nonce())
	p.AddFn(RootUrl(nil))

	for _, opt := range opts {
		opt(p)
	}

	userFS := p.fs
	if userFS == nil {
		userFS = os.DirFS(".")
	}

	p.fs = &mergeFS{
		cache:   make(map[string]func(string) (fs.File, error)),
		userDir: userFS,
		pkgDir:  pkgFS,
	}

	return p
}

// Parse parses files found in the *Parse.fs with those functions provided previously.
// Empty file paths are skipped.
func (p *Parse) Parse(fps ...string) (*html.Template, error) {
	files := make([]string, 0, len(fps))
	for _, fp := range fps {
		if fp != "" {
			files = append(files, fp)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w", ErrNoFiles)
	}

	p.mu.RLock()
	fns := make(html.FuncMap, len(p.fns))
	for k, v := range p.fns {
		fns[k] = v
	}
	p.mu.RUnlock()

	return html.New(path.Base(files[0])).Funcs(fns).ParseFS(p.fs, files...)
}
