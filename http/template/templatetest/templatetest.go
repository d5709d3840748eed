/*
Package templatetest mocks the fs.FS a template.Parser reads,
so tests render pages without a testdata/ directory.

Mocked files shadow the embedded pages of the same name,
letting a test replace e.g. template.FormTmpl with a smaller page.
*/
package templatetest

import (
	"bytes"
	"io/fs"
	"path"
	"time"

	"github.com/xy-planning-network/trailhead/http/template"
)

// NewParser constructs a template.Parser with the mocked files.
func NewParser(tmpls ...FileMocker) template.Parser {
	return template.NewParser(template.WithFS(NewMockFS(tmpls...)))
}

// A FileMocker is both a file and its description.
type FileMocker interface {
	fs.File
	fs.FileInfo
}

// MockFS is a flat set of files, looked up by their full name.
type MockFS []FileMocker

func NewMockFS(tmpls ...FileMocker) fs.FS { return append(MockFS{}, tmpls...) }

// Glob matches pattern's base name against each file's base name, ignoring directories.
//
// "tmpl/*.tmpl" thus matches both "tmpl/form.tmpl" and "other/form.tmpl".
func (mfs MockFS) Glob(pattern string) ([]string, error) {
	pattern = path.Base(pattern)

	matches := []string{}
	for _, f := range mfs {
		matched, err := path.Match(pattern, path.Base(f.Name()))
		if err != nil {
			return nil, err
		}

		if matched {
			matches = append(matches, f.Name())
		}
	}

	return matches, nil
}

// Open returns a fresh reader over the file named name.
func (mfs MockFS) Open(name string) (fs.File, error) {
	for _, f := range mfs {
		if f.Name() != name {
			continue
		}

		if mf, ok := f.(*MockFile); ok {
			return mf.reopen(), nil
		}

		return f, nil
	}

	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// A MockFile is a regular file held in memory.
type MockFile struct {
	*bytes.Reader

	data []byte
	name string
}

func NewMockFile(name string, data []byte) FileMocker {
	return &MockFile{Reader: bytes.NewReader(data), data: data, name: name}
}

func (m *MockFile) reopen() *MockFile { return NewMockFile(m.name, m.data).(*MockFile) }

func (m *MockFile) Close() error               { return nil }
func (m *MockFile) Name() string               { return m.name }
func (m *MockFile) IsDir() bool                { return false }
func (m *MockFile) Mode() fs.FileMode          { return 0o444 }
func (m *MockFile) ModTime() time.Time         { return time.Time{} }
func (m *MockFile) Size() int64                { return int64(len(m.data)) }
func (m *MockFile) Stat() (fs.FileInfo, error) { return m, nil }
func (m *MockFile) Sys() any                   { return nil }
