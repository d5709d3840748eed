package template_test

import (
	"bytes"
	html "html/template"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead/http/template"
	tt "github.com/xy-planning-network/trailhead/http/template/templatetest"
)

type testFn func(*testing.T, *html.Template, error)

func TestParse(t *testing.T) {
	stub := []byte("<!DOCTYPE html>\n<html></html>")
	tcs := []struct {
		name   string
		parser template.Parser
		fns    map[string]any
		fps    []string
		assert testFn
	}{
		{
			name:   "Zero-Value",
			parser: tt.NewParser(),
			fps:    []string{},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.ErrorIs(t, err, template.ErrNoFiles)
				require.Nil(t, tmpl)
			},
		},
		{
			name:   "Empty-String",
			parser: tt.NewParser(tt.NewMockFile("", nil)),
			fps:    []string{"", ""},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.ErrorIs(t, err, template.ErrNoFiles)
				require.Nil(t, tmpl)
			},
		},
		{
			name:   "No-File",
			parser: tt.NewParser(tt.NewMockFile("", nil)),
			fps:    []string{"example.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.NotNil(t, err)
				require.Nil(t, tmpl)
			},
		},
		{
			name:   "Not-Empty-File",
			parser: tt.NewParser(tt.NewMockFile("example.tmpl", stub)),
			fps:    []string{"", "example.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.Nil(t, err)
				require.Equal(t, "example.tmpl", tmpl.Name())

				b := new(bytes.Buffer)
				require.Nil(t, tmpl.Execute(b, nil))
				require.Equal(t, stub, b.Bytes())
			},
		},
		{
			name: "Many-Files",
			parser: tt.NewParser(
				tt.NewMockFile("example.tmpl", []byte(`<!DOCTYPE html><html>{{ template "test" }}</html>`)),
				tt.NewMockFile("test.tmpl", []byte(`{{ define "test" }}<p>sup</p>{{ end }}`)),
			),
			fps: []string{"example.tmpl", "test.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.Nil(t, err)

				b := new(bytes.Buffer)
				require.Nil(t, tmpl.ExecuteTemplate(b, "example.tmpl", nil))
				require.Equal(t, "<!DOCTYPE html><html><p>sup</p></html>", b.String())
			},
		},
		{
			name:   "Add-Fns",
			parser: tt.NewParser(tt.NewMockFile("example.tmpl", []byte(`<html>{{ test }} {{ second "cool" }}</html>`))),
			fns: map[string]any{
				"test":   func() string { return "test" },
				"second": func(s string) string { return s },
			},
			fps: []string{"example.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.Nil(t, err)

				b := new(bytes.Buffer)
				require.Nil(t, tmpl.Execute(b, nil))
				require.Equal(t, "<html>test cool</html>", b.String())
			},
		},
		{
			name:   "Default-Fns",
			parser: tt.NewParser(tt.NewMockFile("example.tmpl", []byte(`{{ env }}|{{ rootUrl }}`))),
			fps:    []string{"example.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.Nil(t, err)

				b := new(bytes.Buffer)
				require.Nil(t, tmpl.Execute(b, nil))
				require.Equal(t, "DEVELOPMENT|", b.String())
			},
		},
		{
			name: "User-Overrides-Embedded",
			parser: tt.NewParser(
				tt.NewMockFile(template.ErrTmpl, []byte(`overridden`)),
			),
			fps: []string{template.ErrTmpl},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.Nil(t, err)

				b := new(bytes.Buffer)
				require.Nil(t, tmpl.Execute(b, nil))
				require.Equal(t, "overridden", b.String())
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.fns {
				tc.parser.AddFn(k, v)
			}

			tmpl, err := tc.parser.Parse(tc.fps...)
			tc.assert(t, tmpl, err)
		})
	}
}

func TestParseEmbedded(t *testing.T) {
	for _, tc := range []struct {
		name     string
		content  string
		data     any
		contains []string
	}{
		{
			name:     "Loading",
			content:  template.LoadingTmpl,
			contains: []string{"Loading...", `http-equiv="refresh"`},
		},
		{
			name:     "Authenticated",
			content:  template.AuthenticatedTmpl,
			data:     struct{ UserEmail string }{"husserl@example.com"},
			contains: []string{"Welcome back", "Logged in with", "husserl@example.com", "/sign-out"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			p := template.NewParser()

			// Act
			tmpl, err := p.Parse(template.LayoutTmpl, tc.content)

			// Assert
			require.Nil(t, err)

			b := new(bytes.Buffer)
			require.Nil(t, tmpl.ExecuteTemplate(b, "layout.tmpl", map[string]any{"Data": tc.data}))
			for _, c := range tc.contains {
				require.Contains(t, b.String(), c)
			}
		})
	}
}

func TestParseWithDir(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	require.Nil(t, os.MkdirAll(filepath.Join(dir, "tmpl"), 0o755))
	require.Nil(t, os.WriteFile(filepath.Join(dir, template.MaintenanceTmpl), []byte("back at {{ .Hour }}"), 0o644))

	p := template.NewParser(template.WithDir(dir))

	// Act
	tmpl, err := p.Parse(template.MaintenanceTmpl)

	// Assert
	require.Nil(t, err)

	b := new(bytes.Buffer)
	require.Nil(t, tmpl.Execute(b, map[string]int{"Hour": 9}))
	require.Equal(t, "back at 9", b.String())

	// Act: pages missing from dir fall back to the embedded ones
	tmpl, err = p.Parse(template.LayoutTmpl, template.LoadingTmpl)

	// Assert
	require.Nil(t, err)
	require.NotNil(t, tmpl.Lookup("content"))
}
