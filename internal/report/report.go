package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	ttemplate "text/template"

	"github.com/yuin/goldmark"

	"github.com/waste-to-wealth/server/internal/agent/model"
)

var (
	//go:embed templates/result.txt.tmpl
	textTmplSrc string
	//go:embed templates/result.md.tmpl
	markdownTmplSrc string
	//go:embed templates/page.html.tmpl
	pageTmplSrc string
)

var funcs = ttemplate.FuncMap{
	"join":  strings.Join,
	"deref": deref,
	"inc":   func(i int) int { return i + 1 },
}

var (
	textTmpl     = ttemplate.Must(ttemplate.New("text").Funcs(funcs).Parse(textTmplSrc))
	markdownTmpl = ttemplate.Must(ttemplate.New("markdown").Funcs(funcs).Parse(markdownTmplSrc))
	pageTmpl     = template.Must(template.New("page").Parse(pageTmplSrc))
)

// WriteText writes a plain terminal rendering of a result.
func WriteText(w io.Writer, st model.WasteQueryState) error {
	if err := textTmpl.Execute(w, st.Shaped()); err != nil {
		return fmt.Errorf("render text report: %w", err)
	}
	return nil
}

// Markdown renders a result as a markdown document.
func Markdown(st model.WasteQueryState) (string, error) {
	var buf bytes.Buffer
	if err := markdownTmpl.Execute(&buf, st.Shaped()); err != nil {
		return "", fmt.Errorf("render markdown report: %w", err)
	}
	return buf.String(), nil
}

// HTML renders a result as a standalone HTML page. Raw HTML in model output
// is dropped by goldmark.
func HTML(st model.WasteQueryState) (string, error) {
	md, err := Markdown(st)
	if err != nil {
		return "", err
	}
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(md), &body); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}

	var page bytes.Buffer
	err = pageTmpl.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: st.Query,
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return "", fmt.Errorf("render html page: %w", err)
	}
	return page.String(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
