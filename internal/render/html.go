// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"sitesmith/internal/markdown"
)

//go:embed templates/*.html
var templateFS embed.FS

// HTMLWriter writes a rendered Page as a standalone HTML document.
// It is safe for concurrent use.
type HTMLWriter struct {
	tmpl *template.Template
}

// NewHTML parses the embedded page templates.
func NewHTML() (*HTMLWriter, error) {
	funcs := template.FuncMap{
		// markdown renders section content. Raw HTML in the source is dropped.
		"markdown": func(s string) template.HTML {
			out, err := markdown.ToHTML(s)
			if err != nil {
				return template.HTML("<p>" + template.HTMLEscapeString(s) + "</p>")
			}
			return template.HTML(out)
		},
		"safeImage": safeImage,
		"styleVars": styleVars,
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
		"gridCols": func(n int) template.CSS {
			if n < 1 {
				n = 1
			}
			return template.CSS(fmt.Sprintf("grid-template-columns:repeat(%d,minmax(0,1fr))", n))
		},
	}

	tmpl, err := template.New("page.html").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	return &HTMLWriter{tmpl: tmpl}, nil
}

// Write executes the page template into w.
func (h *HTMLWriter) Write(w io.Writer, p Page) error {
	if err := h.tmpl.ExecuteTemplate(w, "page.html", p); err != nil {
		return fmt.Errorf("render page %q: %w", p.Title, err)
	}
	return nil
}

// Bytes renders p into a buffer. A failed render returns no partial output.
func (h *HTMLWriter) Bytes(p Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := h.Write(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// safeImage passes http(s) URLs and inline image data URIs through to src
// attributes and blanks everything else.
func safeImage(u string) template.URL {
	u = strings.TrimSpace(u)
	lower := strings.ToLower(u)
	switch {
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return template.URL(u)
	case strings.HasPrefix(lower, "data:image/") && !strings.HasPrefix(lower, "data:image/svg"):
		return template.URL(u)
	}
	return ""
}

// styleVars emits the palette as CSS custom properties. Palette colors are
// validated hex values and the font is reduced to a safe character set by
// Render, so the result is trusted CSS.
func styleVars(p Palette) template.CSS {
	return template.CSS(fmt.Sprintf(
		"--primary:%s;--secondary:%s;--surface:%s;--text:%s;--muted:%s;--font:'%s',sans-serif;",
		p.Primary, p.Secondary, p.Surface, p.Text, p.Muted, p.Font,
	))
}
