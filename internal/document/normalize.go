package document

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ayush/science-tutor/internal/models"
)

var (
	fenceRe      = regexp.MustCompile("(?i)```(?:html)?\\s*")
	htmlMarkerRe = regexp.MustCompile(`(?im)^[ \t]*html[ \t]*(?:\r?\n|$)`)
	tagRe        = regexp.MustCompile(`<[a-zA-Z][^>]*>`)
	fontSizeRe   = regexp.MustCompile(`(?i)font-size\s*:\s*[^;]*`)
)

// Normalize strips code fences the service may wrap the fragment in, renders
// markdown replies to HTML and forces every h1/h2 to the canonical size for
// kind.
func Normalize(kind models.DocumentKind, raw string) string {
	out := fenceRe.ReplaceAllString(raw, "")
	out = htmlMarkerRe.ReplaceAllString(out, "")
	out = strings.TrimSpace(out)

	if out != "" && !tagRe.MatchString(out) {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(out), &buf); err == nil {
			out = strings.TrimSpace(buf.String())
		}
	}
	return rewriteHeadings(out, Headings(kind))
}

// rewriteHeadings re-emits every h1/h2 start tag with the canonical size.
// Everything else is copied byte for byte.
func rewriteHeadings(src string, hs HeadingSizes) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var b strings.Builder
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				b.Write(z.Raw())
			}
			return b.String()
		}
		raw := string(z.Raw())
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			b.WriteString(raw)
			continue
		}
		tok := z.Token()
		switch tok.DataAtom {
		case atom.H1:
			b.WriteString(sizeHeading(tok, hs.H1, 700))
		case atom.H2:
			b.WriteString(sizeHeading(tok, hs.H2, 600))
		default:
			b.WriteString(raw)
		}
	}
}

// sizeHeading rewrites the first style attribute and drops any later ones,
// which browsers would ignore anyway.
func sizeHeading(tok html.Token, size, weight int) string {
	decl := fmt.Sprintf("font-size: %dpx", size)
	attrs := make([]html.Attribute, 0, len(tok.Attr)+1)
	styled := false
	for _, a := range tok.Attr {
		if !strings.EqualFold(a.Key, "style") {
			attrs = append(attrs, a)
			continue
		}
		if styled {
			continue
		}
		styled = true
		if fontSizeRe.MatchString(a.Val) {
			a.Val = fontSizeRe.ReplaceAllString(a.Val, decl)
		} else {
			style := strings.TrimRight(strings.TrimSpace(a.Val), ";")
			if style != "" {
				style += "; "
			}
			a.Val = fmt.Sprintf("%s%s; font-weight: %d;", style, decl, weight)
		}
		a.Key = "style"
		attrs = append(attrs, a)
	}
	if !styled {
		attrs = append(attrs, html.Attribute{Key: "style", Val: fmt.Sprintf("%s; font-weight: %d;", decl, weight)})
	}
	tok.Attr = attrs
	return tok.String()
}
