// Package richtext renders CMS structured text into HTML and plain text.
//
// The CMS delivers rich text as an ordered list of blocks, each carrying its
// text and a set of inline spans addressed by rune offsets. The renderer here
// is the only place that turns those blocks into markup; its output is run
// through a bluemonday policy before it reaches a template.
package richtext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	mdhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(mdhtml.WithHardWraps(), mdhtml.WithXHTML()),
	)
	sanitizer = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("span", "div", "pre")
	p.AllowAttrs("data-oembed", "data-oembed-type").OnElements("div")
	return p
}

// Span is an inline annotation over [Start, End) runes of a block's text.
type Span struct {
	Start int            `json:"start"`
	End   int            `json:"end"`
	Type  string         `json:"type"`
	Data  map[string]any `json:"data,omitempty"`
}

// Block is one structured-text element.
type Block struct {
	Type   string         `json:"type"`
	Text   string         `json:"text"`
	Spans  []Span         `json:"spans,omitempty"`
	URL    string         `json:"url,omitempty"`
	Alt    string         `json:"alt,omitempty"`
	Oembed map[string]any `json:"oembed,omitempty"`
}

// Parse decodes an untyped rich-text field (as produced by encoding/json into any).
// A nil field yields no blocks.
func Parse(raw any) ([]Block, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []Block:
		return append([]Block(nil), v...), nil
	case []any:
		buf, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("richtext: encode blocks: %w", err)
		}
		var blocks []Block
		if err := json.Unmarshal(buf, &blocks); err != nil {
			return nil, fmt.Errorf("richtext: decode blocks: %w", err)
		}
		return blocks, nil
	default:
		return nil, fmt.Errorf("richtext: expected a list of blocks, got %T", raw)
	}
}

// AsText joins the text of every block with a newline.
func AsText(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// AsHTML renders blocks to sanitized HTML.
func AsHTML(blocks []Block) template.HTML {
	var buf strings.Builder
	for i := 0; i < len(blocks); i++ {
		b := blocks[i]
		switch b.Type {
		case "list-item", "o-list-item":
			tag := "ul"
			if b.Type == "o-list-item" {
				tag = "ol"
			}
			buf.WriteString("<" + tag + ">")
			for ; i < len(blocks) && blocks[i].Type == b.Type; i++ {
				buf.WriteString("<li>" + renderInline(blocks[i]) + "</li>")
			}
			i--
			buf.WriteString("</" + tag + ">")
		case "heading1", "heading2", "heading3", "heading4", "heading5", "heading6":
			tag := "h" + strings.TrimPrefix(b.Type, "heading")
			buf.WriteString("<" + tag + ">" + renderInline(b) + "</" + tag + ">")
		case "preformatted":
			buf.WriteString("<pre>" + renderInline(b) + "</pre>")
		case "image":
			buf.WriteString(`<p><img src="` + html.EscapeString(b.URL) + `" alt="` + html.EscapeString(b.Alt) + `" /></p>`)
		case "embed":
			buf.WriteString(renderEmbed(b))
		default:
			buf.WriteString("<p>" + renderInline(b) + "</p>")
		}
	}
	return template.HTML(sanitizer.Sanitize(buf.String()))
}

// Markdown renders trusted site copy (footer, description) written in markdown.
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes())), nil
}

func renderEmbed(b Block) string {
	embedURL, _ := b.Oembed["embed_url"].(string)
	embedType, _ := b.Oembed["type"].(string)
	markup, _ := b.Oembed["html"].(string)
	return `<div data-oembed="` + html.EscapeString(embedURL) + `" data-oembed-type="` + html.EscapeString(embedType) + `">` + markup + `</div>`
}

type spanEvent struct {
	pos   int
	open  bool
	span  Span
	index int
}

// renderInline applies spans to the block text. Overlapping spans are closed and
// reopened so the produced markup always nests.
func renderInline(b Block) string {
	runes := []rune(b.Text)
	if len(b.Spans) == 0 {
		return escapeText(string(runes))
	}

	events := make([]spanEvent, 0, len(b.Spans)*2)
	for i, s := range b.Spans {
		start, end := clamp(s.Start, len(runes)), clamp(s.End, len(runes))
		if end <= start {
			continue
		}
		events = append(events, spanEvent{pos: start, open: true, span: s, index: i})
		events = append(events, spanEvent{pos: end, open: false, span: s, index: i})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].pos != events[j].pos {
			return events[i].pos < events[j].pos
		}
		if events[i].open != events[j].open {
			// closes before opens at the same offset
			return !events[i].open
		}
		if events[i].open {
			// the wider span opens first so it stays outside
			return events[i].span.End > events[j].span.End
		}
		return false
	})

	var (
		out   strings.Builder
		stack []spanEvent
		last  int
	)
	for _, ev := range events {
		out.WriteString(escapeText(string(runes[last:ev.pos])))
		last = ev.pos
		if ev.open {
			out.WriteString(openTag(ev.span))
			stack = append(stack, ev)
			continue
		}
		var reopen []spanEvent
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			out.WriteString(closeTag(top.span))
			if top.index == ev.index {
				break
			}
			reopen = append(reopen, top)
		}
		for i := len(reopen) - 1; i >= 0; i-- {
			out.WriteString(openTag(reopen[i].span))
			stack = append(stack, reopen[i])
		}
	}
	out.WriteString(escapeText(string(runes[last:])))
	return out.String()
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v > n {
		return n
	}
	return v
}

func escapeText(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br />")
}

func openTag(s Span) string {
	switch s.Type {
	case "strong":
		return "<strong>"
	case "em":
		return "<em>"
	case "hyperlink":
		href, _ := s.Data["url"].(string)
		return `<a href="` + html.EscapeString(href) + `">`
	case "label":
		label, _ := s.Data["label"].(string)
		return `<span class="` + html.EscapeString(label) + `">`
	default:
		return "<span>"
	}
}

func closeTag(s Span) string {
	switch s.Type {
	case "strong":
		return "</strong>"
	case "em":
		return "</em>"
	case "hyperlink":
		return "</a>"
	default:
		return "</span>"
	}
}
