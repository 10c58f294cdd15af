package richtext

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestParseDecodesUntypedBlocks(t *testing.T) {
	raw := decodeBody(t, `[{"type":"paragraph","text":"Hello world","spans":[{"start":0,"end":5,"type":"strong"}]}]`)

	blocks, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "paragraph", blocks[0].Type)
	assert.Equal(t, "Hello world", blocks[0].Text)
	require.Len(t, blocks[0].Spans, 1)
	assert.Equal(t, "strong", blocks[0].Spans[0].Type)
}

func TestParseNilAndInvalid(t *testing.T) {
	blocks, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, blocks)

	_, err = Parse("not a list")
	assert.Error(t, err)
}

func TestAsHTML(t *testing.T) {
	tests := []struct {
		name   string
		blocks []Block
		want   string
	}{
		{
			name:   "paragraph escapes text",
			blocks: []Block{{Type: "paragraph", Text: "1 < 2"}},
			want:   "<p>1 &lt; 2</p>",
		},
		{
			name:   "heading level",
			blocks: []Block{{Type: "heading2", Text: "Title"}},
			want:   "<h2>Title</h2>",
		},
		{
			name: "strong and em spans",
			blocks: []Block{{Type: "paragraph", Text: "bold and italic", Spans: []Span{
				{Start: 0, End: 4, Type: "strong"},
				{Start: 9, End: 15, Type: "em"},
			}}},
			want: "<p><strong>bold</strong> and <em>italic</em></p>",
		},
		{
			name: "nested spans",
			blocks: []Block{{Type: "paragraph", Text: "abcdef", Spans: []Span{
				{Start: 2, End: 4, Type: "em"},
				{Start: 0, End: 6, Type: "strong"},
			}}},
			want: "<p><strong>ab<em>cd</em>ef</strong></p>",
		},
		{
			name: "overlapping spans still nest",
			blocks: []Block{{Type: "paragraph", Text: "abcd", Spans: []Span{
				{Start: 0, End: 3, Type: "strong"},
				{Start: 1, End: 4, Type: "em"},
			}}},
			want: "<p><strong>a<em>bc</em></strong><em>d</em></p>",
		},
		{
			name: "list items grouped",
			blocks: []Block{
				{Type: "list-item", Text: "one"},
				{Type: "list-item", Text: "two"},
				{Type: "o-list-item", Text: "three"},
			},
			want: "<ul><li>one</li><li>two</li></ul><ol><li>three</li></ol>",
		},
		{
			name: "spans use rune offsets",
			blocks: []Block{{Type: "paragraph", Text: "não sei", Spans: []Span{
				{Start: 0, End: 3, Type: "em"},
			}}},
			want: "<p><em>não</em> sei</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(AsHTML(tt.blocks)))
		})
	}
}

func TestAsHTMLSanitizesLinksAndScripts(t *testing.T) {
	blocks := []Block{
		{Type: "paragraph", Text: "visit site", Spans: []Span{
			{Start: 6, End: 10, Type: "hyperlink", Data: map[string]any{"url": "https://example.com"}},
		}},
		{Type: "paragraph", Text: "evil", Spans: []Span{
			{Start: 0, End: 4, Type: "hyperlink", Data: map[string]any{"url": "javascript:alert(1)"}},
		}},
		{Type: "embed", Oembed: map[string]any{"embed_url": "https://youtu.be/x", "html": "<script>alert(1)</script>"}},
	}

	out := string(AsHTML(blocks))
	assert.Contains(t, out, `href="https://example.com"`)
	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `data-oembed="https://youtu.be/x"`)
}

func TestAsText(t *testing.T) {
	blocks := []Block{{Type: "paragraph", Text: "A B"}, {Type: "image", URL: "x"}, {Type: "paragraph", Text: "C"}}
	assert.Equal(t, "A B\nC", AsText(blocks))
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown("Feito com **Go** <script>x</script>")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), "<strong>Go</strong>"))
	assert.NotContains(t, string(out), "<script>")
}
