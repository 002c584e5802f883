package preview

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/tidwall/gjson"
	nethtml "golang.org/x/net/html"
)

// Styles controls how structural elements are decorated. The zero value
// renders plain text.
type Styles struct {
	Heading lipgloss.Style
	Code    lipgloss.Style
	Quote   lipgloss.Style
	Border  lipgloss.Style
	// Highlight colors <pre> lines whose block parses as JSON. Nil leaves
	// them styled with Code.
	Highlight func(string) string
}

type renderer struct {
	width  int
	styles Styles
}

// Lines renders an HTML fragment as terminal lines wrapped to width.
func Lines(raw string, width int) []string {
	return LinesWithStyles(raw, width, Styles{})
}

func LinesWithStyles(raw string, width int, styles Styles) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	doc, err := nethtml.Parse(strings.NewReader("<html><body>" + raw + "</body></html>"))
	if err != nil {
		return nil
	}
	body := findBody(doc)
	if body == nil {
		return nil
	}
	r := renderer{width: max(1, width), styles: styles}
	return trimBlankLines(r.renderNodes(children(body), 0))
}

func (r renderer) renderNodes(nodes []*nethtml.Node, listDepth int) []string {
	lines := make([]string, 0, len(nodes)*2)
	inline := make([]string, 0, 4)
	appendBlock := func(block []string) {
		if len(block) == 0 {
			return
		}
		if len(lines) > 0 && lines[len(lines)-1] != "" {
			lines = append(lines, "")
		}
		lines = append(lines, block...)
	}
	flush := func() {
		text := normalizeSpace(strings.Join(inline, " "))
		inline = inline[:0]
		if text != "" {
			appendBlock(wrapText(text, r.width))
		}
	}

	for _, node := range nodes {
		switch node.Type {
		case nethtml.TextNode:
			inline = append(inline, node.Data)
		case nethtml.ElementNode:
			if strings.EqualFold(node.Data, "br") {
				flush()
				continue
			}
			if strings.EqualFold(node.Data, "img") {
				flush()
				appendBlock(r.renderImage(node))
				continue
			}
			if isBlock(node.Data) {
				flush()
				appendBlock(r.renderBlock(node, listDepth))
				continue
			}
			inline = append(inline, textContent(node))
		}
	}
	flush()
	return lines
}

func (r renderer) renderBlock(node *nethtml.Node, listDepth int) []string {
	tag := strings.ToLower(node.Data)
	switch tag {
	case "script", "style", "noscript":
		return nil
	case "pre":
		text := strings.ReplaceAll(textContent(node), "\r\n", "\n")
		raw := strings.Split(strings.TrimRight(text, "\n"), "\n")
		paint := func(line string) string { return r.styles.Code.Render(line) }
		if r.styles.Highlight != nil && gjson.Valid(text) {
			paint = r.styles.Highlight
		}
		out := make([]string, 0, len(raw))
		for _, line := range raw {
			line = strings.TrimRight(strings.ReplaceAll(line, "\t", "    "), " ")
			for _, part := range hardWrap(line, r.width) {
				out = append(out, paint(part))
			}
		}
		return out
	case "h1", "h2", "h3", "h4", "h5", "h6":
		text := normalizeSpace(textContent(node))
		if text == "" {
			return nil
		}
		out := styleLines(wrapText(text, r.width), r.styles.Heading)
		if tag == "h1" || tag == "h2" {
			out = append(out, strings.Repeat("=", min(r.width, runewidth.StringWidth(text))))
		}
		return out
	case "blockquote":
		inner := r.renderNodes(children(node), listDepth)
		out := make([]string, 0, len(inner))
		for _, line := range inner {
			if line == "" {
				out = append(out, "")
				continue
			}
			out = append(out, "│ "+r.styles.Quote.Render(line))
		}
		return out
	case "ul", "ol":
		return r.renderList(node, tag == "ol", listDepth+1)
	case "table":
		return r.renderTable(node)
	default:
		if hasBlockChild(node) {
			return r.renderNodes(children(node), listDepth)
		}
		text := normalizeSpace(textContent(node))
		if text == "" {
			return nil
		}
		return wrapText(text, r.width)
	}
}

func (r renderer) renderList(node *nethtml.Node, ordered bool, depth int) []string {
	indent := strings.Repeat("  ", depth-1)
	out := make([]string, 0, 4)
	n := 0
	for _, item := range children(node) {
		if item.Type != nethtml.ElementNode || !strings.EqualFold(item.Data, "li") {
			continue
		}
		n++
		marker := "• "
		if ordered {
			marker = strconv.Itoa(n) + ". "
		}
		prefix := indent + marker
		pad := strings.Repeat(" ", runewidth.StringWidth(prefix))
		body := r.renderNodes(children(item), depth)
		if len(body) == 0 {
			body = []string{""}
		}
		for i, line := range body {
			if i == 0 {
				out = append(out, prefix+line)
				continue
			}
			if line == "" {
				out = append(out, "")
				continue
			}
			out = append(out, pad+line)
		}
	}
	return out
}

func isBlock(tag string) bool {
	switch strings.ToLower(tag) {
	case "p", "div", "section", "article", "main", "header", "footer", "aside", "nav",
		"pre", "blockquote", "ul", "ol", "li", "table", "tr",
		"h1", "h2", "h3", "h4", "h5", "h6", "script", "style", "noscript":
		return true
	}
	return false
}

func hasBlockChild(node *nethtml.Node) bool {
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == nethtml.ElementNode && isBlock(c.Data) {
			return true
		}
	}
	return false
}

func findBody(node *nethtml.Node) *nethtml.Node {
	if node == nil {
		return nil
	}
	if node.Type == nethtml.ElementNode && strings.EqualFold(node.Data, "body") {
		return node
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}

func children(node *nethtml.Node) []*nethtml.Node {
	out := make([]*nethtml.Node, 0, 4)
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == nethtml.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func textContent(node *nethtml.Node) string {
	if node == nil {
		return ""
	}
	if node.Type == nethtml.TextNode {
		return node.Data
	}
	var b strings.Builder
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

func styleLines(lines []string, style lipgloss.Style) []string {
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return lines
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
