package preview

import (
	"strings"

	nethtml "golang.org/x/net/html"
)

func (r renderer) renderTable(tableNode *nethtml.Node) []string {
	rows := tableRows(tableNode)
	if len(rows) == 0 {
		return nil
	}
	header := hasHeaderCell(tableNode)
	bar := r.styles.Border.Render("|")
	lines := make([]string, 0, len(rows)+1)
	for i, row := range rows {
		cells := row
		if i == 0 && header {
			cells = make([]string, len(row))
			for j := range row {
				cells[j] = r.styles.Heading.Render(row[j])
			}
		}
		line := bar + " " + strings.Join(cells, " "+bar+" ") + " " + bar
		lines = append(lines, wrapText(line, r.width)...)
		if i == 0 && header {
			sep := make([]string, len(row))
			for j := range sep {
				sep[j] = "---"
			}
			lines = append(lines, bar+" "+r.styles.Border.Render(strings.Join(sep, " | "))+" "+bar)
		}
	}
	return trimBlankLines(lines)
}

func (r renderer) renderImage(img *nethtml.Node) []string {
	text := normalizeSpace(attr(img, "alt"))
	if text == "" {
		text = normalizeSpace(attr(img, "title"))
	}
	line := "[image]"
	if text != "" {
		line += " " + text
	}
	return wrapText(r.styles.Quote.Render(line), r.width)
}

func tableRows(tableNode *nethtml.Node) [][]string {
	rows := make([][]string, 0, 8)
	var walk func(*nethtml.Node)
	walk = func(node *nethtml.Node) {
		if node.Type == nethtml.ElementNode && strings.EqualFold(node.Data, "tr") {
			row := make([]string, 0, 4)
			for c := node.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != nethtml.ElementNode {
					continue
				}
				if tag := strings.ToLower(c.Data); tag != "th" && tag != "td" {
					continue
				}
				row = append(row, normalizeSpace(textContent(c)))
			}
			if len(row) > 0 {
				rows = append(rows, row)
			}
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(tableNode)
	return rows
}

func hasHeaderCell(node *nethtml.Node) bool {
	if node.Type == nethtml.ElementNode && strings.EqualFold(node.Data, "th") {
		return true
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if hasHeaderCell(c) {
			return true
		}
	}
	return false
}

func attr(node *nethtml.Node, key string) string {
	for _, a := range node.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
