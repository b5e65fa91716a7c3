package docs

import (
	"fmt"
	"net/url"
	"strings"

	docs "google.golang.org/api/docs/v1"
)

// ParseDocumentID returns the document ID of a docs.google.com/document URL,
// or "" when the URL is not a Google Docs link.
func ParseDocumentID(docURL string) string {
	u, err := url.Parse(docURL)
	if err != nil || u.Host != "docs.google.com" {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	// document/d/<id>/... or document/u/0/d/<id>/...
	if len(segments) < 3 || segments[0] != "document" {
		return ""
	}
	for i := 1; i < len(segments)-1; i++ {
		if segments[i] == "d" && segments[i+1] != "" {
			return segments[i+1]
		}
	}
	return ""
}

// DocumentToPlainText extracts the text of a document. The title is not
// included. Tabbed documents render each tab under a "=== <title> ===" line.
// Table rows are rendered with " | " between cells.
func DocumentToPlainText(doc *docs.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}

	var b strings.Builder
	if len(doc.Tabs) > 0 {
		writeTabs(&b, doc.Tabs, len(doc.Tabs) > 1)
	} else if doc.Body != nil {
		writeContent(&b, doc.Body.Content)
	}
	return strings.TrimSpace(b.String()), nil
}

func writeTabs(b *strings.Builder, tabs []*docs.Tab, headings bool) {
	for i, tab := range tabs {
		if headings {
			title := fmt.Sprintf("Tab %d", i+1)
			if tab.TabProperties != nil && tab.TabProperties.Title != "" {
				title = tab.TabProperties.Title
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(b, "=== %s ===\n\n", title)
		}
		if tab.DocumentTab != nil && tab.DocumentTab.Body != nil {
			writeContent(b, tab.DocumentTab.Body.Content)
		}
		if len(tab.ChildTabs) > 0 {
			writeTabs(b, tab.ChildTabs, true)
		}
	}
}

func writeContent(b *strings.Builder, content []*docs.StructuralElement) {
	for _, el := range content {
		switch {
		case el.Paragraph != nil:
			writeParagraph(b, el.Paragraph)
		case el.Table != nil:
			writeTable(b, el.Table)
		case el.TableOfContents != nil:
			writeContent(b, el.TableOfContents.Content)
		}
	}
}

func writeParagraph(b *strings.Builder, p *docs.Paragraph) {
	text := paragraphText(p)
	if p.Bullet != nil && strings.TrimSpace(text) != "" {
		b.WriteString(strings.Repeat("  ", int(p.Bullet.NestingLevel)))
		b.WriteString("- ")
	}
	b.WriteString(text)
}

func paragraphText(p *docs.Paragraph) string {
	var b strings.Builder
	for _, el := range p.Elements {
		if el.TextRun != nil {
			b.WriteString(el.TextRun.Content)
		}
	}
	return b.String()
}

func writeTable(b *strings.Builder, t *docs.Table) {
	for _, row := range t.TableRows {
		cells := make([]string, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			var cb strings.Builder
			writeContent(&cb, cell.Content)
			cells = append(cells, strings.Join(strings.Fields(cb.String()), " "))
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
