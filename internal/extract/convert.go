package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// MIME types of the binary documents DocumentConverter understands.
const (
	MimeTypePDF  = "application/pdf"
	MimeTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// DocumentConverter turns uploaded PDF, XLSX and DOCX files into text.
type DocumentConverter struct{}

// Supports reports whether contentType has a converter.
func (DocumentConverter) Supports(contentType string) bool {
	switch contentType {
	case MimeTypePDF, MimeTypeXLSX, MimeTypeDOCX:
		return true
	}
	return false
}

// Convert extracts the text of a binary document.
func (DocumentConverter) Convert(contentType string, data []byte) (string, error) {
	switch contentType {
	case MimeTypePDF:
		return pdfText(data)
	case MimeTypeXLSX:
		return xlsxText(data)
	case MimeTypeDOCX:
		return docxText(data)
	}
	return "", fmt.Errorf("no converter for %s", contentType)
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return strings.TrimSpace(strings.Join(pages, "\n\n")), nil
}

// xlsxText renders every sheet as CSV-like lines under a "# <sheet>" header.
func xlsxText(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	sheets := f.GetSheetList()
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		if len(sheets) > 1 {
			fmt.Fprintf(&b, "# %s\n", sheet)
		}
		for _, row := range rows {
			b.WriteString(strings.Join(row, ","))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String()), nil
}

var (
	docxParagraph = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	docxRun       = regexp.MustCompile(`<w:t(?: [^>]*)?>([^<]*)</w:t>`)
)

// docxText returns one line per non-empty paragraph of word/document.xml.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open DOCX: not a zip: %w", err)
	}

	var body []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open DOCX body: %w", err)
		}
		body, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("read DOCX body: %w", err)
		}
		break
	}
	if body == nil {
		return "", fmt.Errorf("open DOCX: word/document.xml not found")
	}

	var lines []string
	for _, p := range docxParagraph.FindAll(body, -1) {
		var line strings.Builder
		for _, run := range docxRun.FindAllSubmatch(p, -1) {
			line.WriteString(html.UnescapeString(string(run[1])))
		}
		if s := strings.TrimSpace(line.String()); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n"), nil
}
