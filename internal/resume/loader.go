package resume

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Load returns the plain text of the resume at path. The format is chosen by
// extension: .pdf, .docx, .html/.htm, anything else is read as text. A missing
// file is reported with an error matching fs.ErrNotExist.
func Load(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("resume path is not configured: %w", os.ErrNotExist)
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("reading resume: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDFText(path)
	case ".docx":
		return extractDocxText(path)
	case ".html", ".htm":
		return extractHTMLText(path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading resume: %w", err)
		}
		return string(data), nil
	}
}

func extractPDFText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	defer file.Close()

	var textBuilder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), nil
}

func extractDocxText(path string) (string, error) {
	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	// the content is the raw document.xml; paragraphs end with </w:p>
	content := strings.ReplaceAll(doc.Editable().GetContent(), "</w:p>", "</w:p>\n")
	return markupText(content)
}

func extractHTMLText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading resume: %w", err)
	}
	return markupText(string(data))
}

func markupText(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}
	doc.Find("script, style").Remove()
	return doc.Text(), nil
}
