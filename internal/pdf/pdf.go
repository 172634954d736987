// Package pdf renders the translation list as a Markdown word list and converts it to PDF.
package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"

	"github.com/at-ishikawa/wordsync/internal/translation"
)

// RenderMarkdown renders records as a Markdown table, in the given order.
func RenderMarkdown(records []translation.Record) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Word list\n\n")
	fmt.Fprintf(&buf, "%d words\n\n", len(records))
	buf.WriteString("| Word | Translation | Count | Last modified |\n")
	buf.WriteString("| --- | --- | --- | --- |\n")
	for _, r := range records {
		fmt.Fprintf(&buf, "| %s | %s | %d | %s |\n",
			escapeCell(r.Word),
			escapeCell(r.Translation),
			r.Count,
			r.LastModified.UTC().Format("2006-01-02 15:04"),
		)
	}
	return buf.Bytes()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// WriteMarkdown writes the word list to markdownPath.
func WriteMarkdown(records []translation.Record, markdownPath string) error {
	if err := os.MkdirAll(filepath.Dir(markdownPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(markdownPath, RenderMarkdown(records), 0644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", markdownPath, err)
	}
	return nil
}

// ExportPDF writes the word list to markdownPath and converts it next to it.
func ExportPDF(records []translation.Record, markdownPath string) (string, error) {
	if err := WriteMarkdown(records, markdownPath); err != nil {
		return "", err
	}
	return ConvertMarkdownToPDF(markdownPath)
}

// ConvertMarkdownToPDF converts a markdown file to PDF using mdtopdf package
// The PDF file will be created in the same directory as the markdown file
func ConvertMarkdownToPDF(markdownPath string) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}

	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"

	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}

	return absPath, nil
}
