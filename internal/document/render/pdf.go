// Package render turns a stored document into the downloadable artifact. The
// output is a fixed single-page template, not a layout of the form payload.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"resumekit/internal/document/model"
)

type PDFRenderer struct {
	Now func() time.Time
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Now: time.Now}
}

// Render writes a one-page PDF carrying the title, generation date and document type.
func (p *PDFRenderer) Render(doc *model.Document) ([]byte, error) {
	var content bytes.Buffer
	fmt.Fprintf(&content, "BT\n/F1 24 Tf\n72 720 Td\n(%s) Tj\n", escape(doc.Title))
	fmt.Fprintf(&content, "0 -50 Td\n/F1 12 Tf\n(Generated on: %s) Tj\n", p.Now().Format("January 2, 2006"))
	fmt.Fprintf(&content, "0 -30 Td\n(Document Type: %s) Tj\nET", escape(TypeLabel(doc.Type)))

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return out.Bytes(), nil
}

// TypeLabel is the upper-case display name, e.g. "COVER LETTER".
func TypeLabel(t model.DocumentType) string {
	return strings.ToUpper(strings.ReplaceAll(string(t), "-", " "))
}

// escape makes s safe inside a PDF literal string. Characters outside Latin-1
// cannot be shown by the standard Helvetica font and become '?'.
func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\\' || r == '(' || r == ')':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case r < 0x20:
		case r < 0x80:
			b.WriteRune(r)
		case r <= 0xff:
			fmt.Fprintf(&b, "\\%03o", r)
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}
