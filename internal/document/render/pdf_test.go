package render

import (
	"bytes"
	"regexp"
	"strconv"
	"testing"
	"time"

	"resumekit/internal/document/model"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedRenderer() *PDFRenderer {
	return &PDFRenderer{Now: func() time.Time { return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC) }}
}

func TestRenderProducesReadablePDF(t *testing.T) {
	data, err := fixedRenderer().Render(&model.Document{Title: "My Resume", Type: model.TypeResume})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-1.4")))
	assert.True(t, bytes.HasSuffix(data, []byte("%%EOF\n")))
	assert.Contains(t, string(data), "(My Resume) Tj")
	assert.Contains(t, string(data), "(Generated on: March 9, 2024) Tj")
	assert.Contains(t, string(data), "(Document Type: RESUME) Tj")

	count, err := api.PageCount(bytes.NewReader(data), pdfmodel.NewDefaultConfiguration())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRenderXrefOffsetsPointAtObjects(t *testing.T) {
	data, err := fixedRenderer().Render(&model.Document{Title: "Offsets", Type: model.TypeOtherLetter})
	require.NoError(t, err)

	startxref := regexp.MustCompile(`startxref\n(\d+)\n`).FindSubmatch(data)
	require.NotNil(t, startxref)
	off, _ := strconv.Atoi(string(startxref[1]))
	assert.True(t, bytes.HasPrefix(data[off:], []byte("xref\n")))

	entries := regexp.MustCompile(`(\d{10}) 00000 n \n`).FindAllSubmatch(data, -1)
	require.Len(t, entries, 5)
	for i, e := range entries {
		pos, _ := strconv.Atoi(string(e[1]))
		want := strconv.Itoa(i+1) + " 0 obj"
		assert.True(t, bytes.HasPrefix(data[pos:], []byte(want)), "object %d", i+1)
	}
}

func TestRenderEscapesTitle(t *testing.T) {
	data, err := fixedRenderer().Render(&model.Document{Title: `Notice (final) \ v2`, Type: model.TypeResignationLetter})
	require.NoError(t, err)

	assert.Contains(t, string(data), `(Notice \(final\) \\ v2) Tj`)
	assert.Contains(t, string(data), "(Document Type: RESIGNATION LETTER) Tj")

	count, err := api.PageCount(bytes.NewReader(data), pdfmodel.NewDefaultConfiguration())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "plain", escape("plain"))
	assert.Equal(t, `a\(b\)c\\`, escape(`a(b)c\`))
	assert.Equal(t, "two lines", escape("two\nlines"))
	assert.Equal(t, `caf\351`, escape("café"))
	assert.Equal(t, "?", escape("日"))
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "COVER LETTER", TypeLabel(model.TypeCoverLetter))
	assert.Equal(t, "OTHER LETTER", TypeLabel(model.TypeOtherLetter))
}
