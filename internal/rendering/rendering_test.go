package rendering

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/profile-architect/internal/document"
	"github.com/jonathan/profile-architect/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func janeProfile() *types.GeneratedProfile {
	return &types.GeneratedProfile{
		OneLinePositioning: "Product leader who ships",
		ExecutiveSummary:   "Five years leading launches.",
		Sections: []types.Section{
			{Title: "Experience", Content: "Acme Corp"},
			{Title: "Projects", Content: "Launch <fast> & safe"},
		},
		Skills:     []string{"Roadmapping", "Discovery", "SQL"},
		ATSVersion: "JANE DOE\r\nProduct Manager",
	}
}

func janePersonal() types.PersonalDetails {
	return types.PersonalDetails{
		FullName:   "Jane Doe",
		Occupation: "Product Manager",
		Education:  "BSc Economics",
		Email:      "jane@example.com",
		Phone:      "+1 555 0100",
		Location:   "Berlin",
	}
}

func wordBody(t *testing.T, out []byte) string {
	t.Helper()
	require.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}), "missing UTF-8 BOM")
	return string(out[3:])
}

func TestRenderWordDocument_Structure(t *testing.T) {
	out, err := RenderWordDocument(janeProfile(), janePersonal())
	require.NoError(t, err)
	body := wordBody(t, out)

	assert.True(t, strings.HasPrefix(body, "<html xmlns:o='urn:schemas-microsoft-com:office:office' xmlns:w='urn:schemas-microsoft-com:office:word'"))
	assert.Contains(t, body, "<meta charset='utf-8'>")
	assert.Contains(t, body, "<title>Jane Doe Profile</title>")
	assert.Contains(t, body, "<style>")
	assert.Contains(t, body, `<p class="contact">jane@example.com | +1 555 0100 | Berlin</p>`)
	assert.Contains(t, body, "<h2>Projects</h2><p>Launch &lt;fast&gt; &amp; safe</p>")
	assert.Contains(t, body, `<p class="skills-list">Roadmapping • Discovery • SQL</p>`)

	// body order: name, occupation, contact, summary, sections, competencies
	order := []string{
		"<h1>Jane Doe</h1>",
		`<p class="occupation">Product Manager</p>`,
		`<p class="contact">`,
		`<p class="summary">Five years leading launches.</p>`,
		"<h2>Experience</h2>",
		"<h2>Projects</h2>",
		"PROFESSIONAL COMPETENCIES",
		`<p class="skills-list">`,
	}
	last := -1
	for _, marker := range order {
		idx := strings.Index(body, marker)
		require.GreaterOrEqual(t, idx, 0, "missing %q", marker)
		assert.Greater(t, idx, last, "%q out of order", marker)
		last = idx
	}

	dom, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 2, dom.Find("h2").Length())
	assert.Equal(t, "Launch <fast> & safe", dom.Find("h2").Eq(1).Next().Text())
}

func TestRenderWordDocument_PatchedSectionLineBreaks(t *testing.T) {
	store := document.NewStore()
	store.Replace(janeProfile())
	require.True(t, store.PatchSection(0, "Line1\nLine2"))

	out, err := RenderWordDocument(store.Current(), janePersonal())
	require.NoError(t, err)

	assert.Contains(t, string(out), "<h2>Experience</h2><p>Line1<br>Line2</p>")
}

func TestRenderWordDocument_CRLFNormalized(t *testing.T) {
	doc := janeProfile()
	doc.Sections[0].Content = "Line1\r\nLine2"

	out, err := RenderWordDocument(doc, janePersonal())
	require.NoError(t, err)
	assert.Contains(t, string(out), "<h2>Experience</h2><p>Line1<br>Line2</p>")
}

func TestRenderWordDocument_Idempotent(t *testing.T) {
	doc := janeProfile()
	personal := janePersonal()

	first, err := RenderWordDocument(doc, personal)
	require.NoError(t, err)
	second, err := RenderWordDocument(doc, personal)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, janeProfile(), doc, "export must not mutate the document")
}

func TestRenderWordDocument_SparseContact(t *testing.T) {
	personal := janePersonal()
	personal.Phone = ""

	out, err := RenderWordDocument(janeProfile(), personal)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<p class="contact">jane@example.com | Berlin</p>`)

	personal.Email, personal.Location = "", ""
	out, err = RenderWordDocument(janeProfile(), personal)
	require.NoError(t, err)
	assert.NotContains(t, string(out), `class="contact"`)
}

func TestRenderWordDocument_NilDocument(t *testing.T) {
	_, err := RenderWordDocument(nil, janePersonal())
	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "word", exportErr.Format)
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		ext      string
		want     string
	}{
		{name: "doc", fullName: "Jane Doe", ext: "doc", want: "Jane_Doe_Profile.doc"},
		{name: "pdf", fullName: "Jane Doe", ext: ".pdf", want: "Jane_Doe_Profile.pdf"},
		{name: "whitespace runs", fullName: "Mary \t Ann\nLee", ext: "doc", want: "Mary_Ann_Lee_Profile.doc"},
		{name: "leading space kept", fullName: " Jane Doe", ext: "doc", want: "_Jane_Doe_Profile.doc"},
		{name: "surrounding whitespace", fullName: "  Mary Ann ", ext: "pdf", want: "_Mary_Ann__Profile.pdf"},
		{name: "empty", fullName: "", ext: "doc", want: "Profile.doc"},
		{name: "blank", fullName: "   ", ext: "pdf", want: "Profile.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.fullName, tt.ext))
		})
	}
}

func TestMIMEType(t *testing.T) {
	assert.Equal(t, "application/msword", MIMEType("doc"))
	assert.Equal(t, "application/pdf", MIMEType(".pdf"))
	assert.Equal(t, TextMIMEType, MIMEType("txt"))
	assert.Equal(t, "image/jpeg", MIMEType("jpg"))
	assert.Equal(t, HTMLMIMEType, MIMEType("html"))
	assert.Equal(t, "application/octet-stream", MIMEType("exe"))
}

func TestRenderPrintHTML(t *testing.T) {
	doc := janeProfile()
	doc.Sections[0].Content = "Line1\r\nLine2"
	doc.CoverLetter = "Dear team,\nHello."
	portrait := "data:image/png;base64,iVBORw0KGgo="

	html, err := RenderPrintHTML(doc, janePersonal(), portrait, DefaultPageSettings())
	require.NoError(t, err)

	dom, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", dom.Find(".name").Text())
	assert.Equal(t, "Product Manager", dom.Find(".occupation").Text())
	assert.Equal(t, 3, dom.Find(".contact span").Length())
	assert.Equal(t, "Product leader who ships", dom.Find(".positioning").Text())
	assert.Equal(t, "Five years leading launches.", dom.Find(".summary").Text())

	sections := dom.Find(".section")
	require.Equal(t, 2, sections.Length())
	assert.Equal(t, "Experience", sections.Eq(0).Find("h2").Text())
	assert.Equal(t, "Line1\nLine2", sections.Eq(0).Find(".section-content").Text())
	assert.Equal(t, "Launch <fast> & safe", sections.Eq(1).Find(".section-content").Text())

	assert.Equal(t, 3, dom.Find(".skill").Length())
	assert.Equal(t, "BSc Economics", dom.Find(".education p").Text())
	assert.Contains(t, dom.Find(".cover-letter").Text(), "Dear team,")

	src, ok := dom.Find("img.portrait").Attr("src")
	require.True(t, ok)
	assert.Equal(t, portrait, src)

	assert.Contains(t, html, "size: A4 portrait")
	assert.Contains(t, html, "margin: 10mm 10mm 10mm 10mm")
	assert.Equal(t, janeProfile().Sections[1], doc.Sections[1])
	assert.Equal(t, "Line1\r\nLine2", doc.Sections[0].Content, "export must not mutate the document")
}

func TestRenderPrintHTML_OptionalBlocks(t *testing.T) {
	personal := janePersonal()
	personal.Education = ""

	html, err := RenderPrintHTML(janeProfile(), personal, "javascript:alert(1)", DefaultPageSettings())
	require.NoError(t, err)

	dom, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	assert.Equal(t, 0, dom.Find("img.portrait").Length())
	assert.Equal(t, 0, dom.Find(".education").Length())
	assert.Equal(t, 0, dom.Find(".cover-letter").Length())
}

func TestRenderPrintHTML_Errors(t *testing.T) {
	_, err := RenderPrintHTML(nil, janePersonal(), "", DefaultPageSettings())
	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)

	bad := DefaultPageSettings()
	bad.Format = "letter"
	_, err = RenderPrintHTML(janeProfile(), janePersonal(), "", bad)
	require.ErrorAs(t, err, &exportErr)
}

func TestPageSettings(t *testing.T) {
	s := DefaultPageSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, 10.0, s.MarginTopMM)
	assert.Equal(t, 0.98, s.ImageQuality)
	assert.Equal(t, 3.0, s.RasterScale)
	assert.Equal(t, 98, s.JPEGQuality())

	w, h := s.PaperInches()
	assert.Equal(t, 8.27, w)
	assert.Equal(t, 11.69, h)

	s.Orientation = Landscape
	w, h = s.PaperInches()
	assert.Equal(t, 11.69, w)
	assert.Equal(t, 8.27, h)

	s.ImageQuality = 1
	assert.Equal(t, 99, s.JPEGQuality())

	s.ImageQuality = 0
	assert.Error(t, s.Validate())
	assert.InDelta(t, 0.3937, mmToInches(10), 0.0001)
}

func TestPDFRenderer_InvalidSettings(t *testing.T) {
	r := NewPDFRenderer("")
	bad := DefaultPageSettings()
	bad.RasterScale = 0

	_, err := r.Render(context.Background(), "<html></html>", bad)
	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "pdf", exportErr.Format)

	_, err = r.Snapshot(context.Background(), "<html></html>", bad)
	require.ErrorAs(t, err, &exportErr)
}

func TestPDFRenderer_MissingBrowser(t *testing.T) {
	r := NewPDFRenderer("/nonexistent/chrome-binary")

	_, err := r.Render(context.Background(), "<html><body>x</body></html>", DefaultPageSettings())
	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "browser capture failed", exportErr.Message)
}

func TestRenderATSText(t *testing.T) {
	text, err := RenderATSText(janeProfile(), janePersonal())
	require.NoError(t, err)
	assert.Equal(t, "JANE DOE\nProduct Manager\n", text)
}

func TestRenderATSText_Fallback(t *testing.T) {
	doc := janeProfile()
	doc.ATSVersion = "  "

	text, err := RenderATSText(doc, janePersonal())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, "JANE DOE\nProduct Manager\njane@example.com | +1 555 0100 | Berlin\n"))
	assert.Contains(t, text, "SKILLS\nRoadmapping, Discovery, SQL\n")
	assert.Less(t, strings.Index(text, "EXPERIENCE"), strings.Index(text, "PROJECTS"))
	assert.Contains(t, text, "EDUCATION\nBSc Economics\n")

	_, err = RenderATSText(nil, janePersonal())
	assert.Error(t, err)
}
