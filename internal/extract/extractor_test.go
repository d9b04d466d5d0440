package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("  Hello world\nLine 2\n\n"), ".txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Hello world\nLine 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainUTF8(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("caf\xc3\xa9"), ".md")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "café" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainInvalidUTF8(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("hello\x80world"), ".TXT")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "hello�world" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_unsupported(t *testing.T) {
	e := NewExtractor()
	for _, ext := range []string{".xyz", ".xlsx", ".doc", ""} {
		_, err := e.ExtractBytes([]byte("raw"), ext)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("ext %q: expected ErrUnsupportedFormat, got %v", ext, err)
		}
	}
}

func TestExtract_plainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	if err := os.WriteFile(path, []byte("File content"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := NewExtractor().Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "File content" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_nonexistent(t *testing.T) {
	_, err := NewExtractor().Extract("/nonexistent/path/file.txt")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestExtract_unsupportedFileNotRead(t *testing.T) {
	_, err := NewExtractor().Extract("/nonexistent/path/resume.odt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractBytes_pdfNotPDF(t *testing.T) {
	_, err := NewExtractor().ExtractBytes([]byte("not a pdf"), ".pdf")
	if err == nil {
		t.Error("expected error for invalid PDF")
	}
}

// docxBody wraps paragraphs in a minimal word document.
func docxBody(paragraphs ...string) string {
	var b strings.Builder
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		b.WriteString(`<w:p w:rsidR="00A1"><w:pPr><w:jc w:val="left"/></w:pPr><w:r><w:t xml:space="preserve">` + p + `</w:t></w:r></w:p>`)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractBytes_docx(t *testing.T) {
	content := zipOf(t, map[string]string{
		"word/document.xml": docxBody("Jane Doe", "", "Senior Go Engineer &amp; SRE"),
	})
	got, err := NewExtractor().ExtractBytes(content, ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Jane Doe\nSenior Go Engineer & SRE" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxSplitRuns(t *testing.T) {
	body := `<w:document><w:body><w:p><w:r><w:t>Kuber</w:t></w:r><w:r><w:t>netes</w:t></w:r></w:p></w:body></w:document>`
	content := zipOf(t, map[string]string{"word/document.xml": body})
	got, err := NewExtractor().ExtractBytes(content, ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Kubernetes" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxContentTypes(t *testing.T) {
	tests := []struct {
		name     string
		override string
	}{
		{"part name first", `<Override PartName="/word/document2.xml" ContentType="` + docxMainContentType + `"/>`},
		{"content type first", `<Override ContentType="` + docxMainContentType + `" PartName="/word/document2.xml"/>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := zipOf(t, map[string]string{
				contentTypesPath:     `<?xml version="1.0"?><Types>` + tt.override + `</Types>`,
				"word/document2.xml": docxBody("Content from document2"),
			})
			got, err := NewExtractor().ExtractBytes(content, ".docx")
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if got != "Content from document2" {
				t.Errorf("got %q", got)
			}
		})
	}
}

func TestExtractBytes_docxErrors(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("not a zip"), ".docx"); err == nil {
		t.Error("expected error for non-zip docx")
	}
	content := zipOf(t, map[string]string{"other.xml": "<x/>"})
	if _, err := e.ExtractBytes(content, ".docx"); err == nil {
		t.Error("expected error when document part is missing")
	}
}

func TestResumeFromText(t *testing.T) {
	long := strings.Repeat("é", SummaryRunes+20)
	r := ResumeFromText("cv_pdf", long)
	if r.ID != "cv_pdf" || r.Name != "Candidate" {
		t.Errorf("unexpected record %+v", r)
	}
	if got := len([]rune(r.Summary)); got != SummaryRunes {
		t.Errorf("summary has %d runes, want %d", got, SummaryRunes)
	}
	if short := ResumeFromText("x", "short text"); short.Summary != "short text" {
		t.Errorf("short summary = %q", short.Summary)
	}
}

func TestJobFromText(t *testing.T) {
	j := JobFromText("We need a Go engineer")
	if j.Description != "We need a Go engineer" || j.Title != "Position" {
		t.Errorf("unexpected job %+v", j)
	}
	if err := j.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestResumesFromDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0600); err != nil {
			t.Fatal(err)
		}
	}
	write("b.txt", "Python data scientist")
	write("a.md", "Go backend engineer")
	write("notes.csv", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0700); err != nil {
		t.Fatal(err)
	}

	got, err := NewExtractor().ResumesFromDir(dir)
	if err != nil {
		t.Fatalf("ResumesFromDir: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d resumes, want 2", len(got))
	}
	if got[0].Summary != "Go backend engineer" || got[1].Summary != "Python data scientist" {
		t.Errorf("unexpected order: %q, %q", got[0].Summary, got[1].Summary)
	}
	if got[0].ID == got[1].ID || !strings.HasPrefix(got[0].ID, "a_md") {
		t.Errorf("unexpected ids %q %q", got[0].ID, got[1].ID)
	}
}
