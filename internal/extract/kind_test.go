package extract

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		mime string
		ext  string
		want FileKind
	}{
		{"application/pdf", "", KindPDF},
		{"text/plain", "pdf", KindPDF},
		{mimeDOCX, "bin", KindModernDoc},
		{"application/zip", "docx", KindModernDoc},
		{"application/x-ole-storage", "doc", KindLegacyDoc},
		{"text/html", "", KindText},
		{"application/json", "json", KindText},
		{"application/octet-stream", "rtf", KindText},
		{"image/png", "", KindImage},
		{"application/octet-stream", "tiff", KindImage},
		{"application/octet-stream", "", KindUnsupported},
		{"application/zip", "zip", KindUnsupported},
	}
	for _, tc := range cases {
		if got := Classify(tc.mime, tc.ext); got != tc.want {
			t.Errorf("Classify(%q, %q) = %v, want %v", tc.mime, tc.ext, got, tc.want)
		}
	}
}

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"Report.PDF":     "pdf",
		"archive.tar.gz": "gz",
		"README":         "",
		"trailing.":      "",
	}
	for name, want := range cases {
		if got := Extension(name); got != want {
			t.Errorf("Extension(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestSniff(t *testing.T) {
	if got := Sniff(nil); got != "application/octet-stream" {
		t.Fatalf("empty sniff = %q", got)
	}
	if got := Sniff([]byte("just some words")); got != "text/plain" {
		t.Fatalf("text sniff = %q", got)
	}
	if got := Sniff([]byte("%PDF-1.7\n")); got != "application/pdf" {
		t.Fatalf("pdf sniff = %q", got)
	}
}

func TestDefaultFilename(t *testing.T) {
	if DefaultFilename("  ") != "uploaded_file" {
		t.Fatal("expected default filename")
	}
	if DefaultFilename("a.txt") != "a.txt" {
		t.Fatal("expected name to be kept")
	}
}
