package objectstore

import "testing"

func TestDocumentKey(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"report.pdf", "users/7/documents/42/report.pdf"},
		{"my notes.txt", "users/7/documents/42/my notes.txt"},
	}
	for _, tc := range cases {
		if got := DocumentKey(7, 42, tc.filename); got != tc.want {
			t.Errorf("DocumentKey(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}
