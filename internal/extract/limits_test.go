package extract

import (
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"strings"
	"testing"
)

// hugeCanvasPNG is a valid 1x1 PNG whose IHDR is rewritten to claim w x h.
func hugeCanvasPNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := buildPNG(t, 1, 1)
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestExtractImageRejectsHugeCanvasBeforeDecoding(t *testing.T) {
	vision := &stubVision{answer: "never"}
	e := NewExtractor(vision)

	res := e.Extract(context.Background(), hugeCanvasPNG(t, 40000, 40000), "bomb.png")
	want := "[Image content from bomb.png - Vision processing error: image dimensions 40000x40000 exceed 50000000 pixels]"
	if res.String() != want {
		t.Fatalf("got %q", res.String())
	}
	if vision.calls != 0 {
		t.Fatalf("vision model must not be called, got %d calls", vision.calls)
	}
}

func TestPrepareImageAcceptsCanvasWithinBudget(t *testing.T) {
	if _, _, err := prepareImage(buildPNG(t, 16, 16)); err != nil {
		t.Fatalf("prepare: %v", err)
	}
}

func TestExtractDocxRejectsOversizedBody(t *testing.T) {
	saved := maxDocxBodyBytes
	maxDocxBodyBytes = 512
	defer func() { maxDocxBodyBytes = saved }()

	data := buildDocx(t, strings.Repeat("<w:p><w:r><w:t>filler text</w:t></w:r></w:p>", 100))
	res := NewExtractor(nil).Extract(context.Background(), data, "big.docx")
	if res.OK() || !strings.HasPrefix(res.String(), "[Error reading Word document: ") ||
		!strings.Contains(res.String(), errDocxBodyTooLarge.Error()) {
		t.Fatalf("unexpected result %q", res.String())
	}
}

func TestCappedReaderIgnoresLyingHeaders(t *testing.T) {
	_, err := io.ReadAll(&cappedReader{r: strings.NewReader("0123456789"), remaining: 4})
	if !errors.Is(err, errDocxBodyTooLarge) {
		t.Fatalf("expected errDocxBodyTooLarge, got %v", err)
	}

	got, err := io.ReadAll(&cappedReader{r: strings.NewReader("0123"), remaining: 4})
	if err != nil || string(got) != "0123" {
		t.Fatalf("exact fit: got %q, %v", got, err)
	}
}
