package extract

import (
	"context"
	"fmt"
	"strings"

	"docchat/internal/pkg/pdfextract"
)

const imagePrompt = "Extract all text from this image. If no text is present, briefly describe the image content."

// VisionModel answers a prompt about an image.
type VisionModel interface {
	DescribeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// Diagnostic is an extraction failure rendered as bracketed text.
type Diagnostic struct {
	Message string
}

func (d *Diagnostic) Error() string {
	return d.Message
}

// Result is either extracted text or a diagnostic. Callers that need a
// single string use String, which keeps failures in-band.
type Result struct {
	Kind       FileKind
	MIMEType   string
	Text       string
	Diagnostic *Diagnostic
}

func (r Result) OK() bool {
	return r.Diagnostic == nil
}

func (r Result) String() string {
	if r.Diagnostic != nil {
		return r.Diagnostic.Message
	}
	return r.Text
}

type Extractor struct {
	vision VisionModel
}

// NewExtractor builds an extractor. vision may be nil, in which case images
// yield a vision processing diagnostic.
func NewExtractor(vision VisionModel) *Extractor {
	return &Extractor{vision: vision}
}

// Extract never fails: every failure is reported through Result.Diagnostic.
func (e *Extractor) Extract(ctx context.Context, data []byte, filename string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res.Text = ""
			res.Diagnostic = diagnosticf("[Error extracting text from %s: %v]", filename, r)
		}
	}()

	mimeType := Sniff(data)
	ext := Extension(filename)
	kind := Classify(mimeType, ext)
	res = Result{Kind: kind, MIMEType: mimeType}

	switch kind {
	case KindPDF:
		text, err := pdfextract.ExtractText(data)
		if err != nil {
			res.Diagnostic = diagnosticf("[Error reading PDF: %v]", err)
			return res
		}
		res.Text = text
	case KindModernDoc:
		text, err := extractDocx(data)
		if err != nil {
			res.Diagnostic = diagnosticf("[Error reading Word document: %v]", err)
			return res
		}
		res.Text = text
	case KindLegacyDoc:
		res.Diagnostic = diagnosticf("[Legacy Word document (.doc) detected. Please convert to .docx format for better text extraction. Filename: %s]", filename)
	case KindText:
		res.Text = decodeText(data)
	case KindImage:
		answer, err := e.describeImage(ctx, data)
		if err != nil {
			res.Diagnostic = diagnosticf("[Image content from %s - Vision processing error: %v]", filename, err)
			return res
		}
		res.Text = fmt.Sprintf("[Image content from %s]\n%s", filename, answer)
	default:
		res.Diagnostic = diagnosticf("[Unsupported file type: %s (extension: .%s).]", mimeType, ext)
	}
	return res
}

func (e *Extractor) describeImage(ctx context.Context, data []byte) (string, error) {
	if e.vision == nil {
		return "", fmt.Errorf("no vision model configured")
	}
	payload, mimeType, err := prepareImage(data)
	if err != nil {
		return "", err
	}
	answer, err := e.vision.DescribeImage(ctx, imagePrompt, payload, mimeType)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func diagnosticf(format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Message: fmt.Sprintf(format, args...)}
}

// DefaultFilename is used when an upload carries no name.
func DefaultFilename(name string) string {
	if strings.TrimSpace(name) == "" {
		return emptyFilename
	}
	return name
}
