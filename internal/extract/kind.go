package extract

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileKind is the extraction strategy chosen for an upload.
type FileKind int

const (
	KindUnsupported FileKind = iota
	KindPDF
	KindModernDoc
	KindLegacyDoc
	KindText
	KindImage
)

const (
	mimePDF       = "application/pdf"
	mimeDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeMSWord    = "application/msword"
	mimeOctet     = "application/octet-stream"
	textPrefix    = "text/"
	imagePrefix   = "image/"
	emptyFilename = "uploaded_file"
)

var (
	textExtensions = map[string]bool{
		"txt": true, "md": true, "csv": true, "json": true, "xml": true,
		"html": true, "htm": true, "rtf": true,
	}
	imageExtensions = map[string]bool{
		"jpg": true, "jpeg": true, "png": true, "gif": true, "bmp": true,
		"webp": true, "tiff": true,
	}
)

func (k FileKind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindModernDoc:
		return "docx"
	case KindLegacyDoc:
		return "doc"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unsupported"
	}
}

// Sniff infers a MIME type from content. Parameters such as charset are
// dropped; empty input is reported as application/octet-stream.
func Sniff(data []byte) string {
	if len(data) == 0 {
		return mimeOctet
	}
	detected := mimetype.Detect(data).String()
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	detected = strings.TrimSpace(detected)
	if detected == "" {
		return mimeOctet
	}
	return detected
}

// Extension returns the lower-cased text after the last dot of filename,
// or "" when there is no dot.
func Extension(filename string) string {
	lower := strings.ToLower(filename)
	i := strings.LastIndexByte(lower, '.')
	if i < 0 {
		return ""
	}
	return lower[i+1:]
}

// Classify picks the kind from the sniffed type or the extension. Kinds are
// tested in a fixed order, so an explicit .pdf wins over a generic text sniff.
func Classify(mimeType, ext string) FileKind {
	switch {
	case mimeType == mimePDF || ext == "pdf":
		return KindPDF
	case mimeType == mimeDOCX || ext == "docx":
		return KindModernDoc
	case mimeType == mimeMSWord || ext == "doc":
		return KindLegacyDoc
	case strings.HasPrefix(mimeType, textPrefix) || textExtensions[ext]:
		return KindText
	case strings.HasPrefix(mimeType, imagePrefix) || imageExtensions[ext]:
		return KindImage
	default:
		return KindUnsupported
	}
}
