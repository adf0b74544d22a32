package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	docxBodyPart = "word/document.xml"
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// maxDocxBodyBytes bounds the uncompressed size of word/document.xml.
var maxDocxBodyBytes int64 = 64 << 20

var errDocxBodyTooLarge = errors.New("docx body exceeds size limit")

// extractDocx returns non-blank body paragraphs followed by non-blank table
// cells, one per line. Cells of nested tables are not included.
func extractDocx(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	var part *zip.File
	for _, file := range reader.File {
		if file.Name == docxBodyPart {
			part = file
			break
		}
	}
	if part == nil {
		return "", errors.New("docx has no " + docxBodyPart)
	}
	if part.UncompressedSize64 > uint64(maxDocxBodyBytes) {
		return "", errDocxBodyTooLarge
	}
	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("read docx body: %w", err)
	}
	defer rc.Close()

	paragraphs, cells, err := walkDocument(&cappedReader{r: rc, remaining: maxDocxBodyBytes})
	if err != nil {
		return "", fmt.Errorf("parse docx body: %w", err)
	}
	lines := append(paragraphs, cells...)
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// cappedReader fails with errDocxBodyTooLarge once more than remaining
// bytes are read, whatever the zip header claimed.
type cappedReader struct {
	r         io.Reader
	remaining int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.remaining <= 0 {
		var one [1]byte
		n, err := c.r.Read(one[:])
		if n > 0 {
			return 0, errDocxBodyTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	return n, err
}

func walkDocument(r io.Reader) (paragraphs, cells []string, err error) {
	dec := xml.NewDecoder(r)
	var (
		tblDepth  int
		paraDepth int
		runDepth  int
		inText    bool
		para      strings.Builder
		cell      []string
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return paragraphs, cells, nil
		}
		if err != nil {
			return nil, nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "tc":
				if tblDepth == 1 {
					cell = cell[:0]
				}
			case "p":
				paraDepth++
				if paraDepth == 1 {
					para.Reset()
				}
			case "r":
				runDepth++
			case "t":
				inText = paraDepth == 1 && runDepth > 0
			case "tab":
				if paraDepth == 1 && runDepth > 0 {
					para.WriteByte('\t')
				}
			case "br", "cr":
				if paraDepth == 1 && runDepth > 0 {
					para.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "r":
				if runDepth > 0 {
					runDepth--
				}
			case "p":
				if paraDepth == 1 {
					text := para.String()
					switch tblDepth {
					case 0:
						if strings.TrimSpace(text) != "" {
							paragraphs = append(paragraphs, text)
						}
					case 1:
						cell = append(cell, text)
					}
				}
				if paraDepth > 0 {
					paraDepth--
				}
			case "tc":
				if tblDepth == 1 {
					text := strings.Join(cell, "\n")
					if strings.TrimSpace(text) != "" {
						cells = append(cells, text)
					}
				}
			case "tbl":
				if tblDepth > 0 {
					tblDepth--
				}
			}
		}
	}
}
