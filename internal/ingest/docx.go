package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	agenterrors "github.com/Meesho/BharatMLStack/pmo-agent/internal/errors"
)

const docxDocumentPath = "word/document.xml"

// extractDocxText pulls the paragraph text out of a .docx payload. A
// docx file is a zip archive; the body lives in word/document.xml with
// runs of text inside <w:t> elements grouped into <w:p> paragraphs.
func extractDocxText(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", agenterrors.ErrMalformedDocx, err)
	}

	var document *zip.File
	for _, file := range archive.File {
		if file.Name == docxDocumentPath {
			document = file
			break
		}
	}
	if document == nil {
		return "", fmt.Errorf("%w: missing %s", agenterrors.ErrMalformedDocx, docxDocumentPath)
	}

	reader, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", agenterrors.ErrMalformedDocx, err)
	}
	defer reader.Close()

	return collectParagraphs(reader)
}

func collectParagraphs(reader io.Reader) (string, error) {
	decoder := xml.NewDecoder(reader)

	var paragraphs []string
	var current strings.Builder
	inTextRun := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", agenterrors.ErrMalformedDocx, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inTextRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inTextRun = false
			case "p":
				if para := strings.TrimSpace(current.String()); para != "" {
					paragraphs = append(paragraphs, para)
				}
				current.Reset()
			}
		case xml.CharData:
			if inTextRun {
				current.Write(t)
			}
		}
	}

	if para := strings.TrimSpace(current.String()); para != "" {
		paragraphs = append(paragraphs, para)
	}
	return strings.Join(paragraphs, "\n"), nil
}
