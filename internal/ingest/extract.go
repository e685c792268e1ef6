package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"unicode/utf8"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/data/models"
	agenterrors "github.com/Meesho/BharatMLStack/pmo-agent/internal/errors"
	agenttypes "github.com/Meesho/BharatMLStack/pmo-agent/internal/types"
)

// csvPreviewRows caps how many data rows of an uploaded CSV are kept,
// both in the preview returned to the caller and in the stored text.
const csvPreviewRows = 50

type Extraction struct {
	Text       string
	CSVPreview *models.CSVPreview
}

// Extract converts an uploaded file into plain text suitable for the
// note store. CSV uploads additionally yield a tabular preview.
func Extract(kind agenttypes.FileKind, data []byte) (Extraction, error) {
	switch kind {
	case agenttypes.FileKindText, agenttypes.FileKindMarkdown:
		if !utf8.Valid(data) {
			return Extraction{}, agenterrors.ErrInvalidEncoding
		}
		return Extraction{Text: string(data)}, nil
	case agenttypes.FileKindCSV:
		return extractCSV(data)
	case agenttypes.FileKindDocx:
		text, err := extractDocxText(data)
		if err != nil {
			return Extraction{}, err
		}
		return Extraction{Text: text}, nil
	default:
		return Extraction{}, agenterrors.ErrUnsupportedFileType
	}
}

func extractCSV(data []byte) (Extraction, error) {
	if !utf8.Valid(data) {
		return Extraction{}, agenterrors.ErrInvalidEncoding
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: %v", agenterrors.ErrMalformedCSV, err)
	}
	if len(records) == 0 {
		return Extraction{}, fmt.Errorf("%w: no header row", agenterrors.ErrMalformedCSV)
	}

	header := records[0]
	rows := records[1:]
	if len(rows) > csvPreviewRows {
		rows = rows[:csvPreviewRows]
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(header); err != nil {
		return Extraction{}, fmt.Errorf("%w: %v", agenterrors.ErrMalformedCSV, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return Extraction{}, fmt.Errorf("%w: %v", agenterrors.ErrMalformedCSV, err)
	}
	writer.Flush()

	preview := &models.CSVPreview{
		Columns: header,
		Rows:    make([][]string, 0, len(rows)),
	}
	preview.Rows = append(preview.Rows, rows...)

	return Extraction{Text: buf.String(), CSVPreview: preview}, nil
}
