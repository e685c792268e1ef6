package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/data/models"
	agenterrors "github.com/Meesho/BharatMLStack/pmo-agent/internal/errors"
)

const taskDateLayout = "2006-01-02"

var taskColumns = []string{"id", "name", "owner", "start_date", "end_date", "status"}

// ReadTasks parses a project-plan CSV. The header must be a subset of
// id, name, owner, start_date, end_date, status; id and name are
// required per row and dates must be YYYY-MM-DD when present.
func ReadTasks(data []byte) ([]models.Task, error) {
	if !utf8.Valid(data) {
		return nil, agenterrors.ErrInvalidEncoding
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", agenterrors.ErrMalformedCSV, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", agenterrors.ErrMalformedCSV)
	}

	columnIndex := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if !isTaskColumn(normalized) {
			return nil, fmt.Errorf("%w: unknown column %q", agenterrors.ErrMalformedCSV, name)
		}
		columnIndex[normalized] = i
	}
	if _, ok := columnIndex["id"]; !ok {
		return nil, fmt.Errorf("%w: missing id column", agenterrors.ErrMalformedCSV)
	}
	if _, ok := columnIndex["name"]; !ok {
		return nil, fmt.Errorf("%w: missing name column", agenterrors.ErrMalformedCSV)
	}

	tasks := make([]models.Task, 0, len(records)-1)
	for rowNum, record := range records[1:] {
		field := func(column string) string {
			idx, ok := columnIndex[column]
			if !ok {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		task := models.Task{
			ID:        field("id"),
			Name:      field("name"),
			Owner:     field("owner"),
			StartDate: field("start_date"),
			EndDate:   field("end_date"),
			Status:    field("status"),
		}
		if task.ID == "" || task.Name == "" {
			return nil, fmt.Errorf("%w: row %d", agenterrors.ErrMissingTaskFields, rowNum+2)
		}
		for _, date := range []string{task.StartDate, task.EndDate} {
			if date == "" {
				continue
			}
			if _, err := time.Parse(taskDateLayout, date); err != nil {
				return nil, fmt.Errorf("%w: %q at row %d", agenterrors.ErrInvalidTaskDate, date, rowNum+2)
			}
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// WriteTasks renders tasks back to CSV with the full canonical header.
func WriteTasks(tasks []models.Task) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(taskColumns); err != nil {
		return nil, err
	}
	for _, task := range tasks {
		row := []string{task.ID, task.Name, task.Owner, task.StartDate, task.EndDate, task.Status}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isTaskColumn(name string) bool {
	for _, column := range taskColumns {
		if column == name {
			return true
		}
	}
	return false
}
