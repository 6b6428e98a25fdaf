package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// TimetableRow is one scheduled course section in an exported document.
type TimetableRow struct {
	CourseCode string
	Section    int
	Teacher    string
	Room       string
	Day        int
	Period     int
	Enrolled   int
}

// Timetable is the export payload of one finished optimization run.
type Timetable struct {
	SchoolName string
	RunID      string
	Rows       []TimetableRow
}

var timetableHeaders = []string{"Course", "Section", "Teacher", "Room", "Day", "Period", "Enrolled"}

func dayName(day int) string {
	switch day {
	case 1:
		return "Monday"
	case 2:
		return "Tuesday"
	case 3:
		return "Wednesday"
	case 4:
		return "Thursday"
	case 5:
		return "Friday"
	case 6:
		return "Saturday"
	case 7:
		return "Sunday"
	default:
		return strconv.Itoa(day)
	}
}

// CSVExporter renders a timetable into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the timetable, one section per line.
func (e *CSVExporter) Render(tt Timetable) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(timetableHeaders); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range tt.Rows {
		record := []string{
			row.CourseCode,
			strconv.Itoa(row.Section),
			row.Teacher,
			row.Room,
			dayName(row.Day),
			strconv.Itoa(row.Period),
			strconv.Itoa(row.Enrolled),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
