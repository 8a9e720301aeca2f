package simulation

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// TimestampLayout formats tick timestamps: 19 characters, no zone.
const TimestampLayout = "2006-01-02 15:04:05"

// FilenameSuffix is appended to the slugged diagram title.
const FilenameSuffix = "-historical-data.csv"

// Header is the first CSV row.
var Header = []string{"timestamp", "source", "target", "value"}

// RowCount is the number of data rows Render emits for records.
func RowCount(records []TickRecord) int {
	n := 0
	for _, r := range records {
		n += len(r.Links)
	}
	return n
}

// WriteCSV writes the header and one row per link per tick to w. Fields that
// contain commas, quotes or newlines are quoted.
func WriteCSV(w io.Writer, records []TickRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, 4)
	for _, r := range records {
		ts := r.Timestamp.Format(TimestampLayout)
		for _, l := range r.Links {
			row[0] = ts
			row[1] = l.Source
			row[2] = l.Target
			row[3] = strconv.Itoa(l.Value)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write tick %d: %w", r.Tick, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Render returns the CSV encoding of records. Rendering the same records
// twice yields identical bytes.
func Render(records []TickRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lower-cases title and collapses every non-alphanumeric run to a dash,
// trimming dashes at either end.
func Slug(title string) string {
	return strings.Trim(nonAlphanumeric.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

// Filename derives the download name for a diagram title.
func Filename(title string) string {
	slug := Slug(title)
	if slug == "" {
		slug = "diagram"
	}
	return slug + FilenameSuffix
}
