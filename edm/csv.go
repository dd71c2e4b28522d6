package edm

import (
	"strconv"
	"strings"
)

const csvDateLayout = "2006-01-02 15:04:05"

// csvColumns returns the fixed column order (§4.7): DATE, the field
// schema uppercased, then LAT, LONG.
func csvColumns() []string {
	cols := make([]string, 0, len(fieldOrder)+3)
	cols = append(cols, "DATE")
	for _, f := range fieldOrder {
		cols = append(cols, strings.ToUpper(f.Name))
	}
	cols = append(cols, "LAT", "LONG")
	return cols
}

// ToCSV renders the flight as CSV with no quoting (the schema has no
// comma-bearing fields), a trailing newline after the last row, and
// empty cells for null GPS values.
func (f *Flight) ToCSV() string {
	var b strings.Builder
	b.WriteString(strings.Join(csvColumns(), ","))
	b.WriteByte('\n')

	for _, s := range f.Samples {
		b.WriteString(s.Timestamp.Format(csvDateLayout))
		for _, fs := range fieldOrder {
			b.WriteByte(',')
			b.WriteString(formatCSVNumber(s.Fields[fs.Name]))
		}
		b.WriteByte(',')
		b.WriteString(formatCSVLatLong(s.Lat))
		b.WriteByte(',')
		b.WriteString(formatCSVLatLong(s.Long))
		b.WriteByte('\n')
	}

	return b.String()
}

func formatCSVNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatCSVLatLong(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}
