package edm

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCSVColumnOrder(t *testing.T) {
	cols := csvColumns()
	require.Equal(t, "DATE", cols[0])
	require.Equal(t, "LAT", cols[len(cols)-2])
	require.Equal(t, "LONG", cols[len(cols)-1])
	assert.Contains(t, cols, "EGT1")
	assert.Contains(t, cols, "GSPD")
}

func TestToCSVNullGPSIsEmptyCell(t *testing.T) {
	f := &Flight{
		Samples: []Sample{
			{Timestamp: time.Date(2024, 7, 14, 9, 30, 0, 0, time.UTC), Fields: map[string]float64{}},
		},
	}
	out := f.ToCSV()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	row := strings.Split(lines[1], ",")
	assert.Equal(t, "", row[len(row)-1])
	assert.Equal(t, "", row[len(row)-2])
}

func TestToCSVFormatsNumbersWithoutTrailingZeros(t *testing.T) {
	lat, long := 33.5, -112.25
	f := &Flight{
		Samples: []Sample{
			{
				Timestamp: time.Date(2024, 7, 14, 9, 30, 0, 0, time.UTC),
				Fields:    map[string]float64{"egt1": 1340},
				Lat:       &lat,
				Long:      &long,
			},
		},
	}
	out := f.ToCSV()
	assert.Contains(t, out, "1340")
	assert.Contains(t, out, "33.500000")
	assert.Contains(t, out, "-112.250000")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestFormatCSVNumberWholeVsFractional(t *testing.T) {
	assert.Equal(t, "12", formatCSVNumber(12))
	assert.Equal(t, "12.3", formatCSVNumber(12.3))
}
