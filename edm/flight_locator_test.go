package edm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateFlightsSequential(t *testing.T) {
	preamble1 := buildPreamble(1197, 0, 33.5, -112.2, 6, 2024, 7, 14, 9, 30, 0)
	preamble2 := buildPreamble(1198, 0, 0, 0, 6, 2024, 7, 14, 10, 0, 0)

	var buf []byte
	binaryOffset := 10
	buf = make([]byte, binaryOffset)
	buf = append(buf, preamble1...)
	buf = append(buf, make([]byte, 20)...) // filler "data" for flight 1
	buf = append(buf, preamble2...)
	buf = append(buf, make([]byte, 20)...)

	index := []FlightIndexEntry{
		{FlightNumber: 1197, DataWords: uint16((len(preamble1) + 20) / 2)},
		{FlightNumber: 1198, DataWords: uint16((len(preamble2) + 20) / 2)},
	}

	offsets, warn := locateFlights(buf, binaryOffset, index)
	require.Len(t, offsets, 2)
	assert.False(t, warn[0])
	assert.False(t, warn[1])
	assert.Equal(t, binaryOffset, offsets[0])
	assert.Equal(t, binaryOffset+len(preamble1)+20, offsets[1])
}

func TestLocateFlightsOddLengthGap(t *testing.T) {
	preamble1 := buildPreamble(1, 0, 0, 0, 6, 2024, 1, 1, 0, 0, 0)
	preamble2 := buildPreamble(2, 0, 0, 0, 6, 2024, 1, 1, 0, 0, 1)

	// flight 1 is 47 bytes long (28-byte preamble + 19 data bytes);
	// data_words is the ceiling of 47/2 = 24, which claims 48 bytes, so
	// flight 2 starts one byte before the cursor: this models the
	// "cursor-1" case in §4.3.
	actualFlight1Len := 28 + 19 // 47 bytes actual
	dataWords := uint16((actualFlight1Len + 1) / 2) // ceil -> 24 words = 48 bytes claimed

	var buf []byte
	buf = append(buf, preamble1...)
	buf = append(buf, make([]byte, 19)...)
	buf = append(buf, preamble2...)
	buf = append(buf, make([]byte, 20)...)

	index := []FlightIndexEntry{
		{FlightNumber: 1, DataWords: dataWords},
		{FlightNumber: 2, DataWords: 24},
	}

	offsets, warn := locateFlights(buf, 0, index)
	require.Len(t, offsets, 2)
	assert.False(t, warn[0])
	assert.Equal(t, 0, offsets[0])
	assert.False(t, warn[1])
	assert.Equal(t, len(preamble1)+19, offsets[1])
}

func TestLocateFlightsMissingMarkerWarns(t *testing.T) {
	buf := make([]byte, 40)
	index := []FlightIndexEntry{{FlightNumber: 999, DataWords: 10}}
	offsets, warn := locateFlights(buf, 0, index)
	assert.Equal(t, -1, offsets[0])
	assert.True(t, warn[0])
}

func TestDecodeFlightHeaderFahrenheitBit(t *testing.T) {
	preamble := buildPreamble(1, 1<<flagsFahrenheitBit, 33.5073, -112.284, 6, 2024, 7, 14, 9, 30, 0)
	buf := append([]byte{}, preamble...)
	h := decodeFlightHeader(buf, 0)
	assert.True(t, h.FahrenheitSource)
	assert.InDelta(t, 33.5073, *h.InitialLat, 0.001)
	assert.InDelta(t, -112.284, *h.InitialLong, 0.001)
	assert.Equal(t, 6, h.IntervalSec)
	assert.Equal(t, 2024, h.StartTime.Year())
}

func TestDecodeFlightHeaderIntervalFallback(t *testing.T) {
	preamble := buildPreamble(1, 0, 0, 0, 0, 2024, 7, 14, 9, 30, 0)
	h := decodeFlightHeader(preamble, 0)
	assert.Equal(t, defaultIntervalSec, h.IntervalSec)
	require.NotEmpty(t, h.Warnings)
	assert.Contains(t, h.Warnings[0], "Invalid recording interval")
}
