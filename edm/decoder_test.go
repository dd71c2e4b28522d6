package edm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFlightSamplesBasicDeltaAndPersistence(t *testing.T) {
	start := time.Date(2024, 7, 14, 9, 30, 0, 0, time.UTC)
	header := &FlightHeader{
		StartTime:   start,
		IntervalSec: 6,
	}

	var records []byte
	// record 1: decode_flags bit0 set -> group0 field+sign bytes; slot0 (egt1 low) present, positive, delta=100.
	records = append(records,
		0xAA,       // skip byte (ignored)
		0x00, 0x01, // flagsA
		0x00, 0x01, // flagsB
		0x00,       // repeat_count
		0x01,       // field_flags[0]: bit0 -> slot 0
		0x00,       // sign_flags[0]: all positive
		100,        // raw delta for slot 0
	)
	// record 2: no slots present at all.
	records = append(records,
		0xBB,
		0x00, 0x00,
		0x00, 0x00,
		0x00,
	)

	buf := make([]byte, 28)
	buf = append(buf, records...)

	dataBytes := 28 + len(records)
	samples, warnings := decodeFlightSamples(buf, 0, dataBytes, header, TempOriginal)

	require.Empty(t, warnings)
	require.Len(t, samples, 2)

	assert.Equal(t, float64(slotDefault(0)+100), samples[0].Fields["egt1"])
	assert.Equal(t, samples[0].Fields["egt1"], samples[1].Fields["egt1"], "unmentioned slot must carry forward unchanged")

	assert.True(t, samples[0].Timestamp.Equal(start))
	assert.True(t, samples[1].Timestamp.Equal(start.Add(6*time.Second)))
}

func TestDecodeFlightSamplesRepeatCountAdvancesClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	header := &FlightHeader{StartTime: start, IntervalSec: 10}

	records := []byte{
		0x00,
		0x00, 0x00,
		0x00, 0x00,
		0x03, // repeat_count = 3
	}
	buf := make([]byte, 28)
	buf = append(buf, records...)

	samples, warnings := decodeFlightSamples(buf, 0, 28+len(records), header, TempOriginal)
	require.Empty(t, warnings)
	require.Len(t, samples, 1)
	assert.True(t, samples[0].Timestamp.Equal(start.Add(3*10*time.Second)))
}

func TestDecodeFlightSamplesFlagMismatchWarnsOnlyBeforeFirstEmission(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	header := &FlightHeader{StartTime: start, IntervalSec: 6}

	records := []byte{
		0x00,
		0x00, 0x01, // flagsA
		0x00, 0x02, // flagsB (mismatch)
		0x00,
	}
	buf := make([]byte, 28)
	buf = append(buf, records...)

	samples, warnings := decodeFlightSamples(buf, 0, 28+len(records), header, TempOriginal)
	assert.Empty(t, samples)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[len(warnings)-1], "Decode flags mismatch")
}

func TestDecodeFlightSamplesTooShort(t *testing.T) {
	header := &FlightHeader{StartTime: time.Now(), IntervalSec: 6}
	buf := make([]byte, 20)
	samples, warnings := decodeFlightSamples(buf, 0, 20, header, TempOriginal)
	assert.Empty(t, samples)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "too short")
}

func TestZeroDeltaOnNeverSeenSlotStaysNull(t *testing.T) {
	var s slotState
	v := s.applyDelta(5, 0)
	assert.Equal(t, 0, v)
	assert.False(t, s.seen[5])

	v2 := s.applyDelta(5, 3)
	assert.True(t, s.seen[5])
	assert.Equal(t, slotDefault(5)+3, v2)
}
