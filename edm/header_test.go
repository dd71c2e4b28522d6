package edm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMinimalHeader() []byte {
	var buf []byte
	buf = append(buf, buildLine("U,N73898")...)
	buf = append(buf, buildLine("A,280,230,25,50,15,100,100,10")...)
	buf = append(buf, buildLine("C,830,1,0")...)
	buf = append(buf, buildLine("D,1197,100")...)
	buf = append(buf, buildLine("D,1199,50")...)
	buf = append(buf, buildLine("F,30,5,1,2,3")...)
	buf = append(buf, buildLine("T,7,14,24,9,30")...)
	buf = append(buf, buildLine("L,")...)
	return buf
}

func TestParseHeaderHappyPath(t *testing.T) {
	buf := buildMinimalHeader()
	md, err := parseHeader(buf)
	require.NoError(t, err)

	assert.Equal(t, "N73898", md.TailNumber)
	assert.Equal(t, "EDM-830", md.ModelString())
	assert.Equal(t, 830, md.Model)
	assert.Len(t, md.FlightIndex, 2)
	assert.Equal(t, uint16(1197), md.FlightIndex[0].FlightNumber)
	assert.Equal(t, 200, md.FlightIndex[0].DataBytes())
	assert.Equal(t, 2024, md.DownloadTime.Year)
	assert.Equal(t, md.BinaryOffset, len(buf))
}

func TestParseHeaderRejectsNonJPI(t *testing.T) {
	_, err := parseHeader([]byte("XX"))
	require.Error(t, err)
	var hpe *HeaderParseError
	require.ErrorAs(t, err, &hpe)
}

func TestParseHeaderRequiresLRecord(t *testing.T) {
	buf := []byte(buildLine("U,N1"))
	_, err := parseHeader(buf)
	require.Error(t, err)
}

func TestParseHeaderChecksumMismatch(t *testing.T) {
	line := buildLine("U,N1")
	// Flip the last checksum hex digit to corrupt it.
	corrupted := []byte(line)
	lastHex := len(corrupted) - 3 // before \r\n
	if corrupted[lastHex] == '0' {
		corrupted[lastHex] = '1'
	} else {
		corrupted[lastHex] = '0'
	}

	_, err := parseHeader(corrupted)
	require.Error(t, err)
	var ce *ChecksumError
	require.ErrorAs(t, err, &ce)
}

func TestParseHeaderDefaultsMissingInts(t *testing.T) {
	buf := append([]byte(buildLine("U,N1")), []byte(buildLine("L,"))...)
	md, err := parseHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, 0, md.Model)
	assert.Equal(t, "Unknown", md.ModelString())
}

func TestParseHeaderTwosComplementChecksumMode(t *testing.T) {
	body := "U,N1"
	var xor byte
	for i := 0; i < len(body); i++ {
		xor ^= body[i]
	}
	twos := byte(-int8(xor))
	line := "$" + body + "*" + hexByte(twos) + "\r\n"

	buf := append([]byte(line), []byte(buildLine("L,"))...)

	_, err := parseHeaderMode(buf, ChecksumXOR)
	require.Error(t, err, "XOR mode must reject a two's-complement-encoded checksum")

	_, err = parseHeaderMode(buf, ChecksumTwosComplement)
	require.NoError(t, err)
}

func hexByte(b byte) string {
	const hex = "0123456789ABCDEF"
	return string([]byte{hex[b>>4], hex[b&0xF]})
}

func TestYearPivot(t *testing.T) {
	var buf []byte
	buf = append(buf, buildLine("U,N1")...)
	buf = append(buf, buildLine("T,1,1,49,0,0")...)
	buf = append(buf, buildLine("L,")...)
	md, err := parseHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, 2049, md.DownloadTime.Year)

	var buf2 []byte
	buf2 = append(buf2, buildLine("U,N1")...)
	buf2 = append(buf2, buildLine("T,1,1,51,0,0")...)
	buf2 = append(buf2, buildLine("L,")...)
	md2, err := parseHeader(buf2)
	require.NoError(t, err)
	assert.Equal(t, 1951, md2.DownloadTime.Year)
}
