package edm

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// tailNumberCaser normalizes a $U record's tail number to uppercase;
// files observed in the wild mix case ("n12345", "N12345").
var tailNumberCaser = cases.Upper(language.Und)

// AlarmLimits mirrors the $A header record (§4.2).
type AlarmLimits struct {
	VoltsHigh int // tenths of a volt
	VoltsLow  int
	DIF       int
	CHT       int
	CLD       int
	TIT       int
	OilHigh   int
	OilLow    int
}

// FuelConfig mirrors the $F header record.
type FuelConfig struct {
	A, B, C, D, E int
}

// FlightIndexEntry is one $D record: a flight number and its data
// length in 16-bit words.
type FlightIndexEntry struct {
	FlightNumber uint16
	DataWords    uint16
}

// DataBytes is data_words * 2 (§3; the odd-length caveat is handled by
// the flight locator, not here).
func (e FlightIndexEntry) DataBytes() int { return int(e.DataWords) * 2 }

// Metadata is the immutable, file-wide result of parsing the ASCII
// header (§3).
type Metadata struct {
	TailNumber      string
	Model           int
	DownloadTime    timeFields
	Alarms          AlarmLimits
	Fuel            FuelConfig
	Flags           uint32
	ConfigExtra     []int
	FlightIndex     []FlightIndexEntry
	BinaryOffset    int
}

// timeFields is the parsed value of a $T record (month, day, 2-digit
// year pivoted at 50, hour, minute, optional seconds).
type timeFields struct {
	Month, Day, Year, Hour, Minute, Second int
}

// ModelString renders the $C model field as "EDM-<n>", or "Unknown"
// if no $C record was seen.
func (m *Metadata) ModelString() string {
	if m.Model == 0 {
		return "Unknown"
	}
	return "EDM-" + strconv.Itoa(m.Model)
}

// ChecksumMode selects how a header line's trailing *HH suffix is
// verified. Firmware below 3.00 always uses XOR (§4.1); §9 notes a
// later two's-complement variant that no retrieved file exercises, so
// it is opt-in rather than auto-detected.
type ChecksumMode int

const (
	ChecksumXOR ChecksumMode = iota
	ChecksumTwosComplement
)

// verifyChecksum checks the XOR of every byte strictly between the
// leading '$' and the '*' preceding the two-hex-digit suffix (§4.1).
func verifyChecksum(line string) error {
	return verifyChecksumMode(line, ChecksumXOR)
}

func verifyChecksumMode(line string, mode ChecksumMode) error {
	star := strings.LastIndexByte(line, '*')
	if star < 0 || star+3 > len(line) || line == "" || line[0] != '$' {
		return &HeaderParseError{Reason: "malformed header line: " + line}
	}
	suffix := line[star+1 : star+3]
	expected, err := strconv.ParseUint(suffix, 16, 8)
	if err != nil {
		return &HeaderParseError{Reason: "bad checksum suffix: " + line}
	}

	var xor byte
	for i := 1; i < star; i++ {
		xor ^= line[i]
	}

	actual := xor
	if mode == ChecksumTwosComplement {
		actual = byte(-int8(xor))
	}

	if actual != byte(expected) {
		return &ChecksumError{Line: line, Expected: byte(expected), Actual: actual}
	}
	return nil
}

// parseHeader scans CR-LF-delimited "$X,...*HH" lines starting at
// offset 0 until a line not starting with '$' is found, or until the
// terminating $L record. It returns the parsed metadata and the byte
// offset at which the binary stream begins.
func parseHeader(buf []byte) (*Metadata, error) {
	return parseHeaderMode(buf, ChecksumXOR)
}

func parseHeaderMode(buf []byte, mode ChecksumMode) (*Metadata, error) {
	if len(buf) < 2 || buf[0] != '$' || buf[1] != 'U' {
		return nil, &HeaderParseError{Reason: "Not a valid JPI file"}
	}

	md := &Metadata{}
	sawL := false
	pos := 0

	for pos < len(buf) {
		if buf[pos] != '$' {
			break
		}
		nl := indexCRLF(buf, pos)
		var line string
		var next int
		if nl < 0 {
			line = string(buf[pos:])
			next = len(buf)
		} else {
			line = string(buf[pos:nl])
			next = nl + 2
		}

		if err := verifyChecksumMode(line, mode); err != nil {
			return nil, err
		}

		star := strings.LastIndexByte(line, '*')
		body := line[1:star] // drop leading '$' and trailing '*HH'
		tag := body[0:1]
		var fields []string
		if len(body) > 1 {
			fields = splitTrim(body[2:])
		}

		switch tag {
		case "U":
			md.TailNumber = tailNumberCaser.String(strings.TrimSpace(strings.Join(fields, ",")))
		case "A":
			ints := parseInts(fields, 8)
			md.Alarms = AlarmLimits{
				VoltsHigh: ints[0], VoltsLow: ints[1], DIF: ints[2], CHT: ints[3],
				CLD: ints[4], TIT: ints[5], OilHigh: ints[6], OilLow: ints[7],
			}
		case "C":
			ints := parseInts(fields, 3)
			md.Model = ints[0]
			md.Flags = uint32(uint16(ints[1])) | uint32(uint16(ints[2]))<<16
			if len(fields) > 3 {
				for _, s := range fields[3:] {
					if len(md.ConfigExtra) >= 6 {
						break
					}
					md.ConfigExtra = append(md.ConfigExtra, parseIntDefault(s, 0))
				}
			}
		case "D":
			ints := parseInts(fields, 2)
			md.FlightIndex = append(md.FlightIndex, FlightIndexEntry{
				FlightNumber: uint16(ints[0]),
				DataWords:    uint16(ints[1]),
			})
		case "F":
			ints := parseInts(fields, 5)
			md.Fuel = FuelConfig{A: ints[0], B: ints[1], C: ints[2], D: ints[3], E: ints[4]}
		case "T":
			ints := parseInts(fields, 5)
			year := ints[2]
			if year < 50 {
				year += 2000
			} else if year < 100 {
				year += 1900
			}
			sec := 0
			if len(fields) > 5 {
				sec = parseIntDefault(fields[5], 0)
			}
			md.DownloadTime = timeFields{
				Month: ints[0], Day: ints[1], Year: year, Hour: ints[3], Minute: ints[4], Second: sec,
			}
		case "P", "H":
			// recognized, body unused.
		case "L":
			sawL = true
		}

		pos = next
		if tag == "L" {
			break
		}
	}

	if !sawL {
		return nil, &HeaderParseError{Reason: "No $L record found"}
	}

	md.BinaryOffset = pos
	return md, nil
}

func indexCRLF(buf []byte, from int) int {
	for i := from; i+1 < len(buf); i++ {
		if buf[i] == '\r' && buf[i+1] == '\n' {
			return i
		}
	}
	return -1
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseIntDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// parseInts maps fields to integers, defaulting to 0 for any missing
// or unparseable entry (observed files pad with blanks, §4.2).
func parseInts(fields []string, n int) []int {
	out := make([]int, n)
	for i := 0; i < n && i < len(fields); i++ {
		out[i] = parseIntDefault(fields[i], 0)
	}
	return out
}
