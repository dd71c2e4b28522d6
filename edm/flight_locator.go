package edm

// locateFlights finds the starting byte of every flight-index entry's
// preamble (§4.3). It returns one offset per entry; offset is -1 and
// warn is true when neither candidate position validated.
//
// The cursor starts at binaryOffset and always advances by
// entry.DataBytes() after an entry is processed, whether or not it was
// located, so that a single corrupt/misaligned entry does not cascade
// failures onto every later flight.
func locateFlights(buf []byte, binaryOffset int, index []FlightIndexEntry) (offsets []int, warnings []bool) {
	offsets = make([]int, len(index))
	warnings = make([]bool, len(index))

	cursor := binaryOffset
	for i, entry := range index {
		pos, ok := locateOne(buf, cursor, entry.FlightNumber)
		if ok {
			offsets[i] = pos
		} else {
			offsets[i] = -1
			warnings[i] = true
		}
		cursor += entry.DataBytes()
	}
	return offsets, warnings
}

// locateOne probes the cursor and cursor-1 for the flight number
// marker, accepting a candidate only when its preamble also validates
// (§4.3). cursor-1 exists because data_words is the ceiling of
// actual_bytes/2, so the true gap between consecutive flights can be
// one byte shorter than data_words*2.
func locateOne(buf []byte, cursor int, flightNumber uint16) (int, bool) {
	for _, candidate := range []int{cursor, cursor - 1} {
		if candidate < 0 || candidate+28 > len(buf) {
			continue
		}
		if uint16(buf[candidate])<<8|uint16(buf[candidate+1]) != flightNumber {
			continue
		}
		if validatePreamble(buf[candidate : candidate+28]) {
			return candidate, true
		}
	}
	return 0, false
}

// validatePreamble applies the range checks §4.3 uses to accept a
// located flight-data start marker.
func validatePreamble(preamble []byte) bool {
	_, _, day, month, year, hour, minute, second, ok := decodePreambleDateTime(preamble)
	if !ok {
		return false
	}
	interval := int(be16(preamble, 22))
	if interval < 1 || interval > 60 {
		return false
	}
	if day < 1 || day > 31 {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	if year < 2000 || year > 2050 {
		return false
	}
	if hour > 23 || minute > 59 || second > 59 {
		return false
	}
	return true
}
