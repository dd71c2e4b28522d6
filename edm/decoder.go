package edm

import "time"

// minimumRecordSize bounds emission (§8): skip(1) + decode flags a/b
// (2+2) + repeat_count(1) = 6 bytes is the smallest a record can be
// when it carries zero field/sign/delta bytes.
const minimumRecordSize = 6

// decodeFlightSamples is the central state machine (§4.4): it walks
// the compressed record stream for one flight, maintaining the
// 128-slot state, the GPS accumulators, and the virtual clock, and
// returns one Sample per compressed record plus any warnings
// generated along the way. It never panics or returns an error —
// truncated or mismatched data simply ends the stream early and keeps
// whatever was already emitted (§4.4 "Termination", §7).
func decodeFlightSamples(buf []byte, flightStart int, dataBytes int, header *FlightHeader, outUnit TempUnit) ([]Sample, []string) {
	var warnings []string
	warnings = append(warnings, header.Warnings...)

	flightEnd := flightStart + dataBytes
	if dataBytes < 28 {
		warnings = append(warnings, warnDataTooShort(dataBytes))
		return nil, warnings
	}
	if flightEnd > len(buf) {
		warnings = append(warnings, warnDataExtendsBeyondFile(flightEnd, len(buf)))
		flightEnd = len(buf)
	}

	pos := flightStart + 28
	if pos > flightEnd-minimumRecordSize {
		warnings = append(warnings, warnNoDataRecords())
		return nil, warnings
	}

	st := newDecoderState(header.StartTime, header.IntervalSec, header.InitialLat, header.InitialLong)

	var samples []Sample
	firstRecord := true

	for pos <= flightEnd-minimumRecordSize {
		rec, newPos, ok := decodeOneRecord(buf, pos, flightEnd)
		if !ok {
			warnings = append(warnings, warnParseError("truncated record"))
			break
		}
		pos = newPos

		if rec.flagsA != rec.flagsB {
			if firstRecord {
				warnings = append(warnings, warnDecodeFlagsMismatch(rec.flagsA, rec.flagsB))
			}
			break
		}

		st.clock = st.clock.Add(time.Duration(rec.repeatCount) * st.interval)

		fields := make(map[string]float64, len(fieldOrder))
		for _, f := range fieldOrder {
			if f.isPair() {
				lo := st.prev.applyDelta(f.Low, rec.delta[f.Low])
				hi := st.prev.applyDelta(f.High, rec.delta[f.High])
				fields[f.Name] = float64(lo + hi<<8)
			} else {
				fields[f.Name] = float64(st.prev.applyDelta(f.Low, rec.delta[f.Low]))
			}
		}
		// Apply deltas for every other present slot too, including the
		// four GPS slots, so the slot-state invariants in §8 hold for
		// slots that aren't part of the named schema.
		for s := 0; s < slotCount; s++ {
			if !rec.present[s] {
				continue
			}
			if _, handled := handledSlots[s]; handled {
				continue
			}
			st.prev.applyDelta(s, rec.delta[s])
		}

		st.accumulateGPS(rec.present, rec.sign, rec.raw)
		lat, long := st.filterSample()

		st.gspdBug = finalizeSample(fields, header.FahrenheitSource, outUnit, st.gspdBug)

		samples = append(samples, Sample{
			Timestamp: st.clock,
			Fields:    fields,
			Lat:       lat,
			Long:      long,
		})

		st.clock = st.clock.Add(st.interval)
		firstRecord = false
	}

	return samples, warnings
}

// handledSlots are the slots already walked by the fieldOrder loop
// above, so the "everything else" loop doesn't double-apply deltas.
var handledSlots = func() map[int]struct{} {
	m := map[int]struct{}{}
	for _, f := range fieldOrder {
		m[f.Low] = struct{}{}
		if f.isPair() {
			m[f.High] = struct{}{}
		}
	}
	return m
}()

// rawRecord is the parsed-but-not-yet-applied form of one compressed
// record (§4.4 steps 1-8).
type rawRecord struct {
	flagsA, flagsB uint16
	repeatCount    int
	present        [slotCount]bool
	sign           [slotCount]bool
	delta          [slotCount]int
	raw            [slotCount]byte
}

// decodeOneRecord reads one compressed record starting at pos. ok is
// false if the buffer ran out mid-record (a truncated read, §4.4
// "Termination").
func decodeOneRecord(buf []byte, pos int, limit int) (rawRecord, int, bool) {
	var rec rawRecord

	r := &cursor{buf: buf, pos: pos, limit: limit}

	r.skip(1) // undocumented padding byte (§4.4 step 1, §9)
	rec.flagsA = r.u16()
	rec.flagsB = r.u16()
	rec.repeatCount = int(r.u8())
	if r.err {
		return rec, pos, false
	}
	if rec.flagsA != rec.flagsB {
		// Mismatched decode flags end the stream; the rest of this
		// record is not read.
		return rec, r.pos, true
	}

	decodeFlags := rec.flagsA

	var fieldFlags [16]byte
	for i := 0; i < 16; i++ {
		if decodeFlags&(1<<uint(i)) != 0 {
			fieldFlags[i] = r.u8()
		}
	}

	var signFlags [16]byte
	for i := 0; i < 16; i++ {
		if decodeFlags&(1<<uint(i)) != 0 && i != 6 && i != 7 {
			signFlags[i] = r.u8()
		}
	}
	if r.err {
		return rec, pos, false
	}

	for i := 0; i < 16; i++ {
		for b := 0; b < 8; b++ {
			slot := i*8 + b
			if fieldFlags[i]&(1<<uint(b)) != 0 {
				rec.present[slot] = true
			}
			if signFlags[i]&(1<<uint(b)) != 0 {
				rec.sign[slot] = true
			}
		}
	}

	for high, low := range pairHighSlots {
		rec.sign[high] = rec.sign[low]
	}

	for s := 0; s < slotCount; s++ {
		if !rec.present[s] {
			continue
		}
		raw := r.u8()
		if r.err {
			return rec, pos, false
		}
		rec.raw[s] = raw
		if rec.sign[s] {
			rec.delta[s] = -int(raw)
		} else {
			rec.delta[s] = int(raw)
		}
	}

	return rec, r.pos, true
}

// cursor is a bounds-checked big-endian byte reader over a fixed
// window. Once err is set, every further read is a no-op returning 0.
type cursor struct {
	buf   []byte
	pos   int
	limit int
	err   bool
}

func (c *cursor) u8() byte {
	if c.err || c.pos >= c.limit {
		c.err = true
		return 0
	}
	b := c.buf[c.pos]
	c.pos++
	return b
}

func (c *cursor) u16() uint16 {
	hi := c.u8()
	lo := c.u8()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *cursor) skip(n int) {
	for i := 0; i < n; i++ {
		c.u8()
	}
}
