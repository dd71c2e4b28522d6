package edm

import "time"

// slotState is the nullable prev[0..128) array from §3: the last-known
// value per slot. A slot is "unseen" until its first non-zero-vs-null
// write; see applyDelta.
type slotState struct {
	value [slotCount]int
	seen  [slotCount]bool
}

// applyDelta implements the single subtle rule in §3: a zero delta
// against a never-seen slot does not mark it seen. It returns the
// slot's value *after* this record, for composing the current sample.
func (s *slotState) applyDelta(slot int, delta int) int {
	if !s.seen[slot] {
		if delta == 0 {
			return 0
		}
		s.value[slot] = slotDefault(slot) + delta
		s.seen[slot] = true
		return s.value[slot]
	}
	s.value[slot] += delta
	return s.value[slot]
}

func (s *slotState) get(slot int) int {
	if !s.seen[slot] {
		return 0
	}
	return s.value[slot]
}

// decoderState is the per-flight mutable state the central state
// machine (§4.4) carries for the duration of one flight. It is
// constructed fresh for each flight and discarded at the end of
// decoding (§9 "Per-flight mutable state as owned object").
type decoderState struct {
	prev      slotState
	clock     time.Time
	interval  time.Duration
	gspdBug   bool // latched true until any positive ground speed is seen
	gps       gpsFilterState
	gpsLongAcc int32
	gpsLatAcc  int32
}

func newDecoderState(start time.Time, intervalSec int, initialLat, initialLong *float64) *decoderState {
	return &decoderState{
		clock:      start,
		interval:   time.Duration(intervalSec) * time.Second,
		gspdBug:    true,
		gps:        newGPSFilterState(initialLat, initialLong),
		gpsLongAcc: gpsAccInit,
		gpsLatAcc:  gpsAccInit,
	}
}
