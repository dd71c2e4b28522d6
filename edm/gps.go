package edm

import "math"

// Tunable constants for the GPS stabilization filter (§4.5, §9 "GPS
// filter as explicit state" — kept as named constants rather than
// inlined at call sites).
const (
	gpsAccInit        = 240
	gpsMaxJump        = 0.02 // degrees
	gpsStabilityWindow = 2
	gpsKansasAllowance = 50 // samples of large-jump tolerance after a Kansas placeholder
	kansasLat         = 39.05
	kansasLong        = -94.88
	kansasLatchRadius = 0.1 // degrees, used to latch "kansas" from the preamble position
	kansasNearRadius  = 5.0 // degrees, used for the per-sample is_kansas_pos test
)

// gpsFilterState is the per-flight state the stabilization filter
// maintains (§4.5 "Filter state machine").
type gpsFilterState struct {
	hasInitial bool
	kansas     bool

	stableCount               int
	candidateLat, candidateLong *float64
	lastGoodLat, lastGoodLong   *float64

	outputCount, nonKansasCount int

	initialLat, initialLong float64
}

func newGPSFilterState(initialLat, initialLong *float64) gpsFilterState {
	st := gpsFilterState{}
	if initialLat == nil || initialLong == nil {
		return st
	}
	st.hasInitial = true
	st.initialLat = *initialLat
	st.initialLong = *initialLong
	st.kansas = math.Abs(*initialLat-kansasLat) < kansasLatchRadius && math.Abs(*initialLong-kansasLong) < kansasLatchRadius
	return st
}

// accumulateGPS folds one record's raw (pre-sign) delta bytes for the
// four GPS slots into the running 32-bit counters (§4.5
// "Accumulation"). present/raw/sign are indexed by absolute slot
// number (0..127).
func (d *decoderState) accumulateGPS(present, sign [slotCount]bool, raw [slotCount]byte) {
	d.gpsLongAcc += gpsAxisDelta(present, sign, raw, longLowSlot, longHighSlot)
	d.gpsLatAcc += gpsAxisDelta(present, sign, raw, latLowSlot, latHighSlot)
}

func gpsAxisDelta(present, sign [slotCount]bool, raw [slotCount]byte, lowSlot, highSlot int) int32 {
	if !present[lowSlot] {
		return 0
	}
	var magnitude int32
	if present[highSlot] {
		magnitude = int32(raw[highSlot])<<8 | int32(raw[lowSlot])
	} else {
		magnitude = int32(raw[lowSlot])
	}
	if sign[lowSlot] {
		magnitude = -magnitude
	}
	return magnitude
}

// currentPosition converts the running counters into a degrees offset
// from the preamble's initial position (§4.5 "Reading"). ok is false
// when the preamble carried no valid GPS fix, in which case the
// caller must always emit null.
func (d *decoderState) currentPosition() (lat, long float64, ok bool) {
	if !d.gps.hasInitial {
		return 0, 0, false
	}
	latOffset := float64(d.gpsLatAcc-gpsAccInit) / 6000.0
	longOffset := float64(d.gpsLongAcc-gpsAccInit) / 6000.0
	return d.gps.initialLat + latOffset, d.gps.initialLong + longOffset, true
}

// filterSample runs one sample through the stabilization state
// machine (§4.5 "Filter state machine") and returns the accepted
// output, or nil if this sample contributes no reliable fix yet.
func (d *decoderState) filterSample() (lat, long *float64) {
	f := &d.gps

	if d.gpsLongAcc == 0 && d.gpsLatAcc == 0 {
		f.stableCount = 0
		f.candidateLat, f.candidateLong = nil, nil
		f.lastGoodLat, f.lastGoodLong = nil, nil
		return nil, nil
	}

	lat, long2, ok := d.currentPosition()
	if !ok {
		return nil, nil
	}
	long := long2

	isKansasPos := f.kansas && math.Abs(lat-kansasLat) < kansasNearRadius && math.Abs(long-kansasLong) < kansasNearRadius
	allowLargeJump := f.kansas && f.nonKansasCount < gpsKansasAllowance

	if f.candidateLat == nil {
		f.candidateLat, f.candidateLong = ptr(lat), ptr(long)
		f.stableCount = 1
		return nil, nil
	}

	jump := math.Max(math.Abs(lat-*f.candidateLat), math.Abs(long-*f.candidateLong))
	if !allowLargeJump && jump > gpsMaxJump {
		f.candidateLat, f.candidateLong = ptr(lat), ptr(long)
		f.stableCount = 1
		return nil, nil
	}
	f.stableCount++

	if f.stableCount < gpsStabilityWindow {
		f.candidateLat, f.candidateLong = ptr(lat), ptr(long)
		return nil, nil
	}

	if !allowLargeJump && f.nonKansasCount >= gpsKansasAllowance && f.lastGoodLat != nil {
		lastJump := math.Max(math.Abs(lat-*f.lastGoodLat), math.Abs(long-*f.lastGoodLong))
		if lastJump > gpsMaxJump {
			f.candidateLat, f.candidateLong = ptr(lat), ptr(long)
			f.stableCount = 1
			return nil, nil
		}
	}

	f.outputCount++
	if !isKansasPos {
		f.nonKansasCount++
	}
	f.lastGoodLat, f.lastGoodLong = ptr(lat), ptr(long)
	f.candidateLat, f.candidateLong = ptr(lat), ptr(long)

	rLat, rLong := round6(lat), round6(long)
	return &rLat, &rLong
}

func ptr(v float64) *float64 { return &v }

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
