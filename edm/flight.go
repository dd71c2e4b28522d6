package edm

// Flight is one decoded flight: its samples, its preamble-derived
// header, and any warnings accumulated while locating or decoding it.
// A Flight is immutable once constructed and is safe to share across
// goroutines (§5 "Ordering").
type Flight struct {
	Number   uint16
	Header   *FlightHeader
	Samples  []Sample
	Warnings []string
}

// Valid reports whether the flight has a usable date and at least one
// sample (§7 "A flight with a parse warning but non-empty samples is
// still valid iff it also has a valid date").
func (f *Flight) Valid() bool {
	return f.Header != nil && !f.Header.StartTime.IsZero() && len(f.Samples) > 0
}

// Empty reports whether the flight produced zero samples.
func (f *Flight) Empty() bool { return len(f.Samples) == 0 }

// HasGPS reports whether any sample carries a non-null fix.
func (f *Flight) HasGPS() bool {
	for _, s := range f.Samples {
		if s.Lat != nil && s.Long != nil {
			return true
		}
	}
	return false
}

// Interval is the sampling interval in seconds, falling back to the
// documented default when the preamble's interval was invalid.
func (f *Flight) Interval() int {
	if f.Header == nil {
		return defaultIntervalSec
	}
	return f.Header.IntervalSec
}

// DurationHours is the wall-clock span of the flight's samples, or 0
// if it has fewer than two.
func (f *Flight) DurationHours() float64 {
	if len(f.Samples) < 2 {
		return 0
	}
	d := f.Samples[len(f.Samples)-1].Timestamp.Sub(f.Samples[0].Timestamp)
	return d.Hours()
}

// ParseWarnings returns the ordered list of recoverable warnings
// generated while locating/decoding this flight (§6, §7).
func (f *Flight) ParseWarnings() []string { return f.Warnings }
