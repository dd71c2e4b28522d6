package edm

import "time"

// Sample is one decoded engine-data record (§3 "Sample record"): a
// timestamp, a flat field map over the schema in fieldOrder, and a
// nullable GPS fix.
type Sample struct {
	Timestamp time.Time
	Fields    map[string]float64
	Lat, Long *float64
}
