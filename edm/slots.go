package edm

// The decoder addresses a virtual array of 128 single-byte slots. A
// logical field is either a single slot, whose value is the slot's
// accumulated byte, or a (low, high) pair, whose value is
// low + (high << 8).
//
// Every slot defaults to 0xF0 the first time it is written, except the
// "hp" slot (default 0) and every high byte of a two-slot pair
// (default 0). See slotDefault.
const (
	slotCount    = 128
	defaultByte  = 0xF0
	hpSlot       = 30
	gspdStuckVal = 150
)

// fieldSpec describes one named field of a decoded sample. High is -1
// for single-slot fields.
type fieldSpec struct {
	Name string
	Low  int
	High int
}

func (f fieldSpec) isPair() bool { return f.High >= 0 }

// fieldOrder is the canonical schema in the order §4.4/§4.7 specify.
// GPS latitude/longitude are handled by the dedicated stabilization
// filter, not by this generic slot composition, so they are absent
// here and appended separately by the CSV emitter and Sample type.
var fieldOrder = []fieldSpec{
	{"egt1", 0, 48},
	{"egt2", 1, 49},
	{"egt3", 2, 50},
	{"egt4", 3, 51},
	{"egt5", 4, 52},
	{"egt6", 5, 53},
	{"cht1", 8, -1},
	{"cht2", 9, -1},
	{"cht3", 10, -1},
	{"cht4", 11, -1},
	{"cht5", 12, -1},
	{"cht6", 13, -1},
	{"cld", 14, -1},
	{"oil_t", 15, -1},
	{"mark", 16, -1},
	{"oil_p", 17, -1},
	{"crb", 18, -1},
	{"volt", 20, -1},
	{"oat", 21, -1},
	{"usd", 22, -1},
	{"ff", 23, -1},
	{"hp", hpSlot, -1},
	{"map", 40, -1},
	{"rpm", 41, 42},
	{"hours", 78, 79},
	{"alt", 83, -1},
	{"gspd", 85, -1},
}

// temperatureFields lists the fields the finalizer converts between
// Fahrenheit and Celsius (§4.6 step 3).
var temperatureFields = map[string]bool{
	"egt1": true, "egt2": true, "egt3": true, "egt4": true, "egt5": true, "egt6": true,
	"cht1": true, "cht2": true, "cht3": true, "cht4": true, "cht5": true, "cht6": true,
	"crb": true, "cld": true, "oil_t": true, "oat": true,
}

// Slots 81/82/86/87 feed the GPS stabilization filter (§4.5) instead
// of a named field; longLowSlot/longHighSlot/latLowSlot/latHighSlot
// name them for readability at the call sites that read raw bytes out
// of the per-record slot walk.
const (
	longLowSlot  = 86
	longHighSlot = 81
	latLowSlot   = 87
	latHighSlot  = 82
)

// pairHighSlots is the set of slots that are the high byte of some
// two-slot pair (egt1-6, rpm, hours, and the GPS axes); they default
// to 0 rather than 0xF0, and inherit their sign flag from the pair's
// low slot (§3 Invariants, §4.4 step 7).
var pairHighSlots = func() map[int]int {
	m := map[int]int{}
	for _, f := range fieldOrder {
		if f.isPair() {
			m[f.High] = f.Low
		}
	}
	m[longHighSlot] = longLowSlot
	m[latHighSlot] = latLowSlot
	return m
}()

func slotDefault(slot int) int {
	if slot == hpSlot {
		return 0
	}
	if _, ok := pairHighSlots[slot]; ok {
		return 0
	}
	return defaultByte
}
