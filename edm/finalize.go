package edm

import (
	"math"

	"github.com/shopspring/decimal"
)

// TempUnit selects the output temperature unit for the record
// finalizer's conversion step (§4.6 step 3).
type TempUnit int

const (
	TempOriginal TempUnit = iota
	TempCelsius
	TempFahrenheit
)

// finalizeSample applies the record finalizer (§4.6) in the documented
// order: GSPD bug workaround, negative clamp, temperature conversion,
// fuel-flow scaling, voltage scaling. It mutates fields in place and
// returns the (possibly updated) gspd-bug latch.
func finalizeSample(fields map[string]float64, sourceIsFahrenheit bool, outUnit TempUnit, gspdBugLatched bool) bool {
	gspd := fields["gspd"]

	if gspd == gspdStuckVal && gspdBugLatched {
		gspd = 0
	}
	if gspd < 0 {
		gspd = 0
	}
	if gspd > 0 {
		gspdBugLatched = false
	}
	fields["gspd"] = gspd

	if outUnit != TempOriginal {
		for name := range temperatureFields {
			v := fields[name]
			if v == 0 {
				continue
			}
			fields[name] = convertTemperature(v, sourceIsFahrenheit, outUnit)
		}
	}

	if fields["ff"] > 0 {
		fields["ff"] = scaleTenths(fields["ff"])
	}
	if fields["volt"] > 0 {
		fields["volt"] = scaleTenths(fields["volt"])
	}

	return gspdBugLatched
}

// convertTemperature converts between Fahrenheit and Celsius when the
// requested output unit differs from the source unit, rounding to one
// decimal place.
func convertTemperature(v float64, sourceIsFahrenheit bool, outUnit TempUnit) float64 {
	sourceIsCelsius := !sourceIsFahrenheit
	wantCelsius := outUnit == TempCelsius

	if wantCelsius == sourceIsCelsius {
		return v
	}
	if wantCelsius {
		return round1((v - 32) * 5 / 9)
	}
	return round1(v*9/5 + 32)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// scaleTenths divides by ten with exact decimal rounding (§9's Open
// Question about the reference's round((x/10)*10)/10 dance — this is
// the numerically-equivalent simplification it recommends, done with
// decimal.Decimal rather than float64 to avoid binary rounding noise
// on values like 123/10).
func scaleTenths(v float64) float64 {
	d := decimal.NewFromFloat(v).Div(decimal.NewFromInt(10))
	out, _ := d.Round(1).Float64()
	return out
}
