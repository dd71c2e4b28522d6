package edm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinalizeGSPDStuckValueClampedWhileLatched(t *testing.T) {
	fields := map[string]float64{"gspd": gspdStuckVal}
	latched := finalizeSample(fields, false, TempOriginal, true)
	assert.Equal(t, float64(0), fields["gspd"])
	assert.True(t, latched, "latch stays set until a real positive speed is seen")
}

func TestFinalizeGSPDUnlatchesOnPositiveSpeed(t *testing.T) {
	fields := map[string]float64{"gspd": 42}
	latched := finalizeSample(fields, false, TempOriginal, true)
	assert.Equal(t, float64(42), fields["gspd"])
	assert.False(t, latched)
}

func TestFinalizeGSPDNegativeClampedToZero(t *testing.T) {
	fields := map[string]float64{"gspd": -5}
	finalizeSample(fields, false, TempOriginal, false)
	assert.Equal(t, float64(0), fields["gspd"])
}

func TestFinalizeGSPDStuckValuePassesThroughOnceUnlatched(t *testing.T) {
	fields := map[string]float64{"gspd": gspdStuckVal}
	finalizeSample(fields, false, TempOriginal, false)
	assert.Equal(t, float64(gspdStuckVal), fields["gspd"])
}

func TestFinalizeTemperatureConversionSkipsZero(t *testing.T) {
	fields := map[string]float64{"cht1": 0, "egt1": 400}
	finalizeSample(fields, true, TempCelsius, false)
	assert.Equal(t, float64(0), fields["cht1"], "zero values are never converted")
	assert.InDelta(t, 204.4, fields["egt1"], 0.05)
}

func TestFinalizeTemperatureConversionNoopWhenUnitsMatch(t *testing.T) {
	fields := map[string]float64{"egt1": 400}
	finalizeSample(fields, true, TempFahrenheit, false)
	assert.Equal(t, float64(400), fields["egt1"])
}

func TestFinalizeTemperatureConversionOriginalUnitSkipsAll(t *testing.T) {
	fields := map[string]float64{"egt1": 400}
	finalizeSample(fields, true, TempOriginal, false)
	assert.Equal(t, float64(400), fields["egt1"])
}

func TestFinalizeFuelFlowAndVoltScaling(t *testing.T) {
	fields := map[string]float64{"ff": 123, "volt": 137}
	finalizeSample(fields, false, TempOriginal, false)
	assert.InDelta(t, 12.3, fields["ff"], 1e-9)
	assert.InDelta(t, 13.7, fields["volt"], 1e-9)
}

func TestFinalizeFuelFlowZeroUntouched(t *testing.T) {
	fields := map[string]float64{"ff": 0}
	finalizeSample(fields, false, TempOriginal, false)
	assert.Equal(t, float64(0), fields["ff"])
}
