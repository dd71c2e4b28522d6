package edm

import "fmt"

// Canonical warning strings (§7). Kept as functions so every call site
// formats them identically.

func warnLocatorFailed() string {
	return "Could not locate flight data start marker"
}

func warnDataExtendsBeyondFile(need, have int) string {
	return fmt.Sprintf("Flight data extends beyond file (need %d, have %d)", need, have)
}

func warnDataTooShort(dataBytes int) string {
	return fmt.Sprintf("Flight data too short (%d bytes)", dataBytes)
}

func warnInvalidInterval(raw int) string {
	return fmt.Sprintf("Invalid recording interval (%d), using default of 6 seconds", raw)
}

func warnNoDataRecords() string {
	return "No data records present after flight header"
}

func warnDecodeFlagsMismatch(a, b uint16) string {
	return fmt.Sprintf("Decode flags mismatch at start of data (0x%04X vs 0x%04X)", a, b)
}

func warnParseError(detail string) string {
	return fmt.Sprintf("Parse error: %s", detail)
}
