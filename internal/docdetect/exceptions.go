package docdetect

// RegionOverrides are per-region deviations from the default resolution
// flow, keyed on an already-resolved field value.
type RegionOverrides struct {
	// SkipDOBFallback keeps the box-derived date of birth authoritative,
	// even when empty, instead of scanning whole-image OCR lines.
	SkipDOBFallback bool
}

// stateOverrides is the region exception table, keyed by resolved state
// name. West Virginia licenses print a secondary date near the photo
// that whole-image OCR reads before the real date of birth, so the
// fallback scan is suppressed there. New region exceptions are new
// entries, not new resolver branches.
var stateOverrides = map[string]RegionOverrides{
	"West Virginia": {SkipDOBFallback: true},
}

// overridesForState returns the region overrides for a resolved state.
// The zero value applies everywhere the table is silent.
func overridesForState(state string) RegionOverrides {
	return stateOverrides[state]
}
