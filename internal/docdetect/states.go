package docdetect

// ValidStates is the fixed list of US state names a license can carry.
// Order matters: the whole-image fallback scan accepts the first match
// in OCR-line order, then in this order within a line.
var ValidStates = []string{
	"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado",
	"Connecticut", "Delaware", "Florida", "Georgia", "Hawaii", "Idaho",
	"Illinois", "Indiana", "Iowa", "Kansas", "Kentucky", "Louisiana",
	"Maine", "Maryland", "Massachusetts", "Michigan", "Minnesota",
	"Mississippi", "Missouri", "Montana", "Nebraska", "Nevada",
	"New Hampshire", "New Jersey", "New Mexico", "New York",
	"North Carolina", "North Dakota", "Ohio", "Oklahoma", "Oregon",
	"Pennsylvania", "Rhode Island", "South Carolina", "South Dakota",
	"Tennessee", "Texas", "Utah", "Vermont", "Virginia", "Washington",
	"West Virginia", "Wisconsin", "Wyoming",
}

var validStateSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(ValidStates))
	for _, s := range ValidStates {
		m[s] = struct{}{}
	}
	return m
}()

// IsValidState reports whether name is exactly one of the valid states.
func IsValidState(name string) bool {
	_, ok := validStateSet[name]
	return ok
}

// stateFixTable corrects misreadings seen often enough in scans to be
// worth an exact entry; anything else goes through the fuzzy match.
// Declarative data, extend freely.
var stateFixTable = map[string]string{
	"Virqinia":      "Virginia",
	"Virginla":      "Virginia",
	"West Virqinia": "West Virginia",
	"0hio":          "Ohio",
	"Texa5":         "Texas",
	"Florlda":       "Florida",
	"Callfornia":    "California",
	"Kentucky7":     "Kentucky",
	"Lowa":          "Iowa",
}
