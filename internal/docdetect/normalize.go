package docdetect

import (
	"regexp"
	"strings"
	"time"

	"github.com/agext/levenshtein"
)

// fuzzyThreshold is the minimum similarity for a fuzzy match, shared by
// state correction and address label stripping.
const fuzzyThreshold = 0.75

var (
	reDate        = regexp.MustCompile(`(\d{2})\D(\d{2})\D(\d{4})`)
	reMonthDate   = regexp.MustCompile(`(\d{1,2})\s+([A-Za-z]{3,})\s+(\d{4})`)
	reLicenseFull = regexp.MustCompile(`^([A-Z])(\d{12})$`)
	reNonLicense  = regexp.MustCompile(`[^A-Z0-9-]`)
	reNonPassport = regexp.MustCompile(`[^A-Z0-9]`)
	reZIP         = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
	reSpaces      = regexp.MustCompile(`\s+`)
)

// CleanDate finds the first dd?mm?yyyy triplet (any single non-digit
// separator) and rewrites it as DD/MM/YYYY. Returns "" when no triplet
// is present.
func CleanDate(raw string) string {
	m := reDate.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return m[1] + "/" + m[2] + "/" + m[3]
}

// CleanPassportDate is CleanDate extended with the "12 May 1990" form
// that passports commonly carry.
func CleanPassportDate(raw string) string {
	if d := CleanDate(raw); d != "" {
		return d
	}
	m := reMonthDate.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	for _, layout := range []string{"2 Jan 2006", "2 January 2006"} {
		if t, err := time.Parse(layout, m[1]+" "+m[2]+" "+m[3]); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return ""
}

// CleanSex maps OCR text to "Female"/"Male" by the leading letter.
// Unrecognized input resolves to "" rather than passing through.
func CleanSex(raw string) string {
	t := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(t, "F"):
		return "Female"
	case strings.HasPrefix(t, "M"):
		return "Male"
	default:
		return ""
	}
}

// CleanLicenseNumber strips everything outside [A-Z0-9-] after
// upper-casing and corrects the O/0 OCR confusion. A result shaped as
// one letter followed by twelve digits is re-segmented into the
// state-issued L-ddd-ddd-ddd-ddd form.
func CleanLicenseNumber(raw string) string {
	t := reNonLicense.ReplaceAllString(strings.ToUpper(raw), "")
	t = strings.ReplaceAll(t, "O", "0")

	if m := reLicenseFull.FindStringSubmatch(t); m != nil {
		digits := m[2]
		t = m[1] + "-" + digits[0:3] + "-" + digits[3:6] + "-" + digits[6:9] + "-" + digits[9:12]
	}
	return t
}

// CleanPassportNumber strips to [A-Z0-9] and corrects O->0.
func CleanPassportNumber(raw string) string {
	t := reNonPassport.ReplaceAllString(strings.ToUpper(raw), "")
	return strings.ReplaceAll(t, "O", "0")
}

// addressLabelWords are the forms of the word "address" (and its common
// OCR misreadings) stripped from address text.
var addressLabelWords = []string{"address", "adress", "addres", "addross"}

// CleanAddress removes the "address" label that detectors frequently
// include in the address crop, tolerating near-miss OCR spellings, then
// collapses whitespace.
func CleanAddress(raw string) string {
	var kept []string
	for _, word := range strings.Fields(raw) {
		if isAddressLabel(word) {
			continue
		}
		kept = append(kept, word)
	}
	return reSpaces.ReplaceAllString(strings.Join(kept, " "), " ")
}

func isAddressLabel(word string) bool {
	w := strings.ToLower(strings.Trim(word, ":.,"))
	for _, label := range addressLabelWords {
		if w == label {
			return true
		}
	}
	return levenshtein.Similarity(w, "address", nil) >= fuzzyThreshold
}

// NormalizeState corrects a state name: exact hit in the misspelling fix
// table first, fuzzy nearest-match against the valid-state list second,
// verbatim pass-through last.
func NormalizeState(raw string) string {
	t := strings.TrimSpace(raw)
	if t == "" {
		return ""
	}
	t = titleCase(t)

	if fixed, ok := stateFixTable[t]; ok {
		return fixed
	}

	best := ""
	bestScore := 0.0
	for _, state := range ValidStates {
		score := levenshtein.Similarity(t, state, nil)
		if score > bestScore {
			best, bestScore = state, score
		}
	}
	if bestScore >= fuzzyThreshold {
		return best
	}
	return t
}

// ExtractZIP returns the first 5-digit or 5+4 ZIP pattern, else "".
func ExtractZIP(s string) string {
	return reZIP.FindString(s)
}

// titleCase uppercases the first letter of each word, lowercasing the
// rest, matching how the valid-state list is written.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
