package docdetect

import (
	"regexp"
	"sort"
	"strings"
)

var (
	reHouseNumber = regexp.MustCompile(`^\d+\s`)
	rePOBox       = regexp.MustCompile(`(?i)^p\.?\s*o\.?\s*box\s*\d+`)
	reRuralRoute  = regexp.MustCompile(`(?i)^(?:r\.?\s*r\.?|rural\s+route)\s*\d+`)
	reNineZIP     = regexp.MustCompile(`\b(\d{9})\b`)
	reFullZIP     = regexp.MustCompile(`\b\d{5}-\d{4}\b`)
	reDOBShape    = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}`)

	// License-number fallback shapes, tried in order against corrected
	// whole-image text. The formatted state shape is more trustworthy
	// than the generic letters-then-digits one.
	reLicenseFormatted = regexp.MustCompile(`\b[A-Z]-?\d{3}-?\d{3}-?\d{3}-?\d{3}\b`)
	reLicenseGeneric   = regexp.MustCompile(`\b[A-Z]{1,2}\d{6,12}\b`)
)

// resolveDrivingLicense applies the per-field resolution rules over the
// candidate list plus whole-image OCR lines, producing one value per
// declared field.
func resolveDrivingLicense(family *Family, cands []Candidate, ocrLines []string) *FieldValues {
	values := family.Fields.NewValues()

	// Scalar fields: longest non-empty candidate wins, first seen on
	// ties. Date of birth is held back; the region exception decides
	// whether the box value or the whole-image fallback is authoritative.
	for _, field := range []string{FieldStateName, FieldLicenseNumber, FieldSex} {
		_ = values.Set(field, longestText(candidatesFor(cands, field)))
	}
	dobFromBox := longestText(candidatesFor(cands, FieldDateOfBirth))

	resolveAddress(values, cands, ocrLines)
	resolveNames(values, cands)

	// State: a box candidate survives only if it normalizes to an exact
	// valid state; otherwise scan every OCR line for a whole-word state
	// mention.
	state := NormalizeState(values.Get(FieldStateName))
	if !IsValidState(state) {
		state = findStateInLines(ocrLines)
	}
	_ = values.Set(FieldStateName, state)

	// Date of birth and sex. The exception table may pin DOB to the
	// box-derived value, even when that value is empty.
	if overridesForState(state).SkipDOBFallback {
		_ = values.Set(FieldDateOfBirth, dobFromBox)
	} else {
		_ = values.Set(FieldDateOfBirth, dobFromBox)
		if dob := findDOBInLines(ocrLines); dob != "" {
			_ = values.Set(FieldDateOfBirth, dob)
		}
		if values.Get(FieldSex) == "" {
			if sex := findSexInLines(ocrLines); sex != "" {
				_ = values.Set(FieldSex, sex)
			}
		}
	}

	// License number: the whole-image fallback match overrides the box
	// value whenever one exists; crops of this field misread badly.
	if ln := findLicenseInLines(ocrLines); ln != "" {
		_ = values.Set(FieldLicenseNumber, CleanLicenseNumber(ln))
	}

	return values
}

// resolveAddress prefers candidates that look like a deliverable street
// address; with none, the longest candidate of any shape wins. The ZIP
// is then repaired against OCR lines and stored separately.
func resolveAddress(values *FieldValues, cands []Candidate, ocrLines []string) {
	addrCands := candidatesFor(cands, FieldAddress)

	var valid []Candidate
	for _, c := range addrCands {
		if isPlausibleAddress(c.Text) {
			valid = append(valid, c)
		}
	}
	addr := longestText(valid)
	if addr == "" {
		addr = longestText(addrCands)
	}
	if addr != "" {
		addr = fixAddressZIP(addr, ocrLines)
	}
	_ = values.Set(FieldAddress, addr)
	_ = values.Set(FieldZipCode, ExtractZIP(addr))
}

// isPlausibleAddress accepts house-number, PO-Box, and rural-route forms.
func isPlausibleAddress(s string) bool {
	t := strings.TrimSpace(s)
	return reHouseNumber.MatchString(t) || rePOBox.MatchString(t) || reRuralRoute.MatchString(t)
}

// fixAddressZIP repairs a run-together nine-digit ZIP (253171234 ->
// 25317-1234), preferring a correctly formatted ZIP found on any OCR
// line over a blind split.
func fixAddressZIP(addr string, ocrLines []string) string {
	m := reNineZIP.FindString(addr)
	if m == "" {
		return addr
	}
	fixed := m[:5] + "-" + m[5:]
	for _, line := range ocrLines {
		if better := reFullZIP.FindString(line); better != "" {
			return strings.Replace(addr, m, better, 1)
		}
	}
	return strings.Replace(addr, m, fixed, 1)
}

// resolveNames fills firstName/lastName. With both labels present the
// candidates are used directly. With one label missing but two or more
// name-type candidates, vertical position decides: the surname is
// printed above the given name on US licenses. A single multi-word
// candidate is split on whitespace as a last resort.
func resolveNames(values *FieldValues, cands []Candidate) {
	first := candidatesFor(cands, FieldFirstName)
	last := candidatesFor(cands, FieldLastName)

	if len(first) > 0 && len(last) > 0 {
		_ = values.Set(FieldFirstName, longestText(first))
		_ = values.Set(FieldLastName, longestText(last))
		return
	}

	nameCands := append(append([]Candidate(nil), first...), last...)
	if len(nameCands) >= 2 {
		sorted := append([]Candidate(nil), nameCands...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CenterY < sorted[j].CenterY })
		_ = values.Set(FieldLastName, sorted[0].Text)
		_ = values.Set(FieldFirstName, sorted[len(sorted)-1].Text)
		return
	}

	_ = values.Set(FieldFirstName, longestText(first))
	_ = values.Set(FieldLastName, longestText(last))

	// One side resolved as a multi-word string, the other empty: split.
	if values.Get(FieldFirstName) != "" && values.Get(FieldLastName) == "" {
		if words := strings.Fields(values.Get(FieldFirstName)); len(words) > 1 {
			_ = values.Set(FieldFirstName, words[0])
			_ = values.Set(FieldLastName, strings.Join(words[1:], " "))
		}
	} else if values.Get(FieldLastName) != "" && values.Get(FieldFirstName) == "" {
		if words := strings.Fields(values.Get(FieldLastName)); len(words) > 1 {
			_ = values.Set(FieldFirstName, words[0])
			_ = values.Set(FieldLastName, strings.Join(words[1:], " "))
		}
	}
}

// findStateInLines scans OCR lines for a whole-word valid-state mention,
// line order outermost.
func findStateInLines(lines []string) string {
	for _, line := range lines {
		for _, state := range ValidStates {
			if wholeWordMatch(line, state) {
				return state
			}
		}
	}
	return ""
}

func wholeWordMatch(line, phrase string) bool {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)
	return re.MatchString(line)
}

// findDOBInLines returns the first line that cleans to a full date.
func findDOBInLines(lines []string) string {
	for _, line := range lines {
		if d := CleanDate(line); reDOBShape.MatchString(d) {
			return d
		}
	}
	return ""
}

// findSexInLines locates the "sex"/"gender" label line and takes its
// trailing token, or the next line's leading token when the label stands
// alone.
func findSexInLines(lines []string) string {
	for i, line := range lines {
		l := strings.ReplaceAll(strings.ToLower(line), ":", "")
		if !strings.Contains(l, "sex") && !strings.Contains(l, "gender") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) > 1 {
			return CleanSex(parts[len(parts)-1])
		}
		if i+1 < len(lines) {
			next := strings.Fields(lines[i+1])
			if len(next) > 0 {
				return CleanSex(next[0])
			}
		}
		return ""
	}
	return ""
}

// findLicenseInLines scans joined OCR text for a license number, after
// upper-casing and correcting the O/0 and Q/0 confusions. The formatted
// state shape is tried before the generic one.
func findLicenseInLines(lines []string) string {
	joined := strings.ToUpper(strings.Join(lines, " "))
	joined = strings.NewReplacer("O", "0", "Q", "0").Replace(joined)

	if m := reLicenseFormatted.FindString(joined); m != "" {
		return m
	}
	return reLicenseGeneric.FindString(joined)
}
