package docdetect

import "strings"

// resolvePassport applies the passport family's resolution rules.
// Structurally the same shape as the license resolver, with fewer
// positional heuristics: passports print labeled fields in fixed zones,
// so longest-wins per field is usually enough.
func resolvePassport(family *Family, cands []Candidate, ocrLines []string) *FieldValues {
	values := family.Fields.NewValues()

	for _, field := range family.Fields.Names() {
		if field == FieldDateOfBirth {
			// The printed DOB zone overlaps the machine-readable strip;
			// the whole-image scan reads it more reliably than the crop.
			continue
		}
		_ = values.Set(field, longestText(candidatesFor(cands, field)))
	}

	if dob := findPassportDOBInLines(ocrLines); dob != "" {
		_ = values.Set(FieldDateOfBirth, dob)
	}
	if values.Get(FieldGender) == "" {
		if g := findSexInLines(ocrLines); g != "" {
			_ = values.Set(FieldGender, g)
		}
	}

	return values
}

// findPassportDOBInLines is findDOBInLines extended with the textual
// month form ("12 May 1990") passports commonly use.
func findPassportDOBInLines(lines []string) string {
	for _, line := range lines {
		if d := CleanPassportDate(line); reDOBShape.MatchString(d) {
			return d
		}
	}
	return ""
}

// joinLower joins OCR lines into the lower-cased text blob the
// classifier's keyword scoring consumes.
func joinLower(lines []string) string {
	return strings.ToLower(strings.Join(lines, "\n"))
}
