package docdetect

import (
	"fmt"
	"regexp"
	"sort"
)

// DocumentType is the document family a scan was classified as.
type DocumentType string

const (
	DocTypePassport       DocumentType = "passport"
	DocTypeDrivingLicense DocumentType = "driving_license"
)

// Driving-license field names. These are part of the public contract and
// must stay stable for downstream consumers.
const (
	FieldStateName     = "StateName"
	FieldAddress       = "address"
	FieldZipCode       = "zipCode"
	FieldDateOfBirth   = "dateOfBirth"
	FieldFirstName     = "firstName"
	FieldLastName      = "lastName"
	FieldLicenseNumber = "licenseNumber"
	FieldSex           = "sex"
)

// Passport field names.
const (
	FieldAuthority      = "authority"
	FieldGender         = "gender"
	FieldGivenNames     = "givenNames"
	FieldNationality    = "nationality"
	FieldPassportNumber = "passportNumber"
	FieldPlaceOfBirth   = "placeOfBirth"
	FieldSurname        = "surname"
)

// FieldSet is the fixed, enumerated set of output field names for one
// document family. Unknown names are rejected at assignment time rather
// than silently dropped.
type FieldSet struct {
	names []string
	index map[string]struct{}
}

// NewFieldSet creates a field set from the given names.
func NewFieldSet(names ...string) *FieldSet {
	s := &FieldSet{
		names: append([]string(nil), names...),
		index: make(map[string]struct{}, len(names)),
	}
	for _, n := range names {
		s.index[n] = struct{}{}
	}
	return s
}

// Contains reports whether name is a declared field.
func (s *FieldSet) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Names returns the declared field names in declaration order.
func (s *FieldSet) Names() []string {
	return append([]string(nil), s.names...)
}

// FieldValues maps every declared field name to a single resolved string
// value. Every declared name is always present as a key, empty string
// when nothing was found, never absent.
type FieldValues struct {
	set *FieldSet
	m   map[string]string
}

// NewValues returns a value container with every field set to "".
func (s *FieldSet) NewValues() *FieldValues {
	m := make(map[string]string, len(s.names))
	for _, n := range s.names {
		m[n] = ""
	}
	return &FieldValues{set: s, m: m}
}

// Set assigns a value to a declared field. Assigning to an undeclared
// field is an error, not a no-op.
func (v *FieldValues) Set(name, value string) error {
	if !v.set.Contains(name) {
		return fmt.Errorf("unknown field: %s", name)
	}
	v.m[name] = value
	return nil
}

// Get returns the current value of a field ("" for undeclared names).
func (v *FieldValues) Get(name string) string {
	return v.m[name]
}

// Map returns a copy of the resolved values keyed by field name.
func (v *FieldValues) Map() map[string]string {
	out := make(map[string]string, len(v.m))
	for k, val := range v.m {
		out[k] = val
	}
	return out
}

// SortedNames returns the field names in lexical order, for stable output.
func (v *FieldValues) SortedNames() []string {
	names := make([]string, 0, len(v.m))
	for n := range v.m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Family describes one document family's extraction configuration: which
// detector labels are consumed, how they map to output fields, which
// characters survive raw OCR, and which normalizer cleans each field.
type Family struct {
	Type DocumentType

	// Fields is the output field set.
	Fields *FieldSet

	// Labels maps detector class labels to output field names. Labels
	// not present here are ignored during extraction.
	Labels map[string]string

	// Allow removes every character it matches from raw OCR text.
	Allow *regexp.Regexp

	// Normalizers clean the OCR text for specific fields.
	Normalizers map[string]func(string) string
}

// FieldFor returns the output field for a detector label, or "" when the
// label is outside the family's declared set.
func (f *Family) FieldFor(label string) string {
	return f.Labels[label]
}

// DrivingLicenseFamily returns the driving-license extraction config.
func DrivingLicenseFamily() *Family {
	return &Family{
		Type: DocTypeDrivingLicense,
		Fields: NewFieldSet(
			FieldStateName, FieldAddress, FieldZipCode, FieldDateOfBirth,
			FieldFirstName, FieldLastName, FieldLicenseNumber, FieldSex,
		),
		Labels: map[string]string{
			"StateName":     FieldStateName,
			"address":       FieldAddress,
			"dateOfBirth":   FieldDateOfBirth,
			"firstName":     FieldFirstName,
			"lastName":      FieldLastName,
			"licenseNumber": FieldLicenseNumber,
			"sex":           FieldSex,
		},
		Allow: regexp.MustCompile(`[^A-Za-z0-9\s/]`),
		Normalizers: map[string]func(string) string{
			FieldLicenseNumber: CleanLicenseNumber,
			FieldSex:           CleanSex,
			FieldDateOfBirth:   CleanDate,
			FieldAddress:       CleanAddress,
		},
	}
}

// PassportFamily returns the passport extraction config. Detector labels
// come from the passport model's training set and differ from the output
// field names.
func PassportFamily() *Family {
	return &Family{
		Type: DocTypePassport,
		Fields: NewFieldSet(
			FieldAuthority, FieldDateOfBirth, FieldGender, FieldGivenNames,
			FieldNationality, FieldPassportNumber, FieldPlaceOfBirth, FieldSurname,
		),
		Labels: map[string]string{
			"Authority":      FieldAuthority,
			"Date of Birth":  FieldDateOfBirth,
			"Gender":         FieldGender,
			"Given Names":    FieldGivenNames,
			"Nationality":    FieldNationality,
			"Passport No-":   FieldPassportNumber,
			"Place of birth": FieldPlaceOfBirth,
			"Surname":        FieldSurname,
		},
		Allow: regexp.MustCompile(`[^A-Za-z0-9\s/<>-]`),
		Normalizers: map[string]func(string) string{
			FieldPassportNumber: CleanPassportNumber,
			FieldGender:         CleanSex,
			FieldDateOfBirth:    CleanPassportDate,
		},
	}
}
