package docdetect

import "testing"

func TestCleanDate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"dashes with noise", "12-05-1990 noise", "12/05/1990"},
		{"dots", "07.11.1985", "07/11/1985"},
		{"spaces", "scanned 01 02 2003 ok", "01/02/2003"},
		{"already clean", "12/05/1990", "12/05/1990"},
		{"no date", "no date here", ""},
		{"short year", "12-05-90", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanDate(tc.in); got != tc.want {
				t.Errorf("CleanDate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanDateIdempotent(t *testing.T) {
	inputs := []string{"12-05-1990 noise", "07.11.1985", "garbage"}
	for _, in := range inputs {
		once := CleanDate(in)
		if twice := CleanDate(once); twice != once {
			t.Errorf("CleanDate not idempotent on %q: %q then %q", in, once, twice)
		}
	}
}

func TestCleanPassportDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12 May 1990", "12/05/1990"},
		{"03 January 1988", "03/01/1988"},
		{"born 12-05-1990", "12/05/1990"},
		{"12 Nothember 1990", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CleanPassportDate(tc.in); got != tc.want {
			t.Errorf("CleanPassportDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanSex(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"F", "Female"},
		{"f", "Female"},
		{"FEMALE", "Female"},
		{" M ", "Male"},
		{"male", "Male"},
		{"X", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CleanSex(tc.in); got != tc.want {
			t.Errorf("CleanSex(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanLicenseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"a123456789012", "A-123-456-789-012"},
		{"A123456789O12", "A-123-456-789-012"},
		{"A-123-456-789-012", "A-123-456-789-012"},
		{"b 0123456", "B0123456"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CleanLicenseNumber(tc.in); got != tc.want {
			t.Errorf("CleanLicenseNumber(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanLicenseNumberIdempotent(t *testing.T) {
	for _, in := range []string{"a123456789012", "X9876", "noise!!"} {
		once := CleanLicenseNumber(in)
		if twice := CleanLicenseNumber(once); twice != once {
			t.Errorf("CleanLicenseNumber not idempotent on %q: %q then %q", in, once, twice)
		}
	}
}

func TestCleanPassportNumber(t *testing.T) {
	if got := CleanPassportNumber("x12-34 o56"); got != "X1234056" {
		t.Errorf("CleanPassportNumber = %q, want X1234056", got)
	}
}

func TestCleanAddress(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Address: 123 Main St", "123 Main St"},
		{"ADDROSS 456 Oak Ave", "456 Oak Ave"},
		{"123   Main   St", "123 Main St"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CleanAddress(tc.in); got != tc.want {
			t.Errorf("CleanAddress(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeState(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"fix table", "Virqinia", "Virginia"},
		{"fix table after casing", "texa5", "Texas"},
		{"fuzzy", "Califomia", "California"},
		{"exact via casing", "TEXAS", "Texas"},
		{"two words", "west virginia", "West Virginia"},
		{"no match passes through", "Mars", "Mars"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeState(tc.in); got != tc.want {
				t.Errorf("NormalizeState(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestExtractZIP(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Charleston WV 25317-1234", "25317-1234"},
		{"Charleston WV 25317", "25317"},
		{"no zip", ""},
	}
	for _, tc := range cases {
		if got := ExtractZIP(tc.in); got != tc.want {
			t.Errorf("ExtractZIP(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
