package booking

import "testing"

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{45, "45 min"},
		{60, "1 hour"},
		{90, "1h 30m"},
		{120, "2 hours"},
		{180, "3 hours"},
		{240, "4 hours"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.minutes); got != tc.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(nil); got != "—" {
		t.Errorf("FormatPrice(nil) = %q", got)
	}
	price := 45.0
	if got := FormatPrice(&price); got != "$45.00" {
		t.Errorf("FormatPrice(45) = %q", got)
	}
	odd := 37.5
	if got := FormatPrice(&odd); got != "$37.50" {
		t.Errorf("FormatPrice(37.5) = %q", got)
	}
}
