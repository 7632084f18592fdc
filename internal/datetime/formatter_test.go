package datetime

import "testing"

// 2024-03-05 14:07:09 UTC
const ts = int64(1709647629)

func TestFormat(t *testing.T) {
	f, err := NewFormatter("UTC")
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}

	tests := []struct {
		formatType string
		pattern    string
		want       string
	}{
		{FormatShort, "", "03/05/2024 - 14:07"},
		{FormatMedium, "", "Tue, 03/05/2024 - 14:07"},
		{FormatLong, "", "Tuesday, March 5, 2024 - 14:07"},
		{FormatHTMLDate, "", "2024-03-05"},
		{FormatCustom, MetadataPattern, "2024-03-05 14:07:09 +0000"},
		{"unknown", "", "Tue, 03/05/2024 - 14:07"},
	}

	for _, tt := range tests {
		t.Run(tt.formatType, func(t *testing.T) {
			if got := f.Format(ts, tt.formatType, tt.pattern); got != tt.want {
				t.Errorf("Format(%s) = %q, want %q", tt.formatType, got, tt.want)
			}
		})
	}
}

func TestFormatTimezone(t *testing.T) {
	f, err := NewFormatter("Europe/Paris")
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}
	if got := f.Format(ts, FormatCustom, MetadataPattern); got != "2024-03-05 15:07:09 +0100" {
		t.Errorf("unexpected paris time %q", got)
	}
}

func TestParseRoundTrip(t *testing.T) {
	f, err := NewFormatter("Europe/Paris")
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}
	formatted := f.Format(ts, FormatCustom, MetadataPattern)
	got, err := f.Parse(formatted, MetadataPattern)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != ts {
		t.Errorf("Parse() = %d, want %d", got, ts)
	}
}

func TestLayoutEscapes(t *testing.T) {
	if got := Layout(`Y\-\m`); got != "2006-m" {
		t.Errorf("Layout() = %q", got)
	}
}

func TestNewFormatterRejectsUnknownZone(t *testing.T) {
	if _, err := NewFormatter("Mars/Olympus"); err == nil {
		t.Error("expected error for unknown timezone")
	}
}
