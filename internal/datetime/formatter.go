// Package datetime renders Unix timestamps using named formats or
// PHP-style custom patterns such as "Y-m-d H:i:s O".
package datetime

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// Named format types.
const (
	FormatShort    = "short"
	FormatMedium   = "medium"
	FormatLong     = "long"
	FormatHTMLDate = "html_date"
	FormatCustom   = "custom"
)

// MetadataPattern is the custom pattern used for translation metadata.
const MetadataPattern = "Y-m-d H:i:s O"

var namedPatterns = map[string]string{
	FormatShort:    "m/d/Y - H:i",
	FormatMedium:   "D, m/d/Y - H:i",
	FormatLong:     "l, F j, Y - H:i",
	FormatHTMLDate: "Y-m-d",
}

// Formatter formats timestamps in a fixed timezone.
type Formatter struct {
	loc *time.Location
	now func() time.Time
}

// NewFormatter loads the named IANA timezone ("UTC" when empty).
func NewFormatter(timezone string) (*Formatter, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Formatter{loc: loc, now: time.Now}, nil
}

// Location returns the formatter's timezone.
func (f *Formatter) Location() *time.Location { return f.loc }

// Now returns the current Unix time.
func (f *Formatter) Now() int64 { return f.now().Unix() }

// SetClock replaces the time source.
func (f *Formatter) SetClock(now func() time.Time) { f.now = now }

// Format renders timestamp with a named type. For FormatCustom the pattern
// argument is used; unknown types fall back to medium.
func (f *Formatter) Format(timestamp int64, formatType, pattern string) string {
	if formatType != FormatCustom {
		p, ok := namedPatterns[formatType]
		if !ok {
			p = namedPatterns[FormatMedium]
		}
		pattern = p
	}
	return f.FormatTime(time.Unix(timestamp, 0), pattern)
}

// FormatTime renders t in the formatter's timezone using a PHP-style pattern.
func (f *Formatter) FormatTime(t time.Time, pattern string) string {
	return t.In(f.loc).Format(Layout(pattern))
}

// Parse reads a value produced by a PHP-style pattern back into a Unix
// timestamp, interpreting zone-less values in the formatter's timezone.
func (f *Formatter) Parse(value, pattern string) (int64, error) {
	t, err := time.ParseInLocation(Layout(pattern), strings.TrimSpace(value), f.loc)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

var layoutTokens = map[byte]string{
	'd': "02",
	'D': "Mon",
	'j': "2",
	'l': "Monday",
	'm': "01",
	'M': "Jan",
	'n': "1",
	'F': "January",
	'Y': "2006",
	'y': "06",
	'H': "15",
	'h': "03",
	'g': "3",
	'i': "04",
	's': "05",
	'a': "pm",
	'A': "PM",
	'O': "-0700",
	'P': "-07:00",
	'T': "MST",
}

// Layout converts a PHP-style date pattern into a Go time layout. A
// backslash escapes the following character.
func Layout(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c == '\\' && i+1 < len(pattern) {
			i++
			b.WriteByte(pattern[i])
			continue
		}
		if token, ok := layoutTokens[c]; ok {
			b.WriteString(token)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
