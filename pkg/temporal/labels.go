package temporal

import (
	"regexp"
	"strconv"
)

var (
	// yearPattern matches the first 4-digit run of a reporting period.
	yearPattern = regexp.MustCompile(`\d{4}`)

	// quarterPattern matches "1T2020", "4t1999", "Q2020" or "3Q2021": an
	// optional quarter digit, the quarter marker, then the year.
	quarterPattern = regexp.MustCompile(`(?i)(\d)?\s*[TQ]\s*(\d{4})`)
)

// Period is a parsed quarterly date label.
type Period struct {
	Label   string
	Year    int
	Quarter int // 1-4, or 0 when the label carries no quarter digit
}

// ParseYear extracts the first 4-digit run of a reporting period label
// such as "2020-12-31" or "1T2020".
func ParseYear(label string) (int, bool) {
	m := yearPattern.FindString(label)
	if m == "" {
		return 0, false
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return year, true
}

// ParseQuarterLabel parses a quarterly date label. The year is the 4-digit
// run following the quarter marker.
func ParseQuarterLabel(label string) (Period, bool) {
	m := quarterPattern.FindStringSubmatch(label)
	if m == nil {
		return Period{}, false
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return Period{}, false
	}
	p := Period{Label: label, Year: year}
	if m[1] != "" {
		p.Quarter, _ = strconv.Atoi(m[1])
	}
	return p, true
}

// Less orders periods by year, quarter, then label text.
func (p Period) Less(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	if p.Quarter != o.Quarter {
		return p.Quarter < o.Quarter
	}
	return p.Label < o.Label
}
