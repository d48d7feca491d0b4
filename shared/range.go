package shared

import (
	"time"
)

const (
	// TimeOfDayLayout is the format layout for rendering session times in a day.
	TimeOfDayLayout = "15:04"
	// ytdFineIntervalDays is the number of days into the year during which year to date
	// data is requested with an hourly interval.
	ytdFineIntervalDays = 80
)

// Range represents a requested historical window of market data.
type Range int

const (
	Day Range = iota
	FiveDays
	Month
	ThreeMonths
	SixMonths
	Ytd
	Year
	TwoYears
	FiveYears
	TenYears
	All
)

// Ranges lists all ranges ordered from the shortest to the longest.
var Ranges = []Range{Day, FiveDays, Month, ThreeMonths, SixMonths, Ytd, Year, TwoYears,
	FiveYears, TenYears, All}

// String stringifies the provided range using its vendor code.
func (r Range) String() string {
	switch r {
	case Day:
		return "1d"
	case FiveDays:
		return "5d"
	case Month:
		return "1mo"
	case ThreeMonths:
		return "3mo"
	case SixMonths:
		return "6mo"
	case Ytd:
		return "ytd"
	case Year:
		return "1y"
	case TwoYears:
		return "2y"
	case FiveYears:
		return "5y"
	case TenYears:
		return "10y"
	case All:
		return "max"
	default:
		return "unknown"
	}
}

// DisplayName returns the human readable name of the range.
func (r Range) DisplayName() string {
	switch r {
	case Day:
		return "1 day"
	case FiveDays:
		return "5 days"
	case Month:
		return "1 month"
	case ThreeMonths:
		return "3 months"
	case SixMonths:
		return "6 months"
	case Ytd:
		return "Year to date"
	case Year:
		return "1 year"
	case TwoYears:
		return "2 years"
	case FiveYears:
		return "5 years"
	case TenYears:
		return "10 years"
	case All:
		return "All"
	default:
		return "unknown"
	}
}

// ShortName returns the abbreviated name of the range.
func (r Range) ShortName() string {
	switch r {
	case Day:
		return "1d"
	case FiveDays:
		return "5d"
	case Month:
		return "1m"
	case ThreeMonths:
		return "3m"
	case SixMonths:
		return "6m"
	case Ytd:
		return "Ytd"
	case Year:
		return "1y"
	case TwoYears:
		return "2y"
	case FiveYears:
		return "5y"
	case TenYears:
		return "10y"
	case All:
		return "All"
	default:
		return "unknown"
	}
}

// IsShort checks whether the range is an intraday oriented range. Percentage changes
// for short ranges are measured against the previous close.
func (r Range) IsShort() bool {
	return r == Day || r == FiveDays
}

// ParseRange parses the provided vendor range code. Unknown codes default to a day.
func ParseRange(code string) Range {
	switch code {
	case "1d":
		return Day
	case "5d":
		return FiveDays
	case "1mo":
		return Month
	case "3mo":
		return ThreeMonths
	case "6mo":
		return SixMonths
	case "1y":
		return Year
	case "2y":
		return TwoYears
	case "5y":
		return FiveYears
	case "10y":
		return TenYears
	case "ytd":
		return Ytd
	case "max":
		return All
	default:
		return Day
	}
}

// QueryParams returns the vendor range and sampling interval used to request data for
// the range.
func (r Range) QueryParams(now time.Time) (string, string) {
	switch r {
	case Day:
		return "1d", "2m"
	case FiveDays:
		return "5d", "15m"
	case Month:
		return "1mo", "60m"
	case ThreeMonths:
		return "3mo", "60m"
	case SixMonths:
		return "6mo", "1d"
	case Year:
		return "1y", "1d"
	case TwoYears:
		return "2y", "1d"
	case FiveYears:
		return "5y", "1wk"
	case TenYears:
		return "10y", "1mo"
	case All:
		return "max", "1mo"
	case Ytd:
		// Use a finer interval early in the year.
		yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		if int(now.Sub(yearStart).Hours()/24) > ytdFineIntervalDays {
			return "ytd", "1d"
		}
		return "ytd", "60m"
	default:
		return "1d", "2m"
	}
}
