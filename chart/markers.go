package chart

import (
	"math"
	"time"

	"github.com/dnldd/stocks/shared"
)

const (
	// Marker label layouts.
	hourLayout = "15:04"
	dayLayout  = "2.1"
	yearLayout = "2006"
)

// Marker represents a labelled time on the x axis.
type Marker struct {
	Timestamp time.Time
	Label     string
}

// PlacedMarker represents a marker positioned on the x axis.
type PlacedMarker struct {
	Marker
	X float64
}

// ladder describes how candidate markers are generated for a range.
type ladder struct {
	start  time.Time
	step   time.Duration
	days   int
	months int
	years  int
	layout string
}

// next returns the marker following the provided one.
func (l *ladder) next(t time.Time) time.Time {
	if l.step > 0 {
		return t.Add(l.step)
	}

	return t.AddDate(l.years, l.months, l.days)
}

// ytdThresholds maps span lengths to the range whose ladder suits them.
var ytdThresholds = []struct {
	hours int
	rng   shared.Range
}{
	{24, shared.Day},
	{5 * 24, shared.FiveDays},
	{30 * 24, shared.Month},
	{90 * 24, shared.ThreeMonths},
	{180 * 24, shared.SixMonths},
	{365 * 24, shared.Year},
}

// closestRange returns the range whose span is closest to the provided span.
func closestRange(span time.Duration) shared.Range {
	hours := int(span.Hours())

	closest := ytdThresholds[0]
	minDiff := absInt(hours - closest.hours)
	for _, t := range ytdThresholds[1:] {
		diff := absInt(hours - t.hours)
		if diff < minDiff {
			minDiff = diff
			closest = t
		}
	}

	return closest.rng
}

// absInt returns the absolute value of the provided integer.
func absInt(v int) int {
	if v < 0 {
		return -v
	}

	return v
}

// ladderFor returns the marker ladder of the provided range starting from the first
// point time. Year to date reuses the ladder of the range closest to its span.
func ladderFor(rng shared.Range, start time.Time, span time.Duration) ladder {
	loc := start.Location()
	y, m, d := start.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
	firstOfMonth := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	firstOfYear := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)

	switch rng {
	case shared.Day:
		return ladder{start: time.Date(y, m, d, start.Hour(), 0, 0, 0, loc), step: time.Hour * 2, layout: hourLayout}
	case shared.FiveDays:
		return ladder{start: midnight, days: 1, layout: dayLayout}
	case shared.Month:
		untilMonday := (int(time.Monday) - int(start.Weekday()) + 7) % 7
		return ladder{start: midnight.AddDate(0, 0, untilMonday), days: 7, layout: dayLayout}
	case shared.ThreeMonths:
		return ladder{start: firstOfMonth, months: 1, layout: dayLayout}
	case shared.SixMonths:
		return ladder{start: firstOfMonth, months: 2, layout: dayLayout}
	case shared.Year:
		return ladder{start: firstOfMonth, months: 3, layout: dayLayout}
	case shared.TwoYears:
		return ladder{start: firstOfMonth, months: 4, layout: dayLayout}
	case shared.FiveYears:
		return ladder{start: firstOfYear, years: 1, layout: yearLayout}
	case shared.TenYears, shared.All:
		return ladder{start: firstOfYear, years: 2, layout: yearLayout}
	case shared.Ytd:
		return ladderFor(closestRange(span), start, span)
	default:
		return ladder{start: midnight, days: 1, layout: dayLayout}
	}
}

// downsample keeps every step-th marker, always keeping the first, so that no more
// than limit markers remain.
func downsample(times []time.Time, limit int) []time.Time {
	if len(times) <= limit {
		return times
	}

	if limit == 1 {
		return times[:1]
	}

	step := int(math.Ceil(float64(len(times)-1) / float64(limit-1)))
	selected := make([]time.Time, 0, limit)
	for i := 0; i < len(times); i += step {
		selected = append(selected, times[i])
	}

	return selected
}

// Markers returns at most limit x axis markers for the provided data in the provided
// location.
func Markers(data *shared.TickerData, limit int, loc *time.Location) []Marker {
	if data == nil || len(data.Points) == 0 || limit <= 0 {
		return nil
	}

	if loc == nil {
		loc = time.Local
	}

	minTime := data.First().Timestamp.In(loc)
	maxTime := data.Last().Timestamp.In(loc)
	l := ladderFor(data.Range, minTime, maxTime.Sub(minTime))

	times := []time.Time{}
	for t := l.start; !t.After(maxTime); t = l.next(t) {
		times = append(times, t)
	}

	times = downsample(times, limit)

	markers := make([]Marker, 0, len(times))
	for _, t := range times {
		markers = append(markers, Marker{Timestamp: t, Label: t.Format(l.layout)})
	}

	return markers
}

// PlaceMarkers returns the markers of the provided data positioned on a chart of the
// provided width. Markers left of the chart are dropped.
func PlaceMarkers(data *shared.TickerData, width float64, limit int, loc *time.Location) []PlacedMarker {
	if data == nil || len(data.Points) < 2 {
		return nil
	}

	span := data.Span()
	if span <= 0 {
		return nil
	}

	scaleWidth := width
	if UseCompressedDayScale(data) {
		scaleWidth = DataWidth(data, width)
	}

	start := data.First().Timestamp
	placed := []PlacedMarker{}
	for _, marker := range Markers(data, limit, loc) {
		fraction := marker.Timestamp.Sub(start).Seconds() / span.Seconds()
		x := fraction * scaleWidth
		if x < 0 {
			continue
		}

		placed = append(placed, PlacedMarker{Marker: marker, X: x})
	}

	return placed
}
