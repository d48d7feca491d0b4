package chart

import (
	"testing"
	"time"

	"github.com/dnldd/stocks/shared"
	"github.com/peterldowns/testy/assert"
)

// between creates a test series from start to end with the provided point count.
func between(rng shared.Range, start time.Time, end time.Time, n int) *shared.TickerData {
	step := end.Sub(start) / time.Duration(n-1)
	data := flatSeries(rng, step, n)
	for i := range data.Points {
		data.Points[i].Timestamp = start.Add(time.Duration(i) * step)
	}
	data.Points[n-1].Timestamp = end

	return data
}

func labels(markers []Marker) []string {
	out := make([]string, 0, len(markers))
	for _, m := range markers {
		out = append(out, m.Label)
	}

	return out
}

func TestMarkers(t *testing.T) {
	tests := []struct {
		name  string
		data  *shared.TickerData
		limit int
		want  []string
	}{
		{
			name: "day ladder steps every two hours",
			data: between(shared.Day,
				time.Date(2025, time.April, 2, 9, 30, 0, 0, time.UTC),
				time.Date(2025, time.April, 2, 16, 0, 0, 0, time.UTC), 14),
			limit: 10,
			want:  []string{"09:00", "11:00", "13:00", "15:00"},
		},
		{
			name: "five day ladder steps daily",
			data: between(shared.FiveDays,
				time.Date(2025, time.April, 1, 13, 30, 0, 0, time.UTC),
				time.Date(2025, time.April, 3, 20, 0, 0, 0, time.UTC), 20),
			limit: 10,
			want:  []string{"1.4", "2.4", "3.4"},
		},
		{
			name: "month ladder starts on monday",
			data: between(shared.Month,
				time.Date(2025, time.April, 2, 13, 30, 0, 0, time.UTC),
				time.Date(2025, time.May, 1, 20, 0, 0, 0, time.UTC), 20),
			limit: 10,
			want:  []string{"7.4", "14.4", "21.4", "28.4"},
		},
		{
			name: "year ladder steps quarterly",
			data: between(shared.Year,
				time.Date(2024, time.April, 15, 13, 30, 0, 0, time.UTC),
				time.Date(2025, time.April, 14, 20, 0, 0, 0, time.UTC), 50),
			limit: 10,
			want:  []string{"1.4", "1.7", "1.10", "1.1", "1.4"},
		},
		{
			name: "five year ladder is downsampled",
			data: between(shared.FiveYears,
				time.Date(2020, time.January, 15, 0, 0, 0, 0, time.UTC),
				time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), 60),
			limit: 3,
			want:  []string{"2020", "2023"},
		},
		{
			name: "year to date follows the closest range",
			data: between(shared.Ytd,
				time.Date(2025, time.January, 2, 14, 30, 0, 0, time.UTC),
				time.Date(2025, time.April, 12, 20, 0, 0, 0, time.UTC), 60),
			limit: 10,
			want:  []string{"1.1", "1.2", "1.3", "1.4"},
		},
		{
			name: "single marker limit keeps the first",
			data: between(shared.FiveYears,
				time.Date(2020, time.January, 15, 0, 0, 0, 0, time.UTC),
				time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), 60),
			limit: 1,
			want:  []string{"2020"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := labels(Markers(test.data, test.limit, time.UTC))
			assert.Equal(t, got, test.want)
		})
	}

	assert.Nil(t, Markers(&shared.TickerData{Range: shared.Day}, 5, time.UTC))
	assert.Nil(t, Markers(nil, 5, time.UTC))
	assert.Nil(t, Markers(flatSeries(shared.Day, time.Minute, 10), 0, time.UTC))
}

func TestMarkersRespectLocation(t *testing.T) {
	loc := time.FixedZone("UTC-4", -4*60*60)
	data := between(shared.Day,
		time.Date(2025, time.April, 2, 13, 30, 0, 0, time.UTC),
		time.Date(2025, time.April, 2, 20, 0, 0, 0, time.UTC), 14)

	got := labels(Markers(data, 10, loc))
	assert.Equal(t, got, []string{"09:00", "11:00", "13:00", "15:00"})
}

func TestMarkersDownsampling(t *testing.T) {
	data := between(shared.TenYears,
		time.Date(2000, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), 100)
	all := Markers(data, 100, time.UTC)
	assert.Equal(t, len(all), 13)

	for limit := 1; limit <= 15; limit++ {
		got := Markers(data, limit, time.UTC)
		assert.True(t, len(got) <= limit)
		assert.True(t, len(got) > 0)
		assert.Equal(t, got[0].Label, all[0].Label)
		assert.True(t, got[0].Timestamp.Equal(all[0].Timestamp))
	}
}

func TestPlaceMarkers(t *testing.T) {
	data := between(shared.FiveYears,
		time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), 60)

	placed := PlaceMarkers(data, 500, 10, time.UTC)
	assert.Equal(t, len(placed), 6)
	assert.Equal(t, placed[0].X, 0.0)
	assert.Equal(t, placed[0].Label, "2020")
	assert.Equal(t, placed[len(placed)-1].X, 500.0)
	for i := 1; i < len(placed); i++ {
		assert.True(t, placed[i].X > placed[i-1].X)
	}

	// Markers before the first point are dropped.
	quarter := between(shared.ThreeMonths,
		time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC), 40)
	placed = PlaceMarkers(quarter, 300, 10, time.UTC)
	assert.Equal(t, len(placed), 2)
	assert.Equal(t, placed[0].Label, "1.5")
	assert.Equal(t, placed[1].Label, "1.6")

	// Compressed days are placed against the data width.
	day := between(shared.Day,
		time.Date(2025, time.April, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2025, time.April, 2, 12, 0, 0, 0, time.UTC), 7)
	placed = PlaceMarkers(day, 100, 10, time.UTC)
	assert.Equal(t, len(placed), 2)
	assert.Equal(t, placed[0].X, 0.0)
	assert.True(t, almostEqual(placed[1].X, DataWidth(day, 100)*2/3))

	assert.Nil(t, PlaceMarkers(flatSeries(shared.Day, 0, 3), 100, 10, time.UTC))
	assert.Nil(t, PlaceMarkers(nil, 100, 10, time.UTC))
}
