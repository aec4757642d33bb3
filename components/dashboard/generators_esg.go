package dashboard

import (
	"context"
	"time"
)

func esgFeed(_ context.Context, feed FeedContext) (FeedData, error) {
	j := feed.Jitter
	carbon := CarbonTonsRange.Draw(j)
	renewable := RenewablePctRange.Draw(j)

	months := 12
	labels := make([]string, months)
	emissions := make([]float64, months)
	renewables := make([]float64, months)
	start := time.Date(feed.Now.Year(), feed.Now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		labels[i] = start.AddDate(0, i-(months-1), 0).Format("Jan")
		if i == months-1 {
			emissions[i] = carbon
			renewables[i] = renewable
			continue
		}
		// older months trend slightly worse
		drift := float64(months-1-i) * 4
		emissions[i] = CarbonTonsRange.Near(j, carbon+drift, 20)
		renewables[i] = RenewablePctRange.Near(j, renewable-drift/4, 3)
	}

	return FeedData{
		"carbon_emissions_tons": carbon,
		"energy_kwh":            EnergyKWhRange.Draw(j),
		"renewable_pct":         renewable,
		"water_m3":              WaterM3Range.Draw(j),
		"waste_recycled_pct":    WasteRecycledPctRange.Draw(j),
		"esg_score":             ESGScoreRange.Draw(j),
		"series": TimeSeries{
			Labels: labels,
			Series: []NamedSeries{
				{Name: "CO2e (t)", Values: emissions},
				{Name: "Renewable %", Values: renewables},
			},
		},
	}, nil
}
