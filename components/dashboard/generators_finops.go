package dashboard

import (
	"context"
	"time"
)

const monthlyBudget = 30000.0

func generateOptimizations(ctx context.Context, feed FeedContext) []Optimization {
	j := feed.Jitter
	out := make([]Optimization, 0, len(optimizationCatalog))
	for _, seed := range optimizationCatalog {
		opt := Optimization{
			ID:             seed.ID,
			Title:          seed.Title,
			Resource:       seed.Resource,
			Category:       seed.Category,
			MonthlySavings: MonthlySavingsRange.Near(j, seed.Base, seed.Base*0.15),
			Effort:         seed.Effort,
			Status:         "open",
		}
		if rec, ok := lookupAction(ctx, feed, ActionApplyOptimization, seed.ID); ok {
			applied := rec.CreatedAt
			opt.Status = "applied"
			opt.AppliedAt = &applied
			opt.MonthlySavings = seed.Base
		}
		out = append(out, opt)
	}
	return out
}

func optimizationsFeed(ctx context.Context, feed FeedContext) (FeedData, error) {
	opts := generateOptimizations(ctx, feed)
	var potential, realized float64
	for _, opt := range opts {
		if opt.Status == "applied" {
			realized += opt.MonthlySavings
		} else {
			potential += opt.MonthlySavings
		}
	}
	return FeedData{
		"items":             opts,
		"potential_savings": round2(potential),
		"realized_savings":  round2(realized),
	}, nil
}

func costsFeed(ctx context.Context, feed FeedContext) (FeedData, error) {
	j := feed.Jitter
	items := make([]CostItem, 0, len(costProviders))
	byProvider := map[string]float64{}
	var total float64
	for _, p := range costProviders {
		item := CostItem{
			Service:   p.Service,
			Provider:  p.Provider,
			Category:  p.Category,
			Cost:      LineItemCostRange.Near(j, p.Base, p.Base*0.2),
			ChangePct: ChangePctRange.Draw(j),
		}
		items = append(items, item)
		byProvider[item.Provider] = round2(byProvider[item.Provider] + item.Cost)
		total += item.Cost
	}

	var realized float64
	for _, opt := range generateOptimizations(ctx, feed) {
		if opt.Status == "applied" {
			realized += opt.MonthlySavings
		}
	}
	total = round2(total - realized)
	if total < 0 {
		total = 0
	}

	months := 6
	labels := make([]string, months)
	spend := make([]float64, months)
	budget := make([]float64, months)
	start := time.Date(feed.Now.Year(), feed.Now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		month := start.AddDate(0, i-(months-1), 0)
		labels[i] = month.Format("Jan")
		budget[i] = monthlyBudget
		if i == months-1 {
			spend[i] = total
			continue
		}
		spend[i] = round2(j.Around(total, total*0.15, 0, total*2))
	}

	return FeedData{
		"items":           items,
		"total":           total,
		"budget":          monthlyBudget,
		"forecast":        round2(total * j.Between(1.0, 1.15)),
		"applied_savings": round2(realized),
		"by_provider":     byProvider,
		"series": TimeSeries{
			Labels: labels,
			Series: []NamedSeries{
				{Name: "Spend", Values: spend},
				{Name: "Budget", Values: budget},
			},
		},
	}, nil
}
