package dashboard

// Range is an inclusive bound for a generated field.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Draw picks a value inside the range.
func (r Range) Draw(j *Jitter) float64 {
	return j.Between(r.Min, r.Max)
}

// Near picks a value around base, never leaving the range.
func (r Range) Near(j *Jitter, base, spread float64) float64 {
	return j.Around(base, spread, r.Min, r.Max)
}

// Generated field ranges.
var (
	CPURange              = Range{20, 95}
	MemoryRange           = Range{30, 90}
	DiskRange             = Range{10, 85}
	UptimeRange           = Range{95, 100}
	ResponseTimeRange     = Range{50, 500}
	RequestsPerMinRange   = Range{100, 5000}
	NetworkRange          = Range{10, 1000}
	LineItemCostRange     = Range{100, 10000}
	ChangePctRange        = Range{-20, 30}
	MonthlySavingsRange   = Range{50, 2000}
	CarbonTonsRange       = Range{100, 500}
	EnergyKWhRange        = Range{10000, 50000}
	RenewablePctRange     = Range{30, 85}
	WaterM3Range          = Range{500, 5000}
	WasteRecycledPctRange = Range{40, 90}
	ESGScoreRange         = Range{60, 95}
	RiskScoreRange        = Range{0, 100}
	ProgressRange         = Range{0, 100}
	HealthScoreRange      = Range{0, 100}
)
