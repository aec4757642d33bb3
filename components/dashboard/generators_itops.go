package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// restartGrace is how long a restarted service reports as freshly healthy.
const restartGrace = 10 * time.Minute

const (
	minMetricHours = 1
	maxMetricHours = 168
)

func generateServices(ctx context.Context, feed FeedContext) []ServiceStatus {
	j := feed.Jitter
	out := make([]ServiceStatus, 0, len(serviceCatalog))
	for _, seed := range serviceCatalog {
		svc := ServiceStatus{
			ID:             seed.ID,
			Name:           seed.Name,
			Kind:           seed.Kind,
			Region:         seed.Region,
			Status:         serviceStatus(j),
			CPU:            CPURange.Draw(j),
			Memory:         MemoryRange.Draw(j),
			Disk:           DiskRange.Draw(j),
			Uptime:         round2(UptimeRange.Near(j, 99.5, 0.5)),
			ResponseTimeMS: ResponseTimeRange.Near(j, 120, 70),
			RequestsPerMin: RequestsPerMinRange.Draw(j),
			Replicas:       seed.Replicas,
		}
		switch svc.Status {
		case "degraded":
			svc.ResponseTimeMS = ResponseTimeRange.Near(j, 380, 120)
			svc.CPU = CPURange.Near(j, 85, 10)
		case "down":
			svc.Uptime = UptimeRange.Min
			svc.ResponseTimeMS = ResponseTimeRange.Max
			svc.RequestsPerMin = RequestsPerMinRange.Min
		}
		if rec, ok := lookupAction(ctx, feed, ActionRestartService, seed.ID); ok && feed.Now.Sub(rec.CreatedAt) < restartGrace {
			restarted := rec.CreatedAt
			svc.Status = "healthy"
			svc.LastRestart = &restarted
			svc.CPU = CPURange.Near(j, 30, 8)
			svc.ResponseTimeMS = ResponseTimeRange.Near(j, 90, 30)
			svc.Uptime = UptimeRange.Max
		}
		if rec, ok := lookupAction(ctx, feed, ActionScaleService, seed.ID); ok {
			svc.Replicas = intOr(rec.Payload["replicas"], svc.Replicas)
		}
		out = append(out, svc)
	}
	return out
}

func serviceStatus(j *Jitter) string {
	switch {
	case j.Chance(0.05):
		return "down"
	case j.Chance(0.15):
		return "degraded"
	default:
		return "healthy"
	}
}

func servicesFeed(ctx context.Context, feed FeedContext) (FeedData, error) {
	services := generateServices(ctx, feed)
	if status := feed.Param("status", ""); status != "" {
		filtered := services[:0]
		for _, svc := range services {
			if svc.Status == status {
				filtered = append(filtered, svc)
			}
		}
		services = filtered
	}
	return FeedData{
		"items":        services,
		"total":        len(services),
		"generated_at": feed.Now,
	}, nil
}

func metricsFeed(_ context.Context, feed FeedContext) (FeedData, error) {
	hours := 24
	if raw := feed.Param("hours", ""); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: hours must be an integer", ErrValidation)
		}
		if parsed < minMetricHours || parsed > maxMetricHours {
			return nil, fmt.Errorf("%w: hours must be between %d and %d", ErrValidation, minMetricHours, maxMetricHours)
		}
		hours = parsed
	}
	j := feed.Jitter
	end := feed.Now.Truncate(time.Hour)
	points := make([]MetricPoint, hours)
	labels := make([]string, hours)
	cpu := make([]float64, hours)
	memory := make([]float64, hours)
	cpuBase := CPURange.Near(j, 50, 15)
	memBase := MemoryRange.Near(j, 60, 10)
	for i := 0; i < hours; i++ {
		ts := end.Add(-time.Duration(hours-1-i) * time.Hour)
		point := MetricPoint{
			Timestamp:  ts,
			CPU:        CPURange.Near(j, cpuBase, 12),
			Memory:     MemoryRange.Near(j, memBase, 8),
			Disk:       DiskRange.Draw(j),
			NetworkIn:  NetworkRange.Draw(j),
			NetworkOut: NetworkRange.Draw(j),
		}
		points[i] = point
		labels[i] = ts.Format("15:04")
		cpu[i] = point.CPU
		memory[i] = point.Memory
	}
	return FeedData{
		"hours":  hours,
		"points": points,
		"series": TimeSeries{
			Labels: labels,
			Series: []NamedSeries{
				{Name: "CPU %", Values: cpu},
				{Name: "Memory %", Values: memory},
			},
		},
	}, nil
}

func generateAlerts(ctx context.Context, feed FeedContext) []Alert {
	j := feed.Jitter
	out := make([]Alert, 0, len(alertCatalog))
	for _, seed := range alertCatalog {
		alert := Alert{
			ID:        seed.ID,
			Title:     seed.Title,
			Severity:  seed.Severity,
			Service:   serviceName(seed.Service),
			Status:    "active",
			CreatedAt: feed.Now.Add(-time.Duration(seed.AgeHours) * time.Hour).Add(-time.Duration(j.IntBetween(0, 59)) * time.Minute),
		}
		if j.Chance(0.2) {
			alert.Status = "acknowledged"
		}
		if rec, ok := latestOf(ctx, feed, seed.ID, ActionAcknowledgeAlert, ActionResolveAlert); ok {
			alert.Status = alertStatusFor(rec.Action)
		}
		out = append(out, alert)
	}
	return out
}

func alertStatusFor(action string) string {
	if action == ActionResolveAlert {
		return "resolved"
	}
	return "acknowledged"
}

func alertsFeed(ctx context.Context, feed FeedContext) (FeedData, error) {
	alerts := generateAlerts(ctx, feed)
	status := feed.Param("status", "")
	severity := feed.Param("severity", "")
	filtered := make([]Alert, 0, len(alerts))
	counts := map[string]int{"critical": 0, "warning": 0, "info": 0}
	for _, alert := range alerts {
		if alert.Status != "resolved" {
			counts[alert.Severity]++
		}
		if status != "" && alert.Status != status {
			continue
		}
		if severity != "" && alert.Severity != severity {
			continue
		}
		filtered = append(filtered, alert)
	}
	return FeedData{
		"items":  filtered,
		"counts": counts,
	}, nil
}

func overviewFeed(ctx context.Context, feed FeedContext) (FeedData, error) {
	services := generateServices(ctx, feed)
	alerts := generateAlerts(ctx, feed)
	var healthy, degraded, down int
	var cpu, memory, uptime float64
	for _, svc := range services {
		switch svc.Status {
		case "healthy":
			healthy++
		case "degraded":
			degraded++
		case "down":
			down++
		}
		cpu += svc.CPU
		memory += svc.Memory
		uptime += svc.Uptime
	}
	var active, critical int
	for _, alert := range alerts {
		if alert.Status == "active" {
			active++
			if alert.Severity == "critical" {
				critical++
			}
		}
	}
	n := float64(len(services))
	score := HealthScoreRange.Max - float64(down*15+degraded*5+critical*5)
	return FeedData{
		"total_services": len(services),
		"healthy":        healthy,
		"degraded":       degraded,
		"down":           down,
		"active_alerts":  active,
		"avg_cpu":        round1(cpu / n),
		"avg_memory":     round1(memory / n),
		"avg_uptime":     round2(uptime / n),
		"health_score":   Clamp(score, HealthScoreRange.Min, HealthScoreRange.Max),
		"generated_at":   feed.Now,
	}, nil
}
