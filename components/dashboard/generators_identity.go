package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	defaultAuditLimit = 25
	maxAuditLimit     = 100
	highRiskThreshold = 70
)

func itoa(v int) string {
	return strconv.Itoa(v)
}

func usersFeed(_ context.Context, feed FeedContext) (FeedData, error) {
	j := feed.Jitter
	users := make([]User, 0, len(userCatalog))
	var mfa, locked, highRisk int
	for _, seed := range userCatalog {
		u := User{
			ID:         seed.ID,
			Name:       seed.Name,
			Email:      seed.Email,
			Role:       seed.Role,
			Department: seed.Department,
			MFAEnabled: j.Chance(0.8),
			Status:     "active",
			LastLogin:  feed.Now.Add(-time.Duration(j.IntBetween(0, 72*60)) * time.Minute),
			RiskScore:  RiskScoreRange.Near(j, 25, 25),
		}
		switch {
		case j.Chance(0.05):
			u.Status = "locked"
			u.RiskScore = RiskScoreRange.Near(j, 85, 10)
		case j.Chance(0.1):
			u.Status = "inactive"
		}
		if !u.MFAEnabled {
			u.RiskScore = Clamp(u.RiskScore+20, RiskScoreRange.Min, RiskScoreRange.Max)
		}
		if u.MFAEnabled {
			mfa++
		}
		if u.Status == "locked" {
			locked++
		}
		if u.RiskScore > highRiskThreshold {
			highRisk++
		}
		users = append(users, u)
	}
	return FeedData{
		"items": users,
		"summary": map[string]int{
			"total":       len(users),
			"mfa_enabled": mfa,
			"locked":      locked,
			"high_risk":   highRisk,
		},
	}, nil
}

func auditLogsFeed(ctx context.Context, feed FeedContext) (FeedData, error) {
	limit := defaultAuditLimit
	if raw := feed.Param("limit", ""); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: limit must be an integer", ErrValidation)
		}
		limit = int(Clamp(float64(parsed), 1, maxAuditLimit))
	}
	logs, err := RecentActivity(ctx, feed.Actions, limit)
	if err != nil {
		return nil, err
	}
	for i := len(logs); i < limit; i++ {
		logs = append(logs, syntheticAudit(feed.Jitter, feed.Now, i))
	}
	return FeedData{
		"items": logs,
		"total": len(logs),
	}, nil
}
