package dashboard

import (
	"context"
	"time"
)

// RecentActivity converts the newest action map entries into audit log rows,
// newest first.
func RecentActivity(ctx context.Context, actions ActionLookup, limit int) ([]AuditLog, error) {
	if actions == nil {
		return nil, nil
	}
	records, err := actions.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]AuditLog, 0, len(records))
	for _, rec := range records {
		out = append(out, auditFromRecord(rec))
	}
	return out, nil
}

func auditFromRecord(rec ActionRecord) AuditLog {
	actor := rec.Actor
	if actor == "" {
		actor = "anonymous"
	}
	result := "success"
	severity := "info"
	if rec.Status != ActionStatusCompleted {
		result = "failure"
		severity = "warning"
	}
	return AuditLog{
		ID:        rec.ID,
		Timestamp: rec.CreatedAt,
		Actor:     actor,
		Action:    rec.Action,
		Resource:  rec.Target,
		IP:        "127.0.0.1",
		Result:    result,
		Severity:  severity,
	}
}

var auditActions = []string{
	"user.login", "user.logout", "policy.update", "role.assign",
	"secret.read", "deployment.create", "firewall.update", "mfa.reset",
}

var auditResources = []string{
	"iam/policies", "k8s/prod", "vault/payments", "network/edge",
	"billing/accounts", "ci/pipelines",
}

func syntheticAudit(j *Jitter, now time.Time, index int) AuditLog {
	user := userCatalog[j.IntBetween(0, len(userCatalog)-1)]
	result := "success"
	severity := "info"
	switch {
	case j.Chance(0.05):
		result = "denied"
		severity = "critical"
	case j.Chance(0.1):
		result = "failure"
		severity = "warning"
	}
	return AuditLog{
		ID:        "audit-" + itoa(index+1),
		Timestamp: now.Add(-time.Duration(index*j.IntBetween(5, 40)) * time.Minute),
		Actor:     user.Email,
		Action:    j.Pick(auditActions...),
		Resource:  j.Pick(auditResources...),
		IP:        "10.0." + itoa(j.IntBetween(0, 254)) + "." + itoa(j.IntBetween(1, 254)),
		Result:    result,
		Severity:  severity,
	}
}
