package scoring

import "strings"

// ActivityRole is the student's role in an activity.
type ActivityRole string

const (
	RoleParticipant ActivityRole = "participant"
	RoleStaff       ActivityRole = "staff"
)

// ActivityRecord is a single logged activity.
type ActivityRecord struct {
	Category string
	Role     ActivityRole
	Hours    float64
}

// ActivityResult is the social sub-score with a per-category breakdown.
type ActivityResult struct {
	RawPoints  float64            `json:"raw_points"`
	Points     float64            `json:"points"`
	Percent    float64            `json:"percent"`
	ByCategory map[string]float64 `json:"by_category"`
}

func (cfg ActivityConfig) multiplier(role ActivityRole) float64 {
	if ActivityRole(strings.ToLower(strings.TrimSpace(string(role)))) == RoleStaff {
		return cfg.StaffFactor
	}
	return cfg.ParticipantFactor
}

// ActivityPointsPerHour returns the points earned for hours spent in a role.
// Negative or non-finite hours earn nothing.
func ActivityPointsPerHour(hours float64, role ActivityRole, cfg ActivityConfig) float64 {
	hours = finite(hours)
	if hours <= 0 {
		return 0
	}
	return hours * cfg.PerHour * cfg.multiplier(role)
}

// ScoreActivities sums activity points, caps them at the target and converts to a percent.
func ScoreActivities(records []ActivityRecord, cfg ActivityConfig) ActivityResult {
	if cfg.TargetPoints <= 0 {
		cfg.TargetPoints = DefaultActivityTarget
	}
	res := ActivityResult{ByCategory: make(map[string]float64)}
	for _, r := range records {
		pts := ActivityPointsPerHour(r.Hours, r.Role, cfg)
		if pts == 0 {
			continue
		}
		cat := strings.ToLower(strings.TrimSpace(r.Category))
		if cat == "" {
			cat = "other"
		}
		res.ByCategory[cat] = round2(res.ByCategory[cat] + pts)
		res.RawPoints += pts
	}
	capped := clamp(res.RawPoints, 0, cfg.TargetPoints)
	res.RawPoints = round2(res.RawPoints)
	res.Points = round2(capped)
	res.Percent = round2(clampPct(capped / cfg.TargetPoints * 100))
	return res
}
