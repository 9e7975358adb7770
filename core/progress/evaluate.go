package progress

import "github.com/trezcool/mazoezi/core/badge"

// EvaluateBadges returns the ids of catalog badges the progress record newly
// qualifies for, in catalog order. Badges already on the record are skipped;
// awarded badges are never revoked, even if a metric later regresses.
// The caller merges the result into p.Badges exactly once.
func EvaluateBadges(p UserProgress, catalog []badge.Badge) []string {
	var newBadges []string
	for _, b := range catalog {
		if p.HasBadge(b.ID) {
			continue
		}
		if metricFor(p, b.RequirementType) >= b.RequirementValue {
			newBadges = append(newBadges, b.ID)
		}
	}
	return newBadges
}

// metricFor maps a requirement type to the progress field it thresholds on.
// Unknown types report -1 so they can never qualify.
func metricFor(p UserProgress, rt badge.RequirementType) int {
	switch rt {
	case badge.RequirementModules:
		return len(p.ModulesCompleted)
	case badge.RequirementStreak:
		return p.CurrentStreak
	case badge.RequirementVoiceNotes:
		return p.VoiceNotesCount
	case badge.RequirementPoints:
		return p.TotalPoints
	}
	return -1
}
