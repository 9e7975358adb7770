package main

import (
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/mazoezi/core/badge"
)

// defaultBadges is the stock catalog installed on fresh deployments.
var defaultBadges = []badge.Badge{
	{Name: "First Steps", Description: "Complete your first training module", Icon: "footprints",
		RequirementType: badge.RequirementModules, RequirementValue: 1},
	{Name: "Getting There", Description: "Complete 5 training modules", Icon: "map",
		RequirementType: badge.RequirementModules, RequirementValue: 5},
	{Name: "Week Warrior", Description: "Keep a 7 day training streak", Icon: "flame",
		RequirementType: badge.RequirementStreak, RequirementValue: 7},
	{Name: "Voice Star", Description: "Share 5 approved voice notes", Icon: "mic",
		RequirementType: badge.RequirementVoiceNotes, RequirementValue: 5},
	{Name: "Century Club", Description: "Earn 100 points", Icon: "trophy",
		RequirementType: badge.RequirementPoints, RequirementValue: 100},
}

// seedBadges installs any missing default badges; existing ones are left as is.
func (cli *commandLine) seedBadges() error {
	existing, err := cli.badgeRepo.QueryAllBadges()
	if err != nil {
		return err
	}
	byName := make(map[string]struct{}, len(existing))
	for _, b := range existing {
		byName[b.Name] = struct{}{}
	}

	for _, b := range defaultBadges {
		if _, ok := byName[b.Name]; ok {
			continue
		}
		now := time.Now().UTC()
		b.ID = uuid.NewString()
		b.CreatedAt = now
		b.UpdatedAt = now
		if _, err = cli.badgeRepo.CreateBadge(b); err != nil {
			return err
		}
	}
	return nil
}
