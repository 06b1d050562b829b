package character

import (
	"strings"

	"github.com/KirkDiggler/aionia-sheet/internal/domain/gamedata"
)

// ExperienceBreakdown itemizes the spent experience points of a record
type ExperienceBreakdown struct {
	Skills        int `json:"skills"`
	Experts       int `json:"experts"`
	SpecialSkills int `json:"specialSkills"`
}

// Total is the sum of all items
func (b ExperienceBreakdown) Total() int {
	return b.Skills + b.Experts + b.SpecialSkills
}

// InitialBonus is the capped experience granted by initial scars and creation weaknesses
func InitialBonus(rec *Record) int {
	exp := gamedata.Experience

	scar := 0
	if rec.Character.InitialScar != nil {
		scar = *rec.Character.InitialScar * exp.InitialScarPerPoint
	}

	weaknesses := 0
	for _, w := range rec.Character.Weaknesses {
		if w.Acquired == gamedata.AcquiredAtCreation {
			weaknesses += exp.WeaknessAtCreation
		}
	}

	return min(scar+weaknesses, exp.MaxInitialBonus)
}

// SessionExperience sums the experience gained over all histories
func SessionExperience(rec *Record) int {
	total := 0
	for _, h := range rec.Histories {
		if h.GotExperiments != nil {
			total += *h.GotExperiments
		}
	}
	return total
}

// MaxExperiencePoints is the experience available to spend
func MaxExperiencePoints(rec *Record) int {
	return gamedata.Experience.BasePoints + InitialBonus(rec) + SessionExperience(rec)
}

// SpentExperience itemizes what the checked skills, experts and special skills cost
func SpentExperience(rec *Record) ExperienceBreakdown {
	exp := gamedata.Experience

	var b ExperienceBreakdown
	for _, s := range rec.Skills {
		if !s.Checked {
			continue
		}
		b.Skills += exp.SkillBase

		def, ok := gamedata.SkillByID(s.ID)
		if !ok || !def.CanHaveExperts {
			continue
		}
		for _, e := range s.Experts {
			if strings.TrimSpace(e.Value) != "" {
				b.Experts += exp.ExpertSkill
			}
		}
	}

	for _, s := range rec.SpecialSkills {
		if strings.TrimSpace(s.Name) != "" {
			b.SpecialSkills += exp.SpecialSkill
		}
	}
	return b
}

// CurrentExperiencePoints is the experience spent by the record
func CurrentExperiencePoints(rec *Record) int {
	return SpentExperience(rec).Total()
}

// CurrentWeight is the carried weight of the equipped weapons and armor
func CurrentWeight(rec *Record) int {
	eq := rec.Equipments
	return gamedata.WeaponWeights[eq.Weapon1.Group] +
		gamedata.WeaponWeights[eq.Weapon2.Group] +
		gamedata.ArmorWeights[eq.Armor.Group]
}
