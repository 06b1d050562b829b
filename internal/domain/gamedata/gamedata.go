// Package gamedata holds the static Aionia catalog: skill definitions, special skill
// groups, equipment weight tables and the experience point constants.
package gamedata

import "strconv"

const (
	// MaxWeaknesses is the fixed number of weakness rows on a sheet
	MaxWeaknesses = 10

	// SpecialSkillsInitialCount is how many special skill rows a fresh sheet shows
	SpecialSkillsInitialCount = 8

	// MaxSpecialSkills caps the special skill rows
	MaxSpecialSkills = 20

	// AcquiredNone marks a weakness that has not been acquired yet
	AcquiredNone = "--"

	// AcquiredAtCreation marks a weakness taken during character creation
	AcquiredAtCreation = "作成時"

	// MaxHistorySessions is the highest session number offered for weakness acquisition
	MaxHistorySessions = 100
)

// ExperiencePoints are the tunable experience costs and bonuses
type ExperiencePoints struct {
	BasePoints          int
	SkillBase           int
	ExpertSkill         int
	SpecialSkill        int
	WeaknessAtCreation  int
	InitialScarPerPoint int
	MaxInitialBonus     int
}

// Experience is the experience table used by the derived quantities
var Experience = ExperiencePoints{
	BasePoints:          100,
	SkillBase:           10,
	ExpertSkill:         5,
	SpecialSkill:        15,
	WeaknessAtCreation:  10,
	InitialScarPerPoint: 1,
	MaxInitialBonus:     20,
}

// Skill is a catalog skill definition
type Skill struct {
	ID             string
	Name           string
	CanHaveExperts bool
	ExpertLabel    string
}

// Skills is the authoritative skill order
var Skills = []Skill{
	{ID: "motion", Name: "運動"},
	{ID: "avoidance", Name: "回避"},
	{ID: "sense", Name: "感覚"},
	{ID: "observation", Name: "観察"},
	{ID: "stealth", Name: "隠密"},
	{ID: "trick", Name: "手先"},
	{ID: "riding", Name: "騎乗"},
	{ID: "negotiation", Name: "交渉"},
	{ID: "intimidation", Name: "威圧"},
	{ID: "medicine", Name: "医療"},
	{ID: "survival", Name: "野外活動"},
	{ID: "analysis", Name: "分析"},
	{ID: "knowledge", Name: "知識", CanHaveExperts: true, ExpertLabel: "専門分野"},
	{ID: "craft", Name: "製作", CanHaveExperts: true, ExpertLabel: "製作物"},
	{ID: "art", Name: "芸術", CanHaveExperts: true, ExpertLabel: "芸術分野"},
	{ID: "language", Name: "言語", CanHaveExperts: true, ExpertLabel: "言語名"},
	{ID: "etiquette", Name: "礼儀", CanHaveExperts: true, ExpertLabel: "文化圏"},
	{ID: "faith", Name: "信仰", CanHaveExperts: true, ExpertLabel: "信仰対象"},
}

var skillsByID = func() map[string]Skill {
	m := make(map[string]Skill, len(Skills))
	for _, s := range Skills {
		m[s.ID] = s
	}
	return m
}()

// SkillByID returns the catalog skill with the given id
func SkillByID(id string) (Skill, bool) {
	s, ok := skillsByID[id]
	return s, ok
}

// SkillIDs returns the catalog ids in catalog order
func SkillIDs() []string {
	ids := make([]string, len(Skills))
	for i, s := range Skills {
		ids[i] = s.ID
	}
	return ids
}

// SpecialSkillGroup lists the special skills selectable within one group
type SpecialSkillGroup struct {
	ID     string
	Label  string
	Skills []string
}

// SpecialSkillGroups is the special skill catalog in display order
var SpecialSkillGroups = []SpecialSkillGroup{
	{
		ID:     "tactics",
		Label:  "戦術",
		Skills: []string{"charge", "guard", "snipe", "twin_strike", "counter", "feint"},
	},
	{
		ID:     "magic",
		Label:  "魔法",
		Skills: []string{"magic_fire", "magic_water", "magic_wind", "magic_earth", "magic_light", "magic_dark"},
	},
	{
		ID:     "spirit",
		Label:  "精神",
		Skills: []string{"iron_will", "prayer", "intuition", "composure"},
	},
	{
		ID:     "other",
		Label:  "その他",
		Skills: []string{"language_acquisition", "affiliation", "familiar", "rare_species", "wealth"},
	},
}

// SpecialSkillLabel maps special skill names to display labels
var SpecialSkillLabel = map[string]string{
	"charge":               "突撃",
	"guard":                "護衛",
	"snipe":                "狙撃",
	"twin_strike":          "二刀流",
	"counter":              "反撃",
	"feint":                "陽動",
	"magic_fire":           "火の魔法",
	"magic_water":          "水の魔法",
	"magic_wind":           "風の魔法",
	"magic_earth":          "土の魔法",
	"magic_light":          "光の魔法",
	"magic_dark":           "闇の魔法",
	"iron_will":            "鉄の意志",
	"prayer":               "祈り",
	"intuition":            "直感",
	"composure":            "冷静",
	"language_acquisition": "言語習得",
	"affiliation":          "所属",
	"familiar":             "使い魔",
	"rare_species":         "希少種族",
	"wealth":               "財産",
}

// RequiresNote is the set of special skills whose note field is shown
var RequiresNote = map[string]bool{
	"language_acquisition": true,
	"affiliation":          true,
	"familiar":             true,
	"rare_species":         true,
}

// NeedsNote reports whether the special skill name carries a note
func NeedsNote(name string) bool {
	return RequiresNote[name]
}

// WeaponWeights is the carry weight per weapon group
var WeaponWeights = map[string]int{
	"combat_small":  1,
	"combat_medium": 2,
	"combat_large":  3,
	"shooting":      2,
	"catalyst":      1,
}

// ArmorWeights is the carry weight per armor group
var ArmorWeights = map[string]int{
	"light":  1,
	"medium": 2,
	"heavy":  3,
}

// WeaponGroupLabel maps weapon groups to display labels
var WeaponGroupLabel = map[string]string{
	"combat_small":  "小型白兵武器",
	"combat_medium": "中型白兵武器",
	"combat_large":  "大型白兵武器",
	"shooting":      "射撃武器",
	"catalyst":      "魔法の発動体",
}

// ArmorGroupLabel maps armor groups to display labels
var ArmorGroupLabel = map[string]string{
	"light":  "軽装",
	"medium": "中装",
	"heavy":  "重装",
}

// WeaknessAcquiredOptions returns the selectable acquisition markers in display order
func WeaknessAcquiredOptions() []string {
	opts := make([]string, 0, MaxHistorySessions+2)
	opts = append(opts, AcquiredNone, AcquiredAtCreation)
	for i := 1; i <= MaxHistorySessions; i++ {
		opts = append(opts, strconv.Itoa(i))
	}
	return opts
}
