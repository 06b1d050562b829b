package character

import (
	"github.com/KirkDiggler/aionia-sheet/internal/domain/gamedata"
)

// Record is the normalized character sheet
type Record struct {
	Character     Character      `json:"character"`
	Skills        []Skill        `json:"skills"`
	SpecialSkills []SpecialSkill `json:"specialSkills"`
	Equipments    Equipments     `json:"equipments"`
	Histories     []History      `json:"histories"`
}

// Character holds the scalar profile fields of a sheet
type Character struct {
	Name                     string     `json:"name"`
	PlayerName               string     `json:"playerName"`
	Species                  string     `json:"species"`
	RareSpecies              string     `json:"rareSpecies"`
	Occupation               string     `json:"occupation"`
	Age                      *int       `json:"age"`
	Gender                   string     `json:"gender"`
	Height                   string     `json:"height"`
	Weight                   string     `json:"weight"`
	Origin                   string     `json:"origin"`
	Faith                    string     `json:"faith"`
	InitialScar              *int       `json:"initialScar"`
	CurrentScar              *int       `json:"currentScar"`
	LinkCurrentToInitialScar bool       `json:"linkCurrentToInitialScar"`
	Weaknesses               []Weakness `json:"weaknesses"`
	OtherItems               string     `json:"otherItems"`
	Memo                     string     `json:"memo"`

	// Images are data URLs locally and object keys once uploaded
	Images []string `json:"images,omitempty"`
}

// Weakness is one weakness row; Acquired is a session marker
type Weakness struct {
	Text     string `json:"text"`
	Acquired string `json:"acquired"`
}

// Skill mirrors one catalog skill
type Skill struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Checked        bool     `json:"checked"`
	CanHaveExperts bool     `json:"canHaveExperts"`
	Experts        []Expert `json:"experts,omitempty"`
}

// Expert is one field of expertise under an expert-capable skill
type Expert struct {
	Value string `json:"value"`
}

// SpecialSkill is one special skill row
type SpecialSkill struct {
	Group    string `json:"group"`
	Name     string `json:"name"`
	Note     string `json:"note"`
	ShowNote bool   `json:"showNote"`
}

// Equipment is a weapon or armor slot
type Equipment struct {
	Group string `json:"group"`
	Name  string `json:"name"`
}

// Equipments holds the three fixed equipment slots
type Equipments struct {
	Weapon1 Equipment `json:"weapon1"`
	Weapon2 Equipment `json:"weapon2"`
	Armor   Equipment `json:"armor"`
}

// History is one played session
type History struct {
	SessionName    string `json:"sessionName"`
	GotExperiments *int   `json:"gotExperiments"`
	Memo           string `json:"memo"`
}

// New returns an all-default record
func New() *Record {
	return &Record{
		Character:     defaultCharacter(),
		Skills:        defaultSkills(),
		SpecialSkills: defaultSpecialSkills(),
		Histories:     []History{{}},
	}
}

// NewWeakness returns an empty weakness row
func NewWeakness() Weakness {
	return Weakness{Acquired: gamedata.AcquiredNone}
}

// NewSkill returns the default entry for a catalog skill
func NewSkill(def gamedata.Skill) Skill {
	s := Skill{
		ID:             def.ID,
		Name:           def.Name,
		CanHaveExperts: def.CanHaveExperts,
	}
	if def.CanHaveExperts {
		s.Experts = []Expert{{}}
	}
	return s
}

// NewSpecialSkill derives the note visibility from the skill name
func NewSpecialSkill(group, name, note string) SpecialSkill {
	show := gamedata.NeedsNote(name)
	if !show {
		note = ""
	}
	return SpecialSkill{Group: group, Name: name, Note: note, ShowNote: show}
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

func defaultCharacter() Character {
	weaknesses := make([]Weakness, gamedata.MaxWeaknesses)
	for i := range weaknesses {
		weaknesses[i] = NewWeakness()
	}
	return Character{
		InitialScar:              IntPtr(0),
		CurrentScar:              IntPtr(0),
		LinkCurrentToInitialScar: true,
		Weaknesses:               weaknesses,
	}
}

func defaultSkills() []Skill {
	skills := make([]Skill, len(gamedata.Skills))
	for i, def := range gamedata.Skills {
		skills[i] = NewSkill(def)
	}
	return skills
}

func defaultSpecialSkills() []SpecialSkill {
	return make([]SpecialSkill, minSpecialSkills())
}

func minSpecialSkills() int {
	return min(gamedata.SpecialSkillsInitialCount, gamedata.MaxSpecialSkills)
}
