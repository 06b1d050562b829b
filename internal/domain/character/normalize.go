package character

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/aionia-sheet/internal/domain/gamedata"
	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
)

var (
	// ErrUnsupportedFormat is returned for the flat schema of the old external sheet tool
	ErrUnsupportedFormat = sheeterr.UnsupportedFormat("unsupported character data format: legacy sheet exports can no longer be imported")

	// ErrNotObject is returned when the payload is not a JSON object
	ErrNotObject = sheeterr.InvalidArgument("character data must be a JSON object")

	// ErrInvalidJSON is returned when the payload does not parse
	ErrInvalidJSON = sheeterr.InvalidArgument("character data is not valid JSON")
)

// legacyKeys only ever appear at the top level of the old flat export
var legacyKeys = []string{"player", "character_memo"}

// Normalize turns any accepted JSON payload into a fully shaped record.
// Missing keys take catalog defaults and type-incoherent sections are replaced wholesale.
func Normalize(raw []byte) (*Record, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, ErrNotObject
	}
	if IsLegacyFormat(doc) {
		return nil, ErrUnsupportedFormat
	}

	return &Record{
		Character:     normalizeCharacter(doc.Get("character")),
		Skills:        normalizeSkills(doc.Get("skills")),
		SpecialSkills: normalizeSpecialSkills(doc.Get("specialSkills")),
		Equipments:    normalizeEquipments(doc.Get("equipments")),
		Histories:     normalizeHistories(doc.Get("histories")),
	}, nil
}

// NormalizeValue normalizes an already decoded value such as a map from a request body
func NormalizeValue(v any) (*Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, sheeterr.WrapWithCode(err, sheeterr.CodeInvalidArgument, "failed to encode character data")
	}
	return Normalize(raw)
}

// IsLegacyFormat reports whether doc looks like the flat schema of the old sheet tool
func IsLegacyFormat(doc gjson.Result) bool {
	if doc.Get("character").IsObject() && doc.Get("character.playerName").Exists() {
		return false
	}
	for _, key := range legacyKeys {
		if doc.Get(key).Exists() {
			return true
		}
	}
	return false
}

func normalizeCharacter(r gjson.Result) Character {
	c := defaultCharacter()
	if !r.IsObject() {
		return c
	}

	c.Name = stringOr(r.Get("name"), c.Name)
	c.PlayerName = stringOr(r.Get("playerName"), c.PlayerName)
	c.Species = stringOr(r.Get("species"), c.Species)
	c.RareSpecies = stringOr(r.Get("rareSpecies"), c.RareSpecies)
	c.Occupation = stringOr(r.Get("occupation"), c.Occupation)
	c.Age = intOr(r.Get("age"), c.Age)
	c.Gender = stringOr(r.Get("gender"), c.Gender)
	c.Height = stringOr(r.Get("height"), c.Height)
	c.Weight = stringOr(r.Get("weight"), c.Weight)
	c.Origin = stringOr(r.Get("origin"), c.Origin)
	c.Faith = stringOr(r.Get("faith"), c.Faith)
	c.InitialScar = intOr(r.Get("initialScar"), c.InitialScar)
	c.CurrentScar = intOr(r.Get("currentScar"), c.CurrentScar)
	c.LinkCurrentToInitialScar = boolOr(r.Get("linkCurrentToInitialScar"), c.LinkCurrentToInitialScar)
	c.OtherItems = stringOr(r.Get("otherItems"), c.OtherItems)
	c.Memo = stringOr(r.Get("memo"), c.Memo)

	if weaknesses := r.Get("weaknesses"); weaknesses.IsArray() {
		for i, w := range weaknesses.Array() {
			if i >= gamedata.MaxWeaknesses {
				break
			}
			if !w.IsObject() {
				continue
			}
			c.Weaknesses[i] = Weakness{
				Text:     stringOr(w.Get("text"), ""),
				Acquired: stringOr(w.Get("acquired"), gamedata.AcquiredNone),
			}
		}
	}

	if images := r.Get("images"); images.IsArray() {
		for _, img := range images.Array() {
			if img.Type == gjson.String && img.Str != "" {
				c.Images = append(c.Images, img.Str)
			}
		}
	}

	return c
}

func normalizeSkills(r gjson.Result) []Skill {
	supplied := make(map[string]gjson.Result)
	if r.IsArray() {
		r.ForEach(func(_, s gjson.Result) bool {
			if id := s.Get("id"); s.IsObject() && id.Type == gjson.String {
				supplied[id.Str] = s
			}
			return true
		})
	}

	skills := make([]Skill, len(gamedata.Skills))
	for i, def := range gamedata.Skills {
		skill := NewSkill(def)
		in, ok := supplied[def.ID]
		if ok {
			skill.Checked = truthy(in.Get("checked"))
			if def.CanHaveExperts {
				skill.Experts = normalizeExperts(in.Get("experts"))
			}
		}
		skills[i] = skill
	}
	return skills
}

func normalizeExperts(r gjson.Result) []Expert {
	var experts []Expert
	if r.IsArray() {
		r.ForEach(func(_, e gjson.Result) bool {
			if v := e.Get("value"); e.IsObject() && v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
				experts = append(experts, Expert{Value: v.Str})
			}
			return true
		})
	}
	if len(experts) == 0 {
		return []Expert{{}}
	}
	return experts
}

func normalizeSpecialSkills(r gjson.Result) []SpecialSkill {
	var skills []SpecialSkill
	if r.IsArray() {
		for _, s := range r.Array() {
			if len(skills) == gamedata.MaxSpecialSkills {
				break
			}
			if !s.IsObject() {
				skills = append(skills, SpecialSkill{})
				continue
			}
			skills = append(skills, NewSpecialSkill(
				stringOr(s.Get("group"), ""),
				stringOr(s.Get("name"), ""),
				stringOr(s.Get("note"), ""),
			))
		}
	}
	for len(skills) < minSpecialSkills() {
		skills = append(skills, SpecialSkill{})
	}
	return skills
}

func normalizeEquipments(r gjson.Result) Equipments {
	if !r.IsObject() {
		return Equipments{}
	}
	return Equipments{
		Weapon1: normalizeEquipment(r.Get("weapon1")),
		Weapon2: normalizeEquipment(r.Get("weapon2")),
		Armor:   normalizeEquipment(r.Get("armor")),
	}
}

func normalizeEquipment(r gjson.Result) Equipment {
	if !r.IsObject() {
		return Equipment{}
	}
	return Equipment{
		Group: stringOr(r.Get("group"), ""),
		Name:  stringOr(r.Get("name"), ""),
	}
}

func normalizeHistories(r gjson.Result) []History {
	var histories []History
	if r.IsArray() {
		r.ForEach(func(_, h gjson.Result) bool {
			if !h.IsObject() {
				histories = append(histories, History{})
				return true
			}
			histories = append(histories, History{
				SessionName:    stringOr(h.Get("sessionName"), ""),
				GotExperiments: intOr(h.Get("gotExperiments"), nil),
				Memo:           stringOr(h.Get("memo"), ""),
			})
			return true
		})
	}
	if len(histories) == 0 {
		return []History{{}}
	}
	return histories
}

// stringOr keeps strings, stringifies numbers and falls back for everything else
func stringOr(r gjson.Result, def string) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return r.Raw
	default:
		return def
	}
}

// intOr applies the numeric policy: numbers truncate, numeric strings parse base-10,
// and null, blank or non-numeric values become nil. Missing keys take def.
func intOr(r gjson.Result, def *int) *int {
	if !r.Exists() {
		if def == nil {
			return nil
		}
		return IntPtr(*def)
	}
	switch r.Type {
	case gjson.Number:
		return finiteInt(r.Num)
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if s == "" {
			return nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return finiteInt(float64(n))
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return finiteInt(f)
	default:
		return nil
	}
}

func finiteInt(f float64) *int {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	return IntPtr(int(math.Trunc(f)))
}

// boolOr keeps booleans; null and missing keys take def and other values use truthiness
func boolOr(r gjson.Result, def bool) bool {
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	return truthy(r)
}

func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0 && !math.IsNaN(r.Num)
	case gjson.JSON:
		return true
	default:
		return false
	}
}
