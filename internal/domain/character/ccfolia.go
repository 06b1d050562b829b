package character

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KirkDiggler/aionia-sheet/internal/domain/gamedata"
)

// CCFOLIA clipboard piece format
type ccfoliaPiece struct {
	Kind string      `json:"kind"`
	Data ccfoliaData `json:"data"`
}

type ccfoliaData struct {
	Name        string          `json:"name"`
	Memo        string          `json:"memo"`
	Initiative  int             `json:"initiative"`
	ExternalURL string          `json:"externalUrl"`
	Status      []ccfoliaStatus `json:"status"`
	Params      []ccfoliaParam  `json:"params"`
	Commands    string          `json:"commands"`
}

type ccfoliaStatus struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Max   int    `json:"max"`
}

type ccfoliaParam struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ToCCFOLIA renders the record as a CCFOLIA character piece ready for the clipboard
func ToCCFOLIA(rec *Record, externalURL string) ([]byte, error) {
	c := rec.Character

	scar := 0
	if c.CurrentScar != nil {
		scar = *c.CurrentScar
	}

	piece := ccfoliaPiece{
		Kind: "character",
		Data: ccfoliaData{
			Name:        c.Name,
			Memo:        ccfoliaMemo(rec),
			ExternalURL: externalURL,
			Status: []ccfoliaStatus{
				{Label: "傷痕", Value: scar},
			},
			Params: []ccfoliaParam{
				{Label: "経験点", Value: fmt.Sprintf("%d/%d", CurrentExperiencePoints(rec), MaxExperiencePoints(rec))},
				{Label: "荷重", Value: fmt.Sprint(CurrentWeight(rec))},
			},
			Commands: ccfoliaCommands(rec),
		},
	}

	out, err := json.Marshal(piece)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ccfolia piece: %w", err)
	}
	return out, nil
}

func ccfoliaMemo(rec *Record) string {
	c := rec.Character
	var lines []string
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			lines = append(lines, label+": "+value)
		}
	}
	add("PL", c.PlayerName)
	add("種族", c.Species)
	add("希少人種", c.RareSpecies)
	add("職業", c.Occupation)
	if c.Age != nil {
		add("年齢", fmt.Sprint(*c.Age))
	}
	add("出身", c.Origin)
	add("信仰", c.Faith)

	for _, w := range c.Weaknesses {
		if strings.TrimSpace(w.Text) != "" {
			lines = append(lines, fmt.Sprintf("弱点: %s (%s)", w.Text, w.Acquired))
		}
	}
	return strings.Join(lines, "\n")
}

func ccfoliaCommands(rec *Record) string {
	var lines []string
	for _, s := range rec.Skills {
		dice := "1d10"
		if s.Checked {
			dice = "2d10"
		}
		lines = append(lines, fmt.Sprintf("%s 【%s】", dice, s.Name))
	}
	for _, s := range rec.SpecialSkills {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		label := gamedata.SpecialSkillLabel[s.Name]
		if label == "" {
			label = s.Name
		}
		if s.ShowNote && s.Note != "" {
			label += "(" + s.Note + ")"
		}
		lines = append(lines, "《"+label+"》")
	}
	return strings.Join(lines, "\n")
}
