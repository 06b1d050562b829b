// Package sheet holds the live character being edited along with its images.
// Derived values are recomputed on every read.
package sheet

import (
	"time"

	"github.com/KirkDiggler/aionia-sheet/internal/archive"
	"github.com/KirkDiggler/aionia-sheet/internal/domain/character"
	"github.com/KirkDiggler/aionia-sheet/internal/domain/gamedata"
	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
)

// TimeProvider supplies the export timestamp
type TimeProvider interface {
	Now() time.Time
}

type systemTime struct{}

func (systemTime) Now() time.Time { return time.Now() }

// Store owns one record. It is not safe for concurrent use; an export captures
// whatever the record holds at the moment it is called.
type Store struct {
	record       *character.Record
	images       []string
	timeProvider TimeProvider
}

// StoreConfig configures a Store
type StoreConfig struct {
	TimeProvider TimeProvider // Optional, defaults to the system clock
}

// NewStore returns a store holding a fresh default record
func NewStore(cfg *StoreConfig) *Store {
	s := &Store{
		record:       character.New(),
		timeProvider: systemTime{},
	}
	if cfg != nil && cfg.TimeProvider != nil {
		s.timeProvider = cfg.TimeProvider
	}
	return s
}

// Record returns the live record; callers mutate it in place
func (s *Store) Record() *character.Record {
	return s.record
}

// Images returns the sheet images as data URLs
func (s *Store) Images() []string {
	return s.images
}

// Reset discards the record and images
func (s *Store) Reset() {
	s.record = character.New()
	s.images = nil
}

// SetInitialScar updates the initial scar and mirrors it while the scars are linked
func (s *Store) SetInitialScar(v *int) {
	c := &s.record.Character
	c.InitialScar = copyInt(v)
	if c.LinkCurrentToInitialScar {
		c.CurrentScar = copyInt(v)
	}
}

// SetLinkScar links or unlinks the current scar; linking copies the initial value over
func (s *Store) SetLinkScar(linked bool) {
	c := &s.record.Character
	c.LinkCurrentToInitialScar = linked
	if linked {
		c.CurrentScar = copyInt(c.InitialScar)
	}
}

// AddSpecialSkill appends a blank special skill row
func (s *Store) AddSpecialSkill() error {
	if len(s.record.SpecialSkills) >= gamedata.MaxSpecialSkills {
		return sheeterr.InvalidArgumentf("at most %d special skills", gamedata.MaxSpecialSkills)
	}
	s.record.SpecialSkills = append(s.record.SpecialSkills, character.SpecialSkill{})
	return nil
}

// RemoveSpecialSkill drops a special skill row, keeping the initial row count
func (s *Store) RemoveSpecialSkill(i int) error {
	rows := s.record.SpecialSkills
	if i < 0 || i >= len(rows) {
		return sheeterr.InvalidArgumentf("special skill %d does not exist", i)
	}
	if len(rows) <= gamedata.SpecialSkillsInitialCount {
		return sheeterr.InvalidArgumentf("at least %d special skill rows are kept", gamedata.SpecialSkillsInitialCount)
	}
	s.record.SpecialSkills = append(rows[:i:i], rows[i+1:]...)
	return nil
}

// SetSpecialSkill sets group and name of a row and recomputes its note visibility
func (s *Store) SetSpecialSkill(i int, group, name, note string) error {
	if i < 0 || i >= len(s.record.SpecialSkills) {
		return sheeterr.InvalidArgumentf("special skill %d does not exist", i)
	}
	s.record.SpecialSkills[i] = character.NewSpecialSkill(group, name, note)
	return nil
}

// AddHistory appends a blank session
func (s *Store) AddHistory() {
	s.record.Histories = append(s.record.Histories, character.History{})
}

// RemoveHistory drops a session; the last one is cleared instead of removed
func (s *Store) RemoveHistory(i int) error {
	rows := s.record.Histories
	if i < 0 || i >= len(rows) {
		return sheeterr.InvalidArgumentf("history %d does not exist", i)
	}
	if len(rows) == 1 {
		s.record.Histories = []character.History{{}}
		return nil
	}
	s.record.Histories = append(rows[:i:i], rows[i+1:]...)
	return nil
}

// AddExpert appends a blank expert field to an expert-capable skill
func (s *Store) AddExpert(skillID string) error {
	skill, err := s.expertSkill(skillID)
	if err != nil {
		return err
	}
	skill.Experts = append(skill.Experts, character.Expert{})
	return nil
}

// RemoveExpert drops an expert field; the last one is cleared instead of removed
func (s *Store) RemoveExpert(skillID string, i int) error {
	skill, err := s.expertSkill(skillID)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(skill.Experts) {
		return sheeterr.InvalidArgumentf("expert %d of %s does not exist", i, skillID)
	}
	if len(skill.Experts) == 1 {
		skill.Experts = []character.Expert{{}}
		return nil
	}
	skill.Experts = append(skill.Experts[:i:i], skill.Experts[i+1:]...)
	return nil
}

// AddImage appends an image given as a base64 data URL, kept in its canonical form
// so an export and re-import returns the same string
func (s *Store) AddImage(dataURL string) error {
	canonical, err := archive.CanonicalDataURL(dataURL)
	if err != nil {
		return err
	}
	s.images = append(s.images, canonical)
	return nil
}

// RemoveImage drops an image
func (s *Store) RemoveImage(i int) error {
	if i < 0 || i >= len(s.images) {
		return sheeterr.InvalidArgumentf("image %d does not exist", i)
	}
	s.images = append(s.images[:i:i], s.images[i+1:]...)
	return nil
}

// MaxExperiencePoints is the experience available to the live record
func (s *Store) MaxExperiencePoints() int {
	return character.MaxExperiencePoints(s.record)
}

// CurrentExperiencePoints is the experience the live record spends
func (s *Store) CurrentExperiencePoints() int {
	return character.CurrentExperiencePoints(s.record)
}

// CurrentWeight is the carried weight of the live record
func (s *Store) CurrentWeight() int {
	return character.CurrentWeight(s.record)
}

// OverBudget reports whether more experience is spent than available
func (s *Store) OverBudget() bool {
	return s.CurrentExperiencePoints() > s.MaxExperiencePoints()
}

// Export serializes the record and images into an archive and names the file
func (s *Store) Export() (string, []byte, error) {
	data, err := archive.Build(s.record, s.images)
	if err != nil {
		return "", nil, err
	}
	return archive.FileName(s.record.Character.Name, s.timeProvider.Now()), data, nil
}

// Import replaces the record and images with a parsed export
func (s *Store) Import(data []byte) error {
	result, err := archive.Parse(data)
	if err != nil {
		return err
	}
	s.record = result.Record
	s.images = result.Images
	return nil
}

// Load replaces the record and images with already parsed values
func (s *Store) Load(rec *character.Record, images []string) {
	if rec == nil {
		rec = character.New()
	}
	s.record = rec
	s.images = images
}

// CCFOLIA renders the record for the CCFOLIA clipboard
func (s *Store) CCFOLIA(externalURL string) ([]byte, error) {
	return character.ToCCFOLIA(s.record, externalURL)
}

func (s *Store) expertSkill(skillID string) (*character.Skill, error) {
	def, ok := gamedata.SkillByID(skillID)
	if !ok {
		return nil, sheeterr.NotFoundf("skill %q not found", skillID)
	}
	if !def.CanHaveExperts {
		return nil, sheeterr.InvalidArgumentf("skill %q has no experts", skillID)
	}
	for i := range s.record.Skills {
		if s.record.Skills[i].ID == skillID {
			return &s.record.Skills[i], nil
		}
	}
	return nil, sheeterr.NotFoundf("skill %q not found", skillID)
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	return character.IntPtr(*v)
}
