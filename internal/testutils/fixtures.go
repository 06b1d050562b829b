package testutils

import (
	"testing"
	"time"

	"github.com/KirkDiggler/aionia-sheet/internal/archive"
	"github.com/KirkDiggler/aionia-sheet/internal/domain/character"
)

// SampleRecordJSON is a current-format sheet touching every section
const SampleRecordJSON = `{
	"character": {
		"name": "Alma Rose",
		"playerName": "kiri",
		"initialScar": 2,
		"linkCurrentToInitialScar": true,
		"weaknesses": [{"text": "afraid of water", "acquired": "作成時"}]
	},
	"skills": [{"id": "art", "checked": true, "experts": [{"value": "Song"}]}],
	"specialSkills": [{"group": "other", "name": "affiliation", "note": "Guild"}],
	"equipments": {"armor": {"group": "light", "name": "leather"}},
	"histories": [{"sessionName": "first", "gotExperiments": 5}]
}`

// FixedClock always returns T
type FixedClock struct {
	T time.Time
}

// Now returns the fixed time
func (c FixedClock) Now() time.Time { return c.T }

// SampleRecord normalizes SampleRecordJSON
func SampleRecord(t testing.TB) *character.Record {
	t.Helper()
	rec, err := character.Normalize([]byte(SampleRecordJSON))
	if err != nil {
		t.Fatalf("normalize sample record: %v", err)
	}
	return rec
}

// NamedRecord returns a default record with the given names
func NamedRecord(name, playerName string) *character.Record {
	rec := character.New()
	rec.Character.Name = name
	rec.Character.PlayerName = playerName
	return rec
}

// PNGDataURL wraps payload in an image/png data URL
func PNGDataURL(payload string) string {
	return archive.EncodeDataURL("image/png", []byte(payload))
}
