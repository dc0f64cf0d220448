package injury

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdictCleanJSON(t *testing.T) {
	v, ok := ParseVerdict(`{
		"is_injured": true,
		"player_name": "Kovács Péter",
		"team": "DVSC",
		"injury_description": "bokaszalag-szakadás",
		"recovery_time": "6 hét",
		"comment": ""
	}`)
	require.True(t, ok)
	assert.True(t, v.Injured)
	assert.Equal(t, "Kovács Péter", v.PlayerName)
	assert.Equal(t, "DVSC", v.Team)
	assert.Equal(t, "bokaszalag-szakadás", v.InjuryDescription)
	assert.Equal(t, "6 hét", v.RecoveryTime)
}

func TestParseVerdictJSONWithSurroundingText(t *testing.T) {
	v, ok := ParseVerdict(`Íme a válasz:
		{"is_injured": true, "player_name": "Szabó Gábor", "team": "", "injury_description": "izomhúzódás", "recovery_time": "2 hét", "comment": "becslés"}
		Remélem segítettem!`)
	require.True(t, ok)
	assert.True(t, v.Injured)
	assert.Equal(t, "Szabó Gábor", v.PlayerName)
	assert.Empty(t, v.Team)
}

func TestParseVerdictStringBooleans(t *testing.T) {
	for _, raw := range []string{`"true"`, `"igen"`, `"Igen"`, `"yes"`, `"1"`, `"i"`, `true`} {
		v, ok := ParseVerdict(`{"is_injured": ` + raw + `}`)
		require.True(t, ok, raw)
		assert.True(t, v.Injured, raw)
	}

	for _, raw := range []string{`"false"`, `"nem"`, `false`, `""`, `0`} {
		v, ok := ParseVerdict(`{"is_injured": ` + raw + `}`)
		require.True(t, ok, raw)
		assert.False(t, v.Injured, raw)
	}
}

func TestParseVerdictMalformedFallsBackToScan(t *testing.T) {
	v, ok := ParseVerdict(`"is_injured": true, a játékos megsérült de elfelejtettem a kapcsos zárójeleket`)
	assert.False(t, ok)
	assert.True(t, v.Injured)

	v, ok = ParseVerdict(`a cikkben nincs sérülés, is_injured: false`)
	assert.False(t, ok)
	assert.False(t, v.Injured)

	v, ok = ParseVerdict(``)
	assert.False(t, ok)
	assert.False(t, v.Injured)
}

func TestParseVerdictUnbalancedBraces(t *testing.T) {
	v, ok := ParseVerdict(`{"is_injured": true, "player_name": "Tóth`)
	assert.False(t, ok)
	assert.True(t, v.Injured)
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("Megsérült a csatár.", []string{"DVSC", "Paksi FC"})
	assert.Contains(t, p, "Megsérült a csatár.")
	assert.Contains(t, p, "DVSC, Paksi FC")
	assert.Contains(t, p, `"is_injured"`)
}

func TestExtractJSONObjectRespectsStrings(t *testing.T) {
	s, ok := extractJSONObject(`{"comment": "egy } a szövegben", "is_injured": false}`)
	require.True(t, ok)
	assert.Equal(t, `{"comment": "egy } a szövegben", "is_injured": false}`, s)
}
