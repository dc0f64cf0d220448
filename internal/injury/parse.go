package injury

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Verdict is the classifier's judgement on one article. String fields
// may be empty when the model had no information.
type Verdict struct {
	Injured           bool
	PlayerName        string
	Team              string
	InjuryDescription string
	RecoveryTime      string
	Comment           string
}

const promptTemplate = `
Olvasd el az alábbi sporthír cikket:

---
%s
---

Feladatod:
1. Állapítsd meg, hogy írnak-e a cikkben egy játékos sérüléséről.
2. Ha igen:
- Add meg a játékos nevét.
- Írd le, milyen sérülést szenvedett.
- Add meg, mennyi időre jósolják a felépülést (ha le van írva).
- Ha szerepel a cikkben, add meg a játékos csapatát is. Ha nincs említve, hagyd üresen.
3. Ha nem írják le konkrétan a felépülés idejét:
- Adj becslést arra, mennyi idő lehet a felépülés.
4. A választ kizárólag egy JSON objektum formájában add vissza az alábbi struktúrában, minden egyéb szöveg nélkül:

{
"is_injured": true/false,
"player_name": "...",
"team": "...",
"injury_description": "...",
"recovery_time": "...",
"comment": "..."
}

Ne adj hozzá semmilyen magyarázatot vagy szöveget, csak a JSON-t! Ha nincs pontos info valamiről, például csapatról, csak egy "" legyen az értéke. És a válaszodban ne ismételd meg a cikk szövegét, csak a kért információkat add meg!
Az alábbi csapatok játszanak az NB1-ben: %s.
`

// BuildPrompt renders the classification prompt for one article. The
// known team names anchor the model's team answers to names the
// resolver can find.
func BuildPrompt(articleText string, teams []string) string {
	return fmt.Sprintf(promptTemplate, articleText, strings.Join(teams, ", "))
}

// rawVerdict mirrors the JSON object the prompt asks for. is_injured
// arrives as bool, string or number depending on the model's mood.
type rawVerdict struct {
	IsInjured         any    `json:"is_injured"`
	PlayerName        string `json:"player_name"`
	Team              string `json:"team"`
	InjuryDescription string `json:"injury_description"`
	RecoveryTime      string `json:"recovery_time"`
	Comment           string `json:"comment"`
}

// ParseVerdict interprets a model completion. The primary path cuts
// the first balanced JSON object out of the text and decodes it. When
// no JSON can be decoded the whole text is scanned for the literal
// markers instead, and the bool reports that degraded path so the
// caller can route the record to manual review.
func ParseVerdict(completion string) (Verdict, bool) {
	if jsonStr, ok := extractJSONObject(completion); ok {
		var raw rawVerdict
		if err := json.Unmarshal([]byte(jsonStr), &raw); err == nil {
			return Verdict{
				Injured:           truthy(raw.IsInjured),
				PlayerName:        strings.TrimSpace(raw.PlayerName),
				Team:              strings.TrimSpace(raw.Team),
				InjuryDescription: strings.TrimSpace(raw.InjuryDescription),
				RecoveryTime:      strings.TrimSpace(raw.RecoveryTime),
				Comment:           strings.TrimSpace(raw.Comment),
			}, true
		}
	}

	lower := strings.ToLower(completion)
	injured := strings.Contains(lower, "is_injured") && strings.Contains(lower, "true")
	return Verdict{Injured: injured}, false
}

// truthy interprets the model's idea of a boolean. Hungarian and
// English yes-words count as true.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "igen", "yes", "1", "i":
			return true
		}
	}
	return false
}

// extractJSONObject returns the first balanced top-level {...} block.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
