package script

import (
	"strings"

	"github.com/verte-zerg/rehab/internal/engine"
)

var directions = map[string]engine.Intent{
	"wait":       {},
	"idle":       {},
	"left":       {DX: -1},
	"right":      {DX: 1},
	"up":         {DY: -1},
	"down":       {DY: 1},
	"up-left":    {DX: -1, DY: -1},
	"up-right":   {DX: 1, DY: -1},
	"down-left":  {DX: -1, DY: 1},
	"down-right": {DX: 1, DY: 1},
}

var shortDirections = map[string]string{
	"l": "left", "r": "right", "u": "up", "d": "down",
	"ul": "up-left", "ur": "up-right", "dl": "down-left", "dr": "down-right",
}

// ParseDirection maps a direction word to an intent. Diagonals accept
// "up-left", "upleft", "up_left" and the short form "ul".
func ParseDirection(word string) (engine.Intent, bool) {
	word = strings.ToLower(strings.TrimSpace(word))
	if full, ok := shortDirections[word]; ok {
		word = full
	}
	word = strings.ReplaceAll(word, "_", "-")
	if in, ok := directions[word]; ok {
		return in, true
	}
	for name, in := range directions {
		if strings.Contains(name, "-") && strings.ReplaceAll(name, "-", "") == word {
			return in, true
		}
	}
	return engine.Intent{}, false
}
