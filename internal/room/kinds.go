package room

import (
	"slices"
	"strings"

	"github.com/Seednode/tandem/internal/tasks"
)

// Kind describes one mini-game: how many tasks it plays through and how
// long its countdown runs. Count 0 means the game brings no tasks; Seconds
// 0 means it is untimed.
type Kind struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Count    int    `json:"count"`
	Seconds  int    `json:"seconds"`
}

var kinds = map[string]Kind{
	"tabu":            {Name: "tabu", Category: tasks.CategoryTaboo, Count: 10},
	"conjugacion":     {Name: "conjugacion", Category: tasks.CategoryConjugation, Count: 10},
	"palabrasPorTema": {Name: "palabrasPorTema", Category: tasks.CategoryTopic, Count: 1, Seconds: 30},
	"dialogos":        {Name: "dialogos", Category: tasks.CategoryDialogue, Count: 10},
	"roleplay":        {Name: "roleplay", Category: tasks.CategoryRoleplay, Count: 10},
	"preguntas":       {Name: "preguntas", Category: tasks.CategoryQuestion, Count: 10},
	"encadenamiento":  {Name: "encadenamiento"},
	"adivinanza":      {Name: "adivinanza", Category: tasks.CategoryRiddle, Count: 10},
	"batalla":         {Name: "batalla", Seconds: 60},
	"charadas":        {Name: "charadas", Category: tasks.CategoryCharade, Count: 10},
}

func LookupKind(name string) (Kind, bool) {
	k, ok := kinds[name]
	return k, ok
}

// Kinds returns every mini-game, sorted by name.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k)
	}

	slices.SortFunc(out, func(a, b Kind) int {
		return strings.Compare(a.Name, b.Name)
	})

	return out
}

func (k Kind) hasTasks() bool {
	return k.Category != "" && k.Count > 0
}
