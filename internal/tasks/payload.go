package tasks

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Categories, named after the document collections they were first kept in.
const (
	CategoryTaboo       = "tabu"
	CategoryConjugation = "conjugacion"
	CategoryTopic       = "palabrasPorTema"
	CategoryDialogue    = "dialogos"
	CategoryRoleplay    = "roleplay"
	CategoryQuestion    = "preguntas"
	CategoryRiddle      = "adivinanza"
	CategoryCharade     = "charadas"
)

// Payload is the typed shape of a record within one category.
type Payload interface {
	Category() string
	Validate() error
}

// Taboo: describe Word without saying any of Forbidden.
type Taboo struct {
	Word      string   `json:"palabra"`
	Forbidden []string `json:"prohibidas"`
	Level     string   `json:"nivel,omitempty"`
}

// Conjugation: fill the blank in Question with the right form of Verb.
type Conjugation struct {
	Verb     string `json:"verbo"`
	Question string `json:"pregunta"`
	Answer   string `json:"respuesta"`
	Level    string `json:"nivel,omitempty"`
}

// Topic: list as many words on Theme as possible before time runs out.
type Topic struct {
	Theme string `json:"tema"`
	Level string `json:"nivel,omitempty"`
}

// Dialogue: hold a conversation in Tense about Situation.
type Dialogue struct {
	Tense     string `json:"tiempo"`
	Situation string `json:"situacion"`
	Level     string `json:"nivel,omitempty"`
}

// Roleplay: act out Scene, one player per role.
type Roleplay struct {
	Scene        string   `json:"escena"`
	FirstRole    string   `json:"rol1"`
	SecondRole   string   `json:"rol2"`
	Instructions string   `json:"instrucciones"`
	Vocabulary   []string `json:"vocabulario,omitempty"`
	Level        string   `json:"nivel,omitempty"`
}

// Question: a personal question with Hint as conversation starters.
type Question struct {
	Question string `json:"pregunta"`
	Hint     string `json:"ayuda,omitempty"`
	Level    string `json:"nivel,omitempty"`
}

// Riddle: guess Answer from Clues.
type Riddle struct {
	Answer string   `json:"respuesta"`
	Clues  []string `json:"pistas"`
	Level  string   `json:"nivel,omitempty"`
}

// Charade: mime Word for the partner to guess.
type Charade struct {
	Word  string `json:"palabra"`
	Level string `json:"nivel,omitempty"`
}

func (Taboo) Category() string       { return CategoryTaboo }
func (Conjugation) Category() string { return CategoryConjugation }
func (Topic) Category() string       { return CategoryTopic }
func (Dialogue) Category() string    { return CategoryDialogue }
func (Roleplay) Category() string    { return CategoryRoleplay }
func (Question) Category() string    { return CategoryQuestion }
func (Riddle) Category() string      { return CategoryRiddle }
func (Charade) Category() string     { return CategoryCharade }

func (t Taboo) Validate() error {
	if blank(t.Word) {
		return errors.New("palabra is required")
	}
	if len(t.Forbidden) == 0 {
		return errors.New("prohibidas must list at least one word")
	}
	return nil
}

func (c Conjugation) Validate() error {
	return required(map[string]string{
		"verbo":     c.Verb,
		"pregunta":  c.Question,
		"respuesta": c.Answer,
	})
}

func (t Topic) Validate() error {
	return required(map[string]string{"tema": t.Theme})
}

func (d Dialogue) Validate() error {
	return required(map[string]string{
		"tiempo":    d.Tense,
		"situacion": d.Situation,
	})
}

func (r Roleplay) Validate() error {
	return required(map[string]string{
		"escena":        r.Scene,
		"rol1":          r.FirstRole,
		"rol2":          r.SecondRole,
		"instrucciones": r.Instructions,
	})
}

func (q Question) Validate() error {
	return required(map[string]string{"pregunta": q.Question})
}

func (r Riddle) Validate() error {
	if blank(r.Answer) {
		return errors.New("respuesta is required")
	}
	if len(r.Clues) == 0 {
		return errors.New("pistas must list at least one clue")
	}
	return nil
}

func (c Charade) Validate() error {
	return required(map[string]string{"palabra": c.Word})
}

func newPayload(category string) (Payload, error) {
	switch category {
	case CategoryTaboo:
		return &Taboo{}, nil
	case CategoryConjugation:
		return &Conjugation{}, nil
	case CategoryTopic:
		return &Topic{}, nil
	case CategoryDialogue:
		return &Dialogue{}, nil
	case CategoryRoleplay:
		return &Roleplay{}, nil
	case CategoryQuestion:
		return &Question{}, nil
	case CategoryRiddle:
		return &Riddle{}, nil
	case CategoryCharade:
		return &Charade{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}

// Categories returns every known category, sorted.
func Categories() []string {
	out := []string{
		CategoryTaboo,
		CategoryConjugation,
		CategoryTopic,
		CategoryDialogue,
		CategoryRoleplay,
		CategoryQuestion,
		CategoryRiddle,
		CategoryCharade,
	}
	slices.Sort(out)
	return out
}

func KnownCategory(category string) bool {
	_, err := newPayload(category)
	return err == nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func required(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if blank(value) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
}
