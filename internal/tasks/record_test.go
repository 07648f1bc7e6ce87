package tasks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		category string
		raw      string
		wantErr  error
		level    string
	}{
		{"taboo", CategoryTaboo, `{"palabra":"tren","prohibidas":["vía"]}`, nil, DefaultLevel},
		{"taboo with level", CategoryTaboo, `{"palabra":"tren","prohibidas":["vía"],"nivel":"B1"}`, nil, "B1"},
		{"taboo without forbidden words", CategoryTaboo, `{"palabra":"tren","prohibidas":[]}`, ErrInvalidRecord, ""},
		{"conjugation missing answer", CategoryConjugation, `{"verbo":"ir","pregunta":"¿Adónde _____?"}`, ErrInvalidRecord, ""},
		{"riddle", CategoryRiddle, `{"respuesta":"sol","pistas":["caliente"]}`, nil, DefaultLevel},
		{"charade", CategoryCharade, `{"palabra":"nadar"}`, nil, DefaultLevel},
		{"not an object", CategoryCharade, `["nadar"]`, ErrInvalidRecord, ""},
		{"unknown category", "poesia", `{}`, ErrUnknownCategory, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Decode(tt.category, json.RawMessage(tt.raw))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.category, rec.Category)
			assert.Equal(t, tt.level, rec.Level)
			assert.Empty(t, rec.ID)
			assert.NotContains(t, rec.Fields, "nivel")
		})
	}
}

func TestRecordMarshalFlattens(t *testing.T) {
	rec := Record{
		ID:       "abc",
		Category: CategoryCharade,
		Level:    "A1",
		Fields:   map[string]any{"palabra": "bailar"},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc","nivel":"A1","palabra":"bailar"}`, string(data))

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "abc", back.ID)
	assert.Equal(t, "A1", back.Level)
	assert.Equal(t, map[string]any{"palabra": "bailar"}, back.Fields)
}

func TestMerge(t *testing.T) {
	rec, err := Decode(CategoryQuestion, json.RawMessage(`{"pregunta":"¿Qué haces?","ayuda":"rutina"}`))
	require.NoError(t, err)
	rec.ID = "q-1"

	t.Run("replaces fields and keeps id", func(t *testing.T) {
		out, err := Merge(rec, json.RawMessage(`{"pregunta":"¿Qué comes?","id":"other"}`))
		require.NoError(t, err)
		assert.Equal(t, "q-1", out.ID)
		assert.Equal(t, "¿Qué comes?", out.Fields["pregunta"])
		assert.Equal(t, "rutina", out.Fields["ayuda"])
	})

	t.Run("null removes optional field", func(t *testing.T) {
		out, err := Merge(rec, json.RawMessage(`{"ayuda":null}`))
		require.NoError(t, err)
		assert.NotContains(t, out.Fields, "ayuda")
	})

	t.Run("changes level", func(t *testing.T) {
		out, err := Merge(rec, json.RawMessage(`{"nivel":"C1"}`))
		require.NoError(t, err)
		assert.Equal(t, "C1", out.Level)
	})

	t.Run("cannot drop a required field", func(t *testing.T) {
		_, err := Merge(rec, json.RawMessage(`{"pregunta":null}`))
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("rejects malformed patch", func(t *testing.T) {
		_, err := Merge(rec, json.RawMessage(`nope`))
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	assert.Equal(t, "rutina", rec.Fields["ayuda"], "merge must not mutate its input")
}

func TestSeedSetIsValid(t *testing.T) {
	seed := SeedSet()

	for _, category := range Categories() {
		records := seed[category]
		require.NotEmpty(t, records, category)

		ids := make(map[string]struct{}, len(records))
		for _, rec := range records {
			assert.Equal(t, category, rec.Category)
			assert.Equal(t, DefaultLevel, rec.Level)

			_, dup := ids[rec.ID]
			assert.False(t, dup, "duplicate seed id %s", rec.ID)
			ids[rec.ID] = struct{}{}

			raw, err := json.Marshal(rec)
			require.NoError(t, err)
			_, err = Decode(category, raw)
			assert.NoError(t, err, "seed record %s does not validate", rec.ID)
		}
	}
}
