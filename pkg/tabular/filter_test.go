package tabular

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
)

func TestFilter_Formula(t *testing.T) {
	assert.Equal(t, `{Intake ID} = 'DATA COE - 10035'`, Eq("Intake ID", "DATA COE - 10035").Formula())
	assert.Equal(t, `{Intake ID} = 'O\'Brien\\x'`, Eq("Intake ID", `O'Brien\x`).Formula())
}

func TestFilter_Matches(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		want   bool
	}{
		{"scalar equal", Fields{"Intake ID": "I-1"}, true},
		{"scalar different", Fields{"Intake ID": "I-2"}, false},
		{"link value by name", Fields{"Intake ID": []LinkValue{{RecordID: "rec1", Name: "I-1"}}}, true},
		{"decoded link objects", Fields{"Intake ID": []any{map[string]any{"id": "rec1", "name": "I-1"}}}, true},
		{"link to other intake", Fields{"Intake ID": []any{map[string]any{"name": "I-9"}}}, false},
		{"missing column", Fields{"Notes": "x"}, false},
	}

	f := Eq("Intake ID", "I-1")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Matches(tt.fields))
		})
	}

	var none *Filter
	assert.True(t, none.Matches(Fields{}))
}

func TestValidateFilterValue(t *testing.T) {
	require.NoError(t, ValidateFilterValue("DATA COE - 10035"))
	require.NoError(t, ValidateFilterValue("INTAKE-42"))

	for _, bad := range []string{"", "   ", "bad\nid", "1' OR '1'='1"} {
		err := ValidateFilterValue(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	}

	var injErr *InjectionError
	require.ErrorAs(t, ValidateFilterValue("1' OR '1'='1"), &injErr)
	assert.NotEmpty(t, injErr.Fingerprint)
	assert.Equal(t, "1' OR '1'='1", injErr.Value)
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "I-1", CellString(LinkValue{Name: "I-1"}))
	assert.Equal(t, "rec1", CellString(LinkValue{RecordID: "rec1"}))
	assert.Equal(t, "A, B", CellString([]LinkValue{{Name: "A"}, {Name: "B"}}))
	assert.Equal(t, "Ada", CellString(map[string]any{"name": "Ada", "email": "ada@example.com"}))
	assert.Equal(t, "", CellString(nil))
}

func TestLinks(t *testing.T) {
	assert.Nil(t, Links("EPIC-7"))
	assert.Equal(t, []LinkValue{{Name: "EPIC-7"}}, Links(map[string]any{"name": "EPIC-7"}))
	assert.Equal(t,
		[]LinkValue{{RecordID: "rec1"}, {Name: "EPIC-9"}},
		Links([]any{map[string]any{"id": "rec1"}, map[string]any{"name": "EPIC-9"}, "plain"}))
	assert.Nil(t, Links(map[string]any{"other": "x"}))
}
