package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimaryKey(t *testing.T) {
	entity := Entity{
		Name: "galaxies",
		Fields: []Field{
			{Name: "name"},
			{Name: "id", IsPrimaryKey: true},
		},
	}

	pk, ok := entity.PrimaryKey()
	require.True(t, ok)
	assert.Equal(t, "id", pk.Name)

	pk, err := entity.RequirePrimaryKey()
	require.NoError(t, err)
	assert.Equal(t, "id", pk.Name)
}

func TestPrimaryKeyMissing(t *testing.T) {
	entity := Entity{Name: "logs", Fields: []Field{{Name: "line"}}}

	_, ok := entity.PrimaryKey()
	assert.False(t, ok)

	_, err := entity.RequirePrimaryKey()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPrimaryKey))
	assert.Contains(t, err.Error(), "logs")
}

func TestFieldNames(t *testing.T) {
	entity := Entity{
		Name: "planets",
		Fields: []Field{
			{Name: "id", IsPrimaryKey: true},
			{Name: "name"},
			{Name: "galaxy_id"},
		},
	}

	assert.Equal(t, []string{"id", "name", "galaxy_id"}, entity.FieldNames())
	assert.True(t, entity.HasField("galaxy_id"))
	assert.False(t, entity.HasField("galaxies_id"))
}
