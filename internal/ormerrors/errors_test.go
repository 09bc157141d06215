package ormerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "field missing: galaxy_id", (&MissingFieldError{Name: "galaxy_id"}).Error())
	assert.Equal(t, "eager load missing: galaxies", (&MissingEagerLoadError{Name: "galaxies"}).Error())
	assert.Equal(t, "ID required", (&IDRequiredError{}).Error())
	assert.Equal(t, "ID required: galaxies", (&IDRequiredError{Entity: "galaxies"}).Error())
	assert.Equal(t, `galaxies with key "10" not found`, (&NotFoundError{Entity: "galaxies", Key: "10"}).Error())
}

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"missing field", &MissingFieldError{Name: "x"}, ErrMissingField},
		{"missing eager load", &MissingEagerLoadError{Name: "x"}, ErrMissingEagerLoad},
		{"id required", &IDRequiredError{Entity: "x"}, ErrIDRequired},
		{"not found", &NotFoundError{Entity: "x", Key: "1"}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.target))
			assert.False(t, errors.Is(wrapped, errors.New(tt.target.Error())))
		})
	}
}

func TestErrorsAs(t *testing.T) {
	err := fmt.Errorf("resolve planet: %w", &MissingEagerLoadError{Name: "galaxies"})

	var missing *MissingEagerLoadError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "galaxies", missing.Name)
	assert.True(t, IsMissingEagerLoad(err))
	assert.False(t, IsIDRequired(err))
}
