package contracts

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNewReference(t *testing.T) {
	id := uuid.New()

	t.Run("by id", func(t *testing.T) {
		ref, err := NewReference("classification", &id, nil)
		require.NoError(t, err)
		got, ok := ref.ID()
		assert.True(t, ok)
		assert.Equal(t, id, got)
		_, ok = ref.Text()
		assert.False(t, ok)
	})

	t.Run("by text", func(t *testing.T) {
		ref, err := NewReference("classification", nil, strPtr("  Queda  "))
		require.NoError(t, err)
		text, ok := ref.Text()
		assert.True(t, ok)
		assert.Equal(t, "Queda", text)
		_, ok = ref.ID()
		assert.False(t, ok)
	})

	t.Run("both is invalid", func(t *testing.T) {
		_, err := NewReference("classification", &id, strPtr("Queda"))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("blank text with id is by id", func(t *testing.T) {
		ref, err := NewReference("classification", &id, strPtr("   "))
		require.NoError(t, err)
		_, ok := ref.ID()
		assert.True(t, ok)
	})

	t.Run("neither is unset", func(t *testing.T) {
		ref, err := NewReference("classification", nil, nil)
		require.NoError(t, err)
		assert.False(t, ref.IsSet())
		assert.Equal(t, "unset", ref.String())
	})
}

func TestRefByTextBlankIsUnset(t *testing.T) {
	assert.False(t, RefByText("  ").IsSet())
	assert.True(t, RefByText("x").IsSet())
}
