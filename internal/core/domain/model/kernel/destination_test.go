package kernel_test

import (
	"strings"
	"testing"

	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDestination(t *testing.T) {
	t.Run("should trim surrounding whitespace", func(t *testing.T) {
		d, err := kernel.NewDestination("  Down Town \n")

		require.NoError(t, err)
		require.NoError(t, d.Validate())
		assert.Equal(t, "Down Town", d.String())
	})

	t.Run("should require a non-empty address", func(t *testing.T) {
		for _, input := range []string{"", "   ", "\t\n"} {
			_, err := kernel.NewDestination(input)

			require.ErrorIs(t, err, errs.ErrValueIsRequired)
		}
	})

	t.Run("should reject addresses longer than the limit", func(t *testing.T) {
		_, err := kernel.NewDestination(strings.Repeat("a", kernel.DestinationMaxLength+1))

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should count runes rather than bytes", func(t *testing.T) {
		d, err := kernel.NewDestination(strings.Repeat("ü", kernel.DestinationMaxLength))

		require.NoError(t, err)
		assert.Len(t, []rune(d.String()), kernel.DestinationMaxLength)
	})
}

func TestDestination_Validate(t *testing.T) {
	var zero kernel.Destination

	require.ErrorIs(t, zero.Validate(), kernel.ErrDestinationIsNotConstructed)
}

func TestDestination_IsEqual(t *testing.T) {
	a, _ := kernel.NewDestination("Home")
	b, _ := kernel.NewDestination(" Home ")
	c, _ := kernel.NewDestination("Office")

	assert.True(t, a.IsEqual(b))
	assert.False(t, a.IsEqual(c))
}
