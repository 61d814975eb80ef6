package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeliveryStatus(t *testing.T) {
	status, err := ParseDeliveryStatus("pending")
	require.NoError(t, err)
	assert.Equal(t, OrderPlanned, status)

	status, err = ParseDeliveryStatus("partial_return")
	require.NoError(t, err)
	assert.Equal(t, OrderPartialReturn, status)

	_, err = ParseDeliveryStatus("DELIVERED")
	assert.Error(t, err, "tokens are lowercase only")
}

func TestTransitionsMoveForwardOnly(t *testing.T) {
	assert.True(t, OrderPlanned.CanTransitionTo(OrderLoaded))
	assert.True(t, OrderPlanned.CanTransitionTo(OrderDelivered))
	assert.True(t, OrderLoaded.CanTransitionTo(OrderInTransit))
	assert.True(t, OrderInTransit.CanTransitionTo(OrderPartialReturn))

	assert.False(t, OrderInTransit.CanTransitionTo(OrderLoaded))
	assert.False(t, OrderDelivered.CanTransitionTo(OrderInTransit))
	assert.False(t, OrderPartialReturn.CanTransitionTo(OrderDelivered))
}

func TestSameStatusIsAlwaysAllowed(t *testing.T) {
	for s := range transitions {
		assert.True(t, s.CanTransitionTo(s), "%s -> %s", s, s)
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, OrderDelivered.IsTerminal())
	assert.True(t, OrderPartialReturn.IsTerminal())
	assert.False(t, OrderPlanned.IsTerminal())
	assert.False(t, OrderInTransit.IsTerminal())
}
