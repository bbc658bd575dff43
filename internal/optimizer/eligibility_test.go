package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormationSlots_KnownFormations(t *testing.T) {
	for _, name := range FormationNames() {
		slots, err := FormationSlots(name)
		require.NoError(t, err)
		assert.NotEmpty(t, slots, "formation %s has slots", name)
	}

	slots, err := FormationSlots("4-3-3")
	require.NoError(t, err)
	assert.Len(t, slots, 11)
	assert.Equal(t, "GK", slots[0])
}

func TestFormationSlots_UnknownFormation(t *testing.T) {
	_, err := FormationSlots("3-6-1")
	assert.Error(t, err)
}

func TestFormationNames_Sorted(t *testing.T) {
	names := FormationNames()
	require.Len(t, names, 3)
	assert.Equal(t, []string{"4-2-3-1", "4-3-3", "4-4-2"}, names)
}

func TestIsEligible_SubstringMatch(t *testing.T) {
	// Raw position strings are frequently comma-separated multi tags.
	assert.True(t, IsEligible("ST", "FW"))
	assert.True(t, IsEligible("ST", "FW,MF"))
	assert.True(t, IsEligible("LW", "AM, LW"))
	assert.True(t, IsEligible("RCB", "DEF"))
	assert.True(t, IsEligible("GK", "GK"))

	assert.False(t, IsEligible("GK", "FW"))
	assert.False(t, IsEligible("ST", "DF"))
	assert.False(t, IsEligible("LB", "GK"))
}

func TestIsEligible_CaseAndWhitespace(t *testing.T) {
	assert.True(t, IsEligible("ST", "fw"))
	assert.True(t, IsEligible("ST", "  FW  "))
}

func TestIsEligible_UnknownSlotFallsBackToItself(t *testing.T) {
	assert.True(t, IsEligible("SW", "SW"))
	assert.False(t, IsEligible("SW", "FW"))
}
