package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanDonateTo_UniversalDonorAndRecipient(t *testing.T) {
	for _, recipient := range AllBloodTypes {
		assert.True(t, CanDonateTo(BloodTypeONegative, recipient), "O- must donate to %s", recipient)
	}
	for _, donor := range AllBloodTypes {
		assert.True(t, CanDonateTo(donor, BloodTypeABPositive), "AB+ must receive from %s", donor)
	}
}

func TestCanDonateTo_SelfCompatibility(t *testing.T) {
	for _, bt := range AllBloodTypes {
		assert.True(t, CanDonateTo(bt, bt), "%s must donate to itself", bt)
	}
}

func TestCanDonateTo_RhAndAntigenRules(t *testing.T) {
	// Rh-positive blood never goes to an Rh-negative recipient.
	assert.False(t, CanDonateTo(BloodTypeOPositive, BloodTypeONegative))
	assert.False(t, CanDonateTo(BloodTypeAPositive, BloodTypeANegative))
	assert.False(t, CanDonateTo(BloodTypeABPositive, BloodTypeABNegative))

	// A and B antigens don't cross.
	assert.False(t, CanDonateTo(BloodTypeAPositive, BloodTypeBPositive))
	assert.False(t, CanDonateTo(BloodTypeBNegative, BloodTypeAPositive))
	assert.False(t, CanDonateTo(BloodTypeABNegative, BloodTypeANegative))
}

func TestCompatibleDonorTypes_AgreesWithCanDonateTo(t *testing.T) {
	for _, recipient := range AllBloodTypes {
		donors := CompatibleDonorTypes(recipient)
		require.NotEmpty(t, donors)
		seen := make(map[BloodType]bool, len(donors))
		for _, d := range donors {
			assert.True(t, CanDonateTo(d, recipient), "%s listed for %s but CanDonateTo disagrees", d, recipient)
			seen[d] = true
		}
		for _, d := range AllBloodTypes {
			if !seen[d] {
				assert.False(t, CanDonateTo(d, recipient), "%s missing from donor list for %s", d, recipient)
			}
		}
	}
}

func TestParseBloodType(t *testing.T) {
	bt, err := ParseBloodType("O_negative")
	require.NoError(t, err)
	assert.Equal(t, BloodTypeONegative, bt)
	assert.Equal(t, "O-", bt.Display())

	_, err = ParseBloodType("C_positive")
	assert.Error(t, err)

	_, err = ParseBloodType("")
	assert.Error(t, err)
}
