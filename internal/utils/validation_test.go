package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
)

func TestValidateDaysOff(t *testing.T) {
	cal, err := domain.NewCalendar(2026, 6, nil)
	require.NoError(t, err)

	assert.NoError(t, ValidateDaysOff(nil, cal))
	assert.NoError(t, ValidateDaysOff([]int32{1, 15, 30}, cal))

	assert.Error(t, ValidateDaysOff([]int32{0}, cal))
	assert.Error(t, ValidateDaysOff([]int32{31}, cal))
	assert.Error(t, ValidateDaysOff([]int32{3, 3}, cal))
}

func TestValidateRosterWithDaysOff(t *testing.T) {
	result := &domain.RosterResult{
		DoctorGrid: map[string]map[int32]domain.Area{
			"如": {5: domain.AreaA, 12: domain.AreaB},
		},
	}

	assert.NoError(t, ValidateRosterWithDaysOff(result, map[string][]int32{"如": {1, 2}}))
	assert.Error(t, ValidateRosterWithDaysOff(result, map[string][]int32{"如": {12}}))
}
