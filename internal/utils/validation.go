package utils

import (
	"fmt"
	"slices"

	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
)

// ValidateDaysOff 校验预休日是否都在当月范围内且没有重复
func ValidateDaysOff(daysOff []int32, cal *domain.Calendar) error {
	seen := make(map[int32]bool, len(daysOff))

	for _, day := range daysOff {
		if day < 1 || day > cal.NumDays {
			return fmt.Errorf("预休日 %d 不在当月范围内", day)
		}
		if seen[day] {
			return fmt.Errorf("预休日 %d 重复", day)
		}
		seen[day] = true
	}

	return nil
}

// ValidateRosterWithDaysOff 核对排班结果是否侵占了医师提交的预休日
func ValidateRosterWithDaysOff(result *domain.RosterResult, daysOffByName map[string][]int32) error {
	for name, grid := range result.DoctorGrid {
		for day := range grid {
			if slices.Contains(daysOffByName[name], day) {
				return fmt.Errorf("医师 %s 在预休日 %d 被排班", name, day)
			}
		}
	}

	return nil
}
