package domain

import (
	"fmt"
	"time"
)

// Calendar 某个月份的排班日历，构建一次后只读
type Calendar struct {
	Year            int     `json:"year"`
	Month           int     `json:"month"`
	NumDays         int32   `json:"numDays"`
	WeekendDays     []int32 `json:"weekendDays"`
	HolidayDays     []int32 `json:"holidayDays"`
	doublePointDays map[int32]bool
}

// NewCalendar 根据年月和国定假日列表构建日历，周末和假日合并为双倍点数日
func NewCalendar(year int, month int, holidays []int32) (*Calendar, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("无效的月份 %d", month)
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	numDays := int32(first.AddDate(0, 1, -1).Day())

	cal := &Calendar{
		Year:            year,
		Month:           month,
		NumDays:         numDays,
		WeekendDays:     make([]int32, 0),
		HolidayDays:     make([]int32, 0),
		doublePointDays: make(map[int32]bool),
	}

	for day := int32(1); day <= numDays; day++ {
		weekday := first.AddDate(0, 0, int(day-1)).Weekday()
		if weekday == time.Saturday || weekday == time.Sunday {
			cal.WeekendDays = append(cal.WeekendDays, day)
			cal.doublePointDays[day] = true
		}
	}

	for _, day := range holidays {
		if day < 1 || day > numDays {
			return nil, fmt.Errorf("假日 %d 不在当月范围内", day)
		}
		cal.HolidayDays = append(cal.HolidayDays, day)
		cal.doublePointDays[day] = true
	}

	return cal, nil
}

// IsDoublePointDay 判断某天是否为双倍点数日（周末或国定假日）
func (c *Calendar) IsDoublePointDay(day int32) bool {
	return c.doublePointDays[day]
}

// PointsOfDay 当天值班消耗的点数，平日 1 点，双倍点数日 2 点
func (c *Calendar) PointsOfDay(day int32) int32 {
	if c.doublePointDays[day] {
		return 2
	}
	return 1
}

// MonthKey 返回 "YYYY-MM" 格式的月份键
func (c *Calendar) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", c.Year, c.Month)
}

// ParseMonthKey 解析 "YYYY-MM" 格式的月份键
func ParseMonthKey(key string) (year int, month int, err error) {
	if _, err := fmt.Sscanf(key, "%4d-%2d", &year, &month); err != nil {
		return 0, 0, fmt.Errorf("无效的月份键 %q", key)
	}
	if month < 1 || month > 12 || len(key) != 7 {
		return 0, 0, fmt.Errorf("无效的月份键 %q", key)
	}
	return year, month, nil
}
