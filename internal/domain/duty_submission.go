package domain

import "time"

// DutySubmission 医师对某个月份提交的预休日
type DutySubmission struct {
	ID        int64     `json:"id"`
	MonthKey  string    `json:"monthKey"` // "YYYY-MM"
	UserID    int64     `json:"userID"`
	DaysOff   []int32   `json:"daysOff"`
	Submitted bool      `json:"submitted"` // false 表示沿用模板中的默认预休日
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
