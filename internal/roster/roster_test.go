package roster

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmuh-dev/duty-roster/backend/internal/cpsat"
	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
)

// 2026 年 6 月：1 号是周一，周末为 6、7、13、14、20、21、27、28
func juneCalendar(t *testing.T) *domain.Calendar {
	t.Helper()
	cal, err := domain.NewCalendar(2026, 6, nil)
	require.NoError(t, err)
	return cal
}

// daysFrom 生成 [from, to] 的预休日列表，用于把有效排班范围压缩到月初几天
func daysFrom(from int32, to int32) []int32 {
	days := make([]int32, 0, to-from+1)
	for d := from; d <= to; d++ {
		days = append(days, d)
	}
	return days
}

func TestNewInstanceValidation(t *testing.T) {
	cal := juneCalendar(t)

	tests := []struct {
		name    string
		doctors []Doctor
		cal     *domain.Calendar
	}{
		{"缺少日历", []Doctor{{Name: "如", Area: domain.AreaA, PointQuota: 8}}, nil},
		{"医师名单为空", []Doctor{}, cal},
		{"没有姓名", []Doctor{{Name: "", Area: domain.AreaA, PointQuota: 8}}, cal},
		{"姓名重复", []Doctor{
			{Name: "如", Area: domain.AreaA, PointQuota: 8},
			{Name: "如", Area: domain.AreaB, PointQuota: 8},
		}, cal},
		{"区域无效", []Doctor{{Name: "如", Area: "Z", PointQuota: 8}}, cal},
		{"点数上限为零", []Doctor{{Name: "如", Area: domain.AreaA, PointQuota: 0}}, cal},
		{"预休日越界", []Doctor{{Name: "如", Area: domain.AreaA, PointQuota: 8, DaysOff: []int32{31}}}, cal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInstance(tt.doctors, tt.cal)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

// 场景：两位同区医师、点数上限各 2、有效范围只有月初五个工作日。
// 休息规则下每人最多值两天班，最优解应把两人的点数都用满。
func TestRunFillsQuotasUnderRestRule(t *testing.T) {
	doctors := []Doctor{
		{Name: "如", Area: domain.AreaA, PointQuota: 2, DaysOff: daysFrom(6, 30)},
		{Name: "秀", Area: domain.AreaA, PointQuota: 2, DaysOff: daysFrom(6, 30)},
	}

	s, err := New(Parameters{TimeLimit: 2 * time.Minute}, doctors, juneCalendar(t))
	require.NoError(t, err)

	result, err := s.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.RosterStatusOptimal, result.Status)
	assert.Equal(t, int64(4), result.ObjectiveRaw["total_used_points"])
	for _, sum := range result.Summaries {
		assert.Equal(t, int32(2), sum.PointsUsed, "医师 %s", sum.Name)
		assert.Equal(t, int32(0), sum.PointsLeft, "医师 %s", sum.Name)
	}
}

// 场景：预休日覆盖整月的医师必须出现在结果中，且点数为零、值班列表为空
func TestRunFullMonthBlackout(t *testing.T) {
	doctors := []Doctor{
		{Name: "如", Area: domain.AreaA, PointQuota: 2, DaysOff: daysFrom(1, 30)},
		{Name: "秀", Area: domain.AreaA, PointQuota: 2, DaysOff: daysFrom(6, 30)},
	}

	s, err := New(Parameters{TimeLimit: 2 * time.Minute}, doctors, juneCalendar(t))
	require.NoError(t, err)

	result, err := s.Run(context.Background(), nil)
	require.NoError(t, err)

	var blocked *domain.DoctorSummary
	for i := range result.Summaries {
		if result.Summaries[i].Name == "如" {
			blocked = &result.Summaries[i]
		}
	}
	require.NotNil(t, blocked)
	assert.Equal(t, int32(0), blocked.PointsUsed)
	assert.Empty(t, blocked.Duties)
	assert.Empty(t, result.DoctorGrid["如"])
}

// 场景：两位 (区域, 上限) 完全相同、可用日也相同的医师，
// 最优解的同侪公平性惩罚必须为零，两人点数相等
func TestRunPeerFairness(t *testing.T) {
	doctors := []Doctor{
		{Name: "如", Area: domain.AreaA, PointQuota: 2, DaysOff: daysFrom(6, 30)},
		{Name: "秀", Area: domain.AreaA, PointQuota: 2, DaysOff: daysFrom(6, 30)},
	}

	s, err := New(Parameters{TimeLimit: 2 * time.Minute}, doctors, juneCalendar(t))
	require.NoError(t, err)

	result, err := s.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.RosterStatusOptimal, result.Status)
	assert.Equal(t, int64(0), result.ObjectiveRaw["fairness_penalty"])
	require.Len(t, result.Summaries, 2)
	assert.Equal(t, result.Summaries[0].PointsUsed, result.Summaries[1].PointsUsed)
}

// 任何被报告的解都必须满足全部硬性规则
func TestRunSolutionSatisfiesHardRules(t *testing.T) {
	cal := juneCalendar(t)
	doctors := []Doctor{
		{Name: "如", Area: domain.AreaA, PointQuota: 3, DaysOff: daysFrom(9, 30)},
		{Name: "秀", Area: domain.AreaB, PointQuota: 3, DaysOff: append([]int32{2}, daysFrom(9, 30)...)},
		{Name: "橋", Area: domain.AreaI, PointQuota: 4, DaysOff: daysFrom(9, 30)},
		{Name: "君", Area: domain.AreaA, PointQuota: 2, DaysOff: append([]int32{1, 5}, daysFrom(9, 30)...)},
	}

	s, err := New(Parameters{TimeLimit: 3 * time.Second}, doctors, cal)
	require.NoError(t, err)

	result, err := s.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Contains(t, []domain.RosterStatus{domain.RosterStatusOptimal, domain.RosterStatusFeasible}, result.Status)

	byName := make(map[string]Doctor)
	for _, doc := range doctors {
		byName[doc.Name] = doc
	}

	// 一个班次至多一人由 AreaGrid 的映射结构保证；反向核对两张表一致
	for day, areas := range result.AreaGrid {
		for area, name := range areas {
			assert.Equal(t, area, result.DoctorGrid[name][day])
		}
	}

	for name, grid := range result.DoctorGrid {
		doc := byName[name]
		points := int32(0)
		for day, area := range grid {
			// 非 I 区医师不得进入 I 区
			if !doc.Area.IsElite() {
				assert.NotEqual(t, domain.AreaI, area, "医师 %s 第 %d 天", name, day)
			}
			// 预休日不得排班
			for _, off := range doc.DaysOff {
				assert.NotEqual(t, off, day, "医师 %s 预休日 %d 被排班", name, off)
			}
			// 值班后必须休息两天
			assert.NotContains(t, grid, day+1, "医师 %s 第 %d 天后未休息", name, day)
			assert.NotContains(t, grid, day+2, "医师 %s 第 %d 天后未休息", name, day)
			points += cal.PointsOfDay(day)
		}
		assert.LessOrEqual(t, points, doc.PointQuota, "医师 %s 超出点数上限", name)
	}
}

// 进度事件：逐项得分齐全、序号递增、最后一个事件与最终结果一致
func TestRunProgressEvents(t *testing.T) {
	doctors := []Doctor{
		{Name: "如", Area: domain.AreaA, PointQuota: 2, DaysOff: daysFrom(6, 30)},
		{Name: "秀", Area: domain.AreaA, PointQuota: 2, DaysOff: daysFrom(6, 30)},
	}

	s, err := New(Parameters{TimeLimit: 2 * time.Minute, EnumerateAll: true}, doctors, juneCalendar(t))
	require.NoError(t, err)

	progress := make(chan ProgressEvent)
	events := make([]ProgressEvent, 0)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range progress {
			events = append(events, ev)
		}
	}()

	result, err := s.Run(context.Background(), progress)
	require.NoError(t, err)
	<-done

	require.NotEmpty(t, events)
	for i, ev := range events {
		assert.Equal(t, int32(i+1), ev.Seq)
		assert.Len(t, ev.Terms, 7)
	}

	last := events[len(events)-1]
	total := 0.0
	for _, score := range result.ObjectiveScores {
		total += score
	}
	assert.InDelta(t, total, last.Total, 1e-9)
}

// 对同一已求解的模型重复抽取，产出必须完全一致
func TestExtractIdempotent(t *testing.T) {
	doctors := []Doctor{
		{Name: "如", Area: domain.AreaA, PointQuota: 2, DaysOff: daysFrom(6, 30)},
		{Name: "秀", Area: domain.AreaI, PointQuota: 2, DaysOff: daysFrom(6, 30)},
	}

	inst, err := NewInstance(doctors, juneCalendar(t))
	require.NoError(t, err)

	s := &Scheduler{params: Parameters{TimeLimit: 2 * time.Minute}, inst: inst}
	s.b = newBuilder(inst)
	s.b.addHardConstraints()
	s.b.addObjective()

	solver := &cpsat.Solver{TimeLimit: s.params.TimeLimit, EnumerateAllSolutions: true}
	status := solver.Solve(context.Background(), s.b.model, nil)
	require.Equal(t, cpsat.StatusOptimal, status)

	first := s.extract(solver, status)
	second := s.extract(solver, status)
	assert.Equal(t, first, second)
}

// 超时且未找到任何可行解时返回 unknown 终态结果而不是错误
func TestRunTimeoutWithoutSolutionReturnsUnknown(t *testing.T) {
	// 实例足够大，使首个叶子在第一次超时检查之后才可能到达
	doctors := make([]Doctor, 0, 20)
	for i := 0; i < 20; i++ {
		doctors = append(doctors, Doctor{
			Name:       fmt.Sprintf("医%d", i),
			Area:       domain.Areas[i%len(domain.Areas)],
			PointQuota: 8,
		})
	}

	s, err := New(Parameters{TimeLimit: time.Nanosecond}, doctors, juneCalendar(t))
	require.NoError(t, err)

	result, err := s.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RosterStatusUnknown, result.Status)
	assert.Empty(t, result.AreaGrid)
	assert.Empty(t, result.Summaries)
}

// 目标项字典必须包含全部七个键
func TestRunObjectiveTermKeys(t *testing.T) {
	doctors := []Doctor{
		{Name: "如", Area: domain.AreaA, PointQuota: 2, DaysOff: daysFrom(6, 30)},
	}

	s, err := New(Parameters{TimeLimit: 2 * time.Minute}, doctors, juneCalendar(t))
	require.NoError(t, err)

	result, err := s.Run(context.Background(), nil)
	require.NoError(t, err)

	keys := []string{
		"total_used_points", "linear_gaps_bonus", "min_gap_count",
		"fairness_penalty", "total_shifts_filled", "i_priority_bonus", "home_area_bonus",
	}
	for _, key := range keys {
		assert.Contains(t, result.ObjectiveRaw, key)
		assert.Contains(t, result.ObjectiveScores, key)
	}
}
