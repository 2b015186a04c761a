package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmuh-dev/duty-roster/backend/internal/cpsat"
	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
)

// ErrSolverFault 求解引擎内部故障（区别于正常的无解结论）
var ErrSolverFault = errors.New("排班求解引擎故障")

// Parameters 一次求解的运行参数
type Parameters struct {
	TimeLimit    time.Duration
	EnumerateAll bool // 每次找到更优解都上报进度，否则只报告首个解
}

// TermScore 单个目标项在某个解中的取值
type TermScore struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Raw   int64   `json:"raw"`   // 目标项本身的取值
	Score float64 `json:"score"` // 乘以权重后的得分
}

// ProgressEvent 求解过程中找到一个更优可行解时的进度事件
type ProgressEvent struct {
	Seq   int32       `json:"seq"`
	Terms []TermScore `json:"terms"`
	Total float64     `json:"total"`
}

// Scheduler 驱动一次完整的排班运算：构建模型、运行求解、抽取结果。
// 一个 Scheduler 只用于一次运算，不可复用。
type Scheduler struct {
	params Parameters
	inst   *Instance
	b      *builder
}

// New 校验输入并准备排班运算
func New(params Parameters, doctors []Doctor, cal *domain.Calendar) (*Scheduler, error) {
	inst, err := NewInstance(doctors, cal)
	if err != nil {
		return nil, err
	}
	return &Scheduler{params: params, inst: inst}, nil
}

// Run 执行求解。progress 不为 nil 时接收进度事件，无论成功与否结束前都会被关闭。
// 求不出解不是错误：证明无解返回 infeasible 状态，超时且一个可行解都没找到
// 返回 unknown 状态。ctx 取消时返回截至当时的最优解（若有）。
func (s *Scheduler) Run(ctx context.Context, progress chan<- ProgressEvent) (result *domain.RosterResult, err error) {
	if progress != nil {
		defer close(progress)
	}
	// 模型构建和叶子求值出现任何 panic 都转为错误返回，避免拖垮调用方
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrSolverFault, r)
		}
	}()

	s.b = newBuilder(s.inst)
	s.b.addHardConstraints()
	s.b.addObjective()

	solver := &cpsat.Solver{
		TimeLimit:             s.params.TimeLimit,
		EnumerateAllSolutions: true,
	}

	var seq int32
	status := solver.Solve(ctx, s.b.model, func(sol *cpsat.Solution) {
		seq++
		if progress == nil {
			return
		}
		if !s.params.EnumerateAll && seq > 1 {
			return
		}
		progress <- s.scoreSolution(seq, sol)
	})

	switch status {
	case cpsat.StatusOptimal, cpsat.StatusFeasible:
		return s.extract(solver, status), nil
	case cpsat.StatusInfeasible:
		return s.emptyResult(domain.RosterStatusInfeasible), nil
	default:
		// 超时且没有找到任何可行解同样是终态，不作为错误上报
		return s.emptyResult(domain.RosterStatusUnknown), nil
	}
}

// emptyResult 没有任何排班内容的终态结果
func (s *Scheduler) emptyResult(status domain.RosterStatus) *domain.RosterResult {
	return &domain.RosterResult{
		MonthKey:        s.inst.cal.MonthKey(),
		Status:          status,
		AreaGrid:        map[int32]map[domain.Area]string{},
		DoctorGrid:      map[string]map[int32]domain.Area{},
		Summaries:       []domain.DoctorSummary{},
		ObjectiveRaw:    map[string]int64{},
		ObjectiveScores: map[string]float64{},
	}
}

// scoreSolution 逐项计算目标得分，顺序与模型注册顺序一致
func (s *Scheduler) scoreSolution(seq int32, sol *cpsat.Solution) ProgressEvent {
	ev := ProgressEvent{Seq: seq, Terms: make([]TermScore, 0, len(s.b.terms))}
	for _, t := range s.b.terms {
		raw := sol.Value(t.expr)
		score := float64(raw) * t.weight
		ev.Terms = append(ev.Terms, TermScore{Key: t.key, Label: t.label, Raw: raw, Score: score})
		ev.Total += score
	}
	return ev
}
