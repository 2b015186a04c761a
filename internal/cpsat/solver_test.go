package cpsat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveMaximizeWithAtMostOne(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	m.AddAtMostOne(a, b)

	obj := NewLinearExpr()
	obj.AddTerm(a, 1)
	obj.AddTerm(b, 2)
	m.Maximize(obj)

	solver := &Solver{}
	status := solver.Solve(context.Background(), m, nil)

	require.Equal(t, StatusOptimal, status)
	assert.Equal(t, int64(2), solver.ObjectiveValue())
	assert.False(t, solver.BoolValue(a))
	assert.True(t, solver.BoolValue(b))
}

func TestSolveLinearBounds(t *testing.T) {
	m := NewModel()
	vars := make([]*BoolVar, 4)
	for i := range vars {
		vars[i] = m.NewBoolVar("x")
	}
	m.AddLessOrEqual(Sum(vars...), 2)
	m.AddGreaterOrEqual(Sum(vars...), 1)
	m.Maximize(Sum(vars...))

	solver := &Solver{}
	status := solver.Solve(context.Background(), m, nil)

	require.Equal(t, StatusOptimal, status)
	assert.Equal(t, int64(2), solver.ObjectiveValue())
}

func TestSolveInfeasible(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	m.AddEquality(Sum(a, b), 2)
	m.AddAtMostOne(a, b)

	solver := &Solver{}
	status := solver.Solve(context.Background(), m, nil)

	assert.Equal(t, StatusInfeasible, status)
	assert.Equal(t, int32(0), solver.SolutionCount())
}

func TestSolveReifiedAnd(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	both := m.NewBoolVar("both")
	m.AddBoolAnd(a, b).OnlyEnforceIf(both)
	m.AddBoolOr(a.Not(), b.Not()).OnlyEnforceIf(both.Not())

	// 奖励 both 但禁止 a，此时 both 必须为假
	m.AddEquality(Sum(a), 0)
	obj := NewLinearExpr()
	obj.AddTerm(both, 10)
	obj.AddTerm(b, 1)
	m.Maximize(obj)

	solver := &Solver{}
	status := solver.Solve(context.Background(), m, nil)

	require.Equal(t, StatusOptimal, status)
	assert.False(t, solver.BoolValue(both))
	assert.True(t, solver.BoolValue(b))
	assert.Equal(t, int64(1), solver.ObjectiveValue())
}

func TestSolveMinMaxEquality(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	m.AddEquality(Sum(a), 1)
	m.AddEquality(Sum(b), 0)

	lo := m.NewIntVar(0, 10, "lo")
	hi := m.NewIntVar(0, 10, "hi")
	exprs := []*LinearExpr{Sum(a), Sum(b)}
	m.AddMinEquality(lo, exprs)
	m.AddMaxEquality(hi, exprs)

	obj := NewLinearExpr()
	obj.AddIntTerm(hi, 1)
	obj.AddIntTerm(lo, -1)
	m.Maximize(obj)

	solver := &Solver{}
	status := solver.Solve(context.Background(), m, nil)

	require.Equal(t, StatusOptimal, status)
	assert.Equal(t, int64(0), solver.IntValue(lo))
	assert.Equal(t, int64(1), solver.IntValue(hi))
	assert.Equal(t, int64(1), solver.ObjectiveValue())
}

func TestSolveCallbackImprovingOrder(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	m.AddAtMostOne(a, b)

	obj := NewLinearExpr()
	obj.AddTerm(a, 1)
	obj.AddTerm(b, 2)
	m.Maximize(obj)

	var objectives []int64
	solver := &Solver{EnumerateAllSolutions: true}
	status := solver.Solve(context.Background(), m, func(sol *Solution) {
		objectives = append(objectives, sol.Value(obj))
	})

	require.Equal(t, StatusOptimal, status)
	// 先尝试 1 的搜索顺序下依次发现 a=1 再 b=1，目标严格递增
	assert.Equal(t, []int64{1, 2}, objectives)
	assert.Equal(t, int32(2), solver.SolutionCount())
}

func TestSolveCanceledContextKeepsBestSoFar(t *testing.T) {
	m := NewModel()
	vars := make([]*BoolVar, 30)
	for i := range vars {
		vars[i] = m.NewBoolVar("x")
	}
	m.Maximize(Sum(vars...))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	solver := &Solver{TimeLimit: time.Minute}
	status := solver.Solve(ctx, m, nil)

	// 首个叶子即全取 1，取消只影响完备性证明
	assert.Equal(t, StatusFeasible, status)
	assert.Equal(t, int64(30), solver.ObjectiveValue())
}

func TestSolutionValueWithConstant(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar("a")
	m.AddEquality(Sum(a), 1)
	m.Maximize(Sum(a))

	solver := &Solver{}
	require.Equal(t, StatusOptimal, solver.Solve(context.Background(), m, nil))

	e := NewLinearExpr()
	e.AddTerm(a, 3)
	e.AddConstant(4)
	assert.Equal(t, int64(7), solver.Value(e))
	assert.True(t, solver.BoolValue(a))
	assert.False(t, solver.BoolValue(a.Not()))
}
