package cpsat

import (
	"context"
	"math"
	"time"
)

type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Solution 一组完整的变量取值，回调内或求解结束后可读取
type Solution struct {
	boolVals []int8
	intVals  []int64
}

func (s *Solution) BoolValue(lit Literal) bool {
	val := s.boolVals[lit.boolVar().index] == 1
	if lit.negated() {
		return !val
	}
	return val
}

func (s *Solution) IntValue(v *IntVar) int64 {
	return s.intVals[v.index]
}

func (s *Solution) Value(e *LinearExpr) int64 {
	total := e.constant
	for _, t := range e.boolTerms {
		total += t.coeff * int64(s.boolVals[t.v.index])
	}
	for _, t := range e.intTerms {
		total += t.coeff * s.intVals[t.v.index]
	}
	return total
}

// Solver 深度优先枚举引擎。
// 被等式约束（w == Σ其他布尔变量）或具现化 AND/OR 约束定义的布尔变量
// 视为派生变量，不参与分支，在叶子处按创建顺序求值；其余布尔变量为决策变量。
// 具现化约束的 enforcement 字面量被解释为等价定义（即 b ⇔ AND/OR(...)），
// 与成对添加正反两个方向的建模方式一致。
type Solver struct {
	TimeLimit             time.Duration
	EnumerateAllSolutions bool

	best          *Solution
	bestObjective int64
	solutionCount int32
}

const (
	defNone = iota
	defSum
	defAnd
	defOr
)

type boolDef struct {
	kind int
	expr *LinearExpr // defSum: w == expr 的取值
	lits []Literal   // defAnd / defOr
}

type searchState struct {
	model     *Model
	defs      []boolDef
	decisions []*BoolVar
	// 每个决策变量关联的可剪枝约束
	varLinears    [][]int
	varAtMostOnes [][]int
	pruneLinears  []bool // 线性约束是否只含决策变量（可用于剪枝）
	pruneAMOs     []bool

	assign  []int8 // -1 未赋值
	intVals []int64

	onSolution func(*Solution)
	deadline   time.Time
	ctx        context.Context
	nodes      int64
	stopped    bool
}

// Solve 运行求解，返回最终状态。onSolution 在每次找到更优可行解时被同步调用，
// 调用顺序即发现顺序。求解结束后可通过 Solver 上的取值方法读取最优解。
func (s *Solver) Solve(ctx context.Context, m *Model, onSolution func(*Solution)) Status {
	s.best = nil
	s.bestObjective = math.MinInt64
	s.solutionCount = 0

	st := &searchState{
		model:      m,
		assign:     make([]int8, len(m.bools)),
		intVals:    make([]int64, len(m.ints)),
		onSolution: onSolution,
		ctx:        ctx,
	}
	for i := range st.assign {
		st.assign[i] = -1
	}
	if s.TimeLimit > 0 {
		st.deadline = time.Now().Add(s.TimeLimit)
	}

	s.classify(st)
	s.index(st)
	s.search(st, 0)

	switch {
	case !st.stopped && s.best != nil:
		return StatusOptimal
	case !st.stopped:
		return StatusInfeasible
	case s.best != nil:
		return StatusFeasible
	default:
		return StatusUnknown
	}
}

func (s *Solver) BoolValue(lit Literal) bool { return s.best.BoolValue(lit) }
func (s *Solver) IntValue(v *IntVar) int64   { return s.best.IntValue(v) }
func (s *Solver) Value(e *LinearExpr) int64  { return s.best.Value(e) }
func (s *Solver) ObjectiveValue() int64      { return s.bestObjective }
func (s *Solver) SolutionCount() int32       { return s.solutionCount }
func (s *Solver) BestSolution() *Solution    { return s.best }

// classify 划分派生变量与决策变量
func (s *Solver) classify(st *searchState) {
	m := st.model
	st.defs = make([]boolDef, len(m.bools))

	// w == Σ 其他布尔项 形式的等式：仅有一个 -1 系数项，无整数项，界为 0
	for _, lc := range m.linears {
		if lc.lo != 0 || lc.hi != 0 || len(lc.expr.intTerms) > 0 {
			continue
		}
		target := -1
		ok := true
		for _, t := range lc.expr.boolTerms {
			switch {
			case t.coeff == -1 && target < 0:
				target = t.v.index
			case t.coeff > 0:
			default:
				ok = false
			}
		}
		if !ok || target < 0 || st.defs[target].kind != defNone {
			continue
		}
		def := NewLinearExpr()
		def.AddConstant(lc.expr.constant)
		for _, t := range lc.expr.boolTerms {
			if t.v.index != target {
				def.AddTerm(t.v, t.coeff)
			}
		}
		st.defs[target] = boolDef{kind: defSum, expr: def}
	}

	// 单个正 enforcement 字面量的 AND/OR 约束定义该字面量
	for _, ec := range m.enforced {
		if len(ec.enforcements) != 1 || ec.enforcements[0].negated() {
			continue
		}
		target := ec.enforcements[0].boolVar().index
		if st.defs[target].kind != defNone {
			continue
		}
		kind := defAnd
		if !ec.isAnd {
			kind = defOr
		}
		st.defs[target] = boolDef{kind: kind, lits: ec.literals}
	}

	for i, v := range m.bools {
		if st.defs[i].kind == defNone {
			st.decisions = append(st.decisions, v)
		}
	}
}

// index 标记可用于剪枝的约束并建立决策变量到约束的索引
func (s *Solver) index(st *searchState) {
	m := st.model
	st.pruneLinears = make([]bool, len(m.linears))
	st.pruneAMOs = make([]bool, len(m.atMostOnes))
	st.varLinears = make([][]int, len(m.bools))
	st.varAtMostOnes = make([][]int, len(m.bools))

	for i, lc := range m.linears {
		pure := len(lc.expr.intTerms) == 0
		for _, t := range lc.expr.boolTerms {
			if st.defs[t.v.index].kind != defNone {
				pure = false
			}
		}
		st.pruneLinears[i] = pure
		if pure {
			for _, t := range lc.expr.boolTerms {
				st.varLinears[t.v.index] = append(st.varLinears[t.v.index], i)
			}
		}
	}

	for i, lits := range m.atMostOnes {
		pure := true
		for _, lit := range lits {
			if st.defs[lit.boolVar().index].kind != defNone {
				pure = false
				break
			}
		}
		st.pruneAMOs[i] = pure
		if pure {
			for _, lit := range lits {
				st.varAtMostOnes[lit.boolVar().index] = append(st.varAtMostOnes[lit.boolVar().index], i)
			}
		}
	}
}

func (st *searchState) shouldStop() bool {
	if st.stopped {
		return true
	}
	st.nodes++
	if st.nodes%2048 == 0 {
		if !st.deadline.IsZero() && time.Now().After(st.deadline) {
			st.stopped = true
		}
		select {
		case <-st.ctx.Done():
			st.stopped = true
		default:
		}
	}
	return st.stopped
}

func (s *Solver) search(st *searchState, depth int) {
	if st.shouldStop() {
		return
	}
	if depth == len(st.decisions) {
		s.acceptLeaf(st)
		return
	}

	v := st.decisions[depth]
	// 先尝试 1，倾向于先填满班次
	for _, val := range []int8{1, 0} {
		st.assign[v.index] = val
		if s.consistent(st, v.index) {
			s.search(st, depth+1)
		}
		if st.stopped {
			break
		}
	}
	st.assign[v.index] = -1
}

// consistent 对刚赋值的变量所关联的可剪枝约束做界检查
func (s *Solver) consistent(st *searchState, varIndex int) bool {
	m := st.model

	for _, ci := range st.varLinears[varIndex] {
		lc := m.linears[ci]
		minSum, maxSum := lc.expr.constant, lc.expr.constant
		for _, t := range lc.expr.boolTerms {
			switch st.assign[t.v.index] {
			case -1:
				if t.coeff > 0 {
					maxSum += t.coeff
				} else {
					minSum += t.coeff
				}
			case 1:
				minSum += t.coeff
				maxSum += t.coeff
			}
		}
		if minSum > lc.hi || maxSum < lc.lo {
			return false
		}
	}

	for _, ci := range st.varAtMostOnes[varIndex] {
		trueCount := 0
		for _, lit := range m.atMostOnes[ci] {
			val := st.assign[lit.boolVar().index]
			if val == -1 {
				continue
			}
			truth := val == 1
			if lit.negated() {
				truth = !truth
			}
			if truth {
				trueCount++
			}
		}
		if trueCount > 1 {
			return false
		}
	}

	return true
}

// acceptLeaf 补全派生变量取值，做完整可行性检查，可行且更优时记录并回调
func (s *Solver) acceptLeaf(st *searchState) {
	m := st.model

	// 派生布尔变量按创建顺序求值（定义只引用更早创建的变量）
	for i, def := range st.defs {
		switch def.kind {
		case defSum:
			sum := st.leafValue(st.assign, def.expr)
			if sum != 0 && sum != 1 {
				return
			}
			st.assign[i] = int8(sum)
		case defAnd, defOr:
			allTrue, anyTrue := true, false
			for _, lit := range def.lits {
				truth := st.assign[lit.boolVar().index] == 1
				if lit.negated() {
					truth = !truth
				}
				allTrue = allTrue && truth
				anyTrue = anyTrue || truth
			}
			val := anyTrue
			if def.kind == defAnd {
				val = allTrue
			}
			if val {
				st.assign[i] = 1
			} else {
				st.assign[i] = 0
			}
		}
	}
	defer func() {
		for i, def := range st.defs {
			if def.kind != defNone {
				st.assign[i] = -1
			}
		}
	}()

	// 极值约束定义整数变量
	for _, ex := range m.extremums {
		val := int64(math.MaxInt64)
		if !ex.isMin {
			val = math.MinInt64
		}
		for _, e := range ex.exprs {
			v := st.leafValue(st.assign, e)
			if ex.isMin && v < val {
				val = v
			}
			if !ex.isMin && v > val {
				val = v
			}
		}
		if val < ex.target.lo || val > ex.target.hi {
			return
		}
		st.intVals[ex.target.index] = val
	}

	sol := &Solution{boolVals: st.assign, intVals: st.intVals}

	// 完整校验所有约束
	for _, lc := range m.linears {
		v := sol.Value(lc.expr)
		if v < lc.lo || v > lc.hi {
			return
		}
	}
	for _, lits := range m.atMostOnes {
		trueCount := 0
		for _, lit := range lits {
			if sol.BoolValue(lit) {
				trueCount++
			}
		}
		if trueCount > 1 {
			return
		}
	}
	for _, ec := range m.enforced {
		enforced := true
		for _, lit := range ec.enforcements {
			if !sol.BoolValue(lit) {
				enforced = false
				break
			}
		}
		if !enforced {
			continue
		}
		allTrue, anyTrue := true, false
		for _, lit := range ec.literals {
			t := sol.BoolValue(lit)
			allTrue = allTrue && t
			anyTrue = anyTrue || t
		}
		if ec.isAnd && !allTrue {
			return
		}
		if !ec.isAnd && !anyTrue {
			return
		}
	}

	objective := int64(0)
	if m.objective != nil {
		objective = sol.Value(m.objective)
	}
	if s.best != nil && objective <= s.bestObjective {
		return
	}

	// 记录快照
	snapshot := &Solution{
		boolVals: append([]int8(nil), st.assign...),
		intVals:  append([]int64(nil), st.intVals...),
	}
	s.best = snapshot
	s.bestObjective = objective
	s.solutionCount++

	if st.onSolution != nil && (s.EnumerateAllSolutions || s.solutionCount == 1) {
		st.onSolution(snapshot)
	}
}

func (st *searchState) leafValue(assign []int8, e *LinearExpr) int64 {
	total := e.constant
	for _, t := range e.boolTerms {
		total += t.coeff * int64(assign[t.v.index])
	}
	for _, t := range e.intTerms {
		total += t.coeff * st.intVals[t.v.index]
	}
	return total
}
