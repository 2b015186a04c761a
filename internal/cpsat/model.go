// Package cpsat 提供一个 CP-SAT 风格的约束模型接口和一个自带的枚举求解引擎。
// 排班核心只依赖这里的模型 API（布尔/整数变量、线性约束、具现化布尔约束、
// 最大化目标），引擎本身可以被替换成任何满足同样接口语义的求解器。
package cpsat

import "math"

// Literal 布尔变量或其否定
type Literal interface {
	boolVar() *BoolVar
	negated() bool
}

type BoolVar struct {
	index int
	name  string
}

func (v *BoolVar) Name() string { return v.name }

func (v *BoolVar) boolVar() *BoolVar { return v }
func (v *BoolVar) negated() bool     { return false }

// Not 返回该变量的否定
func (v *BoolVar) Not() Literal { return notLit{v} }

type notLit struct {
	v *BoolVar
}

func (n notLit) boolVar() *BoolVar { return n.v }
func (n notLit) negated() bool     { return true }

type IntVar struct {
	index int
	lo    int64
	hi    int64
	name  string
}

func (v *IntVar) Name() string { return v.name }

type boolTerm struct {
	v     *BoolVar
	coeff int64
}

type intTerm struct {
	v     *IntVar
	coeff int64
}

// LinearExpr 布尔项、整数项与常数项构成的线性表达式
type LinearExpr struct {
	boolTerms []boolTerm
	intTerms  []intTerm
	constant  int64
}

func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// Sum 构建若干布尔变量的和
func Sum(vars ...*BoolVar) *LinearExpr {
	e := NewLinearExpr()
	for _, v := range vars {
		e.AddTerm(v, 1)
	}
	return e
}

func (e *LinearExpr) AddTerm(v *BoolVar, coeff int64) *LinearExpr {
	e.boolTerms = append(e.boolTerms, boolTerm{v: v, coeff: coeff})
	return e
}

func (e *LinearExpr) AddIntTerm(v *IntVar, coeff int64) *LinearExpr {
	e.intTerms = append(e.intTerms, intTerm{v: v, coeff: coeff})
	return e
}

func (e *LinearExpr) AddConstant(c int64) *LinearExpr {
	e.constant += c
	return e
}

// AddExpr 将另一个表达式按系数累加进来
func (e *LinearExpr) AddExpr(o *LinearExpr, coeff int64) *LinearExpr {
	for _, t := range o.boolTerms {
		e.boolTerms = append(e.boolTerms, boolTerm{v: t.v, coeff: t.coeff * coeff})
	}
	for _, t := range o.intTerms {
		e.intTerms = append(e.intTerms, intTerm{v: t.v, coeff: t.coeff * coeff})
	}
	e.constant += o.constant * coeff
	return e
}

// linearConstraint 表示 lo <= expr <= hi
type linearConstraint struct {
	expr *LinearExpr
	lo   int64
	hi   int64
}

// enforcedConstraint 仅在所有 enforcement 字面量为真时生效的 AND/OR 约束
type enforcedConstraint struct {
	isAnd        bool
	literals     []Literal
	enforcements []Literal
}

// EnforceableConstraint 支持 OnlyEnforceIf 的约束句柄
type EnforceableConstraint struct {
	c *enforcedConstraint
}

// OnlyEnforceIf 限定约束仅在给定字面量全为真时生效
func (ec EnforceableConstraint) OnlyEnforceIf(lits ...Literal) EnforceableConstraint {
	ec.c.enforcements = append(ec.c.enforcements, lits...)
	return ec
}

// extremumConstraint 表示 target == min/max(exprs)
type extremumConstraint struct {
	isMin  bool
	target *IntVar
	exprs  []*LinearExpr
}

type Model struct {
	bools      []*BoolVar
	ints       []*IntVar
	linears    []linearConstraint
	atMostOnes [][]Literal
	enforced   []*enforcedConstraint
	extremums  []extremumConstraint
	objective  *LinearExpr
	maximize   bool
}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) NewBoolVar(name string) *BoolVar {
	v := &BoolVar{index: len(m.bools), name: name}
	m.bools = append(m.bools, v)
	return v
}

func (m *Model) NewIntVar(lo int64, hi int64, name string) *IntVar {
	v := &IntVar{index: len(m.ints), lo: lo, hi: hi, name: name}
	m.ints = append(m.ints, v)
	return v
}

func (m *Model) AddLessOrEqual(expr *LinearExpr, bound int64) {
	m.linears = append(m.linears, linearConstraint{expr: expr, lo: math.MinInt64, hi: bound})
}

func (m *Model) AddGreaterOrEqual(expr *LinearExpr, bound int64) {
	m.linears = append(m.linears, linearConstraint{expr: expr, lo: bound, hi: math.MaxInt64})
}

func (m *Model) AddEquality(expr *LinearExpr, bound int64) {
	m.linears = append(m.linears, linearConstraint{expr: expr, lo: bound, hi: bound})
}

// AddAtMostOne 给定字面量中至多一个为真
func (m *Model) AddAtMostOne(literals ...Literal) {
	lits := make([]Literal, len(literals))
	copy(lits, literals)
	m.atMostOnes = append(m.atMostOnes, lits)
}

// AddBoolAnd 所有字面量为真（可用 OnlyEnforceIf 具现化）
func (m *Model) AddBoolAnd(literals ...Literal) EnforceableConstraint {
	c := &enforcedConstraint{isAnd: true, literals: append([]Literal(nil), literals...)}
	m.enforced = append(m.enforced, c)
	return EnforceableConstraint{c: c}
}

// AddBoolOr 至少一个字面量为真（可用 OnlyEnforceIf 具现化）
func (m *Model) AddBoolOr(literals ...Literal) EnforceableConstraint {
	c := &enforcedConstraint{isAnd: false, literals: append([]Literal(nil), literals...)}
	m.enforced = append(m.enforced, c)
	return EnforceableConstraint{c: c}
}

func (m *Model) AddMinEquality(target *IntVar, exprs []*LinearExpr) {
	m.extremums = append(m.extremums, extremumConstraint{isMin: true, target: target, exprs: exprs})
}

func (m *Model) AddMaxEquality(target *IntVar, exprs []*LinearExpr) {
	m.extremums = append(m.extremums, extremumConstraint{isMin: false, target: target, exprs: exprs})
}

// Maximize 设置待最大化的目标表达式
func (m *Model) Maximize(expr *LinearExpr) {
	m.objective = expr
	m.maximize = true
}
