package roster

import (
	"fmt"

	"github.com/tmuh-dev/duty-roster/backend/internal/cpsat"
	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
)

// objectiveTerm 七个软性目标之一。weight 是对外报告分数时使用的权重，
// 正数为奖励、负数为惩罚，绝对值大小决定优先级。
type objectiveTerm struct {
	key    string
	label  string
	weight float64
	expr   *cpsat.LinearExpr
}

// 权重跨越多个数量级，用权重间距近似字典序优先级：
// 总使用点数压倒一切，间隔奖励和两项惩罚在明显更低的量级上起作用，
// 在家区域奖励只作为最终平局裁决。
// 求解器目标必须是整数，最低权重为 0.1，因此注册目标时整体放大十倍。
const objectiveScale = 10

var termWeights = map[string]float64{
	"total_used_points":   10000,
	"linear_gaps_bonus":   10,
	"min_gap_count":       -500,
	"fairness_penalty":    -200,
	"total_shifts_filled": 100,
	"i_priority_bonus":    10,
	"home_area_bonus":     0.1,
}

// addObjective 构建七个目标项并注册加权总目标
func (b *builder) addObjective() {
	b.addWorkDayVars()

	inst := b.inst
	numDays := int(inst.cal.NumDays)

	// 目标一：总使用点数，尽可能把所有人的点数用满
	totalUsedPoints := cpsat.NewLinearExpr()
	for i := range inst.doctors {
		totalUsedPoints.AddExpr(b.points[i], 1)
	}

	// 目标二：线性间隔奖励。对每位医师的每一对「相邻值班日」（两天都有班且
	// 中间没有其他班），按间隔天数 d 给予 10*d 的奖励，鼓励班表拉开
	linearGaps := cpsat.NewLinearExpr()
	for i, doc := range inst.doctors {
		for d1 := 0; d1 < numDays; d1++ {
			for d2 := d1 + 1; d2 < numDays; d2++ {
				consecutive := b.model.NewBoolVar(fmt.Sprintf("consecutive_%s_%d_%d", doc.Name, d1+1, d2+1))

				andLits := []cpsat.Literal{b.isWork[i][d1], b.isWork[i][d2]}
				orLits := []cpsat.Literal{b.isWork[i][d1].Not(), b.isWork[i][d2].Not()}
				for k := d1 + 1; k < d2; k++ {
					andLits = append(andLits, b.isWork[i][k].Not())
					orLits = append(orLits, b.isWork[i][k])
				}
				b.model.AddBoolAnd(andLits...).OnlyEnforceIf(consecutive)
				b.model.AddBoolOr(orLits...).OnlyEnforceIf(consecutive.Not())

				linearGaps.AddTerm(consecutive, int64(10*(d2-d1)))
			}
		}
	}

	// 目标三：精准惩罚「班-休-休-班」，即恰好间隔三天的最紧凑合法排班
	minGapCount := cpsat.NewLinearExpr()
	for i, doc := range inst.doctors {
		for d := 0; d+3 < numDays; d++ {
			hasMinGap := b.model.NewBoolVar(fmt.Sprintf("has_min_gap_%s_%d", doc.Name, d+1))
			b.model.AddBoolAnd(b.isWork[i][d], b.isWork[i][d+3]).OnlyEnforceIf(hasMinGap)
			b.model.AddBoolOr(b.isWork[i][d].Not(), b.isWork[i][d+3].Not()).OnlyEnforceIf(hasMinGap.Not())
			minGapCount.AddTerm(hasMinGap, 1)
		}
	}

	// 目标四：同侪公平性。同区域同点数上限的医师互为同组，
	// 惩罚组内最终点数的最大差距，点数用不完时让减班尽可能公平
	fairness := cpsat.NewLinearExpr()
	maxPoints := int64(2 * numDays)
	groups := make(map[string][]int)
	groupOrder := make([]string, 0)
	for i, doc := range inst.doctors {
		key := fmt.Sprintf("%s_%d", doc.Area, doc.PointQuota)
		if _, exists := groups[key]; !exists {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], i)
	}
	for _, key := range groupOrder {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		exprs := make([]*cpsat.LinearExpr, 0, len(members))
		for _, i := range members {
			exprs = append(exprs, b.points[i])
		}
		lo := b.model.NewIntVar(0, maxPoints, fmt.Sprintf("min_points_%s", key))
		hi := b.model.NewIntVar(0, maxPoints, fmt.Sprintf("max_points_%s", key))
		b.model.AddMinEquality(lo, exprs)
		b.model.AddMaxEquality(hi, exprs)
		fairness.AddIntTerm(hi, 1)
		fairness.AddIntTerm(lo, -1)
	}

	// 目标五：总排班数量，补满剩余空班的低权重推动
	totalShifts := cpsat.NewLinearExpr()
	for i := range inst.doctors {
		for d := 0; d < numDays; d++ {
			for a := range domain.Areas {
				totalShifts.AddTerm(b.shifts[i][d][a], 1)
			}
		}
	}

	// 目标六：I 区优先奖励，让 I 区医师确实被排进 I 区
	eliteIndex := b.areaIndex(domain.AreaI)
	iPriority := cpsat.NewLinearExpr()
	for i, doc := range inst.doctors {
		if !doc.Area.IsElite() {
			continue
		}
		for d := 0; d < numDays; d++ {
			iPriority.AddTerm(b.shifts[i][d][eliteIndex], 1)
		}
	}

	// 目标七：在家区域奖励，权重最低，仅作平局裁决
	homeArea := cpsat.NewLinearExpr()
	for i, doc := range inst.doctors {
		a := b.areaIndex(doc.Area)
		for d := 0; d < numDays; d++ {
			homeArea.AddTerm(b.shifts[i][d][a], 1)
		}
	}

	b.terms = []objectiveTerm{
		{key: "total_used_points", label: "总使用点数", expr: totalUsedPoints},
		{key: "linear_gaps_bonus", label: "线性间隔奖励", expr: linearGaps},
		{key: "min_gap_count", label: "隔两天次数(惩罚)", expr: minGapCount},
		{key: "fairness_penalty", label: "同侪公平性(惩罚)", expr: fairness},
		{key: "total_shifts_filled", label: "总排班数量", expr: totalShifts},
		{key: "i_priority_bonus", label: "I 区优先奖励", expr: iPriority},
		{key: "home_area_bonus", label: "在家区域奖励", expr: homeArea},
	}

	objective := cpsat.NewLinearExpr()
	for i := range b.terms {
		b.terms[i].weight = termWeights[b.terms[i].key]
		objective.AddExpr(b.terms[i].expr, int64(b.terms[i].weight*objectiveScale))
	}
	b.model.Maximize(objective)
}
