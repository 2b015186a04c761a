package roster

import (
	"fmt"

	"github.com/tmuh-dev/duty-roster/backend/internal/cpsat"
	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
)

// builder 将运算实例编码为求解器模型。
// 决策变量 shifts[i][d][a] 表示第 i 位医师在第 d+1 天于区域 a 值班。
type builder struct {
	inst  *Instance
	model *cpsat.Model

	shifts [][][]*cpsat.BoolVar
	isWork [][]*cpsat.BoolVar
	points []*cpsat.LinearExpr

	terms []objectiveTerm
}

func newBuilder(inst *Instance) *builder {
	b := &builder{
		inst:  inst,
		model: cpsat.NewModel(),
	}

	numDays := int(inst.cal.NumDays)
	b.shifts = make([][][]*cpsat.BoolVar, len(inst.doctors))
	for i, doc := range inst.doctors {
		b.shifts[i] = make([][]*cpsat.BoolVar, numDays)
		for d := 0; d < numDays; d++ {
			b.shifts[i][d] = make([]*cpsat.BoolVar, len(domain.Areas))
			for a, area := range domain.Areas {
				b.shifts[i][d][a] = b.model.NewBoolVar(fmt.Sprintf("shift_%s_%d_%s", doc.Name, d+1, area))
			}
		}
	}

	// 每位医师的总点数表达式，平日 1 点、双倍点数日 2 点
	b.points = make([]*cpsat.LinearExpr, len(inst.doctors))
	for i := range inst.doctors {
		expr := cpsat.NewLinearExpr()
		for d := 0; d < numDays; d++ {
			coeff := int64(inst.cal.PointsOfDay(int32(d + 1)))
			for a := range domain.Areas {
				expr.AddTerm(b.shifts[i][d][a], coeff)
			}
		}
		b.points[i] = expr
	}

	return b
}

// addHardConstraints 注册全部硬性规则，违反任何一条的排班不会被报告
func (b *builder) addHardConstraints() {
	inst := b.inst
	numDays := int(inst.cal.NumDays)

	// 一个班次（某天某区域）至多一位医师
	for d := 0; d < numDays; d++ {
		for a := range domain.Areas {
			lits := make([]cpsat.Literal, 0, len(inst.doctors))
			for i := range inst.doctors {
				lits = append(lits, b.shifts[i][d][a])
			}
			b.model.AddAtMostOne(lits...)
		}
	}

	// 一位医师一天至多一个班次
	for i := range inst.doctors {
		for d := 0; d < numDays; d++ {
			lits := make([]cpsat.Literal, 0, len(domain.Areas))
			for a := range domain.Areas {
				lits = append(lits, b.shifts[i][d][a])
			}
			b.model.AddAtMostOne(lits...)
		}
	}

	// I 区只允许本区医师值班
	eliteIndex := b.areaIndex(domain.AreaI)
	outsiders := cpsat.NewLinearExpr()
	for i, doc := range inst.doctors {
		if doc.Area.IsElite() {
			continue
		}
		for d := 0; d < numDays; d++ {
			outsiders.AddTerm(b.shifts[i][d][eliteIndex], 1)
		}
	}
	b.model.AddEquality(outsiders, 0)

	// 值班后必须休息两天：任意连续三天的滑动窗口内至多值班一次
	for i := range inst.doctors {
		for d := 0; d+2 < numDays; d++ {
			window := cpsat.NewLinearExpr()
			for k := d; k <= d+2; k++ {
				for a := range domain.Areas {
					window.AddTerm(b.shifts[i][k][a], 1)
				}
			}
			b.model.AddLessOrEqual(window, 1)
		}
	}

	// 预休日当天全部班次强制为空
	for i := range inst.doctors {
		for day := range inst.daysOff[i] {
			blocked := cpsat.NewLinearExpr()
			for a := range domain.Areas {
				blocked.AddTerm(b.shifts[i][day-1][a], 1)
			}
			b.model.AddEquality(blocked, 0)
		}
	}

	// 总点数不可超过上限
	for i, doc := range inst.doctors {
		b.model.AddLessOrEqual(b.points[i], int64(doc.PointQuota))
	}
}

// addWorkDayVars 建立辅助变量 isWork[i][d] ⇔ 第 i 位医师第 d+1 天有班
func (b *builder) addWorkDayVars() {
	numDays := int(b.inst.cal.NumDays)
	b.isWork = make([][]*cpsat.BoolVar, len(b.inst.doctors))
	for i, doc := range b.inst.doctors {
		b.isWork[i] = make([]*cpsat.BoolVar, numDays)
		for d := 0; d < numDays; d++ {
			w := b.model.NewBoolVar(fmt.Sprintf("is_work_day_%s_%d", doc.Name, d+1))
			expr := cpsat.NewLinearExpr()
			for a := range domain.Areas {
				expr.AddTerm(b.shifts[i][d][a], 1)
			}
			expr.AddTerm(w, -1)
			b.model.AddEquality(expr, 0)
			b.isWork[i][d] = w
		}
	}
}

func (b *builder) areaIndex(area domain.Area) int {
	for i, a := range domain.Areas {
		if a == area {
			return i
		}
	}
	return -1
}
