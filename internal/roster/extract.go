package roster

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/tmuh-dev/duty-roster/backend/internal/cpsat"
	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
)

// extract 从求解器最优解生成对外结果，多次调用产出相同内容
func (s *Scheduler) extract(solver *cpsat.Solver, status cpsat.Status) *domain.RosterResult {
	sol := solver.BestSolution()
	inst := s.inst
	numDays := int(inst.cal.NumDays)

	result := &domain.RosterResult{
		MonthKey:        inst.cal.MonthKey(),
		Status:          domain.RosterStatusFeasible,
		AreaGrid:        make(map[int32]map[domain.Area]string),
		DoctorGrid:      make(map[string]map[int32]domain.Area),
		Summaries:       make([]domain.DoctorSummary, 0, len(inst.doctors)),
		ObjectiveRaw:    make(map[string]int64),
		ObjectiveScores: make(map[string]float64),
		SolutionCount:   solver.SolutionCount(),
	}
	if status == cpsat.StatusOptimal {
		result.Status = domain.RosterStatusOptimal
	}

	for day := int32(1); day <= int32(numDays); day++ {
		result.AreaGrid[day] = make(map[domain.Area]string)
	}

	pointsUsed := make([]float64, 0, len(inst.doctors))
	for i, doc := range inst.doctors {
		grid := make(map[int32]domain.Area)
		duties := make([]string, 0)
		used := int32(0)
		for d := 0; d < numDays; d++ {
			for a, area := range domain.Areas {
				if !sol.BoolValue(s.b.shifts[i][d][a]) {
					continue
				}
				day := int32(d + 1)
				grid[day] = area
				result.AreaGrid[day][area] = doc.Name
				duties = append(duties, fmt.Sprintf("%d(%s)", day, area))
				used += inst.cal.PointsOfDay(day)
			}
		}
		result.DoctorGrid[doc.Name] = grid
		result.Summaries = append(result.Summaries, domain.DoctorSummary{
			Name:       doc.Name,
			Area:       doc.Area,
			PointQuota: doc.PointQuota,
			PointsUsed: used,
			PointsLeft: doc.PointQuota - used,
			Duties:     duties,
		})
		pointsUsed = append(pointsUsed, float64(used))
	}

	result.PointsMean = stat.Mean(pointsUsed, nil)
	if len(pointsUsed) > 1 {
		result.PointsStdDev = stat.StdDev(pointsUsed, nil)
	}

	for _, t := range s.b.terms {
		raw := sol.Value(t.expr)
		result.ObjectiveRaw[t.key] = raw
		result.ObjectiveScores[t.key] = float64(raw) * t.weight
	}

	return result
}
