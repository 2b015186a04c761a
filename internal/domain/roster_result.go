package domain

import "time"

type RosterStatus string

const (
	RosterStatusOptimal    RosterStatus = "optimal"
	RosterStatusFeasible   RosterStatus = "feasible"
	RosterStatusInfeasible RosterStatus = "infeasible"
	RosterStatusUnknown    RosterStatus = "unknown" // 超时且未找到任何可行解
)

// DoctorSummary 单个医师的点数统计
type DoctorSummary struct {
	Name       string   `json:"name"`
	Area       Area     `json:"area"`
	PointQuota int32    `json:"pointQuota"`
	PointsUsed int32    `json:"pointsUsed"`
	PointsLeft int32    `json:"pointsLeft"`
	Duties     []string `json:"duties"` // 形如 "12(A)" 的值班日列表，按日期升序
}

// RosterResult 一次排班运算的最终结果
type RosterResult struct {
	ID              int64                   `json:"id"`
	MonthKey        string                  `json:"monthKey"`
	Status          RosterStatus            `json:"status"`
	AreaGrid        map[int32]map[Area]string `json:"areaGrid"`   // 日期 -> 区域 -> 医师姓名
	DoctorGrid      map[string]map[int32]Area `json:"doctorGrid"` // 医师姓名 -> 日期 -> 区域
	Summaries       []DoctorSummary         `json:"summaries"`
	ObjectiveRaw    map[string]int64        `json:"objectiveRaw"`
	ObjectiveScores map[string]float64      `json:"objectiveScores"`
	SolutionCount   int32                   `json:"solutionCount"`
	PointsMean      float64                 `json:"pointsMean"`
	PointsStdDev    float64                 `json:"pointsStdDev"`
	CreatedAt       time.Time               `json:"createdAt"`
	Version         int32                   `json:"-"`
}
