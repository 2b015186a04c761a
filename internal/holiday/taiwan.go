package holiday

// TaiwanSource 台湾地区的国定假日来源。
// 固定日期的假日按规则生成，农历假日（春节、端午、中秋等）无法由公式推出，
// 按年份查表，表中没有的年份只返回固定日期假日。
type TaiwanSource struct{}

func NewTaiwanSource() *TaiwanSource {
	return &TaiwanSource{}
}

// 固定日期假日：元旦、和平纪念日、儿童节、清明（近年固定为 4/4 或 4/5，按表处理）、
// 劳动节、国庆日
var fixedHolidays = map[int][]int32{
	1:  {1},
	2:  {28},
	4:  {4},
	5:  {1},
	10: {10},
}

// 农历及调整假日，按年份查表
var lunarHolidays = map[int]map[int][]int32{
	2024: {
		2: {8, 9, 10, 11, 12, 13, 14},
		4: {5},
		6: {10},
		9: {17},
	},
	2025: {
		1:  {27, 28, 29, 30, 31},
		2:  {1, 2},
		4:  {3},
		5:  {30, 31},
		10: {6},
	},
	2026: {
		2: {15, 16, 17, 18, 19, 20, 21},
		4: {3, 5, 6},
		6: {19},
		9: {25},
	},
}

func (s *TaiwanSource) Holidays(year int, month int) []int32 {
	days := make([]int32, 0)
	seen := make(map[int32]bool)

	for _, d := range fixedHolidays[month] {
		days = append(days, d)
		seen[d] = true
	}

	for _, d := range lunarHolidays[year][month] {
		if !seen[d] {
			days = append(days, d)
			seen[d] = true
		}
	}

	return days
}
