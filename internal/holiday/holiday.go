// Package holiday 提供国定假日查询，排班核心通过 Source 接口消费
package holiday

// Source 返回某年某月的国定假日（当月第几天）
type Source interface {
	Holidays(year int, month int) []int32
}

// StaticSource 直接由固定映射构成的假日来源，主要用于测试
type StaticSource map[int]map[int][]int32

func (s StaticSource) Holidays(year int, month int) []int32 {
	return s[year][month]
}
