package holiday

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaiwanSourceFixedHolidays(t *testing.T) {
	src := NewTaiwanSource()

	assert.Equal(t, []int32{10}, src.Holidays(2030, 10))
	assert.Empty(t, src.Holidays(2030, 3))
}

func TestTaiwanSourceLunarHolidays(t *testing.T) {
	src := NewTaiwanSource()

	// 2025 年 1 月：元旦加春节连假
	assert.Equal(t, []int32{1, 27, 28, 29, 30, 31}, src.Holidays(2025, 1))
	// 2026 年 4 月：儿童节加清明调整连假
	assert.Equal(t, []int32{4, 3, 5, 6}, src.Holidays(2026, 4))
	// 表中没有的年份只有固定日期假日
	assert.Equal(t, []int32{1}, src.Holidays(2050, 1))
}

func TestStaticSource(t *testing.T) {
	src := StaticSource{2026: {6: {19}}}

	assert.Equal(t, []int32{19}, src.Holidays(2026, 6))
	assert.Empty(t, src.Holidays(2026, 7))
}
