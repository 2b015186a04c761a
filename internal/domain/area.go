package domain

import "fmt"

type Area string

const (
	AreaA Area = "A"
	AreaB Area = "B"
	AreaC Area = "C"
	AreaI Area = "I" // I 区只允许本区医师值班
)

// Areas 按固定顺序排列的所有值班区域
var Areas = []Area{AreaA, AreaB, AreaC, AreaI}

func ParseArea(s string) (Area, error) {
	switch Area(s) {
	case AreaA, AreaB, AreaC, AreaI:
		return Area(s), nil
	default:
		return "", fmt.Errorf("未知的值班区域 %q", s)
	}
}

func (a Area) IsElite() bool {
	return a == AreaI
}
