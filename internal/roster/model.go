package roster

import (
	"errors"
	"fmt"

	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
)

// ErrInvalidInput 输入数据不合法，在任何约束注册之前返回
var ErrInvalidInput = errors.New("排班输入无效")

// Doctor 一次排班运算的医师输入记录，运算期间只读
type Doctor struct {
	Name       string
	Area       domain.Area
	PointQuota int32
	DaysOff    []int32 // 预休日（当月第几天）
}

// Instance 一次排班运算的完整输入：医师名单加当月日历
type Instance struct {
	doctors []Doctor
	cal     *domain.Calendar
	daysOff []map[int32]bool // 与 doctors 对齐
}

// NewInstance 校验输入并构建运算实例。所有校验在模型构建开始前完成，
// 任何一条不通过都返回包装了 ErrInvalidInput 的错误。
func NewInstance(doctors []Doctor, cal *domain.Calendar) (*Instance, error) {
	if cal == nil {
		return nil, fmt.Errorf("%w: 缺少日历", ErrInvalidInput)
	}
	if len(doctors) == 0 {
		return nil, fmt.Errorf("%w: 医师名单为空", ErrInvalidInput)
	}

	inst := &Instance{
		doctors: doctors,
		cal:     cal,
		daysOff: make([]map[int32]bool, len(doctors)),
	}

	seen := make(map[string]bool)
	for i, doc := range doctors {
		if doc.Name == "" {
			return nil, fmt.Errorf("%w: 第 %d 位医师没有姓名", ErrInvalidInput, i+1)
		}
		if seen[doc.Name] {
			return nil, fmt.Errorf("%w: 医师姓名 %s 重复", ErrInvalidInput, doc.Name)
		}
		seen[doc.Name] = true

		if _, err := domain.ParseArea(string(doc.Area)); err != nil {
			return nil, fmt.Errorf("%w: 医师 %s 的区域 %q 无效", ErrInvalidInput, doc.Name, doc.Area)
		}
		if doc.PointQuota <= 0 {
			return nil, fmt.Errorf("%w: 医师 %s 的点数上限必须为正数", ErrInvalidInput, doc.Name)
		}

		inst.daysOff[i] = make(map[int32]bool, len(doc.DaysOff))
		for _, day := range doc.DaysOff {
			if day < 1 || day > cal.NumDays {
				return nil, fmt.Errorf("%w: 医师 %s 的预休日 %d 不在当月范围内", ErrInvalidInput, doc.Name, day)
			}
			inst.daysOff[i][day] = true
		}
	}

	return inst, nil
}

func (inst *Instance) Calendar() *domain.Calendar { return inst.cal }
func (inst *Instance) Doctors() []Doctor          { return inst.doctors }
