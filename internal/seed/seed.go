package seed

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
	"github.com/tmuh-dev/duty-roster/backend/internal/repository"
	"github.com/tmuh-dev/duty-roster/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// templateDoctor 真实排班使用的医师基本资料
type templateDoctor struct {
	Name    string
	Area    domain.Area
	Quota   int32
	DaysOff []int32 // 默认预休日，按月份天数过滤后生效
}

var doctorTemplate = []templateDoctor{
	{"如", domain.AreaA, 8, []int32{26, 27}},
	{"秀", domain.AreaA, 8, []int32{1, 2, 5, 6}},
	{"橋", domain.AreaA, 6, []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 19, 20}},
	{"君", domain.AreaA, 6, []int32{4}},
	{"翔", domain.AreaA, 6, []int32{1, 3, 4}},
	{"航", domain.AreaA, 8, []int32{1, 14, 15, 16, 17, 18, 19, 20}},
	{"淇", domain.AreaB, 8, []int32{1, 2, 25, 28}},
	{"慈", domain.AreaB, 8, []int32{3, 4}},
	{"恩", domain.AreaB, 8, nil},
	{"屹", domain.AreaB, 8, []int32{4, 5}},
	{"軒", domain.AreaB, 6, []int32{2, 3, 5}},
	{"佑", domain.AreaC, 8, nil},
	{"翰", domain.AreaC, 6, []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 13, 27}},
	{"潔", domain.AreaC, 5, []int32{16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30}},
	{"諺", domain.AreaC, 5, []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 26}},
	{"宣", domain.AreaC, 8, []int32{26, 27}},
	{"韶", domain.AreaC, 8, []int32{2, 3, 4, 5, 6, 7, 8}},
	{"然", domain.AreaI, 8, []int32{1, 2, 3, 4, 5, 6}},
	{"偉", domain.AreaI, 8, []int32{1, 2, 4, 5}},
	{"煒", domain.AreaI, 7, []int32{21, 22, 23, 24, 25, 26, 27, 28, 29, 30}},
}

// SeedTemplateDoctors 插入真实的二十位医师及其全年的默认预休日提交。
// 医师账户已存在时跳过创建，只补提交记录。
func SeedTemplateDoctors(r *repository.Repository, password string, emailDomain string, year int) {
	for _, doc := range doctorTemplate {
		username := utils.GenerateUsernameFromChineseName(doc.Name)

		user, err := r.GetUserByUsername(username)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				slog.Error("获取医师失败", "name", doc.Name, "error", err)
				continue
			}

			passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				slog.Error("生成密码哈希失败", "error", err)
				return
			}

			user = &domain.User{
				Username:     username,
				PasswordHash: string(passwordHash),
				FullName:     doc.Name,
				Email:        username + "@" + emailDomain,
				Role:         domain.RoleDoctor,
				Area:         doc.Area,
				PointQuota:   doc.Quota,
			}

			if err := r.CreateUser(user); err != nil {
				slog.Error("插入医师失败", "name", doc.Name, "error", err)
				continue
			}
		}

		// 按模板为全年每个月写入默认提交，submitted 为 false 表示医师还没有确认
		for month := 1; month <= 12; month++ {
			cal, err := domain.NewCalendar(year, month, nil)
			if err != nil {
				slog.Error("构建日历失败", "year", year, "month", month, "error", err)
				return
			}

			daysOff := make([]int32, 0, len(doc.DaysOff))
			for _, day := range doc.DaysOff {
				if day <= cal.NumDays {
					daysOff = append(daysOff, day)
				}
			}

			submission := &domain.DutySubmission{
				MonthKey:  cal.MonthKey(),
				UserID:    user.ID,
				DaysOff:   daysOff,
				Submitted: false,
			}

			if err := r.UpsertDutySubmission(submission); err != nil {
				slog.Error("插入预休日提交失败", "name", doc.Name, "monthKey", cal.MonthKey(), "error", err)
				continue
			}
		}
	}

	slog.Info("插入真实医师数据完成", "count", len(doctorTemplate))
}
