package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

func GenerateRandomArea() domain.Area {
	return domain.Areas[rand.Intn(len(domain.Areas))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

// GenerateRandomDoctor 生成一位随机医师账户，点数上限在 6~10 之间
func GenerateRandomDoctor(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         domain.RoleDoctor,
		Area:         GenerateRandomArea(),
		PointQuota:   int32(rand.Intn(5) + 6),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

// 使用 Fisher-Yates 洗牌算法来生成一个随机子集
func GenerateRandomSubset(arr []int32) []int32 {
	arrCopy := append([]int32{}, arr...) // 复制数组，避免修改原数组

	for i := 0; i < len(arrCopy)-1; i++ {
		j := rand.Intn(len(arrCopy)-i) + i
		arrCopy[i], arrCopy[j] = arrCopy[j], arrCopy[i]
	}

	l := rand.Intn(len(arrCopy)) + 1
	return arrCopy[:l]
}

// GenerateRandomSubmission 为某位医师随机生成当月的预休日提交
func GenerateRandomSubmission(cal *domain.Calendar, user *domain.User) *domain.DutySubmission {
	days := make([]int32, cal.NumDays)
	for i := range days {
		days[i] = int32(i + 1)
	}

	return &domain.DutySubmission{
		MonthKey:  cal.MonthKey(),
		UserID:    user.ID,
		DaysOff:   GenerateRandomSubset(days),
		Submitted: true,
	}
}
