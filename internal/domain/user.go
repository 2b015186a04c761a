package domain

import (
	"time"
)

type Role string

const (
	RoleDoctor Role = "医师"
	RoleChief  Role = "总医师"
)

// User 医师账户，排班相关属性（区域、点数上限）直接挂在账户上
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Area         Area      `json:"area"`
	PointQuota   int32     `json:"pointQuota"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
