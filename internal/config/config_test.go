package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 环境变量非法时必须返回错误，不能返回部分填充的配置
func TestLoadConfigRejectsInvalidEnv(t *testing.T) {
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "不是数字")

	cfg, err := LoadConfig()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
