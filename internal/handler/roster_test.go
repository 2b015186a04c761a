package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmuh-dev/duty-roster/backend/internal/config"
	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
)

// SSE 进度流必须存活到求解结束，不受服务器全局 WriteTimeout 约束
func TestSSEStreamOutlivesServerWriteTimeout(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.TimeLimit = 3
	h := &Handler{config: cfg}

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)

		if err := h.extendWriteDeadline(w); err != nil {
			t.Errorf("放宽写截止时间失败: %v", err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)

		// 持续输出超过 WriteTimeout 时长的进度流
		for seq := 1; seq <= 20; seq++ {
			h.writeSSE(w, flusher, "progress", map[string]int{"seq": seq})
			time.Sleep(100 * time.Millisecond)
		}
		h.writeSSE(w, flusher, "DONE", nil)
	}))
	srv.Config.WriteTimeout = time.Second
	srv.Start()
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"seq":20`)
	assert.Contains(t, string(body), "event: DONE")
}

// 姓名没有唯一性约束，同名医师必须以用户名后缀区分，否则求解输入校验会拒绝整个月份
func TestRosterDoctorsDisambiguatesDuplicateNames(t *testing.T) {
	users := []*domain.User{
		{ID: 1, Username: "ru1", FullName: "如", Area: domain.AreaA, PointQuota: 8},
		{ID: 2, Username: "ru2", FullName: "如", Area: domain.AreaB, PointQuota: 6},
		{ID: 3, Username: "xiu3", FullName: "秀", Area: domain.AreaA, PointQuota: 8},
	}
	submissions := []*domain.DutySubmission{
		{UserID: 2, DaysOff: []int32{1, 2}},
	}

	doctors := rosterDoctors(users, submissions)
	require.Len(t, doctors, 3)

	assert.Equal(t, "如(ru1)", doctors[0].Name)
	assert.Equal(t, "如(ru2)", doctors[1].Name)
	assert.Equal(t, "秀", doctors[2].Name)
	assert.Equal(t, []int32{1, 2}, doctors[1].DaysOff)
	assert.Empty(t, doctors[0].DaysOff)
}
