package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
	"github.com/tmuh-dev/duty-roster/backend/internal/roster"
)

func (h *Handler) GetRosterResult(w http.ResponseWriter, r *http.Request) {
	cal := r.Context().Value(CalendarCtx).(*domain.Calendar)

	result, err := h.repository.GetRosterResultByMonthKey(cal.MonthKey())
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "本月还没有排班结果")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取排班结果成功", result)
}

// GenerateRoster 运行排班求解，以 SSE 流返回每个更优解的进度，
// 最后以 DONE 事件返回完整结果并持久化
func (h *Handler) GenerateRoster(w http.ResponseWriter, r *http.Request) {
	cal := r.Context().Value(CalendarCtx).(*domain.Calendar)

	// 排班求解占用大量 CPU，用信号量限制并发数量
	select {
	case h.rosterSem <- struct{}{}:
		defer func() { <-h.rosterSem }()
	default:
		h.errorResponse(w, r, "正在进行的排班任务过多，请稍后再试")
		return
	}

	doctors, err := h.loadDoctors(cal)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	scheduler, err := roster.New(roster.Parameters{
		TimeLimit:    time.Duration(h.config.Scheduler.TimeLimit) * time.Second,
		EnumerateAll: true,
	}, doctors, cal)
	if err != nil {
		switch {
		case errors.Is(err, roster.ErrInvalidInput):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.internalServerError(w, r, errors.New("响应不支持流式传输"))
		return
	}

	// 服务器全局的 WriteTimeout 比求解时长短，会在求解结束前切断 SSE 流
	if err := h.extendWriteDeadline(w); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	progress := make(chan roster.ProgressEvent)
	type runOutcome struct {
		result *domain.RosterResult
		err    error
	}
	outcome := make(chan runOutcome, 1)

	go func() {
		result, err := scheduler.Run(r.Context(), progress)
		outcome <- runOutcome{result: result, err: err}
	}()

	for ev := range progress {
		h.writeSSE(w, flusher, "progress", ev)
	}

	out := <-outcome
	if out.err != nil {
		slog.Error("排班求解失败", "monthKey", cal.MonthKey(), "error", out.err)
		h.writeSSE(w, flusher, "ERROR", map[string]string{"message": "排班求解失败"})
		return
	}

	if out.result.Status == domain.RosterStatusOptimal || out.result.Status == domain.RosterStatusFeasible {
		if err := h.repository.InsertRosterResult(out.result); err != nil {
			slog.Error("保存排班结果失败", "monthKey", cal.MonthKey(), "error", err)
			h.writeSSE(w, flusher, "ERROR", map[string]string{"message": "保存排班结果失败"})
			return
		}
	}

	h.writeSSE(w, flusher, "DONE", out.result)
}

// loadDoctors 将在职医师和他们本月提交的预休日组装为求解输入。
// 没有提交的医师按没有预休日处理。
func (h *Handler) loadDoctors(cal *domain.Calendar) ([]roster.Doctor, error) {
	users, err := h.repository.GetActiveDoctors()
	if err != nil {
		return nil, err
	}

	submissions, err := h.repository.GetAllDutySubmissionsByMonthKey(cal.MonthKey())
	if err != nil {
		return nil, err
	}

	return rosterDoctors(users, submissions), nil
}

// rosterDoctors 组装求解输入。结果网格以姓名为键，姓名没有唯一性约束，
// 同名医师以用户名后缀区分（用户名在数据库中唯一）。
func rosterDoctors(users []*domain.User, submissions []*domain.DutySubmission) []roster.Doctor {
	daysOffByUserID := make(map[int64][]int32, len(submissions))
	for _, submission := range submissions {
		daysOffByUserID[submission.UserID] = submission.DaysOff
	}

	nameCount := make(map[string]int, len(users))
	for _, user := range users {
		nameCount[user.FullName]++
	}

	doctors := make([]roster.Doctor, 0, len(users))
	for _, user := range users {
		name := user.FullName
		if nameCount[user.FullName] > 1 {
			name = fmt.Sprintf("%s(%s)", user.FullName, user.Username)
		}
		doctors = append(doctors, roster.Doctor{
			Name:       name,
			Area:       user.Area,
			PointQuota: user.PointQuota,
			DaysOff:    daysOffByUserID[user.ID],
		})
	}

	return doctors
}

// extendWriteDeadline 把本次响应的写截止时间放宽到求解时长上限之后
func (h *Handler) extendWriteDeadline(w http.ResponseWriter) error {
	deadline := time.Now().Add(time.Duration(h.config.Scheduler.TimeLimit)*time.Second + time.Minute)
	return http.NewResponseController(w).SetWriteDeadline(deadline)
}

func (h *Handler) writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		slog.Error("序列化 SSE 事件失败", "event", event, "error", err)
		return
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		slog.Error("写入 SSE 事件失败", "event", event, "error", err)
		return
	}
	flusher.Flush()
}
