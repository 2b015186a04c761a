package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
	"github.com/tmuh-dev/duty-roster/backend/internal/utils"
)

// GetMonth 返回某个月份的日历信息，供前端渲染预休日选择界面
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	cal := r.Context().Value(CalendarCtx).(*domain.Calendar)
	h.successResponse(w, r, "获取月份信息成功", cal)
}

func (h *Handler) SubmitMyDaysOff(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	cal := r.Context().Value(CalendarCtx).(*domain.Calendar)

	var req struct {
		DaysOff []int32 `json:"daysOff" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidateDaysOff(req.DaysOff, cal); err != nil {
		h.badRequest(w, r, err)
		return
	}

	submission := &domain.DutySubmission{
		MonthKey:  cal.MonthKey(),
		UserID:    myInfo.ID,
		DaysOff:   req.DaysOff,
		Submitted: true,
	}

	if err := h.repository.UpsertDutySubmission(submission); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "提交预休日成功", submission)
}

func (h *Handler) GetMyDaysOff(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	cal := r.Context().Value(CalendarCtx).(*domain.Calendar)

	submission, err := h.repository.GetDutySubmissionByUserIDAndMonthKey(myInfo.ID, cal.MonthKey())
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.successResponse(w, r, "本月还没有提交预休日", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取预休日成功", submission)
}

func (h *Handler) GetMonthSubmissions(w http.ResponseWriter, r *http.Request) {
	cal := r.Context().Value(CalendarCtx).(*domain.Calendar)

	submissions, err := h.repository.GetAllDutySubmissionsByMonthKey(cal.MonthKey())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取本月提交情况成功", submissions)
}
