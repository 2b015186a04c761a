package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
)

func (r *Repository) UpsertDutySubmission(submission *domain.DutySubmission) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先把原先的记录删除再插入
	query := `DELETE FROM duty_submissions WHERE user_id = $1 AND month_key = $2`
	if _, err := tx.ExecContext(ctx, query, submission.UserID, submission.MonthKey); err != nil {
		return err
	}

	query = `
		INSERT INTO duty_submissions (user_id, month_key, submitted)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, submission.UserID, submission.MonthKey, submission.Submitted).Scan(&submission.ID, &submission.CreatedAt, &submission.Version); err != nil {
		return err
	}

	for _, day := range submission.DaysOff {
		query := `
			INSERT INTO duty_submission_days (duty_submission_id, day_of_month)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, submission.ID, day); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetDutySubmissionByUserIDAndMonthKey(userID int64, monthKey string) (*domain.DutySubmission, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, submitted, created_at, version
		FROM duty_submissions
		WHERE user_id = $1 AND month_key = $2
	`

	submission := &domain.DutySubmission{
		UserID:   userID,
		MonthKey: monthKey,
		DaysOff:  make([]int32, 0),
	}

	if err := r.dbpool.QueryRowContext(ctx, query, userID, monthKey).Scan(&submission.ID, &submission.Submitted, &submission.CreatedAt, &submission.Version); err != nil {
		return nil, err
	}

	query = `
		SELECT day_of_month
		FROM duty_submission_days
		WHERE duty_submission_id = $1
		ORDER BY day_of_month
	`

	rows, err := r.dbpool.QueryContext(ctx, query, submission.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var day int32
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		submission.DaysOff = append(submission.DaysOff, day)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return submission, nil
}

func (r *Repository) GetAllDutySubmissionsByMonthKey(monthKey string) ([]*domain.DutySubmission, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			ds.id,
			ds.user_id,
			ds.submitted,
			dsd.day_of_month,
			ds.created_at,
			ds.version
		FROM duty_submissions ds
		LEFT JOIN duty_submission_days dsd ON ds.id = dsd.duty_submission_id
		WHERE ds.month_key = $1
		ORDER BY ds.id, dsd.day_of_month
	`

	rows, err := r.dbpool.QueryContext(ctx, query, monthKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissionsMap := make(map[int64]*domain.DutySubmission)
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			submissionID int64
			userID       int64
			submitted    bool
			day          sql.NullInt32
			createdAt    time.Time
			version      int32
		}

		dst := []any{
			&row.submissionID,
			&row.userID,
			&row.submitted,
			&row.day,
			&row.createdAt,
			&row.version,
		}

		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if _, exists := submissionsMap[row.submissionID]; !exists {
			submissionsMap[row.submissionID] = &domain.DutySubmission{
				ID:        row.submissionID,
				MonthKey:  monthKey,
				UserID:    row.userID,
				Submitted: row.submitted,
				DaysOff:   make([]int32, 0),
				CreatedAt: row.createdAt,
				Version:   row.version,
			}
			order = append(order, row.submissionID)
		}

		if !row.day.Valid {
			// 该医师这个月没有预休日
			continue
		}

		submissionsMap[row.submissionID].DaysOff = append(submissionsMap[row.submissionID].DaysOff, row.day.Int32)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	submissions := make([]*domain.DutySubmission, 0, len(order))
	for _, id := range order {
		submissions = append(submissions, submissionsMap[id])
	}

	return submissions, nil
}
