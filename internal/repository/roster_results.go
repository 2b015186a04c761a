package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
)

func (r *Repository) InsertRosterResult(result *domain.RosterResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	summaries, err := json.Marshal(result.Summaries)
	if err != nil {
		return err
	}
	objectiveRaw, err := json.Marshal(result.ObjectiveRaw)
	if err != nil {
		return err
	}
	objectiveScores, err := json.Marshal(result.ObjectiveScores)
	if err != nil {
		return err
	}

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先将该月之前的排班结果删除
	query := `DELETE FROM roster_results WHERE month_key = $1`
	if _, err := tx.ExecContext(ctx, query, result.MonthKey); err != nil {
		return err
	}

	query = `
		INSERT INTO roster_results (month_key, status, solution_count, points_mean, points_stddev, summaries, objective_raw, objective_scores)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	args := []any{result.MonthKey, result.Status, result.SolutionCount, result.PointsMean, result.PointsStdDev, summaries, objectiveRaw, objectiveScores}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&result.ID, &result.CreatedAt, &result.Version); err != nil {
		return err
	}

	for day, areas := range result.AreaGrid {
		for area, name := range areas {
			query := `
				INSERT INTO roster_assignments (roster_result_id, day_of_month, area, doctor_name)
				VALUES ($1, $2, $3, $4)
			`
			if _, err := tx.ExecContext(ctx, query, result.ID, day, area, name); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetRosterResultByMonthKey(monthKey string) (*domain.RosterResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, status, solution_count, points_mean, points_stddev, summaries, objective_raw, objective_scores, created_at, version
		FROM roster_results
		WHERE month_key = $1
	`

	result := &domain.RosterResult{
		MonthKey:   monthKey,
		AreaGrid:   make(map[int32]map[domain.Area]string),
		DoctorGrid: make(map[string]map[int32]domain.Area),
	}

	var summaries, objectiveRaw, objectiveScores []byte
	dst := []any{&result.ID, &result.Status, &result.SolutionCount, &result.PointsMean, &result.PointsStdDev, &summaries, &objectiveRaw, &objectiveScores, &result.CreatedAt, &result.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, monthKey).Scan(dst...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(summaries, &result.Summaries); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(objectiveRaw, &result.ObjectiveRaw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(objectiveScores, &result.ObjectiveScores); err != nil {
		return nil, err
	}

	query = `
		SELECT day_of_month, area, doctor_name
		FROM roster_assignments
		WHERE roster_result_id = $1
		ORDER BY day_of_month, area
	`

	rows, err := r.dbpool.QueryContext(ctx, query, result.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			day  int32
			area domain.Area
			name string
		)
		if err := rows.Scan(&day, &area, &name); err != nil {
			return nil, err
		}

		if _, exists := result.AreaGrid[day]; !exists {
			result.AreaGrid[day] = make(map[domain.Area]string)
		}
		result.AreaGrid[day][area] = name

		if _, exists := result.DoctorGrid[name]; !exists {
			result.DoctorGrid[name] = make(map[int32]domain.Area)
		}
		result.DoctorGrid[name][day] = area
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
