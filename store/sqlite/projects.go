package sqlite

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/moneta/finance-engine/finance"
)

// =============================================================================
// PROJECTS
// =============================================================================

func (s *Store) CreateProject(ctx context.Context, project *finance.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (name, client_id, expected_amount, daily_rate, start_date, end_date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		project.Name, nullInt64(project.ClientID), project.ExpectedAmount.String(),
		project.DailyRate.String(), nullDate(project.StartDate), nullDate(project.EndDate),
		nullString(project.Notes))
	if err != nil {
		return storeErr(err)
	}
	project.ID, _ = result.LastInsertId()
	return nil
}

func (s *Store) UpdateProject(ctx context.Context, project *finance.Project) error {
	if project.ID == 0 {
		return finance.ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		UPDATE projects SET name = ?, client_id = ?, expected_amount = ?, daily_rate = ?,
		       start_date = ?, end_date = ?, notes = ?
		WHERE id = ?`,
		project.Name, nullInt64(project.ClientID), project.ExpectedAmount.String(),
		project.DailyRate.String(), nullDate(project.StartDate), nullDate(project.EndDate),
		nullString(project.Notes), project.ID)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrProjectNotFound)
}

func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrProjectNotFound)
}

func (s *Store) Project(ctx context.Context, id int64) (*finance.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, client_id, expected_amount, daily_rate, start_date, end_date, COALESCE(notes, '')
		FROM projects WHERE id = ?`, id)

	project, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return project, nil
}

func (s *Store) Projects(ctx context.Context) ([]finance.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, client_id, expected_amount, daily_rate, start_date, end_date, COALESCE(notes, '')
		FROM projects ORDER BY name`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var projects []finance.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

func scanProject(row rowScanner) (*finance.Project, error) {
	var (
		project  finance.Project
		clientID sql.NullInt64
		expected string
		rate     string
		start    sql.NullString
		end      sql.NullString
	)
	if err := row.Scan(&project.ID, &project.Name, &clientID, &expected, &rate,
		&start, &end, &project.Notes); err != nil {
		return nil, err
	}
	project.ClientID = int64Ptr(clientID)
	project.ExpectedAmount = finance.MustDecimal(expected)
	project.DailyRate = finance.MustDecimal(rate)
	project.StartDate = datePtr(start)
	project.EndDate = datePtr(end)
	return &project, nil
}

// ProjectTotals is the derived activity for one project: income
// received, expenses incurred, and hours logged against it.
type ProjectTotals struct {
	Received    decimal.Decimal
	Spent       decimal.Decimal
	HoursLogged decimal.Decimal
}

func (s *Store) ProjectTotals(ctx context.Context, projectID int64) (ProjectTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totals ProjectTotals
	rows, err := s.db.QueryContext(ctx, `
		SELECT amount, direction FROM transactions WHERE project_id = ?`, projectID)
	if err != nil {
		return totals, storeErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var amount, direction string
		if err := rows.Scan(&amount, &direction); err != nil {
			return totals, storeErr(err)
		}
		switch finance.Direction(direction) {
		case finance.Income:
			totals.Received = totals.Received.Add(finance.MustDecimal(amount))
		case finance.Expense:
			totals.Spent = totals.Spent.Add(finance.MustDecimal(amount))
		}
	}
	if err := rows.Err(); err != nil {
		return totals, storeErr(err)
	}

	logRows, err := s.db.QueryContext(ctx, `
		SELECT hours FROM time_logs WHERE project_id = ?`, projectID)
	if err != nil {
		return totals, storeErr(err)
	}
	defer logRows.Close()

	for logRows.Next() {
		var hours string
		if err := logRows.Scan(&hours); err != nil {
			return totals, storeErr(err)
		}
		totals.HoursLogged = totals.HoursLogged.Add(finance.MustDecimal(hours))
	}
	return totals, logRows.Err()
}

// =============================================================================
// TIME LOGS
// =============================================================================

func (s *Store) CreateTimeLog(ctx context.Context, log *finance.TimeLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO time_logs (project_id, log_date, hours, description)
		VALUES (?, ?, ?, ?)`,
		log.ProjectID, log.Date.String(), log.Hours.String(), nullString(log.Description))
	if err != nil {
		return storeErr(err)
	}
	log.ID, _ = result.LastInsertId()
	return nil
}

func (s *Store) DeleteTimeLog(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM time_logs WHERE id = ?", id)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrNotFound)
}

func (s *Store) TimeLogs(ctx context.Context, projectID int64) ([]finance.TimeLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, log_date, hours, COALESCE(description, '')
		FROM time_logs WHERE project_id = ? ORDER BY log_date DESC, id DESC`, projectID)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var logs []finance.TimeLog
	for rows.Next() {
		var (
			log   finance.TimeLog
			day   string
			hours string
		)
		if err := rows.Scan(&log.ID, &log.ProjectID, &day, &hours, &log.Description); err != nil {
			return nil, storeErr(err)
		}
		date, err := finance.ParseDate(day)
		if err != nil {
			return nil, storeErr(err)
		}
		log.Date = date
		log.Hours = finance.MustDecimal(hours)
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
