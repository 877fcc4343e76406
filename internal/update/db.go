package update

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/supplychain-resilience/scr/internal"
	"github.com/supplychain-resilience/scr/internal/resource"
	"github.com/supplychain-resilience/scr/internal/sql"
)

type (
	// store persists monthly updates and the answers given to each wizard
	// step.
	store interface {
		createUpdate(ctx context.Context, update *MonthlyUpdate) error
		getUpdate(ctx context.Context, id resource.ID) (*MonthlyUpdate, error)
		getUpdateForUpdate(ctx context.Context, id resource.ID) (*MonthlyUpdate, error)
		getUpdateByMonth(ctx context.Context, actionID resource.ID, monthSlug string) (*MonthlyUpdate, error)
		// getUpdateSince retrieves the latest update of an action created
		// after since.
		getUpdateSince(ctx context.Context, actionID resource.ID, since time.Time) (*MonthlyUpdate, error)
		listUpdatesSince(ctx context.Context, supplyChainID resource.ID, since time.Time) ([]*MonthlyUpdate, error)
		putUpdate(ctx context.Context, update *MonthlyUpdate) error
		countUpdatesByStatus(ctx context.Context, since time.Time) (map[Status]int, error)

		getAnswers(ctx context.Context, updateID resource.ID, step StepID) (Answers, error)
		saveAnswers(ctx context.Context, updateID resource.ID, step StepID, answers Answers) error
		deleteAnswers(ctx context.Context, updateID resource.ID, steps []StepID) error
		deleteAllAnswers(ctx context.Context, updateID resource.ID) error
		allAnswers(ctx context.Context, updateID resource.ID) (map[StepID]Answers, error)

		tx(ctx context.Context, fn func(context.Context) error) error
	}

	// pgdb is the monthly update store on postgres
	pgdb struct {
		*sql.DB
	}

	stepAnswers struct {
		Step    StepID  `db:"step"`
		Answers Answers `db:"answers"`
	}

	statusCount struct {
		Status Status `db:"status"`
		Count  int    `db:"count"`
	}
)

const updateColumns = `monthly_update_id, strategic_action_id, supply_chain_id, user_id, month_slug,
    status, content, changed_target_completion_date, changed_is_ongoing, delivery_status,
    reason_for_delays, reason_for_completion_date_change, created_at, submitted_at`

func (db *pgdb) createUpdate(ctx context.Context, update *MonthlyUpdate) error {
	_, err := db.Exec(ctx, `
INSERT INTO monthly_updates (
    monthly_update_id,
    strategic_action_id,
    supply_chain_id,
    user_id,
    month_slug,
    status,
    created_at
) VALUES (
    @monthly_update_id,
    @strategic_action_id,
    @supply_chain_id,
    @user_id,
    @month_slug,
    @status,
    @created_at
)`, pgx.NamedArgs{
		"monthly_update_id":   update.ID,
		"strategic_action_id": update.StrategicActionID,
		"supply_chain_id":     update.SupplyChainID,
		"user_id":             update.UserID,
		"month_slug":          update.MonthSlug,
		"status":              string(update.Status),
		"created_at":          update.CreatedAt,
	})
	return err
}

func (db *pgdb) getUpdate(ctx context.Context, id resource.ID) (*MonthlyUpdate, error) {
	rows := db.Query(ctx, `SELECT `+updateColumns+`
FROM monthly_updates
WHERE monthly_update_id = $1
`, id)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[MonthlyUpdate])
}

func (db *pgdb) getUpdateForUpdate(ctx context.Context, id resource.ID) (*MonthlyUpdate, error) {
	rows := db.Query(ctx, `SELECT `+updateColumns+`
FROM monthly_updates
WHERE monthly_update_id = $1
FOR UPDATE
`, id)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[MonthlyUpdate])
}

func (db *pgdb) getUpdateByMonth(ctx context.Context, actionID resource.ID, monthSlug string) (*MonthlyUpdate, error) {
	rows := db.Query(ctx, `SELECT `+updateColumns+`
FROM monthly_updates
WHERE strategic_action_id = $1
AND month_slug = $2
`, actionID, monthSlug)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[MonthlyUpdate])
}

func (db *pgdb) getUpdateSince(ctx context.Context, actionID resource.ID, since time.Time) (*MonthlyUpdate, error) {
	rows := db.Query(ctx, `SELECT `+updateColumns+`
FROM monthly_updates
WHERE strategic_action_id = $1
AND created_at > $2
ORDER BY created_at DESC
LIMIT 1
`, actionID, since)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[MonthlyUpdate])
}

func (db *pgdb) listUpdatesSince(ctx context.Context, supplyChainID resource.ID, since time.Time) ([]*MonthlyUpdate, error) {
	rows := db.Query(ctx, `SELECT `+updateColumns+`
FROM monthly_updates
WHERE supply_chain_id = $1
AND created_at > $2
ORDER BY created_at
`, supplyChainID, since)
	return sql.CollectRows(rows, pgx.RowToAddrOfStructByName[MonthlyUpdate])
}

func (db *pgdb) countUpdatesByStatus(ctx context.Context, since time.Time) (map[Status]int, error) {
	rows := db.Query(ctx, `
SELECT status, count(*) AS count
FROM monthly_updates
WHERE created_at > $1
GROUP BY status
`, since)
	counts, err := sql.CollectRows(rows, pgx.RowToStructByName[statusCount])
	if err != nil {
		return nil, err
	}
	m := make(map[Status]int, len(counts))
	for _, c := range counts {
		m[c.Status] = c.Count
	}
	return m, nil
}

func (db *pgdb) putUpdate(ctx context.Context, update *MonthlyUpdate) error {
	_, err := db.Exec(ctx, `
UPDATE monthly_updates
SET status = @status,
    user_id = @user_id,
    content = @content,
    changed_target_completion_date = @changed_target_completion_date,
    changed_is_ongoing = @changed_is_ongoing,
    delivery_status = @delivery_status,
    reason_for_delays = @reason_for_delays,
    reason_for_completion_date_change = @reason_for_completion_date_change,
    submitted_at = @submitted_at
WHERE monthly_update_id = @monthly_update_id
`, pgx.NamedArgs{
		"status":                            string(update.Status),
		"user_id":                           update.UserID,
		"content":                           update.Content,
		"changed_target_completion_date":    update.ChangedTargetCompletionDate,
		"changed_is_ongoing":                update.ChangedIsOngoing,
		"delivery_status":                   update.DeliveryStatus,
		"reason_for_delays":                 update.ReasonForDelays,
		"reason_for_completion_date_change": update.ReasonForCompletionDateChange,
		"submitted_at":                      update.SubmittedAt,
		"monthly_update_id":                 update.ID,
	})
	return err
}

func (db *pgdb) getAnswers(ctx context.Context, updateID resource.ID, step StepID) (Answers, error) {
	rows := db.Query(ctx, `
SELECT answers
FROM wizard_answers
WHERE monthly_update_id = $1
AND step = $2
`, updateID, string(step))
	answers, err := sql.CollectOneRow(rows, pgx.RowTo[Answers])
	if errors.Is(err, internal.ErrResourceNotFound) {
		return Answers{}, nil
	}
	return answers, err
}

func (db *pgdb) saveAnswers(ctx context.Context, updateID resource.ID, step StepID, answers Answers) error {
	_, err := db.Exec(ctx, `
INSERT INTO wizard_answers (
    monthly_update_id,
    step,
    answers,
    updated_at
) VALUES (
    @monthly_update_id,
    @step,
    @answers,
    @updated_at
)
ON CONFLICT (monthly_update_id, step) DO UPDATE
SET answers = EXCLUDED.answers,
    updated_at = EXCLUDED.updated_at
`, pgx.NamedArgs{
		"monthly_update_id": updateID,
		"step":              string(step),
		"answers":           map[string]string(answers),
		"updated_at":        time.Now().UTC(),
	})
	return err
}

func (db *pgdb) deleteAnswers(ctx context.Context, updateID resource.ID, steps []StepID) error {
	names := make([]string, len(steps))
	for i, step := range steps {
		names[i] = string(step)
	}
	return db.ExecAny(ctx, `
DELETE FROM wizard_answers
WHERE monthly_update_id = $1
AND step = ANY($2)
`, updateID, names)
}

func (db *pgdb) deleteAllAnswers(ctx context.Context, updateID resource.ID) error {
	return db.ExecAny(ctx, `
DELETE FROM wizard_answers
WHERE monthly_update_id = $1
`, updateID)
}

func (db *pgdb) allAnswers(ctx context.Context, updateID resource.ID) (map[StepID]Answers, error) {
	rows := db.Query(ctx, `
SELECT step, answers
FROM wizard_answers
WHERE monthly_update_id = $1
`, updateID)
	results, err := sql.CollectRows(rows, pgx.RowToStructByName[stepAnswers])
	if err != nil {
		return nil, err
	}
	all := make(map[StepID]Answers, len(results))
	for _, r := range results {
		all[r.Step] = r.Answers
	}
	return all, nil
}

func (db *pgdb) tx(ctx context.Context, fn func(context.Context) error) error {
	return db.Tx(ctx, fn)
}
