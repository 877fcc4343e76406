package supplychain

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/supplychain-resilience/scr/internal/resource"
	"github.com/supplychain-resilience/scr/internal/sql"
)

type (
	store interface {
		createSupplyChain(ctx context.Context, chain *SupplyChain) error
		getSupplyChain(ctx context.Context, slug string) (*SupplyChain, error)
		getSupplyChainByID(ctx context.Context, id resource.ID) (*SupplyChain, error)
		listSupplyChains(ctx context.Context, departmentID resource.ID) ([]*SupplyChain, error)
		setLastSubmissionDate(ctx context.Context, id resource.ID, date time.Time) error

		createStrategicAction(ctx context.Context, action *StrategicAction) error
		getStrategicAction(ctx context.Context, supplyChainID resource.ID, slug string) (*StrategicAction, error)
		getStrategicActionByID(ctx context.Context, id resource.ID) (*StrategicAction, error)
		listStrategicActions(ctx context.Context, supplyChainID resource.ID) ([]*StrategicAction, error)
		updateStrategicAction(ctx context.Context, id resource.ID, fn func(*StrategicAction)) (*StrategicAction, error)
	}

	// pgdb is the supply chain store on postgres
	pgdb struct {
		*sql.DB
	}
)

const supplyChainColumns = `supply_chain_id, slug, name, department_id, contact_name, contact_email,
    last_submission_date, is_archived, created_at`

const strategicActionColumns = `strategic_action_id, supply_chain_id, slug, name, description,
    target_completion_date, is_ongoing, is_archived, created_at`

func (db *pgdb) createSupplyChain(ctx context.Context, chain *SupplyChain) error {
	_, err := db.Exec(ctx, `
INSERT INTO supply_chains (
    supply_chain_id,
    slug,
    name,
    department_id,
    contact_name,
    contact_email,
    is_archived,
    created_at
) VALUES (
    @supply_chain_id,
    @slug,
    @name,
    @department_id,
    @contact_name,
    @contact_email,
    @is_archived,
    @created_at
)`, pgx.NamedArgs{
		"supply_chain_id": chain.ID,
		"slug":            chain.Slug,
		"name":            chain.Name,
		"department_id":   chain.DepartmentID,
		"contact_name":    chain.ContactName,
		"contact_email":   chain.ContactEmail,
		"is_archived":     chain.IsArchived,
		"created_at":      chain.CreatedAt,
	})
	return err
}

func (db *pgdb) getSupplyChain(ctx context.Context, slug string) (*SupplyChain, error) {
	rows := db.Query(ctx, `SELECT `+supplyChainColumns+`
FROM supply_chains
WHERE slug = $1
`, slug)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[SupplyChain])
}

func (db *pgdb) getSupplyChainByID(ctx context.Context, id resource.ID) (*SupplyChain, error) {
	rows := db.Query(ctx, `SELECT `+supplyChainColumns+`
FROM supply_chains
WHERE supply_chain_id = $1
`, id)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[SupplyChain])
}

func (db *pgdb) listSupplyChains(ctx context.Context, departmentID resource.ID) ([]*SupplyChain, error) {
	rows := db.Query(ctx, `SELECT `+supplyChainColumns+`
FROM supply_chains
WHERE department_id = $1
AND NOT is_archived
ORDER BY name
`, departmentID)
	return sql.CollectRows(rows, pgx.RowToAddrOfStructByName[SupplyChain])
}

func (db *pgdb) setLastSubmissionDate(ctx context.Context, id resource.ID, date time.Time) error {
	_, err := db.Exec(ctx, `
UPDATE supply_chains
SET last_submission_date = $1
WHERE supply_chain_id = $2
`, date, id)
	return err
}

func (db *pgdb) createStrategicAction(ctx context.Context, action *StrategicAction) error {
	_, err := db.Exec(ctx, `
INSERT INTO strategic_actions (
    strategic_action_id,
    supply_chain_id,
    slug,
    name,
    description,
    target_completion_date,
    is_ongoing,
    is_archived,
    created_at
) VALUES (
    @strategic_action_id,
    @supply_chain_id,
    @slug,
    @name,
    @description,
    @target_completion_date,
    @is_ongoing,
    @is_archived,
    @created_at
)`, pgx.NamedArgs{
		"strategic_action_id":    action.ID,
		"supply_chain_id":        action.SupplyChainID,
		"slug":                   action.Slug,
		"name":                   action.Name,
		"description":            action.Description,
		"target_completion_date": action.TargetCompletionDate,
		"is_ongoing":             action.IsOngoing,
		"is_archived":            action.IsArchived,
		"created_at":             action.CreatedAt,
	})
	return err
}

func (db *pgdb) getStrategicAction(ctx context.Context, supplyChainID resource.ID, slug string) (*StrategicAction, error) {
	rows := db.Query(ctx, `SELECT `+strategicActionColumns+`
FROM strategic_actions
WHERE supply_chain_id = $1
AND slug = $2
`, supplyChainID, slug)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[StrategicAction])
}

func (db *pgdb) getStrategicActionByID(ctx context.Context, id resource.ID) (*StrategicAction, error) {
	rows := db.Query(ctx, `SELECT `+strategicActionColumns+`
FROM strategic_actions
WHERE strategic_action_id = $1
`, id)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[StrategicAction])
}

func (db *pgdb) listStrategicActions(ctx context.Context, supplyChainID resource.ID) ([]*StrategicAction, error) {
	rows := db.Query(ctx, `SELECT `+strategicActionColumns+`
FROM strategic_actions
WHERE supply_chain_id = $1
AND NOT is_archived
ORDER BY name
`, supplyChainID)
	return sql.CollectRows(rows, pgx.RowToAddrOfStructByName[StrategicAction])
}

func (db *pgdb) updateStrategicAction(ctx context.Context, id resource.ID, fn func(*StrategicAction)) (*StrategicAction, error) {
	return sql.Updater(
		ctx,
		db.DB,
		func(ctx context.Context) (*StrategicAction, error) {
			rows := db.Query(ctx, `SELECT `+strategicActionColumns+`
FROM strategic_actions
WHERE strategic_action_id = $1
FOR UPDATE
`, id)
			return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[StrategicAction])
		},
		func(_ context.Context, action *StrategicAction) error {
			fn(action)
			return nil
		},
		func(ctx context.Context, action *StrategicAction) error {
			_, err := db.Exec(ctx, `
UPDATE strategic_actions
SET target_completion_date = @target_completion_date,
    is_ongoing = @is_ongoing
WHERE strategic_action_id = @strategic_action_id
`, pgx.NamedArgs{
				"target_completion_date": action.TargetCompletionDate,
				"is_ongoing":             action.IsOngoing,
				"strategic_action_id":    action.ID,
			})
			return err
		},
	)
}
