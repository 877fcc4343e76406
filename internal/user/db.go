package user

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/supplychain-resilience/scr/internal/resource"
	"github.com/supplychain-resilience/scr/internal/sql"
)

type (
	// store persists departments and users.
	store interface {
		createDepartment(ctx context.Context, dept *Department) error
		getDepartment(ctx context.Context, id resource.ID) (*Department, error)
		getDepartmentByName(ctx context.Context, name string) (*Department, error)
		listDepartments(ctx context.Context) ([]*Department, error)
		createUser(ctx context.Context, user *User) error
		getUser(ctx context.Context, username string) (*User, error)
	}

	// pgdb is the user store on postgres
	pgdb struct {
		*sql.DB
	}
)

func (db *pgdb) createDepartment(ctx context.Context, dept *Department) error {
	_, err := db.Exec(ctx, `
INSERT INTO departments (
    department_id,
    name,
    email_domain,
    created_at
) VALUES (
    @department_id,
    @name,
    @email_domain,
    @created_at
)`, pgx.NamedArgs{
		"department_id": dept.ID,
		"name":          dept.Name,
		"email_domain":  dept.EmailDomain,
		"created_at":    dept.CreatedAt,
	})
	return err
}

func (db *pgdb) getDepartment(ctx context.Context, id resource.ID) (*Department, error) {
	rows := db.Query(ctx, `
SELECT department_id, name, email_domain, created_at
FROM departments
WHERE department_id = $1
`, id)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Department])
}

func (db *pgdb) getDepartmentByName(ctx context.Context, name string) (*Department, error) {
	rows := db.Query(ctx, `
SELECT department_id, name, email_domain, created_at
FROM departments
WHERE name = $1
`, name)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Department])
}

func (db *pgdb) listDepartments(ctx context.Context) ([]*Department, error) {
	rows := db.Query(ctx, `
SELECT department_id, name, email_domain, created_at
FROM departments
ORDER BY name
`)
	return sql.CollectRows(rows, pgx.RowToAddrOfStructByName[Department])
}

func (db *pgdb) createUser(ctx context.Context, user *User) error {
	_, err := db.Exec(ctx, `
INSERT INTO users (
    user_id,
    username,
    email,
    department_id,
    created_at
) VALUES (
    @user_id,
    @username,
    @email,
    @department_id,
    @created_at
)`, pgx.NamedArgs{
		"user_id":       user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"department_id": user.DepartmentID,
		"created_at":    user.CreatedAt,
	})
	return err
}

func (db *pgdb) getUser(ctx context.Context, username string) (*User, error) {
	rows := db.Query(ctx, `
SELECT user_id, username, email, department_id, created_at
FROM users
WHERE username = $1
`, username)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[User])
}
