package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/careerloop/internal/domain/application"
	"github.com/geocoder89/careerloop/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationColumns = `id, user_id, job_title, company_name, job_url, status, notes, applied_at, created_at, updated_at`

// ApplicationsRepo scopes every statement by user_id, so rows owned by someone
// else are indistinguishable from rows that do not exist.
type ApplicationsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewApplicationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ApplicationsRepo {
	return &ApplicationsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *ApplicationsRepo) Create(ctx context.Context, userID string, req application.CreateRequest) (application.Application, error) {
	a := application.NewFromCreateRequest(userID, req)

	err := r.prom.ObserveDB("applications.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO job_applications (`+applicationColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			a.ID, a.UserID, a.JobTitle, a.CompanyName, a.JobURL, string(a.Status), a.Notes, a.AppliedAt, a.CreatedAt, a.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return application.Application{}, err
	}

	return a, nil
}

func (r *ApplicationsRepo) List(ctx context.Context, userID string, page application.Page) ([]application.Application, error) {
	output := make([]application.Application, 0, page.Limit)

	err := r.prom.ObserveDB("applications.list", func() error {
		// stable ordering for offset paging
		rows, err := r.pool.Query(ctx,
			`SELECT `+applicationColumns+`
			FROM job_applications
			WHERE user_id = $1
			ORDER BY created_at ASC, id ASC
			LIMIT $2 OFFSET $3`,
			userID, page.Limit, page.Skip,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var a application.Application
			if err := scanApplication(rows, &a); err != nil {
				return err
			}
			output = append(output, a)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *ApplicationsRepo) GetByID(ctx context.Context, userID, id string) (application.Application, error) {
	var a application.Application

	err := r.prom.ObserveDB("applications.get", func() error {
		return scanApplication(r.pool.QueryRow(ctx,
			`SELECT `+applicationColumns+` FROM job_applications WHERE id = $1 AND user_id = $2`,
			id, userID,
		), &a)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}

	return a, nil
}

func (r *ApplicationsRepo) Update(ctx context.Context, userID, id string, req application.UpdateRequest) (application.Application, error) {
	var sets []string
	args := []interface{}{id, userID}
	argsPosition := 3

	set := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argsPosition))
		args = append(args, value)
		argsPosition++
	}

	if req.JobTitle != nil {
		set("job_title", *req.JobTitle)
	}
	if req.CompanyName != nil {
		set("company_name", *req.CompanyName)
	}
	if req.Status != nil {
		set("status", string(*req.Status))
	}

	switch {
	case req.JobURL != nil:
		set("job_url", *req.JobURL)
	case req.ClearJobURL:
		sets = append(sets, "job_url = NULL")
	}

	switch {
	case req.Notes != nil:
		set("notes", *req.Notes)
	case req.ClearNotes:
		sets = append(sets, "notes = NULL")
	}

	switch {
	case req.AppliedAt != nil:
		set("applied_at", *req.AppliedAt)
	case req.ClearAppliedAt:
		sets = append(sets, "applied_at = NULL")
	}

	// strictly increasing even when two updates land in the same clock tick
	sets = append(sets, "updated_at = GREATEST(clock_timestamp(), updated_at + interval '1 microsecond')")

	query := `UPDATE job_applications SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND user_id = $2 RETURNING ` + applicationColumns

	var a application.Application

	err := r.prom.ObserveDB("applications.update", func() error {
		return scanApplication(r.pool.QueryRow(ctx, query, args...), &a)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}

	return a, nil
}

func (r *ApplicationsRepo) Delete(ctx context.Context, userID, id string) error {
	var affected int64

	err := r.prom.ObserveDB("applications.delete", func() error {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM job_applications WHERE id = $1 AND user_id = $2`,
			id, userID,
		)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return application.ErrNotFound
	}

	return nil
}

func scanApplication(row pgx.Row, a *application.Application) error {
	var status string

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.JobTitle,
		&a.CompanyName,
		&a.JobURL,
		&status,
		&a.Notes,
		&a.AppliedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return err
	}

	a.Status = application.Status(status)
	return nil
}
