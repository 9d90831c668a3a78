package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hirelane/recruitment-service/internal/domain"
)

// ApplicationRepository persists intake form submissions.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	LatestForPerson(ctx context.Context, personID string) (*domain.Application, error)
	List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.Application, error)
	UpdatePipeline(ctx context.Context, id string, pipeline domain.ApplicationPipeline) error
}

type applicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository constructs repository.
func NewApplicationRepository(pool *pgxpool.Pool) ApplicationRepository {
	return &applicationRepository{pool: pool}
}

var applicationLinkTables = []struct {
	table string
	ids   func(*domain.Application) *[]string
}{
	{"application_languages", func(a *domain.Application) *[]string { return &a.LanguageIDs }},
	{"application_call_centers", func(a *domain.Application) *[]string { return &a.PreviousCallCenterIDs }},
	{"application_areas_of_expertise", func(a *domain.Application) *[]string { return &a.AreaOfExpertiseIDs }},
}

const applicationColumns = `id, person_id, national_id_record_id, first_names, last_names, primary_phone, secondary_phone,
        email, birth_date, lived_in_usa, national_id_type, national_id_number, gender, address_line_one,
        address_line_two, city_town_id, active_studies, career, institution, currently_employed, current_employer,
        previous_call_center_xp, status, pre_screen, hire_iq, tss, hm_interview, applied_at`

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var a domain.Application
	if err := row.Scan(
		&a.ID, &a.PersonID, &a.NationalIDRecordID, &a.FirstNames, &a.LastNames, &a.PrimaryPhone, &a.SecondaryPhone,
		&a.Email, &a.BirthDate, &a.LivedInUSA, &a.NationalIDType, &a.NationalIDNumber, &a.Gender, &a.AddressLineOne,
		&a.AddressLineTwo, &a.CityTownID, &a.ActiveStudies, &a.Career, &a.Institution, &a.CurrentlyEmployed, &a.CurrentEmployer,
		&a.PreviousCallCenterXP, &a.Status, &a.PreScreen, &a.HireIQ, &a.TSS, &a.HMInterview, &a.AppliedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	const query = `
        INSERT INTO applications (id, person_id, national_id_record_id, first_names, last_names, primary_phone,
            secondary_phone, email, birth_date, lived_in_usa, national_id_type, national_id_number, gender,
            address_line_one, address_line_two, city_town_id, active_studies, career, institution,
            currently_employed, current_employer, previous_call_center_xp, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
        RETURNING applied_at`

	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.Status == "" {
		app.Status = domain.ApplicationStatusNew
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query,
			app.ID, app.PersonID, app.NationalIDRecordID, app.FirstNames, app.LastNames, app.PrimaryPhone,
			app.SecondaryPhone, app.Email, app.BirthDate, app.LivedInUSA, app.NationalIDType, app.NationalIDNumber,
			app.Gender, app.AddressLineOne, app.AddressLineTwo, app.CityTownID, app.ActiveStudies, app.Career,
			app.Institution, app.CurrentlyEmployed, app.CurrentEmployer, app.PreviousCallCenterXP, app.Status,
		).Scan(&app.AppliedAt); err != nil {
			return err
		}
		for _, link := range applicationLinkTables {
			stmt := fmt.Sprintf(`INSERT INTO %s (application_id, lookup_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, link.table)
			for _, id := range *link.ids(app) {
				if _, err := tx.Exec(ctx, stmt, app.ID, id); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return mapErr("create application", err)
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id=$1`
	app, err := scanApplication(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapErr("get application", err)
	}
	if err := r.loadLinks(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (r *applicationRepository) LatestForPerson(ctx context.Context, personID string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE person_id=$1 ORDER BY applied_at DESC LIMIT 1`
	app, err := scanApplication(r.pool.QueryRow(ctx, query, personID))
	return app, mapErr("latest application", err)
}

func (r *applicationRepository) List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
        WHERE ($1 = '' OR person_id::text = $1) AND ($2 = '' OR status = $2)
        ORDER BY applied_at DESC
        LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, filter.PersonID, string(filter.Status), limitOrDefault(filter.Limit), filter.Offset)
	if err != nil {
		return nil, mapErr("list applications", err)
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, mapErr("scan application", err)
		}
		apps = append(apps, *app)
	}
	return apps, mapErr("list applications", rows.Err())
}

func (r *applicationRepository) UpdatePipeline(ctx context.Context, id string, p domain.ApplicationPipeline) error {
	const query = `
        UPDATE applications SET status=$1, pre_screen=$2, hire_iq=$3, tss=$4, hm_interview=$5
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query, p.Status, p.PreScreen, p.HireIQ, p.TSS, p.HMInterview, id)
	if err != nil {
		return mapErr("update application pipeline", err)
	}
	return requireAffected("update application pipeline", cmd)
}

func (r *applicationRepository) loadLinks(ctx context.Context, app *domain.Application) error {
	for _, link := range applicationLinkTables {
		rows, err := r.pool.Query(ctx,
			fmt.Sprintf(`SELECT lookup_id FROM %s WHERE application_id=$1 ORDER BY lookup_id`, link.table), app.ID)
		if err != nil {
			return mapErr("load "+link.table, err)
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return mapErr("load "+link.table, err)
		}
		*link.ids(app) = ids
	}
	return nil
}
