package patients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/dmitrijs2005/medvault/internal/dbx"
	"github.com/dmitrijs2005/medvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const patientColumns = `id, gender, age, hypertension, heart_disease, ever_married,
	 work_type, residence_type, avg_glucose_level, bmi, smoking_status, stroke,
	 email, phone, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	query :=
		`INSERT INTO patients (id, gender, age, hypertension, heart_disease, ever_married,
		     work_type, residence_type, avg_glucose_level, bmi, smoking_status, stroke,
		     email, phone)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		patient.ID, patient.Gender, patient.Age, patient.Hypertension, patient.HeartDisease,
		patient.EverMarried, patient.WorkType, patient.ResidenceType, patient.AvgGlucoseLevel,
		patient.BMI, patient.SmokingStatus, patient.Stroke, patient.Email, patient.Phone).
		Scan(&patient.CreatedAt, &patient.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return patient, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	patient := &models.Patient{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&patient.ID, &patient.Gender, &patient.Age, &patient.Hypertension,
		&patient.HeartDisease, &patient.EverMarried, &patient.WorkType,
		&patient.ResidenceType, &patient.AvgGlucoseLevel, &patient.BMI,
		&patient.SmokingStatus, &patient.Stroke, &patient.Email, &patient.Phone,
		&patient.CreatedAt, &patient.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return patient, nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Patient
	for rows.Next() {
		patient := &models.Patient{}
		err := rows.Scan(
			&patient.ID, &patient.Gender, &patient.Age, &patient.Hypertension,
			&patient.HeartDisease, &patient.EverMarried, &patient.WorkType,
			&patient.ResidenceType, &patient.AvgGlucoseLevel, &patient.BMI,
			&patient.SmokingStatus, &patient.Stroke, &patient.Email, &patient.Phone,
			&patient.CreatedAt, &patient.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, patient)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, patient *models.Patient) error {
	query :=
		`UPDATE patients SET gender = $2, age = $3, hypertension = $4, heart_disease = $5,
		     ever_married = $6, work_type = $7, residence_type = $8, avg_glucose_level = $9,
		     bmi = $10, smoking_status = $11, stroke = $12, email = $13, phone = $14,
		     updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		patient.ID, patient.Gender, patient.Age, patient.Hypertension, patient.HeartDisease,
		patient.EverMarried, patient.WorkType, patient.ResidenceType, patient.AvgGlucoseLevel,
		patient.BMI, patient.SmokingStatus, patient.Stroke, patient.Email, patient.Phone)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
