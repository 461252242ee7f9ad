package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/dmitrijs2005/medvault/internal/cryptox"
	"github.com/dmitrijs2005/medvault/internal/logging"
	"github.com/dmitrijs2005/medvault/internal/server/models"
	"github.com/dmitrijs2005/medvault/internal/server/repositories/repomanager"
)

// PatientService owns patient records. Sensitive contact fields (email,
// phone) are sealed with the field cipher before they reach the repository
// and opened after retrieval; the repository only ever sees opaque blobs.
type PatientService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      *cryptox.FieldCipher
	logger      logging.Logger
}

func NewPatientService(db *sql.DB, m repomanager.RepositoryManager, cipher *cryptox.FieldCipher, logger logging.Logger) *PatientService {
	return &PatientService{
		db:          db,
		repomanager: m,
		cipher:      cipher,
		logger:      logger.With("module", "patient_service"),
	}
}

// Create stores a new patient record. The returned record carries the
// database-assigned timestamps with the contact fields still in plaintext.
func (s *PatientService) Create(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	if patient.ID == "" {
		patient.ID = uuid.NewString()
	}

	sealed := *patient
	if err := s.seal(&sealed); err != nil {
		return nil, err
	}

	created, err := s.repomanager.Patients(s.db).Create(ctx, &sealed)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		s.logger.Error(ctx, "creating patient", "error", err.Error())
		return nil, common.ErrorInternal
	}

	out := *created
	out.Email = patient.Email
	out.Phone = patient.Phone
	return &out, nil
}

// Get retrieves one patient record with the contact fields decrypted.
func (s *PatientService) Get(ctx context.Context, id string) (*models.Patient, error) {
	patient, err := s.repomanager.Patients(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "loading patient", "error", err.Error())
		return nil, common.ErrorInternal
	}

	if err := s.open(patient); err != nil {
		s.logger.Error(ctx, "decrypting patient fields", "patient_id", id, "error", err.Error())
		return nil, err
	}
	return patient, nil
}

// List returns a page of patient records, newest first. A record whose
// sealed fields cannot be opened fails the whole page rather than being
// returned corrupted.
func (s *PatientService) List(ctx context.Context, limit, offset int) ([]*models.Patient, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.repomanager.Patients(s.db).List(ctx, limit, offset)
	if err != nil {
		s.logger.Error(ctx, "listing patients", "error", err.Error())
		return nil, common.ErrorInternal
	}

	for _, patient := range list {
		if err := s.open(patient); err != nil {
			s.logger.Error(ctx, "decrypting patient fields", "patient_id", patient.ID, "error", err.Error())
			return nil, err
		}
	}
	return list, nil
}

// Update rewrites a patient record, resealing the contact fields.
func (s *PatientService) Update(ctx context.Context, patient *models.Patient) error {
	if patient.ID == "" {
		return fmt.Errorf("%w: patient id is required", common.ErrorInvalidInput)
	}

	sealed := *patient
	if err := s.seal(&sealed); err != nil {
		return err
	}

	err := s.repomanager.Patients(s.db).Update(ctx, &sealed)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		s.logger.Error(ctx, "updating patient", "error", err.Error())
		return common.ErrorInternal
	}
	return nil
}

// Delete removes a patient record.
func (s *PatientService) Delete(ctx context.Context, id string) error {
	err := s.repomanager.Patients(s.db).Delete(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		s.logger.Error(ctx, "deleting patient", "error", err.Error())
		return common.ErrorInternal
	}
	return nil
}

// seal encrypts the sensitive fields in place. Empty values stay empty.
func (s *PatientService) seal(patient *models.Patient) error {
	var err error
	if patient.Email != "" {
		if patient.Email, err = s.cipher.Encrypt(patient.Email); err != nil {
			return common.ErrorInternal
		}
	}
	if patient.Phone != "" {
		if patient.Phone, err = s.cipher.Encrypt(patient.Phone); err != nil {
			return common.ErrorInternal
		}
	}
	return nil
}

// open decrypts the sensitive fields in place. Values written before
// encryption was enabled are passed through unchanged.
func (s *PatientService) open(patient *models.Patient) error {
	var err error
	if cryptox.IsEncrypted(patient.Email) {
		if patient.Email, err = s.cipher.Decrypt(patient.Email); err != nil {
			return err
		}
	}
	if cryptox.IsEncrypted(patient.Phone) {
		if patient.Phone, err = s.cipher.Decrypt(patient.Phone); err != nil {
			return err
		}
	}
	return nil
}
