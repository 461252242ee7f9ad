package services

import (
	"context"
	"encoding/hex"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/dmitrijs2005/medvault/internal/cryptox"
	"github.com/dmitrijs2005/medvault/internal/server/models"
)

// memPatients is a map-backed patients repository for service tests. It
// stores rows as given, so tests can inspect exactly what the service
// persisted.
type memPatients struct {
	mu   sync.Mutex
	rows map[string]*models.Patient
}

func newMemPatients() *memPatients {
	return &memPatients{rows: make(map[string]*models.Patient)}
}

func (r *memPatients) Create(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[patient.ID]; ok {
		return nil, common.ErrorAlreadyExists
	}
	stored := *patient
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.rows[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *memPatients) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *p
	return &out, nil
}

func (r *memPatients) List(ctx context.Context, limit, offset int) ([]*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Patient, 0, len(r.rows))
	for _, p := range r.rows {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memPatients) Update(ctx context.Context, patient *models.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[patient.ID]; !ok {
		return common.ErrorNotFound
	}
	stored := *patient
	stored.UpdatedAt = time.Now()
	r.rows[stored.ID] = &stored
	return nil
}

func (r *memPatients) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.rows, id)
	return nil
}

func newTestPatientService(t *testing.T) (*PatientService, *memPatients) {
	t.Helper()

	key, err := hex.DecodeString(strings.Repeat("ab", 32))
	require.NoError(t, err)
	cipher, err := cryptox.NewFieldCipher("k1", key)
	require.NoError(t, err)

	m := newMemManager()
	repo := newMemPatients()
	m.patients = repo
	return NewPatientService(nil, m, cipher, discardLogger()), repo
}

func samplePatient() *models.Patient {
	return &models.Patient{
		Gender:          "Female",
		Age:             61,
		Hypertension:    0,
		HeartDisease:    1,
		EverMarried:     "Yes",
		WorkType:        "Self-employed",
		ResidenceType:   "Rural",
		AvgGlucoseLevel: 202.21,
		BMI:             27.3,
		SmokingStatus:   "never smoked",
		Stroke:          1,
		Email:           "patient@example.com",
		Phone:           "+371 20000000",
	}
}

func TestPatientCreate_SealsSensitiveFields(t *testing.T) {
	svc, repo := newTestPatientService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, samplePatient())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "patient@example.com", created.Email)
	assert.Equal(t, "+371 20000000", created.Phone)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, cryptox.IsEncrypted(stored.Email))
	assert.True(t, cryptox.IsEncrypted(stored.Phone))
	assert.NotContains(t, stored.Email, "patient@example.com")
	// Non-sensitive fields pass through untouched.
	assert.Equal(t, "Female", stored.Gender)
	assert.InDelta(t, 202.21, stored.AvgGlucoseLevel, 0.001)
}

func TestPatientGet_DecryptsSensitiveFields(t *testing.T) {
	svc, _ := newTestPatientService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, samplePatient())
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "patient@example.com", got.Email)
	assert.Equal(t, "+371 20000000", got.Phone)
}

func TestPatientGet_LegacyPlaintextPassesThrough(t *testing.T) {
	svc, repo := newTestPatientService(t)
	ctx := context.Background()

	// A row written before encryption was enabled.
	_, err := repo.Create(ctx, &models.Patient{ID: "legacy-1", Email: "plain@example.com"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "legacy-1")
	require.NoError(t, err)
	assert.Equal(t, "plain@example.com", got.Email)
}

func TestPatientGet_TamperedBlobFails(t *testing.T) {
	svc, repo := newTestPatientService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, samplePatient())
	require.NoError(t, err)

	repo.mu.Lock()
	stored := repo.rows[created.ID]
	blob := []byte(stored.Email)
	blob[len(blob)-1] ^= 0x01
	stored.Email = string(blob)
	repo.mu.Unlock()

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, common.ErrDecryption)
}

func TestPatientCreate_EmptySensitiveFieldsStayEmpty(t *testing.T) {
	svc, repo := newTestPatientService(t)
	ctx := context.Background()

	p := samplePatient()
	p.Email = ""
	p.Phone = ""
	created, err := svc.Create(ctx, p)
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Email)
	assert.Empty(t, stored.Phone)
}

func TestPatientList_DecryptsEachRecord(t *testing.T) {
	svc, _ := newTestPatientService(t)
	ctx := context.Background()

	first := samplePatient()
	second := samplePatient()
	second.Email = "second@example.com"
	_, err := svc.Create(ctx, first)
	require.NoError(t, err)
	_, err = svc.Create(ctx, second)
	require.NoError(t, err)

	list, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)

	emails := []string{list[0].Email, list[1].Email}
	assert.Contains(t, emails, "patient@example.com")
	assert.Contains(t, emails, "second@example.com")
}

func TestPatientUpdate_Reseals(t *testing.T) {
	svc, repo := newTestPatientService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, samplePatient())
	require.NoError(t, err)

	created.Email = "new@example.com"
	require.NoError(t, svc.Update(ctx, created))

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, cryptox.IsEncrypted(stored.Email))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)
}

func TestPatientUpdate_MissingID(t *testing.T) {
	svc, _ := newTestPatientService(t)
	err := svc.Update(context.Background(), &models.Patient{})
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
}

func TestPatientDelete(t *testing.T) {
	svc, _ := newTestPatientService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, samplePatient())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
