package vault

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/askarin/fieldvault/internal/export"
	"github.com/askarin/fieldvault/internal/gate"
	"github.com/askarin/fieldvault/internal/keychain"
	"github.com/askarin/fieldvault/internal/logger"
	"github.com/askarin/fieldvault/internal/session"
	"github.com/askarin/fieldvault/internal/store"
	"github.com/askarin/fieldvault/models"
)

const (
	testOwner  = "alice@example.com"
	testSecret = "CorrectHorse1!"
)

// memRecordRepository is an in-memory RecordRepository for vault tests.
type memRecordRepository struct {
	records map[string]models.Record
	order   []string

	// failUpdateFor makes Update fail for one record id, to exercise
	// best-effort batch paths.
	failUpdateFor string
}

func newMemRecordRepository() *memRecordRepository {
	return &memRecordRepository{records: make(map[string]models.Record)}
}

func (m *memRecordRepository) Create(_ context.Context, record models.Record) (models.Record, error) {
	if record.Title == "" || record.OwnerID == "" {
		return models.Record{}, store.ErrValidation
	}
	now := time.Now().UTC()
	record.ID = uuid.NewString()
	record.CreatedAt = now
	record.UpdatedAt = now
	m.records[record.ID] = record
	m.order = append(m.order, record.ID)
	return record, nil
}

func (m *memRecordRepository) List(_ context.Context, ownerID string) ([]models.Record, error) {
	results := make([]models.Record, 0, len(m.order))
	// Newest first.
	for i := len(m.order) - 1; i >= 0; i-- {
		record := m.records[m.order[i]]
		if record.OwnerID == ownerID {
			results = append(results, record)
		}
	}
	return results, nil
}

func (m *memRecordRepository) Get(_ context.Context, ownerID string, id string) (models.Record, error) {
	record, ok := m.records[id]
	if !ok || record.OwnerID != ownerID {
		return models.Record{}, store.ErrRecordNotFound
	}
	return record, nil
}

func (m *memRecordRepository) Update(_ context.Context, ownerID string, id string, record models.Record) (models.Record, error) {
	if id == m.failUpdateFor {
		return models.Record{}, store.ErrStoreUnavailable
	}
	existing, ok := m.records[id]
	if !ok || existing.OwnerID != ownerID {
		return models.Record{}, store.ErrRecordNotFound
	}
	existing.Title = record.Title
	existing.Username = record.Username
	existing.Secret = record.Secret
	existing.Locator = record.Locator
	existing.Notes = record.Notes
	existing.UpdatedAt = time.Now().UTC()
	m.records[id] = existing
	return existing, nil
}

func (m *memRecordRepository) Delete(_ context.Context, ownerID string, id string) error {
	record, ok := m.records[id]
	if !ok || record.OwnerID != ownerID {
		return store.ErrRecordNotFound
	}
	delete(m.records, id)
	for i, orderedID := range m.order {
		if orderedID == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// memVerifierRepository is an in-memory VerifierRepository for vault tests.
type memVerifierRepository struct {
	verifiers map[string]models.Verifier
}

func newMemVerifierRepository() *memVerifierRepository {
	return &memVerifierRepository{verifiers: make(map[string]models.Verifier)}
}

func (m *memVerifierRepository) Get(_ context.Context, ownerID string) (models.Verifier, error) {
	verifier, ok := m.verifiers[ownerID]
	if !ok {
		return models.Verifier{}, store.ErrVerifierNotFound
	}
	return verifier, nil
}

func (m *memVerifierRepository) Create(_ context.Context, verifier models.Verifier) (models.Verifier, error) {
	if _, ok := m.verifiers[verifier.OwnerID]; ok {
		return models.Verifier{}, store.ErrVerifierAlreadySet
	}
	m.verifiers[verifier.OwnerID] = verifier
	return verifier, nil
}

func (m *memVerifierRepository) UpdateHash(_ context.Context, ownerID string, newHash string) (models.Verifier, error) {
	verifier, ok := m.verifiers[ownerID]
	if !ok {
		return models.Verifier{}, store.ErrVerifierNotFound
	}
	verifier.SecretHash = newHash
	m.verifiers[ownerID] = verifier
	return verifier, nil
}

func newTestVault(t *testing.T) (*Vault, *memRecordRepository) {
	t.Helper()

	records := newMemRecordRepository()
	verifiers := newMemVerifierRepository()
	log := logger.Nop()

	v := New(
		gate.NewGateService(verifiers, bcrypt.MinCost, log),
		keychain.NewKeyChainService(),
		records,
		session.New(testOwner),
		log,
	)
	return v, records
}

func newUnlockedVault(t *testing.T) (*Vault, *memRecordRepository) {
	t.Helper()

	v, records := newTestVault(t)
	_, err := v.Setup(context.Background(), testSecret)
	require.NoError(t, err)
	return v, records
}

func TestSetup_UnlocksSession(t *testing.T) {
	v, _ := newTestVault(t)

	strength, err := v.Setup(context.Background(), testSecret)

	require.NoError(t, err)
	assert.False(t, strength.Weak)
	assert.Equal(t, session.Unlocked, v.Session().State())
}

func TestSetup_WeakSecretRejected(t *testing.T) {
	v, _ := newTestVault(t)

	_, err := v.Setup(context.Background(), "short")

	require.ErrorIs(t, err, keychain.ErrWeakSecret)
	assert.Equal(t, session.Locked, v.Session().State())
}

func TestUnlock(t *testing.T) {
	v, _ := newUnlockedVault(t)
	v.Lock()
	require.Equal(t, session.Locked, v.Session().State())

	err := v.Unlock(context.Background(), testSecret)

	require.NoError(t, err)
	assert.Equal(t, session.Unlocked, v.Session().State())
}

func TestUnlock_WrongSecret(t *testing.T) {
	v, _ := newUnlockedVault(t)
	v.Lock()

	err := v.Unlock(context.Background(), "NotTheSecret1!")

	require.ErrorIs(t, err, gate.ErrWrongSecret)
	assert.Equal(t, session.Locked, v.Session().State())
}

func TestOperationsRequireUnlockedSession(t *testing.T) {
	v, _ := newUnlockedVault(t)
	v.Lock()
	ctx := context.Background()

	_, err := v.CreateRecord(ctx, models.Record{Title: "bank"})
	assert.ErrorIs(t, err, session.ErrLocked)

	_, err = v.ListRecords(ctx)
	assert.ErrorIs(t, err, session.ErrLocked)

	_, err = v.GetRecord(ctx, "any")
	assert.ErrorIs(t, err, session.ErrLocked)

	_, err = v.UpdateRecord(ctx, "any", models.Record{Title: "bank"})
	assert.ErrorIs(t, err, session.ErrLocked)

	err = v.DeleteRecord(ctx, "any")
	assert.ErrorIs(t, err, session.ErrLocked)

	_, err = v.Export(ctx)
	assert.ErrorIs(t, err, session.ErrLocked)

	_, err = v.Import(ctx, []byte(`{"version":"1","items":[]}`))
	assert.ErrorIs(t, err, session.ErrLocked)
}

func TestCreateRecord_StoresCiphertext(t *testing.T) {
	v, records := newUnlockedVault(t)

	created, err := v.CreateRecord(context.Background(), models.Record{
		Title:    "bank",
		Username: "alice",
		Secret:   "hunter2",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "bank", created.Title, "caller sees plaintext")

	stored := records.records[created.ID]
	assert.NotEqual(t, "bank", stored.Title, "store sees ciphertext")
	assert.NotEqual(t, "hunter2", stored.Secret)
	assert.Equal(t, testOwner, stored.OwnerID)
}

func TestRecordRoundTrip(t *testing.T) {
	v, _ := newUnlockedVault(t)
	ctx := context.Background()

	created, err := v.CreateRecord(ctx, models.Record{
		Title:    "bank",
		Username: "alice",
		Secret:   "hunter2",
		Locator:  "https://bank.example.com",
		Notes:    "main account",
	})
	require.NoError(t, err)

	got, err := v.GetRecord(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "bank", got.Title)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "hunter2", got.Secret)
	assert.Equal(t, "https://bank.example.com", got.Locator)
	assert.Equal(t, "main account", got.Notes)
}

func TestUpdateRecord(t *testing.T) {
	v, _ := newUnlockedVault(t)
	ctx := context.Background()

	created, err := v.CreateRecord(ctx, models.Record{Title: "bank", Secret: "hunter2"})
	require.NoError(t, err)

	updated, err := v.UpdateRecord(ctx, created.ID, models.Record{Title: "bank", Secret: "hunter3"})
	require.NoError(t, err)
	assert.Equal(t, "hunter3", updated.Secret)

	got, err := v.GetRecord(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hunter3", got.Secret)
}

func TestDeleteRecord(t *testing.T) {
	v, _ := newUnlockedVault(t)
	ctx := context.Background()

	created, err := v.CreateRecord(ctx, models.Record{Title: "bank"})
	require.NoError(t, err)

	require.NoError(t, v.DeleteRecord(ctx, created.ID))

	_, err = v.GetRecord(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestListRecords_DecryptsAll(t *testing.T) {
	v, _ := newUnlockedVault(t)
	ctx := context.Background()

	_, err := v.CreateRecord(ctx, models.Record{Title: "first"})
	require.NoError(t, err)
	_, err = v.CreateRecord(ctx, models.Record{Title: "second"})
	require.NoError(t, err)

	records, err := v.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "second", records[0].Title, "newest first")
	assert.Equal(t, "first", records[1].Title)
}

func TestRekey_ReencryptsRecords(t *testing.T) {
	v, records := newUnlockedVault(t)
	ctx := context.Background()

	created, err := v.CreateRecord(ctx, models.Record{Title: "bank", Secret: "hunter2"})
	require.NoError(t, err)
	cipherBefore := records.records[created.ID].Secret

	const newSecret = "BrandNewSecret2@"
	result, err := v.Rekey(ctx, testSecret, newSecret)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Empty(t, result.Failed)

	assert.NotEqual(t, cipherBefore, records.records[created.ID].Secret,
		"ciphertext must change under the new key")

	// Still readable without relocking.
	got, err := v.GetRecord(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got.Secret)

	// Old secret no longer unlocks; new one does.
	v.Lock()
	require.ErrorIs(t, v.Unlock(ctx, testSecret), gate.ErrWrongSecret)
	require.NoError(t, v.Unlock(ctx, newSecret))
}

func TestRekey_WrongOldSecret(t *testing.T) {
	v, records := newUnlockedVault(t)
	ctx := context.Background()

	created, err := v.CreateRecord(ctx, models.Record{Title: "bank", Secret: "hunter2"})
	require.NoError(t, err)
	cipherBefore := records.records[created.ID].Secret

	_, err = v.Rekey(ctx, "NotTheSecret1!", "BrandNewSecret2@")
	require.ErrorIs(t, err, gate.ErrWrongSecret)

	assert.Equal(t, cipherBefore, records.records[created.ID].Secret,
		"failed rekey must not touch stored ciphertext")
}

func TestRekey_PartialFailureReported(t *testing.T) {
	v, records := newUnlockedVault(t)
	ctx := context.Background()

	ok, err := v.CreateRecord(ctx, models.Record{Title: "survives"})
	require.NoError(t, err)
	stuck, err := v.CreateRecord(ctx, models.Record{Title: "stuck"})
	require.NoError(t, err)

	records.failUpdateFor = stuck.ID

	result, err := v.Rekey(ctx, testSecret, "BrandNewSecret2@")
	require.NoError(t, err, "partial failure is reported, not raised")
	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, stuck.ID, result.Failed[0].RecordID)
	assert.False(t, result.Ok())

	// The survivor reads back under the new session key.
	got, err := v.GetRecord(ctx, ok.ID)
	require.NoError(t, err)
	assert.Equal(t, "survives", got.Title)
}

func TestExportImport_RoundTrip(t *testing.T) {
	v, _ := newUnlockedVault(t)
	ctx := context.Background()

	_, err := v.CreateRecord(ctx, models.Record{Title: "bank", Secret: "hunter2"})
	require.NoError(t, err)

	raw, err := v.Export(ctx)
	require.NoError(t, err)

	bundle, err := export.ParseBundle(raw)
	require.NoError(t, err)
	require.Len(t, bundle.Items, 1)
	assert.Equal(t, "hunter2", bundle.Items[0].Secret, "bundle carries plaintext")

	result, err := v.Import(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)

	records, err := v.ListRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2, "import always creates new records")
}

func TestImport_MalformedBundle(t *testing.T) {
	v, _ := newUnlockedVault(t)

	_, err := v.Import(context.Background(), []byte("not a bundle"))

	require.ErrorIs(t, err, export.ErrMalformedBundle)
}

func TestImport_PartialFailureReported(t *testing.T) {
	v, _ := newUnlockedVault(t)

	// The second item has no title, which the store rejects.
	raw := []byte(`{
		"version": "1",
		"items": [
			{"title": "good", "secretValue": "s3cret"},
			{"title": ""}
		]
	}`)

	result, err := v.Import(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 1, result.Failed[0].Index)

	records, err := v.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "good", records[0].Title)
}

func TestWrongKeyCiphertextRejected(t *testing.T) {
	v, records := newUnlockedVault(t)
	ctx := context.Background()

	created, err := v.CreateRecord(ctx, models.Record{Title: "bank"})
	require.NoError(t, err)

	// Corrupt the stored ciphertext behind the vault's back.
	stored := records.records[created.ID]
	stored.Title = "bm90LXJlYWwtY2lwaGVydGV4dA=="
	records.records[created.ID] = stored

	_, err = v.GetRecord(ctx, created.ID)
	assert.ErrorIs(t, err, keychain.ErrWrongKeyOrCorruptData)
}

func TestOrderDoesNotLeakAcrossOwners(t *testing.T) {
	v, records := newUnlockedVault(t)
	ctx := context.Background()

	created, err := v.CreateRecord(ctx, models.Record{Title: "bank"})
	require.NoError(t, err)

	// Same record id probed by another owner's repository view.
	_, err = records.Get(ctx, "mallory@example.com", created.ID)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}
