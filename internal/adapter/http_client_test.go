package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askarin/fieldvault/internal/gate"
	"github.com/askarin/fieldvault/internal/store"
	"github.com/askarin/fieldvault/models"
)

// newStubServer returns an adapter pointed at a stub route table mapping
// "METHOD /path" to a canned response.
type stubResponse struct {
	status int
	body   any
}

func newStubAdapter(t *testing.T, routes map[string]stubResponse) (*HTTPVaultAdapter, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		if resp.body != nil {
			_ = json.NewEncoder(w).Encode(resp.body)
		}
	}))
	t.Cleanup(server.Close)

	return NewHTTPVaultAdapter(HTTPClientConfig{BaseURL: server.URL}), server
}

func TestAdapterSendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.ListResponse{Records: []models.Record{}})
	}))
	t.Cleanup(server.Close)

	a := NewHTTPVaultAdapter(HTTPClientConfig{BaseURL: server.URL})
	a.SetToken("abc.def.ghi")

	_, err := a.List(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc.def.ghi", gotAuth)
}

func TestAdapterObtainToken(t *testing.T) {
	a, _ := newStubAdapter(t, map[string]stubResponse{
		"POST /api/auth/token": {status: http.StatusOK, body: models.TokenResponse{Token: "issued.token"}},
	})

	require.NoError(t, a.ObtainToken(context.Background(), "alice@example.com"))
	assert.Equal(t, "issued.token", a.Token())
}

func TestAdapterRecordRoundTrip(t *testing.T) {
	record := models.Record{ID: "id-1", OwnerID: "alice@example.com", Title: "Y2lwaGVy"}
	a, _ := newStubAdapter(t, map[string]stubResponse{
		"POST /api/records/":       {status: http.StatusCreated, body: record},
		"GET /api/records/":        {status: http.StatusOK, body: models.ListResponse{Records: []models.Record{record}, Length: 1}},
		"GET /api/records/id-1":    {status: http.StatusOK, body: record},
		"PUT /api/records/id-1":    {status: http.StatusOK, body: record},
		"DELETE /api/records/id-1": {status: http.StatusNoContent},
	})
	ctx := context.Background()

	created, err := a.Create(ctx, models.Record{Title: "Y2lwaGVy"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", created.ID)

	records, err := a.List(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	got, err := a.Get(ctx, "alice@example.com", "id-1")
	require.NoError(t, err)
	assert.Equal(t, record.Title, got.Title)

	_, err = a.Update(ctx, "alice@example.com", "id-1", record)
	require.NoError(t, err)

	require.NoError(t, a.Delete(ctx, "alice@example.com", "id-1"))
}

func TestAdapterMapsRecordErrors(t *testing.T) {
	a, _ := newStubAdapter(t, map[string]stubResponse{
		"GET /api/records/missing": {status: http.StatusNotFound, body: models.ErrorResponse{Error: "record not found"}},
		"POST /api/records/":       {status: http.StatusBadRequest, body: models.ErrorResponse{Error: "title must not be empty"}},
		"GET /api/records/":        {status: http.StatusServiceUnavailable, body: models.ErrorResponse{Error: "store unavailable"}},
	})
	ctx := context.Background()

	_, err := a.Get(ctx, "alice@example.com", "missing")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)

	_, err = a.Create(ctx, models.Record{})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = a.List(ctx, "alice@example.com")
	assert.ErrorIs(t, err, store.ErrStoreUnavailable)
}

func TestAdapterGateFlow(t *testing.T) {
	a, _ := newStubAdapter(t, map[string]stubResponse{
		"GET /api/gate/status":  {status: http.StatusOK, body: models.GateStatusResponse{Configured: true}},
		"POST /api/gate/setup":  {status: http.StatusCreated, body: models.SetupResponse{Weak: true}},
		"POST /api/gate/verify": {status: http.StatusOK, body: models.VerifyResponse{Valid: true}},
		"POST /api/gate/rekey":  {status: http.StatusOK, body: models.SetupResponse{}},
	})
	ctx := context.Background()

	configured, err := a.HasVerifier(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, configured)

	strength, err := a.SetVerifier(ctx, "alice@example.com", "aaaaaaaa")
	require.NoError(t, err)
	assert.True(t, strength.Weak, "weak flag crosses the API")

	valid, err := a.Verify(ctx, "alice@example.com", "aaaaaaaa")
	require.NoError(t, err)
	assert.True(t, valid)

	_, err = a.Rekey(ctx, "alice@example.com", "aaaaaaaa", "NewSecret2@")
	require.NoError(t, err)
}

func TestAdapterMapsGateErrors(t *testing.T) {
	a, _ := newStubAdapter(t, map[string]stubResponse{
		"POST /api/gate/setup": {status: http.StatusConflict, body: models.ErrorResponse{Error: "verifier already set"}},
		"POST /api/gate/rekey": {status: http.StatusUnauthorized, body: models.ErrorResponse{Error: "wrong master secret"}},
		"GET /api/gate/status": {status: http.StatusUnauthorized, body: models.ErrorResponse{Error: "Unauthorized"}},
	})
	ctx := context.Background()

	_, err := a.SetVerifier(ctx, "alice@example.com", "LongEnough1!")
	assert.ErrorIs(t, err, store.ErrVerifierAlreadySet)

	_, err = a.Rekey(ctx, "alice@example.com", "old", "new")
	assert.ErrorIs(t, err, gate.ErrWrongSecret)

	_, err = a.HasVerifier(ctx, "alice@example.com")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
