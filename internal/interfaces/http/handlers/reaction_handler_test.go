package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemRxn-Core/internal/domain/reaction"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/ChemRxn-Core/pkg/errors"
	"github.com/turtacn/ChemRxn-Core/pkg/types/common"
	rxntypes "github.com/turtacn/ChemRxn-Core/pkg/types/reaction"
)

const (
	methaneXYZ = `C -0.00000000  0.00000000  0.00000000
H -0.63003260  0.63003260  0.63003260
H  0.63003260 -0.63003260  0.63003260
H -0.63003260 -0.63003260 -0.63003260
H  0.63003260  0.63003260 -0.63003260`

	methylXYZ = `C  0.00000000  0.00000000  0.00000000
H  0.00000000  1.07900000  0.00000000
H  0.93444000 -0.53950000  0.00000000
H -0.93444000 -0.53950000  0.00000000`

	hAtomXYZ = `H 0.00000000 0.00000000 0.00000000`
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory repository backing the handler tests
// ─────────────────────────────────────────────────────────────────────────────

type stubRepo struct {
	mu    sync.Mutex
	byID  map[common.ID]*reaction.Reaction
	index int
}

func newStubRepo() *stubRepo {
	return &stubRepo{byID: make(map[common.ID]*reaction.Reaction)}
}

func (r *stubRepo) Save(_ context.Context, rxn *reaction.Reaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rxn.ID] = rxn
	return nil
}

func (r *stubRepo) FindByID(_ context.Context, id common.ID) (*reaction.Reaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rxn, ok := r.byID[id]; ok {
		return rxn, nil
	}
	return nil, appErrors.New(appErrors.ErrCodeReactionNotFound, "reaction not found")
}

func (r *stubRepo) FindByLabel(_ context.Context, label string) (*reaction.Reaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rxn := range r.byID {
		if rxn.Label() == label {
			return rxn, nil
		}
	}
	return nil, appErrors.New(appErrors.ErrCodeReactionNotFound, "reaction not found")
}

func (r *stubRepo) List(_ context.Context, _ common.Pagination) ([]*reaction.Reaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*reaction.Reaction, 0, len(r.byID))
	for _, rxn := range r.byID {
		out = append(out, rxn)
	}
	return out, int64(len(out)), nil
}

func (r *stubRepo) Delete(_ context.Context, id common.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return appErrors.New(appErrors.ErrCodeReactionNotFound, "reaction not found")
	}
	delete(r.byID, id)
	return nil
}

func (r *stubRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

func (r *stubRepo) NextIndex(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index++
	return r.index, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Harness
// ─────────────────────────────────────────────────────────────────────────────

func newTestRouter(t *testing.T, opts ...reaction.ServiceOption) (chi.Router, *reaction.Service) {
	t.Helper()
	svc := reaction.NewService(newStubRepo(), logging.NewNopLogger(), opts...)
	h := NewReactionHandler(svc, logging.NewNopLogger())

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Route("/api/v1/reactions", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Post("/validate", h.ValidateLabel)
		r.Post("/validate/attributes", h.ValidateAttributes)
		r.Post("/multiplicity", h.ResolveMultiplicity)
		r.Route("/{reactionID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Post("/balance", h.CheckBalance)
			r.Get("/atommap", h.GetAtomMap)
			r.Post("/family", h.DetermineFamily)
		})
	})
	return r, svc
}

// decodeData unwraps the response envelope and returns its payload.
func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env common.APIResponse[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success, rec.Body.String())
	return env.Data
}

// decodeError unwraps the envelope of a failed response.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *common.ErrorDetail {
	t.Helper()
	var env common.APIResponse[json.RawMessage]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.False(t, env.Success, rec.Body.String())
	require.NotNil(t, env.Error)
	return env.Error
}

func doJSON(t *testing.T, router http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func scissionRequest() rxntypes.CreateReactionRequest {
	return rxntypes.CreateReactionRequest{
		RSpecies: []rxntypes.SpeciesRecord{
			{Label: "CH4", Multiplicity: 1, SMILES: "C", XYZ: methaneXYZ},
		},
		PSpecies: []rxntypes.SpeciesRecord{
			{Label: "CH3", Multiplicity: 2, SMILES: "[CH3]", XYZ: methylXYZ},
			{Label: "H", Multiplicity: 2, SMILES: "[H]", XYZ: hAtomXYZ},
		},
	}
}

func createReaction(t *testing.T, router http.Handler) rxntypes.ReactionResponse {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/reactions", scissionRequest())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeData[rxntypes.ReactionResponse](t, rec)
	require.NotEmpty(t, resp.ID)
	return resp
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD
// ─────────────────────────────────────────────────────────────────────────────

func TestCreateReaction_Created(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := createReaction(t, router)
	assert.Equal(t, "CH4 <=> CH3 + H", resp.Label)
	assert.Equal(t, []string{"CH4"}, resp.Reactants)
	assert.Equal(t, []string{"CH3", "H"}, resp.Products)
}

func TestCreateReaction_ResponseCarriesRequestID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/reactions", scissionRequest())
	require.Equal(t, http.StatusCreated, rec.Code)

	var env common.APIResponse[rxntypes.ReactionResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.NotEmpty(t, env.RequestID)
}

func TestCreateReaction_MalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reactions",
		bytes.NewBufferString(`{"label": `))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReaction_Imbalanced(t *testing.T) {
	router, _ := newTestRouter(t)

	req := scissionRequest()
	req.PSpecies = req.PSpecies[:1] // drop the H product

	rec := doJSON(t, router, http.MethodPost, "/api/v1/reactions", req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	errDetail := decodeError(t, rec)
	assert.Equal(t, appErrors.ErrCodeReactionImbalance.String(), errDetail.Code)
}

func TestGetReaction_RoundTrip(t *testing.T) {
	router, _ := newTestRouter(t)
	created := createReaction(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/reactions/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeData[rxntypes.ReactionResponse](t, rec)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Label, got.Label)
}

func TestGetReaction_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/reactions/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListReactions(t *testing.T) {
	router, _ := newTestRouter(t)
	createReaction(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/reactions?page=1&page_size=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var env common.APIResponse[[]rxntypes.ReactionResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success)
	assert.Len(t, env.Data, 1)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(1), env.Pagination.Total)
	assert.Equal(t, 1, env.Pagination.Page)
	assert.Equal(t, 10, env.Pagination.PageSize)
}

func TestDeleteReaction(t *testing.T) {
	router, _ := newTestRouter(t)
	created := createReaction(t, router)

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/reactions/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/reactions/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation and multiplicity
// ─────────────────────────────────────────────────────────────────────────────

func TestValidateLabel(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/reactions/validate",
		rxntypes.ValidateLabelRequest{Label: "CH4 <=> CH3 + H"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeData[rxntypes.ValidateLabelResponse](t, rec)
	assert.True(t, resp.Valid)
	assert.Equal(t, []string{"CH4"}, resp.Reactants)
	assert.Equal(t, []string{"CH3", "H"}, resp.Products)
}

func TestValidateLabel_Invalid(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/reactions/validate",
		rxntypes.ValidateLabelRequest{Label: "CH4 => CH3 + H"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeData[rxntypes.ValidateLabelResponse](t, rec)
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Reason)
}

func TestValidateAttributes_Invalid(t *testing.T) {
	router, _ := newTestRouter(t)

	badMult := -1
	rec := doJSON(t, router, http.MethodPost, "/api/v1/reactions/validate/attributes",
		rxntypes.ReactionRecord{Label: "CH4 <=> CH3 + H", Multiplicity: &badMult})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeData[rxntypes.ValidateReactionResponse](t, rec)
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Reason)
}

func TestResolveMultiplicity(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/reactions/multiplicity",
		rxntypes.MultiplicityRequest{
			ReactantMultiplicities: []int{1},
			ProductMultiplicities:  []int{2, 2},
		})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeData[rxntypes.MultiplicityResponse](t, rec)
	assert.Equal(t, 1, resp.Multiplicity)
}

// ─────────────────────────────────────────────────────────────────────────────
// Balance, atom map, family
// ─────────────────────────────────────────────────────────────────────────────

func TestCheckBalance_EmptyBody(t *testing.T) {
	router, _ := newTestRouter(t)
	created := createReaction(t, router)

	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/reactions/"+created.ID+"/balance", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeData[rxntypes.BalanceResponse](t, rec)
	assert.True(t, resp.Balanced)
	assert.NotEmpty(t, resp.Checks)
}

func TestGetAtomMap_Unavailable(t *testing.T) {
	// No aligner configured and no stored map: the endpoint reports the map
	// as unavailable rather than failing.
	router, svc := newTestRouter(t)
	created := createReaction(t, router)

	rxn, err := svc.GetReaction(context.Background(), common.ID(created.ID))
	require.NoError(t, err)
	require.Nil(t, rxn.AtomMap())

	rec := doJSON(t, router, http.MethodGet,
		"/api/v1/reactions/"+created.ID+"/atommap", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	errDetail := decodeError(t, rec)
	assert.Equal(t, appErrors.ErrCodeAlignmentUnavailable.String(), errDetail.Code)
}

type fixedAligner struct{ atomMap []int }

func (f *fixedAligner) Align(context.Context, reaction.FragmentedStructure, reaction.FragmentedStructure) ([]int, error) {
	return f.atomMap, nil
}

func TestGetAtomMap_Computed(t *testing.T) {
	aligner := &fixedAligner{atomMap: []int{0, 1, 2, 3, 4}}
	router, _ := newTestRouter(t, reaction.WithAligner(aligner))
	created := createReaction(t, router)

	rec := doJSON(t, router, http.MethodGet,
		"/api/v1/reactions/"+created.ID+"/atommap", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeData[rxntypes.AtomMapResponse](t, rec)
	assert.True(t, resp.Available)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, resp.AtomMap)
}

type fixedClassifier struct {
	family     string
	ownReverse bool
}

func (f *fixedClassifier) Classify(context.Context, *reaction.Stub) (string, bool, error) {
	return f.family, f.ownReverse, nil
}

func TestDetermineFamily(t *testing.T) {
	classifier := &fixedClassifier{family: "H_Abstraction", ownReverse: true}
	router, svc := newTestRouter(t, reaction.WithClassifier(classifier))
	created := createReaction(t, router)

	rec := doJSON(t, router, http.MethodPost,
		"/api/v1/reactions/"+created.ID+"/family", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeData[rxntypes.FamilyResponse](t, rec)
	assert.Equal(t, "H_Abstraction", resp.Family)
	assert.True(t, resp.OwnReverse)

	// The classification is persisted on the aggregate.
	rxn, err := svc.GetReaction(context.Background(), common.ID(created.ID))
	require.NoError(t, err)
	assert.Equal(t, "H_Abstraction", rxn.Family)
	assert.True(t, rxn.FamilyOwnReverse)
}
