package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemRxn-Core/pkg/types/common"
	rxntypes "github.com/turtacn/ChemRxn-Core/pkg/types/reaction"
)

// newReactionsTestServer returns a client wired to a stub server that records
// the last request and replies with the given status and body.
func newReactionsTestServer(t *testing.T, status int, body interface{}) (*ReactionsClient, *http.Request, *[]byte) {
	t.Helper()

	var lastReq http.Request
	var lastBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastReq = *r
		lastBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	return c.Reactions(), &lastReq, &lastBody
}

func TestReactionsClient_Create(t *testing.T) {
	want := rxntypes.ReactionResponse{
		ID: "rxn-1",
		ReactionRecord: rxntypes.ReactionRecord{
			Label:     "CH4 <=> CH3 + H",
			Reactants: []string{"CH4"},
			Products:  []string{"CH3", "H"},
		},
	}
	rc, lastReq, lastBody := newReactionsTestServer(t, http.StatusCreated, common.NewSuccessResponse(want))

	got, err := rc.Create(context.Background(), rxntypes.CreateReactionRequest{
		Label: "CH4 <=> CH3 + H",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, lastReq.Method)
	assert.Equal(t, "/api/v1/reactions", lastReq.URL.Path)
	assert.Equal(t, "rxn-1", got.ID)
	assert.Equal(t, "CH4 <=> CH3 + H", got.Label)

	var sent rxntypes.CreateReactionRequest
	require.NoError(t, json.Unmarshal(*lastBody, &sent))
	assert.Equal(t, "CH4 <=> CH3 + H", sent.Label)
}

func TestReactionsClient_Get(t *testing.T) {
	want := rxntypes.ReactionResponse{ID: "rxn-2"}
	rc, lastReq, _ := newReactionsTestServer(t, http.StatusOK, common.NewSuccessResponse(want))

	got, err := rc.Get(context.Background(), "rxn-2")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, lastReq.Method)
	assert.Equal(t, "/api/v1/reactions/rxn-2", lastReq.URL.Path)
	assert.Equal(t, "rxn-2", got.ID)
}

func TestReactionsClient_Get_NotFound(t *testing.T) {
	errBody := common.NewErrorResponse("RXN_006", "reaction not found")
	rc, _, _ := newReactionsTestServer(t, http.StatusNotFound, errBody)

	_, err := rc.Get(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "RXN_006", apiErr.Code)
}

func TestReactionsClient_List(t *testing.T) {
	env := common.APIResponse[[]rxntypes.ReactionResponse]{
		Success:    true,
		Data:       []rxntypes.ReactionResponse{{ID: "rxn-1"}, {ID: "rxn-2"}},
		Pagination: &common.Pagination{Page: 2, PageSize: 10, Total: 2},
	}
	rc, lastReq, _ := newReactionsTestServer(t, http.StatusOK, env)

	got, err := rc.List(context.Background(), 2, 10)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/reactions", lastReq.URL.Path)
	assert.Equal(t, "2", lastReq.URL.Query().Get("page"))
	assert.Equal(t, "10", lastReq.URL.Query().Get("page_size"))
	assert.Len(t, got.Items, 2)
	assert.Equal(t, int64(2), got.Total)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 10, got.PageSize)
}

func TestReactionsClient_Delete(t *testing.T) {
	rc, lastReq, _ := newReactionsTestServer(t, http.StatusNoContent, nil)

	require.NoError(t, rc.Delete(context.Background(), "rxn-1"))
	assert.Equal(t, http.MethodDelete, lastReq.Method)
	assert.Equal(t, "/api/v1/reactions/rxn-1", lastReq.URL.Path)
}

func TestReactionsClient_ValidateLabel(t *testing.T) {
	want := rxntypes.ValidateLabelResponse{
		Valid:     true,
		Reactants: []string{"CH4"},
		Products:  []string{"CH3", "H"},
	}
	rc, lastReq, lastBody := newReactionsTestServer(t, http.StatusOK, common.NewSuccessResponse(want))

	got, err := rc.ValidateLabel(context.Background(), "CH4 <=> CH3 + H")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/reactions/validate", lastReq.URL.Path)
	assert.True(t, got.Valid)
	assert.Equal(t, []string{"CH4"}, got.Reactants)

	var sent rxntypes.ValidateLabelRequest
	require.NoError(t, json.Unmarshal(*lastBody, &sent))
	assert.Equal(t, "CH4 <=> CH3 + H", sent.Label)
}

func TestReactionsClient_ValidateAttributes(t *testing.T) {
	want := rxntypes.ValidateReactionResponse{Valid: false, Reason: "multiplicity must be >= 1"}
	rc, lastReq, _ := newReactionsTestServer(t, http.StatusOK, common.NewSuccessResponse(want))

	badMult := -1
	got, err := rc.ValidateAttributes(context.Background(), rxntypes.ReactionRecord{
		Label:        "CH4 <=> CH3 + H",
		Multiplicity: &badMult,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/reactions/validate/attributes", lastReq.URL.Path)
	assert.False(t, got.Valid)
	assert.NotEmpty(t, got.Reason)
}

func TestReactionsClient_ResolveMultiplicity(t *testing.T) {
	want := rxntypes.MultiplicityResponse{Multiplicity: 1, Status: rxntypes.ResolutionAssumed}
	rc, lastReq, _ := newReactionsTestServer(t, http.StatusOK, common.NewSuccessResponse(want))

	got, err := rc.ResolveMultiplicity(context.Background(), rxntypes.MultiplicityRequest{
		ReactantMultiplicities: []int{2, 2},
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/reactions/multiplicity", lastReq.URL.Path)
	assert.Equal(t, 1, got.Multiplicity)
	assert.Equal(t, rxntypes.ResolutionAssumed, got.Status)
}

func TestReactionsClient_CheckBalance(t *testing.T) {
	want := rxntypes.BalanceResponse{Balanced: true}
	rc, lastReq, lastBody := newReactionsTestServer(t, http.StatusOK, common.NewSuccessResponse(want))

	got, err := rc.CheckBalance(context.Background(), "rxn-1", "")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, lastReq.Method)
	assert.Equal(t, "/api/v1/reactions/rxn-1/balance", lastReq.URL.Path)
	assert.True(t, got.Balanced)
	assert.Empty(t, *lastBody)
}

func TestReactionsClient_CheckBalance_AltTS(t *testing.T) {
	want := rxntypes.BalanceResponse{Balanced: false}
	rc, _, lastBody := newReactionsTestServer(t, http.StatusOK, common.NewSuccessResponse(want))

	_, err := rc.CheckBalance(context.Background(), "rxn-1", "1\n\nH 0.0 0.0 0.0\n")
	require.NoError(t, err)

	var sent rxntypes.BalanceCheckRequest
	require.NoError(t, json.Unmarshal(*lastBody, &sent))
	assert.Contains(t, sent.AltTSXYZ, "H 0.0 0.0 0.0")
}

func TestReactionsClient_GetAtomMap(t *testing.T) {
	want := rxntypes.AtomMapResponse{Available: true, AtomMap: []int{0, 2, 1}}
	rc, lastReq, _ := newReactionsTestServer(t, http.StatusOK, common.NewSuccessResponse(want))

	got, err := rc.GetAtomMap(context.Background(), "rxn-1")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, lastReq.Method)
	assert.Equal(t, "/api/v1/reactions/rxn-1/atommap", lastReq.URL.Path)
	assert.True(t, got.Available)
	assert.Equal(t, []int{0, 2, 1}, got.AtomMap)
}

func TestReactionsClient_DetermineFamily(t *testing.T) {
	want := rxntypes.FamilyResponse{Family: "H_Abstraction", OwnReverse: true}
	rc, lastReq, _ := newReactionsTestServer(t, http.StatusOK, common.NewSuccessResponse(want))

	got, err := rc.DetermineFamily(context.Background(), "rxn-1")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, lastReq.Method)
	assert.Equal(t, "/api/v1/reactions/rxn-1/family", lastReq.URL.Path)
	assert.Equal(t, "H_Abstraction", got.Family)
	assert.True(t, got.OwnReverse)
}
