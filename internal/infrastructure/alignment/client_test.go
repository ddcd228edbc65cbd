package alignment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemRxn-Core/internal/config"
	"github.com/turtacn/ChemRxn-Core/internal/domain/reaction"
	"github.com/turtacn/ChemRxn-Core/internal/domain/species"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/ChemRxn-Core/pkg/errors"
)

var _ reaction.AlignmentService = (*Client)(nil)

func parseXYZ(t *testing.T, block string) *species.XYZ {
	t.Helper()
	xyz, err := species.ParseXYZ(block)
	require.NoError(t, err)
	return xyz
}

func testStructures(t *testing.T) (reaction.FragmentedStructure, reaction.FragmentedStructure) {
	t.Helper()
	methane := parseXYZ(t, "C 0.0 0.0 0.0\nH 0.63 0.63 0.63\nH -0.63 -0.63 0.63\nH -0.63 0.63 -0.63\nH 0.63 -0.63 -0.63")
	methyl := parseXYZ(t, "C 0.0 0.0 0.0\nH 1.07 0.0 0.0\nH -0.53 0.93 0.0\nH -0.53 -0.93 0.0")
	hAtom := parseXYZ(t, "H 0.0 0.0 0.0")

	ref := reaction.FragmentedStructure{
		Fragments:    []reaction.Fragment{{XYZ: methane, Multiplicity: 1}},
		Multiplicity: 2,
	}
	target := reaction.FragmentedStructure{
		Fragments:    []reaction.Fragment{{XYZ: methyl, Multiplicity: 2}, {XYZ: hAtom, Multiplicity: 2}},
		Multiplicity: 2,
	}
	return ref, target
}

func newClient(t *testing.T, baseURL string, maxRetries int) *Client {
	t.Helper()
	c, err := NewClient(config.AlignmentConfig{
		BaseURL:    baseURL,
		MaxRetries: maxRetries,
	}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func TestNewClient_MissingBaseURL(t *testing.T) {
	_, err := NewClient(config.AlignmentConfig{}, logging.NewNopLogger())
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeValidation))
}

func TestAlign_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, alignPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req alignRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Reference.Fragments, 1)
		assert.Len(t, req.Target.Fragments, 2)
		assert.Equal(t, 2, req.Reference.Multiplicity)

		json.NewEncoder(w).Encode(alignResponse{AtomMap: []int{0, 1, 2, 3, 4}})
	}))
	defer srv.Close()

	ref, target := testStructures(t)
	atomMap, err := newClient(t, srv.URL, 0).Align(context.Background(), ref, target)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, atomMap)
}

func TestAlign_ValidationRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(errorResponse{Code: "inconsistent", Message: "atom counts differ"})
	}))
	defer srv.Close()

	ref, target := testStructures(t)
	_, err := newClient(t, srv.URL, 0).Align(context.Background(), ref, target)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeAlignmentValidation))
	assert.Contains(t, err.Error(), "atom counts differ")
}

func TestAlign_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(alignResponse{AtomMap: []int{0, 1, 2, 3, 4}})
	}))
	defer srv.Close()

	ref, target := testStructures(t)
	atomMap, err := newClient(t, srv.URL, 2).Align(context.Background(), ref, target)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, atomMap)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAlign_ExhaustedRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ref, target := testStructures(t)
	_, err := newClient(t, srv.URL, 1).Align(context.Background(), ref, target)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeExternalService))
}

func TestAlign_HeavyAtomLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not reach the service")
	}))
	defer srv.Close()

	limited, err := NewClient(config.AlignmentConfig{
		BaseURL:       srv.URL,
		MaxHeavyAtoms: 1,
	}, logging.NewNopLogger())
	require.NoError(t, err)

	ref, target := testStructures(t)
	// A second carbon on the target side exceeds the limit of one.
	target.Fragments = append(target.Fragments, target.Fragments[0])

	_, err = limited.Align(context.Background(), ref, target)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeAlignmentValidation))
}
