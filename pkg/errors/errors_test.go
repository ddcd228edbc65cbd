// Package errors_test provides unit tests for the AppError type, factory
// functions, and error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/ChemRxn-Core/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// TestNew
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"reaction not found", errors.ErrCodeReactionNotFound, "reaction rxn-42 not found"},
		{"label format", errors.ErrCodeLabelFormat, "label is missing the <=> separator"},
		{"imbalance", errors.ErrCodeReactionImbalance, "reactant well does not match products"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail, "Detail should be empty for bare New()")
			assert.Nil(t, ae.Cause, "Cause should be nil for bare New()")
		})
	}
}

func TestNew_StackIsPopulated(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.CodeInternal, "test")
	require.NotNil(t, ae)
	assert.Contains(t, ae.Stack, "errors_test.go")
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	result := errors.Wrap(nil, errors.CodeInternal, "should not matter")
	assert.Nil(t, result)
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("root DB error")
	wrapped := errors.Wrap(root, errors.CodeDatabaseError, "connection failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.CodeDatabaseError, wrapped.Code)
	assert.Equal(t, "connection failed", wrapped.Message)
	assert.Equal(t, root, wrapped.Cause)
}

func TestWrap_UnwrapReturnsCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("original")
	ae := errors.Wrap(cause, errors.CodeCacheError, "cache miss")

	unwrapped := stderrors.Unwrap(ae)
	assert.Equal(t, cause, unwrapped)
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeReactionNotFound, "not found")
	outer := errors.Wrap(inner, errors.CodeUnknown, "adding context")

	require.NotNil(t, outer)
	assert.Equal(t, errors.ErrCodeReactionNotFound, outer.Code,
		"Wrap with CodeUnknown should inherit the inner AppError's code")
}

func TestWrap_OverridesCodeWhenExplicit(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeReactionNotFound, "not found")
	outer := errors.Wrap(inner, errors.CodeInternal, "unexpected state")

	assert.Equal(t, errors.CodeInternal, outer.Code,
		"explicit non-Unknown code must override the inner code")
}

// ─────────────────────────────────────────────────────────────────────────────
// TestError formatting
// ─────────────────────────────────────────────────────────────────────────────

func TestError_FormatWithAndWithoutDetail(t *testing.T) {
	t.Parallel()

	bare := errors.New(errors.ErrCodeLabelFormat, "bad label")
	assert.Equal(t, "[RXN_002] bad label", bare.Error())

	detailed := bare.WithDetail("label=H2O <=>")
	assert.Equal(t, "[RXN_002] bad label: label=H2O <=>", detailed.Error())
	assert.Empty(t, bare.Detail, "WithDetail must not mutate the receiver")
}

func TestWithDetailf(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeReactionImbalance, "imbalance").
		WithDetailf("well=%s structure=%d", "C2H6O", 1)
	assert.True(t, strings.Contains(ae.Detail, "well=C2H6O"))
}

func TestWithCause_AttachesCauseWithoutMutation(t *testing.T) {
	t.Parallel()

	base := errors.New(errors.ErrCodeGeometryParse, "bad xyz")
	cause := stderrors.New("strconv failure")
	withCause := base.WithCause(cause)

	assert.Nil(t, base.Cause)
	assert.Equal(t, cause, withCause.Cause)
}

func TestFluentBuilders_NilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

// ─────────────────────────────────────────────────────────────────────────────
// TestIsCode / IsNotFound / GetCode
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_FindsCodeAnywhereInChain(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeMultiplicityUndetermined, "no table entry")
	outer := errors.Wrap(inner, errors.CodeInternal, "resolution failed")

	assert.True(t, errors.IsCode(outer, errors.ErrCodeMultiplicityUndetermined))
	assert.True(t, errors.IsCode(outer, errors.CodeInternal))
	assert.False(t, errors.IsCode(outer, errors.ErrCodeLabelFormat))
	assert.False(t, errors.IsCode(nil, errors.CodeInternal))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"generic not found", errors.NotFound("gone"), true},
		{"reaction not found", errors.New(errors.ErrCodeReactionNotFound, "gone"), true},
		{"species not found", errors.New(errors.ErrCodeSpeciesNotFound, "gone"), true},
		{"wrapped not found", errors.Wrap(errors.NotFound("gone"), errors.CodeInternal, "ctx"), true},
		{"other code", errors.New(errors.CodeInternal, "boom"), false},
		{"plain error", stderrors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, errors.IsNotFound(tc.err))
		})
	}
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeReactionInvalid,
		errors.GetCode(errors.New(errors.ErrCodeReactionInvalid, "bad")))
}

// ─────────────────────────────────────────────────────────────────────────────
// HTTP status mapping
// ─────────────────────────────────────────────────────────────────────────────

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code errors.ErrorCode
		want int
	}{
		{errors.ErrCodeReactionNotFound, http.StatusNotFound},
		{errors.ErrCodeLabelFormat, http.StatusBadRequest},
		{errors.ErrCodeReactionImbalance, http.StatusUnprocessableEntity},
		{errors.ErrCodeAlignmentUnavailable, http.StatusServiceUnavailable},
		{errors.ErrorCode("NOPE_999"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.code.HTTPStatus(), "code %s", tc.code)
	}
}

func TestDefaultMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "invalid reaction label format", errors.ErrCodeLabelFormat.DefaultMessage())
	assert.Equal(t, "unknown error", errors.ErrorCode("NOPE_999").DefaultMessage())
}

func TestConvenienceFactories(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeNotFound, errors.NotFound("x").Code)
	assert.Equal(t, errors.CodeInvalidParam, errors.InvalidParam("x").Code)
	assert.Equal(t, errors.CodeConflict, errors.InvalidState("x").Code)
	assert.Equal(t, errors.CodeConflict, errors.Conflict("x").Code)
	assert.Equal(t, errors.CodeInternal, errors.Internal("x").Code)
}
