// Package errors_test exercises the AppError type, its factories and the
// error-chain helpers.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/newdrug-response/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"invalid smiles", errors.CodeMoleculeInvalidSMILES, "unclosed ring bond"},
		{"invalid param", errors.CodeInvalidParam, "SMILES must not be empty"},
		{"fit", errors.CodeModelFit, "cluster 3"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	ae := errors.Newf(errors.CodeShapeMismatch, "X has %d rows, Y has %d columns", 3, 4)
	assert.Equal(t, "X has 3 rows, Y has 4 columns", ae.Message)
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("disk full")
	wrapped := errors.Wrap(root, errors.CodeTableIO, "write failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, root, wrapped.Unwrap())
	assert.True(t, stderrors.Is(wrapped, root))
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeMoleculeInvalidSMILES, "bad ring")
	outer := errors.Wrap(inner, errors.CodeUnknown, "encoding reference set")

	assert.Equal(t, errors.CodeMoleculeInvalidSMILES, outer.Code)
}

func TestWrap_OverridesCodeWhenExplicit(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeMoleculeInvalidSMILES, "bad ring")
	outer := errors.Wrap(inner, errors.CodeFingerprintFailed, "fingerprint")

	assert.Equal(t, errors.CodeFingerprintFailed, outer.Code)
	assert.True(t, errors.IsCode(outer, errors.CodeMoleculeInvalidSMILES))
}

// ─────────────────────────────────────────────────────────────────────────────
// Error() formatting and builders
// ─────────────────────────────────────────────────────────────────────────────

func TestError_Format(t *testing.T) {
	ae := errors.New(errors.CodeReferenceMissing, "reference structure missing")
	assert.Equal(t, "[REF_002] reference structure missing", ae.Error())

	withDetail := ae.WithDetail("BRD-K00003406")
	assert.Equal(t, "[REF_002] reference structure missing: BRD-K00003406", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestUnsupportedPanel(t *testing.T) {
	ae := errors.UnsupportedPanel("CTRP")
	assert.Equal(t, errors.CodePanelUnsupported, ae.Code)
	assert.Equal(t, "invalid model name.", ae.Message)
	assert.Equal(t, "CTRP", ae.Detail)
}

func TestBuilders_NilReceiver(t *testing.T) {
	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

func TestWithCause_DoesNotMutateOriginal(t *testing.T) {
	original := errors.Internal("boom")
	cause := stderrors.New("root")
	clone := original.WithCause(cause)

	assert.Nil(t, original.Cause)
	assert.Equal(t, cause, clone.Cause)
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode(t *testing.T) {
	inner := errors.InvalidSMILES("unknown element")
	mid := fmt.Errorf("molecule 3: %w", inner)
	outer := errors.Wrap(mid, errors.CodeFingerprintFailed, "encode")

	assert.True(t, errors.IsCode(outer, errors.CodeMoleculeInvalidSMILES))
	assert.True(t, errors.IsCode(outer, errors.CodeFingerprintFailed))
	assert.False(t, errors.IsCode(outer, errors.CodeModelFit))
	assert.False(t, errors.IsCode(nil, errors.CodeModelFit))
	assert.False(t, errors.IsCode(stderrors.New("plain"), errors.CodeModelFit))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.CodePanelUnsupported,
		errors.GetCode(fmt.Errorf("wrapped: %w", errors.UnsupportedPanel("x"))))
}

func TestStdlib_ErrorsAs_ExtractsAppError(t *testing.T) {
	err := fmt.Errorf("ctx: %w", errors.New(errors.CodeTableIO, "read"))

	var ae *errors.AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, errors.CodeTableIO, ae.Code)
}

//Personal.AI order the ending
