package errors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "COMMON_001", ErrCodeInternal.String())
	assert.Equal(t, "PANEL_001", CodePanelUnsupported.String())
}

func TestExitCodeForCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{CodeOK, 0},
		{ErrCodeInputNotFound, 2},
		{ErrCodeOutputDirNotFound, 2},
		{ErrCodePanelUnsupported, 2},
		{ErrCodeBadRequest, 2},
		{ErrCodeMoleculeInvalidSMILES, 1},
		{ErrCodeModelFitFailed, 1},
		{ErrorCode("UNKNOWN"), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExitCodeForCode(tt.code), tt.code)
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "internal error", DefaultMessageForCode(ErrCodeInternal))
	assert.Equal(t, "The input file is not a csv file.", DefaultMessageForCode(ErrCodeInputNotCSV))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("UNKNOWN")))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "MOL", ModuleForCode(ErrCodeMoleculeInvalidSMILES))
	assert.Equal(t, "REF", ModuleForCode(ErrCodeReferenceMissing))
	assert.Equal(t, "UNKNOWN", ModuleForCode(ErrorCode("")))
}

func TestAllCodesHaveMessagesAndFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z]+_\d{3}$`)
	for code, msg := range ErrorCodeMessage {
		assert.Regexp(t, pattern, string(code))
		assert.NotEmpty(t, msg, code)
	}
}

//Personal.AI order the ending
