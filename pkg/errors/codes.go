package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.
// Codes are "<MODULE>_<NNN>"; the module prefix is recoverable via ModuleForCode.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal      ErrorCode = "COMMON_001"
	ErrCodeBadRequest    ErrorCode = "COMMON_002"
	ErrCodeCancelled     ErrorCode = "COMMON_003"
	ErrCodeUnknown       ErrorCode = "COMMON_000"
	ErrCodeConfigInvalid ErrorCode = "COMMON_004"
)

// Panel Error Codes
const (
	ErrCodePanelUnsupported ErrorCode = "PANEL_001"
)

// Molecule Error Codes
const (
	ErrCodeMoleculeInvalidSMILES       ErrorCode = "MOL_001"
	ErrCodeFingerprintGenerationFailed ErrorCode = "MOL_002"
	ErrCodeFingerprintWidthMismatch    ErrorCode = "MOL_003"
)

// Reference Library Error Codes
const (
	ErrCodeReferenceLoadFailed ErrorCode = "REF_001"
	ErrCodeReferenceMissing    ErrorCode = "REF_002"
	ErrCodeReferenceEmpty      ErrorCode = "REF_003"
)

// Regression Error Codes
const (
	ErrCodeModelFitFailed ErrorCode = "REG_001"
	ErrCodeShapeMismatch  ErrorCode = "REG_002"
)

// Input Validation Error Codes
const (
	ErrCodeInputNotFound       ErrorCode = "INPUT_001"
	ErrCodeInputNotCSV         ErrorCode = "INPUT_002"
	ErrCodeSMILESInputNotFound ErrorCode = "INPUT_003"
	ErrCodeSMILESInputNotText  ErrorCode = "INPUT_004"
	ErrCodeOutputDirNotFound   ErrorCode = "INPUT_005"
)

// I/O and Storage Error Codes
const (
	ErrCodeTableIO       ErrorCode = "IO_001"
	ErrCodeStorageUpload ErrorCode = "STORE_001"
	ErrCodeMetricsPush   ErrorCode = "STORE_002"
	ErrCodeCacheError    ErrorCode = "STORE_003"
)

// Short aliases used at call sites.
const (
	CodeOK                    = ErrorCode("OK")
	CodeUnknown               = ErrCodeUnknown
	CodeInternal              = ErrCodeInternal
	CodeInvalidParam          = ErrCodeBadRequest
	CodeCancelled             = ErrCodeCancelled
	CodeConfigInvalid         = ErrCodeConfigInvalid
	CodePanelUnsupported      = ErrCodePanelUnsupported
	CodeMoleculeInvalidSMILES = ErrCodeMoleculeInvalidSMILES
	CodeFingerprintFailed     = ErrCodeFingerprintGenerationFailed
	CodeFingerprintWidth      = ErrCodeFingerprintWidthMismatch
	CodeReferenceLoad         = ErrCodeReferenceLoadFailed
	CodeReferenceMissing      = ErrCodeReferenceMissing
	CodeReferenceEmpty        = ErrCodeReferenceEmpty
	CodeModelFit              = ErrCodeModelFitFailed
	CodeShapeMismatch         = ErrCodeShapeMismatch
	CodeTableIO               = ErrCodeTableIO
	CodeStorageUpload         = ErrCodeStorageUpload
	CodeMetricsPush           = ErrCodeMetricsPush
	CodeCache                 = ErrCodeCacheError
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:      "internal error",
	ErrCodeBadRequest:    "bad request",
	ErrCodeCancelled:     "operation cancelled",
	ErrCodeUnknown:       "unknown error",
	ErrCodeConfigInvalid: "invalid configuration",

	ErrCodePanelUnsupported: "invalid model name.",

	ErrCodeMoleculeInvalidSMILES:       "invalid SMILES",
	ErrCodeFingerprintGenerationFailed: "failed to generate fingerprint",
	ErrCodeFingerprintWidthMismatch:    "fingerprint widths differ",

	ErrCodeReferenceLoadFailed: "failed to load reference library",
	ErrCodeReferenceMissing:    "reference structure missing for drug",
	ErrCodeReferenceEmpty:      "no reference drugs left after alignment",

	ErrCodeModelFitFailed: "regression fit failed",
	ErrCodeShapeMismatch:  "matrix shapes do not align",

	ErrCodeInputNotFound:       "The input path does not exist.",
	ErrCodeInputNotCSV:         "The input file is not a csv file.",
	ErrCodeSMILESInputNotFound: "The input path does not exist.",
	ErrCodeSMILESInputNotText:  "The input file is not a txt file.",
	ErrCodeOutputDirNotFound:   "The output directory does not exist.",

	ErrCodeTableIO:       "table read/write failed",
	ErrCodeStorageUpload: "artifact upload failed",
	ErrCodeMetricsPush:   "metrics push failed",
	ErrCodeCacheError:    "fingerprint cache unavailable",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ExitCodeForCode maps an error code to a process exit status.  Input and
// selector problems exit with 2, everything else with 1.
func ExitCodeForCode(code ErrorCode) int {
	switch ModuleForCode(code) {
	case "OK":
		return 0
	case "INPUT", "PANEL":
		return 2
	}
	if code == ErrCodeBadRequest || code == ErrCodeConfigInvalid {
		return 2
	}
	return 1
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
