package errors

import (
	"net/http"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeDatabaseError      ErrorCode = "COMMON_008"
	ErrCodeCacheError         ErrorCode = "COMMON_009"
	ErrCodeExternalService    ErrorCode = "COMMON_010"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_011"
	ErrCodeNotImplemented     ErrorCode = "COMMON_012"
)

// Aliases kept short for call-site readability.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeNotImplemented = ErrCodeNotImplemented
	CodeDatabaseError  = ErrCodeDatabaseError
	CodeCacheError     = ErrCodeCacheError
	CodeOK             = ErrorCode("OK")
	CodeUnknown        = ErrorCode("UNKNOWN")
)

// Reaction Module Error Codes
const (
	// ErrCodeReactionConstruction marks a reaction that cannot be unambiguously
	// built: missing label/reactants/products, or too many species per side.
	ErrCodeReactionConstruction ErrorCode = "RXN_001"

	// ErrCodeLabelFormat marks a reaction label that violates the
	// "r1 + r2 <=> p1 + p2" grammar.
	ErrCodeLabelFormat ErrorCode = "RXN_002"

	// ErrCodeReactionImbalance marks a stoichiometric mismatch between the
	// reactant well and any other structure of the reaction.
	ErrCodeReactionImbalance ErrorCode = "RXN_003"

	// ErrCodeMultiplicityUndetermined marks a reactant spin combination that is
	// not covered by the resolution table.
	ErrCodeMultiplicityUndetermined ErrorCode = "RXN_004"

	// ErrCodeReactionInvalid marks an inconsistency between a reaction's label,
	// its reactant/product lists, and its resolved species.
	ErrCodeReactionInvalid ErrorCode = "RXN_005"

	ErrCodeReactionNotFound      ErrorCode = "RXN_006"
	ErrCodeReactionAlreadyExists ErrorCode = "RXN_007"
	ErrCodeReactionRecordInvalid ErrorCode = "RXN_008"
)

// Species Module Error Codes
const (
	ErrCodeGeometryParse  ErrorCode = "SPC_001"
	ErrCodeSpeciesInvalid ErrorCode = "SPC_002"
	ErrCodeSpeciesNotFound ErrorCode = "SPC_003"
)

// Atom Map / Alignment Error Codes
const (
	ErrCodeAlignmentValidation  ErrorCode = "MAP_001"
	ErrCodeAlignmentUnavailable ErrorCode = "MAP_002"
	ErrCodeAtomMapShape         ErrorCode = "MAP_003"
)

// Family Classification Error Codes
const (
	ErrCodeFamilyUnresolved ErrorCode = "CLS_001"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeReactionConstruction:     http.StatusBadRequest,
	ErrCodeLabelFormat:              http.StatusBadRequest,
	ErrCodeReactionImbalance:        http.StatusUnprocessableEntity,
	ErrCodeMultiplicityUndetermined: http.StatusUnprocessableEntity,
	ErrCodeReactionInvalid:          http.StatusUnprocessableEntity,
	ErrCodeReactionNotFound:         http.StatusNotFound,
	ErrCodeReactionAlreadyExists:    http.StatusConflict,
	ErrCodeReactionRecordInvalid:    http.StatusBadRequest,

	ErrCodeGeometryParse:   http.StatusBadRequest,
	ErrCodeSpeciesInvalid:  http.StatusBadRequest,
	ErrCodeSpeciesNotFound: http.StatusNotFound,

	ErrCodeAlignmentValidation:  http.StatusUnprocessableEntity,
	ErrCodeAlignmentUnavailable: http.StatusServiceUnavailable,
	ErrCodeAtomMapShape:         http.StatusInternalServerError,

	ErrCodeFamilyUnresolved: http.StatusUnprocessableEntity,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeReactionConstruction:     "reaction cannot be constructed",
	ErrCodeLabelFormat:              "invalid reaction label format",
	ErrCodeReactionImbalance:        "reaction is not atom balanced",
	ErrCodeMultiplicityUndetermined: "reaction surface multiplicity undetermined",
	ErrCodeReactionInvalid:          "reaction attributes are inconsistent",
	ErrCodeReactionNotFound:         "reaction not found",
	ErrCodeReactionAlreadyExists:    "reaction already exists",
	ErrCodeReactionRecordInvalid:    "invalid reaction record",

	ErrCodeGeometryParse:   "failed to parse xyz geometry",
	ErrCodeSpeciesInvalid:  "invalid species definition",
	ErrCodeSpeciesNotFound: "species not found",

	ErrCodeAlignmentValidation:  "alignment service rejected the structures",
	ErrCodeAlignmentUnavailable: "alignment service unavailable",
	ErrCodeAtomMapShape:         "atom map is not a valid permutation",

	ErrCodeFamilyUnresolved: "reaction family could not be determined",
}

// HTTPStatus returns the HTTP status mapped to the code, defaulting to 500
// for unknown codes.
func (c ErrorCode) HTTPStatus() int {
	if status, ok := ErrorCodeHTTPStatus[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessage returns the default human-readable message for the code.
func (c ErrorCode) DefaultMessage() string {
	if msg, ok := ErrorCodeMessage[c]; ok {
		return msg
	}
	return "unknown error"
}
