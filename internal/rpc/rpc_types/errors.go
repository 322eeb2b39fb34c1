package rpc_types

import "github.com/LeJamon/goVaultd/internal/core/tx"

// RpcError represents an RPC error with code and message
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Type        string `json:"type"`
	Message     string `json:"error_message,omitempty"`
}

func (e RpcError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

// Is reports an error reply as a refusal, so callers of tx.LedgerRPC can
// tell it apart from a transport failure.
func (e RpcError) Is(target error) bool {
	return target == tx.ErrRequestRejected
}

// Error codes
const (
	// Universal errors
	RpcUNKNOWN          = -1
	RpcJSON_RPC         = -32600
	RpcMETHOD_NOT_FOUND = -32601
	RpcINVALID_PARAMS   = -32602
	RpcINTERNAL         = -32603
	RpcPARSE_ERROR      = -32700

	// General purpose errors
	RpcMISSING_COMMAND   = 2
	RpcCOMMAND_UNTRUSTED = 3
	RpcTOO_BUSY          = 6
	RpcSLOW_DOWN         = 7

	RpcNOT_ENABLED         = 12
	RpcTXN_NOT_FOUND       = 24
	RpcINVALID_API_VERSION = 38
	RpcINVALID_HASH        = 44
)

// Standard error constructors
func NewRpcError(code int, error, errorType, message string) *RpcError {
	return &RpcError{
		Code:        code,
		ErrorString: error,
		Type:        errorType,
		Message:     message,
	}
}

func RpcErrorUnknown(message string) *RpcError {
	return NewRpcError(RpcUNKNOWN, "unknown", "unknown", message)
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", "invalidParams", message)
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcMETHOD_NOT_FOUND, "unknownCmd", "unknownCmd", "Unknown method: "+method)
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", "internal", message)
}

func RpcErrorTooBusy(message string) *RpcError {
	return NewRpcError(RpcTOO_BUSY, "tooBusy", "tooBusy", message)
}

func RpcErrorCommandUntrusted(method string) *RpcError {
	return NewRpcError(RpcCOMMAND_UNTRUSTED, "commandUntrusted", "commandUntrusted",
		"Method '"+method+"' requires higher privileges")
}

func RpcErrorInvalidApiVersion(version string) *RpcError {
	return NewRpcError(RpcINVALID_API_VERSION, "invalidApiVersion", "invalidApiVersion", "Invalid API version: "+version)
}

func RpcErrorInvalidHash(message string) *RpcError {
	return NewRpcError(RpcINVALID_HASH, "invalidHash", "invalidHash", message)
}

// RpcErrorMissingField returns an error for a missing required field
func RpcErrorMissingField(field string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", "invalidParams", "Missing field '"+field+"'.")
}

func RpcErrorNotEnabled(feature string) *RpcError {
	return NewRpcError(RpcNOT_ENABLED, "notEnabled", "notEnabled", feature+" is not enabled in this configuration.")
}
