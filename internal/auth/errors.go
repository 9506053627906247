package auth

import "errors"

var (
	// ErrBackendUnavailable covers every BizBox failure that is not a credential rejection:
	// transport faults, timeouts, unexpected status codes and malformed payloads.
	ErrBackendUnavailable = errors.New("bizbox backend unavailable")

	ErrBackendConnection  = errors.New("failed to connect to bizbox")
	ErrBackendInvalidResp = errors.New("invalid response from bizbox")
	ErrBackendRejected    = errors.New("bizbox rejected an issued token")
)
