package smb

import (
	"errors"
	"fmt"

	"github.com/mellowCS/SMB-Fuzzer/pkg/smb/types"
)

// Transport errors
var (
	ErrNotConnected  = errors.New("not connected")
	ErrFrameTooLarge = errors.New("message too large for NetBIOS framing")
	ErrReadTimeout   = errors.New("read timed out")
)

// NTStatusError wraps an NT status code as an error
type NTStatusError struct {
	Status types.NTStatus
}

// Error implements the error interface
func (e *NTStatusError) Error() string {
	return fmt.Sprintf("NT status error: 0x%08X (%s)", uint32(e.Status), StatusName(e.Status))
}

var statusNames = map[types.NTStatus]string{
	types.StatusSuccess:               "STATUS_SUCCESS",
	types.StatusPending:               "STATUS_PENDING",
	types.StatusMoreProcessingReq:     "STATUS_MORE_PROCESSING_REQUIRED",
	types.StatusInvalidParameter:      "STATUS_INVALID_PARAMETER",
	types.StatusNoSuchFile:            "STATUS_NO_SUCH_FILE",
	types.StatusEndOfFile:             "STATUS_END_OF_FILE",
	types.StatusMoreEntries:           "STATUS_MORE_ENTRIES",
	types.StatusAccessDenied:          "STATUS_ACCESS_DENIED",
	types.StatusObjectNameNotFound:    "STATUS_OBJECT_NAME_NOT_FOUND",
	types.StatusObjectNameCollision:   "STATUS_OBJECT_NAME_COLLISION",
	types.StatusObjectPathNotFound:    "STATUS_OBJECT_PATH_NOT_FOUND",
	types.StatusLogonFailure:          "STATUS_LOGON_FAILURE",
	types.StatusAccountDisabled:       "STATUS_ACCOUNT_DISABLED",
	types.StatusPasswordExpired:       "STATUS_PASSWORD_EXPIRED",
	types.StatusBadNetworkName:        "STATUS_BAD_NETWORK_NAME",
	types.StatusNotSupported:          "STATUS_NOT_SUPPORTED",
	types.StatusNetworkSessionExpired: "STATUS_NETWORK_SESSION_EXPIRED",
	types.StatusInvalidDeviceRequest:  "STATUS_INVALID_DEVICE_REQUEST",
	types.StatusUserSessionDeleted:    "STATUS_USER_SESSION_DELETED",
	types.StatusRequestNotAccepted:    "STATUS_REQUEST_NOT_ACCEPTED",
	types.StatusNoMoreFiles:           "STATUS_NO_MORE_FILES",
	types.StatusBufferOverflow:        "STATUS_BUFFER_OVERFLOW",
}

// StatusName returns a human-readable name for the status
func StatusName(status types.NTStatus) string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return fmt.Sprintf("0x%08X", uint32(status))
}

// StatusError returns nil for non-error severities and an NTStatusError otherwise
func StatusError(status types.NTStatus) error {
	if !status.IsError() {
		return nil
	}
	return &NTStatusError{Status: status}
}
