// Package result holds the success/failure tag shared by every pipeline stage result.
//
// A stage never returns a Go error past its boundary. It returns its result value with an
// embedded Status instead; callers branch on OK and inspect Err with errors.Is / errors.As.
package result

import (
	"errors"

	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
)

// Status is embedded in stage results and serialized as {"success", "error"}
type Status struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	err error
}

// Succeeded returns a success status
func Succeeded() Status {
	return Status{Success: true}
}

// Failed returns a failure status carrying err; the serialized message is its details
func Failed(err error) Status {
	if err == nil {
		err = apperrors.New(apperrors.ErrInternalServer)
	}
	return Status{Error: apperrors.GetDetails(err), err: err}
}

// OK reports whether the stage succeeded
func (s Status) OK() bool {
	return s.Success
}

// Err returns the typed failure, or nil on success. A status decoded from JSON has no
// typed error and yields one built from its message.
func (s Status) Err() error {
	if s.Success {
		return nil
	}
	if s.err != nil {
		return s.err
	}
	if s.Error != "" {
		return errors.New(s.Error)
	}
	return apperrors.New(apperrors.ErrInternalServer)
}

// FailedStage re-codes err as a failure of the pipeline stage identified by code.
// The serialized message reads "<stage> failed: <details>".
func FailedStage(err error, code int) Status {
	if err == nil {
		err = apperrors.New(apperrors.ErrInternalServer)
	}
	wrapped := apperrors.WrapStage(err, code)
	return Status{
		Error: apperrors.FormatError(code, wrapped.Details),
		err:   wrapped,
	}
}
