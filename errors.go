package captureagent

import "github.com/pkg/errors"

// ConfigurationError marks a malformed job reference, an unsupported output
// format, or a missing device. Never retried within a job.
type ConfigurationError struct{ Err error }

func (e *ConfigurationError) Error() string { return "configuration error: " + e.Err.Error() }
func (e *ConfigurationError) Unwrap() error { return e.Err }

// DeviceError marks a driver or hardware access failure. Fatal to the
// in-progress job; the session itself stays open for the next one.
type DeviceError struct{ Err error }

func (e *DeviceError) Error() string { return "device error: " + e.Err.Error() }
func (e *DeviceError) Unwrap() error { return e.Err }

// TimeoutError marks an exceeded convergence or completion deadline.
// Interruption of a blocking wait is reported the same way.
type TimeoutError struct{ Err error }

func (e *TimeoutError) Error() string { return "timeout: " + e.Err.Error() }
func (e *TimeoutError) Unwrap() error { return e.Err }

// ResultError marks an internal consistency violation: an unmatched or
// malformed completion event.
type ResultError struct{ Err error }

func (e *ResultError) Error() string { return "result error: " + e.Err.Error() }
func (e *ResultError) Unwrap() error { return e.Err }

func configErrf(format string, args ...interface{}) error {
	return &ConfigurationError{Err: errors.Errorf(format, args...)}
}

func deviceErr(err error, msg string) error {
	return &DeviceError{Err: errors.Wrap(err, msg)}
}

func timeoutErrf(format string, args ...interface{}) error {
	return &TimeoutError{Err: errors.Errorf(format, args...)}
}

func resultErrf(format string, args ...interface{}) error {
	return &ResultError{Err: errors.Errorf(format, args...)}
}
