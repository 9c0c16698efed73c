package services

import "fmt"

// ValidationError reports missing or malformed caller input. It is always
// detected before any network call is made.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// QuotaExceededError is returned when a free-tier user has exhausted the
// daily generation quota.
type QuotaExceededError struct {
	Status QuotaStatus
}

func (e *QuotaExceededError) Error() string {
	return "daily free quota exhausted"
}

// UploadError reports a failed write to durable storage. Distinct from
// ValidationError so that "no file provided" and "storage broke" never blur.
type UploadError struct {
	Msg string
	Err error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// SubmissionError carries the remote service's diagnostic code and message
// for a failed job creation, with the HTTP status mirrored. The bearer
// credential is never part of it.
type SubmissionError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *SubmissionError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("job submission failed: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("job submission failed: %s", e.Message)
}

// PollError reports a transport or parse failure while polling job status.
// A single poll failure surfaces immediately; there is no transparent retry.
type PollError struct {
	Err error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("status poll failed: %v", e.Err)
}

func (e *PollError) Unwrap() error {
	return e.Err
}

// TimeoutError means the global wall-clock deadline elapsed before the
// remote job reached a usable terminal state.
type TimeoutError struct {
	Elapsed string
}

func (e *TimeoutError) Error() string {
	return "generation timed out, please try again later"
}

// RemoteJobFailure is a terminal FAILED or CANCELED reported by the remote
// service.
type RemoteJobFailure struct {
	TaskStatus string
	Message    string
}

func (e *RemoteJobFailure) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "video generation failed"
}
