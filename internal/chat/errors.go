package chat

import "errors"

var (
	// ErrBackend indicates the generation backend failed mid-exchange
	// (transport, quota, or model error). The orchestrator surfaces it as a
	// structured failure; no partial model turn is committed to history.
	ErrBackend = errors.New("generation backend failure")

	// ErrInFlight indicates a submission was attempted while another
	// exchange on the same session had not completed. Sessions serialize
	// submissions; concurrent callers must use separate sessions.
	ErrInFlight = errors.New("submission already in flight")

	// ErrNilInput indicates a nil message was submitted.
	ErrNilInput = errors.New("nil input message")
)
