package handlers

// Response wrapper types for Swagger documentation

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Something went wrong"`
	Details string `json:"details,omitempty" example:"Validation error details"`
}

// RejectResponse is the chunk-rejection body; callers key on the
// reason field.
type RejectResponse struct {
	Reason string `json:"reason" example:"SessionNotRecording"`
}

// StartSessionResponse carries the new session handle.
type StartSessionResponse struct {
	SessionID string `json:"session_id"`
}

// AckResponse acknowledges a lifecycle transition.
type AckResponse struct {
	Status string `json:"status" example:"ok"`
	State  string `json:"state,omitempty" example:"paused"`
}

// ChunkAcceptedResponse acknowledges an accepted audio segment.
type ChunkAcceptedResponse struct {
	Status string `json:"status" example:"accepted"`
}

// TranscriptResponse is the pull-based transcript snapshot.
type TranscriptResponse struct {
	Transcript string `json:"transcript"`
}

// ExportResponse points at the converted document.
type ExportResponse struct {
	DownloadURL string `json:"download_url"`
}
