package faq

// Error and warning codes surfaced through apperrors.AppError and Result.Warnings.
const (
	CodeStoreUnavailable   = "store_unavailable"
	CodePersistenceFailure = "persistence_failure"
	CodeNotifyFailure      = "notify_failure"
	CodeTurnNotFound       = "turn_not_found"
	CodeSessionNotFound    = "session_not_found"
	CodeInvalidState       = "invalid_state"
	CodeInvalidInput       = "invalid_input"
)
