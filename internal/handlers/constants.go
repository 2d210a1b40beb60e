package handlers

const (
	maxRequestBody = 1 << 20

	ErrInvalidRequestBody      = "Invalid request body"
	ErrUnauthorized            = "Unauthorized"
	ErrInternalServerError     = "Internal server error"
	ErrVisitorNotAuthenticated = "Visitor is not authenticated"
	ErrVisitorCheckedOut       = "Visitor has checked out"
	ErrPuzzleNotFoundMsg       = "Puzzle not found"
	ErrPuzzleDisabledMsg       = "Puzzle is not active"
	ErrTooManyRequests         = "Too many requests"
)
