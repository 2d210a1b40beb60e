package service

import "errors"

var (
	ErrPuzzleNotFound    = errors.New("puzzle not found")
	ErrPuzzleExists      = errors.New("puzzle already exists")
	ErrPuzzleCreate      = errors.New("failed to create puzzle")
	ErrPuzzleUpdate      = errors.New("failed to update puzzle")
	ErrMapInvalid        = errors.New("map answer must be a JSON list of {\"top\", \"left\"} positions")
	ErrInvalidVisitor    = errors.New("invalid visitor")
	ErrVisitorExists     = errors.New("visitor already exists")
	ErrVisitorUIDInvalid = errors.New("visitor uid is not in the pool")
	ErrStateCreate       = errors.New("failed to create puzzle state")
	ErrStateUpdate       = errors.New("failed to update puzzle state")
	ErrStateDelete       = errors.New("failed to delete puzzle state")
)
