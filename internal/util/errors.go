package util

import "errors"

var (
	ErrNoResults           = errors.New("no results recorded yet")
	ErrQuizSessionNotFound = errors.New("quiz session not found or expired")
	ErrQuizTampered        = errors.New("submitted questions do not match the issued quiz")
	ErrInvalidExpression   = errors.New("invalid arithmetic expression")
	ErrAnswerCountMismatch = errors.New("answer count does not match question count")
	ErrSpreadsheetNotFound = errors.New("spreadsheet not found")
)
