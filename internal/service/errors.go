package service

import "errors"

var (
	ErrEvaluationNotFound  = errors.New("evaluation not found")
	ErrEvaluationCompleted = errors.New("evaluation already completed")
	ErrInvalidQuestion     = errors.New("question does not exist")
	ErrInvalidAnswer       = errors.New("answer value out of range")
	ErrNoResponses         = errors.New("evaluation has no responses")
	ErrUnknownProfile      = errors.New("unknown questionnaire profile")
	ErrInvalidCandidate    = errors.New("invalid candidate data")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUser        = errors.New("invalid user data")
	ErrUserExists         = errors.New("username already in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrCannotDeleteSelf   = errors.New("cannot delete own account")
	ErrLastAdmin          = errors.New("cannot delete the last admin")
)
