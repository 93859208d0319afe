package domain

import "errors"

var (
	ErrUnknownStatus          = errors.New("domain: unknown candidate status")
	ErrUnknownWeekday         = errors.New("domain: unknown weekday")
	ErrMissingParty           = errors.New("domain: candidate and company are required")
	ErrInvalidInput           = errors.New("domain: invalid input")
	ErrMultipleActiveVersions = errors.New("domain: more than one active contract version")
)
