package integration

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrCompanyNotFound = errors.New("company not found")
	ErrForbidden       = errors.New("you do not own this company")
	ErrNoCredentials   = errors.New("no stored credentials for this provider")
	ErrProviderAuth    = errors.New("provider rejected the credentials")
)
