package tenant

import "errors"

// ErrUnknownOrg is returned when no schema is registered for an organization.
var ErrUnknownOrg = errors.New("tenant: unknown organization")
