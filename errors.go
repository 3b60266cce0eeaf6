package authrx

import "errors"

// ErrClientReleased is emitted when an operation activates after the wrapped
// client reference has been released.
var ErrClientReleased = errors.New("auth client released")

// ErrSettingsRequired is emitted when an operation that mandates action code
// settings is given none.
var ErrSettingsRequired = errors.New("action code settings required")
