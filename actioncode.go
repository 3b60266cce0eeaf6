package authrx

// ActionCodeOperation identifies what an out-of-band action code was minted
// for.
type ActionCodeOperation string

const (
	OperationUnknown       ActionCodeOperation = "UNKNOWN"
	OperationPasswordReset ActionCodeOperation = "PASSWORD_RESET"
	OperationVerifyEmail   ActionCodeOperation = "VERIFY_EMAIL"
	OperationRecoverEmail  ActionCodeOperation = "RECOVER_EMAIL"
	OperationEmailSignIn   ActionCodeOperation = "EMAIL_SIGNIN"
)

// ActionCodeInfo is the metadata the backend attaches to an out-of-band code.
// The adapter forwards it unchanged.
type ActionCodeInfo struct {
	Operation ActionCodeOperation
	Email     string
	// PreviousEmail is set for recover-email codes, where Email holds the
	// address being restored.
	PreviousEmail string
}
