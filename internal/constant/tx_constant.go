package constant

// TxState is where a tracked transaction sits in the validation state machine.
type TxState string

const (
	StatePending      TxState = "pending"
	StateMinedSuccess TxState = "mined_success"
	StateMinedFailed  TxState = "mined_failed"
	StateFatalError   TxState = "fatal_error"
	StateCancelled    TxState = "cancelled"
)

// Verification kinds recorded in the audit log.
const (
	KindConfirmations = "confirmations"
	KindValidate      = "validate"
	KindCoin          = "coin"
	KindToken         = "token"
)
