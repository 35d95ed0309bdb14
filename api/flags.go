package api

// ExecutionFlags controls which phases the transaction runner performs.
type ExecutionFlags struct {
	// OnlyQuery marks fee-estimation runs.
	OnlyQuery bool
	// ChargeFee enables fee computation and the fee-transfer call.
	ChargeFee bool
	// Validate enables the __validate__ phase.
	Validate bool
}

// DefaultExecutionFlags returns the flags used during block production.
func DefaultExecutionFlags() ExecutionFlags {
	return ExecutionFlags{
		OnlyQuery: false,
		ChargeFee: true,
		Validate:  true,
	}
}
