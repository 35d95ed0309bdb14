package transaction

import "errors"

// initialGasBudget is the gas a transaction's outermost calls start
// with. The interpreter meters actual consumption; the budget only
// bounds runaway programs.
const initialGasBudget uint64 = 100_000_000

// gasCounter tracks one transaction's gas across its phases.
type gasCounter struct {
	spent     uint64
	remaining uint64
}

func newGasCounter(initial uint64) *gasCounter {
	return &gasCounter{remaining: initial}
}

func (gc *gasCounter) spend(amount uint64) error {
	if gc.remaining < amount {
		return errors.New("gas overuse; should have been caught by the run limits")
	}
	gc.spent += amount
	gc.remaining -= amount
	return nil
}
