package bus

// The PCF8574 lines are pulled up and driven open-drain, so the
// asserted level is 0 in both directions. These two functions are the
// only polarity conversion points in the codebase.

// LevelAsserted reports whether bit n of a register value is at its
// asserted (low) level.
func LevelAsserted(value byte, n uint8) bool {
	return value&(1<<n) == 0
}

// applyState returns value with bit n driven to the given logical
// state: on pulls the line low, off releases it high.
func applyState(value byte, n uint8, on bool) byte {
	if on {
		return value &^ (1 << n)
	}
	return value | 1<<n
}
