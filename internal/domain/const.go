package domain

const (
	// Blockchain constants
	ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// Royalty bounds in percent
	MIN_ROYALTY_PERCENTAGE     = 0
	MAX_ROYALTY_PERCENTAGE     = 15
	DEFAULT_ROYALTY_PERCENTAGE = 5
)
