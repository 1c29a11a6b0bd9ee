package cli

// Default values for formatted output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
)
