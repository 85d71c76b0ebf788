// Package output provides JSON/Markdown output formatting and error handling.
package output

// Exit codes returned by the CLI.
const (
	ExitOK        = 0 // Success
	ExitUsage     = 1 // Invalid arguments, flags or input
	ExitNotFound  = 2 // Todo not found
	ExitRateLimit = 5 // Rate limited (429)
	ExitNetwork   = 6 // Connection/DNS/timeout error
	ExitAPI       = 7 // Server returned error
	ExitAmbiguous = 8 // Multiple todos match a title
)

// Error codes for JSON envelope.
const (
	CodeUsage      = "usage"
	CodeValidation = "validation"
	CodeNotFound   = "not_found"
	CodeRateLimit  = "rate_limit"
	CodeNetwork    = "network"
	CodeAPI        = "api_error"
	CodeAmbiguous  = "ambiguous"
)

// ExitCodeFor returns the exit code for a given error code.
func ExitCodeFor(code string) int {
	switch code {
	case CodeUsage, CodeValidation:
		return ExitUsage
	case CodeNotFound:
		return ExitNotFound
	case CodeRateLimit:
		return ExitRateLimit
	case CodeNetwork:
		return ExitNetwork
	case CodeAPI:
		return ExitAPI
	case CodeAmbiguous:
		return ExitAmbiguous
	default:
		return ExitAPI
	}
}
