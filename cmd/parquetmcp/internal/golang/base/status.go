package base

import "strconv"

// StatusCode is the code returned to the OS.
type StatusCode uint8

// Status codes returned by the main executable.
const (
	SNoError StatusCode = iota
	SGenericError
	SHelpRequested
	SInvalidParameters
	SInitializationError
	SApplicationError
	SUserError
)

var statusNames = [...]string{
	SNoError:             "NoError",
	SGenericError:        "GenericError",
	SHelpRequested:       "HelpRequested",
	SInvalidParameters:   "InvalidParameters",
	SInitializationError: "InitializationError",
	SApplicationError:    "ApplicationError",
	SUserError:           "UserError",
}

func (s StatusCode) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "StatusCode(" + strconv.Itoa(int(s)) + ")"
}
