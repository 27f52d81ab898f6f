package peripheral

import "strings"

// Role is the function a peripheral serves at the till.
type Role string

const (
	RoleScanner Role = "scanner"
	RolePrinter Role = "printer"

	// RoleNone marks devices the till has no use for.
	RoleNone Role = ""
)

// ClassifyRole derives a role from a device's advertised name. Matching is
// case-insensitive substring: "scanner" or "barcode" means scanner,
// "printer" or "receipt" means printer, anything else is RoleNone.
func ClassifyRole(name string) Role {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "scanner") || strings.Contains(n, "barcode"):
		return RoleScanner
	case strings.Contains(n, "printer") || strings.Contains(n, "receipt"):
		return RolePrinter
	default:
		return RoleNone
	}
}
