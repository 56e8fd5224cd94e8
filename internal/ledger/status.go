package ledger

// Status is the coarse bucket of a derived per-code status.
type Status int

const (
	StatusTodo Status = iota
	StatusSolved
)

func (s Status) String() string {
	if s == StatusSolved {
		return "solved"
	}
	return "todo"
}

// DeriveStatus reduces the set of flags present across a code's problem
// rows to one status and display label. The rules form a priority chain
// and the order is load-bearing: {not-found, done} must yield "Solving"
// (rule 5) and never reach the partially-solved rule.
func DeriveStatus(flags []Flag) (Status, string) {
	present := make(map[Flag]struct{})
	meaningful := 0
	for _, flag := range flags {
		present[flag] = struct{}{}
		if flag != FlagUntouched && flag != FlagUnknown {
			meaningful++
		}
	}

	only := func(flag Flag) bool {
		_, ok := present[flag]
		return ok && len(present) == 1
	}
	has := func(flag Flag) bool {
		_, ok := present[flag]
		return ok
	}

	switch {
	case only(FlagDone):
		return StatusSolved, "Solved"
	case only(FlagNotFound):
		return StatusTodo, "Not Found"
	case only(FlagInProgress):
		return StatusTodo, "Progress"
	case meaningful == 0:
		return StatusTodo, "Untouched"
	case has(FlagNotFound):
		return StatusTodo, "Solving"
	case has(FlagInProgress):
		return StatusTodo, "Solving"
	case has(FlagDone):
		return StatusTodo, "Partially Solved"
	default:
		return StatusTodo, "Progress"
	}
}
