package ledger

import "testing"

func TestDeriveStatusPrecedence(t *testing.T) {
	cases := []struct {
		name   string
		flags  []Flag
		status Status
		label  string
	}{
		{"all done", []Flag{FlagDone}, StatusSolved, "Solved"},
		{"all not found", []Flag{FlagNotFound}, StatusTodo, "Not Found"},
		{"all in progress", []Flag{FlagInProgress}, StatusTodo, "Progress"},
		{"no flags", nil, StatusTodo, "Untouched"},
		{"untouched only", []Flag{FlagUntouched}, StatusTodo, "Untouched"},
		{"placeholders only", []Flag{FlagUntouched, FlagUnknown}, StatusTodo, "Untouched"},
		{"not found beats done", []Flag{FlagNotFound, FlagDone}, StatusTodo, "Solving"},
		{"not found mixed", []Flag{FlagNotFound, FlagOpen}, StatusTodo, "Solving"},
		{"in progress mixed", []Flag{FlagInProgress, FlagDone}, StatusTodo, "Solving"},
		{"done mixed with open", []Flag{FlagDone, FlagOpen}, StatusTodo, "Partially Solved"},
		{"done mixed with untouched", []Flag{FlagDone, FlagUntouched}, StatusTodo, "Partially Solved"},
		{"open only", []Flag{FlagOpen}, StatusTodo, "Progress"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, label := DeriveStatus(tc.flags)
			if status != tc.status || label != tc.label {
				t.Fatalf("flags %v: got (%v, %q), want (%v, %q)",
					tc.flags, status, label, tc.status, tc.label)
			}
		})
	}
}
