package ledger

import (
	"sort"
	"strings"
)

// Remark encoding markers. A remark is the human-facing completion note on
// a scan record: "Not Completed Yet (Alice, Bob), Good (Carol)".
const (
	remarkPendingMark   = "Not Completed Yet ("
	remarkConfirmedMark = "Good ("
	remarkUnknown       = "?"
)

// EncodeRemark renders the pending and confirmed user sets as a remark
// string. Either clause is omitted when its set is empty; when both are
// empty the sentinel "?" is produced.
func EncodeRemark(pending, confirmed map[string]struct{}) string {
	var parts []string
	if len(pending) > 0 {
		parts = append(parts, remarkPendingMark+strings.Join(sortedMembers(pending), ", ")+")")
	}
	if len(confirmed) > 0 {
		parts = append(parts, remarkConfirmedMark+strings.Join(sortedMembers(confirmed), ", ")+")")
	}
	if len(parts) == 0 {
		return remarkUnknown
	}
	return strings.Join(parts, ", ")
}

// DecodeRemark is the inverse of EncodeRemark for anything the encoder can
// produce. Malformed input yields two empty sets, never an error.
func DecodeRemark(remark string) (pending, confirmed map[string]struct{}) {
	pending = make(map[string]struct{})
	confirmed = make(map[string]struct{})
	fillClause(remark, remarkPendingMark, pending)
	fillClause(remark, remarkConfirmedMark, confirmed)
	return pending, confirmed
}

func fillClause(remark, marker string, into map[string]struct{}) {
	_, rest, found := strings.Cut(remark, marker)
	if !found {
		return
	}
	body, _, found := strings.Cut(rest, ")")
	if !found {
		return
	}
	for _, name := range strings.Split(body, ",") {
		if name = strings.TrimSpace(name); name != "" {
			into[name] = struct{}{}
		}
	}
}

func sortedMembers(set map[string]struct{}) []string {
	members := make([]string, 0, len(set))
	for member := range set {
		members = append(members, member)
	}
	sort.Strings(members)
	return members
}

func setOf(members ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(members))
	for _, member := range members {
		if member != "" {
			set[member] = struct{}{}
		}
	}
	return set
}
