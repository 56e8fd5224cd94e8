// Package ledger implements the scan/trouble reconciliation core: the
// remark codec, the scan and trouble ledgers, status derivation over
// trouble flags, and the cross-category overlap annotator.
package ledger

// Flag is the status marker carried by a trouble row.
type Flag int

const (
	FlagUnknown Flag = iota
	FlagOpen
	FlagDone
	FlagNotFound
	FlagInProgress
	FlagUntouched
)

// Marker returns the symbol persisted for the flag.
func (f Flag) Marker() string {
	switch f {
	case FlagOpen:
		return "⚠️"
	case FlagDone:
		return "✅"
	case FlagNotFound:
		return "❌"
	case FlagInProgress:
		return "Δ"
	case FlagUntouched:
		return "A"
	default:
		return "?"
	}
}

// ParseFlag maps a persisted marker back to its flag. Unrecognized
// markers map to FlagUnknown rather than failing, so a corrupt row never
// aborts a ledger read.
func ParseFlag(marker string) Flag {
	switch marker {
	case "⚠️", "⚠":
		return FlagOpen
	case "✅":
		return FlagDone
	case "❌", "X", "x":
		return FlagNotFound
	case "Δ":
		return FlagInProgress
	case "A", "", "-":
		return FlagUntouched
	default:
		return FlagUnknown
	}
}

// Category identifies a problem bucket on the fine-grained trouble ledger.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryMissing
	CategoryWrongPicked
	CategoryTSP
	CategoryMoreSkid
	CategoryNoProblem
)

// categoryOrder fixes the display and overlap-tag ordering of buckets.
var categoryOrder = []Category{
	CategoryMissing,
	CategoryWrongPicked,
	CategoryTSP,
	CategoryMoreSkid,
	CategoryNoProblem,
}

func (c Category) String() string {
	switch c {
	case CategoryMissing:
		return "Missing"
	case CategoryWrongPicked:
		return "WrongPicked"
	case CategoryTSP:
		return "TSP"
	case CategoryMoreSkid:
		return "MoreSkid"
	case CategoryNoProblem:
		return "NoProblem"
	default:
		return "Unknown"
	}
}

// Initial is the single-letter abbreviation used in overlap tags.
func (c Category) Initial() string {
	switch c {
	case CategoryMissing:
		return "M"
	case CategoryWrongPicked:
		return "W"
	case CategoryTSP:
		return "T"
	case CategoryMoreSkid:
		return "S"
	case CategoryNoProblem:
		return "N"
	default:
		return "?"
	}
}

// ParseCategory maps a persisted category name to its variant, with
// CategoryUnknown as the fallback for anything unrecognized.
func ParseCategory(name string) Category {
	switch name {
	case "Missing":
		return CategoryMissing
	case "WrongPicked":
		return CategoryWrongPicked
	case "TSP":
		return CategoryTSP
	case "MoreSkid":
		return CategoryMoreSkid
	case "NoProblem":
		return CategoryNoProblem
	default:
		return CategoryUnknown
	}
}
