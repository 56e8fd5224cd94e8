package ledger

import "testing"

func TestOverlapTagsCrossCategory(t *testing.T) {
	rows := []ProblemRecord{
		{Code: "Y0000000000000", Category: CategoryMissing},
		{Code: "X0000000000000", Category: CategoryMissing}, // row #2 in Missing
		{Code: "X0000000000000", Category: CategoryTSP},     // row #1 in TSP
	}

	tags := OverlapTags(rows)
	if tags[0] != "" {
		t.Fatalf("lone code should have no tag, got %q", tags[0])
	}
	if tags[1] != "(T1)" {
		t.Fatalf("Missing-bucket tag: got %q, want (T1)", tags[1])
	}
	if tags[2] != "(M2)" {
		t.Fatalf("TSP-bucket tag: got %q, want (M2)", tags[2])
	}
}

func TestOverlapTagsMultipleBucketsOrdered(t *testing.T) {
	rows := []ProblemRecord{
		{Code: "X0000000000000", Category: CategoryWrongPicked},
		{Code: "X0000000000000", Category: CategoryMissing},
		{Code: "X0000000000000", Category: CategoryMoreSkid},
	}

	tags := OverlapTags(rows)
	// Entries follow the fixed bucket order M, W, T, S, N.
	if tags[0] != "(M1, S1)" {
		t.Fatalf("got %q, want (M1, S1)", tags[0])
	}
	if tags[1] != "(W1, S1)" {
		t.Fatalf("got %q, want (W1, S1)", tags[1])
	}
	if tags[2] != "(M1, W1)" {
		t.Fatalf("got %q, want (M1, W1)", tags[2])
	}
}

func TestOverlapTagsOrdinalsFollowInsertionOrder(t *testing.T) {
	rows := []ProblemRecord{
		{Code: "A0000000000000", Category: CategoryMissing},
		{Code: "B0000000000000", Category: CategoryMissing},
		{Code: "C0000000000000", Category: CategoryMissing},
		{Code: "C0000000000000", Category: CategoryTSP},
	}

	tags := OverlapTags(rows)
	if tags[3] != "(M3)" {
		t.Fatalf("ordinal should be insertion position in bucket: got %q", tags[3])
	}
}
