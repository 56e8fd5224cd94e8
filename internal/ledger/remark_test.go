package ledger

import (
	"reflect"
	"testing"
)

func TestEncodeRemarkBothEmpty(t *testing.T) {
	if got := EncodeRemark(nil, nil); got != "?" {
		t.Fatalf("expected sentinel, got %q", got)
	}
}

func TestEncodeRemarkOrdersAndOmits(t *testing.T) {
	got := EncodeRemark(setOf("Bob", "Alice"), nil)
	if got != "Not Completed Yet (Alice, Bob)" {
		t.Fatalf("unexpected remark %q", got)
	}

	got = EncodeRemark(nil, setOf("Carol"))
	if got != "Good (Carol)" {
		t.Fatalf("unexpected remark %q", got)
	}

	got = EncodeRemark(setOf("Bob"), setOf("Alice", "Carol"))
	if got != "Not Completed Yet (Bob), Good (Alice, Carol)" {
		t.Fatalf("unexpected remark %q", got)
	}
}

func TestDecodeRemarkRoundTrip(t *testing.T) {
	cases := []struct {
		pending   []string
		confirmed []string
	}{
		{nil, nil},
		{[]string{"Alice"}, nil},
		{nil, []string{"Bob"}},
		{[]string{"Alice", "Bob"}, []string{"Carol"}},
		{[]string{"Dana"}, []string{"Alice", "Bob", "Carol"}},
	}
	for _, tc := range cases {
		pending, confirmed := setOf(tc.pending...), setOf(tc.confirmed...)
		gotPending, gotConfirmed := DecodeRemark(EncodeRemark(pending, confirmed))
		if !reflect.DeepEqual(gotPending, pending) {
			t.Errorf("pending %v: round trip gave %v", tc.pending, sortedMembers(gotPending))
		}
		if !reflect.DeepEqual(gotConfirmed, confirmed) {
			t.Errorf("confirmed %v: round trip gave %v", tc.confirmed, sortedMembers(gotConfirmed))
		}
	}
}

func TestDecodeRemarkMalformedInput(t *testing.T) {
	for _, remark := range []string{"", "?", "garbage", "Not Completed Yet (", "Good"} {
		pending, confirmed := DecodeRemark(remark)
		if len(pending) != 0 || len(confirmed) != 0 {
			t.Errorf("remark %q: expected empty sets, got %v / %v",
				remark, sortedMembers(pending), sortedMembers(confirmed))
		}
	}
}
