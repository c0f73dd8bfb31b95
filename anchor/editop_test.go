package anchor

import "testing"

// applyOp reconstructs the new text from the old text plus a derived op,
// using newText only to recover the inserted characters.
func applyOp(oldText, newText string, op EditOp) string {
	inserted := newText[op.At : op.At+op.InsertLen]
	return oldText[:op.At] + inserted + oldText[op.At+op.DeleteLen:]
}

func TestDeriveEditOps(t *testing.T) {
	tests := []struct {
		name     string
		oldText  string
		newText  string
		want     *EditOp // nil means no ops expected
	}{
		{"identical", "hello", "hello", nil},
		{"both empty", "", "", nil},
		{"insert at start", "hello world", "well hello world", &EditOp{0, 0, 5}},
		{"insert at end", "ab", "abc", &EditOp{2, 0, 1}},
		{"insert in middle", "hello world", "hello brave world", &EditOp{6, 0, 6}},
		{"insert into empty", "", "hi", &EditOp{0, 0, 2}},
		{"delete all", "hi", "", &EditOp{0, 2, 0}},
		{"delete span", "hello world", "hello ", &EditOp{6, 5, 0}},
		{"replace inside", "hello world", "hello worLd", &EditOp{9, 1, 1}},
		{"replace grows", "hello world", "hello mars and venus", &EditOp{6, 5, 14}},
		{"repeated char append", "aa", "aaa", &EditOp{2, 0, 1}},
		{"repeated char delete", "aaa", "aa", &EditOp{2, 1, 0}},
		// Two disjoint edits collapse into one spanning op.
		{"disjoint edits collapse", "abcdef", "aXcdeYf", &EditOp{1, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := DeriveEditOps(tt.oldText, tt.newText)
			if tt.want == nil {
				if len(ops) != 0 {
					t.Fatalf("got %d ops, want none: %+v", len(ops), ops)
				}
				return
			}
			if len(ops) != 1 {
				t.Fatalf("got %d ops, want 1", len(ops))
			}
			if ops[0] != *tt.want {
				t.Errorf("op = %+v, want %+v", ops[0], *tt.want)
			}
		})
	}
}

// TestDeriveEditOps_RoundTrip checks that applying the derived op to the old
// text reproduces the new text exactly.
func TestDeriveEditOps_RoundTrip(t *testing.T) {
	pairs := [][2]string{
		{"", ""},
		{"", "abc"},
		{"abc", ""},
		{"hello world", "well hello world"},
		{"hello world", "hello worLd"},
		{"hello world", "hello "},
		{"aaaa", "aa"},
		{"aa", "aaaa"},
		{"abab", "ababab"},
		{"the quick brown fox", "the slow brown fox"},
		{"xyz", "zyx"},
	}
	for _, p := range pairs {
		ops := DeriveEditOps(p[0], p[1])
		got := p[0]
		for _, op := range ops {
			got = applyOp(got, p[1], op)
		}
		if got != p[1] {
			t.Errorf("round trip %q -> %q: got %q (ops %+v)", p[0], p[1], got, ops)
		}
	}
}
