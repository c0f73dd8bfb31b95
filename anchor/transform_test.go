package anchor

import "testing"

func TestTransformOffset(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		aff    Affinity
		op     EditOp
		want   int
	}{
		// Before the edit: untouched.
		{"before insert", 2, AffinityBefore, EditOp{5, 0, 3}, 2},
		{"before delete", 2, AffinityAfter, EditOp{5, 2, 0}, 2},

		// Exactly at a pure insertion point: affinity decides.
		{"at insert, before-affine stays", 5, AffinityBefore, EditOp{5, 0, 3}, 5},
		{"at insert, after-affine moves", 5, AffinityAfter, EditOp{5, 0, 3}, 8},
		// Replacement at the offset is not a pure insertion; no tie-break.
		{"at replace, after-affine stays", 5, AffinityAfter, EditOp{5, 2, 3}, 5},

		// Past the deleted span: shifted by the net delta.
		{"past insert", 7, AffinityBefore, EditOp{5, 0, 3}, 10},
		{"past delete", 9, AffinityBefore, EditOp{5, 2, 0}, 7},
		{"past replace", 9, AffinityAfter, EditOp{5, 2, 3}, 10},
		{"at delete end", 7, AffinityBefore, EditOp{5, 2, 0}, 5},

		// Strictly inside the deleted span: collapses to the edit start.
		{"inside delete", 6, AffinityBefore, EditOp{5, 3, 0}, 5},
		{"inside replace", 7, AffinityAfter, EditOp{5, 3, 1}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TransformOffset(tt.offset, tt.aff, tt.op); got != tt.want {
				t.Errorf("TransformOffset(%d, %s, %+v) = %d, want %d",
					tt.offset, tt.aff, tt.op, got, tt.want)
			}
		})
	}
}

// TestTransformOffset_Monotonic checks that ordering of offsets survives
// transformation under the same op and affinity.
func TestTransformOffset_Monotonic(t *testing.T) {
	ops := []EditOp{
		{0, 0, 4},
		{3, 0, 2},
		{3, 5, 0},
		{3, 5, 2},
		{10, 1, 1},
	}
	for _, op := range ops {
		for _, aff := range []Affinity{AffinityBefore, AffinityAfter} {
			prev := -1
			for offset := 0; offset <= 20; offset++ {
				got := TransformOffset(offset, aff, op)
				if got < prev {
					t.Errorf("monotonicity broken at offset %d (aff %s, op %+v): %d < %d",
						offset, aff, op, got, prev)
				}
				prev = got
			}
		}
	}
}
