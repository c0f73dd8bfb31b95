package anchor

import "testing"

// commentAt builds an attached comment anchored to content[from:to] at rev.
func commentAt(t *testing.T, content string, from, to, rev int) Comment {
	t.Helper()
	a, err := New(content, from, to, rev)
	if err != nil {
		t.Fatalf("New(%q, %d, %d, %d): %v", content, from, to, rev, err)
	}
	return Comment{ID: "c1", Author: "tester", Body: "note", Status: StatusAttached, Anchor: a}
}

func TestRemapComments(t *testing.T) {
	const base = "hello world"

	tests := []struct {
		name       string
		newContent string
		wantFrom   int
		wantTo     int
		wantStatus Status
	}{
		// Insert before the anchor shifts it without touching it.
		{"insert before", "well hello world", 11, 16, StatusAttached},
		// Replace inside the anchor keeps offsets but flags drift.
		{"replace inside", "hello worLd", 6, 11, StatusStale},
		// Deleting the whole anchored span collapses and detaches.
		{"anchored span deleted", "hello ", 6, 6, StatusDetached},
		// Insert after the anchor leaves everything alone.
		{"insert after", "hello world!", 6, 11, StatusAttached},
		// Insert exactly at the anchor end stays outside (end=before).
		{"insert at end boundary", "hello worlds", 6, 11, StatusAttached},
		// Insert strictly inside grows the anchor and flags drift.
		{"insert inside", "hello woorld", 6, 12, StatusStale},
		// Delete overlapping the anchor start pulls from to the edit.
		{"delete across start", "helloorld", 5, 9, StatusStale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments := []Comment{commentAt(t, base, 6, 11, 4)}
			got, nextRev := RemapComments(comments, base, tt.newContent, 4)
			if nextRev != 5 {
				t.Errorf("nextRev = %d, want 5", nextRev)
			}
			c := got[0]
			if c.Anchor.From != tt.wantFrom || c.Anchor.To != tt.wantTo {
				t.Errorf("anchor = [%d,%d), want [%d,%d)",
					c.Anchor.From, c.Anchor.To, tt.wantFrom, tt.wantTo)
			}
			if c.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", c.Status, tt.wantStatus)
			}
			if c.Anchor.Rev != 5 {
				t.Errorf("anchor rev = %d, want 5", c.Anchor.Rev)
			}
			if c.Anchor.Quote != "world" || c.Anchor.QuoteHash != Hash("world") {
				t.Errorf("quote pair rewritten by remap: %q / %q", c.Anchor.Quote, c.Anchor.QuoteHash)
			}
		})
	}
}

func TestRemapComments_NoComments(t *testing.T) {
	got, nextRev := RemapComments(nil, "a", "b", 7)
	if len(got) != 0 || nextRev != 7 {
		t.Errorf("got %d comments, rev %d; want 0 comments, rev 7", len(got), nextRev)
	}
}

func TestRemapComments_IdenticalContent(t *testing.T) {
	comments := []Comment{commentAt(t, "hello world", 6, 11, 2)}
	got, nextRev := RemapComments(comments, "hello world", "hello world", 2)
	if nextRev != 2 {
		t.Errorf("nextRev = %d, want 2", nextRev)
	}
	if got[0].Anchor.Rev != 2 || got[0].Status != StatusAttached {
		t.Errorf("comment changed on no-op edit: %+v", got[0])
	}
}

// A stale comment must not recover to attached just because a later edit
// misses its anchor.
func TestRemapComments_StatusOnlyDegrades(t *testing.T) {
	c := commentAt(t, "hello world", 6, 11, 1)
	c.Status = StatusStale

	got, _ := RemapComments([]Comment{c}, "hello world", "hello world!!", 1)
	if got[0].Status != StatusStale {
		t.Errorf("status = %s, want stale preserved", got[0].Status)
	}

	c.Status = StatusDetached
	got, _ = RemapComments([]Comment{c}, "hello world", "hello world!!", 1)
	if got[0].Status != StatusDetached {
		t.Errorf("status = %s, want detached preserved", got[0].Status)
	}
}

func TestRemapComments_MultipleComments(t *testing.T) {
	const base = "one TWO three"
	comments := []Comment{
		commentAt(t, base, 0, 3, 0),  // "one"
		commentAt(t, base, 4, 7, 0),  // "TWO"
		commentAt(t, base, 8, 13, 0), // "three"
	}
	// Delete "TWO " -> "one three"
	got, nextRev := RemapComments(comments, base, "one three", 0)
	if nextRev != 1 {
		t.Fatalf("nextRev = %d, want 1", nextRev)
	}
	if got[0].Anchor.From != 0 || got[0].Anchor.To != 3 || got[0].Status != StatusAttached {
		t.Errorf("first comment: %+v", got[0])
	}
	if got[1].Anchor.From != got[1].Anchor.To || got[1].Status != StatusDetached {
		t.Errorf("second comment should detach: %+v", got[1])
	}
	if got[2].Anchor.From != 4 || got[2].Anchor.To != 9 || got[2].Status != StatusAttached {
		t.Errorf("third comment: %+v", got[2])
	}
}
