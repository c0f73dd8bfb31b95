package anchor

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	const content = "hello world"

	tests := []struct {
		name     string
		from, to int
		rev      int
		wantErr  bool
	}{
		{"valid range", 6, 11, 3, false},
		{"whole content", 0, 11, 0, false},
		{"single char", 0, 1, 0, false},
		{"negative from", -1, 5, 0, true},
		{"zero width", 4, 4, 0, true},
		{"inverted", 7, 3, 0, true},
		{"past end", 6, 12, 0, true},
		{"empty content", 0, 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := content
			if tt.name == "empty content" {
				c = ""
			}
			a, err := New(c, tt.from, tt.to, tt.rev)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRange) {
					t.Fatalf("err = %v, want ErrInvalidRange", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if a.From != tt.from || a.To != tt.to || a.Rev != tt.rev {
				t.Errorf("anchor = %+v, want from=%d to=%d rev=%d", a, tt.from, tt.to, tt.rev)
			}
			if a.Quote != c[tt.from:tt.to] {
				t.Errorf("Quote = %q, want %q", a.Quote, c[tt.from:tt.to])
			}
			if a.QuoteHash != Hash(a.Quote) {
				t.Errorf("QuoteHash = %q, want Hash(Quote) = %q", a.QuoteHash, Hash(a.Quote))
			}
			if a.StartAffinity != AffinityAfter || a.EndAffinity != AffinityBefore {
				t.Errorf("affinities = %s/%s, want after/before", a.StartAffinity, a.EndAffinity)
			}
		})
	}
}

func TestNew_ClampsNegativeRev(t *testing.T) {
	a, err := New("hello", 0, 5, -3)
	if err != nil {
		t.Fatal(err)
	}
	if a.Rev != 0 {
		t.Errorf("Rev = %d, want 0", a.Rev)
	}
}

func TestUniqueMatchRange(t *testing.T) {
	tests := []struct {
		name    string
		content string
		text    string
		want    Range
		ok      bool
	}{
		{"unique match", "hello world", "world", Range{6, 11}, true},
		{"match at start", "hello world", "hello", Range{0, 5}, true},
		{"whole content", "hello", "hello", Range{0, 5}, true},
		{"no match", "hello world", "mars", Range{}, false},
		{"two matches", "hello hello", "hello", Range{}, false},
		{"overlapping matches", "aaa", "aa", Range{}, false},
		{"empty search text", "hello", "", Range{}, false},
		{"empty content", "", "x", Range{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := UniqueMatchRange(tt.content, tt.text)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("range = %+v, want %+v", got, tt.want)
			}
		})
	}
}
