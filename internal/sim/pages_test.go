package sim_test

import (
	"testing"

	"simdb/internal/sim"
)

func pageList(values ...string) []sim.PageDescriptor {
	pages := make([]sim.PageDescriptor, 0, len(values))
	for _, v := range values {
		pages = append(pages, sim.PageDescriptor{PageNumber: v})
	}
	return pages
}

func TestPageRange(t *testing.T) {
	cases := []struct {
		name  string
		pages []sim.PageDescriptor
		first *int
		last  *int
	}{
		{"mixed numeric and roman", pageList("12", "ii", "14"), intp(12), intp(14)},
		{"roman only", pageList("ii", "iv"), nil, nil},
		{"empty values", pageList("", "", ""), nil, nil},
		{"no pages", nil, nil, nil},
		{"single page", pageList("7"), intp(7), intp(7)},
		{"unordered", pageList("120", "3", "45"), intp(3), intp(120)},
		{"signed not numeric", pageList("-4", "+2", "9"), intp(9), intp(9)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			first, last := sim.PageRange(tc.pages)
			if !intPEqual(first, tc.first) {
				t.Fatalf("first: expected %v, got %v", fmtIntP(tc.first), fmtIntP(first))
			}
			if !intPEqual(last, tc.last) {
				t.Fatalf("last: expected %v, got %v", fmtIntP(tc.last), fmtIntP(last))
			}
		})
	}
}

func intp(v int) *int { return &v }

func intPEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtIntP(v *int) any {
	if v == nil {
		return "<nil>"
	}
	return *v
}
