package paginate

import (
	"context"
	"errors"
	"testing"
)

func mustContext(t *testing.T, start int, first Orientation) Context {
	t.Helper()
	c, err := NewContext("Gita", "Vyasa", "Times", start, first)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return c
}

func TestDecide_GitaScenario(t *testing.T) {
	c := mustContext(t, 15, Recto)

	tests := []struct {
		offset int
		want   Decision
	}{
		{0, Decision{PageNumber: 15, Role: ChapterFirstPage, NumberText: "15", NumberAnchor: Center, Band: Footer, Font: "Times", FontSize: FontSize}},
		{1, Decision{PageNumber: 16, Role: VersoPage, Header: "Vyasa", NumberText: "16", NumberAnchor: Left, Band: Header, Font: "Times", FontSize: FontSize}},
		{2, Decision{PageNumber: 17, Role: RectoPage, Header: "Gita", NumberText: "17", NumberAnchor: Right, Band: Header, Font: "Times", FontSize: FontSize}},
	}

	for _, tt := range tests {
		got := Decide(c, tt.offset)
		if got != tt.want {
			t.Errorf("Decide(offset %d) = %+v, want %+v", tt.offset, got, tt.want)
		}
	}
}

func TestDecide_FirstPageIgnoresOrientation(t *testing.T) {
	for _, o := range []Orientation{Recto, Verso} {
		for _, start := range []int{1, 2, 15, 100} {
			d := Decide(mustContext(t, start, o), 0)
			if d.Role != ChapterFirstPage {
				t.Errorf("start %d %v: role = %v, want %v", start, o, d.Role, ChapterFirstPage)
			}
			if d.Header != "" {
				t.Errorf("start %d %v: unexpected header %q", start, o, d.Header)
			}
			if d.Band != Footer || d.NumberAnchor != Center {
				t.Errorf("start %d %v: got %v/%v, want footer/center", start, o, d.Band, d.NumberAnchor)
			}
		}
	}
}

func TestDecide_StrictAlternation(t *testing.T) {
	for _, o := range []Orientation{Recto, Verso} {
		for _, start := range []int{1, 2, 7, 8} {
			c := mustContext(t, start, o)
			prev := Decide(c, 1).Role
			if prev != RectoPage && prev != VersoPage {
				t.Fatalf("offset 1: role %v", prev)
			}
			for off := 2; off < 40; off++ {
				role := Decide(c, off).Role
				if role != RectoPage && role != VersoPage {
					t.Fatalf("offset %d: role %v", off, role)
				}
				if role == prev {
					t.Fatalf("start %d %v: offsets %d and %d are both %v", start, o, off-1, off, role)
				}
				prev = role
			}
		}
	}
}

func TestDecide_VersoFlipsSides(t *testing.T) {
	recto := mustContext(t, 15, Recto)
	verso := mustContext(t, 15, Verso)

	for off := 1; off < 10; off++ {
		a, b := Decide(recto, off), Decide(verso, off)
		if a.Role == b.Role {
			t.Errorf("offset %d: both orientations gave %v", off, a.Role)
		}
		if a.PageNumber != b.PageNumber {
			t.Errorf("offset %d: page numbers differ %d vs %d", off, a.PageNumber, b.PageNumber)
		}
	}

	d := Decide(verso, 1)
	if d.Role != RectoPage || d.Header != "Gita" || d.NumberAnchor != Right {
		t.Errorf("verso chapter offset 1 = %+v, want recto with title on the right", d)
	}
}

func TestDecide_NegativeOffsetPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for negative offset")
		}
	}()
	Decide(mustContext(t, 1, Recto), -1)
}

func TestPlan(t *testing.T) {
	c := mustContext(t, 15, Recto)

	for _, n := range []int{1, 2, 3, 17, 250} {
		got, err := Plan(context.Background(), c, n)
		if err != nil {
			t.Fatalf("Plan(%d): %v", n, err)
		}
		if len(got) != n {
			t.Fatalf("Plan(%d) returned %d decisions", n, len(got))
		}
		for i, d := range got {
			if d != Decide(c, i) {
				t.Fatalf("Plan(%d)[%d] = %+v, want %+v", n, i, d, Decide(c, i))
			}
		}
	}
}

func TestPlan_InvalidPageCount(t *testing.T) {
	c := mustContext(t, 1, Recto)
	for _, n := range []int{0, -1, -20} {
		if _, err := Plan(context.Background(), c, n); !errors.Is(err, ErrInvalidPageCount) {
			t.Errorf("Plan(%d) err = %v, want ErrInvalidPageCount", n, err)
		}
	}
}

func TestPlan_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Plan(ctx, mustContext(t, 1, Recto), 10); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDecisionGeometry(t *testing.T) {
	const w, h = 595.28, 841.89
	c := mustContext(t, 15, Recto)

	first := Decide(c, 0)
	if got := first.Baseline(h); got != h-FooterBaseline {
		t.Errorf("footer baseline = %v", got)
	}
	if got := first.NumberX(w, 10); got != (w-10)/2 {
		t.Errorf("centered number x = %v", got)
	}

	verso := Decide(c, 1)
	if got := verso.Baseline(h); got != HeaderBaseline {
		t.Errorf("header baseline = %v", got)
	}
	if got := verso.NumberX(w, 10); got != NumberGap {
		t.Errorf("verso number x = %v, want %v", got, NumberGap)
	}

	recto := Decide(c, 2)
	if got := recto.NumberX(w, 10); got != w-NumberGap-10 {
		t.Errorf("recto number x = %v, want %v", got, w-NumberGap-10)
	}
	if got := recto.HeaderX(w, 40); got != (w-40)/2 {
		t.Errorf("header x = %v", got)
	}
}
