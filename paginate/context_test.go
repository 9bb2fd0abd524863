package paginate

import (
	"errors"
	"testing"
)

func TestNewContext_Validation(t *testing.T) {
	if _, err := NewContext("T", "A", "Times", 0, Recto); !errors.Is(err, ErrInvalidStartPage) {
		t.Errorf("start 0: err = %v", err)
	}
	if _, err := NewContext("T", "A", "Times", -3, Recto); !errors.Is(err, ErrInvalidStartPage) {
		t.Errorf("start -3: err = %v", err)
	}
	if _, err := NewContext("T", "A", "  ", 1, Recto); !errors.Is(err, ErrInvalidFont) {
		t.Errorf("blank font: err = %v", err)
	}
	c, err := NewContext("T", "A", "Times", 1, Verso)
	if err != nil {
		t.Fatalf("valid context: %v", err)
	}
	if c.StartPage != 1 || c.FirstPage != Verso {
		t.Errorf("got %+v", c)
	}
}

func TestParseOrientation(t *testing.T) {
	tests := []struct {
		in      string
		want    Orientation
		wantErr bool
	}{
		{"", Recto, false},
		{"right", Recto, false},
		{"RECTO", Recto, false},
		{"left", Verso, false},
		{" verso ", Verso, false},
		{"up", Recto, true},
	}
	for _, tt := range tests {
		got, err := ParseOrientation(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOrientation(%q) err = %v", tt.in, err)
			continue
		}
		if err != nil && !errors.Is(err, ErrInvalidOrientation) {
			t.Errorf("ParseOrientation(%q) err = %v, want ErrInvalidOrientation", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseOrientation(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestContextNext(t *testing.T) {
	c, _ := NewContext("T", "A", "Times", 15, Recto)

	even := c.Next(4)
	if even.StartPage != 19 || even.FirstPage != Recto {
		t.Errorf("Next(4) = %+v", even)
	}
	odd := c.Next(3)
	if odd.StartPage != 18 || odd.FirstPage != Verso {
		t.Errorf("Next(3) = %+v", odd)
	}

	// The page after the chapter must sit on the side the chapter's own
	// alternation would have given it.
	after := Decide(c, 3)
	if after.Role != VersoPage {
		t.Fatalf("offset 3 role = %v", after.Role)
	}
	if odd.FirstPage != Verso {
		t.Errorf("chapter following offset 3 should start verso, got %v", odd.FirstPage)
	}
}
