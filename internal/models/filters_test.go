package models

import "testing"

func TestParseBBox(t *testing.T) {
	t.Parallel()

	got, err := ParseBBox("14.4,46.0,14.6,46.1")
	if err != nil {
		t.Fatalf("ParseBBox: %v", err)
	}
	want := BBox{West: 14.4, South: 46.0, East: 14.6, North: 46.1}
	if got != want {
		t.Fatalf("ParseBBox=%+v want %+v", got, want)
	}

	// Components may carry spaces.
	if _, err := ParseBBox(" 14.4 , 46.0 , 14.6 , 46.1 "); err != nil {
		t.Fatalf("ParseBBox with spaces: %v", err)
	}
}

func TestParseBBoxRejects(t *testing.T) {
	t.Parallel()

	bad := []string{
		"",
		"14.4,46.0,14.6",
		"14.4,46.0,14.6,46.1,0",
		"a,46.0,14.6,46.1",
		"14.6,46.0,14.4,46.1", // west >= east
		"14.4,46.1,14.6,46.0", // south >= north
		"14.4,46.0,14.4,46.1", // zero width
	}
	for _, s := range bad {
		if _, err := ParseBBox(s); err == nil {
			t.Fatalf("ParseBBox(%q) expected error", s)
		}
	}
}
