package beauty

import "testing"

func TestKeysOrder(t *testing.T) {
	keys := Keys()
	if len(keys) != 15 {
		t.Fatalf("expected 15 keys, got %d", len(keys))
	}
	if keys[0] != Whiten || keys[1] != Dermabrasion || keys[14] != Usm {
		t.Fatalf("unexpected order: %v", keys)
	}
	keys[0] = Nose
	if Keys()[0] != Whiten {
		t.Fatal("Keys must return a copy")
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
	}{
		{"whiten", Whiten},
		{"darkCircle", DarkCircle},
		{"dark_circle", DarkCircle},
		{"EYE_BRIGHTNESS", EyeBrightness},
		{" nasolabial-folds ", NasolabialFolds},
	}
	for _, tt := range tests {
		got, err := ParseKey(tt.in)
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseKey(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"", "tan", "eyes"} {
		if _, err := ParseKey(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestLabels(t *testing.T) {
	tests := map[Key]string{
		Dermabrasion:  "Smooth",
		Eye:           "Big eyes",
		Usm:           "Sharpness",
		Whiten:        "Whiten",
		DarkCircle:    "Dark Circle",
		EyeBrightness: "Eye Brightness",
	}
	for k, want := range tests {
		if got := k.Label(); got != want {
			t.Fatalf("%s.Label() = %q, want %q", k, got, want)
		}
	}
	if DarkCircle.Snake() != "dark_circle" {
		t.Fatalf("unexpected snake form %q", DarkCircle.Snake())
	}
}

func TestGroupsCoverEveryKey(t *testing.T) {
	seen := map[Key]int{}
	for _, g := range Groups() {
		for _, k := range g.Keys {
			seen[k]++
		}
	}
	for _, k := range Keys() {
		if seen[k] != 1 {
			t.Fatalf("key %s appears %d times in groups", k, seen[k])
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-1) != 0 || Clamp(101) != 100 || Clamp(42) != 42 {
		t.Fatal("unexpected clamp results")
	}
}
