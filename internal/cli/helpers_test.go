package cli

import "testing"

func TestParseVariantSpec(t *testing.T) {
	tests := []struct {
		spec      string
		wantName  string
		wantSplit float64
		wantErr   bool
	}{
		{"Control=50", "Control", 50, false},
		{"New Layout=33.4", "New Layout", 33.4, false},
		{"name=with=equals=25", "name=with=equals", 25, false},
		{"Control", "", 0, true},
		{"=50", "", 0, true},
		{"Control=", "", 0, true},
		{"Control=abc", "", 0, true},
	}

	for _, tt := range tests {
		name, split, err := parseVariantSpec(tt.spec)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseVariantSpec(%q): expected error", tt.spec)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseVariantSpec(%q): %v", tt.spec, err)
			continue
		}
		if name != tt.wantName || split != tt.wantSplit {
			t.Errorf("parseVariantSpec(%q) = %q, %v", tt.spec, name, split)
		}
	}
}

func TestParseConfigSpec(t *testing.T) {
	variant, key, value, err := parseConfigSpec("Treatment:new_checkout=true")
	if err != nil {
		t.Fatalf("parseConfigSpec: %v", err)
	}
	if variant != "Treatment" || key != "new_checkout" || value != true {
		t.Fatalf("got %q %q %v", variant, key, value)
	}

	_, _, value, err = parseConfigSpec("Control:max_items=25")
	if err != nil {
		t.Fatalf("parseConfigSpec: %v", err)
	}
	if value != 25.0 {
		t.Fatalf("numeric value = %v (%T)", value, value)
	}

	_, _, value, err = parseConfigSpec("Control:theme=dark")
	if err != nil {
		t.Fatalf("parseConfigSpec: %v", err)
	}
	if value != "dark" {
		t.Fatalf("string value = %v", value)
	}

	for _, bad := range []string{"no-colon=1", ":key=1", "Variant:=1", "Variant:key="} {
		if _, _, _, err := parseConfigSpec(bad); err == nil {
			t.Errorf("parseConfigSpec(%q): expected error", bad)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList("small, medium ,large")
	if len(got) != 3 || got[0] != "small" || got[1] != "medium" || got[2] != "large" {
		t.Fatalf("splitList = %v", got)
	}
	if splitList("") != nil {
		t.Fatal("empty input should yield nil")
	}
}
