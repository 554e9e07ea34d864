package api

import "testing"

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hi", "hi"},
		{"Hindi", "hi"},
		{"HINDI", "hi"},
		{"bengali", "bn"},
		{"beng", "bn"}, // partial name match
		{"ta", "ta"},
		{"", "en"},
		{"klingon", "en"}, // unknown defaults to English
	}
	for _, tt := range tests {
		if got := LanguageCode(tt.input); got != tt.want {
			t.Errorf("LanguageCode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLanguagesCatalog(t *testing.T) {
	langs := Languages()
	if len(langs) != 16 {
		t.Fatalf("Languages() returned %d entries, want 16", len(langs))
	}

	seen := make(map[string]struct{}, len(langs))
	for _, l := range langs {
		if l.Code == "" || l.Name == "" {
			t.Errorf("incomplete language entry %+v", l)
		}
		if _, dup := seen[l.Code]; dup {
			t.Errorf("duplicate language code %q", l.Code)
		}
		seen[l.Code] = struct{}{}
	}
}
