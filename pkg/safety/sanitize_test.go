package safety

import "testing"

func TestSanitizeField(t *testing.T) {
	tests := []struct {
		in          string
		want        string
		wantChanged bool
	}{
		{"bakery", "bakery", false},
		{"  home   services ", "home services", false},
		{"Food & Drink, Cafe", "Food & Drink, Cafe", false},
		{"plumbing 24/7", "plumbing", true},
		{"visit https://joes.example.com now", "visit now", true},
		{"contact joe@example.com", "contact", true},
		{"follow @joesplumbing", "follow", true},
		{"Joe's", "Joe s", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, changed := SanitizeField(tt.in)
			if got != tt.want {
				t.Errorf("SanitizeField(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if changed != tt.wantChanged {
				t.Errorf("SanitizeField(%q) changed = %v, want %v", tt.in, changed, tt.wantChanged)
			}
		})
	}
}

func TestColors(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
		norm  string
	}{
		{"#FFF", true, "#ffffff"},
		{"#1a2B3c", true, "#1a2b3c"},
		{"1a2b3c", false, ""},
		{"#12345", false, ""},
		{"red", false, ""},
	}
	for _, tt := range tests {
		if got := ValidColor(tt.in); got != tt.valid {
			t.Errorf("ValidColor(%q) = %v, want %v", tt.in, got, tt.valid)
		}
		if tt.valid {
			if got := NormalizeColor(tt.in); got != tt.norm {
				t.Errorf("NormalizeColor(%q) = %q, want %q", tt.in, got, tt.norm)
			}
		}
	}
}

func TestSanitizeLabel(t *testing.T) {
	tests := map[string]string{
		"Legal Hold!":     "legal_hold",
		"  brand-review ": "brand-review",
		"":                "",
		"***":             "",
		"Ünïcode only ßß": "n_code_only",
	}
	for in, want := range tests {
		if got := SanitizeLabel(in); got != want {
			t.Errorf("SanitizeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClaimsTestimonial(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"", false},
		{"Spring sale", false},
		{"Read our reviews", true},
		{"Five stars from locals", true},
		{`"Best pie in town"`, true},
		{"“Best pie in town”", true},
		{"Top rated service", true},
		{"New menu", false},
		{"Celebrated local chefs", false},
		{"5-star brunch", true},
	}
	for _, tt := range tests {
		if got := ClaimsTestimonial(tt.text); got != tt.want {
			t.Errorf("ClaimsTestimonial(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
