package shortener

import "testing"

func TestOwnerMayModify(t *testing.T) {
	tests := []struct {
		name      string
		linkOwner string
		caller    string
		want      bool
	}{
		{"unowned link, anonymous caller", "", "", true},
		{"unowned link, any caller", "", "someone@example.com", true},
		{"owned link, matching caller", "me@example.com", "me@example.com", true},
		{"owned link, different caller", "me@example.com", "you@example.com", false},
		{"owned link, anonymous caller", "me@example.com", "", false},
		{"tags compare case-sensitively", "Me@example.com", "me@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ownerMayModify(tt.linkOwner, tt.caller); got != tt.want {
				t.Errorf("ownerMayModify(%q, %q) = %v, want %v", tt.linkOwner, tt.caller, got, tt.want)
			}
		})
	}
}
