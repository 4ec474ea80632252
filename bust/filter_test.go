package bust

import (
	"testing"
)

func TestIsEligible(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"img/a.png", true},
		{"../img/a.png", true},
		{"/img/a.png", true},
		{"a.png?x=1#y", true},
		{"http://cdn.example.com/a.png", false},
		{"HTTPS://cdn.example.com/a.png", false},
		{"//cdn.example.com/a.png", false},
		{"data:image/png;base64,AAAA", false},
		{"image/png;base64,AAAA", false},
		{"about:blank", false},
	}
	for _, tt := range tests {
		ref, err := ParseReference(tt.ref)
		if err != nil {
			t.Fatalf("ParseReference(%q) error = %v", tt.ref, err)
		}
		if got := IsEligible(ref); got != tt.want {
			t.Errorf("IsEligible(%q) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}
