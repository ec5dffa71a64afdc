package security

import "testing"

func TestSanitize(t *testing.T) {
	s := NewContentSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text unchanged", "A marketplace for leftover construction materials.", "A marketplace for leftover construction materials."},
		{"strips tags", "<b>Bold</b> idea for a <i>startup</i>", "Bold idea for a startup"},
		{"removes script", `An idea<script>alert("x")</script> with script`, "An idea with script"},
		{"decodes entities", "Uber &amp; Lyft but for boats", "Uber & Lyft but for boats"},
		{"trims whitespace", "  padded idea  ", "padded idea"},
		{"empty input", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// 冪等性: サニタイズ済みの出力を再度サニタイズしても変わらない
func TestSanitize_Idempotent(t *testing.T) {
	s := NewContentSanitizer()

	input := `<p>An app that <strong>matches</strong> tutors &amp; students</p>`
	once := s.Sanitize(input)
	twice := s.Sanitize(once)
	if once != twice {
		t.Errorf("Sanitize is not idempotent: %q != %q", once, twice)
	}
}
