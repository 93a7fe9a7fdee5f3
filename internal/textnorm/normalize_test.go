package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercases", "High FEVER", "high fever"},
		{"strips brackets", "Fever [citation 12] and chills", "fever and chills"},
		{"non greedy", "a [x] b [y] c", "a b c"},
		{"unclosed bracket kept", "rash [unclosed", "rash [unclosed"},
		{"collapses whitespace", "  itching\t\tskin \n rash  ", "itching skin rash"},
		{"only annotation", "[1]", ""},
		{"multiline annotation", "fever [note\nline] chills", "fever chills"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Fever [citation 12] and chills",
		"[[nested]] ]odd[ text [",
		"  MIXED   Case\tInput ",
		"a[b[c]d]e",
		"fever [note\nline] chills",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	in := "Chest Pain [2] Shortness of  Breath"
	assert.Equal(t, Normalize(in), Normalize(in))
}

func TestNormalizeValue(t *testing.T) {
	s := " Cough "
	var nilStr *string

	assert.Equal(t, "cough", NormalizeValue(s))
	assert.Equal(t, "cough", NormalizeValue(&s))
	assert.Equal(t, "", NormalizeValue(nil))
	assert.Equal(t, "", NormalizeValue(42))
	assert.Equal(t, "", NormalizeValue(3.5))
	assert.Equal(t, "", NormalizeValue(nilStr))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Fungal Infection", Title("fungal infection"))
	assert.Equal(t, "Heart Disease", Title("heart disease"))
	assert.Equal(t, "", Title(""))
}
