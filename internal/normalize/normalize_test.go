package normalize

import (
	"math"
	"testing"
)

func TestName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"uppercase folded", "BATATA", "batata"},
		{"diacritics stripped", "maçã", "maca"},
		{"punctuation removed", "café & açúcar", "cafeacucar"},
		{"parentheses and spaces", "leite (integral)", "leiteintegral"},
		{"digits kept", "Coca-Cola 2L", "cocacola2l"},
		{"emoji removed", "🍞 pão", "pao"},
		{"empty input", "", ""},
		{"only punctuation", "-- // !!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Name(tt.input); got != tt.expected {
				t.Errorf("Name(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestName_Idempotent(t *testing.T) {
	inputs := []string{"Batata Doce", "maçã", "café & açúcar", "", "Arroz 5kg"}

	for _, s := range inputs {
		once := Name(s)
		twice := Name(once)
		if once != twice {
			t.Errorf("Name not idempotent for %q: first %q, second %q", s, once, twice)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{"identical", "batata", "batata", 1},
		{"identical after normalization", "Maçã", "maca", 1},
		{"both empty", "", "", 1},
		{"one empty", "batata", "", 0},
		{"plural variation", "batata", "batatas", 6.0 / 7.0},
		{"extra qualifier", "batata", "batata doce", 6.0 / 10.0},
		{"different words", "arroz", "feijao", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %f, expected %f", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestSimilarity_SelfIsOne(t *testing.T) {
	inputs := []string{"batata", "Café com Leite", "a", "123", ""}

	for _, s := range inputs {
		if got := Similarity(s, s); got != 1 {
			t.Errorf("Similarity(%q, %q) = %f, expected 1", s, s, got)
		}
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"batata", "batata doce"},
		{"arroz", "feijao"},
		{"maçã", "maca verde"},
		{"", "leite"},
	}

	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("Similarity not symmetric for (%q, %q): %f vs %f", p[0], p[1], ab, ba)
		}
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"batata", "batatinha frita"},
		{"x", "yyyyyyyyyy"},
		{"acucar", "acucar mascavo"},
	}

	for _, p := range pairs {
		got := Similarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("Similarity(%q, %q) = %f, out of [0,1]", p[0], p[1], got)
		}
	}
}
