package records

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Resolución de Apertura 2026", "resolucion-de-apertura-2026"},
		{"Designación de función", "designacion-de-funcion"},
		{"  Acta   No. 5  ", "acta-no-5"},
		{"UPPER lower 123", "upper-lower-123"},
		{"", ""},
		{"---", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNullableID(t *testing.T) {
	if got := nullableID(0); got != nil {
		t.Errorf("nullableID(0) = %v, want nil", got)
	}
	got := nullableID(42)
	if got == nil || *got != 42 {
		t.Errorf("nullableID(42) = %v, want pointer to 42", got)
	}
}
