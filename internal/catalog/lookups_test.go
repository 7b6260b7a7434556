package catalog

import "testing"

func TestLookups_ResolveTrimsWhitespace(t *testing.T) {
	lk := NewLookups()
	lk.Add(LookupUnit, "Oficina Jurídica", Entry{ID: 7, Code: "100"})

	e, ok := lk.Resolve(LookupUnit, "  Oficina Jurídica ")
	if !ok {
		t.Fatal("expected name to resolve after trimming")
	}
	if e.ID != 7 || e.Code != "100" {
		t.Errorf("Resolve() = %+v, want ID 7 code 100", e)
	}
}

func TestLookups_ResolveIsCaseSensitive(t *testing.T) {
	lk := NewLookups()
	lk.Add(LookupUnit, "Oficina Jurídica", Entry{ID: 7})

	if _, ok := lk.Resolve(LookupUnit, "oficina jurídica"); ok {
		t.Error("lowercase variant should not resolve")
	}
}

func TestLookups_UnknownKindAndName(t *testing.T) {
	lk := NewLookups()

	if _, ok := lk.Resolve(LookupRole, "Administrador"); ok {
		t.Error("empty lookups should resolve nothing")
	}

	lk.Add(LookupRole, "Administrador", Entry{ID: 1})
	if _, ok := lk.Resolve(LookupRole, "Consulta"); ok {
		t.Error("unregistered name should not resolve")
	}
}

func TestLookups_NamesPreserveOrder(t *testing.T) {
	lk := NewLookups()
	lk.Add(LookupSeries, "01 - Actas", Entry{ID: 1, Code: "01"})
	lk.Add(LookupSeries, "02 - Circulares", Entry{ID: 2, Code: "02"})
	lk.Add(LookupSeries, "01 - Actas", Entry{ID: 1, Code: "01"}) // re-add must not duplicate

	names := lk.Names(LookupSeries)
	want := []string{"01 - Actas", "02 - Circulares"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestLookups_AliasResolvesButIsNotListed(t *testing.T) {
	lk := NewLookups()
	e := Entry{ID: 3, ParentID: 1, Code: "01"}
	lk.Add(LookupSubseries, "01 - Actas de Junta", e)
	lk.AddAlias(LookupSubseries, "Actas de Junta", e)

	if got, ok := lk.Resolve(LookupSubseries, "Actas de Junta"); !ok || got.ID != 3 {
		t.Errorf("alias should resolve, got %+v ok=%v", got, ok)
	}
	if len(lk.Names(LookupSubseries)) != 1 {
		t.Errorf("alias must not appear in Names(): %v", lk.Names(LookupSubseries))
	}
}
