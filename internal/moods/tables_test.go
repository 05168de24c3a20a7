package moods

import (
	"reflect"
	"testing"
)

func TestLookup(t *testing.T) {
	p, ok := Lookup("Energetic")
	if !ok {
		t.Fatal("Lookup(Energetic) not found")
	}
	if p.Energy != 0.9 || p.Tempo != (TempoRange{Min: 140, Max: 180}) {
		t.Errorf("Lookup(Energetic) = %+v", p)
	}

	if _, ok := Lookup("bored"); ok {
		t.Error("Lookup(bored) should not be found")
	}
}

func TestTablesComplete(t *testing.T) {
	if len(Moods()) != 10 {
		t.Errorf("len(Moods()) = %d, want 10", len(Moods()))
	}
	for _, m := range Moods() {
		p, ok := Lookup(m)
		if !ok {
			t.Errorf("mood %q listed but missing profile", m)
			continue
		}
		if len(p.Genres) == 0 || p.Tempo.Min > p.Tempo.Max {
			t.Errorf("mood %q has malformed profile %+v", m, p)
		}
	}

	if len(Hobbies()) != 12 {
		t.Errorf("len(Hobbies()) = %d, want 12", len(Hobbies()))
	}
	for _, h := range Hobbies() {
		if len(HobbyGenres(h)) != 5 {
			t.Errorf("hobby %q has %d genres, want 5", h, len(HobbyGenres(h)))
		}
	}
}

func TestHobbyGenres(t *testing.T) {
	want := []string{"classical", "instrumental", "lo-fi", "ambient", "study"}
	if got := HobbyGenres("Studying"); !reflect.DeepEqual(got, want) {
		t.Errorf("HobbyGenres(Studying) = %v, want %v", got, want)
	}
	if got := HobbyGenres("skydiving"); got != nil {
		t.Errorf("HobbyGenres(skydiving) = %v, want nil", got)
	}

	got := HobbyGenres("gym")
	got[0] = "mutated"
	if HobbyGenres("gym")[0] != "workout" {
		t.Error("HobbyGenres returned shared slice")
	}
}
