package checkpoint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_RoundTrip(t *testing.T) {
	store := New(t.TempDir(), true)

	in := map[string]int{"otorohanga": 2600, "taumarunui": 4515}
	if err := store.Put("template-db", in); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	var out map[string]int
	if !store.Get("template-db", &out) {
		t.Fatal("expected checkpoint to be present")
	}
	if out["otorohanga"] != 2600 || out["taumarunui"] != 4515 {
		t.Errorf("unexpected round-trip value: %v", out)
	}
}

func TestStore_MissingIsAbsent(t *testing.T) {
	store := New(t.TempDir(), true)

	var v map[string]string
	if store.Get("never-written", &v) {
		t.Error("expected miss for unwritten key")
	}
}

func TestStore_CorruptIsAbsent(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, true)

	// simulate a checkpoint truncated by a crash
	if err := os.WriteFile(filepath.Join(dir, "wiki-pages.json"), []byte(`{"Otoroh`), 0o644); err != nil {
		t.Fatal(err)
	}

	var v map[string]string
	if store.Get("wiki-pages", &v) {
		t.Error("expected corrupt checkpoint to read as absent")
	}
}

func TestStore_Disabled(t *testing.T) {
	store := New(t.TempDir(), false)

	if err := store.Put("k", 42); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	var v int
	if store.Get("k", &v) {
		t.Error("disabled store must always miss")
	}
}

func TestStore_Idempotent(t *testing.T) {
	store := New(t.TempDir(), true)

	for i := 0; i < 2; i++ {
		if err := store.Put("pages", map[string]string{"Ōtorohanga": "content"}); err != nil {
			t.Fatalf("put %d failed: %v", i, err)
		}
	}

	var v map[string]string
	if !store.Get("pages", &v) {
		t.Fatal("expected hit")
	}
	if v["Ōtorohanga"] != "content" {
		t.Errorf("unexpected value after double write: %v", v)
	}
}

func TestDo_ShortCircuitsFetch(t *testing.T) {
	store := New(t.TempDir(), true)

	calls := 0
	fetch := func() ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	first, err := Do(store, "titles", fetch)
	if err != nil {
		t.Fatalf("first Do failed: %v", err)
	}
	second, err := Do(store, "titles", fetch)
	if err != nil {
		t.Fatalf("second Do failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("expected fetch to run once, ran %d times", calls)
	}
	if len(first) != 2 || len(second) != 2 || second[0] != "a" {
		t.Errorf("unexpected values: %v %v", first, second)
	}
}

func TestDo_FetchErrorNotCached(t *testing.T) {
	store := New(t.TempDir(), true)

	boom := errors.New("remote unreachable")
	_, err := Do(store, "places", func() (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}

	var v int
	if store.Get("places", &v) {
		t.Error("failed fetch must not leave a checkpoint behind")
	}
}
