package ecs

import "testing"

type hp struct {
	Value int
}

func TestStoreSortedIDs(t *testing.T) {
	s := NewStore[hp]()
	for _, id := range []EntityID{9, 3, 0, 12, 5} {
		s.Set(id, &hp{Value: int(id)})
	}

	ids := s.IDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("IDs not strictly ascending: %v", ids)
		}
	}
	if len(ids) != 5 {
		t.Fatalf("len(IDs) = %d, want 5", len(ids))
	}

	// EachSorted must visit in the same order.
	var visited []EntityID
	s.EachSorted(func(id EntityID, _ *hp) {
		visited = append(visited, id)
	})
	for i := range ids {
		if visited[i] != ids[i] {
			t.Fatalf("EachSorted order %v != IDs order %v", visited, ids)
		}
	}
}

func TestStoreZeroIDIsValid(t *testing.T) {
	s := NewStore[hp]()
	s.Set(0, &hp{Value: 42})

	got, ok := s.Get(0)
	if !ok || got.Value != 42 {
		t.Fatalf("Get(0) = %v, %v", got, ok)
	}
	if None.Valid() {
		t.Fatal("sentinel must not be a valid id")
	}
	if !EntityID(0).Valid() {
		t.Fatal("id 0 must be valid")
	}
}

func TestStoreRemove(t *testing.T) {
	s := NewStore[hp]()
	s.Set(1, &hp{})
	s.Remove(1)
	if s.Has(1) {
		t.Fatal("component survived Remove")
	}
	s.Remove(1) // no-op
}

func TestPoolLifecycle(t *testing.T) {
	p := NewPool()
	a := p.Create()
	b := p.Create()
	if a == b {
		t.Fatalf("ids must be distinct, both %d", a)
	}
	if !p.Alive(a) || !p.Alive(b) {
		t.Fatal("created entities must be alive")
	}

	p.Destroy(a)
	if p.Alive(a) {
		t.Fatal("destroyed entity still alive")
	}

	ids := p.AliveIDs()
	if len(ids) != 1 || ids[0] != b {
		t.Fatalf("AliveIDs = %v, want [%d]", ids, b)
	}
}

func TestPoolResetRestartsIDs(t *testing.T) {
	p := NewPool()
	first := p.Create()
	p.Create()
	p.Reset()

	again := p.Create()
	if again != first {
		t.Fatalf("post-reset first id = %d, want %d (replicas must allocate identically)", again, first)
	}
}

func TestEntitiesWith2Sorted(t *testing.T) {
	a := NewStore[hp]()
	b := NewStore[struct{ X int }]()
	for _, id := range []EntityID{4, 1, 7} {
		a.Set(id, &hp{})
	}
	for _, id := range []EntityID{7, 1, 2} {
		b.Set(id, &struct{ X int }{})
	}

	got := EntitiesWith2(a, b)
	want := []EntityID{1, 7}
	if len(got) != len(want) {
		t.Fatalf("EntitiesWith2 = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("EntitiesWith2 = %v, want %v", got, want)
		}
	}
}
