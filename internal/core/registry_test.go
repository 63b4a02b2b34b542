package core

import (
	"sync"
	"testing"
)

func TestEnsure_SeedsCreatorOnlyOnce(t *testing.T) {
	r := NewRegistry()

	s, created := r.Ensure("partyA", "alice")
	if !created {
		t.Fatalf("first Ensure did not create the space")
	}
	if !s.IsAdmin("alice") {
		t.Errorf("creator is not admin")
	}

	again, created := r.Ensure("partyA", "bob")
	if created {
		t.Errorf("second Ensure reported creation")
	}
	if again != s {
		t.Errorf("Ensure returned a different space")
	}
	if again.IsAdmin("bob") {
		t.Errorf("later caller was admitted as admin")
	}
}

func TestNextEntryID_UniqueAcrossSpaces(t *testing.T) {
	r := NewRegistry()
	r.Ensure("a", "")
	r.Ensure("b", "")

	const n = 200
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- r.NextEntryID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]struct{}, n)
	for id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = struct{}{}
	}
}

func TestDropConnection_SweepsOnlyAffectedRosters(t *testing.T) {
	r := NewRegistry()
	a, _ := r.Ensure("a", "alice")
	b, _ := r.Ensure("b", "bob")

	a.AddMember(&fakePub{}, "c1", "walter")
	a.AddMember(&fakePub{}, "c2", "alice")
	b.AddMember(&fakePub{}, "c3", "bob")

	pub := &fakePub{}
	r.DropConnection(pub, "c1")

	if got := a.Members(); len(got) != 1 || got[0] != "alice" {
		t.Errorf("space a members = %v, want [alice]", got)
	}
	if got := b.Members(); len(got) != 1 || got[0] != "bob" {
		t.Errorf("space b roster touched: %v", got)
	}
	// Only the affected space publishes an updated member list.
	if len(pub.events) != 1 || pub.events[0].Target != "space:a" {
		t.Errorf("events = %v, want single user_list for space a", pub.events)
	}
}

func TestNames_Sorted(t *testing.T) {
	r := NewRegistry()
	r.Ensure("zeta", "")
	r.Ensure("alpha", "")
	r.Ensure("mid", "")

	names := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}
