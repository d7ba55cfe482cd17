package domain

import (
	"reflect"
	"testing"
	"time"
)

func sampleRoster() []RemoteEntity {
	return []RemoteEntity{
		{ID: "w1", Name: "Wendy", Role: RoleWorker},
		{ID: "m1", Name: "Mark", Role: RoleManager},
		{ID: "w2", Name: "Will", Role: RoleWorker},
		{ID: "a1", Name: "Ann", Role: RoleAdmin},
		{ID: "c1", Name: "Cole", Role: RoleUser},
	}
}

func TestFilterByCategory_AllIsIdentity(t *testing.T) {
	rosters := [][]RemoteEntity{nil, {}, sampleRoster()}
	for _, r := range rosters {
		got := FilterByCategory(r, CategoryAll)
		if len(got) != len(r) {
			t.Fatalf("expected %d entities, got %d", len(r), len(got))
		}
		for i := range r {
			if !reflect.DeepEqual(got[i], r[i]) {
				t.Fatalf("entity %d differs: %+v vs %+v", i, got[i], r[i])
			}
		}
	}
}

func TestFilterByCategory_PreservesOrderAndInput(t *testing.T) {
	roster := sampleRoster()
	before := append([]RemoteEntity(nil), roster...)

	workers := FilterByCategory(roster, CategoryWorkers)
	if len(workers) != 2 || workers[0].ID != "w1" || workers[1].ID != "w2" {
		t.Fatalf("unexpected workers: %+v", workers)
	}
	customers := FilterByCategory(roster, CategoryCustomers)
	if len(customers) != 1 || customers[0].ID != "c1" {
		t.Fatalf("unexpected customers: %+v", customers)
	}
	if !reflect.DeepEqual(roster, before) {
		t.Fatalf("input roster was mutated")
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory(""); err != nil || c != CategoryAll {
		t.Fatalf("expected all, got %q %v", c, err)
	}
	if _, err := ParseCategory("robots"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestRemoteEntity_ActiveAt(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-5 * time.Minute)
	stale := now.Add(-15 * time.Minute)

	cases := []struct {
		name   string
		entity RemoteEntity
		want   bool
	}{
		{"recent and flagged", RemoteEntity{IsActive: true, LastActiveAt: &recent}, true},
		{"stale and flagged", RemoteEntity{IsActive: true, LastActiveAt: &stale}, false},
		{"recent but not flagged", RemoteEntity{IsActive: false, LastActiveAt: &recent}, false},
		{"flagged without timestamp", RemoteEntity{IsActive: true}, false},
	}
	for _, tc := range cases {
		if got := tc.entity.ActiveAt(now); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestHomeViewAndAdmits(t *testing.T) {
	if HomeView(RoleUser) != ViewCustomer || HomeView(RoleManager) != ViewManager {
		t.Fatalf("unexpected home views")
	}
	if !ViewCustomer.Admits(RoleUser) || ViewAdmin.Admits(RoleManager) {
		t.Fatalf("unexpected audience")
	}
	if !ViewLogin.Admits(RoleWorker) {
		t.Fatalf("login must admit everyone")
	}
}

func TestIdentity_ApplyKeepsImmutableFields(t *testing.T) {
	id := &Identity{ID: "1", Role: RoleWorker, Name: "old", Token: "t"}
	id.Apply(NamePatch("new"))
	id.Apply(DescriptionPatch("hello"))
	if id.Name != "new" || id.DescriptionText() != "hello" || id.ID != "1" || id.Role != RoleWorker {
		t.Fatalf("unexpected identity: %+v", id)
	}
	id.Apply(DescriptionPatch(""))
	if id.HasDescription() || id.Description != nil {
		t.Fatalf("expected description cleared")
	}
}
