package vault

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/firstindiacredit-Git/cred/internal/shared/models"
)

func sampleItems() []models.Credential {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []models.Credential{
		{ID: "a", Title: "GitHub", Username: "octo", URL: "https://github.com", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "b", Title: "Mail", Username: "Alice@Example.com", URL: "https://mail.example.com", CreatedAt: base.Add(time.Hour)},
		{ID: "c", Title: "bank", Username: "alice", URL: "", CreatedAt: base},
	}
}

func TestSearchEmptyQueryReturnsAll(t *testing.T) {
	items := sampleItems()
	got := Search(items, "")
	if !reflect.DeepEqual(got, items) {
		t.Fatal("empty query must return the full collection unmodified")
	}
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	items := sampleItems()

	got := Search(items, "GITHUB")
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("got %v", got)
	}

	// matches username and url independently
	got = Search(items, "alice")
	if len(got) != 2 {
		t.Fatalf("got %d items", len(got))
	}

	got = Search(items, "example.com")
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("got %v", got)
	}

	if got := Search(items, "no-such-thing"); got != nil {
		t.Fatalf("got %v", got)
	}
}

func TestSearchIsIdempotent(t *testing.T) {
	items := sampleItems()
	once := Search(items, "ali")
	twice := Search(once, "ali")
	if !reflect.DeepEqual(once, twice) {
		t.Fatal("search(search(xs,q),q) != search(xs,q)")
	}
}

func TestSearchDoesNotMutateInput(t *testing.T) {
	items := sampleItems()
	snapshot := make([]models.Credential, len(items))
	copy(snapshot, items)
	_ = Search(items, "git")
	if !reflect.DeepEqual(items, snapshot) {
		t.Fatal("input slice mutated")
	}
}

func TestListOrderedNewestFirst(t *testing.T) {
	backend := &fakeCredBackend{items: []models.Credential{
		sampleItems()[2], sampleItems()[0], sampleItems()[1],
	}}
	s := NewCredentialStore(backend)
	got, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Fatalf("order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestCreateValidatesBeforeDispatch(t *testing.T) {
	backend := &fakeCredBackend{}
	s := NewCredentialStore(backend)

	cases := []models.CredentialFields{
		{Username: "u", Password: "p"},
		{Title: "t", Password: "p"},
		{Title: "t", Username: "u"},
		{Title: "   ", Username: "u", Password: "p"},
	}
	var verr *ValidationError
	for _, f := range cases {
		if _, err := s.Create(context.Background(), f); !errors.As(err, &verr) {
			t.Fatalf("fields %+v: want ValidationError, got %v", f, err)
		}
	}
	if len(backend.items) != 0 {
		t.Fatal("invalid fields must not reach the network")
	}

	c, err := s.Create(context.Background(), models.CredentialFields{Title: "t", Username: "u", Password: "p", URL: ""})
	if err != nil {
		t.Fatal(err)
	}
	if c.ID == "" {
		t.Fatal("store must assign an id")
	}
	if c.CreatedAt.After(time.Now().Add(time.Second)) {
		t.Fatal("createdAt in the future")
	}
}

func TestCreateThenListIncludesRecord(t *testing.T) {
	backend := &fakeCredBackend{}
	s := NewCredentialStore(backend)
	c, err := s.Create(context.Background(), models.CredentialFields{Title: "t", Username: "u", Password: "p"})
	if err != nil {
		t.Fatal(err)
	}
	items, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != c.ID {
		t.Fatalf("list: %v", items)
	}
}

func TestUpdateRefreshesUpdatedAt(t *testing.T) {
	backend := &fakeCredBackend{}
	s := NewCredentialStore(backend)
	c, _ := s.Create(context.Background(), models.CredentialFields{Title: "t", Username: "u", Password: "p"})

	updated, err := s.Update(context.Background(), c.ID, models.CredentialFields{Title: "t2", Username: "u2", Password: "p2", URL: "https://x"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "t2" || updated.Username != "u2" || updated.Password != "p2" || updated.URL != "https://x" {
		t.Fatalf("update was not a full replace: %+v", updated)
	}
	if !updated.UpdatedAt.After(c.UpdatedAt) {
		t.Fatal("updatedAt must strictly increase")
	}
}

func TestUpdateDeleteNotFound(t *testing.T) {
	s := NewCredentialStore(&fakeCredBackend{})
	if _, err := s.Update(context.Background(), "missing", models.CredentialFields{Title: "t", Username: "u", Password: "p"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update: %v", err)
	}
	if err := s.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete: %v", err)
	}
}

func TestDeleteThenListExcludesRecord(t *testing.T) {
	backend := &fakeCredBackend{}
	s := NewCredentialStore(backend)
	c, _ := s.Create(context.Background(), models.CredentialFields{Title: "t", Username: "u", Password: "p"})
	if err := s.Delete(context.Background(), c.ID); err != nil {
		t.Fatal(err)
	}
	items, _ := s.List(context.Background())
	for _, it := range items {
		if it.ID == c.ID {
			t.Fatal("deleted id still listed")
		}
	}
}

func TestRevealStateDefaultsHidden(t *testing.T) {
	r := NewRevealState()
	if r.Visible("a") {
		t.Fatal("default must be hidden")
	}
}

func TestRevealBulkThenPerItem(t *testing.T) {
	items := sampleItems()
	r := NewRevealState()

	r.SetAll(items, true)
	for _, c := range items {
		if !r.Visible(c.ID) {
			t.Fatalf("%s not revealed after bulk reveal", c.ID)
		}
	}

	r.Toggle("b")
	if r.Visible("b") {
		t.Fatal("toggled item must flip")
	}
	if !r.Visible("a") || !r.Visible("c") {
		t.Fatal("other items must keep the bulk value")
	}

	r.SetAll(items, false)
	for _, c := range items {
		if r.Visible(c.ID) {
			t.Fatalf("%s still revealed after bulk hide", c.ID)
		}
	}
}
