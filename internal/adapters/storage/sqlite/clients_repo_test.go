package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"vet-clinic/internal/domain/clients"
)

func openTestDB(t *testing.T) *ClientsRepo {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "clients.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewClientsRepo(db)
}

func TestClientsRepo_RoundTripAndOrder(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	step := 0
	repo.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}

	dog := "собака"
	msg := "Нужна вакцинация"
	first, err := repo.Insert(ctx, clients.NewClient{FirstName: "Анна", LastName: "Иванова", PetType: &dog, Message: &msg})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	second, err := repo.Insert(ctx, clients.NewClient{FirstName: "Ян", LastName: "Смирнов"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	list, err := repo.ListNewestFirst(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("unexpected order: %+v", list)
	}
	if list[1].PetType == nil || *list[1].PetType != dog || list[1].Message == nil {
		t.Fatalf("optional fields lost: %+v", list[1])
	}
	if list[0].PetType != nil || list[0].Phone != nil {
		t.Fatalf("absent fields must stay null: %+v", list[0])
	}
	if !list[1].CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at mismatch: %v vs %v", list[1].CreatedAt, first.CreatedAt)
	}

	n, err := repo.Count(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Count = %d, %v", n, err)
	}

	types, err := repo.ListPetTypes(ctx)
	if err != nil {
		t.Fatalf("ListPetTypes: %v", err)
	}
	if len(types) != 1 || types[0] != dog {
		t.Fatalf("unexpected pet types: %v", types)
	}
}

func TestClientsRepo_EmptyNamesViolateSchema(t *testing.T) {
	repo := openTestDB(t)
	if _, err := repo.Insert(context.Background(), clients.NewClient{FirstName: "", LastName: "Б"}); err == nil {
		t.Fatalf("expected CHECK constraint failure")
	}
}
