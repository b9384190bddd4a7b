package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"vet-clinic/internal/domain/clients"
)

// openTestRepo usa POSTGRES_TEST_DSN y trabaja en un schema descartable.
func openTestRepo(t *testing.T) *ClientsRepo {
	t.Helper()

	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if testing.Short() || dsn == "" {
		t.Skip("set POSTGRES_TEST_DSN to run postgres tests")
	}

	ctx := context.Background()
	db, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	// una sola conexión: el search_path vale para todo el test
	db.SetMaxOpenConns(1)

	schema := fmt.Sprintf("vet_test_%d", time.Now().UnixNano())
	if _, err := db.ExecContext(ctx, `CREATE SCHEMA `+schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), `DROP SCHEMA `+schema+` CASCADE`)
		_ = db.Close()
	})
	if _, err := db.ExecContext(ctx, `SET search_path TO `+schema+`, public`); err != nil {
		t.Fatalf("search_path: %v", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return NewClientsRepo(db)
}

func TestClientsRepo_NullFieldsAndOrder(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	dog := "собака"
	msg := "Нужна вакцинация"
	first, err := repo.Insert(ctx, clients.NewClient{FirstName: "Анна", LastName: "Иванова", PetType: &dog, Message: &msg})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Fatalf("expected store-assigned id/created_at: %+v", first)
	}
	if first.Phone != nil || first.Email != nil || first.PetName != nil {
		t.Fatalf("absent fields must come back as nil: %+v", first)
	}

	time.Sleep(5 * time.Millisecond)
	second, err := repo.Insert(ctx, clients.NewClient{FirstName: "Ян", LastName: "Смирнов"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	list, err := repo.ListNewestFirst(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if list[1].PetType == nil || *list[1].PetType != dog || list[1].Message == nil || *list[1].Message != msg {
		t.Fatalf("optional fields lost: %+v", list[1])
	}
	if list[0].PetType != nil || list[0].Message != nil {
		t.Fatalf("null fields must stay nil: %+v", list[0])
	}

	n, err := repo.Count(ctx)
	if err != nil || n != len(list) {
		t.Fatalf("Count = %d, %v", n, err)
	}

	types, err := repo.ListPetTypes(ctx)
	if err != nil || len(types) != 1 || types[0] != dog {
		t.Fatalf("ListPetTypes = %v, %v", types, err)
	}
}

func TestClientsRepo_RejectsEmptyNames(t *testing.T) {
	repo := openTestRepo(t)
	if _, err := repo.Insert(context.Background(), clients.NewClient{FirstName: "", LastName: "Б"}); err == nil {
		t.Fatalf("expected check constraint violation")
	}
}
