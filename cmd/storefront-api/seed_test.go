package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MikeMC777/customtees/internal/docstore"
	"github.com/MikeMC777/customtees/internal/order"
)

func TestSeedOrders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	data := `[
		{"id":"o1","cartItems":[{"productId":"p1","title":"Tee","quantity":2,"price":"10.50"}],"orderStatus":"confirmed"},
		{"cartItems":[{"productId":"p2","title":"Cap","quantity":1,"price":"5"}]}
	]`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	repo := order.NewRepo(docstore.NewMemory[order.Order]())
	ctx := context.Background()

	n, err := seedOrders(ctx, repo, path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 seeded, got %d", n)
	}

	o, err := repo.GetByID(ctx, "o1")
	if err != nil {
		t.Fatalf("get o1: %v", err)
	}
	if o.TotalAmount.String() != "21" {
		t.Fatalf("expected total derived from items, got %s", o.TotalAmount)
	}

	// second run skips o1, re-creates the id-less order
	n, err = seedOrders(ctx, repo, path)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 seeded on rerun, got %d", n)
	}
}

func TestSeedOrdersRejectsEmptyCart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	if err := os.WriteFile(path, []byte(`[{"id":"o1","cartItems":[]}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := seedOrders(context.Background(), order.NewRepo(docstore.NewMemory[order.Order]()), path)
	if !errors.Is(err, order.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}
