package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/MikeMC777/customtees/internal/docstore"
	"github.com/MikeMC777/customtees/internal/order"
)

// seedOrders loads a JSON array of orders. Orders whose id already exists
// are skipped.
func seedOrders(ctx context.Context, repo order.Repository, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var orders []order.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return 0, fmt.Errorf("decode seed file %s: %w", path, err)
	}

	n := 0
	for i := range orders {
		o := &orders[i]
		if o.ID != "" {
			_, err := repo.GetByID(ctx, o.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, order.ErrNotFound) && !errors.Is(err, docstore.ErrNotFound) {
				return n, err
			}
		}
		if err := repo.Create(ctx, o); err != nil {
			if errors.Is(err, docstore.ErrExists) {
				continue
			}
			return n, fmt.Errorf("seed order %d: %w", i, err)
		}
		n++
	}
	return n, nil
}
