package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/aquamarinepk/aqm"
)

type recordingRunners struct {
	seeds  []SeedOptions
	clears int
	resets int
}

func (r *recordingRunners) runners() Runners {
	return Runners{
		Seed: func(ctx context.Context, opts SeedOptions) error {
			r.seeds = append(r.seeds, opts)
			return nil
		},
		Clear: func(ctx context.Context) error {
			r.clears++
			return nil
		},
		Reset: func(ctx context.Context) error {
			r.resets++
			return nil
		},
	}
}

func execute(t *testing.T, r *recordingRunners, args ...string) error {
	t.Helper()
	root := NewRootCmd("utils", "test", aqm.NewConfig(), r.runners())
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestSeedDemoFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want SeedOptions
	}{
		{
			name: "defaults",
			args: []string{"seed-demo"},
			want: SeedOptions{KitchenURL: "http://localhost:8087", ShopID: 1, Orders: defaultDemoOrders, Seed: defaultDemoSeed},
		},
		{
			name: "overrides",
			args: []string{"seed-demo", "--shop", "3", "--orders", "12", "--seed", "9", "--kitchen-url", "http://kitchen:9000"},
			want: SeedOptions{KitchenURL: "http://kitchen:9000", ShopID: 3, Orders: 12, Seed: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recordingRunners{}
			if err := execute(t, r, tt.args...); err != nil {
				t.Fatalf("execute() error = %v", err)
			}
			if len(r.seeds) != 1 || r.seeds[0] != tt.want {
				t.Errorf("seed options = %+v, want %+v", r.seeds, tt.want)
			}
		})
	}
}

func TestSeedDemoRejectsBadShopFlag(t *testing.T) {
	r := &recordingRunners{}
	if err := execute(t, r, "seed-demo", "--shop", "abc"); err == nil {
		t.Error("execute() should fail on a non-numeric shop")
	}
	if len(r.seeds) != 0 {
		t.Errorf("seed ran %d times", len(r.seeds))
	}
}

func TestSeedDemoValidatesOptions(t *testing.T) {
	tests := []struct {
		name string
		opts SeedOptions
	}{
		{name: "zeroShop", opts: SeedOptions{ShopID: 0, Orders: 1}},
		{name: "zeroOrders", opts: SeedOptions{ShopID: 1, Orders: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := SeedDemo(context.Background(), tt.opts, aqm.NewNoopLogger()); err == nil {
				t.Error("SeedDemo() should reject the options")
			}
		})
	}
}

func TestClearDemoCommand(t *testing.T) {
	r := &recordingRunners{}
	if err := execute(t, r, "clear-demo"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if r.clears != 1 {
		t.Errorf("clears = %d, want 1", r.clears)
	}
}

func TestResetDBNeedsConfirmation(t *testing.T) {
	r := &recordingRunners{}
	if err := execute(t, r, "reset-db"); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("error = %v, want ErrNotConfirmed", err)
	}
	if r.resets != 0 {
		t.Fatalf("reset ran without --yes")
	}

	if err := execute(t, r, "reset-db", "--yes"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if r.resets != 1 {
		t.Errorf("resets = %d, want 1", r.resets)
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := execute(t, &recordingRunners{}, "migrate"); err == nil {
		t.Error("execute() should fail on an unknown command")
	}
}
