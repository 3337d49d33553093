package main

import (
	"context"
	"fmt"

	"github.com/ErlanBelekov/autos-marketplace/internal/auth"
	"github.com/ErlanBelekov/autos-marketplace/internal/domain"
	"github.com/ErlanBelekov/autos-marketplace/internal/infrastructure/postgres"
	"github.com/spf13/cobra"
)

const (
	seedEmail    = "demo@autos.local"
	seedName     = "Demo Seller"
	seedPassword = "demo-password"
)

type autoSpec struct {
	brand, model string
	year         int
	price        float64
	status       domain.AutoStatus
	description  string
}

var seedAutos = []autoSpec{
	{"Toyota", "Corolla", 2019, 12500, domain.AutoAvailable, "One owner, full service history"},
	{"Honda", "Civic", 2021, 18900, domain.AutoAvailable, "Low mileage, manual"},
	{"Ford", "Ranger", 2017, 21000, domain.AutoReserved, "4x4, tow bar"},
	{"Volkswagen", "Golf", 2015, 8400, domain.AutoSold, ""},
	{"Mazda", "CX-5", 2020, 23750, domain.AutoAvailable, "AWD, leather seats"},
	{"Chevrolet", "Onix", 2022, 14200, domain.AutoAvailable, ""},
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a verified demo account and sample autos (idempotent)",
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	url, err := databaseURL(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{URL: url, MaxConns: 2})
	if err != nil {
		return err
	}
	defer pool.Close()

	hasher, err := auth.NewBcryptHasher(auth.DefaultBcryptCost)
	if err != nil {
		return err
	}
	hash, err := hasher.Hash(seedPassword)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	// Upsert a verified account; re-runs keep the same id.
	var accountID string
	err = pool.QueryRow(ctx, `
		INSERT INTO accounts (display_name, email, password_hash, verified)
		VALUES ($1, $2, $3, true)
		ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
		RETURNING id`,
		seedName, seedEmail, hash,
	).Scan(&accountID)
	if err != nil {
		return fmt.Errorf("upsert seed account: %w", err)
	}

	var existing int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM autos WHERE created_by = $1`, accountID).Scan(&existing); err != nil {
		return fmt.Errorf("count seed autos: %w", err)
	}

	inserted := 0
	if existing == 0 {
		repo := postgres.NewAutoRepository(pool)
		for _, s := range seedAutos {
			if _, err := repo.Create(ctx, s.auto(accountID)); err != nil {
				return fmt.Errorf("insert %s %s: %w", s.brand, s.model, err)
			}
			inserted++
		}
	}

	cmd.Println("Seed complete")
	cmd.Println()
	cmd.Printf("  Account:       %s / %s\n", seedEmail, seedPassword)
	cmd.Printf("  Account ID:    %s\n", accountID)
	cmd.Printf("  Autos created: %d  (%d already present)\n", inserted, existing)
	cmd.Println()
	cmd.Println("Log in with:")
	cmd.Printf("  curl -s -X POST localhost:8080/auth/login -H 'Content-Type: application/json' \\\n")
	cmd.Printf("    -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	return nil
}

func (s autoSpec) auto(accountID string) *domain.Auto {
	year, price := s.year, s.price
	a := &domain.Auto{
		Brand:     s.brand,
		Model:     s.model,
		Year:      &year,
		Price:     &price,
		Status:    s.status,
		CreatedBy: &accountID,
	}
	if s.description != "" {
		desc := s.description
		a.Description = &desc
	}
	return a
}
