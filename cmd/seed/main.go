// Package main provides a CLI tool for seeding the database with sample data
// and printing development tokens.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"fruitmandi/internal/core/appctx"
	"fruitmandi/internal/core/types"
	"fruitmandi/internal/domain/identity"
	"fruitmandi/internal/domain/stock"
	"fruitmandi/internal/domain/trade"
	"fruitmandi/internal/domain/vendor"
	"fruitmandi/internal/infrastructure/storage/postgres"
	"fruitmandi/internal/infrastructure/storage/postgres/stock_repo"
	"fruitmandi/internal/infrastructure/storage/postgres/trade_repo"
	"fruitmandi/internal/infrastructure/storage/postgres/vendor_repo"
	"fruitmandi/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.ApplySchema(ctx, pool); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}

	// Seed runs as the built-in admin.
	ctx = appctx.WithUser(ctx, &appctx.UserContext{
		UserID:      "seed-admin",
		DisplayName: "Seed Admin",
		Admin:       true,
	})

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	printDevTokens(log)
	log.Info("seeding completed successfully")
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	txManager := postgres.NewTxManager(pool)

	vendorRepo := vendor_repo.NewVendorRepo(txManager)
	lotRepo := stock_repo.NewLotRepo(txManager)
	tradeRepo := trade_repo.NewTradeRepo(txManager)

	auditStore, err := postgres.NewAuditStore(txManager)
	if err != nil {
		return err
	}

	engine := stock.NewEngine(lotRepo)
	vendorService := vendor.NewService(vendorRepo)
	tradeService := trade.NewService(vendorRepo, tradeRepo, engine, txManager, auditStore)

	existing, err := vendorService.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("demo data already present, skipping")
		return nil
	}

	ramesh, err := vendorService.Register(ctx, "Ramesh Fruit Traders", "9876543210")
	if err != nil {
		return err
	}
	suresh, err := vendorService.Register(ctx, "Suresh & Sons", "9123456780")
	if err != nil {
		return err
	}

	today := time.Now().Truncate(24 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)

	if _, err := engine.AddLot(ctx, "MANGO", 10, types.MustMoney("500"), yesterday); err != nil {
		return err
	}
	if _, err := engine.AddLot(ctx, "MANGO", 5, types.MustMoney("600"), today); err != nil {
		return err
	}
	if _, err := engine.AddLot(ctx, "BANANA", 20, types.MustMoney("150"), yesterday); err != nil {
		return err
	}

	sale, err := tradeService.Sell(ctx, trade.SellInput{
		Date:          today,
		VendorID:      ramesh.ID,
		Fruit:         "MANGO",
		Boxes:         8,
		PricePerBox:   types.MustMoney("700"),
		DepositPerBox: types.MustMoney("50"),
		Note:          "morning delivery",
	})
	if err != nil {
		return err
	}

	if _, err := tradeService.RecordPayment(ctx, trade.PaymentInput{
		Date:     today,
		VendorID: ramesh.ID,
		Amount:   types.MustMoney("3000"),
		Note:     "part payment",
	}); err != nil {
		return err
	}

	if _, err := tradeService.Sell(ctx, trade.SellInput{
		Date:          today,
		VendorID:      suresh.ID,
		Fruit:         "BANANA",
		Boxes:         12,
		PricePerBox:   types.MustMoney("200"),
		DepositPerBox: types.MustMoney("30"),
	}); err != nil {
		return err
	}

	log.Infow("demo data seeded",
		"vendors", 2,
		"first_sale_id", sale.ID,
	)
	return nil
}

func printDevTokens(log *logger.Logger) {
	secret := os.Getenv("TOKEN_SECRET")
	if secret == "" {
		secret = "dev-secret-change-in-production"
	}
	verifier := identity.NewVerifier(identity.DefaultConfig(secret))

	adminToken, _, err := verifier.IssueToken("seed-admin", "Seed Admin", true)
	if err != nil {
		log.Fatalw("failed to issue admin token", "error", err)
	}
	clerkToken, _, err := verifier.IssueToken("seed-clerk", "Seed Clerk", false)
	if err != nil {
		log.Fatalw("failed to issue clerk token", "error", err)
	}

	fmt.Printf("\nADMIN_TOKEN=%s\n", adminToken)
	fmt.Printf("CLERK_TOKEN=%s\n\n", clerkToken)
}
