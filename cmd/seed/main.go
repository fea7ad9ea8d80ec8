package main

import (
	"log"
	"os"

	"stockpoints-be/internal/model"
	"stockpoints-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm/clause"
)

// Seeds the plan catalog. Safe to run repeatedly: plans are matched by
// name and updated in place.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	plans := []model.Plan{
		{
			Id:              uuid.New(),
			Name:            "Starter",
			Description:     "For occasional downloads",
			PriceCents:      900,
			Currency:        "USD",
			MonthlyPoints:   50,
			BillingInterval: "month",
			IsActive:        true,
			SortOrder:       1,
		},
		{
			Id:              uuid.New(),
			Name:            "Pro",
			Description:     "For regular creative work",
			PriceCents:      2900,
			Currency:        "USD",
			MonthlyPoints:   200,
			BillingInterval: "month",
			IsActive:        true,
			SortOrder:       2,
		},
		{
			Id:              uuid.New(),
			Name:            "Studio",
			Description:     "For teams and heavy users",
			PriceCents:      7900,
			Currency:        "USD",
			MonthlyPoints:   600,
			BillingInterval: "month",
			IsActive:        true,
			SortOrder:       3,
		},
	}

	for _, plan := range plans {
		err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"description", "price_cents", "currency", "monthly_points",
				"billing_interval", "is_active", "sort_order",
			}),
		}).Create(&plan).Error
		if err != nil {
			color.Red("✗ Failed to seed plan %s: %v", plan.Name, err)
			os.Exit(1)
		}
		color.Green("✓ Seeded plan %s (%d pts / month)", plan.Name, plan.MonthlyPoints)
	}

	color.Cyan("Plan catalog seeded: %d plans", len(plans))
}
