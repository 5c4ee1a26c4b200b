package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/zezinho10632/DouglasApi/pkg/database"
)

// testDBCmd represents the test-db command
var testDBCmd = &cobra.Command{
	Use:   "test-db",
	Short: "Test the PostgreSQL connection",
	Long: `Test the database connection and show pool statistics.

This command:
- loads DATABASE_URL from config
- opens a pool and pings it
- runs a health check
- prints connection pool statistics

Example:
  go run ./cmd/quality test-db
  go run ./cmd/quality test-db --env production`,
	RunE: runTestDB,
}

func init() {
	rootCmd.AddCommand(testDBCmd)
}

func runTestDB(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Douglas Quality Database Connection Test ===")

	fmt.Println("Loading configuration...")
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	fmt.Printf("✅ Config loaded (ENV: %s)\n", cfg.Env)
	fmt.Printf("   Database URL: %s\n\n", maskPassword(cfg.Database.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fmt.Println("Connecting to database...")
	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()
	fmt.Println("✅ Database connection established")

	fmt.Println("Testing connection (Ping)...")
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("❌ Failed to ping database: %w", err)
	}
	fmt.Println("✅ Ping successful")

	fmt.Println("Getting health status...")
	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}

	fmt.Println("✅ Health Check Results:")
	fmt.Printf("   Healthy: %v\n", status.Healthy)
	fmt.Printf("   Response Time: %v\n", status.ResponseTime)
	fmt.Printf("   Timestamp: %v\n\n", status.Timestamp.Format(time.RFC3339))

	fmt.Println("📊 Connection Pool Statistics:")
	fmt.Printf("   Max Connections: %d\n", status.Stats.MaxConns)
	fmt.Printf("   Total Connections: %d\n", status.Stats.TotalConns)
	fmt.Printf("   Acquired Connections: %d\n", status.Stats.AcquiredConns)
	fmt.Printf("   Idle Connections: %d\n", status.Stats.IdleConns)
	fmt.Printf("   Acquire Count: %d\n", status.Stats.AcquireCount)
	fmt.Printf("   Acquire Duration: %v\n", status.Stats.AcquireDuration)

	fmt.Println("\n✅ All tests passed!")
	return nil
}

// maskPassword hides the password of a connection URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
