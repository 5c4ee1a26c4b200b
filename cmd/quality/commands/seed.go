package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zezinho10632/DouglasApi/internal/seed"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load reference data",
	Long: `Create the default sectors, lookups and users from a YAML fixture,
and open the current month's period for each fixture sector.

Existing rows are kept, so the command can be run repeatedly.

Example:
  go run ./cmd/quality seed
  go run ./cmd/quality seed --fixture ./fixtures/hospital.yaml`,
	RunE: runSeed,
}

var seedFixture string

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedFixture, "fixture", "", "YAML fixture (default is the built-in one)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	fx, _, err := loadFixture()
	if err != nil {
		return fmt.Errorf("load fixture: %w", err)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	hash, err := seed.Hash(fx)
	if err != nil {
		return err
	}
	a.log.WithFields(map[string]interface{}{
		"fixture": fixtureName(),
		"hash":    hash[:12],
	}).Info("Applying fixture")

	svc := a.services
	sum, err := seed.Apply(cmd.Context(), seed.Targets{
		Sectors:                svc.Sectors,
		Periods:                svc.Periods,
		Classifications:        svc.Classifications,
		ProfessionalCategories: svc.ProfessionalCategories,
		Users:                  svc.Users,
	}, fx, time.Now().In(a.cfg.Location()), a.log.WithField("module", "seed"))
	if err != nil {
		return err
	}

	fmt.Println("✅ Seed complete")
	fmt.Printf("   Sectors: %d\n", sum.Sectors)
	fmt.Printf("   Periods: %d\n", sum.Periods)
	fmt.Printf("   Classifications: %d\n", sum.Classifications)
	fmt.Printf("   Professional categories: %d\n", sum.ProfessionalCategories)
	fmt.Printf("   Users: %d\n", sum.Users)
	return nil
}

func loadFixture() (*seed.Fixture, []byte, error) {
	if seedFixture == "" {
		return seed.Default()
	}
	return seed.Load(seedFixture)
}

func fixtureName() string {
	if seedFixture == "" {
		return "built-in"
	}
	return seedFixture
}
