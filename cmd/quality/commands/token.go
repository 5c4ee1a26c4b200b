package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zezinho10632/DouglasApi/pkg/auth"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for a seeded user",
	Long: `Sign a JWT for an existing user with the configured secret.

Tokens carry the user's id, role and job title. Intended for development
and operations; production tokens come from the identity provider.

Example:
  go run ./cmd/quality token --email admin@douglas.com`,
	RunE: runToken,
}

var tokenEmail string

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&tokenEmail, "email", "admin@douglas.com", "user email")
}

func runToken(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	u, err := a.services.Users.FindByEmail(ctx, tokenEmail)
	if err != nil {
		return fmt.Errorf("find user %s: %w", tokenEmail, err)
	}

	token, err := auth.NewTokens(a.cfg.Auth).Issue(auth.Claims{
		UserID:   u.ID.String(),
		Email:    u.Email,
		Name:     u.Name,
		Role:     string(u.Role),
		JobTitle: string(u.JobTitle),
	})
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	fmt.Println(token)
	return nil
}
