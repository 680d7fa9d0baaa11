package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"geekqa/internal/bootstrap"
	"geekqa/internal/config"
	"geekqa/internal/service"
	"geekqa/internal/storage"
)

// openGreetings connects to the greeting store; replaced in tests.
var openGreetings = func(ctx context.Context, cfg *config.Config) (service.GreetingService, func() error, error) {
	awsCfg, err := bootstrap.LoadAWS(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	creds, err := bootstrap.CredentialSource(cfg, awsCfg).Resolve(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve credentials: %w", err)
	}
	db, err := bootstrap.OpenDatabase(cfg, creds.Database)
	if err != nil {
		return nil, nil, err
	}
	return service.NewGreetingService(storage.NewGreetingRepo(db)), db.Close, nil
}

var greetingsCmd = &cobra.Command{
	Use:   "greetings",
	Short: "Manage the greeting list",
}

var greetingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored greetings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closeFn, err := openGreetings(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()

		greetings, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(greetings) == 0 {
			cmd.Println("No greetings found.")
			return nil
		}
		for _, g := range greetings {
			cmd.Printf("%d\t%s\t%s\n", g.ID, g.CreatedAt.Format("2006-01-02 15:04:05"), g.Name)
		}
		return nil
	},
}

var greetingsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a greeting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openGreetings(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()

		g, err := svc.Add(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		cmd.Printf("Added greeting %d: %s\n", g.ID, g.Name)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the greeting table if it does not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Opening the store applies migrations.
		_, closeFn, err := openGreetings(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()

		cmd.Printf("Migrations applied (%s)\n", cfg.DBDriver)
		return nil
	},
}

func init() {
	greetingsCmd.AddCommand(greetingsListCmd, greetingsAddCmd)
	rootCmd.AddCommand(greetingsCmd, migrateCmd)
}
