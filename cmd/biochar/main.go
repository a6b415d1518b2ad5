package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"biochar/internal/bootstrap"
	identitydto "biochar/internal/modules/identity/dto"
	pyrolysisdto "biochar/internal/modules/pyrolysis/dto"
	"biochar/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env carries the viper instance every subcommand resolves its
// configuration from.
type env struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	e := &env{v: viper.New()}

	root := &cobra.Command{
		Use:           "biochar",
		Short:         "Biochar pyrolysis batch operations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.String("data-dir", ".biochar", "data directory (database, evidence, journal)")
	flags.String("config", "", "config file (default <data-dir>/biochar.yaml)")
	flags.String("user", "", "acting user id")
	flags.String("log-level", "warn", "log level: trace|debug|info|warn|error")
	flags.StringSlice("kafka-brokers", nil, "kafka brokers for batch events")
	_ = e.v.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = e.v.BindPFlag("config", flags.Lookup("config"))
	_ = e.v.BindPFlag("user", flags.Lookup("user"))
	_ = e.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = e.v.BindPFlag("kafka.brokers", flags.Lookup("kafka-brokers"))

	root.AddCommand(newTUICmd(e))
	root.AddCommand(newUserCmd(e))
	root.AddCommand(newWhoamiCmd(e))
	root.AddCommand(newKilnCmd(e))
	root.AddCommand(newBiomassCmd(e))
	root.AddCommand(newBatchCmd(e))
	root.AddCommand(newIntegrationCmd(e))
	return root
}

func (e *env) loadApp(ctx context.Context, logOut io.Writer) (*bootstrap.App, config.Config, error) {
	cfg, err := config.Load(e.v)
	if err != nil {
		return nil, config.Config{}, err
	}
	app, err := bootstrap.New(ctx, cfg, logOut)
	if err != nil {
		return nil, config.Config{}, err
	}
	return app, cfg, nil
}

// withActor loads the app and resolves the configured user before running fn.
func (e *env) withActor(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App, actor identitydto.Actor) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, cfg, err := e.loadApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	actor, err := app.IdentityCLI.Resolve(ctx, cfg.User)
	if err != nil {
		return err
	}
	return fn(ctx, app, actor)
}

func (e *env) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, _, err := e.loadApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(ctx, app)
}

func newTUICmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the biochar terminal dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// hclog output would corrupt the alt screen.
			ctx := context.Background()
			app, cfg, err := e.loadApp(ctx, io.Discard)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			actor, err := app.IdentityCLI.Resolve(ctx, cfg.User)
			if err != nil {
				return err
			}
			return bootstrap.RunTUI(app, actor)
		},
	}
}

func newUserCmd(e *env) *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Manage users and roles"}

	var name, role, coordinatorID string
	add := &cobra.Command{
		Use:   "add --name <name> --role <admin|coordinator>",
		Short: "Add a user (the first user must be an admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(name) == "" || strings.TrimSpace(role) == "" {
				return fmt.Errorf("--name and --role are required")
			}
			ctx := context.Background()
			app, cfg, err := e.loadApp(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			// Without a configured user the first admin can still be created.
			var actor identitydto.Actor
			if strings.TrimSpace(cfg.User) != "" {
				if actor, err = app.IdentityCLI.Resolve(ctx, cfg.User); err != nil {
					return err
				}
			}
			out, err := app.IdentityCLI.AddUser(ctx, actor, name, role, coordinatorID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id=%s name=%q role=%s coordinator=%s\n", out.ID, out.Name, out.Role, out.CoordinatorID)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "display name")
	add.Flags().StringVar(&role, "role", "", "admin or coordinator")
	add.Flags().StringVar(&coordinatorID, "coordinator-id", "", "coordinator binding (generated when empty)")
	user.AddCommand(add)

	user.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				users, err := app.IdentityCLI.ListUsers(ctx)
				if err != nil {
					return err
				}
				if len(users) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no users")
					return nil
				}
				for _, u := range users {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s name=%q role=%s coordinator=%s\n", u.ID, u.Name, u.Role, u.CoordinatorID)
				}
				return nil
			})
		},
	})
	return user
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the acting user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withActor(cmd, func(_ context.Context, _ *bootstrap.App, actor identitydto.Actor) error {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id=%s name=%q role=%s coordinator=%s\n", actor.UserID, actor.Name, actor.Role, actor.CoordinatorID)
				return nil
			})
		},
	}
}

func newKilnCmd(e *env) *cobra.Command {
	kiln := &cobra.Command{Use: "kiln", Short: "Kiln reference data"}

	var coordinatorID, name string
	var capacity float64
	add := &cobra.Command{
		Use:   "add --coordinator-id <id> --name <name>",
		Short: "Register a kiln for a coordinator (admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(coordinatorID) == "" || strings.TrimSpace(name) == "" {
				return fmt.Errorf("--coordinator-id and --name are required")
			}
			return e.withActor(cmd, func(ctx context.Context, app *bootstrap.App, actor identitydto.Actor) error {
				out, err := app.CatalogCLI.AddKiln(ctx, actor, coordinatorID, name, capacity)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id=%s name=%q coordinator=%s capacity_kg=%g\n", out.ID, out.Name, out.CoordinatorID, out.CapacityKg)
				return nil
			})
		},
	}
	add.Flags().StringVar(&coordinatorID, "coordinator-id", "", "owning coordinator")
	add.Flags().StringVar(&name, "name", "", "kiln name")
	add.Flags().Float64Var(&capacity, "capacity-kg", 0, "optional capacity in kg")
	kiln.AddCommand(add)

	var listCoordinator string
	list := &cobra.Command{
		Use:   "list",
		Short: "List kilns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				kilns, err := app.CatalogCLI.ListKilns(ctx, listCoordinator)
				if err != nil {
					return err
				}
				if len(kilns) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no kilns")
					return nil
				}
				for _, k := range kilns {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s name=%q coordinator=%s capacity_kg=%g\n", k.ID, k.Name, k.CoordinatorID, k.CapacityKg)
				}
				return nil
			})
		},
	}
	list.Flags().StringVar(&listCoordinator, "coordinator-id", "", "filter by coordinator")
	kiln.AddCommand(list)
	return kiln
}

func newBiomassCmd(e *env) *cobra.Command {
	biomass := &cobra.Command{Use: "biomass", Short: "Biomass type reference data"}

	var name, description string
	add := &cobra.Command{
		Use:   "add --name <name>",
		Short: "Register a biomass type (admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("--name is required")
			}
			return e.withActor(cmd, func(ctx context.Context, app *bootstrap.App, actor identitydto.Actor) error {
				out, err := app.CatalogCLI.AddBiomassType(ctx, actor, name, description)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id=%s name=%q\n", out.ID, out.Name)
				return nil
			})
		},
	}
	add.Flags().StringVar(&name, "name", "", "biomass type name")
	add.Flags().StringVar(&description, "description", "", "optional description")
	biomass.AddCommand(add)

	biomass.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List biomass types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				types, err := app.CatalogCLI.ListBiomassTypes(ctx)
				if err != nil {
					return err
				}
				if len(types) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no biomass types")
					return nil
				}
				for _, b := range types {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s name=%q description=%q\n", b.ID, b.Name, b.Description)
				}
				return nil
			})
		},
	})
	return biomass
}

func newBatchCmd(e *env) *cobra.Command {
	batch := &cobra.Command{Use: "batch", Short: "Pyrolysis batch lifecycle"}

	var kilnID, biomassID string
	var input float64
	start := &cobra.Command{
		Use:   "start --kiln-id <id> --biomass-id <id> --input-kg <kg>",
		Short: "Start a batch on one of your kilns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withActor(cmd, func(ctx context.Context, app *bootstrap.App, actor identitydto.Actor) error {
				out, err := app.PyrolysisCLI.Start(ctx, actor, kilnID, biomassID, input)
				if err != nil {
					return err
				}
				printBatch(cmd.OutOrStdout(), out.Batch)
				printWarnings(cmd.ErrOrStderr(), out.Warnings)
				return nil
			})
		},
	}
	start.Flags().StringVar(&kilnID, "kiln-id", "", "kiln id")
	start.Flags().StringVar(&biomassID, "biomass-id", "", "biomass type id")
	start.Flags().Float64Var(&input, "input-kg", 0, "input biomass quantity in kg")
	batch.AddCommand(start)

	var batchID, photoPath string
	var output float64
	end := &cobra.Command{
		Use:   "end --output-kg <kg> --photo <file>",
		Short: "Complete your active batch with its output and a photo",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var photo []byte
			if strings.TrimSpace(photoPath) != "" {
				b, err := os.ReadFile(photoPath)
				if err != nil {
					return fmt.Errorf("read photo: %w", err)
				}
				photo = b
			}
			return e.withActor(cmd, func(ctx context.Context, app *bootstrap.App, actor identitydto.Actor) error {
				out, err := app.PyrolysisCLI.End(ctx, actor, batchID, output, filepath.Base(photoPath), photo)
				if err != nil {
					return err
				}
				printBatch(cmd.OutOrStdout(), out.Batch)
				if out.JournalPath != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "journal=%s\n", out.JournalPath)
				}
				printWarnings(cmd.ErrOrStderr(), out.Warnings)
				return nil
			})
		},
	}
	end.Flags().StringVar(&batchID, "batch-id", "", "optional; must name the active batch")
	end.Flags().Float64Var(&output, "output-kg", 0, "biochar output quantity in kg")
	end.Flags().StringVar(&photoPath, "photo", "", "photo or PDF evidence file")
	batch.AddCommand(end)

	batch.AddCommand(&cobra.Command{
		Use:   "active",
		Short: "Show your in-progress batch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withActor(cmd, func(ctx context.Context, app *bootstrap.App, actor identitydto.Actor) error {
				out, err := app.PyrolysisCLI.GetActive(ctx, actor)
				if err != nil {
					return err
				}
				printBatch(cmd.OutOrStdout(), out)
				return nil
			})
		},
	})

	var historyCoordinator string
	history := &cobra.Command{
		Use:   "history",
		Short: "List batches, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withActor(cmd, func(ctx context.Context, app *bootstrap.App, actor identitydto.Actor) error {
				batches, err := app.PyrolysisCLI.History(ctx, actor, historyCoordinator)
				if err != nil {
					return err
				}
				if len(batches) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no batches")
					return nil
				}
				for _, b := range batches {
					printBatch(cmd.OutOrStdout(), b)
				}
				return nil
			})
		},
	}
	history.Flags().StringVar(&historyCoordinator, "coordinator-id", "", "coordinator to list (admins only; default all)")
	batch.AddCommand(history)
	return batch
}

func newIntegrationCmd(e *env) *cobra.Command {
	integration := &cobra.Command{Use: "integration", Short: "Integration plugins notified of batch events"}
	integration.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List integration manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				items, err := app.IntegrationCLI.List(ctx)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no integrations configured")
					return nil
				}
				for _, item := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t events=%s binary=%s\n", item.Name, item.Version, item.Enabled, strings.Join(item.Events, ","), item.Binary)
				}
				return nil
			})
		},
	})

	integration.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate integration checksums and handshakes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				results, err := app.IntegrationCLI.Doctor(ctx)
				if err != nil {
					return err
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no integrations configured")
					return nil
				}
				failed := 0
				for _, r := range results {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t handshake=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.HandshakeOK)
					if r.Error != "" {
						failed++
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				if failed > 0 {
					return errors.New("integration doctor found problems")
				}
				return nil
			})
		},
	})
	return integration
}

func printBatch(w io.Writer, b pyrolysisdto.BatchOutput) {
	_, _ = fmt.Fprintf(w, "id=%s status=%s coordinator=%s kiln=%s biomass=%s start=%s input_kg=%g",
		b.ID, b.Status, b.CoordinatorID, b.KilnID, b.BiomassTypeID, b.StartTime.Format(time.RFC3339), b.InputQuantity)
	if b.Completed() {
		_, _ = fmt.Fprintf(w, " end=%s output_kg=%g yield=%.1f%% photo=%s",
			b.EndTime.Format(time.RFC3339), b.OutputQuantity, b.YieldPercent, b.PhotoRef)
	}
	_, _ = fmt.Fprintln(w)
}

func printWarnings(w io.Writer, warnings []string) {
	for _, warning := range warnings {
		_, _ = fmt.Fprintf(w, "warning: %s\n", warning)
	}
}
