package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"zenith-sync/internal/config"
	"zenith-sync/internal/convert"
	"zenith-sync/internal/domain"
	"zenith-sync/internal/storage"
	"zenith-sync/internal/storage/migrations"
	pgstore "zenith-sync/internal/storage/postgres"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage saved account group selections",
	Long: `Prefs lists, saves and deletes named account group selections stored in
Postgres.

Examples:
  zenithsync prefs list
  zenithsync prefs save main --account 'A1[Demo]'
  zenithsync prefs save everything --all
  zenithsync prefs delete main`,
}

var prefsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved selections",
	Args:  cobra.NoArgs,
	RunE:  runPrefsList,
}

var prefsSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Save a selection of all accounts or one account",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrefsSave,
}

var prefsDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a saved selection",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrefsDelete,
}

var (
	prefsAll     bool
	prefsAccount string
)

// openPreferences opens the preference store. Tests replace it.
var openPreferences = openPostgresPreferences

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsListCmd, prefsSaveCmd, prefsDeleteCmd)

	prefsSaveCmd.Flags().BoolVar(&prefsAll, "all", false, "select every account")
	prefsSaveCmd.Flags().StringVar(&prefsAccount, "account", "", "select one account, e.g. 'A1[Demo]'")
}

func openPostgresPreferences(ctx context.Context) (storage.AccountGroupPreferenceStore, func(), error) {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Storage.PostgresDSN == "" {
		return nil, nil, errors.New("prefs needs storage.postgres_dsn or " + config.EnvPostgresDSN)
	}
	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}
	return pgstore.NewAccountGroupPreferenceStore(pool), pool.Close, nil
}

func runPrefsList(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openPreferences(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	prefs, err := store.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list preferences: %w", err)
	}
	out := cmd.OutOrStdout()
	for _, p := range prefs {
		updated := time.UnixMilli(p.UpdatedAt).UTC().Format(time.RFC3339)
		group, err := domain.AccountGroupFromPersisted(p.Key)
		if err != nil {
			fmt.Fprintf(out, "%s\tinvalid (%v)\t%s\n", p.Name, err, updated)
			continue
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", p.Name, group.MapKey(), updated)
	}
	return nil
}

func runPrefsSave(cmd *cobra.Command, args []string) error {
	var group domain.AccountGroup
	switch {
	case prefsAll && prefsAccount != "":
		return errors.New("use either --all or --account")
	case prefsAll:
		group = domain.AllAccountsGroup()
	case prefsAccount != "":
		key, err := convert.DecodeAccount(prefsAccount)
		if err != nil {
			return fmt.Errorf("account: %w", err)
		}
		group = domain.SingleAccountGroup(key)
	default:
		return errors.New("one of --all or --account is required")
	}

	store, closeStore, err := openPreferences(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	p := &storage.AccountGroupPreference{
		Name:      args[0],
		Key:       group.Persist(),
		UpdatedAt: time.Now().UnixMilli(),
	}
	if err := store.Save(cmd.Context(), p); err != nil {
		return fmt.Errorf("save %q: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s = %s\n", args[0], group.MapKey())
	return nil
}

func runPrefsDelete(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openPreferences(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete %q: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}
