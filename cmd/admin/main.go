package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hongminglow/userdesk/internal/accounts"
	"github.com/hongminglow/userdesk/internal/auth"
	"github.com/hongminglow/userdesk/internal/config"
	"github.com/hongminglow/userdesk/internal/logging"
	"github.com/hongminglow/userdesk/internal/policy"
	"github.com/hongminglow/userdesk/internal/storage/orm"
)

var (
	configPath string
	username   string
	password   string
)

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "userdesk administration tool",
	Long:          "Administrative tool for the userdesk schema and accounts",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	RunE:  runMigrate,
}

var initAdminCmd = &cobra.Command{
	Use:   "init-admin",
	Short: "Create an administrator account",
	RunE:  runInitAdmin,
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE:  runListUsers,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (overrides CONFIG_FILE)")

	initAdminCmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	initAdminCmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	_ = initAdminCmd.MarkFlagRequired("username")

	usersCmd.AddCommand(usersListCmd)
	rootCmd.AddCommand(migrateCmd, initAdminCmd, usersCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context) (*orm.Store, config.Config, error) {
	if configPath != "" {
		if err := os.Setenv("CONFIG_FILE", configPath); err != nil {
			return nil, config.Config{}, err
		}
	}
	cfg, err := config.Parse()
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateStorage(); err != nil {
		return nil, config.Config{}, err
	}

	store, err := orm.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, config.Config{}, err
	}
	return store, cfg, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	store, _, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	v, err := store.SchemaVersion(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (%s)\n", v, store.Driver())
	return nil
}

func runInitAdmin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, cfg, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	pw := password
	if pw == "" {
		if pw, err = promptPassword(cmd); err != nil {
			return err
		}
	}

	// Operators bypass the HTTP bootstrap policy.
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	pol := policy.Policies{Bootstrap: policy.BootstrapOpen, ListUsers: policy.ListPublic}
	svc := accounts.NewService(store, auth.NewPasswordHasher(cfg.BcryptCost), nil, pol, logger)

	user, err := svc.BootstrapAdmin(ctx, accounts.Credentials{Username: username, Password: pw})
	if err != nil {
		if errors.Is(err, accounts.ErrUsernameTaken) {
			return fmt.Errorf("username %q is taken", username)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id=%d)\n", user.Username, user.ID)
	return nil
}

func promptPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--password is required when stdin is not a terminal")
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

func runListUsers(cmd *cobra.Command, _ []string) error {
	store, _, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := store.ListUsers(cmd.Context())
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tADMIN\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%t\t%s\t%s\n", u.ID, u.Username, u.Admin, u.RoleName(), u.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
