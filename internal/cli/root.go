package cli

import (
	"fmt"
	"os"

	"storefront-backend/config"
	"storefront-backend/database"
	"storefront-backend/internal/services"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DataDir     string
	BackupDir   string
	ShopURL     string
	Format      string // "text" | "json" | "yaml"
	FallbackDir string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command of the shop admin CLI. Flag
// defaults come from the server configuration so both read the same files.
func NewRootCommand() *cobra.Command {
	cfg := config.Load()
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "shopctl",
		Short: "Manage storefront data files",
		Long: `Manage the CSV data files behind the storefront.

Reads and rewrites the same tables as the admin portal: catalog tables,
the orders table and relay payloads pasted from the merchant's inbox.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !lo.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", cfg.DataDir, "directory holding the CSV data files")
	backupDir := lo.Ternary(os.Getenv("BACKUP_DIR") != "", cfg.BackupDir, "")
	cmd.PersistentFlags().StringVar(&opts.BackupDir, "backup-dir", backupDir, "directory for backups taken before each write (default <data-dir>/backups)")
	cmd.PersistentFlags().StringVar(&opts.ShopURL, "shop-url", cfg.ShopURL, "storefront origin whose image URLs are stored as relative paths")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.FallbackDir, "fallback-dir", ".", "where to save a table that could not be written")

	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))
	cmd.AddCommand(NewRelayCommand(opts))

	return cmd
}

// env is the service graph a command works against.
type env struct {
	store  *database.FileStore
	editor *services.EditorService
	orders *services.AdminOrderService
}

func openEnv(opts *RootOptions) (*env, error) {
	cfg := &config.Config{DataDir: opts.DataDir, BackupDir: opts.BackupDir, ShopURL: opts.ShopURL}
	cfg.SetDefaults()

	store, err := database.NewFileStore(cfg.DataDir, cfg.BackupDir, database.NewSanitizer(cfg.ShopURL))
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}
	return &env{
		store:  store,
		editor: services.NewEditorService(store),
		orders: services.NewAdminOrderService(store),
	}, nil
}
