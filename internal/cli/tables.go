package cli

import (
	"fmt"
	"io"

	"storefront-backend/database"
	"storefront-backend/internal/services"
	"storefront-backend/internal/utils"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// maxCellWidth bounds a text-mode cell; structured formats print full values.
const maxCellWidth = 40

// TableView is the structured form of `tables show`.
type TableView struct {
	Table    string         `json:"table"`
	FileName string         `json:"fileName"`
	IDColumn string         `json:"idColumn"`
	Headers  []string       `json:"headers"`
	Rows     []database.Row `json:"rows"`
}

// NewTablesCommand creates the tables command group.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List, show and edit catalog tables",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the editable tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTablesList(rootOpts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <table>",
		Short: "Print the rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTablesShow(rootOpts, args[0], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete a row by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTablesDelete(rootOpts, args[0], args[1], cmd)
		},
	})

	return cmd
}

func runTablesList(opts *RootOptions, cmd *cobra.Command) error {
	specs := lo.Map(services.TableNames(), func(name string, _ int) services.TableSpec {
		spec, _ := services.LookupTable(name)
		return spec
	})

	return newFormatter(opts, cmd.OutOrStdout()).Print(specs, func(w io.Writer) error {
		rows := lo.Map(specs, func(s services.TableSpec, _ int) []string {
			return []string{s.Name, s.FileName, s.IDColumn}
		})
		return table(w, []string{"TABLE", "FILE", "ID COLUMN"}, rows)
	})
}

func runTablesShow(opts *RootOptions, name string, cmd *cobra.Command) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}

	t, spec, err := e.editor.Table(name)
	if err != nil {
		return err
	}

	view := TableView{
		Table:    spec.Name,
		FileName: spec.FileName,
		IDColumn: spec.IDColumn,
		Headers:  t.Headers,
		Rows:     t.Rows,
	}
	return newFormatter(opts, cmd.OutOrStdout()).Print(view, func(w io.Writer) error {
		rows := lo.Map(t.Rows, func(r database.Row, _ int) []string {
			return lo.Map(t.Headers, func(h string, _ int) string { return utils.TruncateString(r.Get(h), maxCellWidth) })
		})
		if err := table(w, t.Headers, rows); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "%d rows in %s\n", len(t.Rows), spec.FileName)
		return err
	})
}

func runTablesDelete(opts *RootOptions, name, id string, cmd *cobra.Command) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}

	result, err := e.editor.Delete(name, id)
	if err != nil {
		return saveFallback(opts.FallbackDir, err)
	}
	return newFormatter(opts, cmd.OutOrStdout()).Message("Deleted %s from %s (backup: %s)", id, result.FileName, result.Backup)
}
