package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"storefront-backend/internal/models"
	"storefront-backend/internal/services"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// NewOrdersCommand creates the orders command group.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Review and update orders.csv",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrdersList(rootOpts, status, cmd)
		},
	}
	list.Flags().StringVar(&status, "status", "", "only orders with this admin status")
	cmd.AddCommand(list)

	var comment string
	setStatus := &cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Set the admin status of an order",
		Long: fmt.Sprintf("Set the admin status and comment of an order.\n\nStatuses: %s",
			strings.Join(lo.Map(models.AdminStatuses, func(s models.AdminStatus, _ int) string { return string(s) }), ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrdersStatus(rootOpts, args[0], args[1], comment, cmd)
		},
	}
	setStatus.Flags().StringVar(&comment, "comment", "", "admin comment stored with the order")
	cmd.AddCommand(setStatus)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <order-id>",
		Short: "Delete an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrdersDelete(rootOpts, args[0], cmd)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import [file|-]",
		Short: "Import a relay payload pasted from a message",
		Long: `Import a relay payload pasted from a WhatsApp message or email.

The payload is read from the file, or from standard input when the file is
"-" or omitted. Text around the JSON document is ignored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := "-"
			if len(args) == 1 {
				source = args[0]
			}
			return runOrdersImport(rootOpts, source, cmd)
		},
	})

	return cmd
}

func runOrdersList(opts *RootOptions, status string, cmd *cobra.Command) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}

	list, err := e.orders.List(status)
	if err != nil {
		return err
	}

	return newFormatter(opts, cmd.OutOrStdout()).Print(list, func(w io.Writer) error {
		rows := lo.Map(list.Orders, func(o models.AdminOrder, _ int) []string {
			return []string{
				o.OrderID,
				o.OrderDate,
				strings.TrimSpace(o.Customer.FirstName + " " + o.Customer.LastName),
				o.Total.StringFixed(2),
				string(o.AdminStatus),
			}
		})
		if err := table(w, []string{"ORDER", "DATE", "CUSTOMER", "TOTAL", "STATUS"}, rows); err != nil {
			return err
		}
		counts := lo.Map(models.AdminStatuses, func(s models.AdminStatus, _ int) string {
			return fmt.Sprintf("%s=%d", s, list.Counts[s])
		})
		_, err := fmt.Fprintf(w, "%d of %d orders (%s)\n", len(list.Orders), list.Total, strings.Join(counts, " "))
		return err
	})
}

func runOrdersStatus(opts *RootOptions, orderID, status, comment string, cmd *cobra.Command) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}

	if _, err := e.orders.UpdateStatus(orderID, status, comment); err != nil {
		return saveFallback(opts.FallbackDir, err)
	}
	return newFormatter(opts, cmd.OutOrStdout()).Message("Order %s marked %s", orderID, status)
}

func runOrdersDelete(opts *RootOptions, orderID string, cmd *cobra.Command) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}

	if _, err := e.orders.Delete(orderID); err != nil {
		return saveFallback(opts.FallbackDir, err)
	}
	return newFormatter(opts, cmd.OutOrStdout()).Message("Order %s deleted", orderID)
}

// readSource reads a file, or standard input for "-".
func readSource(cmd *cobra.Command, source string) (string, error) {
	if source == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", source, err)
	}
	return string(data), nil
}

func runOrdersImport(opts *RootOptions, source string, cmd *cobra.Command) error {
	text, err := readSource(cmd, source)
	if err != nil {
		return err
	}

	imp, err := services.ParseRelayPayload(text)
	if err != nil {
		return err
	}

	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	if _, err := e.orders.Import(imp); err != nil {
		return saveFallback(opts.FallbackDir, err)
	}

	return newFormatter(opts, cmd.OutOrStdout()).Print(imp, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Order %s added (%s %s, %d items, total %s)\n",
			imp.OrderID, imp.FirstName, imp.LastName, len(imp.Items), imp.Total.StringFixed(2))
		return err
	})
}
