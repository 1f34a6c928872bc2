package cli

import (
	"fmt"
	"io"
	"os"

	"storefront-backend/internal/models"
	"storefront-backend/internal/services"

	"github.com/spf13/cobra"
)

// RelayLinkResult is the structured form of `relay link`.
type RelayLinkResult struct {
	Channel string `json:"channel"`
	OrderID string `json:"orderId"`
	Link    string `json:"link"`
	QRCode  string `json:"qrCode,omitempty"`
}

// RelayLinkOptions holds the flags of `relay link`.
type RelayLinkOptions struct {
	Channel string
	To      string
	QRFile  string
	QRSize  int
}

// NewRelayCommand creates the relay command group.
func NewRelayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Build order relay links",
	}

	opts := &RelayLinkOptions{}
	link := &cobra.Command{
		Use:   "link <payload-file>",
		Short: "Build the WhatsApp or email link for a relay payload",
		Long: `Build the link a shopper opens to send an order to the merchant.

The payload file holds the order JSON, or "-" reads it from standard input.
With --qr the link is also rendered as a PNG QR code.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelayLink(rootOpts, opts, args[0], cmd)
		},
	}
	link.Flags().StringVar(&opts.Channel, "channel", models.NotifyWhatsApp, "relay channel (whatsapp|email)")
	link.Flags().StringVar(&opts.To, "to", "", "merchant WhatsApp number or email address")
	link.Flags().StringVar(&opts.QRFile, "qr", "", "write the link as a PNG QR code to this file")
	link.Flags().IntVar(&opts.QRSize, "qr-size", 256, "QR code size in pixels")
	_ = link.MarkFlagRequired("to")
	cmd.AddCommand(link)

	return cmd
}

func runRelayLink(rootOpts *RootOptions, opts *RelayLinkOptions, source string, cmd *cobra.Command) error {
	payload, err := readSource(cmd, source)
	if err != nil {
		return err
	}
	order, err := services.ParseRelayPayload(payload)
	if err != nil {
		return err
	}

	result := RelayLinkResult{Channel: opts.Channel, OrderID: order.OrderID}
	switch opts.Channel {
	case models.NotifyWhatsApp:
		result.Link, err = services.WhatsAppLink(opts.To, payload)
	case models.NotifyEmail:
		result.Link, err = services.EmailLink(opts.To, order.OrderID, payload)
	default:
		return fmt.Errorf("invalid channel %q: must be %s or %s", opts.Channel, models.NotifyWhatsApp, models.NotifyEmail)
	}
	if err != nil {
		return err
	}

	if opts.QRFile != "" {
		png, err := services.RelayQRCode(result.Link, opts.QRSize)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.QRFile, png, 0o644); err != nil {
			return fmt.Errorf("failed to write QR code: %w", err)
		}
		result.QRCode = opts.QRFile
	}

	return newFormatter(rootOpts, cmd.OutOrStdout()).Print(result, func(w io.Writer) error {
		if _, err := fmt.Fprintln(w, result.Link); err != nil {
			return err
		}
		if result.QRCode != "" {
			_, err := fmt.Fprintf(w, "QR code written to %s\n", result.QRCode)
			return err
		}
		return nil
	})
}
