package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tournevent/cushypost/pkg/cushypost"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "cushypost",
		Short:        "CushyPost shipping client - quotes, approvals, cart and labels",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVar(&opts.mock, "mock", false, "use the built-in mock API instead of CushyPost")
	rootCmd.PersistentFlags().StringVar(&opts.stateFile, "state", "", "session state file (default $CUSHYPOST_STATE_FILE)")
	rootCmd.PersistentFlags().BoolVar(&opts.metrics, "metrics", false, "print operation metrics to stderr on exit")

	rootCmd.AddCommand(
		newLoginCmd(opts),
		newRefreshCmd(opts),
		newGeoDBCmd(opts),
		newQuoteCmd(opts),
		newApproveCmd(opts),
		newLabelsCmd(opts),
		newCartCmd(opts),
		newSearchCmd(opts),
	)
	return rootCmd
}

func newLoginCmd(opts *options) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and save the session",
		Args:  cobra.NoArgs,
		RunE: run(opts, func(ctx context.Context, s *session, _ []string) error {
			user := lo.Ternary(username != "", username, s.cfg.Username)
			pass := lo.Ternary(password != "", password, s.cfg.Password)
			if err := s.client.Login(ctx, user, pass); err != nil {
				return err
			}
			s.logger.Info("Logged in", zap.String("state_file", s.cfg.StateFile))
			return nil
		}),
	}
	cmd.Flags().StringVar(&username, "username", "", "account username (default $CUSHYPOST_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "account password (default $CUSHYPOST_PASSWORD)")
	return cmd
}

func newRefreshCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the saved session tokens",
		Args:  cobra.NoArgs,
		RunE: run(opts, func(ctx context.Context, s *session, _ []string) error {
			return s.client.RefreshTokens(ctx)
		}),
	}
}

func newGeoDBCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "geodb <country> <postcode>",
		Short: "List every locality of a postcode",
		Args:  cobra.ExactArgs(2),
		RunE: run(opts, func(ctx context.Context, s *session, args []string) error {
			records, err := s.client.SearchGeoDB(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return s.print(records)
		}),
	}
}

func newQuoteCmd(opts *options) *cobra.Command {
	var (
		from, to       string
		packages       []string
		date           string
		insurance, cod float64
		goods          string
		instructions   string
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Build a shipment and print carrier rates",
		Args:  cobra.NoArgs,
		RunE: run(opts, func(ctx context.Context, s *session, _ []string) error {
			origin, err := parseEndpoint(from)
			if err != nil {
				return err
			}
			destination, err := parseEndpoint(to)
			if err != nil {
				return err
			}
			parcels := make([]cushypost.Package, 0, len(packages))
			for _, p := range packages {
				parcel, err := parsePackage(p)
				if err != nil {
					return err
				}
				parcels = append(parcels, parcel)
			}
			year, month, day, err := parseDate(date, time.Now())
			if err != nil {
				return err
			}

			if err := s.client.SetFrom(ctx, origin.Country, origin.Postcode, origin.City); err != nil {
				return err
			}
			if err := s.client.SetTo(ctx, destination.Country, destination.Postcode, destination.City); err != nil {
				return err
			}
			if err := s.client.SetServices(ctx, cushypost.ServicesRequest{
				Year:           year,
				Month:          month,
				Day:            day,
				InsuranceValue: insurance,
				CashOnDelivery: cod,
			}); err != nil {
				return err
			}
			if err := s.client.SetShipping(parcels, goods, instructions); err != nil {
				return err
			}

			rates, err := s.client.GetRates(ctx)
			if err != nil {
				return err
			}
			return s.print(rates)
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "origin as COUNTRY:POSTCODE[:CITY]")
	cmd.Flags().StringVar(&to, "to", "", "destination as COUNTRY:POSTCODE[:CITY]")
	cmd.Flags().StringArrayVar(&packages, "package", nil, "package as HxWxLxKG, repeatable")
	cmd.Flags().StringVar(&date, "date", "", "collection date YYYY-MM-DD (default next business day)")
	cmd.Flags().Float64Var(&insurance, "insurance", 0, "insured value in EUR")
	cmd.Flags().Float64Var(&cod, "cod", 0, "cash on delivery in EUR")
	cmd.Flags().StringVar(&goods, "goods", "", "goods description")
	cmd.Flags().StringVar(&instructions, "instructions", "", "special instructions")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("package")
	return cmd
}

func newApproveCmd(opts *options) *cobra.Command {
	var sender, recipient cushypost.ContactDetails

	cmd := &cobra.Command{
		Use:   "approve <quotation-id>",
		Short: "Approve a quotation of the saved shipment for payment",
		Args:  cobra.ExactArgs(1),
		RunE: run(opts, func(ctx context.Context, s *session, args []string) error {
			order, err := s.client.ApproveQuotation(ctx, args[0], sender, recipient, nil)
			if err != nil {
				return err
			}
			return s.print(order)
		}),
	}
	cmd.Flags().StringVar(&sender.Name, "sender-name", "", "sender name")
	cmd.Flags().StringVar(&sender.Phone, "sender-phone", "", "sender phone")
	cmd.Flags().StringVar(&sender.Email, "sender-email", "", "sender email")
	cmd.Flags().StringVar(&sender.Address, "sender-address", "", "sender street address")
	cmd.Flags().StringVar(&sender.City, "sender-city", "", "sender city, overrides the resolved one")
	cmd.Flags().StringVar(&recipient.Name, "recipient-name", "", "recipient name")
	cmd.Flags().StringVar(&recipient.Phone, "recipient-phone", "", "recipient phone (default sender phone)")
	cmd.Flags().StringVar(&recipient.Email, "recipient-email", "", "recipient email (default sender email)")
	cmd.Flags().StringVar(&recipient.Address, "recipient-address", "", "recipient street address")
	return cmd
}

func newLabelsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "labels <shipment-id>...",
		Short: "Print the labels of paid shipments",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(opts, func(ctx context.Context, s *session, args []string) error {
			return s.print(s.client.GetShipmentLabel(ctx, args))
		}),
	}
}

func newCartCmd(opts *options) *cobra.Command {
	cartCmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shipment cart",
	}

	addCmd := &cobra.Command{
		Use:   "add <shipment-id>...",
		Short: "Add shipments to the cart, all or none",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(opts, func(ctx context.Context, s *session, args []string) error {
			return s.client.AddShippingIDsToCart(ctx, args)
		}),
	}

	var strict bool
	removeCmd := &cobra.Command{
		Use:   "remove <shipment-id>...",
		Short: "Remove shipments from the cart",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(opts, func(ctx context.Context, s *session, args []string) error {
			return s.client.RemoveShippingIDsFromCart(ctx, args, strict)
		}),
	}
	removeCmd.Flags().BoolVar(&strict, "strict", false, "stop at the first failed removal")

	var successURL, cancelURL, description string
	buyCmd := &cobra.Command{
		Use:   "buy",
		Short: "Start the cart checkout and print the payment URL",
		Args:  cobra.NoArgs,
		RunE: run(opts, func(ctx context.Context, s *session, _ []string) error {
			checkoutURL, err := s.client.BuyCart(ctx, successURL, cancelURL, description)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(s.out, checkoutURL)
			return err
		}),
	}
	buyCmd.Flags().StringVar(&successURL, "success-url", "", "redirect after payment")
	buyCmd.Flags().StringVar(&cancelURL, "cancel-url", "", "redirect after a cancelled payment")
	buyCmd.Flags().StringVar(&description, "description", "", "checkout description")

	confirmCmd := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm the checkout started by buy",
		Args:  cobra.NoArgs,
		RunE: run(opts, func(ctx context.Context, s *session, _ []string) error {
			return s.client.ConfirmCart(ctx)
		}),
	}

	cartCmd.AddCommand(addCmd, removeCmd, buyCmd, confirmCmd)
	return cartCmd
}

func newSearchCmd(opts *options) *cobra.Command {
	var page int

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search shipments",
	}
	searchCmd.PersistentFlags().IntVar(&page, "page", 0, "zero-based result page")

	paidCmd := &cobra.Command{
		Use:   "paid",
		Short: "List paid shipments",
		Args:  cobra.NoArgs,
		RunE: run(opts, func(ctx context.Context, s *session, _ []string) error {
			items, err := s.client.SearchPaidShipping(ctx, page)
			if err != nil {
				return err
			}
			return s.print(items)
		}),
	}

	toPayCmd := &cobra.Command{
		Use:   "to-pay",
		Short: "List approved shipments awaiting payment",
		Args:  cobra.NoArgs,
		RunE: run(opts, func(ctx context.Context, s *session, _ []string) error {
			items, err := s.client.SearchQuotationToPay(ctx, page)
			if err != nil {
				return err
			}
			return s.print(items)
		}),
	}

	quotationsCmd := &cobra.Command{
		Use:   "quotations <quotation-id>...",
		Short: "Print the shipment ids of approved quotations",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(opts, func(ctx context.Context, s *session, args []string) error {
			ids, err := s.client.SearchByQuotationID(ctx, args, page)
			if err != nil {
				return err
			}
			return s.print(ids)
		}),
	}

	searchCmd.AddCommand(paidCmd, toPayCmd, quotationsCmd)
	return searchCmd
}
