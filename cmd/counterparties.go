package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/registry"
	"github.com/oakwood-commons/cashbook/pkg/core"
)

func newCounterpartiesCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "counterparties",
		Aliases: []string{"cp"},
		Short:   "Manage customers and suppliers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newCounterpartiesListCmd(o), newCounterpartiesAddCmd(o))
	return cmd
}

func newCounterpartiesListCmd(o *rootOptions) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List counterparties",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				cps, err := e.Counterparties(ctx)
				if err != nil {
					return err
				}
				cols, err := e.Columns(ctx, registry.TableCounterparties)
				if err != nil {
					return err
				}
				return writeList(cmd, o, &lf, "Counterparties", "counterparties", cps, cols)
			})
		},
	}
	lf.register(cmd)
	return cmd
}

func newCounterpartiesAddCmd(o *rootOptions) *cobra.Command {
	var in ledger.CounterpartyInsert
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a counterparty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				c, err := e.AddCounterparty(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created counterparty %s\n", c.ID)
				return nil
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&in.Name, "name", "", "name")
	fs.StringVar(&in.VATID, "vat-id", "", "VAT identification number")
	fs.StringVar(&in.Email, "email", "", "email address")
	fs.StringVar(&in.Phone, "phone", "", "phone number")
	fs.StringVar(&in.Address, "address", "", "postal address")
	fs.StringVar(&in.Notes, "notes", "", "free-text notes")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
