package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/registry"
	"github.com/oakwood-commons/cashbook/pkg/core"
)

func newPaymentsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payments",
		Aliases: []string{"pay"},
		Short:   "Record payments against documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newPaymentsListCmd(o), newPaymentsAddCmd(o), newPaymentsDeleteCmd(o))
	return cmd
}

func newPaymentsListCmd(o *rootOptions) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:     "list <document-id>",
		Aliases: []string{"ls"},
		Short:   "List the payments of a document",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				payments, err := e.Payments(ctx, args[0])
				if err != nil {
					return err
				}
				cols, err := e.Columns(ctx, registry.TablePayments)
				if err != nil {
					return err
				}
				return writeList(cmd, o, &lf, "Payments", "payments", payments, cols)
			})
		},
	}
	lf.register(cmd)
	return cmd
}

func newPaymentsAddCmd(o *rootOptions) *cobra.Command {
	var amount, date, method, note string
	cmd := &cobra.Command{
		Use:   "add <document-id>",
		Short: "Record a payment; the document status follows the paid total",
		Example: `  cashbook payments add 7f3c... --amount 500.00 --date 2025-03-05 --method cash
  cashbook payments add 7f3c... --amount 1230.00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := ledger.PaymentInsert{DocumentID: args[0], Note: note}
			var err error
			if in.Amount, err = ledger.ParseAmount(amount); err != nil {
				return err
			}
			if in.PaidDate, err = ledger.ParseDate(date); err != nil {
				return err
			}
			if method != "" {
				if in.Method, err = ledger.ParsePaymentMethod(method); err != nil {
					return err
				}
			}
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				p, err := e.AddPayment(ctx, in)
				if err != nil {
					return err
				}
				doc, err := e.Document(ctx, p.DocumentID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "recorded payment %s; document %s is %s\n", p.ID, doc.ID, doc.Status)
				return nil
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&amount, "amount", "", "amount paid, e.g. 500.00")
	fs.StringVar(&date, "date", "", "payment date (default today)")
	fs.StringVar(&method, "method", "", "payment method (default transfer)")
	fs.StringVar(&note, "note", "", "free-text note")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newPaymentsDeleteCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a payment",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				if err := e.DeletePayment(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted payment %s\n", args[0])
				return nil
			})
		},
	}
}
