package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/cashbook/internal/filter"
	"github.com/oakwood-commons/cashbook/internal/formatter"
	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/registry"
	"github.com/oakwood-commons/cashbook/internal/render"
	"github.com/oakwood-commons/cashbook/pkg/core"
	"github.com/oakwood-commons/cashbook/pkg/loader"
)

func newDocumentsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs", "doc"},
		Short:   "Record and list invoices, taxes and other documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newDocumentsListCmd(o),
		newDocumentsShowCmd(o),
		newDocumentsAddCmd(o),
		newDocumentsUpdateCmd(o),
		newDocumentsDeleteCmd(o),
		newDocumentsImportCmd(o),
	)
	return cmd
}

func newDocumentsListCmd(o *rootOptions) *cobra.Command {
	var (
		lf      listFlags
		filters filter.Filters
		fuzzy   string
		where   string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List documents",
		Example: `  cashbook documents list --kind ap_invoice --status overdue
  cashbook documents list --fuzzy rent
  cashbook documents list --where 'doc.direction == "IN" && doc.remaining > 0.0' -o json
  cashbook documents list --tail 5 --width 80`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := filters.Store()
			if err != nil {
				return UsageError{Err: err}
			}
			q := core.DocumentQuery{Filter: f, Where: where, Fuzzy: fuzzy}
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				docs, err := e.Documents(ctx, q)
				if err != nil {
					return err
				}
				cols, err := e.Columns(ctx, registry.TableDocuments)
				if err != nil {
					return err
				}
				return writeList(cmd, o, &lf, "Documents", loader.DocumentsKey, docs, cols)
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&filters.Kind, "kind", "", "only documents of this kind")
	fs.StringVar(&filters.Status, "status", "", "only documents with this status")
	fs.StringVar(&filters.Direction, "direction", "", "only IN or OUT documents")
	fs.StringVar(&filters.Search, "search", "", "substring of title, number or counterparty")
	fs.StringVar(&fuzzy, "fuzzy", "", "fuzzy match on title, number or counterparty, best matches first")
	fs.StringVar(&where, "where", "", "CEL expression over 'doc', e.g. 'doc.amount_gross > 1000.0'")
	lf.register(cmd)
	return cmd
}

func newDocumentsShowCmd(o *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show every field of a document and its payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := formatter.ParseFormat(output)
			if err != nil || format == formatter.FormatHTML {
				return usageErrorf("invalid output format %q: valid values are table, yaml, json, toml", output)
			}
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				doc, err := e.Document(ctx, args[0])
				if err != nil {
					return err
				}
				if format != formatter.FormatTable {
					return export(cmd.OutOrStdout(), doc, format, "")
				}
				cols, err := e.Columns(ctx, registry.TableDocuments)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprint(w, render.Detail(render.DetailPairs(doc, cols), o.run.NoColor, o.width()))

				payments, err := e.Payments(ctx, doc.ID)
				if err != nil {
					return err
				}
				if len(payments) == 0 {
					return nil
				}
				pcols, err := e.Columns(ctx, registry.TablePayments)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "\nPayments (%d)\n", len(payments))
				fmt.Fprint(w, renderTable(o, payments, pcols, -1))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table|yaml|json|toml")
	return cmd
}

// documentFlags hold the editable document fields as text so that update
// can tell which ones were given.
type documentFlags struct {
	kind, direction, status, number, title string
	counterparty, counterpartyID, receipt  string
	issueDate, dueDate, net, gross, notes  string
	currency                               string
}

func (f *documentFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.kind, "kind", "", "document kind: ar_invoice|ap_invoice|tax|standing_order|lease_instalment|loan_instalment|other")
	fs.StringVar(&f.direction, "direction", "", "IN (receivable) or OUT (payable)")
	fs.StringVar(&f.status, "status", "", "status (default planned)")
	fs.StringVar(&f.number, "number", "", "document number")
	fs.StringVar(&f.title, "title", "", "title")
	fs.StringVar(&f.counterparty, "counterparty", "", "counterparty name")
	fs.StringVar(&f.counterpartyID, "counterparty-id", "", "id of a registered counterparty")
	fs.StringVar(&f.receipt, "receipt-form", "", "how the document was received")
	fs.StringVar(&f.issueDate, "issue-date", "", "issue date (YYYY-MM-DD)")
	fs.StringVar(&f.dueDate, "due", "", "due date (YYYY-MM-DD)")
	fs.StringVar(&f.net, "net", "", "net amount, e.g. 1000.00")
	fs.StringVar(&f.gross, "gross", "", "gross amount, e.g. 1230.00")
	fs.StringVar(&f.currency, "doc-currency", "", "currency of this document (default --currency)")
	fs.StringVar(&f.notes, "notes", "", "free-text notes")
}

func (f *documentFlags) insert() (ledger.DocumentInsert, error) {
	in := ledger.DocumentInsert{
		Number:         f.number,
		Title:          f.title,
		Counterparty:   f.counterparty,
		CounterpartyID: f.counterpartyID,
		Currency:       f.currency,
		Notes:          f.notes,
	}
	var err error
	if in.Kind, err = ledger.ParseDocumentKind(f.kind); err != nil {
		return in, err
	}
	if in.Direction, err = ledger.ParseDirection(f.direction); err != nil {
		return in, err
	}
	if f.status != "" {
		if in.Status, err = ledger.ParseDocumentStatus(f.status); err != nil {
			return in, err
		}
	}
	if f.receipt != "" {
		if in.ReceiptForm, err = ledger.ParseReceiptForm(f.receipt); err != nil {
			return in, err
		}
	}
	if in.IssueDate, err = ledger.ParseDate(f.issueDate); err != nil {
		return in, err
	}
	if in.DueDate, err = ledger.ParseDate(f.dueDate); err != nil {
		return in, err
	}
	if f.net != "" {
		net, err := ledger.ParseAmount(f.net)
		if err != nil {
			return in, err
		}
		in.AmountNet = &net
	}
	if in.AmountGross, err = ledger.ParseAmount(f.gross); err != nil {
		return in, err
	}
	return in, nil
}

// update sets the fields whose flags were given on the command line.
func (f *documentFlags) update(id string, fs *pflag.FlagSet) (ledger.DocumentUpdate, error) {
	u := ledger.DocumentUpdate{ID: id}
	set := func(name string) bool { return fs.Changed(name) }

	if set("kind") {
		k, err := ledger.ParseDocumentKind(f.kind)
		if err != nil {
			return u, err
		}
		u.Kind = &k
	}
	if set("direction") {
		d, err := ledger.ParseDirection(f.direction)
		if err != nil {
			return u, err
		}
		u.Direction = &d
	}
	if set("status") {
		s, err := ledger.ParseDocumentStatus(f.status)
		if err != nil {
			return u, err
		}
		u.Status = &s
	}
	if set("receipt-form") {
		r, err := ledger.ParseReceiptForm(f.receipt)
		if err != nil {
			return u, err
		}
		u.ReceiptForm = &r
	}
	if set("issue-date") {
		d, err := ledger.ParseDate(f.issueDate)
		if err != nil {
			return u, err
		}
		u.IssueDate = &d
	}
	if set("due") {
		d, err := ledger.ParseDate(f.dueDate)
		if err != nil {
			return u, err
		}
		u.DueDate = &d
	}
	if set("net") {
		a, err := ledger.ParseAmount(f.net)
		if err != nil {
			return u, err
		}
		u.AmountNet = &a
	}
	if set("gross") {
		a, err := ledger.ParseAmount(f.gross)
		if err != nil {
			return u, err
		}
		u.AmountGross = &a
	}
	for name, dst := range map[string]**string{
		"number":       &u.Number,
		"title":        &u.Title,
		"counterparty": &u.Counterparty,
		"doc-currency": &u.Currency,
		"notes":        &u.Notes,
	} {
		if set(name) {
			v := fs.Lookup(name).Value.String()
			*dst = &v
		}
	}
	return u, nil
}

func newDocumentsAddCmd(o *rootOptions) *cobra.Command {
	var f documentFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a document",
		Example: `  cashbook documents add --kind ap_invoice --direction out --title "Office rent" \
    --number FV/01/2025 --net 1000.00 --gross 1230.00 --due 2025-03-10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := f.insert()
			if err != nil {
				return err
			}
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				doc, err := e.CreateDocument(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created document %s\n", doc.ID)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	for _, name := range []string{"kind", "direction", "title", "due", "gross"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newDocumentsUpdateCmd(o *rootOptions) *cobra.Command {
	var f documentFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := f.update(args[0], cmd.Flags())
			if err != nil {
				return err
			}
			if u.Empty() {
				return usageErrorf("nothing to update: pass at least one field flag")
			}
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				doc, err := e.UpdateDocument(ctx, u)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated document %s\n", doc.ID)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newDocumentsDeleteCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a document and its payments",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				if err := e.DeleteDocument(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted document %s\n", args[0])
				return nil
			})
		},
	}
}

func newDocumentsImportCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import documents from a YAML, JSON, NDJSON or TOML file",
		Long: `Import documents from a file. The format is detected from the extension or
the content. A file holds a list of documents, a single document, or a
"documents" key with the list (TOML: [[documents]] tables).

All documents are validated before any is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ins, err := loader.LoadDocuments(args[0])
			if err != nil {
				return err
			}
			return o.withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
				docs, err := e.ImportDocuments(ctx, ins)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d documents\n", len(docs))
				return nil
			})
		},
	}
}
