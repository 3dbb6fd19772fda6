package filter

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/oakwood-commons/cashbook/internal/ledger"
)

// DocVar is the name documents are bound to in a where expression.
const DocVar = "doc"

// ErrUnknownField is returned when an expression reads a field documents do not have.
var ErrUnknownField = errors.New("unknown document field")

var knownFields = func() map[string]struct{} {
	m := make(map[string]struct{}, len(ledger.DocumentFields))
	for _, f := range ledger.DocumentFields {
		m[f] = struct{}{}
	}
	return m
}()

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable(DocVar, cel.DynType),
		celext.Strings(),
		celext.Lists(),
		celext.Math(),
	)
}

// Where is a compiled boolean expression over a document, for example
// `doc.amount_gross > 1000.0 && doc.status == "issued"`.
type Where struct {
	expr string
	prg  cel.Program
}

// CompileWhere parses and checks expr. References to fields a document does
// not have are rejected here rather than at evaluation.
func CompileWhere(expr string) (*Where, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: where: %w", ledger.ErrValidation, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(types.BoolType) && !out.IsExactType(types.DynType) {
		return nil, fmt.Errorf("%w: where: expression yields %s, want bool", ledger.ErrValidation, out)
	}

	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("where: %w", err)
	}
	if err := checkFields(parsed.GetExpr()); err != nil {
		return nil, fmt.Errorf("%w: where: %w", ledger.ErrValidation, err)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("where: program: %w", err)
	}
	return &Where{expr: expr, prg: prg}, nil
}

func (w *Where) String() string { return w.expr }

// Match evaluates the expression against d.
func (w *Where) Match(d ledger.DocumentEnhanced) (bool, error) {
	out, _, err := w.prg.Eval(map[string]any{DocVar: View(d)})
	if err != nil {
		return false, fmt.Errorf("where %q on document %s: %w", w.expr, d.ID, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("where %q on document %s: got %s, want bool", w.expr, d.ID, out.Type().TypeName())
	}
	return b, nil
}

// Apply keeps the documents the expression matches, in order.
func (w *Where) Apply(docs []ledger.DocumentEnhanced) ([]ledger.DocumentEnhanced, error) {
	out := make([]ledger.DocumentEnhanced, 0, len(docs))
	for _, d := range docs {
		ok, err := w.Match(d)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// View is the map a where expression sees as doc. Amounts become decimal
// major units, dates ISO strings and enums their stored codes. Unset optional
// fields are null.
func View(d ledger.DocumentEnhanced) map[string]any {
	m := make(map[string]any, len(ledger.DocumentFields))
	for _, name := range ledger.DocumentFields {
		v, _ := d.FieldValue(name)
		m[name] = celValue(v)
	}
	return m
}

func celValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case ledger.Amount:
		return x.Float()
	case ledger.Date:
		return x.String()
	case ledger.DocumentKind:
		return string(x)
	case ledger.DocumentStatus:
		return string(x)
	case ledger.Direction:
		return string(x)
	case ledger.ReceiptForm:
		return string(x)
	case int:
		return int64(x)
	case time.Time:
		return x.UTC()
	default:
		return v
	}
}

// checkFields walks the parsed expression and reports the first doc.<field>
// or doc["field"] reference that is not a document field.
func checkFields(e *exprpb.Expr) error {
	if e == nil {
		return nil
	}
	switch e.ExprKind.(type) {
	case *exprpb.Expr_SelectExpr:
		sel := e.GetSelectExpr()
		if isDoc(sel.GetOperand()) {
			return known(sel.GetField())
		}
		return checkFields(sel.GetOperand())

	case *exprpb.Expr_CallExpr:
		call := e.GetCallExpr()
		if call.GetFunction() == "_[_]" && len(call.GetArgs()) == 2 && isDoc(call.GetArgs()[0]) {
			if c := call.GetArgs()[1].GetConstExpr(); c != nil {
				if _, ok := c.ConstantKind.(*exprpb.Constant_StringValue); ok {
					return known(c.GetStringValue())
				}
			}
		}
		if err := checkFields(call.GetTarget()); err != nil {
			return err
		}
		for _, arg := range call.GetArgs() {
			if err := checkFields(arg); err != nil {
				return err
			}
		}

	case *exprpb.Expr_ListExpr:
		for _, elem := range e.GetListExpr().GetElements() {
			if err := checkFields(elem); err != nil {
				return err
			}
		}

	case *exprpb.Expr_StructExpr:
		for _, entry := range e.GetStructExpr().GetEntries() {
			if err := checkFields(entry.GetMapKey()); err != nil {
				return err
			}
			if err := checkFields(entry.GetValue()); err != nil {
				return err
			}
		}

	case *exprpb.Expr_ComprehensionExpr:
		comp := e.GetComprehensionExpr()
		for _, part := range []*exprpb.Expr{
			comp.GetIterRange(), comp.GetAccuInit(), comp.GetLoopCondition(), comp.GetLoopStep(), comp.GetResult(),
		} {
			if err := checkFields(part); err != nil {
				return err
			}
		}
	}
	return nil
}

func isDoc(e *exprpb.Expr) bool {
	id := e.GetIdentExpr()
	return id != nil && id.GetName() == DocVar
}

func known(field string) error {
	if _, ok := knownFields[field]; ok {
		return nil
	}
	return fmt.Errorf("%w %q", ErrUnknownField, field)
}
