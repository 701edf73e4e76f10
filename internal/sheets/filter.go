package sheets

// RowPredicate decides whether a row is part of a result.
type RowPredicate func(Row) bool

// AcceptAll accepts every row.
func AcceptAll(Row) bool { return true }

// Compile turns clauses into a single predicate that is the AND of all of
// them. Columns and operators are checked here so a compiled predicate never
// fails; an empty clause list accepts every row.
func (e *Evaluator) Compile(schema Schema, clauses []Clause) (RowPredicate, error) {
	if len(clauses) == 0 {
		return AcceptAll, nil
	}

	type bound struct {
		idx    int
		clause Clause
	}
	compiled := make([]bound, 0, len(clauses))
	for _, c := range clauses {
		op, err := ParseOperator(string(c.Operator))
		if err != nil {
			return nil, err
		}
		idx, err := schema.Require(c.Column)
		if err != nil {
			return nil, err
		}
		c.Operator = op
		switch {
		case !op.IsList() && len(c.Values) > 0:
			return nil, &ConfigurationError{Kind: "operand", Name: string(op)}
		case op.IsList() && len(c.Values) == 0 && c.Value != "":
			c.Values = []string{c.Value}
		}
		compiled = append(compiled, bound{idx: idx, clause: c})
	}

	return func(r Row) bool {
		for _, b := range compiled {
			// Operators were validated above, so Evaluate cannot fail.
			ok, _ := e.Evaluate(r.Cell(b.idx), b.clause)
			if !ok {
				return false
			}
		}
		return true
	}, nil
}

// Filter returns the rows of t accepted by pred, in sheet order.
func Filter(t *Table, pred RowPredicate) []Row {
	out := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}
