package loopir

// LoadDemoProcs builds a tiny, self-contained procedure set with no
// front-end involved, so cmd/loopirc has something real to compile
// without this package needing to parse any source language itself.
// It is not meant to demonstrate the full IR surface -- just enough to
// drive the emitter end to end.
func LoadDemoProcs() ([]*Proc, error) {
	n, err := NewSymbol("n")
	if err != nil {
		return nil, err
	}
	x, err := NewSymbol("x")
	if err != nil {
		return nil, err
	}
	i, err := NewSymbol("i")
	if err != nil {
		return nil, err
	}

	xt, err := NewTensorType([]Expr{&ReadExpr{Name: n, Typ: T.Size}}, false, T.F32)
	if err != nil {
		return nil, err
	}

	body := []Stmt{
		&SeqStmt{
			Iter: i,
			Hi:   &ReadExpr{Name: n, Typ: T.Size},
			Body: []Stmt{
				&AssignStmt{
					Name: x,
					Typ:  T.F32,
					Idx:  []Expr{&ReadExpr{Name: i, Typ: T.Index}},
					Rhs: &BinOpExpr{
						Op:  OpMul,
						Lhs: &ReadExpr{Name: x, Idx: []Expr{&ReadExpr{Name: i, Typ: T.Index}}, Typ: T.F32},
						Rhs: &ConstExpr{Val: ConstVal{IsReal: true, Real: 2}, Typ: T.F32},
						Typ: T.F32,
					},
				},
			},
		},
	}

	p := &Proc{
		Name: "scale_by_two",
		Args: []*FnArg{
			{Name: n, Typ: T.Size},
			{Name: x, Typ: xt, Mem: defaultDRAM},
		},
		Body: body,
	}
	return []*Proc{p}, nil
}
