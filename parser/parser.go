// Package parser builds the statement tree from the lexer's token stream.
package parser

import (
	"fmt"

	"github.com/gosuda/pseudocode/ast"
	"github.com/gosuda/pseudocode/fraction"
	"github.com/gosuda/pseudocode/lexer"
)

type Parser struct {
	toks   []lexer.Token
	pos    int
	inFunc bool
}

// Parse consumes a full token stream and returns the program.
func Parse(toks []lexer.Token) (*ast.Program, error) {
	p := &Parser{toks: toks}
	prog := &ast.Program{}
	for !p.done() {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}
	return prog, nil
}

func (p *Parser) done() bool {
	return p.pos >= len(p.toks)
}

func (p *Parser) peek() lexer.Token {
	if p.done() {
		return lexer.Token{Kind: lexer.INVALID}
	}
	return p.toks[p.pos]
}

func (p *Parser) next() lexer.Token {
	t := p.peek()
	p.pos++
	return t
}

func (p *Parser) match(kind lexer.TokenKind) bool {
	if p.peek().Kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, error) {
	if p.peek().Kind != kind {
		return lexer.Token{}, p.errf("expected %s, found %s", kind, p.peek().Kind)
	}
	return p.next(), nil
}

func (p *Parser) errf(format string, args ...any) error {
	if p.done() {
		return fmt.Errorf("parse error at end of input: %s", fmt.Sprintf(format, args...))
	}
	t := p.peek()
	return fmt.Errorf("parse error at line %d:%d: %s", t.Line, t.Col, fmt.Sprintf(format, args...))
}

// Statements

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.peek().Kind {
	case lexer.DECLARE:
		return p.parseDeclare()
	case lexer.CONSTANT:
		return p.parseConstant()
	case lexer.PROCEDURE:
		return p.parseSubprogram(false)
	case lexer.FUNCTION:
		return p.parseSubprogram(true)
	case lexer.CALL:
		return p.parseCall()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.IF:
		return p.parseIf()
	case lexer.CASE:
		return p.parseCase()
	case lexer.FOR:
		return p.parseFor()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.REPEAT:
		return p.parseRepeat()
	case lexer.OUTPUT:
		return p.parseOutput()
	case lexer.INPUT:
		return p.parseInput()
	case lexer.IDENTIFIER:
		return p.parseAssign()
	default:
		return ast.Stmt{}, p.errf("unexpected %s at start of statement", p.peek().Kind)
	}
}

func (p *Parser) parseDeclare() (ast.Stmt, error) {
	p.next()
	id, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return ast.Stmt{}, err
	}
	if _, err := p.expect(lexer.COLON); err != nil {
		return ast.Stmt{}, err
	}
	typ, err := p.parseType()
	if err != nil {
		return ast.Stmt{}, err
	}
	return ast.Stmt{Form: ast.StmtDeclare, IDs: []int64{id.Int}, Types: []ast.TypeNode{typ}}, nil
}

func (p *Parser) parseConstant() (ast.Stmt, error) {
	p.next()
	id, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return ast.Stmt{}, err
	}
	if _, err := p.expect(lexer.EQ); err != nil {
		return ast.Stmt{}, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return ast.Stmt{}, err
	}
	return ast.Stmt{Form: ast.StmtConstant, IDs: []int64{id.Int}, Exprs: []ast.Expr{expr}}, nil
}

func (p *Parser) parseSubprogram(isFunc bool) (ast.Stmt, error) {
	p.next()
	id, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return ast.Stmt{}, err
	}
	var params []ast.Param
	if p.match(lexer.LPAREN) {
		for {
			byref := p.match(lexer.BYREF)
			pid, err := p.expect(lexer.IDENTIFIER)
			if err != nil {
				return ast.Stmt{}, err
			}
			if _, err := p.expect(lexer.COLON); err != nil {
				return ast.Stmt{}, err
			}
			ptype, err := p.parseType()
			if err != nil {
				return ast.Stmt{}, err
			}
			params = append(params, ast.Param{ID: pid.Int, Type: ptype, ByRef: byref})
			if !p.match(lexer.COMMA) {
				break
			}
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return ast.Stmt{}, err
		}
	}
	stmt := ast.Stmt{IDs: []int64{id.Int}, Params: params}
	end := lexer.ENDPROCEDURE
	if isFunc {
		stmt.Form = ast.StmtFunction
		end = lexer.ENDFUNCTION
		if _, err := p.expect(lexer.RETURNS); err != nil {
			return ast.Stmt{}, err
		}
		ret, err := p.parseType()
		if err != nil {
			return ast.Stmt{}, err
		}
		stmt.Types = []ast.TypeNode{ret}
	} else {
		stmt.Form = ast.StmtProcedure
	}
	prevInFunc := p.inFunc
	p.inFunc = isFunc
	block, err := p.parseBlock(func() bool { return p.peek().Kind == end })
	p.inFunc = prevInFunc
	if err != nil {
		return ast.Stmt{}, err
	}
	if _, err := p.expect(end); err != nil {
		return ast.Stmt{}, err
	}
	stmt.Blocks = []ast.Block{block}
	return stmt, nil
}

func (p *Parser) parseCall() (ast.Stmt, error) {
	p.next()
	id, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return ast.Stmt{}, err
	}
	var args []ast.Expr
	if p.match(lexer.LPAREN) {
		args, err = p.parseArgs(lexer.RPAREN)
		if err != nil {
			return ast.Stmt{}, err
		}
	}
	return ast.Stmt{Form: ast.StmtCall, IDs: []int64{id.Int}, Exprs: args}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	if !p.inFunc {
		return ast.Stmt{}, p.errf("RETURN outside a function body")
	}
	p.next()
	expr, err := p.parseExpr()
	if err != nil {
		return ast.Stmt{}, err
	}
	return ast.Stmt{Form: ast.StmtReturn, Exprs: []ast.Expr{expr}}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	p.next()
	cond, err := p.parseExpr()
	if err != nil {
		return ast.Stmt{}, err
	}
	if _, err := p.expect(lexer.THEN); err != nil {
		return ast.Stmt{}, err
	}
	thenBlock, err := p.parseBlock(func() bool {
		return p.peek().Kind == lexer.ELSE || p.peek().Kind == lexer.ENDIF
	})
	if err != nil {
		return ast.Stmt{}, err
	}
	blocks := []ast.Block{thenBlock}
	if p.match(lexer.ELSE) {
		elseBlock, err := p.parseBlock(func() bool { return p.peek().Kind == lexer.ENDIF })
		if err != nil {
			return ast.Stmt{}, err
		}
		blocks = append(blocks, elseBlock)
	}
	if _, err := p.expect(lexer.ENDIF); err != nil {
		return ast.Stmt{}, err
	}
	return ast.Stmt{Form: ast.StmtIf, Exprs: []ast.Expr{cond}, Blocks: blocks}, nil
}

func (p *Parser) parseCase() (ast.Stmt, error) {
	p.next()
	if _, err := p.expect(lexer.OF); err != nil {
		return ast.Stmt{}, err
	}
	sel, err := p.parseLValue()
	if err != nil {
		return ast.Stmt{}, err
	}
	stmt := ast.Stmt{Form: ast.StmtCase, LValues: []*ast.LValue{sel}}
	for p.peek().Kind != lexer.OTHERWISE && p.peek().Kind != lexer.ENDCASE {
		if p.done() {
			return ast.Stmt{}, p.errf("expected ENDCASE")
		}
		branchExpr, err := p.parseExpr()
		if err != nil {
			return ast.Stmt{}, err
		}
		if _, err := p.expect(lexer.COLON); err != nil {
			return ast.Stmt{}, err
		}
		block, err := p.parseBlock(func() bool {
			return p.peek().Kind == lexer.OTHERWISE ||
				p.peek().Kind == lexer.ENDCASE ||
				p.atBranchHead()
		})
		if err != nil {
			return ast.Stmt{}, err
		}
		stmt.Exprs = append(stmt.Exprs, branchExpr)
		stmt.Blocks = append(stmt.Blocks, block)
	}
	if p.match(lexer.OTHERWISE) {
		block, err := p.parseBlock(func() bool { return p.peek().Kind == lexer.ENDCASE })
		if err != nil {
			return ast.Stmt{}, err
		}
		stmt.Blocks = append(stmt.Blocks, block)
	}
	if _, err := p.expect(lexer.ENDCASE); err != nil {
		return ast.Stmt{}, err
	}
	return stmt, nil
}

// atBranchHead reports whether the upcoming tokens read as `expr :`, the
// start of the next CASE branch. The speculative parse is discarded either
// way.
func (p *Parser) atBranchHead() bool {
	save := p.pos
	_, err := p.parseExpr()
	head := err == nil && p.peek().Kind == lexer.COLON
	p.pos = save
	return head
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	p.next()
	id, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return ast.Stmt{}, err
	}
	if _, err := p.expect(lexer.ASSIGN); err != nil {
		return ast.Stmt{}, err
	}
	start, err := p.parseExpr()
	if err != nil {
		return ast.Stmt{}, err
	}
	if _, err := p.expect(lexer.TO); err != nil {
		return ast.Stmt{}, err
	}
	end, err := p.parseExpr()
	if err != nil {
		return ast.Stmt{}, err
	}
	exprs := []ast.Expr{start, end}
	if p.match(lexer.STEP) {
		step, err := p.parseExpr()
		if err != nil {
			return ast.Stmt{}, err
		}
		exprs = append(exprs, step)
	}
	block, err := p.parseBlock(func() bool { return p.peek().Kind == lexer.NEXT })
	if err != nil {
		return ast.Stmt{}, err
	}
	if _, err := p.expect(lexer.NEXT); err != nil {
		return ast.Stmt{}, err
	}
	// NEXT may name the loop variable. The name is not checked, and a bare
	// identifier that starts the following assignment statement must not be
	// eaten here.
	if p.peek().Kind == lexer.IDENTIFIER {
		after := lexer.Token{Kind: lexer.INVALID}
		if p.pos+1 < len(p.toks) {
			after = p.toks[p.pos+1]
		}
		if after.Kind != lexer.ASSIGN && after.Kind != lexer.LSQUARE {
			p.next()
		}
	}
	return ast.Stmt{Form: ast.StmtFor, IDs: []int64{id.Int}, Exprs: exprs, Blocks: []ast.Block{block}}, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	p.next()
	cond, err := p.parseExpr()
	if err != nil {
		return ast.Stmt{}, err
	}
	block, err := p.parseBlock(func() bool { return p.peek().Kind == lexer.ENDWHILE })
	if err != nil {
		return ast.Stmt{}, err
	}
	if _, err := p.expect(lexer.ENDWHILE); err != nil {
		return ast.Stmt{}, err
	}
	return ast.Stmt{Form: ast.StmtWhile, Exprs: []ast.Expr{cond}, Blocks: []ast.Block{block}}, nil
}

func (p *Parser) parseRepeat() (ast.Stmt, error) {
	p.next()
	block, err := p.parseBlock(func() bool { return p.peek().Kind == lexer.UNTIL })
	if err != nil {
		return ast.Stmt{}, err
	}
	if _, err := p.expect(lexer.UNTIL); err != nil {
		return ast.Stmt{}, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return ast.Stmt{}, err
	}
	return ast.Stmt{Form: ast.StmtRepeat, Exprs: []ast.Expr{cond}, Blocks: []ast.Block{block}}, nil
}

func (p *Parser) parseOutput() (ast.Stmt, error) {
	p.next()
	var exprs []ast.Expr
	for {
		expr, err := p.parseExpr()
		if err != nil {
			return ast.Stmt{}, err
		}
		exprs = append(exprs, expr)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	return ast.Stmt{Form: ast.StmtOutput, Exprs: exprs}, nil
}

func (p *Parser) parseInput() (ast.Stmt, error) {
	p.next()
	lv, err := p.parseLValue()
	if err != nil {
		return ast.Stmt{}, err
	}
	return ast.Stmt{Form: ast.StmtInput, LValues: []*ast.LValue{lv}}, nil
}

func (p *Parser) parseAssign() (ast.Stmt, error) {
	lv, err := p.parseLValue()
	if err != nil {
		return ast.Stmt{}, err
	}
	if _, err := p.expect(lexer.ASSIGN); err != nil {
		return ast.Stmt{}, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return ast.Stmt{}, err
	}
	return ast.Stmt{Form: ast.StmtAssign, LValues: []*ast.LValue{lv}, Exprs: []ast.Expr{expr}}, nil
}

func (p *Parser) parseBlock(stop func() bool) (ast.Block, error) {
	block := ast.Block{IsFunc: p.inFunc}
	for !p.done() && !stop() {
		stmt, err := p.parseStmt()
		if err != nil {
			return ast.Block{}, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if p.done() {
		return ast.Block{}, p.errf("unterminated block")
	}
	return block, nil
}

// Types

func (p *Parser) parseType() (ast.TypeNode, error) {
	switch p.peek().Kind {
	case lexer.INTEGER, lexer.REAL, lexer.STRING, lexer.CHAR, lexer.BOOLEAN, lexer.DATE:
		return ast.TypeNode{Prim: p.next().Kind}, nil
	case lexer.ARRAY:
		p.next()
		if _, err := p.expect(lexer.LSQUARE); err != nil {
			return ast.TypeNode{}, err
		}
		type boundPair struct{ start, end ast.Expr }
		var bounds []boundPair
		for {
			start, err := p.parseExpr()
			if err != nil {
				return ast.TypeNode{}, err
			}
			if _, err := p.expect(lexer.COLON); err != nil {
				return ast.TypeNode{}, err
			}
			end, err := p.parseExpr()
			if err != nil {
				return ast.TypeNode{}, err
			}
			bounds = append(bounds, boundPair{start, end})
			if !p.match(lexer.COMMA) {
				break
			}
		}
		if _, err := p.expect(lexer.RSQUARE); err != nil {
			return ast.TypeNode{}, err
		}
		if _, err := p.expect(lexer.OF); err != nil {
			return ast.TypeNode{}, err
		}
		elem, err := p.parseType()
		if err != nil {
			return ast.TypeNode{}, err
		}
		// Wrap inner-to-outer so the first bound pair ends up outermost.
		node := elem
		for i := len(bounds) - 1; i >= 0; i-- {
			inner := node
			node = ast.TypeNode{Start: bounds[i].start, End: bounds[i].end, Elem: &inner}
		}
		return node, nil
	default:
		return ast.TypeNode{}, p.errf("expected a type, found %s", p.peek().Kind)
	}
}

// Expressions, lowest precedence first: OR, AND, comparison, additive,
// multiplicative, unary, primary.

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == lexer.OR {
		op := p.next().Kind
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == lexer.AND {
		op := p.next().Kind
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	switch p.peek().Kind {
	case lexer.EQ, lexer.NEQ, lexer.LT, lexer.LTEQ, lexer.GT, lexer.GTEQ:
		op := p.next().Kind
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == lexer.PLUS || p.peek().Kind == lexer.MINUS {
		op := p.next().Kind
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Kind {
		case lexer.STAR, lexer.SLASH, lexer.MOD, lexer.DIV:
			op := p.next().Kind
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.peek().Kind {
	case lexer.NOT, lexer.MINUS:
		op := p.next().Kind
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op, Expr: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.peek().Kind {
	case lexer.INT_C:
		return ast.IntLit{Val: p.next().Int}, nil
	case lexer.REAL_C:
		t := p.next()
		f, err := fraction.New(t.Num, t.Den)
		if err != nil {
			return nil, p.errf("bad real constant: %v", err)
		}
		return ast.RealLit{Val: f}, nil
	case lexer.STR_C:
		return ast.StrLit{Val: p.next().Str}, nil
	case lexer.TRUE:
		p.next()
		return ast.BoolLit{Val: true}, nil
	case lexer.FALSE:
		p.next()
		return ast.BoolLit{Val: false}, nil
	case lexer.LPAREN:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	case lexer.IDENTIFIER:
		id := p.next().Int
		if p.match(lexer.LPAREN) {
			args, err := p.parseArgs(lexer.RPAREN)
			if err != nil {
				return nil, err
			}
			return &ast.CallExpr{ID: id, Args: args}, nil
		}
		if p.match(lexer.LSQUARE) {
			indexes, err := p.parseArgs(lexer.RSQUARE)
			if err != nil {
				return nil, err
			}
			return &ast.LValue{ID: id, Indexes: indexes}, nil
		}
		return &ast.LValue{ID: id}, nil
	default:
		return nil, p.errf("unexpected %s in expression", p.peek().Kind)
	}
}

func (p *Parser) parseLValue() (*ast.LValue, error) {
	id, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	lv := &ast.LValue{ID: id.Int}
	if p.match(lexer.LSQUARE) {
		lv.Indexes, err = p.parseArgs(lexer.RSQUARE)
		if err != nil {
			return nil, err
		}
	}
	return lv, nil
}

// parseArgs reads a comma-separated expression list terminated by the
// closing token, which is consumed. An immediately closing token yields an
// empty list.
func (p *Parser) parseArgs(closing lexer.TokenKind) ([]ast.Expr, error) {
	if p.match(closing) {
		return nil, nil
	}
	var args []ast.Expr
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(closing); err != nil {
		return nil, err
	}
	return args, nil
}
