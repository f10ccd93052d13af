package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser is a recursive-descent parser over the Lexer's token stream.
type Parser struct {
	lexer   *Lexer
	current Token
}

func NewParser(input string) *Parser { return &Parser{lexer: NewLexer(input)} }

func (p *Parser) advance() error {
	tok, err := p.lexer.Next()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

// ParseStatements splits input on top-level ';' and parses each
// non-empty segment, matching spec.md §4.E's "multiple SET statements
// separated by ';' are each executed in order".
func ParseStatements(input string) ([]*Statement, error) {
	var stmts []*Statement
	for _, part := range splitStatements(input) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p := NewParser(part)
		stmt, err := p.Parse()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if len(stmts) == 0 {
		return nil, fmt.Errorf("query: empty statement")
	}
	return stmts, nil
}

func splitStatements(input string) []string {
	var parts []string
	depth := 0
	inStr := byte(0)
	start := 0
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case inStr != 0:
			if c == inStr {
				inStr = 0
			}
		case c == '\'' || c == '"':
			inStr = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ';' && depth == 0:
			parts = append(parts, input[start:i])
			start = i + 1
		}
	}
	parts = append(parts, input[start:])
	return parts
}

// Parse parses one statement.
func (p *Parser) Parse() (*Statement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	switch p.current.Type {
	case TokenSelect:
		sel, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		return &Statement{Select: sel}, nil
	case TokenShow:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.current.Type != TokenTables {
			return nil, fmt.Errorf("query: expected TABLES after SHOW at position %d", p.current.Pos)
		}
		return &Statement{ShowTables: true}, nil
	case TokenSet:
		set, err := p.parseSet()
		if err != nil {
			return nil, err
		}
		return &Statement{Set: set}, nil
	case TokenEOF:
		return nil, fmt.Errorf("query: empty query")
	default:
		return nil, fmt.Errorf("query: unexpected token %q at position %d", p.current.Value, p.current.Pos)
	}
}

func (p *Parser) parseSet() (*SetStmt, error) {
	if err := p.advance(); err != nil { // consume SET
		return nil, err
	}
	key, err := p.parseDottedIdent()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenEquals {
		return nil, fmt.Errorf("query: expected '=' in SET at position %d", p.current.Pos)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	val := p.current.Value
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &SetStmt{Key: key, Value: val}, nil
}

func (p *Parser) parseDottedIdent() (string, error) {
	if p.current.Type != TokenIdent {
		return "", fmt.Errorf("query: expected identifier at position %d, got %q", p.current.Pos, p.current.Value)
	}
	var sb strings.Builder
	sb.WriteString(p.current.Value)
	if err := p.advance(); err != nil {
		return "", err
	}
	for p.current.Type == TokenDot {
		sb.WriteByte('.')
		if err := p.advance(); err != nil {
			return "", err
		}
		if p.current.Type != TokenIdent {
			return "", fmt.Errorf("query: expected identifier after '.' at position %d", p.current.Pos)
		}
		sb.WriteString(p.current.Value)
		if err := p.advance(); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (p *Parser) parseSelect() (*SelectStmt, error) {
	if err := p.advance(); err != nil { // consume SELECT
		return nil, err
	}
	cols, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenFrom {
		return nil, fmt.Errorf("query: expected FROM at position %d", p.current.Pos)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	from, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}

	stmt := &SelectStmt{Columns: cols, From: from}

	for p.current.Type == TokenJoin {
		if err := p.advance(); err != nil {
			return nil, err
		}
		jt, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		if p.current.Type != TokenOn {
			return nil, fmt.Errorf("query: expected ON after JOIN at position %d", p.current.Pos)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		left, err := p.parseDottedIdent()
		if err != nil {
			return nil, err
		}
		if p.current.Type != TokenEquals {
			return nil, fmt.Errorf("query: expected '=' in JOIN ON at position %d", p.current.Pos)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseDottedIdent()
		if err != nil {
			return nil, err
		}
		stmt.Joins = append(stmt.Joins, JoinClause{Table: jt, Left: left, Right: right})
	}

	if p.current.Type == TokenWhere {
		if err := p.advance(); err != nil {
			return nil, err
		}
		where, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.current.Type == TokenGroup {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.current.Type != TokenBy {
			return nil, fmt.Errorf("query: expected BY after GROUP at position %d", p.current.Pos)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = cols
	}

	if p.current.Type == TokenOrder {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.current.Type != TokenBy {
			return nil, fmt.Errorf("query: expected BY after ORDER at position %d", p.current.Pos)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		terms, err := p.parseOrderList()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = terms
	}

	if p.current.Type == TokenLimit {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.current.Type != TokenNumber {
			return nil, fmt.Errorf("query: expected number after LIMIT at position %d", p.current.Pos)
		}
		n, err := strconv.Atoi(p.current.Value)
		if err != nil {
			return nil, fmt.Errorf("query: invalid LIMIT value %q", p.current.Value)
		}
		stmt.Limit = &n
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if p.current.Type != TokenEOF {
		return nil, fmt.Errorf("query: unexpected trailing token %q at position %d", p.current.Value, p.current.Pos)
	}
	return stmt, nil
}

var aggregateNames = map[string]bool{"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true}

func (p *Parser) parseSelectList() ([]SelectExpr, error) {
	var out []SelectExpr
	for {
		if p.current.Type == TokenStar {
			out = append(out, SelectExpr{Star: true})
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else if p.current.Type == TokenIdent && aggregateNames[strings.ToUpper(p.current.Value)] {
			agg := strings.ToUpper(p.current.Value)
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.current.Type != TokenLParen {
				return nil, fmt.Errorf("query: expected '(' after %s at position %d", agg, p.current.Pos)
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			var arg string
			if p.current.Type == TokenStar {
				arg = "*"
				if err := p.advance(); err != nil {
					return nil, err
				}
			} else {
				col, err := p.parseDottedIdent()
				if err != nil {
					return nil, err
				}
				arg = col
			}
			if p.current.Type != TokenRParen {
				return nil, fmt.Errorf("query: expected ')' at position %d", p.current.Pos)
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			sel := SelectExpr{Aggregate: agg, Arg: arg, Alias: agg + "(" + arg + ")"}
			sel = p.maybeAlias(sel)
			out = append(out, sel)
		} else {
			col, err := p.parseDottedIdent()
			if err != nil {
				return nil, err
			}
			sel := SelectExpr{Column: col, Alias: col}
			sel = p.maybeAlias(sel)
			out = append(out, sel)
		}
		if p.current.Type != TokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Parser) maybeAlias(sel SelectExpr) SelectExpr {
	if p.current.Type == TokenAs {
		if err := p.advance(); err != nil {
			return sel
		}
		sel.Alias = p.current.Value
		_ = p.advance()
	}
	return sel
}

func (p *Parser) parseIdentList() ([]string, error) {
	var out []string
	for {
		id, err := p.parseDottedIdent()
		if err != nil {
			return nil, err
		}
		out = append(out, id)
		if p.current.Type != TokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Parser) parseOrderList() ([]OrderTerm, error) {
	var out []OrderTerm
	for {
		col, err := p.parseDottedIdent()
		if err != nil {
			return nil, err
		}
		term := OrderTerm{Column: col}
		if p.current.Type == TokenDesc {
			term.Desc = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else if p.current.Type == TokenAsc {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		out = append(out, term)
		if p.current.Type != TokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Parser) parseTableRef() (TableRef, error) {
	parts := []string{}
	first, err := p.parseRawIdent()
	if err != nil {
		return TableRef{}, err
	}
	parts = append(parts, first)
	for p.current.Type == TokenDot {
		if err := p.advance(); err != nil {
			return TableRef{}, err
		}
		id, err := p.parseRawIdent()
		if err != nil {
			return TableRef{}, err
		}
		parts = append(parts, id)
	}
	ref := TableRef{}
	switch len(parts) {
	case 1:
		ref.Table = parts[0]
	case 2:
		ref.Namespace, ref.Table = parts[0], parts[1]
	case 3:
		ref.Catalog, ref.Namespace, ref.Table = parts[0], parts[1], parts[2]
	default:
		return TableRef{}, fmt.Errorf("query: table reference has too many parts: %v", parts)
	}
	ref.Alias = ref.Table
	if p.current.Type == TokenAs {
		if err := p.advance(); err != nil {
			return TableRef{}, err
		}
		ref.Alias = p.current.Value
		if err := p.advance(); err != nil {
			return TableRef{}, err
		}
	} else if p.current.Type == TokenIdent {
		ref.Alias = p.current.Value
		if err := p.advance(); err != nil {
			return TableRef{}, err
		}
	}
	return ref, nil
}

func (p *Parser) parseRawIdent() (string, error) {
	if p.current.Type != TokenIdent {
		return "", fmt.Errorf("query: expected identifier at position %d, got %q", p.current.Pos, p.current.Value)
	}
	v := p.current.Value
	if err := p.advance(); err != nil {
		return "", err
	}
	return v, nil
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current.Type == TokenOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &OrExpr{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.current.Type == TokenAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &AndExpr{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.current.Type == TokenNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	if p.current.Type == TokenLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.current.Type != TokenRParen {
			return nil, fmt.Errorf("query: expected ')' at position %d", p.current.Pos)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (Expr, error) {
	col, err := p.parseDottedIdent()
	if err != nil {
		return nil, err
	}
	op := p.current.Type
	switch op {
	case TokenEquals, TokenNotEquals, TokenLess, TokenLessEq, TokenGreater, TokenGreaterEq:
		if err := p.advance(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("query: expected comparison operator at position %d, got %q", p.current.Pos, p.current.Value)
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return &CompareExpr{Column: col, Op: op, Value: lit}, nil
}

func (p *Parser) parseLiteral() (Literal, error) {
	switch p.current.Type {
	case TokenString:
		v := p.current.Value
		if err := p.advance(); err != nil {
			return Literal{}, err
		}
		return Literal{Kind: LitString, Str: v}, nil
	case TokenNumber:
		n, err := strconv.ParseFloat(p.current.Value, 64)
		if err != nil {
			return Literal{}, fmt.Errorf("query: invalid number %q", p.current.Value)
		}
		if err := p.advance(); err != nil {
			return Literal{}, err
		}
		return Literal{Kind: LitNumber, Num: n}, nil
	case TokenIdent:
		// bare word literal (e.g. WHERE state = running), treat as string
		v := p.current.Value
		if err := p.advance(); err != nil {
			return Literal{}, err
		}
		return Literal{Kind: LitString, Str: v}, nil
	default:
		return Literal{}, fmt.Errorf("query: expected literal at position %d, got %q", p.current.Pos, p.current.Value)
	}
}
