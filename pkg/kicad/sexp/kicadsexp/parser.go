package kicadsexp

import (
	"fmt"
	"io"
)

// Parser builds expressions from a Lexer's tokens.
type Parser struct {
	lexer   *Lexer
	current Token
}

// NewParser creates a new parser from an io.Reader
func NewParser(r io.Reader) *Parser {
	return &Parser{
		lexer: NewLexer(r),
	}
}

// ParseAll parses all top-level S-expressions from the input
func (p *Parser) ParseAll() ([]Sexp, error) {
	var result []Sexp
	for {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.current.Type == TokenEOF {
			return result, nil
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		result = append(result, expr)
	}
}

func (p *Parser) advance() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.current.Line, Col: p.current.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) parseExpr() (Sexp, error) {
	switch p.current.Type {
	case TokenLeftParen:
		return p.parseList()
	case TokenSymbol:
		return Symbol(p.current.Value), nil
	case TokenString:
		return Quoted(p.current.Value), nil
	case TokenRightParen:
		return nil, p.errorf("unexpected ')'")
	default:
		return nil, p.errorf("unexpected %v", p.current.Type)
	}
}

// parseList parses a list whose '(' is the current token.
func (p *Parser) parseList() (Sexp, error) {
	list := &List{Line: p.current.Line, Col: p.current.Col}
	for {
		if err := p.advance(); err != nil {
			return nil, err
		}
		switch p.current.Type {
		case TokenRightParen:
			return list, nil
		case TokenEOF:
			return nil, &SyntaxError{Line: list.Line, Col: list.Col, Msg: "unclosed '('"}
		}
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		list.items = append(list.items, elem)
	}
}
