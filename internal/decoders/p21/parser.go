package p21

import (
	"context"
	"fmt"
	"strconv"

	"github.com/custodia-labs/stepref/internal/core/domain"
)

// SyntaxError reports malformed exchange-file text.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// Diagnostic returns the position of the error.
func (e *SyntaxError) Diagnostic() string {
	return fmt.Sprintf("line %d, column %d", e.Line, e.Column)
}

// section is one decoded DATA section.
type section struct {
	name     string
	schema   string
	entities []*domain.Entity
}

// file is the parsed form of an exchange file.
type file struct {
	header   domain.FileHeader
	sections []section
}

// cancelCheckInterval is how many instances are parsed between context checks.
const cancelCheckInterval = 1024

type parser struct {
	ctx context.Context
	lex *lexer
	tok token
}

// parse reads a complete exchange file.
func parse(ctx context.Context, src string) (*file, error) {
	p := &parser{ctx: ctx, lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.file()
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.tok.line, Column: p.tok.col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.tok
	if t.kind != kind {
		return t, p.errorf("expected %s, found %s %q", kind, t.kind, t.text)
	}
	return t, p.advance()
}

func (p *parser) expectKeyword(kw string) error {
	if p.tok.kind != tokKeyword || p.tok.text != kw {
		return p.errorf("expected %s, found %q", kw, p.tok.text)
	}
	return p.advance()
}

// statement consumes "KEYWORD;".
func (p *parser) statement(kw string) error {
	if err := p.expectKeyword(kw); err != nil {
		return err
	}
	_, err := p.expect(tokSemicolon)
	return err
}

func (p *parser) file() (*file, error) {
	if err := p.statement("ISO-10303-21"); err != nil {
		return nil, err
	}
	f := &file{}
	if err := p.headerSection(&f.header); err != nil {
		return nil, err
	}
	for p.tok.kind == tokKeyword && p.tok.text == "DATA" {
		s, err := p.dataSection(len(f.sections), f.header)
		if err != nil {
			return nil, err
		}
		f.sections = append(f.sections, s)
	}
	if len(f.sections) == 0 {
		return nil, p.errorf("file has no DATA section")
	}
	if err := p.statement("END-ISO-10303-21"); err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %s after end of file", p.tok.kind)
	}
	return f, nil
}

func (p *parser) headerSection(h *domain.FileHeader) error {
	if err := p.statement("HEADER"); err != nil {
		return err
	}
	for !(p.tok.kind == tokKeyword && p.tok.text == "ENDSEC") {
		if p.tok.kind == tokEOF {
			return p.errorf("unterminated HEADER section")
		}
		rec, err := p.record()
		if err != nil {
			return err
		}
		if _, err := p.expect(tokSemicolon); err != nil {
			return err
		}
		applyHeader(h, rec)
	}
	return p.statement("ENDSEC")
}

// applyHeader copies the well-known header records into h; others are ignored.
func applyHeader(h *domain.FileHeader, rec domain.EntityPart) {
	switch rec.Type {
	case "FILE_DESCRIPTION":
		h.Description = stringList(rec.Param(0))
	case "FILE_NAME":
		h.Name, _ = rec.Param(0).AsString()
		h.TimeStamp, _ = rec.Param(1).AsString()
		h.Author = stringList(rec.Param(2))
	case "FILE_SCHEMA":
		h.Schemas = stringList(rec.Param(0))
	}
}

func stringList(v domain.Value) []string {
	var out []string
	for _, item := range v.Items {
		if s, ok := item.AsString(); ok {
			out = append(out, s)
		}
	}
	return out
}

func (p *parser) dataSection(index int, h domain.FileHeader) (section, error) {
	s := section{}
	if len(h.Schemas) > 0 {
		s.schema = h.Schemas[0]
	}
	if err := p.expectKeyword("DATA"); err != nil {
		return s, err
	}
	if p.tok.kind == tokLParen {
		params, err := p.paramList()
		if err != nil {
			return s, err
		}
		if len(params) > 0 {
			s.name, _ = params[0].AsString()
		}
		if len(params) > 1 {
			if schemas := stringList(params[1]); len(schemas) > 0 {
				s.schema = schemas[0]
			}
		}
	}
	if _, err := p.expect(tokSemicolon); err != nil {
		return s, err
	}
	if s.name == "" && index > 0 {
		s.name = strconv.Itoa(index + 1)
	}

	seen := make(map[int]bool)
	for !(p.tok.kind == tokKeyword && p.tok.text == "ENDSEC") {
		if len(s.entities)%cancelCheckInterval == 0 {
			if err := p.ctx.Err(); err != nil {
				return s, err
			}
		}
		e, err := p.instance()
		if err != nil {
			return s, err
		}
		if seen[e.ID] {
			return s, &SyntaxError{Line: p.tok.line, Column: p.tok.col, Msg: fmt.Sprintf("duplicate instance #%d", e.ID)}
		}
		seen[e.ID] = true
		s.entities = append(s.entities, e)
	}
	return s, p.statement("ENDSEC")
}

// instance parses "#id = record;" or "#id = (record record ...);".
func (p *parser) instance() (*domain.Entity, error) {
	if p.tok.kind != tokInstance {
		return nil, p.errorf("expected instance name, found %s %q", p.tok.kind, p.tok.text)
	}
	id, err := strconv.Atoi(p.tok.text)
	if err != nil {
		return nil, p.errorf("bad instance name #%s", p.tok.text)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokEquals); err != nil {
		return nil, err
	}

	e := &domain.Entity{ID: id}
	if p.tok.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for p.tok.kind != tokRParen {
			rec, err := p.record()
			if err != nil {
				return nil, err
			}
			e.Parts = append(e.Parts, rec)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if len(e.Parts) == 0 {
			return nil, p.errorf("complex instance #%d has no partial records", id)
		}
	} else {
		rec, err := p.record()
		if err != nil {
			return nil, err
		}
		e.Parts = []domain.EntityPart{rec}
	}
	if _, err := p.expect(tokSemicolon); err != nil {
		return nil, err
	}
	return e, nil
}

// record parses "KEYWORD(params)".
func (p *parser) record() (domain.EntityPart, error) {
	kw, err := p.expect(tokKeyword)
	if err != nil {
		return domain.EntityPart{}, err
	}
	params, err := p.paramList()
	if err != nil {
		return domain.EntityPart{}, err
	}
	return domain.EntityPart{Type: kw.text, Params: params}, nil
}

// paramList parses "(p, p, ...)".
func (p *parser) paramList() ([]domain.Value, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	var params []domain.Value
	if p.tok.kind == tokRParen {
		return params, p.advance()
	}
	for {
		v, err := p.param()
		if err != nil {
			return nil, err
		}
		params = append(params, v)
		if p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return params, nil
	}
}

func (p *parser) param() (domain.Value, error) {
	t := p.tok
	switch t.kind {
	case tokDollar:
		return domain.Value{Kind: domain.ValueUnset}, p.advance()
	case tokStar:
		return domain.Value{Kind: domain.ValueDerived}, p.advance()
	case tokString:
		return domain.Value{Kind: domain.ValueString, Str: t.text}, p.advance()
	case tokEnum:
		return domain.Value{Kind: domain.ValueEnum, Str: t.text}, p.advance()
	case tokBinary:
		return domain.Value{Kind: domain.ValueBinary, Str: t.text}, p.advance()
	case tokInteger:
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return domain.Value{}, p.errorf("bad integer %q", t.text)
		}
		return domain.Value{Kind: domain.ValueInteger, Int: n}, p.advance()
	case tokReal:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return domain.Value{}, p.errorf("bad real %q", t.text)
		}
		return domain.Value{Kind: domain.ValueReal, Real: f}, p.advance()
	case tokInstance:
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return domain.Value{}, p.errorf("bad instance name #%s", t.text)
		}
		return domain.Value{Kind: domain.ValueRef, Int: n}, p.advance()
	case tokLParen:
		items, err := p.paramList()
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Value{Kind: domain.ValueList, Items: items}, nil
	case tokKeyword:
		if err := p.advance(); err != nil {
			return domain.Value{}, err
		}
		items, err := p.paramList()
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Value{Kind: domain.ValueTyped, Str: t.text, Items: items}, nil
	}
	return domain.Value{}, p.errorf("unexpected %s in parameter list", t.kind)
}
