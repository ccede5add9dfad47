package asm

import (
	"log"
	"strings"
	"unicode"
)

// parser turns source text into atoms. Scope and CALL counters are
// shared by every recursive sub-range.
type parser struct {
	verbose  bool
	src      []rune
	equate   map[string]int
	scopes   int
	calls    int
	stackOpt bool
	errs     []error
}

func (p *parser) fail(pos Position, err error) {
	p.errs = append(p.errs, &ErrPos{Pos: pos, Err: err})
}

func isDelimiter(ch rune) bool {
	return strings.ContainsRune(";#\n(){}\"", ch)
}

func isWordStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '$' || ch == '_'
}

func isWord(ch rune) bool {
	return isWordStart(ch) || unicode.IsDigit(ch) || ch == '.'
}

// skipLine moves pos to the end of the line, or to end.
func (p *parser) skipLine(pos Position, end int) Position {
	for pos.Offset < end && p.src[pos.Offset] != '\n' {
		pos = pos.advance(p.src[pos.Offset])
	}
	return pos
}

// skipString moves pos past the string literal that starts at pos.
func (p *parser) skipString(pos Position, end int) (Position, error) {
	pos = pos.advance('"')
	for pos.Offset < end {
		ch := p.src[pos.Offset]
		pos = pos.advance(ch)
		switch ch {
		case '"':
			return pos, nil
		case '\\':
			if pos.Offset < end {
				pos = pos.advance(p.src[pos.Offset])
			}
		}
	}
	return pos, ErrUnexpectedEndOfFile
}

// matching finds the bracket that closes the one at pos.
func (p *parser) matching(pos Position, end int, open, shut rune) (at Position, err error) {
	depth := 0
	for pos.Offset < end {
		ch := p.src[pos.Offset]
		switch ch {
		case '"':
			pos, err = p.skipString(pos, end)
			if err != nil {
				return
			}
			continue
		case '#':
			pos = p.skipLine(pos, end)
			continue
		case open:
			depth++
		case shut:
			depth--
			if depth == 0 {
				return pos, nil
			}
		}
		pos = pos.advance(ch)
	}

	err = ErrUnexpectedEndOfFile
	return
}

// parseString decodes the string literal at pos into RAW words.
func (p *parser) parseString(pos Position, end int) (words rawWords, next Position, err error) {
	next = pos.advance('"')
	for next.Offset < end {
		ch := p.src[next.Offset]
		next = next.advance(ch)
		switch ch {
		case '"':
			return
		case '\\':
			if next.Offset >= end {
				err = ErrUnexpectedEndOfFile
				return
			}
			ch = p.src[next.Offset]
			next = next.advance(ch)
			switch ch {
			case 'n':
				ch = '\n'
			case 't':
				ch = '\t'
			case '0':
				ch = 0
			}
		}
		words = append(words, uint16(ch))
	}

	err = ErrUnexpectedEndOfFile
	return
}

// token reads up to the next delimiter or whitespace.
func (p *parser) token(pos Position, end int) (text string, next Position) {
	next = pos
	for next.Offset < end {
		ch := p.src[next.Offset]
		if isDelimiter(ch) || unicode.IsSpace(ch) {
			break
		}
		next = next.advance(ch)
	}
	return string(p.src[pos.Offset:next.Offset]), next
}

// statementEnd finds the end of the statement at pos.
func (p *parser) statementEnd(pos Position, end int, stop func(rune) bool) Position {
	for pos.Offset < end && !stop(p.src[pos.Offset]) {
		pos = pos.advance(p.src[pos.Offset])
	}
	return pos
}

// directive handles '@' directives.
func (p *parser) directive(pos Position, end int) (atoms []Atom, next Position) {
	name, next := p.token(pos.advance('@'), end)
	name = strings.ToUpper(name)

	switch name {
	case "STACKOPT":
		p.stackOpt = true
	case "EQU":
		stop := p.statementEnd(next, end, func(ch rune) bool { return strings.ContainsRune(";#\n", ch) })
		text := strings.TrimSpace(string(p.src[next.Offset:stop.Offset]))
		next = stop

		equ, expr, _ := strings.Cut(text, " ")
		equ = strings.ToUpper(equ)
		expr = strings.TrimSpace(expr)
		if len(equ) == 0 || len(expr) == 0 {
			p.fail(pos, ErrEquateSyntax)
			return
		}

		value, err := evalEquate(equ, expr, p.equate)
		if err != nil {
			p.fail(pos, err)
			return
		}
		if p.verbose {
			log.Printf("@EQU %v = %#x", equ, value)
		}
		p.equate[equ] = value
		atoms = append(atoms, Atom{Kind: ATOM_NOP, Pos: pos})
	default:
		p.fail(pos, ErrUnknownCommand("@"+name))
	}

	return
}

// parseRange parses the runes from pos up to (not including) end.
func (p *parser) parseRange(pos Position, end int) (atoms []Atom) {
	for pos.Offset < end {
		ch := p.src[pos.Offset]

		switch {
		case unicode.IsSpace(ch) || ch == ';':
			pos = pos.advance(ch)

		case ch == '#':
			pos = p.skipLine(pos, end)

		case ch == '"':
			words, next, err := p.parseString(pos, end)
			if err != nil {
				p.fail(pos, err)
				return
			}
			if len(words) > 0 {
				atoms = append(atoms, Atom{Kind: ATOM_INSTRUCTION, Pos: pos, Instruction: words})
			}
			pos = next

		case ch == '{':
			closing, err := p.matching(pos, end, '{', '}')
			if err != nil {
				p.fail(pos, err)
				return
			}
			p.scopes++
			id := p.scopes
			optimize := p.stackOpt
			p.stackOpt = false
			atoms = append(atoms, Atom{Kind: ATOM_ENTER_SCOPE, Pos: pos, Scope: id, Optimize: optimize})
			atoms = append(atoms, p.parseRange(pos.advance('{'), closing.Offset)...)
			atoms = append(atoms, Atom{Kind: ATOM_LEAVE_SCOPE, Pos: closing})
			pos = closing.advance('}')

		case ch == '(':
			closing, err := p.matching(pos, end, '(', ')')
			if err != nil {
				p.fail(pos, err)
				return
			}
			group := p.parseRange(pos.advance('('), closing.Offset)
			if n := len(atoms); n > 0 {
				last := atoms[n-1]
				atoms = append(append(atoms[:n-1], group...), last)
			} else {
				atoms = append(atoms, group...)
			}
			pos = closing.advance(')')

		case ch == '}' || ch == ')':
			p.fail(pos, ErrUnmatchedClosingBracket)
			pos = pos.advance(ch)

		case ch == '@':
			var more []Atom
			more, pos = p.directive(pos, end)
			atoms = append(atoms, more...)

		case isWordStart(ch):
			word := pos
			for word.Offset < end && isWord(p.src[word.Offset]) {
				word = word.advance(p.src[word.Offset])
			}
			if word.Offset < end && p.src[word.Offset] == ':' {
				label := strings.ToUpper(string(p.src[pos.Offset:word.Offset]))
				atoms = append(atoms, Atom{Kind: ATOM_LABEL, Pos: pos, Label: label})
				pos = word.advance(':')
				continue
			}

			stop := p.statementEnd(pos, end, isDelimiter)
			text := strings.ToUpper(strings.TrimSpace(string(p.src[pos.Offset:stop.Offset])))
			ins, err := p.statement(text)
			if err != nil {
				p.fail(pos, err)
			} else {
				atoms = append(atoms, Atom{Kind: ATOM_INSTRUCTION, Pos: pos, Instruction: ins})
			}
			pos = stop

		case unicode.IsDigit(ch) || ch == '+' || ch == '-':
			text, next := p.token(pos, end)
			value, err := parseNumber(strings.ToUpper(text))
			if err != nil {
				p.fail(pos, err)
			} else {
				atoms = append(atoms, Atom{Kind: ATOM_INSTRUCTION, Pos: pos, Instruction: rawWords{uint16(value)}})
			}
			pos = next

		default:
			p.fail(pos, ErrUnknownToken(ch))
			pos = pos.advance(ch)
		}
	}

	return
}
