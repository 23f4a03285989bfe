// Package calculator evaluates arithmetic expressions found in chat messages.
//
// The evaluator is a closed grammar over the four binary operators, unary
// sign, parentheses and decimal literals. It cannot reference names, call
// anything, or do more than produce a number; every input accepted by the
// character whitelist terminates.
package calculator

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrEmptyExpression   = errors.New("Empty expression provided")
	ErrInvalidCharacters = errors.New("Expression contains invalid characters")
	ErrDivisionByZero    = errors.New("Division by zero detected")
	ErrMalformedSyntax   = errors.New("Invalid mathematical expression")
	ErrNonNumericResult  = errors.New("Calculation resulted in a non-numeric value")
)

const allowedChars = "0123456789+-*/(). "

var (
	// A run of numeric operands joined by + - * /, e.g. "15 + 25 * 2".
	operandChainPattern = regexp.MustCompile(`\d+(?:\.\d+)?\s*[+\-*/]\s*\d+(?:\.\d+)?(?:\s*[+\-*/]\s*\d+(?:\.\d+)?)*`)
	// Everything after the word "calculate" up to a question mark or the end.
	calculateTailPattern = regexp.MustCompile(`(?i)calculate\s+(.*?)(?:\?|$)`)
)

// Extract pulls an arithmetic expression out of free text. The operand-chain
// pattern takes priority over the "calculate ..." tail.
func Extract(text string) (string, bool) {
	if m := operandChainPattern.FindString(text); m != "" {
		return strings.TrimSpace(m), true
	}
	if m := calculateTailPattern.FindStringSubmatch(text); m != nil {
		expr := strings.TrimSpace(m[1])
		if expr != "" {
			return expr, true
		}
	}
	return "", false
}

// Calculate validates and evaluates an expression. Errors are returned as
// values with human-readable reasons; they never panic.
func Calculate(expression string) (float64, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return 0, ErrEmptyExpression
	}
	for _, c := range expression {
		if !strings.ContainsRune(allowedChars, c) {
			return 0, ErrInvalidCharacters
		}
	}
	// Heuristic pre-filter kept for behavioral parity: it flags "10 / 0" but
	// not "10/(1-1)". The evaluator below catches the rest at runtime.
	if strings.Contains(strings.ReplaceAll(expression, " ", ""), "/0") {
		return 0, ErrDivisionByZero
	}

	p := &parser{input: expression}
	result, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("%w: unexpected %q at position %d", ErrMalformedSyntax, p.input[p.pos], p.pos)
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, ErrNonNumericResult
	}
	return result, nil
}

// parser is a recursive-descent evaluator:
//
//	expression = term { ("+"|"-") term }
//	term       = factor { ("*"|"/") factor }
//	factor     = { "+"|"-" } ( number | "(" expression ")" )
type parser struct {
	input string
	pos   int
}

func (p *parser) parseExpression() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		op, ok := p.peek()
		if !ok || (op != '+' && op != '-') {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		op, ok := p.peek()
		if !ok || (op != '*' && op != '/') {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, ErrDivisionByZero
			}
			left /= right
		}
	}
}

func (p *parser) parseFactor() (float64, error) {
	p.skipSpaces()
	c, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("%w: unexpected end of expression", ErrMalformedSyntax)
	}

	switch {
	case c == '+':
		p.pos++
		return p.parseFactor()
	case c == '-':
		p.pos++
		v, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -v, nil
	case c == '(':
		p.pos++
		v, err := p.parseExpression()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if next, ok := p.peek(); !ok || next != ')' {
			return 0, fmt.Errorf("%w: missing closing parenthesis", ErrMalformedSyntax)
		}
		p.pos++
		return v, nil
	}

	return p.parseNumber()
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	sawDigit := false
	sawDot := false
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c >= '0' && c <= '9' {
			sawDigit = true
			p.pos++
			continue
		}
		if c == '.' && !sawDot {
			sawDot = true
			p.pos++
			continue
		}
		break
	}
	if !sawDigit {
		return 0, fmt.Errorf("%w: expected a number at position %d", ErrMalformedSyntax, start)
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad numeric literal %q", ErrMalformedSyntax, p.input[start:p.pos])
	}
	return v, nil
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

// FormatResult renders a result the way responses expect ("65", "16.5").
func FormatResult(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
