package diamond

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/goccy/go-json"
)

// abiEntry is one element of a JSON ABI. Entries are decoded by hand rather
// than through abi.JSON so that declaration order survives; the parsed ABI
// keeps methods in a map and renames overloads.
type abiEntry struct {
	Type   string                    `json:"type"`
	Name   string                    `json:"name"`
	Inputs []abi.ArgumentMarshaling `json:"inputs"`
}

// InterfaceFromABI lists the functions of a JSON ABI in declaration order.
// InitSignature, when present, is marked excluded.
func InterfaceFromABI(abiJSON []byte) (Interface, error) {
	var entries []abiEntry
	if err := json.Unmarshal(abiJSON, &entries); err != nil {
		return nil, fmt.Errorf("decode abi: %w", err)
	}
	var iface Interface
	for _, e := range entries {
		// The type field defaults to function.
		if e.Type != "function" && e.Type != "" {
			continue
		}
		if e.Name == "" {
			return nil, errors.New("abi function without a name")
		}
		types := make([]string, len(e.Inputs))
		for i, in := range e.Inputs {
			t, err := argumentType(in)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.Name, err)
			}
			types[i] = t
		}
		sig := e.Name + "(" + strings.Join(types, ",") + ")"
		iface = append(iface, FacetFunction{Signature: sig, Excluded: sig == InitSignature})
	}
	return iface, nil
}

func argumentType(arg abi.ArgumentMarshaling) (string, error) {
	if !strings.HasPrefix(arg.Type, "tuple") {
		if _, err := abi.NewType(arg.Type, "", nil); err != nil {
			return "", fmt.Errorf("argument %q: %w", arg.Name, err)
		}
		return arg.Type, nil
	}
	parts := make([]string, len(arg.Components))
	for i, c := range arg.Components {
		t, err := argumentType(c)
		if err != nil {
			return "", err
		}
		parts[i] = t
	}
	return "(" + strings.Join(parts, ",") + ")" + strings.TrimPrefix(arg.Type, "tuple"), nil
}

// CanonicalSignature reduces a human-readable function fragment to the form
// selectors are hashed from. It drops the "function" keyword, parameter
// names, data locations and anything after the parameter list, and expands
// the uint, int and byte aliases:
//
//	function createEvent(tuple(uint a, uint b) p, string memory uri) external
//	createEvent((uint256,uint256),string)
func CanonicalSignature(sig string) (string, error) {
	s := strings.TrimSpace(sig)
	s = strings.TrimPrefix(s, "function ")
	s = strings.TrimSpace(s)

	open := strings.IndexByte(s, '(')
	if open <= 0 {
		return "", fmt.Errorf("malformed signature %q", sig)
	}
	name := strings.TrimSpace(s[:open])
	if !isIdentifier(name) {
		return "", fmt.Errorf("malformed signature %q: bad function name", sig)
	}
	p := &sigParser{src: s, pos: open}
	params, err := p.tuple()
	if err != nil {
		return "", fmt.Errorf("malformed signature %q: %w", sig, err)
	}
	return name + params, nil
}

type sigParser struct {
	src string
	pos int
}

func (p *sigParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *sigParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func (p *sigParser) word() string {
	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// tuple parses "(" type {"," type} ")" starting at an opening parenthesis.
func (p *sigParser) tuple() (string, error) {
	if p.peek() != '(' {
		return "", fmt.Errorf("expected '(' at %d", p.pos)
	}
	p.pos++
	var types []string
	for {
		p.skipSpace()
		if p.peek() == ')' && len(types) == 0 {
			p.pos++
			return "()", nil
		}
		t, err := p.param()
		if err != nil {
			return "", err
		}
		types = append(types, t)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return "(" + strings.Join(types, ",") + ")", nil
		case 0:
			return "", errors.New("unterminated parameter list")
		default:
			return "", fmt.Errorf("unexpected %q at %d", p.peek(), p.pos)
		}
	}
}

// param parses one type with its array suffixes, then skips the optional
// location keywords and parameter name.
func (p *sigParser) param() (string, error) {
	var base string
	if p.peek() == '(' {
		t, err := p.tuple()
		if err != nil {
			return "", err
		}
		base = t
	} else {
		w := p.word()
		if w == "" {
			return "", fmt.Errorf("expected type at %d", p.pos)
		}
		if w == "tuple" && p.peek() == '(' {
			t, err := p.tuple()
			if err != nil {
				return "", err
			}
			base = t
		} else {
			t, err := elementaryType(w)
			if err != nil {
				return "", err
			}
			base = t
		}
	}
	for p.peek() == '[' {
		end := strings.IndexByte(p.src[p.pos:], ']')
		if end < 0 {
			return "", errors.New("unterminated array suffix")
		}
		dim := p.src[p.pos+1 : p.pos+end]
		for i := 0; i < len(dim); i++ {
			if dim[i] < '0' || dim[i] > '9' {
				return "", fmt.Errorf("bad array length %q", dim)
			}
		}
		base += "[" + dim + "]"
		p.pos += end + 1
	}
	for {
		p.skipSpace()
		if c := p.peek(); c == ',' || c == ')' || c == 0 {
			return base, nil
		}
		if p.word() == "" {
			return "", fmt.Errorf("unexpected %q at %d", p.peek(), p.pos)
		}
	}
}

func elementaryType(w string) (string, error) {
	switch w {
	case "uint":
		w = "uint256"
	case "int":
		w = "int256"
	case "byte":
		w = "bytes1"
	}
	if _, err := abi.NewType(w, "", nil); err != nil {
		return "", fmt.Errorf("unknown type %q", w)
	}
	return w, nil
}

func isIdentifier(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
