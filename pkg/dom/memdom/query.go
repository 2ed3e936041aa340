package memdom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/nextlevelbuilder/stepreplay/pkg/dom"
)

// memdom understands the selector subset the locator generator emits:
// tag, #id, .class, [attr="value"], [attr], :nth-of-type(n), :has(compound),
// joined by descendant and child combinators. Anything it cannot parse is
// reported as dom.ErrBadSelector so the resolver's fallback parse can kick in.

type attrMatch struct {
	name   string
	value  string
	hasVal bool
}

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
	nth     int // 0 = no :nth-of-type
	has     *compound
}

type selStep struct {
	c     compound
	child bool // preceded by '>' rather than a descendant combinator
}

type selector struct {
	steps []selStep
}

func (s *selector) matches(n *html.Node) bool {
	return matchSeq(s.steps, n)
}

func matchSeq(steps []selStep, n *html.Node) bool {
	k := len(steps) - 1
	if !steps[k].c.match(n) {
		return false
	}
	if k == 0 {
		return true
	}
	p := parentElem(n)
	if steps[k].child {
		return p != nil && matchSeq(steps[:k], p)
	}
	for ; p != nil; p = parentElem(p) {
		if matchSeq(steps[:k], p) {
			return true
		}
	}
	return false
}

func parentElem(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

func (c *compound) match(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if c.tag != "" && n.Data != c.tag {
		return false
	}
	if c.id != "" && attrVal(n, "id") != c.id {
		return false
	}
	if len(c.classes) > 0 {
		have := strings.Fields(attrVal(n, "class"))
		for _, want := range c.classes {
			found := false
			for _, h := range have {
				if h == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	for _, a := range c.attrs {
		v := attrVal(n, a.name)
		if a.hasVal {
			if v != a.value {
				return false
			}
		} else if !hasAttr(n, a.name) {
			return false
		}
	}
	if c.nth > 0 && nthOfType(n) != c.nth {
		return false
	}
	if c.has != nil && !hasDescendant(n, c.has) {
		return false
	}
	return true
}

// nthOfType returns the 1-based position among same-tag element siblings.
func nthOfType(n *html.Node) int {
	pos := 1
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && s.Data == n.Data {
			pos++
		}
	}
	return pos
}

func hasDescendant(n *html.Node, c *compound) bool {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode && c.match(ch) {
			return true
		}
		if hasDescendant(ch, c) {
			return true
		}
	}
	return false
}

// --- parsing ---

type selParser struct {
	s   string
	pos int
}

func parseSelector(s string) (*selector, error) {
	p := &selParser{s: strings.TrimSpace(s)}
	if p.s == "" {
		return nil, dom.ErrBadSelector
	}

	var out selector
	child := false
	for {
		p.skipSpace()
		if p.done() {
			return nil, dom.ErrBadSelector // dangling combinator
		}
		c, err := p.parseCompound()
		if err != nil {
			return nil, err
		}
		out.steps = append(out.steps, selStep{c: *c, child: child})

		hadSpace := p.skipSpace()
		if p.done() {
			return &out, nil
		}
		if p.peek() == '>' {
			p.pos++
			child = true
		} else if hadSpace {
			child = false
		} else {
			return nil, dom.ErrBadSelector
		}
	}
}

func (p *selParser) done() bool { return p.pos >= len(p.s) }

func (p *selParser) peek() byte { return p.s[p.pos] }

func (p *selParser) skipSpace() bool {
	skipped := false
	for !p.done() && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
		skipped = true
	}
	return skipped
}

func (p *selParser) parseCompound() (*compound, error) {
	var c compound

	// Optional leading tag.
	if tag := p.readIdent(); tag != "" {
		c.tag = strings.ToLower(tag)
	}

	for !p.done() {
		switch p.peek() {
		case '#':
			p.pos++
			id := p.readIdent()
			if id == "" {
				return nil, dom.ErrBadSelector
			}
			c.id = id
		case '.':
			p.pos++
			class := p.readIdent()
			if class == "" {
				return nil, dom.ErrBadSelector
			}
			c.classes = append(c.classes, class)
		case '[':
			a, err := p.parseAttr()
			if err != nil {
				return nil, err
			}
			c.attrs = append(c.attrs, *a)
		case ':':
			if err := p.parsePseudo(&c); err != nil {
				return nil, err
			}
		default:
			if c.tag == "" && c.id == "" && len(c.classes) == 0 && len(c.attrs) == 0 {
				return nil, dom.ErrBadSelector
			}
			return &c, nil
		}
	}
	if c.tag == "" && c.id == "" && len(c.classes) == 0 && len(c.attrs) == 0 && c.nth == 0 && c.has == nil {
		return nil, dom.ErrBadSelector
	}
	return &c, nil
}

// readIdent consumes an identifier, honoring backslash escapes. A backslash
// followed by hex digits is a code-point escape (up to six digits, one
// optional terminating whitespace); anything else escapes the next byte
// literally. A dangling trailing backslash is left unconsumed; the caller
// then rejects the selector, which lets the resolver's unescape fallback
// take over.
func (p *selParser) readIdent() string {
	var b strings.Builder
	for !p.done() {
		ch := p.s[p.pos]
		if ch == '\\' {
			if p.pos+1 >= len(p.s) {
				break
			}
			if r, n := readHexEscape(p.s[p.pos+1:]); n > 0 {
				b.WriteRune(r)
				p.pos += 1 + n
				continue
			}
			b.WriteByte(p.s[p.pos+1])
			p.pos += 2
			continue
		}
		if ch == '-' || ch == '_' ||
			(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') {
			b.WriteByte(ch)
			p.pos++
			continue
		}
		break
	}
	return b.String()
}

// readHexEscape decodes a hex code-point escape starting after the
// backslash. It returns the decoded rune and how many bytes were consumed,
// including the optional terminating whitespace; n == 0 means s does not
// start with a hex digit.
func readHexEscape(s string) (rune, int) {
	var v rune
	n := 0
	for n < len(s) && n < 6 {
		d := hexVal(s[n])
		if d < 0 {
			break
		}
		v = v<<4 | rune(d)
		n++
	}
	if n == 0 {
		return 0, 0
	}
	if n < len(s) && (s[n] == ' ' || s[n] == '\t' || s[n] == '\n') {
		n++
	}
	return v, n
}

func hexVal(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10
	default:
		return -1
	}
}

func (p *selParser) parseAttr() (*attrMatch, error) {
	p.pos++ // consume '['
	name := p.readIdent()
	if name == "" {
		return nil, dom.ErrBadSelector
	}
	if p.done() {
		return nil, dom.ErrBadSelector
	}
	if p.peek() == ']' {
		p.pos++
		return &attrMatch{name: name}, nil
	}
	if p.peek() != '=' {
		return nil, dom.ErrBadSelector
	}
	p.pos++
	if p.done() || p.peek() != '"' {
		return nil, dom.ErrBadSelector
	}
	p.pos++
	var b strings.Builder
	for {
		if p.done() {
			return nil, dom.ErrBadSelector // unterminated string
		}
		ch := p.s[p.pos]
		if ch == '\\' {
			if p.pos+1 >= len(p.s) {
				return nil, dom.ErrBadSelector
			}
			b.WriteByte(p.s[p.pos+1])
			p.pos += 2
			continue
		}
		if ch == '"' {
			p.pos++
			break
		}
		b.WriteByte(ch)
		p.pos++
	}
	if p.done() || p.peek() != ']' {
		return nil, dom.ErrBadSelector
	}
	p.pos++
	return &attrMatch{name: name, value: b.String(), hasVal: true}, nil
}

func (p *selParser) parsePseudo(c *compound) error {
	p.pos++ // consume ':'
	name := p.readIdent()
	switch name {
	case "nth-of-type":
		if p.done() || p.peek() != '(' {
			return dom.ErrBadSelector
		}
		p.pos++
		end := strings.IndexByte(p.s[p.pos:], ')')
		if end < 0 {
			return dom.ErrBadSelector
		}
		n, err := strconv.Atoi(strings.TrimSpace(p.s[p.pos : p.pos+end]))
		if err != nil || n < 1 {
			return dom.ErrBadSelector
		}
		c.nth = n
		p.pos += end + 1
		return nil
	case "has":
		if p.done() || p.peek() != '(' {
			return dom.ErrBadSelector
		}
		p.pos++
		end := strings.IndexByte(p.s[p.pos:], ')')
		if end < 0 {
			return dom.ErrBadSelector
		}
		inner := &selParser{s: strings.TrimSpace(p.s[p.pos : p.pos+end])}
		ic, err := inner.parseCompound()
		if err != nil || !inner.done() {
			return dom.ErrBadSelector
		}
		c.has = ic
		p.pos += end + 1
		return nil
	default:
		return dom.ErrBadSelector
	}
}
