package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// The selector grammar covers what enhancement configuration actually uses:
// tag, #id, .class, [attr] and [attr=value] parts in any compound
// combination, descendant chains separated by whitespace, and comma groups.
// Anything unparsable matches nothing.

type attrMatch struct {
	key      string
	val      string
	hasValue bool
}

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
	valid   bool
}

// Selector is a parsed comma group of descendant chains.
type Selector struct {
	chains [][]compound
}

// ParseSelector parses a CSS-subset selector. Malformed input yields a
// selector that matches nothing rather than an error; configuration
// mistakes must degrade, not crash.
func ParseSelector(s string) *Selector {
	sel := &Selector{}
	for _, group := range strings.Split(s, ",") {
		fields := strings.Fields(group)
		if len(fields) == 0 {
			continue
		}
		chain := make([]compound, 0, len(fields))
		for _, f := range fields {
			chain = append(chain, parseCompound(f))
		}
		sel.chains = append(sel.chains, chain)
	}
	return sel
}

func parseCompound(s string) compound {
	c := compound{valid: true}
	for len(s) > 0 {
		switch s[0] {
		case '#':
			rest, token := takeToken(s[1:])
			if token == "" {
				c.valid = false
				return c
			}
			c.id = token
			s = rest
		case '.':
			rest, token := takeToken(s[1:])
			if token == "" {
				c.valid = false
				return c
			}
			c.classes = append(c.classes, token)
			s = rest
		case '[':
			end := strings.IndexByte(s, ']')
			if end < 0 {
				c.valid = false
				return c
			}
			body := s[1:end]
			s = s[end+1:]
			if eq := strings.IndexByte(body, '='); eq >= 0 {
				key := body[:eq]
				val := strings.Trim(body[eq+1:], `"'`)
				if key == "" {
					c.valid = false
					return c
				}
				c.attrs = append(c.attrs, attrMatch{key: key, val: val, hasValue: true})
			} else {
				if body == "" {
					c.valid = false
					return c
				}
				c.attrs = append(c.attrs, attrMatch{key: body})
			}
		case '*':
			s = s[1:]
		default:
			rest, token := takeToken(s)
			if token == "" {
				c.valid = false
				return c
			}
			c.tag = strings.ToLower(token)
			s = rest
		}
	}
	return c
}

// takeToken consumes an identifier (letters, digits, -, _) and returns the
// remainder plus the token.
func takeToken(s string) (rest, token string) {
	i := 0
	for i < len(s) {
		ch := s[i]
		if ch == '#' || ch == '.' || ch == '[' {
			break
		}
		i++
	}
	return s[i:], s[:i]
}

func (c compound) matches(n *html.Node) bool {
	if !c.valid || n.Type != html.ElementNode {
		return false
	}
	if c.tag != "" && n.Data != c.tag {
		return false
	}
	if c.id != "" && Attr(n, "id") != c.id {
		return false
	}
	for _, cls := range c.classes {
		if !HasClass(n, cls) {
			return false
		}
	}
	for _, am := range c.attrs {
		v, ok := GetAttr(n, am.key)
		if !ok {
			return false
		}
		if am.hasValue && v != am.val {
			return false
		}
	}
	return true
}

// matchChain tests n against the final compound of the chain, then walks
// ancestors (bounded by scope) for each preceding compound.
func matchChain(scope, n *html.Node, chain []compound) bool {
	if len(chain) == 0 {
		return false
	}
	if !chain[len(chain)-1].matches(n) {
		return false
	}
	remaining := chain[:len(chain)-1]
	cur := n.Parent
	for i := len(remaining) - 1; i >= 0; i-- {
		found := false
		for ; cur != nil && cur != scope.Parent; cur = cur.Parent {
			if remaining[i].matches(cur) {
				found = true
				cur = cur.Parent
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Matches reports whether a single node satisfies the selector, with n
// itself serving as the ancestry scope.
func (sel *Selector) Matches(n *html.Node) bool {
	for _, chain := range sel.chains {
		if matchChain(n, n, chain) {
			return true
		}
	}
	return false
}

// Scan returns all elements under root matching the selector, in document
// order, including root itself when it matches. Enhancement may be invoked
// on a single element or on a whole subtree, so the root is always a
// candidate.
func Scan(root *html.Node, selector string) []*html.Node {
	sel := ParseSelector(selector)
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, chain := range sel.chains {
				if matchChain(root, n, chain) {
					out = append(out, n)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// QueryFirst returns the first match of Scan, or nil.
func QueryFirst(root *html.Node, selector string) *html.Node {
	if matches := Scan(root, selector); len(matches) > 0 {
		return matches[0]
	}
	return nil
}

// Closest walks from n upward (n included) to the first element matching
// the selector, or nil.
func Closest(n *html.Node, selector string) *html.Node {
	sel := ParseSelector(selector)
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && sel.Matches(cur) {
			return cur
		}
	}
	return nil
}
