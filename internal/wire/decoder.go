// Package wire implements the streaming decoder shared by every chain codec.
//
// Explorer payloads are consumed token by token. The decoder keeps an
// explicit stack of frames, each tagged with the context it decodes
// ("page", "tx", "inputs", "block", ...), and resolves every key through a
// rule table indexed by {context, key}. Identically named fields under
// different contexts therefore never collide: "hash" under "tx" and "hash"
// under "block" are two distinct routes.
//
// The contract is explicit:
//   - keys without a rule are skipped, whatever their value;
//   - optional fields that are absent leave the target untouched;
//   - a required key missing from an object fails the decode with a parse
//     error instead of substituting a default.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/gabapcia/walletsync/internal/syncerr"
)

// ErrMissingField is wrapped when an object closes without a required key.
var ErrMissingField = errors.New("missing required field")

// Context tags a kind of JSON object in a payload.
type Context string

// Route addresses a key inside an object of a given context.
type Route struct {
	Context Context
	Key     string
}

// Setter stores a scalar into the decode state.
type Setter[S any] func(s *S, v Value) error

// Hook runs when an object of a context opens or closes.
type Hook[S any] func(s *S) error

// CatchAll receives scalar keys of a context that have no explicit rule.
type CatchAll[S any] func(s *S, key string, v Value) error

// Rules is the transition table of the decoder for one payload shape.
type Rules[S any] struct {
	// Root is the context of the top level object, or of the elements when
	// the payload is a top level array.
	Root Context

	// Fields maps scalar keys to setters. When the value is an array of
	// scalars the setter is called once per element.
	Fields map[Route]Setter[S]

	// Nested maps keys whose value is an object, or an array of objects, to
	// the context those objects are decoded in.
	Nested map[Route]Context

	Enter map[Context]Hook[S]
	Exit  map[Context]Hook[S]

	// Required lists the keys every object of a context must carry.
	Required map[Context][]string

	// Fallback captures unknown scalar keys of a context instead of skipping
	// them.
	Fallback map[Context]CatchAll[S]
}

// WithRoot returns a shallow copy of the rules decoding from another root
// context. Tables are shared.
func (r *Rules[S]) WithRoot(root Context) *Rules[S] {
	c := *r
	c.Root = root
	return &c
}

type frameKind int

const (
	objectFrame frameKind = iota
	arrayFrame
)

type frame struct {
	kind frameKind

	// ctx is the context of the object, or of the elements of an array.
	ctx Context

	// object frames
	key    string
	hasKey bool
	seen   []string

	// array frames
	route  Route // key that opened the array
	nested bool  // elements are objects decoded in ctx
}

type machine[S any] struct {
	rules *Rules[S]
	state *S
	stack []*frame
	skip  int // depth of the value being skipped, zero when not skipping
	done  bool
}

// Decode streams the JSON document from r into state following rules.
// Decoding errors are returned as syncerr parse errors.
func Decode[S any](r io.Reader, rules *Rules[S], state *S) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	m := &machine[S]{rules: rules, state: state}
	for !m.done {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return syncerr.Parse(io.ErrUnexpectedEOF, "truncated payload")
		}

		if err != nil {
			return syncerr.Parse(err, "malformed payload")
		}

		if err := m.step(tok); err != nil {
			return syncerr.Parse(err, "decoding %s", m.path())
		}
	}

	return nil
}

func (m *machine[S]) step(tok json.Token) error {
	if m.skip > 0 {
		m.skipToken(tok)
		return nil
	}

	if len(m.stack) == 0 {
		return m.root(tok)
	}

	top := m.stack[len(m.stack)-1]
	if top.kind == arrayFrame {
		return m.element(top, tok)
	}

	if !top.hasKey {
		if tok == json.Delim('}') {
			return m.closeObject(top)
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}

		top.key, top.hasKey = key, true
		top.seen = append(top.seen, key)
		return nil
	}

	return m.value(top, Route{Context: top.ctx, Key: top.key}, tok)
}

func (m *machine[S]) root(tok json.Token) error {
	switch tok {
	case json.Delim('{'):
		return m.openObject(m.rules.Root)
	case json.Delim('['):
		m.stack = append(m.stack, &frame{kind: arrayFrame, ctx: m.rules.Root, nested: true})
		return nil
	default:
		return fmt.Errorf("unexpected top level value %v", tok)
	}
}

func (m *machine[S]) value(top *frame, route Route, tok json.Token) error {
	switch tok {
	case json.Delim('{'):
		if child, ok := m.rules.Nested[route]; ok {
			return m.openObject(child)
		}

		m.skip = 1
		return nil
	case json.Delim('['):
		if child, ok := m.rules.Nested[route]; ok {
			m.stack = append(m.stack, &frame{kind: arrayFrame, ctx: child, route: route, nested: true})
			return nil
		}

		if _, ok := m.rules.Fields[route]; ok {
			m.stack = append(m.stack, &frame{kind: arrayFrame, ctx: route.Context, route: route})
			return nil
		}

		m.skip = 1
		return nil
	}

	var err error
	if set, ok := m.rules.Fields[route]; ok {
		err = set(m.state, Value{tok: tok})
	} else if catch, ok := m.rules.Fallback[top.ctx]; ok {
		err = catch(m.state, route.Key, Value{tok: tok})
	}

	// The key stays pending on failure so the error path names it.
	if err != nil {
		return err
	}

	m.valueDone()
	return nil
}

func (m *machine[S]) element(top *frame, tok json.Token) error {
	switch tok {
	case json.Delim(']'):
		m.stack = m.stack[:len(m.stack)-1]
		m.valueDone()
		return nil
	case json.Delim('{'):
		if top.nested {
			return m.openObject(top.ctx)
		}

		m.skip = 1
		return nil
	case json.Delim('['):
		m.skip = 1
		return nil
	}

	if top.nested {
		return nil
	}

	if set, ok := m.rules.Fields[top.route]; ok {
		return set(m.state, Value{tok: tok})
	}

	return nil
}

func (m *machine[S]) openObject(ctx Context) error {
	m.stack = append(m.stack, &frame{kind: objectFrame, ctx: ctx})

	if hook, ok := m.rules.Enter[ctx]; ok {
		return hook(m.state)
	}

	return nil
}

func (m *machine[S]) closeObject(top *frame) error {
	for _, key := range m.rules.Required[top.ctx] {
		if !slices.Contains(top.seen, key) {
			return fmt.Errorf("%w %q", ErrMissingField, key)
		}
	}

	if hook, ok := m.rules.Exit[top.ctx]; ok {
		if err := hook(m.state); err != nil {
			return err
		}
	}

	m.stack = m.stack[:len(m.stack)-1]
	m.valueDone()
	return nil
}

// valueDone marks the pending key of the enclosing object as consumed, or
// ends decoding when the top level value is complete.
func (m *machine[S]) valueDone() {
	if len(m.stack) == 0 {
		m.done = true
		return
	}

	if top := m.stack[len(m.stack)-1]; top.kind == objectFrame {
		top.hasKey = false
	}
}

func (m *machine[S]) skipToken(tok json.Token) {
	switch tok {
	case json.Delim('{'), json.Delim('['):
		m.skip++
	case json.Delim('}'), json.Delim(']'):
		m.skip--
		if m.skip == 0 {
			m.valueDone()
		}
	}
}

// path renders the context stack for error messages, e.g. "page.tx.inputs".
func (m *machine[S]) path() string {
	out := ""
	for i, f := range m.stack {
		if i > 0 {
			out += "."
		}

		out += string(f.ctx)
		if f.kind == objectFrame && f.hasKey {
			out += "[" + f.key + "]"
		}
	}

	return out
}
