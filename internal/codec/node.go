package codec

import "unicode/utf8"

// LeafKind is the dispatch tag used by the reader and writer to pick a
// concrete leaf or container interpretation for a node. It is derived
// from a node's Header, not stored independently, so a Node built by hand
// and one built by the reader always dispatch the same way.
type LeafKind uint8

//go:generate stringer -type=LeafKind

const (
	LeafGeneric LeafKind = iota
	LeafEndOfContent
	LeafBoolean
	LeafInteger
	LeafEnumerated
	LeafNull
	LeafText
	LeafSequence
	LeafSet
)

// Node is a single element of the BER tree: either a primitive leaf
// carrying Payload, or a constructed container carrying Children. Exactly
// one of Payload/Children is populated. parent is a lookup-only
// back-reference; children are owned exclusively by their parent's
// Children slice.
type Node struct {
	Header    Header
	Payload   []byte
	Children  []*Node
	BytesRead int

	parent *Node
}

// Parent returns n's parent, or nil for the tree root.
func (n *Node) Parent() *Node { return n.parent }

// Level returns the root's depth (0) or a descendant's depth, walking the
// parent chain.
func (n *Node) Level() int {
	level := 0
	for p := n.parent; p != nil; p = p.parent {
		level++
	}
	return level
}

// AddChild appends child to n's children and sets child's parent to n. n
// must be a constructed node (or the tree root).
func (n *Node) AddChild(child *Node) {
	child.parent = n
	n.Children = append(n.Children, child)
}

// Leaf reports which concrete leaf/container variant n's header dispatches
// to.
func (n *Node) Leaf() LeafKind {
	id := n.Header.Identifier
	if id.Class != ClassUniversal {
		return LeafGeneric
	}
	switch id.TagNumber {
	case TagEndOfContent:
		return LeafEndOfContent
	case TagBoolean:
		return LeafBoolean
	case TagInteger:
		return LeafInteger
	case TagEnumerated:
		return LeafEnumerated
	case TagNull:
		return LeafNull
	case TagSequence:
		return LeafSequence
	case TagSet:
		return LeafSet
	default:
		if textTagNumbers[id.TagNumber] {
			return LeafText
		}
		return LeafGeneric
	}
}

// NewRoot creates the tree root, which has no identifier of its own and
// serializes as the concatenation of its children.
func NewRoot(children ...*Node) *Node {
	n := &Node{Header: NewRootHeader()}
	for _, c := range children {
		n.AddChild(c)
	}
	return n
}

// NewNull creates a Universal NULL leaf.
func NewNull() *Node {
	return &Node{Header: NewHeader(Identifier{Class: ClassUniversal, TagNumber: TagNull}, 0)}
}

// NewEndOfContent creates the Universal EndOfContent leaf (the 00 00
// terminator TLV).
func NewEndOfContent() *Node {
	return &Node{Header: NewHeader(Identifier{Class: ClassUniversal, TagNumber: TagEndOfContent}, 0)}
}

// NewBoolean creates a Universal BOOLEAN leaf.
func NewBoolean(v bool) *Node {
	n := &Node{Header: NewHeader(Identifier{Class: ClassUniversal, TagNumber: TagBoolean}, 1)}
	if v {
		n.Payload = []byte{0xFF}
	} else {
		n.Payload = []byte{0x00}
	}
	return n
}

// Bool returns the Boolean leaf's value: false iff the single payload
// octet is 0x00, true for any other value.
func (n *Node) Bool() bool {
	return len(n.Payload) > 0 && n.Payload[0] != 0x00
}

// NewInteger creates a Universal INTEGER leaf with the minimum two's
// complement encoding of v.
func NewInteger(v int64) *Node {
	payload := appendMinimalSigned(nil, v)
	n := &Node{Header: NewHeader(Identifier{Class: ClassUniversal, TagNumber: TagInteger}, int32(len(payload)))}
	n.Payload = payload
	return n
}

// Int decodes the leaf's payload as a two's complement integer. If the
// payload is wider than 64 bits the value is unrepresentable and Int
// returns -1 while leaving Payload untouched.
func (n *Node) Int() int64 {
	if len(n.Payload)*8 > 64 {
		return -1
	}
	return decodeSigned(n.Payload)
}

// NewEnumerated creates a Universal ENUMERATED leaf. Enumerated values are
// logically 32-bit but encoded identically to Integer.
func NewEnumerated(v int32) *Node {
	payload := minimalTwosComplement(v, 4)
	n := &Node{Header: NewHeader(Identifier{Class: ClassUniversal, TagNumber: TagEnumerated}, int32(len(payload)))}
	n.Payload = payload
	return n
}

// Enumerated decodes the leaf's payload as a 32-bit two's complement value.
func (n *Node) Enumerated() int32 {
	return int32(n.Int())
}

// NewText creates a Text leaf with the given Universal string tag; 0
// selects the default, Utf8String.
func NewText(tag uint32, s string) *Node {
	if tag == 0 {
		tag = TagUtf8String
	}
	var payload []byte
	if s != "" {
		payload = []byte(s)
	}
	n := &Node{Header: NewHeader(Identifier{Class: ClassUniversal, TagNumber: tag}, int32(len(payload)))}
	n.Payload = payload
	return n
}

// NewIndefiniteText creates a Text leaf that the writer will emit in
// indefinite form, terminated by 00 00.
func NewIndefiniteText(tag uint32, s string) *Node {
	n := NewText(tag, s)
	n.Header.SetIndefinite()
	return n
}

// Text decodes the leaf's payload as UTF-8. An empty or nil payload
// decodes as the empty string.
func (n *Node) Text() string {
	if !utf8.Valid(n.Payload) {
		return string(n.Payload)
	}
	return string(n.Payload)
}

// NewSequence creates a Universal SEQUENCE container with the given
// children, in order.
func NewSequence(children ...*Node) *Node {
	n := &Node{Header: NewHeader(Identifier{Class: ClassUniversal, Constructed: true, TagNumber: TagSequence}, 0)}
	for _, c := range children {
		n.AddChild(c)
	}
	return n
}

// NewIndefiniteSequence creates a SEQUENCE the writer will emit in
// indefinite form.
func NewIndefiniteSequence(children ...*Node) *Node {
	n := NewSequence(children...)
	n.Header.SetIndefinite()
	return n
}

// NewSet creates a Universal SET container. This library treats Set as
// order-preserving: children retain construction order rather than being
// canonically sorted by tag.
func NewSet(children ...*Node) *Node {
	n := &Node{Header: NewHeader(Identifier{Class: ClassUniversal, Constructed: true, TagNumber: TagSet}, 0)}
	for _, c := range children {
		n.AddChild(c)
	}
	return n
}

// NewIndefiniteSet creates a SET the writer will emit in indefinite form.
func NewIndefiniteSet(children ...*Node) *Node {
	n := NewSet(children...)
	n.Header.SetIndefinite()
	return n
}

// NewGeneric creates a node for any tag the reader does not recognize as a
// specific leaf or container: non-Universal classes, or Universal tags
// outside the leaf table.
func NewGeneric(id Identifier, payload []byte) *Node {
	n := &Node{Header: NewHeader(id, int32(len(payload)))}
	if !id.Constructed {
		n.Payload = payload
	}
	return n
}

// IsEndSession reports whether n is the structural end-session sentinel:
// a Sequence with at least one Application-class child that has no
// children of its own.
func (n *Node) IsEndSession() bool {
	if n.Leaf() != LeafSequence || len(n.Children) == 0 {
		return false
	}
	for _, c := range n.Children {
		if c.Header.Identifier.Class == ClassApplication && len(c.Children) == 0 {
			return true
		}
	}
	return false
}

// DFS returns every node in the subtree rooted at root in post-order
// (children before their parent), via an explicit stack rather than
// recursion.
func DFS(root *Node) []*Node {
	var out []*Node
	type frame struct {
		node    *Node
		visited bool
	}
	stack := []frame{{root, false}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.visited {
			stack = stack[:len(stack)-1]
			out = append(out, top.node)
			continue
		}
		stack[len(stack)-1].visited = true
		for i := len(top.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{top.node.Children[i], false})
		}
	}
	return out
}

// DFSR returns every node in the subtree rooted at root in pre-order
// (parent before its children).
func DFSR(root *Node) []*Node {
	var out []*Node
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}

// CalculatePayloadLength runs a two-pass sizing algorithm over the
// subtree rooted at root: a post-order pass computes every definite
// parent's payload length (including indefinite children's trailing 00 00
// terminators), then a pre-order pass resets every indefinite node's
// PayloadLength back to Indefinite.
func CalculatePayloadLength(root *Node) {
	for _, n := range DFS(root) {
		isContainer := n.Header.NodeType == TypeRoot || n.Header.Identifier.Constructed
		var payloadLength int32
		if isContainer {
			for _, c := range n.Children {
				payloadLength += c.Header.HeaderLength + c.Header.PayloadLength
				if !c.Header.IsDefinite {
					payloadLength += 2
				}
			}
		} else {
			payloadLength = int32(len(n.Payload))
		}
		if n.Header.NodeType == TypeRoot {
			n.Header.PayloadLength = payloadLength
			continue
		}
		if n.Header.IsDefinite {
			n.Header.SetPayloadLength(payloadLength)
		} else {
			// Indefinite nodes still need a real payload length to size
			// their parent; SetIndefinite would clobber it, so stash it
			// directly and let the pre-order pass reset it afterward.
			n.Header.PayloadLength = payloadLength
			n.Header.recomputeHeaderLength()
		}
	}
	for _, n := range DFSR(root) {
		if n.Header.NodeType != TypeRoot && !n.Header.IsDefinite {
			n.Header.PayloadLength = Indefinite
		}
	}
}
