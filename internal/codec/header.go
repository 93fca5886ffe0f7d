package codec

import "io"

// NodeType is the tagged union every node falls into: either the tree
// Root (which carries no wire header of its own) or a BER identifier
// belonging to one of the four tag classes.
type NodeType uint8

//go:generate stringer -type=NodeType

const (
	TypeRoot NodeType = iota
	TypeUniversal
	TypeApplication
	TypeContextSpecific
	TypePrivate
)

// nodeTypeForClass maps a wire tag class onto its NodeType.
func nodeTypeForClass(c Class) NodeType {
	switch c {
	case ClassUniversal:
		return TypeUniversal
	case ClassApplication:
		return TypeApplication
	case ClassContextSpecific:
		return TypeContextSpecific
	default:
		return TypePrivate
	}
}

// Universal tag numbers used by the reader's leaf/container dispatch.
const (
	TagEndOfContent = 0x00
	TagBoolean      = 0x01
	TagInteger      = 0x02
	TagOctetString  = 0x04
	TagNull         = 0x05
	TagEnumerated   = 0x0A
	TagUtf8String   = 0x0C
	TagSequence     = 0x10
	TagSet          = 0x11
)

// textTagNumbers are the Universal string tags that dispatch to Text.
var textTagNumbers = map[uint32]bool{
	4: true, 12: true, 18: true, 19: true, 20: true,
	21: true, 22: true, 25: true, 26: true, 27: true, 30: true,
}

// Header is the combination of an identifier and its length octets.
type Header struct {
	Identifier    Identifier
	NodeType      NodeType
	PayloadLength int32 // -1 (Indefinite) iff !IsDefinite
	HeaderLength  int32
	IsDefinite    bool
}

// NewHeader builds a Header for id with the given definite payload length,
// computing HeaderLength and NodeType from it.
func NewHeader(id Identifier, payloadLength int32) Header {
	h := Header{Identifier: id, NodeType: nodeTypeForClass(id.Class)}
	h.SetPayloadLength(payloadLength)
	return h
}

// NewIndefiniteHeader builds a Header for id in the indefinite-length form.
func NewIndefiniteHeader(id Identifier) Header {
	h := Header{Identifier: id, NodeType: nodeTypeForClass(id.Class)}
	h.SetIndefinite()
	return h
}

// NewRootHeader builds the header for a tree root, which carries no
// identifier octets of its own.
func NewRootHeader() Header {
	return Header{NodeType: TypeRoot, IsDefinite: true, HeaderLength: 0}
}

// SetPayloadLength sets h to the definite form with the given payload
// length, recomputing HeaderLength.
func (h *Header) SetPayloadLength(length int32) {
	h.IsDefinite = true
	h.PayloadLength = length
	h.recomputeHeaderLength()
}

// SetIndefinite switches h to the indefinite form, forcing PayloadLength to
// Indefinite.
func (h *Header) SetIndefinite() {
	h.IsDefinite = false
	h.PayloadLength = Indefinite
	h.recomputeHeaderLength()
}

func (h *Header) recomputeHeaderLength() {
	if h.NodeType == TypeRoot {
		h.HeaderLength = 0
		return
	}
	idLen := int32(h.Identifier.EncodedLen())
	if h.IsDefinite {
		h.HeaderLength = idLen + int32(OctetCount(h.PayloadLength))
	} else {
		h.HeaderLength = idLen + int32(OctetCount(Indefinite))
	}
}

// MessageLength returns HeaderLength+PayloadLength for definite headers, or
// -1 (Indefinite) for indefinite ones.
func (h Header) MessageLength() int32 {
	if !h.IsDefinite {
		return Indefinite
	}
	return h.HeaderLength + h.PayloadLength
}

// Equal compares headers field by field.
func (h Header) Equal(other Header) bool {
	return h.Identifier.Equal(other.Identifier) &&
		h.NodeType == other.NodeType &&
		h.PayloadLength == other.PayloadLength &&
		h.HeaderLength == other.HeaderLength &&
		h.IsDefinite == other.IsDefinite
}

// AppendHeader encodes h's identifier and length octets and appends them to
// buf. Root headers append nothing: root-type nodes omit their own header.
func AppendHeader(buf []byte, h Header) []byte {
	if h.NodeType == TypeRoot {
		return buf
	}
	buf = h.Identifier.Append(buf)
	if h.IsDefinite {
		return AppendLength(buf, h.PayloadLength)
	}
	return AppendLength(buf, Indefinite)
}

// ReadHeaderBuffer reads a header from data at offset (buffer mode). Any
// out-of-range read raises ErrBounds.
func ReadHeaderBuffer(data []byte, offset int) (Header, error) {
	id, idLen, err := ReadIdentifierBuffer(data, offset)
	if err != nil {
		return Header{}, err
	}
	lo, err := ReadLengthBuffer(data, offset+idLen)
	if err != nil {
		return Header{}, err
	}
	h := Header{
		Identifier:   id,
		NodeType:     nodeTypeForClass(id.Class),
		HeaderLength: int32(idLen) + lo.ReadLength,
	}
	if lo.Value == Indefinite {
		h.IsDefinite = false
		h.PayloadLength = Indefinite
	} else {
		h.IsDefinite = true
		h.PayloadLength = lo.Value
	}
	return h, nil
}

// ReadHeaderStream reads a header from r (stream mode). If the stream is
// exhausted before the first identifier octet, ok is false and err is nil
// (clean EOF). A truncation after that point raises ErrTruncatedHeader.
func ReadHeaderStream(r io.Reader) (h Header, ok bool, err error) {
	id, idLen, readOK, err := ReadIdentifierStream(r)
	if err != nil {
		return Header{}, false, err
	}
	if !readOK {
		return Header{}, false, nil
	}
	lo, err := ReadLengthStream(r)
	if err != nil {
		return Header{}, false, err
	}
	h = Header{
		Identifier:   id,
		NodeType:     nodeTypeForClass(id.Class),
		HeaderLength: int32(idLen) + lo.ReadLength,
	}
	if lo.Value == Indefinite {
		h.IsDefinite = false
		h.PayloadLength = Indefinite
	} else {
		h.IsDefinite = true
		h.PayloadLength = lo.Value
	}
	return h, true, nil
}
