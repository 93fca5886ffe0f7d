// Package codec implements ASN.1 BER (Basic Encoding Rules) encoding and
// decoding as specified in ITU-T X.690, into and out of a tree of typed
// Nodes rather than a flat tag/length/value cursor.
//
// # Tag Classes
//
// BER uses four tag classes to identify data types:
//
//   - Universal: standard ASN.1 types like INTEGER, BOOLEAN, SEQUENCE
//   - Application: protocol-specific types
//   - ContextSpecific: context-dependent types within a structure
//   - Private: organization-specific types
//
// # Building a tree
//
//	root := codec.NewSequence(
//		codec.NewInteger(1),
//		codec.NewText(0, "hello"),
//	)
//	data := codec.Write(root)
//
// # Reading a tree
//
//	node, n, err := codec.ReadNodeBuffer(data, 0, codec.MaxPayloadSizeAllowed)
//	if err != nil {
//		// handle error
//	}
//
// # Definite and indefinite length
//
// A node's Header carries IsDefinite; indefinite constructed nodes and
// indefinite Text leaves both serialize with a trailing 00 00 terminator
// instead of a declared length.
//
// # Non-canonical multi-octet tags
//
// Tag numbers below 31 round-trip under the exact X.690 §8.1.2 form. Tag
// numbers of 31 or above use this library's own non-canonical scheme
// (subtract/add 0x7F per octet rather than base-128 shift): it round-trips
// within this library but is not interoperable with other BER decoders.
//
// # References
//
//   - ITU-T X.690: ASN.1 encoding rules
package codec
