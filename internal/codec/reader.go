package codec

import "io"

// MaxPayloadSizeAllowed is the default cap on a single primitive's payload
// length (128 MiB).
const MaxPayloadSizeAllowed int32 = 128 * 1024 * 1024

// ReadNodeBuffer reads one complete node (header + content) from data at
// offset, in buffer mode: any out-of-range read raises ErrBounds. It
// returns the node and the total number of bytes consumed.
func ReadNodeBuffer(data []byte, offset int, maxPayload int32) (*Node, int, error) {
	header, err := ReadHeaderBuffer(data, offset)
	if err != nil {
		return nil, 0, err
	}
	contentStart := offset + int(header.HeaderLength)
	node := &Node{Header: header}

	if header.Identifier.Constructed {
		consumed, err := readConstructedBuffer(node, data, contentStart)
		if err != nil {
			return nil, 0, err
		}
		node.BytesRead = int(header.HeaderLength) + consumed
		return node, node.BytesRead, nil
	}

	if !header.IsDefinite {
		payload, consumed, err := readIndefinitePrimitiveBuffer(data, contentStart)
		if err != nil {
			return nil, 0, err
		}
		node.Payload = payload
		node.BytesRead = int(header.HeaderLength) + consumed
		return node, node.BytesRead, nil
	}

	if header.PayloadLength > maxPayload {
		return nil, 0, NewDecodeError(offset, "payload exceeds maximum allowed size", ErrPayloadTooLarge)
	}
	end := contentStart + int(header.PayloadLength)
	if end > len(data) {
		return nil, 0, NewDecodeError(contentStart, "payload runs past end of buffer", ErrBounds)
	}
	if header.PayloadLength > 0 {
		node.Payload = append([]byte(nil), data[contentStart:end]...)
	}
	node.BytesRead = int(header.HeaderLength) + int(header.PayloadLength)
	return node, node.BytesRead, nil
}

func readConstructedBuffer(node *Node, data []byte, start int) (int, error) {
	if node.Header.IsDefinite {
		want := int(node.Header.PayloadLength)
		consumed := 0
		for consumed < want {
			child, n, err := ReadNodeBuffer(data, start+consumed, MaxPayloadSizeAllowed)
			if err != nil {
				return 0, NewDecodeError(start+consumed, "truncated constructed content", ErrUnexpectedEndOfContent)
			}
			node.AddChild(child)
			consumed += n
		}
		if consumed != want {
			return 0, NewDecodeError(start, "constructed content overruns declared length", ErrUnexpectedEndOfContent)
		}
		return consumed, nil
	}

	consumed := 0
	for {
		if start+consumed >= len(data) {
			return 0, NewDecodeError(start+consumed, "indefinite constructed content missing terminator", ErrUnexpectedEndOfContent)
		}
		header, err := ReadHeaderBuffer(data, start+consumed)
		if err != nil {
			return 0, NewDecodeError(start+consumed, "truncated child header", ErrUnexpectedEndOfContent)
		}
		if header.Identifier.Class == ClassUniversal && header.Identifier.TagNumber == TagEndOfContent && header.PayloadLength == 0 {
			consumed += int(header.HeaderLength)
			return consumed, nil
		}
		child, n, err := ReadNodeBuffer(data, start+consumed, MaxPayloadSizeAllowed)
		if err != nil {
			return 0, NewDecodeError(start+consumed, "truncated indefinite constructed child", ErrUnexpectedEndOfContent)
		}
		node.AddChild(child)
		consumed += n
	}
}

func readIndefinitePrimitiveBuffer(data []byte, start int) ([]byte, int, error) {
	for i := start; i+1 < len(data); i++ {
		if data[i] == 0x00 && data[i+1] == 0x00 {
			var payload []byte
			if i > start {
				payload = append([]byte(nil), data[start:i]...)
			}
			return payload, (i + 2) - start, nil
		}
	}
	return nil, 0, NewDecodeError(start, "indefinite primitive content missing 00 00 terminator", ErrUnexpectedEndOfContent)
}

// ReadNodeStream reads one complete node from r given its already-parsed
// header, in stream mode: truncation of the content, including a truncated
// child header, raises ErrUnexpectedEndOfContent. It is used by the message framer for
// indefinite-length top-level messages, where no declared length is
// available to buffer ahead of time.
func ReadNodeStream(r io.Reader, header Header, maxPayload int32) (*Node, error) {
	node := &Node{Header: header}

	if header.Identifier.Constructed {
		if err := readConstructedStream(node, r); err != nil {
			return nil, err
		}
		return node, nil
	}

	if !header.IsDefinite {
		payload, err := readIndefinitePrimitiveStream(r)
		if err != nil {
			return nil, err
		}
		node.Payload = payload
		return node, nil
	}

	if header.PayloadLength > maxPayload {
		return nil, ErrPayloadTooLarge
	}
	if header.PayloadLength > 0 {
		buf := make([]byte, header.PayloadLength)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, ErrUnexpectedEndOfContent
		}
		node.Payload = buf
	}
	return node, nil
}

func readConstructedStream(node *Node, r io.Reader) error {
	if node.Header.IsDefinite {
		// The counting reader tracks every byte consumed by this node's
		// descendants, however deeply nested indefinite children are
		// within it, so the budget check below needs no separate
		// byte-accounting pass over the resulting subtree.
		counter := &countingReader{r: r}
		want := int64(node.Header.PayloadLength)
		for counter.n < want {
			header, ok, err := ReadHeaderStream(counter)
			if err != nil || !ok {
				return ErrUnexpectedEndOfContent
			}
			child, err := ReadNodeStream(counter, header, MaxPayloadSizeAllowed)
			if err != nil {
				return err
			}
			node.AddChild(child)
		}
		if counter.n != want {
			return ErrUnexpectedEndOfContent
		}
		return nil
	}

	for {
		header, ok, err := ReadHeaderStream(r)
		if err != nil || !ok {
			return ErrUnexpectedEndOfContent
		}
		if header.Identifier.Class == ClassUniversal && header.Identifier.TagNumber == TagEndOfContent && header.PayloadLength == 0 {
			return nil
		}
		child, err := ReadNodeStream(r, header, MaxPayloadSizeAllowed)
		if err != nil {
			return err
		}
		node.AddChild(child)
	}
}

func readIndefinitePrimitiveStream(r io.Reader) ([]byte, error) {
	var payload []byte
	var buf [1]byte
	zeros := 0
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, ErrUnexpectedEndOfContent
		}
		if buf[0] == 0x00 {
			zeros++
			if zeros == 2 {
				return payload, nil
			}
			continue
		}
		if zeros == 1 {
			payload = append(payload, 0x00)
			zeros = 0
		}
		payload = append(payload, buf[0])
	}
}

// DecodeContent builds a node from an already-parsed definite-length
// header and its complete payload bytes. It is used by the message framer,
// which reads a header and its payload as separate steps across
// potentially several partial network reads, rather than handing the
// reader a single contiguous buffer. Indefinite headers are not supported
// here: the framer falls back to ReadNodeStream for those directly off the
// connection, since no declared length is available to buffer ahead of
// time.
func DecodeContent(header Header, payload []byte) (*Node, error) {
	if !header.IsDefinite {
		return nil, NewDecodeError(0, "indefinite header has no declared payload to decode", ErrInvalidConstructedRead)
	}
	node := &Node{Header: header}
	if header.Identifier.Constructed {
		consumed, err := readConstructedBuffer(node, payload, 0)
		if err != nil {
			return nil, err
		}
		if consumed != len(payload) {
			return nil, NewDecodeError(consumed, "constructed payload left unconsumed trailing bytes", ErrUnexpectedEndOfContent)
		}
		node.BytesRead = int(header.HeaderLength) + consumed
		return node, nil
	}
	if len(payload) > 0 {
		node.Payload = append([]byte(nil), payload...)
	}
	node.BytesRead = int(header.HeaderLength) + len(payload)
	return node, nil
}

// countingReader wraps an io.Reader and tracks total bytes read, used to
// enforce a definite constructed node's declared payload budget when
// reading directly from a stream.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
