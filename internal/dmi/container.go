// Package dmi implements the on-disk animation-file codec: the "indexed
// animation file" collaborator an external collaborator names as an external,
// out-of-scope black box that need only "decode to frames and re-encode
// from frames". The wire format here is a small RIFF-style chunked
// container, adapted directly from the reference codec library's WebP chunk
// framing (mux/chunk.go) and animation canvas model (animation/frame.go):
// a FourCC + little-endian length header per chunk, payloads padded to an
// even byte boundary, and one "state" per chunk holding a fixed-size
// dirs×frames run of RGBA8 images plus their timing metadata.
package dmi

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// fourCC is a 4-byte chunk identifier, matching the reference codec's ChunkID
// convention (mux.ChunkID) but renamed to this format's own tags.
type fourCC = uint32

func fourCCOf(a, b, c, d byte) fourCC {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

var (
	fccMagic = fourCCOf('I', 'C', 'F', 'G') // container magic, first 4 bytes of file
	fccState = fourCCOf('S', 'T', 'A', 'T') // one IconState
)

const chunkHeaderSize = 8 // 4-byte FourCC + 4-byte little-endian length

var (
	errTruncatedHeader  = errors.New("dmi: truncated chunk header")
	errTruncatedPayload = errors.New("dmi: truncated chunk payload")
	errBadMagic         = errors.New("dmi: not an icon-set container (bad magic)")
)

// chunk is a single chunk: an identifier plus its raw payload.
type chunk struct {
	id      fourCC
	payload []byte
}

// readChunk reads one chunk from the front of data, returning it and the
// number of bytes consumed (including any padding byte), mirroring
// mux.ReadChunk's zero-copy slicing and even-byte padding rule.
func readChunk(data []byte) (chunk, int, error) {
	if len(data) < chunkHeaderSize {
		return chunk{}, 0, errTruncatedHeader
	}
	id := binary.LittleEndian.Uint32(data[0:4])
	size := binary.LittleEndian.Uint32(data[4:8])
	end := chunkHeaderSize + int(size)
	if end > len(data) {
		return chunk{}, 0, errTruncatedPayload
	}
	c := chunk{id: id, payload: data[chunkHeaderSize:end]}
	consumed := end
	if size%2 != 0 && consumed < len(data) {
		consumed++
	}
	return c, consumed, nil
}

// appendChunk appends a chunk header + payload (+ padding) to buf.
func appendChunk(buf []byte, id fourCC, payload []byte) []byte {
	var hdr [chunkHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], id)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(payload)))
	buf = append(buf, hdr[:]...)
	buf = append(buf, payload...)
	if len(payload)%2 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

func fourCCString(id fourCC) string {
	return string([]byte{byte(id), byte(id >> 8), byte(id >> 16), byte(id >> 24)})
}

func requireChunk(c chunk, want fourCC) error {
	if c.id != want {
		return fmt.Errorf("dmi: expected chunk %q, got %q", fourCCString(want), fourCCString(c.id))
	}
	return nil
}
