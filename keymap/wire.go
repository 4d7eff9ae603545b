package keymap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Wire format for passing a loaded map between processes (big-endian).
// Only the layout identity travels: keyboard type, keys and behaviors.
// Remap tables and the load file name are excluded, mirroring Equal.
const (
	wireMagic   = 0x4B434D57 // "KCMW"
	wireVersion = 1
)

// WriteTo flattens the map to an opaque buffer a peer process can restore
// with ReadFrom.
func (m *Map) WriteTo(w io.Writer) error {
	var hdr [12]byte
	binary.BigEndian.PutUint32(hdr[0:4], wireMagic)
	binary.BigEndian.PutUint32(hdr[4:8], uint32(wireVersion)<<16|uint32(m.keyboardType))
	binary.BigEndian.PutUint32(hdr[8:12], uint32(len(m.order)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	for _, code := range m.order {
		k := m.keys[code]
		var kh [16]byte
		binary.BigEndian.PutUint32(kh[0:4], uint32(code))
		binary.BigEndian.PutUint32(kh[4:8], uint32(k.Label))
		binary.BigEndian.PutUint32(kh[8:12], uint32(k.Number))
		binary.BigEndian.PutUint32(kh[12:16], uint32(len(k.Behaviors)))
		if _, err := w.Write(kh[:]); err != nil {
			return err
		}
		for _, b := range k.Behaviors {
			var bh [16]byte
			binary.BigEndian.PutUint32(bh[0:4], uint32(b.MetaState))
			binary.BigEndian.PutUint32(bh[4:8], uint32(b.Character))
			binary.BigEndian.PutUint32(bh[8:12], uint32(b.FallbackKeyCode))
			binary.BigEndian.PutUint32(bh[12:16], uint32(b.ReplacementKeyCode))
			if _, err := w.Write(bh[:]); err != nil {
				return err
			}
		}
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *Map) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadFrom restores a map flattened by WriteTo. The restored map has no
// load file name; ClearLayoutOverlay is not available on it.
func ReadFrom(r io.Reader) (*Map, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("read key character map header: %w", err)
	}
	if binary.BigEndian.Uint32(hdr[0:4]) != wireMagic {
		return nil, fmt.Errorf("bad key character map magic %#x", binary.BigEndian.Uint32(hdr[0:4]))
	}
	vt := binary.BigEndian.Uint32(hdr[4:8])
	if vt>>16 != wireVersion {
		return nil, fmt.Errorf("unsupported key character map version %d", vt>>16)
	}

	m := newMap("")
	m.keyboardType = KeyboardType(vt & 0xFFFF)
	numKeys := binary.BigEndian.Uint32(hdr[8:12])
	for i := uint32(0); i < numKeys; i++ {
		var kh [16]byte
		if _, err := io.ReadFull(r, kh[:]); err != nil {
			return nil, fmt.Errorf("read key record: %w", err)
		}
		code := KeyCode(binary.BigEndian.Uint32(kh[0:4]))
		k := &Key{
			Label:  rune(binary.BigEndian.Uint32(kh[4:8])),
			Number: rune(binary.BigEndian.Uint32(kh[8:12])),
		}
		numBehaviors := binary.BigEndian.Uint32(kh[12:16])
		for j := uint32(0); j < numBehaviors; j++ {
			var bh [16]byte
			if _, err := io.ReadFull(r, bh[:]); err != nil {
				return nil, fmt.Errorf("read key behavior: %w", err)
			}
			k.Behaviors = append(k.Behaviors, Behavior{
				MetaState:          MetaState(binary.BigEndian.Uint32(bh[0:4])),
				Character:          rune(binary.BigEndian.Uint32(bh[4:8])),
				FallbackKeyCode:    KeyCode(binary.BigEndian.Uint32(bh[8:12])),
				ReplacementKeyCode: KeyCode(binary.BigEndian.Uint32(bh[12:16])),
			})
		}
		m.keys[code] = k
	}
	m.rebuildOrder()
	return m, nil
}

// UnmarshalBinary restores a map from a buffer produced by MarshalBinary.
func UnmarshalBinary(data []byte) (*Map, error) {
	m, err := ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return m, nil
}
