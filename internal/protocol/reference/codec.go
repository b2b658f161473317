package reference

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"courier/internal/domain"
)

// maxFieldLen bounds a single field so a corrupt prefix cannot force a huge
// allocation.
const maxFieldLen = 1 << 16

// Encode serialises r. It fails with domain.ErrInvalidArgument when r does
// not satisfy the reference invariants.
func Encode(r domain.PayloadReference) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	fields := [][]byte{
		[]byte(r.Location),
		[]byte(r.ContentType),
		[]byte(r.HashAlgorithm),
		r.Hash,
		r.Key,
		r.IV,
	}
	size := 8
	for _, f := range fields {
		if len(f) > maxFieldLen {
			return nil, fmt.Errorf("%w: reference field of %d bytes", domain.ErrInvalidArgument, len(f))
		}
		size += 4 + len(f)
	}
	out := make([]byte, 0, size)
	for _, f := range fields {
		out = binary.BigEndian.AppendUint32(out, uint32(len(f)))
		out = append(out, f...)
	}
	out = binary.BigEndian.AppendUint64(out, uint64(r.ExpiresUTC.UnixNano()))
	return out, nil
}

// Decode parses bytes produced by Encode. Any structural problem or invariant
// violation is reported as domain.ErrMalformedReference.
func Decode(b []byte) (domain.PayloadReference, error) {
	d := decoder{buf: b}
	location := d.field("location")
	contentType := d.field("content type")
	hashAlgorithm := d.field("hash algorithm")
	hash := d.field("hash")
	key := d.field("key")
	iv := d.field("iv")
	nanos := d.int64("expiration")
	if d.err != nil {
		return domain.PayloadReference{}, d.err
	}
	if len(d.buf) != 0 {
		return domain.PayloadReference{}, fmt.Errorf("%w: %d trailing bytes", domain.ErrMalformedReference, len(d.buf))
	}
	if nanos <= 0 || nanos == math.MaxInt64 {
		return domain.PayloadReference{}, fmt.Errorf("%w: invalid expiration %d", domain.ErrMalformedReference, nanos)
	}

	r := domain.PayloadReference{
		Location:      string(location),
		ContentType:   string(contentType),
		HashAlgorithm: string(hashAlgorithm),
		Hash:          hash,
		Key:           key,
		IV:            iv,
		ExpiresUTC:    time.Unix(0, nanos).UTC(),
	}
	if err := r.Validate(); err != nil {
		return domain.PayloadReference{}, fmt.Errorf("%w: %v", domain.ErrMalformedReference, err)
	}
	return r, nil
}

type decoder struct {
	buf []byte
	err error
}

func (d *decoder) field(name string) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.buf) < 4 {
		d.err = fmt.Errorf("%w: truncated before %s", domain.ErrMalformedReference, name)
		return nil
	}
	n := binary.BigEndian.Uint32(d.buf)
	d.buf = d.buf[4:]
	switch {
	case n == 0:
		d.err = fmt.Errorf("%w: empty %s", domain.ErrMalformedReference, name)
		return nil
	case n > maxFieldLen || int(n) > len(d.buf):
		d.err = fmt.Errorf("%w: %s length %d exceeds input", domain.ErrMalformedReference, name, n)
		return nil
	}
	out := append([]byte(nil), d.buf[:n]...)
	d.buf = d.buf[n:]
	return out
}

func (d *decoder) int64(name string) int64 {
	if d.err != nil {
		return 0
	}
	if len(d.buf) < 8 {
		d.err = fmt.Errorf("%w: truncated before %s", domain.ErrMalformedReference, name)
		return 0
	}
	v := int64(binary.BigEndian.Uint64(d.buf))
	d.buf = d.buf[8:]
	return v
}
