// Package loader provides program image loading for R32 executables.
//
// An image is a 4-byte little-endian unsigned length L followed by exactly
// L bytes of machine code and data, with nothing after them.
package loader

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/r32sim/translate"
)

// HeaderSize is the size of the length prefix in bytes.
const HeaderSize = 4

var (
	// ErrTruncated indicates the image holds fewer bytes than its header
	// declares.
	ErrTruncated = errors.New(translate.From("reached EOF (actual size is less than header)"))

	// ErrTrailingData indicates bytes remain after the declared length.
	ErrTrailingData = errors.New(translate.From("input file remained (actual size is more than header)"))
)

// Program represents a loaded program image ready for copying into memory.
type Program struct {
	// Data holds the bytes that follow the length prefix.
	Data []byte
}

// Size returns the declared program length.
func (p *Program) Size() uint32 {
	return uint32(len(p.Data))
}

// WriteTo writes p in image format.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[:], p.Size())

	n, err := w.Write(hdr[:])
	if err != nil {
		return int64(n), err
	}

	m, err := w.Write(p.Data)
	return int64(n + m), err
}

// IsFormatError reports whether err describes a malformed image, as opposed
// to a failure to open or read the file.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrTruncated) || errors.Is(err, ErrTrailingData)
}

// Load opens and parses the image at path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program image: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(bufio.NewReader(f))
}

// Read parses an image from r. It consumes r to EOF.
func Read(r io.Reader) (*Program, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("short header: %w", ErrTruncated)
		}
		return nil, err
	}

	size := binary.LittleEndian.Uint32(hdr[:])

	// Copy rather than preallocate: the header is untrusted.
	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, int64(size))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if n < int64(size) {
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrTruncated, n, size)
	}

	var extra [1]byte
	_, err = io.ReadFull(r, extra[:])
	switch {
	case err == nil:
		return nil, ErrTrailingData
	case !errors.Is(err, io.EOF):
		return nil, err
	}

	return &Program{Data: buf.Bytes()}, nil
}
