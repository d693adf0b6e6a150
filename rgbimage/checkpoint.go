package rgbimage

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

const dataLayoutVersion = 1

// maxPixels bounds the image size ReadImage will allocate.
const maxPixels = 1 << 28

// Header field numbers.
const (
	fieldRowSize           protowire.Number = 1
	fieldColSize           protowire.Number = 2
	fieldChannels          protowire.Number = 3
	fieldDataLayoutVersion protowire.Number = 4
)

type header struct {
	rowSize, colSize  uint64
	channels          uint64
	dataLayoutVersion uint64
}

func (h *header) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldRowSize, protowire.VarintType)
	b = protowire.AppendVarint(b, h.rowSize)
	b = protowire.AppendTag(b, fieldColSize, protowire.VarintType)
	b = protowire.AppendVarint(b, h.colSize)
	b = protowire.AppendTag(b, fieldChannels, protowire.VarintType)
	b = protowire.AppendVarint(b, h.channels)
	b = protowire.AppendTag(b, fieldDataLayoutVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, h.dataLayoutVersion)
	return b
}

func (h *header) unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("while reading field tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		if typ != protowire.VarintType {
			// Unknown field from a newer writer.
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("while skipping field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return fmt.Errorf("while reading field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case fieldRowSize:
			h.rowSize = v
		case fieldColSize:
			h.colSize = v
		case fieldChannels:
			h.channels = v
		case fieldDataLayoutVersion:
			h.dataLayoutVersion = v
		}
	}
	return nil
}

// ReadImage reads a checkpoint written by WriteImage.
func ReadImage(in io.Reader) (*Image, error) {
	var headerLength uint64
	if err := binary.Read(in, binary.LittleEndian, &headerLength); err != nil {
		return nil, fmt.Errorf("while reading header length: %w", err)
	}
	if headerLength > 1<<16 {
		return nil, fmt.Errorf("implausible header length %d", headerLength)
	}

	headerBytes := make([]byte, int(headerLength))
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return nil, fmt.Errorf("while reading header bytes: %w", err)
	}

	hdr := &header{}
	if err := hdr.unmarshal(headerBytes); err != nil {
		return nil, fmt.Errorf("while unmarshaling header: %w", err)
	}

	if hdr.dataLayoutVersion != dataLayoutVersion {
		return nil, fmt.Errorf("bad data layout version: %v", hdr.dataLayoutVersion)
	}
	if hdr.channels != 3 {
		return nil, fmt.Errorf("bad channel count: %v", hdr.channels)
	}
	// Bound each dimension before multiplying so the product can't wrap.
	if hdr.rowSize == 0 || hdr.colSize == 0 || hdr.rowSize > maxPixels || hdr.colSize > maxPixels || hdr.rowSize > maxPixels/hdr.colSize {
		return nil, fmt.Errorf("bad image size %dx%d", hdr.colSize, hdr.rowSize)
	}

	im := New(int(hdr.rowSize), int(hdr.colSize))

	zipReader, err := zlib.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("while opening zip reader: %w", err)
	}
	defer zipReader.Close()

	if err := binary.Read(zipReader, binary.LittleEndian, im.Sums); err != nil {
		return nil, fmt.Errorf("while reading color sums: %w", err)
	}

	if err := binary.Read(zipReader, binary.LittleEndian, im.Counts); err != nil {
		return nil, fmt.Errorf("while reading sample counts: %w", err)
	}

	return im, nil
}

func ReadImageFromFile(name string) (*Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("while opening file: %w", err)
	}
	defer f.Close()

	return ReadImage(f)
}

// WriteImage writes a checkpoint that ReadImage can resume from.
func WriteImage(im *Image, w io.Writer) error {
	hdr := &header{
		rowSize:           uint64(im.RowSize),
		colSize:           uint64(im.ColSize),
		channels:          3,
		dataLayoutVersion: dataLayoutVersion,
	}
	hdrBytes := hdr.marshal()

	headerLengthBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(headerLengthBytes, uint64(len(hdrBytes)))
	if _, err := w.Write(headerLengthBytes); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}

	if _, err := w.Write(hdrBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	zipWriter := zlib.NewWriter(w)

	if err := binary.Write(zipWriter, binary.LittleEndian, im.Sums); err != nil {
		return fmt.Errorf("while writing color sums: %w", err)
	}

	if err := binary.Write(zipWriter, binary.LittleEndian, im.Counts); err != nil {
		return fmt.Errorf("while writing sample counts: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("while closing zip writer: %w", err)
	}

	return nil
}
