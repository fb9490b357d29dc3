package circuit

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/sync/errgroup"

	"github.com/qsyn/qsyn"
	"github.com/qsyn/qsyn/internal/ioutils"
)

var circuitMagic = [4]byte{'q', 's', 'y', 'n'}

// circuitHeader prefixes a serialized gate stream. Version is checked on
// read: streams written by a different major version are rejected.
type circuitHeader struct {
	Version string `cbor:"version"`
	NbGates uint64 `cbor:"nbGates"`
	NbCells uint32 `cbor:"nbCells"`
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// WriteTo serializes the recorded circuit: a magic header, CBOR metadata and
// four intcomp-compressed columnar operand streams. The columns are
// compressed concurrently.
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	header, err := cbor.Marshal(circuitHeader{
		Version: qsyn.Version.String(),
		NbGates: uint64(len(r.gates)),
		NbCells: r.nb,
	})
	if err != nil {
		return cw.n, err
	}
	if _, err := cw.Write(circuitMagic[:]); err != nil {
		return cw.n, err
	}
	if err := binary.Write(cw, binary.LittleEndian, uint32(len(header))); err != nil {
		return cw.n, err
	}
	if _, err := cw.Write(header); err != nil {
		return cw.n, err
	}

	columns := make([][]uint32, 4)
	columns[0], columns[1], columns[2], columns[3] = r.columns()
	bufs := make([]bytes.Buffer, len(columns))
	var g errgroup.Group
	for i := range columns {
		i := i
		g.Go(func() error {
			return ioutils.WriteUints32(&bufs[i], columns[i])
		})
	}
	if err := g.Wait(); err != nil {
		return cw.n, err
	}
	for i := range bufs {
		if _, err := cw.Write(bufs[i].Bytes()); err != nil {
			return cw.n, err
		}
	}
	return cw.n, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// ReadFrom replaces the Recorder contents with a circuit serialized by
// WriteTo.
func (r *Recorder) ReadFrom(rd io.Reader) (int64, error) {
	cr := &countingReader{r: rd}

	var magic [4]byte
	if _, err := io.ReadFull(cr, magic[:]); err != nil {
		return cr.n, err
	}
	if magic != circuitMagic {
		return cr.n, errors.New("not a qsyn circuit stream")
	}
	var headerLen uint32
	if err := binary.Read(cr, binary.LittleEndian, &headerLen); err != nil {
		return cr.n, err
	}
	if headerLen > 1<<16 {
		return cr.n, fmt.Errorf("circuit header of %d bytes exceeds limit", headerLen)
	}
	raw := make([]byte, headerLen)
	if _, err := io.ReadFull(cr, raw); err != nil {
		return cr.n, err
	}
	var header circuitHeader
	if err := cbor.Unmarshal(raw, &header); err != nil {
		return cr.n, err
	}
	v, err := semver.Parse(header.Version)
	if err != nil {
		return cr.n, fmt.Errorf("invalid circuit stream version %q: %w", header.Version, err)
	}
	if v.Major != qsyn.Version.Major {
		return cr.n, fmt.Errorf("circuit stream version %s is incompatible with %s", v, qsyn.Version)
	}

	columns := make([][]uint32, 4)
	for i := range columns {
		if columns[i], err = ioutils.ReadUints32(cr); err != nil {
			return cr.n, err
		}
		if uint64(len(columns[i])) != header.NbGates {
			return cr.n, fmt.Errorf("column %d has %d gates, header says %d", i, len(columns[i]), header.NbGates)
		}
	}

	gates := make([]Gate, header.NbGates)
	for i := range gates {
		if columns[0][i] > uint32(GateMeasure) {
			return cr.n, fmt.Errorf("unknown gate kind %d at position %d", columns[0][i], i)
		}
		gates[i] = Gate{
			Kind: GateKind(columns[0][i]),
			A:    Qubit(columns[1][i]),
			B:    Qubit(columns[2][i]),
			C:    Qubit(columns[3][i]),
		}
	}
	r.gates = gates
	r.nb = header.NbCells
	return cr.n, nil
}
