package page

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hupe1980/memdb/block"
	"github.com/hupe1980/memdb/internal/conv"
	"github.com/hupe1980/memdb/internal/hash"
	"github.com/hupe1980/memdb/offheap"
	"github.com/hupe1980/memdb/serde"
)

const (
	frameMagic   = "MDBP"
	frameVersion = 2
	headerSize   = 28
	checksumAt   = 24
)

// DefaultMaxFrameSize bounds the decoded payload size of a frame.
const DefaultMaxFrameSize = 1 << 30

var (
	// ErrChecksumMismatch is returned when a frame fails its CRC32C check.
	ErrChecksumMismatch = errors.New("page: checksum mismatch")
	// ErrCorrupt is returned for malformed frames.
	ErrCorrupt = errors.New("page: corrupt frame")
	// ErrUnsupportedVersion is returned for frames written by a newer format.
	ErrUnsupportedVersion = errors.New("page: unsupported frame version")
	// ErrUnsupportedCompression is returned for unknown compression codes.
	ErrUnsupportedCompression = errors.New("page: unsupported compression")
)

// Serde encodes pages into self-describing, checksummed frames.
// A Serde is safe for concurrent use.
type Serde struct {
	compression  Compression
	alloc        *offheap.Allocator
	maxFrameSize int
	logger       *slog.Logger
}

// SerdeOption configures a Serde.
type SerdeOption func(*Serde)

// WithCompression sets the payload compression used when writing.
func WithCompression(c Compression) SerdeOption {
	return func(s *Serde) {
		s.compression = c
	}
}

// WithAllocator sets the allocator that decoded blocks are placed in.
func WithAllocator(a *offheap.Allocator) SerdeOption {
	return func(s *Serde) {
		s.alloc = a
	}
}

// WithMaxFrameSize bounds the decoded payload size accepted by Unmarshal and
// Read. Non-positive values keep DefaultMaxFrameSize.
func WithMaxFrameSize(n int) SerdeOption {
	return func(s *Serde) {
		if n > 0 {
			s.maxFrameSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SerdeOption {
	return func(s *Serde) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSerde returns a page serde.
func NewSerde(opts ...SerdeOption) *Serde {
	s := &Serde{
		compression:  CompressionNone,
		maxFrameSize: DefaultMaxFrameSize,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compression returns the configured compression.
func (s *Serde) Compression() Compression { return s.compression }

// Marshal encodes p into a frame.
func (s *Serde) Marshal(p *Page) ([]byte, error) {
	var raw bytes.Buffer
	raw.Grow(int(p.SizeInBytes()) + 16*p.ChannelCount())
	for _, b := range p.blocks {
		if err := serde.WriteBlock(&raw, b); err != nil {
			return nil, fmt.Errorf("page: encode %s channel: %w", b.EncodingName(), err)
		}
	}

	payload, applied, err := compress(raw.Bytes(), s.compression)
	if err != nil {
		return nil, fmt.Errorf("page: compress: %w", err)
	}
	if applied != s.compression {
		s.logger.Debug("stored incompressible page payload raw",
			"compression", s.compression.String(), "bytes", raw.Len())
	}

	positionCount, err := conv.IntToUint32(p.positionCount)
	if err != nil {
		return nil, fmt.Errorf("page: position count: %w", err)
	}
	channelCount, err := conv.IntToUint32(p.ChannelCount())
	if err != nil {
		return nil, fmt.Errorf("page: channel count: %w", err)
	}
	rawLen, err := conv.IntToUint32(raw.Len())
	if err != nil {
		return nil, fmt.Errorf("page: payload size: %w", err)
	}

	frame := make([]byte, headerSize+len(payload))
	copy(frame, frameMagic)
	frame[4] = frameVersion
	frame[5] = byte(applied)
	binary.LittleEndian.PutUint32(frame[8:], positionCount)
	binary.LittleEndian.PutUint32(frame[12:], channelCount)
	binary.LittleEndian.PutUint32(frame[16:], rawLen)
	binary.LittleEndian.PutUint32(frame[20:], uint32(len(payload))) //nolint:gosec // payload <= rawLen or compressed
	copy(frame[headerSize:], payload)
	binary.LittleEndian.PutUint32(frame[checksumAt:], frameChecksum(frame[:checksumAt], payload))
	return frame, nil
}

// Write encodes p and writes the frame to w.
func (s *Serde) Write(w io.Writer, p *Page) (int64, error) {
	frame, err := s.Marshal(p)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(frame)
	return int64(n), err
}

type frameHeader struct {
	compression   Compression
	positionCount int
	channelCount  int
	rawLen        int
	payloadLen    int
	checksum      uint32
}

// frameChecksum covers the header fields before the checksum and the payload.
func frameChecksum(header, payload []byte) uint32 {
	return hash.UpdateCRC32C(hash.CRC32C(header[:checksumAt]), payload)
}

// parseHeader validates the header fields against each other before anything
// is allocated from them.
func (s *Serde) parseHeader(h []byte) (frameHeader, error) {
	if string(h[:4]) != frameMagic {
		return frameHeader{}, fmt.Errorf("%w: bad magic %q", ErrCorrupt, h[:4])
	}
	if h[4] != frameVersion {
		return frameHeader{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h[4])
	}
	fh := frameHeader{
		compression: Compression(h[5]),
		checksum:    binary.LittleEndian.Uint32(h[checksumAt:]),
	}
	fields := []*int{&fh.positionCount, &fh.channelCount, &fh.rawLen, &fh.payloadLen}
	for i, field := range fields {
		v, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(h[8+4*i:]))
		if err != nil {
			return frameHeader{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		*field = v
	}
	if fh.compression > CompressionZSTD {
		return frameHeader{}, fmt.Errorf("%w: %d", ErrUnsupportedCompression, h[5])
	}
	if fh.rawLen > s.maxFrameSize {
		return frameHeader{}, fmt.Errorf("%w: payload of %d bytes exceeds limit %d", ErrCorrupt, fh.rawLen, s.maxFrameSize)
	}
	if fh.payloadLen > fh.rawLen {
		return frameHeader{}, fmt.Errorf("%w: stored payload %d bytes exceeds raw %d", ErrCorrupt, fh.payloadLen, fh.rawLen)
	}
	if fh.compression == CompressionNone && fh.payloadLen != fh.rawLen {
		return frameHeader{}, fmt.Errorf("%w: raw payload %d bytes, header says %d", ErrCorrupt, fh.payloadLen, fh.rawLen)
	}
	// Every channel body carries at least a name length and a null flag.
	if fh.channelCount > fh.rawLen/2 {
		return frameHeader{}, fmt.Errorf("%w: %d channels in %d bytes", ErrCorrupt, fh.channelCount, fh.rawLen)
	}
	return fh, nil
}

// Unmarshal decodes a frame produced by Marshal. The caller owns the page.
func (s *Serde) Unmarshal(frame []byte) (*Page, error) {
	if len(frame) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(frame))
	}
	fh, err := s.parseHeader(frame[:headerSize])
	if err != nil {
		return nil, err
	}
	if len(frame)-headerSize != fh.payloadLen {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrCorrupt, len(frame)-headerSize, fh.payloadLen)
	}
	return s.decode(frame[:headerSize], fh, frame[headerSize:])
}

// Read reads and decodes one frame from r.
func (s *Serde) Read(r io.Reader) (*Page, error) {
	return s.ReadFrame(r, -1)
}

// ReadFrame reads and decodes one frame of frameSize bytes from r, as stored
// in a blob. A negative frameSize reads a frame of unknown length.
func (s *Serde) ReadFrame(r io.Reader, frameSize int64) (*Page, error) {
	if frameSize >= 0 && frameSize < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, frameSize)
	}
	var h [headerSize]byte
	if _, err := io.ReadFull(r, h[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated header", ErrCorrupt)
		}
		return nil, err
	}
	fh, err := s.parseHeader(h[:])
	if err != nil {
		return nil, err
	}
	if frameSize >= 0 && frameSize-headerSize != int64(fh.payloadLen) {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrCorrupt, frameSize-headerSize, fh.payloadLen)
	}
	// Grow with the bytes actually read so a lying header cannot force a
	// large allocation.
	payload, err := io.ReadAll(io.LimitReader(r, int64(fh.payloadLen)))
	if err != nil {
		return nil, err
	}
	if len(payload) != fh.payloadLen {
		return nil, fmt.Errorf("%w: truncated payload: %d of %d bytes", ErrCorrupt, len(payload), fh.payloadLen)
	}
	return s.decode(h[:], fh, payload)
}

func (s *Serde) decode(header []byte, fh frameHeader, payload []byte) (*Page, error) {
	if got := frameChecksum(header, payload); got != fh.checksum {
		return nil, fmt.Errorf("%w: got %08x, want %08x", ErrChecksumMismatch, got, fh.checksum)
	}
	raw, err := decompress(payload, fh.compression, fh.rawLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %s payload: %w", ErrCorrupt, fh.compression, err)
	}

	scope := offheap.NewScope()
	defer scope.Close()

	r := bytes.NewReader(raw)
	var blocks []block.Untyped
	for i := range fh.channelCount {
		b, err := serde.ReadBlock(r, s.alloc)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("%w: channel %d: %w", ErrCorrupt, i, err)
		}
		blocks = append(blocks, offheap.Track(scope, b))
		if b.PositionCount() != fh.positionCount {
			return nil, fmt.Errorf("%w: channel %d has %d positions, header says %d",
				ErrCorrupt, i, b.PositionCount(), fh.positionCount)
		}
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, r.Len())
	}
	scope.Disarm()
	return newPage(fh.positionCount, blocks), nil
}
