// Package protocol implements the daemon's length-prefixed binary
// framing: `u32 length | u8 message-type | payload`, little-endian,
// strings as `u32 len | utf8`, options prefixed with a boolean, 256 MB
// message cap. The message-type enum mirrors a RequestMessage/
// ResponseMessage split by method, adapted from JSON-RPC text framing
// to this binary one; requests and responses are correlated with a
// google/uuid the way request/response pairs elsewhere get correlated
// by id.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// MaxMessageSize caps a single frame's payload, per .
const MaxMessageSize = 256 * 1024 * 1024

// MessageType is the closed enum names.
type MessageType uint8

const (
	MessageAnalyzeRequest MessageType = iota
	MessageAnalyzeResponse
	MessageStatus
	MessageShutdown
	MessageGetIssues
	MessageGotoDefinition
	MessageFindReferences
	MessageFileChanged
)

func (t MessageType) String() string {
	switch t {
	case MessageAnalyzeRequest:
		return "AnalyzeRequest"
	case MessageAnalyzeResponse:
		return "AnalyzeResponse"
	case MessageStatus:
		return "Status"
	case MessageShutdown:
		return "Shutdown"
	case MessageGetIssues:
		return "GetIssues"
	case MessageGotoDefinition:
		return "GotoDefinition"
	case MessageFindReferences:
		return "FindReferences"
	case MessageFileChanged:
		return "FileChanged"
	default:
		return fmt.Sprintf("MessageType(%d)", uint8(t))
	}
}

// Frame is one decoded message: a type tag plus its raw payload bytes.
// Callers decode the payload further with Reader/Writer per message
// type (e.g. AnalyzeRequest's RequestID + file list).
type Frame struct {
	Type MessageType
	Payload []byte
}

// WriteFrame writes length|type|payload to w.
func WriteFrame(w io.Writer, f Frame) error {
	if len(f.Payload) > MaxMessageSize {
		return fmt.Errorf("protocol: payload of %d bytes exceeds max message size %d", len(f.Payload), MaxMessageSize)
	}
	// length counts the type byte plus the payload, so a reader can
	// allocate exactly once before reading either.
	length := uint32(1 + len(f.Payload))
	var header [5]byte
	binary.LittleEndian.PutUint32(header[0:4], length)
	header[4] = byte(f.Type)
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("protocol: writing frame header: %w", err)
	}
	if _, err := w.Write(f.Payload); err != nil {
		return fmt.Errorf("protocol: writing frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length|type|payload unit from r.
func ReadFrame(r io.Reader) (Frame, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return Frame{}, err
	}
	length := binary.LittleEndian.Uint32(lenBuf[:])
	if length == 0 {
		return Frame{}, fmt.Errorf("protocol: empty frame has no message-type byte")
	}
	if length > MaxMessageSize+1 {
		return Frame{}, fmt.Errorf("protocol: frame of %d bytes exceeds max message size %d", length, MaxMessageSize)
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return Frame{}, fmt.Errorf("protocol: reading frame body: %w", err)
	}
	return Frame{Type: MessageType(body[0]), Payload: body[1:]}, nil
}

// Writer accumulates a payload's fields in the u32-len-prefixed-string /
// boolean-prefixed-option encoding specifies.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) PutUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) PutUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) PutString(s string) {
	w.PutUint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *Writer) PutBool(b bool) {
	if b {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// PutOption writes a present flag and, if present, the value via put.
func PutOption[T any](w *Writer, value *T, put func(*Writer, T)) {
	w.PutBool(value != nil)
	if value != nil {
		put(w, *value)
	}
}

func (w *Writer) PutUUID(id uuid.UUID) {
	w.buf = append(w.buf, id[:]...)
}

// Reader walks a payload in the same field order Writer produced it.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(payload []byte) *Reader { return &Reader{buf: payload} }

func (r *Reader) remaining() int { return len(r.buf) - r.pos }

func (r *Reader) GetUint32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *Reader) GetUint64() (uint64, error) {
	if r.remaining() < 8 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

func (r *Reader) GetString() (string, error) {
	n, err := r.GetUint32()
	if err != nil {
		return "", err
	}
	if r.remaining() < int(n) {
		return "", io.ErrUnexpectedEOF
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

func (r *Reader) GetBool() (bool, error) {
	if r.remaining() < 1 {
		return false, io.ErrUnexpectedEOF
	}
	v := r.buf[r.pos] != 0
	r.pos++
	return v, nil
}

// GetOption reads a presence flag and, if set, the value via get.
func GetOption[T any](r *Reader, get func(*Reader) (T, error)) (*T, error) {
	present, err := r.GetBool()
	if err != nil || !present {
		return nil, err
	}
	v, err := get(r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Reader) GetUUID() (uuid.UUID, error) {
	if r.remaining() < 16 {
		return uuid.UUID{}, io.ErrUnexpectedEOF
	}
	var id uuid.UUID
	copy(id[:], r.buf[r.pos:r.pos+16])
	r.pos += 16
	return id, nil
}

// AnalyzeRequest is the payload for MessageAnalyzeRequest: the set of
// file paths to (re)analyze, correlated to its eventual response by
// RequestID.
type AnalyzeRequest struct {
	RequestID uuid.UUID
	FilePaths []string
}

func (req AnalyzeRequest) Encode() Frame {
	w := NewWriter()
	w.PutUUID(req.RequestID)
	w.PutUint32(uint32(len(req.FilePaths)))
	for _, p := range req.FilePaths {
		w.PutString(p)
	}
	return Frame{Type: MessageAnalyzeRequest, Payload: w.Bytes()}
}

func DecodeAnalyzeRequest(payload []byte) (AnalyzeRequest, error) {
	r := NewReader(payload)
	id, err := r.GetUUID()
	if err != nil {
		return AnalyzeRequest{}, err
	}
	count, err := r.GetUint32()
	if err != nil {
		return AnalyzeRequest{}, err
	}
	paths := make([]string, count)
	for i := range paths {
		paths[i], err = r.GetString()
		if err != nil {
			return AnalyzeRequest{}, err
		}
	}
	return AnalyzeRequest{RequestID: id, FilePaths: paths}, nil
}

// AnalyzeResponse carries the request it answers plus a flattened issue
// summary (kind name, message, file, line, column per issue).
type AnalyzeResponse struct {
	RequestID uuid.UUID
	Issues []IssueSummary
}

type IssueSummary struct {
	Kind string
	Message string
	File string
	Line int
	Column int
}

func (resp AnalyzeResponse) Encode() Frame {
	w := NewWriter()
	w.PutUUID(resp.RequestID)
	w.PutUint32(uint32(len(resp.Issues)))
	for _, iss := range resp.Issues {
		w.PutString(iss.Kind)
		w.PutString(iss.Message)
		w.PutString(iss.File)
		w.PutUint32(uint32(iss.Line))
		w.PutUint32(uint32(iss.Column))
	}
	return Frame{Type: MessageAnalyzeResponse, Payload: w.Bytes()}
}

func DecodeAnalyzeResponse(payload []byte) (AnalyzeResponse, error) {
	r := NewReader(payload)
	id, err := r.GetUUID()
	if err != nil {
		return AnalyzeResponse{}, err
	}
	count, err := r.GetUint32()
	if err != nil {
		return AnalyzeResponse{}, err
	}
	issues := make([]IssueSummary, count)
	for i := range issues {
		var iss IssueSummary
		if iss.Kind, err = r.GetString(); err != nil {
			return AnalyzeResponse{}, err
		}
		if iss.Message, err = r.GetString(); err != nil {
			return AnalyzeResponse{}, err
		}
		if iss.File, err = r.GetString(); err != nil {
			return AnalyzeResponse{}, err
		}
		line, err := r.GetUint32()
		if err != nil {
			return AnalyzeResponse{}, err
		}
		col, err := r.GetUint32()
		if err != nil {
			return AnalyzeResponse{}, err
		}
		iss.Line, iss.Column = int(line), int(col)
		issues[i] = iss
	}
	return AnalyzeResponse{RequestID: id, Issues: issues}, nil
}
