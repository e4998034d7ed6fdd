package protocol

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := Frame{Type: MessageStatus, Payload: []byte("hello")}
	require.NoError(t, WriteFrame(&buf, in))

	out, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestAnalyzeRequestRoundTrip(t *testing.T) {
	req := AnalyzeRequest{RequestID: uuid.New(), FilePaths: []string{"a.php", "b.php"}}
	frame := req.Encode()
	assert.Equal(t, MessageAnalyzeRequest, frame.Type)

	got, err := DecodeAnalyzeRequest(frame.Payload)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestAnalyzeResponseRoundTrip(t *testing.T) {
	resp := AnalyzeResponse{
		RequestID: uuid.New(),
		Issues: []IssueSummary{
			{Kind: "InvalidReturnStatement", Message: "bad", File: "a.php", Line: 4, Column: 2},
		},
	}
	frame := resp.Encode()
	got, err := DecodeAnalyzeResponse(frame.Payload)
	require.NoError(t, err)
	assert.Equal(t, resp, got)
}

func TestFrameRejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrame(&buf, Frame{Type: MessageStatus, Payload: make([]byte, MaxMessageSize+1)})
	assert.Error(t, err)
}

func TestPutGetOptionRoundTrip(t *testing.T) {
	w := NewWriter()
	val := "present"
	PutOption(w, &val, (*Writer).PutString)
	PutOption[string](w, nil, (*Writer).PutString)

	r := NewReader(w.Bytes())
	got1, err := GetOption(r, (*Reader).GetString)
	require.NoError(t, err)
	require.NotNil(t, got1)
	assert.Equal(t, "present", *got1)

	got2, err := GetOption(r, (*Reader).GetString)
	require.NoError(t, err)
	assert.Nil(t, got2)
}
