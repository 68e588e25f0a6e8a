package attach

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-dap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNodeAttachArgs(t *testing.T) {
	args := BuildNodeAttachArgs("", 9230)

	assert.Equal(t, "pwa-node", args["type"])
	assert.Equal(t, "attach", args["request"])
	assert.Equal(t, "127.0.0.1", args["address"])
	assert.Equal(t, 9230, args["port"])
}

// TestWriteFile_ReadFile verifies that the attach file holds a framed DAP
// attach request for the chosen endpoint.
func TestWriteFile_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attach.dap")
	require.NoError(t, WriteFile(path, "127.0.0.1", 9231))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("Content-Length: ")))

	req, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "attach", req.Command)
	assert.Equal(t, 1, req.Seq)

	args, err := Args(req)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", args["address"])
	// JSON numbers decode as float64
	assert.Equal(t, float64(9231), args["port"])
}

// TestReadFile_WrongMessage verifies that a framed message other than an
// attach request is rejected.
func TestReadFile_WrongMessage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launch.dap")

	var buf bytes.Buffer
	require.NoError(t, dap.WriteProtocolMessage(&buf, &dap.InitializeRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Seq: 1, Type: "request"},
			Command:         "initialize",
		},
	}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err := ReadFile(path)
	assert.ErrorContains(t, err, "unexpected message type")
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
