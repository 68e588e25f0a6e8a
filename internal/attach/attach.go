// Package attach describes the inspector endpoint of a launch as a Debug
// Adapter Protocol attach request, so an IDE or DAP client can attach to the
// child without parsing its stderr.
//
// The request is written to a file using DAP base-protocol framing
// (Content-Length header followed by the JSON body).
package attach

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/go-dap"
)

// BuildNodeAttachArgs builds pwa-node attach arguments for an inspector
// listening on host:port.
func BuildNodeAttachArgs(host string, port int) map[string]interface{} {
	if host == "" {
		host = "127.0.0.1"
	}

	return map[string]interface{}{
		"type":       "pwa-node",
		"request":    "attach",
		"address":    host,
		"port":       port,
		"sourceMaps": true,
	}
}

// NewRequest builds a DAP attach request for host:port.
func NewRequest(seq int, host string, port int) (*dap.AttachRequest, error) {
	argsJSON, err := json.Marshal(BuildNodeAttachArgs(host, port))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attach args: %w", err)
	}

	return &dap.AttachRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Seq: seq, Type: "request"},
			Command:         "attach",
		},
		Arguments: argsJSON,
	}, nil
}

// WriteFile writes a framed attach request for host:port to path.
func WriteFile(path, host string, port int) error {
	req, err := NewRequest(1, host, port)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create attach file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := dap.WriteProtocolMessage(w, req); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write attach request: %w", err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to flush attach request: %w", err)
	}

	return f.Close()
}

// ReadFile reads back an attach request written by WriteFile.
func ReadFile(path string) (*dap.AttachRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open attach file: %w", err)
	}
	defer f.Close()

	msg, err := dap.ReadProtocolMessage(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to read attach request: %w", err)
	}

	req, ok := msg.(*dap.AttachRequest)
	if !ok {
		return nil, fmt.Errorf("unexpected message type: %T", msg)
	}
	return req, nil
}

// Args decodes the arguments of an attach request.
func Args(req *dap.AttachRequest) (map[string]interface{}, error) {
	var args map[string]interface{}
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, fmt.Errorf("failed to decode attach args: %w", err)
	}
	return args, nil
}
