package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Eugenepoly/market-agent/pkg/types"
)

// apiError is the error envelope the server returns for non-2xx responses.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func postWorkflow(path string, body any) (*types.WorkflowContext, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("request failed (is the server running?): %w", err)
	}
	return decodeWorkflow(resp)
}

func getWorkflow(path string) (*types.WorkflowContext, error) {
	resp, err := http.Get(serverURL + path)
	if err != nil {
		return nil, fmt.Errorf("request failed (is the server running?): %w", err)
	}
	return decodeWorkflow(resp)
}

func decodeWorkflow(resp *http.Response) (*types.WorkflowContext, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, data)
	}
	var wf types.WorkflowContext
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("unexpected response: %w", err)
	}
	return &wf, nil
}

func decodeError(status int, data []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("%s (%d): %s", apiErr.Error, status, apiErr.Message)
	}
	return fmt.Errorf("server returned %d", status)
}

// printWorkflow writes a run as indented JSON to stdout.
func printWorkflow(wf *types.WorkflowContext) error {
	out, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
