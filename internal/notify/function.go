package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FunctionInvoker posts the confirmation as JSON to a remote email function.
type FunctionInvoker struct {
	url    string
	key    string
	client *http.Client
}

func NewFunctionInvoker(url, key string, client *http.Client) *FunctionInvoker {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &FunctionInvoker{url: url, key: key, client: client}
}

func (f *FunctionInvoker) SendConfirmation(ctx context.Context, c Confirmation) error {
	body, err := json.Marshal(c)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if f.key != "" {
		req.Header.Set("Authorization", "Bearer "+f.key)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("email function: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email function: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
