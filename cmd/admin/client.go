package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

type apiClient struct {
	base   string
	author string
	http   *http.Client
}

func newClient(cmd *cli.Command) *apiClient {
	return &apiClient{
		base:   strings.TrimRight(cmd.String(FlagAPI), "/"),
		author: cmd.String(FlagAuthor),
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

type apiError struct {
	Status  string
	Message string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return "request failed: " + e.Status
	}
	return e.Message + " (" + e.Status + ")"
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+"/api/v1"+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.author != "" {
		req.Header.Set("X-Author-Name", c.author)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &apiError{Status: resp.Status, Message: payload.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
