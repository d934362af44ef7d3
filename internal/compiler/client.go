package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os/exec"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/chainsim/internal/config"
	"github.com/Mohsinsiddi/chainsim/internal/logger"
)

// HTTPClient compiles through the compile service (POST /compile).
type HTTPClient struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

// NewHTTPClient returns a client for the service at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		url:    strings.TrimRight(baseURL, "/") + "/compile",
		client: &http.Client{Timeout: config.CompileTimeout},
		log:    logger.Named("compiler"),
	}
}

type compileRequest struct {
	Code string `json:"code" binding:"required"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Compile implements Compiler.
func (c *HTTPClient) Compile(ctx context.Context, source string) (*Output, error) {
	body, err := json.Marshal(compileRequest{Code: source})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("compile request", zap.String("url", c.url), zap.Int("bytes", len(source)))
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("compile service unreachable at %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading compile response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("compile service: %s", e.Error)
		}
		return nil, fmt.Errorf("compile service returned HTTP %d", resp.StatusCode)
	}

	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing compile response: %w", err)
	}
	return &out, nil
}

// Solc compiles with a local solc binary in --standard-json mode.
type Solc struct {
	path string
	log  *zap.Logger
}

// NewSolc returns a compiler running the binary at path ("solc" to use $PATH).
func NewSolc(path string) *Solc {
	if path == "" {
		path = "solc"
	}
	return &Solc{path: path, log: logger.Named("compiler")}
}

// Compile implements Compiler.
func (s *Solc) Compile(ctx context.Context, source string) (*Output, error) {
	input, err := json.Marshal(NewInput(source))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, config.CompileTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.path, "--standard-json")
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.log.Debug("running solc", zap.String("path", s.path))
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("solc not found at %q (install solc or use the compile service)", s.path)
		}
		// solc exits non-zero only on fatal input errors; compile errors come
		// back on stdout with exit status 0.
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("solc: %s", msg)
		}
		return nil, fmt.Errorf("solc: %w", err)
	}

	var out Output
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("parsing solc output: %w", err)
	}
	return &out, nil
}
