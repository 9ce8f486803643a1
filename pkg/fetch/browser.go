package fetch

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Renderer loads a URL in a real browser engine and returns the rendered
// document. Implementations are used as a fallback for endpoints that gate
// plain HTTP clients behind JavaScript challenges.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// ChromeRenderer renders pages by shelling out to a headless Chromium
// binary and capturing the serialized DOM.
type ChromeRenderer struct {
	// Binary is the Chromium executable. Defaults to "chromium" when empty.
	Binary string
}

// Render runs the browser with --dump-dom and returns its stdout. The
// context bounds the whole browser lifetime; callers should pass a deadline.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	bin := r.Binary
	if bin == "" {
		bin = "chromium"
	}
	cmd := exec.CommandContext(ctx, bin,
		"--headless=new",
		"--disable-gpu",
		"--no-sandbox",
		"--dump-dom",
		url,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("browser render timed out: %w", ctx.Err())
		}
		return "", fmt.Errorf("browser render failed: %w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}
