// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/hatebu-clipper/internal/container"
)

const imageMarkitdown = "markitdown:latest"

// markitdownTimeout bounds one container run.
const markitdownTimeout = 2 * time.Minute

// MarkitdownConverter pipes content through the markitdown container image
// using the injected docker or podman runtime.
type MarkitdownConverter struct {
	runtime container.Runtime
}

// NewMarkitdownConverter verifies that the markitdown image is present in rt.
func NewMarkitdownConverter(rt container.Runtime) (*MarkitdownConverter, error) {
	if err := rt.ImageExists(imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownConverter{runtime: rt}, nil
}

// Convert implements Converter.
func (m *MarkitdownConverter) Convert(content []byte, hint string) (string, error) {
	if isPlainText(hint) {
		return string(content), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), markitdownTimeout)
	defer cancel()

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, imageMarkitdown, bytes.NewReader(content), &out); err != nil {
		return "", fmt.Errorf("converting %s with markitdown: %w", hint, err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("markitdown produced empty output for %s", hint)
	}
	return out.String(), nil
}
