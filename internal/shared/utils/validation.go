package utils

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Document limits
const (
	MaxDocumentSize  = 32 * 1024 * 1024 // 32MB - snapshot upload limit
	MaxDocumentDepth = 64               // nesting limit for imported trees
	MaxMessageSize   = 1024 * 1024      // 1MB - single WebSocket message
)

// DocumentValidator bounds the size and nesting of JSON documents before
// they reach the state tree.
type DocumentValidator struct {
	maxSize  int
	maxDepth int
}

// NewDocumentValidator creates a validator with the given limits
func NewDocumentValidator(maxSize, maxDepth int) *DocumentValidator {
	return &DocumentValidator{maxSize: maxSize, maxDepth: maxDepth}
}

// DefaultDocumentValidator returns a validator with the snapshot limits
func DefaultDocumentValidator() *DocumentValidator {
	return NewDocumentValidator(MaxDocumentSize, MaxDocumentDepth)
}

// ValidateSize checks if the data size is within limits
func (v *DocumentValidator) ValidateSize(data []byte) error {
	if size := len(data); size > v.maxSize {
		return fmt.Errorf("document size %d bytes exceeds maximum %d bytes", size, v.maxSize)
	}
	return nil
}

// Decode checks size, parses data and checks nesting depth.
func (v *DocumentValidator) Decode(data []byte) (any, error) {
	if err := v.ValidateSize(data); err != nil {
		return nil, err
	}

	var doc any
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if err := ValidateDepth(doc, v.maxDepth); err != nil {
		return nil, err
	}
	return doc, nil
}

// ValidateDepth checks if nesting depth is within limits
func ValidateDepth(data any, maxDepth int) error {
	return checkDepth(data, 0, maxDepth)
}

func checkDepth(data any, currentDepth int, maxDepth int) error {
	if currentDepth > maxDepth {
		return fmt.Errorf("nesting depth %d exceeds maximum %d", currentDepth, maxDepth)
	}

	switch v := data.(type) {
	case map[string]any:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	case []any:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	}

	return nil
}
