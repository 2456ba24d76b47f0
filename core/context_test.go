package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldSuppressHeader(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want bool
	}{
		{"background", context.Background(), false},
		{"suppressed", WithSuppressHeader(context.Background()), true},
		{"wrong type", context.WithValue(context.Background(), suppressHeaderKey, "yes"), false},
		{"explicit false", context.WithValue(context.Background(), suppressHeaderKey, false), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldSuppressHeader(tt.ctx))
		})
	}
}

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			assert.True(t, shouldSuppressHeader(ctx), "Goroutine %d: shouldSuppressHeader should be true", id)
		}(i)
	}
	wg.Wait()
}

func TestContextInheritance(t *testing.T) {
	parent := WithSuppressHeader(context.Background())
	child, cancel := context.WithCancel(parent)
	defer cancel()

	assert.True(t, shouldSuppressHeader(child))
}
