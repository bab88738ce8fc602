package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldReportError(t *testing.T) {
	assert.False(t, shouldReportError(nil))
	assert.False(t, shouldReportError(context.Canceled))

	// errgroup 里的 goroutine 可能包装取消错误后返回
	assert.False(t, shouldReportError(fmt.Errorf("smtp server: %w", context.Canceled)))

	assert.True(t, shouldReportError(errors.New("listen tcp :25: bind: permission denied")))
}
