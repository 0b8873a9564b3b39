package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdapterErrorsError(t *testing.T) {
	err := &AdapterErrorsError{Failed: 2, Total: 12}
	assert.Equal(t, "completed with 2 failed evaluation(s) out of 12", err.Error())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitSuccess},
		{"adapter errors", &AdapterErrorsError{Failed: 1, Total: 6}, ExitAdapterErrors},
		{"wrapped adapter errors", fmt.Errorf("suite: %w", &AdapterErrorsError{Failed: 1, Total: 6}), ExitAdapterErrors},
		{"joined adapter errors", errors.Join(&AdapterErrorsError{Failed: 1, Total: 6}, errors.New("more")), ExitAdapterErrors},
		{"regular error", errors.New("config error"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
