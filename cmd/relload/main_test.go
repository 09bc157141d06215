package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidb-orm/internal/config"
)

func TestReportValidation(t *testing.T) {
	tests := []struct {
		name      string
		result    *config.ValidationResult
		expectErr bool
		logged    []string
	}{
		{
			name:   "clean result",
			result: &config.ValidationResult{},
		},
		{
			name: "warnings only",
			result: &config.ValidationResult{
				Warnings: []config.ValidationWarning{{Field: "database.tls.mode", Message: "TLS certificate verification is disabled"}},
			},
			logged: []string{"configuration warning", "database.tls.mode"},
		},
		{
			name: "errors fail",
			result: &config.ValidationResult{
				Errors: []config.ValidationError{{Field: "eager_load.method", Message: `invalid eager load method "lazy"`}},
			},
			expectErr: true,
			logged:    []string{"configuration error", "eager_load.method"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			err := reportValidation(tt.result, logger)
			if tt.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "configuration validation failed")
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.logged {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
