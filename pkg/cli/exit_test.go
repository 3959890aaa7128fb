package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shouni/gemini-promo-kit/pkg/domain"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", &domain.ValidationError{Message: "Prompt is required"}, ExitValidation},
		{"download", &domain.DownloadError{URL: "https://x/a.png", Err: errors.New("404")}, ExitDownload},
		{"credentials", fmt.Errorf("wrapped: %w", &domain.CredentialsError{Message: "not found"}), ExitCredentials},
		{"generation", &domain.GenerationError{Err: errors.New("quota")}, ExitGeneration},
		{"unknown", errors.New("boom"), ExitGeneration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeFor(tt.err))
		})
	}
}

func TestExitError(t *testing.T) {
	err := exitWithCode(ExitDownload, assert.AnError)
	assert.Equal(t, assert.AnError.Error(), err.Error())
	assert.ErrorIs(t, err, assert.AnError)

	var ee *exitError
	assert.True(t, errors.As(err, &ee))
	assert.Equal(t, ExitDownload, ee.ExitCode())
}
