package container_test

import (
	"testing"

	"github.com/serroba/shortlink/internal/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions() *container.Options {
	return &container.Options{
		Port:          8888,
		CodeLength:    6,
		Storage:       container.StorageMemory,
		RateLimit:     container.StorageMemory,
		SweepInterval: 0,
		CORSOrigins:   "*",
		LogFormat:     "console",
		LogLevel:      "error",
	}
}

func TestOptions_Validate(t *testing.T) {
	require.NoError(t, validOptions().Validate())

	tests := map[string]func(o *container.Options){
		"unknown storage":    func(o *container.Options) { o.Storage = "sqlite" },
		"unknown rate limit": func(o *container.Options) { o.RateLimit = "postgres" },
		"code too short":     func(o *container.Options) { o.CodeLength = 3 },
		"code too long":      func(o *container.Options) { o.CodeLength = 33 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			opts := validOptions()
			mutate(opts)

			assert.ErrorIs(t, opts.Validate(), container.ErrInvalidOption)
		})
	}
}

func TestOptions_PublicBaseURL(t *testing.T) {
	opts := validOptions()
	assert.Equal(t, "http://localhost:8888", opts.PublicBaseURL())

	opts.BaseURL = "https://sho.rt/"
	assert.Equal(t, "https://sho.rt", opts.PublicBaseURL())
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := container.NewLogger(format, "debug")

		require.NoError(t, err, format)
		assert.NotNil(t, logger)
	}

	_, err := container.NewLogger("xml", "info")
	assert.ErrorIs(t, err, container.ErrInvalidOption)

	_, err = container.NewLogger("json", "loud")
	assert.ErrorIs(t, err, container.ErrInvalidOption)
}
