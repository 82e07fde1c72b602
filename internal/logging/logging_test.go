package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{name: "production defaults to info", cfg: Config{Environment: EnvironmentProduction}, wantLevel: zapcore.InfoLevel},
		{name: "development defaults to debug", cfg: Config{Environment: EnvironmentDevelopment}, wantLevel: zapcore.DebugLevel},
		{name: "explicit level wins", cfg: Config{Environment: EnvironmentLocal, Level: "warn"}, wantLevel: zapcore.WarnLevel},
		{name: "unknown environment", cfg: Config{Environment: "staging"}, wantErr: true},
		{name: "unknown level", cfg: Config{Environment: EnvironmentProduction, Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}
