package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clubsphere/clubsphere/pkg/logger"
)

func TestConfigureLogging(t *testing.T) {
	t.Cleanup(func() { logger.Replace(nil) })

	require.NoError(t, ConfigureLogging(ServerConfig{LogLevel: "debug", LogFormat: "console"}))
	require.True(t, logger.Logger().Core().Enabled(-1))

	require.NoError(t, ConfigureLogging(ServerConfig{}))
	require.False(t, logger.Logger().Core().Enabled(-1))
}
