package wakeonlan

import (
	"context"
	"testing"

	"github.com/osbdet/osbdetweb/environment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	env := New().(*WakeOnLanEnvironment)
	require.NoError(t, env.Init(map[string]interface{}{
		"hostname": "osbdet.local",
		"mac":      "00:11:22:33:44:55",
	}))
	assert.Equal(t, "255.255.255.255", env.Config.Broadcast)

	assert.Error(t, New().Init(map[string]interface{}{
		"hostname": "osbdet.local",
		"mac":      "not-a-mac",
	}))
	assert.Error(t, New().Init(map[string]interface{}{
		"hostname":  "osbdet.local",
		"mac":       "00:11:22:33:44:55",
		"broadcast": "everyone",
	}))
}

func TestStopUnsupported(t *testing.T) {
	env := New()
	require.NoError(t, env.Init(map[string]interface{}{
		"hostname": "osbdet.local",
		"mac":      "00:11:22:33:44:55",
	}))

	_, err := env.Stop(context.Background())
	assert.ErrorIs(t, err, environment.ErrUnsupported)
}
