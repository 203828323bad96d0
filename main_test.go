package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/osbdet/osbdetweb/environment/command"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0o600))
	return filePath
}

func TestParseYAMLFile(t *testing.T) {
	filePath := writeConfig(t, `
listen: ":8080"
username: osbdet
password: osbdet123$
images: /opt/osbdetweb/images
environment:
  stop: [sudo, poweroff]
  timeout: 10s
discord:
  bot-token: token
  guild-id: "42"
`)

	config, err := parseYAMLFile(filePath)
	require.NoError(t, err)
	require.NoError(t, validateConfig(config))

	assert.Equal(t, ":8080", config.Listen)
	assert.Equal(t, "osbdet", config.Username)
	assert.Equal(t, "/opt/osbdetweb/images", config.Images)
	require.NotNil(t, config.Discord)
	assert.Equal(t, "token", config.Discord.BotToken)
	assert.Equal(t, "42", config.Discord.GuildId)
}

func TestValidateConfig(t *testing.T) {
	config := &Config{}
	require.NoError(t, validateConfig(config))
	assert.Equal(t, ":3000", config.Listen)

	assert.Error(t, validateConfig(&Config{Username: "osbdet"}))
	assert.Error(t, validateConfig(&Config{Password: "osbdet123$"}))
	assert.Error(t, validateConfig(&Config{Discord: &DiscordBotConfig{}}))
}

func TestParseYAMLFileMissing(t *testing.T) {
	_, err := parseYAMLFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewEnvironment(t *testing.T) {
	config, err := parseYAMLFile(writeConfig(t, `
environment:
  stop: [sudo, poweroff]
`))
	require.NoError(t, err)

	env, err := newEnvironment(config, "command")
	require.NoError(t, err)
	require.IsType(t, &command.CommandEnvironment{}, env)
	assert.Equal(t, []string{"sudo", "poweroff"}, env.(*command.CommandEnvironment).Config.Stop)

	_, err = newEnvironment(config, "ipmi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available backends: command, redfish, wol")

	_, err = newEnvironment(&Config{}, "command")
	assert.Error(t, err)
}
