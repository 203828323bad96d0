package redfish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBMC struct {
	mu         sync.Mutex
	powerState PowerState
	resetCode  int
	resets     []ResetType
}

func (b *fakeBMC) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if user, pass, ok := r.BasicAuth(); !ok || user != "admin" || pass != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/redfish/v1/Systems/1/":
		json.NewEncoder(w).Encode(powerStatus{PowerState: b.powerState})
	case r.Method == http.MethodPost && r.URL.Path == "/redfish/v1/Systems/1/Actions/ComputerSystem.Reset/":
		var body map[string]ResetType
		json.NewDecoder(r.Body).Decode(&body)
		b.resets = append(b.resets, body["ResetType"])
		if b.resetCode != 0 {
			w.WriteHeader(b.resetCode)
			w.Write([]byte("reset refused"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestEnvironment(t *testing.T, bmc *fakeBMC, graceful bool) *RedfishEnvironment {
	t.Helper()
	srv := httptest.NewServer(bmc)
	t.Cleanup(srv.Close)

	env := New().(*RedfishEnvironment)
	require.NoError(t, env.Init(map[string]interface{}{
		"hostname": "127.0.0.1",
		"url":      srv.URL,
		"username": "admin",
		"password": "secret",
		"graceful": graceful,
	}))
	return env
}

func TestInitValidation(t *testing.T) {
	err := New().Init(map[string]interface{}{"hostname": "osbdet"})
	assert.Error(t, err)
}

func TestStopPushesPowerButton(t *testing.T) {
	bmc := &fakeBMC{powerState: PowerStateOn}
	env := newTestEnvironment(t, bmc, false)

	result, err := env.Stop(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, []ResetType{ResetPushPowerButton}, bmc.resets)
}

func TestStopGraceful(t *testing.T) {
	bmc := &fakeBMC{powerState: PowerStateOn}
	env := newTestEnvironment(t, bmc, true)

	_, err := env.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []ResetType{ResetGracefulShutdown}, bmc.resets)
}

func TestStopAlreadyOff(t *testing.T) {
	bmc := &fakeBMC{powerState: PowerStateOff}
	env := newTestEnvironment(t, bmc, false)

	result, err := env.Stop(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, "host already Off", result.Output)
	assert.Empty(t, bmc.resets)
}

func TestStopRefused(t *testing.T) {
	bmc := &fakeBMC{powerState: PowerStateOn, resetCode: http.StatusForbidden}
	env := newTestEnvironment(t, bmc, false)

	result, err := env.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Status)
	assert.Contains(t, result.Output, "reset refused")
}

func TestStart(t *testing.T) {
	bmc := &fakeBMC{powerState: PowerStateOff}
	env := newTestEnvironment(t, bmc, false)

	result, err := env.Start(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, []ResetType{ResetOn}, bmc.resets)
}

func TestPowerStateUnauthorized(t *testing.T) {
	srv := httptest.NewServer(&fakeBMC{powerState: PowerStateOn})
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, "1", "admin", "wrong", false)
	require.NoError(t, err)

	state, err := client.PowerState(context.Background())
	assert.Error(t, err)
	assert.Equal(t, PowerStateUnknown, state)
}

func TestNewClientDefaultsToHTTPS(t *testing.T) {
	client, err := NewClient("bmc.osbdet.local", "1", "admin", "secret", true)
	require.NoError(t, err)
	assert.Equal(t, "https://bmc.osbdet.local/redfish/v1/", client.url.String())
}
