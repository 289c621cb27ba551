package components

import (
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/PsycoVenom0/security-relay/src/config"
	"github.com/PsycoVenom0/security-relay/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapFailsWhenPortIsTaken(t *testing.T) {
	taken, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	c := config.Defaults()
	c.Webhook.URL = "http://127.0.0.1:1/hook"
	c.Listener.Port = taken.LocalAddr().(*net.UDPAddr).Port

	err = Bootstrap(&models.Configuration{Config: c}, models.NewCommunication())
	assert.Error(t, err)
}

func TestBootstrapStopsOnCancel(t *testing.T) {
	webhook := newFakeWebhook(t, http.StatusOK)
	c := config.Defaults()
	c.Listener.Port = 0
	c.Webhook.URL = webhook.URL
	c.Camera.URL = workingCamera(t)

	communication := models.NewCommunication()
	done := make(chan error, 1)
	go func() {
		done <- Bootstrap(&models.Configuration{Config: c}, communication)
	}()

	time.Sleep(100 * time.Millisecond)
	(*communication.CancelContext)()

	select {
	case err := <-done:
		assert.NoError(t, err)
		assert.True(t, communication.IsShuttingDown.IsSet())
	case <-time.After(5 * time.Second):
		t.Fatal("bootstrap did not stop")
	}
}
