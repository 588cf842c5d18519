package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	m := NewManager(Config{})

	assert.Equal(t, 54*time.Second, m.cfg.PingInterval)
	assert.Equal(t, 10*time.Second, m.cfg.WriteWait)
	assert.Equal(t, 60*time.Second, m.cfg.PongWait)
	assert.Equal(t, int64(4096), m.cfg.MaxMessageSize)
}

func TestConfigOverridesKept(t *testing.T) {
	m := NewManager(Config{
		PingInterval:   5 * time.Second,
		WriteWait:      2 * time.Second,
		PongWait:       7 * time.Second,
		MaxMessageSize: 1024,
	})

	assert.Equal(t, 5*time.Second, m.cfg.PingInterval)
	assert.Equal(t, 2*time.Second, m.cfg.WriteWait)
	assert.Equal(t, 7*time.Second, m.cfg.PongWait)
	assert.Equal(t, int64(1024), m.cfg.MaxMessageSize)
}

func TestBroadcastReachesSessions(t *testing.T) {
	m := NewManager(Config{})
	go m.Run()

	s := m.Register(nil, 42)
	require.Eventually(t, func() bool { return m.Count() == 1 }, time.Second, time.Millisecond)

	m.Broadcast([]byte("payload"))

	select {
	case msg := <-s.Send:
		assert.Equal(t, []byte("payload"), msg)
	case <-time.After(time.Second):
		t.Fatal("broadcast never reached the session")
	}
}
