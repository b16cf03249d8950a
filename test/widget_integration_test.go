// test/widget_integration_test.go
package widget_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffaiyaz23/querywidget/internal/backend"
	"github.com/ffaiyaz23/querywidget/internal/console"
	"github.com/ffaiyaz23/querywidget/internal/logging"
	"github.com/ffaiyaz23/querywidget/internal/widget"
)

type lastText struct {
	mu   sync.Mutex
	text string
}

func (d *lastText) Show(_ widget.State, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = text
}

func (d *lastText) get() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

func startStub(t *testing.T, mode string) *backend.Client {
	t.Helper()
	t.Setenv("STUB_MODE", mode)

	var output bytes.Buffer
	server, addr, err := backend.StartStubServer("127.0.0.1:0", logging.Test(&output).Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })

	return backend.NewClient("http://"+addr+"/query/", 2*time.Second)
}

func TestStubBackend_JSON(t *testing.T) {
	client := startStub(t, backend.StubModeJSON)
	display := &lastText{}
	w := widget.New(client, display, nil)

	done := w.HandleKey(context.Background(), widget.EnterKey, "  what is a/b? ")
	require.NoError(t, <-done)
	assert.Equal(t, "Query: what is a/b?\n\nResponse:\nEcho: what is a/b?", display.get())
}

func TestStubBackend_Error(t *testing.T) {
	client := startStub(t, backend.StubModeError)
	display := &lastText{}

	err := widget.New(client, display, nil).Submit(context.Background(), "cats")
	require.Error(t, err)
	assert.Equal(t, "Error: HTTP error! Status: 500", display.get())
}

func TestStubBackend_Garbage(t *testing.T) {
	client := startStub(t, backend.StubModeGarbage)
	display := &lastText{}

	err := widget.New(client, display, nil).Submit(context.Background(), "cats")
	require.Error(t, err)
	assert.Equal(t, "Error: invalid character 'h' in literal true (expecting 'r')", display.get())
}

func TestStubBackend_Console(t *testing.T) {
	client := startStub(t, backend.StubModeJSON)

	var out bytes.Buffer
	require.NoError(t, console.Run(context.Background(), client, strings.NewReader("\nhello\n"), &out))
	assert.Equal(t, "Please enter a query.\nLoading...\nQuery: hello\n\nResponse:\nEcho: hello\n", out.String())
}
