package preview

import (
	"encoding/binary"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/achilleasa/raylive/input"
)

func dialViewer(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestViewerPage(t *testing.T) {
	srv := NewServer(4, 2, func(input.Event) {})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "<canvas")

	missing, err := http.Get(ts.URL + "/missing")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestNewViewerGetsLastFrameAndStatus(t *testing.T) {
	srv := NewServer(2, 1, func(input.Event) {})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	copy(img.Pix, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, srv.Paint(img))
	srv.SetStatus("Rendered in 5ms (200 FPS)")

	// The surface keeps its own copy of the frame.
	img.Pix[0] = 0xff

	conn := dialViewer(t, ts)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, kind)
	require.Len(t, data, headerSize+8)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, data[headerSize:])

	kind, data, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)
	assert.Equal(t, "Rendered in 5ms (200 FPS)", string(data))
}

func TestBroadcastToConnectedViewer(t *testing.T) {
	srv := NewServer(1, 1, func(input.Event) {})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialViewer(t, ts)
	require.Eventually(t, func() bool { return srv.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.Resize(2, 2))
	require.NoError(t, srv.Paint(image.NewRGBA(image.Rect(0, 0, 2, 2))))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	assert.Len(t, data, headerSize+16)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[4:8]))
}

func TestPaintRejectsMismatchedFrame(t *testing.T) {
	srv := NewServer(4, 2, func(input.Event) {})
	err := srv.Paint(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	assert.EqualError(t, err, "preview: frame is 2x2; surface is 4x2")
}

func TestViewerInputIsPosted(t *testing.T) {
	events := make(chan input.Event, 4)
	srv := NewServer(4, 2, func(ev input.Event) { events <- ev })
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialViewer(t, ts)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"keydown","key":"W"}`)))

	select {
	case ev := <-events:
		assert.Equal(t, input.KeyDown{Key: "w"}, ev)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for input event")
	}
}

func TestDecodeMessage(t *testing.T) {
	type spec struct {
		msg    string
		exp    input.Event
		expErr string
	}
	specs := []spec{
		{`{"type":"keydown","key":"ArrowUp"}`, input.KeyDown{Key: "arrowup"}, ""},
		{`{"type":"keyup","key":"a"}`, input.KeyUp{Key: "a"}, ""},
		{`{"type":"keydown","key":"Tab"}`, input.ToggleMovement{}, ""},
		{`{"type":"keydown","key":"Escape"}`, input.Quit{}, ""},
		{`{"type":"pointermove","x":0.25,"y":0.75}`, input.PointerMove{X: 0.25, Y: 0.75}, ""},
		{`{"type":"pointerdown","x":0.5,"y":0.5}`, input.PointerButton{X: 0.5, Y: 0.5, Pressed: true}, ""},
		{`{"type":"pointerup","x":0.5,"y":0.5}`, input.PointerButton{X: 0.5, Y: 0.5}, ""},
		{`{"type":"pointerleave"}`, input.PointerLeave{}, ""},
		{`{"type":"control","control":"width","value":960}`, input.ControlChange{Control: input.Width, Value: 960}, ""},
		{`{"type":"control","control":"focal_length","value":1.5}`, input.ControlChange{Control: input.FocalLength, Value: 1.5}, ""},
		{`{"type":"control","control":"anti_alias","value":4}`, input.ControlChange{Control: input.AntiAlias, Value: 4}, ""},
		{`{"type":"control","control":"zoom","value":4}`, nil, `unknown control "zoom"`},
		{`{"type":"keydown"}`, nil, "key event without a key"},
		{`{"type":"wheel"}`, nil, `unknown message type "wheel"`},
	}

	for index, s := range specs {
		ev, err := decodeMessage([]byte(s.msg))
		if s.expErr != "" {
			assert.EqualError(t, err, s.expErr, "[spec %d]", index)
			continue
		}
		require.NoError(t, err, "[spec %d]", index)
		assert.Equal(t, s.exp, ev, "[spec %d]", index)
	}

	_, err := decodeMessage([]byte("not json"))
	assert.Error(t, err)
}
