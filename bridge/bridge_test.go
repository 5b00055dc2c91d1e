package bridge

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/achilleasa/raylive/engine"
	"github.com/achilleasa/raylive/scene"
)

func testOptions(transport Transport, policy ResizePolicy) Options {
	cam := scene.DefaultCamera()
	params := engine.ParamsFromCamera(cam, 64)
	params.Workers = 2
	return Options{
		Transport: transport,
		Resize:    policy,
		Params:    params,
	}
}

func awaitMessage(t *testing.T, events <-chan Message) Message {
	t.Helper()
	select {
	case msg, ok := <-events:
		require.True(t, ok, "event channel closed unexpectedly")
		return msg
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for bridge message")
	}
	return Message{}
}

func startBridge(t *testing.T, opts Options) Bridge {
	t.Helper()
	b, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, b.Start(context.Background()))

	msg := awaitMessage(t, b.Events())
	require.Equal(t, MsgReady, msg.Kind, "expected ready handshake; got %s (%v)", msg.Kind, msg.Err)
	return b
}

func request(seq uint64, width int) FrameRequest {
	cam := scene.DefaultCamera()
	return FrameRequest{
		Seq:    seq,
		Width:  width,
		Height: cam.Aspect.Height(width),
		Camera: cam,
	}
}

func TestParseTransport(t *testing.T) {
	type spec struct {
		in     string
		exp    Transport
		expErr bool
	}
	specs := []spec{
		{"", Sync, false},
		{"sync", Sync, false},
		{"Background", Background, false},
		{"worker", Background, false},
		{"carrier-pigeon", Sync, true},
	}
	for index, s := range specs {
		got, err := ParseTransport(s.in)
		if s.expErr {
			assert.Errorf(t, err, "[spec %d]", index)
			continue
		}
		require.NoErrorf(t, err, "[spec %d]", index)
		assert.Equalf(t, s.exp, got, "[spec %d]", index)
	}
}

func TestNewRejectsInvalidWidth(t *testing.T) {
	opts := testOptions(Sync, Reconstruct)
	for _, width := range []int{1, engine.MaxDimension + 1, 1e8} {
		opts.Params.Width = width
		_, err := New(opts)
		assert.ErrorIsf(t, err, engine.ErrInvalidDimensions, "width %d", width)
	}
}

func TestSyncBridgeBeforeStart(t *testing.T) {
	b := NewSync(testOptions(Sync, Reconstruct))
	_, err := b.Issue(request(1, 64))
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = b.Resize(128)
	assert.ErrorIs(t, err, ErrNotReady)

	require.NoError(t, b.Close())
	_, open := <-b.Events()
	assert.False(t, open)
}

func TestSyncBridgeRender(t *testing.T) {
	b := startBridge(t, testOptions(Sync, Reconstruct))
	defer b.Close()

	res, err := b.Issue(request(1, 64))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, uint64(1), res.Seq)
	assert.Equal(t, 36, res.Height)

	pixels, err := res.Bytes()
	require.NoError(t, err)
	assert.Len(t, pixels, 64*36*4)

	// Sequence numbers must increase
	_, err = b.Issue(request(1, 64))
	assert.ErrorIs(t, err, ErrProtocol)

	// Requests must match the engine dimensions
	_, err = b.Issue(request(2, 128))
	assert.ErrorIs(t, err, ErrProtocol)

	assert.ErrorIs(t, b.Start(context.Background()), ErrAlreadyStarted)
	assert.Len(t, b.Stats(), 2)
}

func TestSyncBridgeResizePolicies(t *testing.T) {
	for _, policy := range []ResizePolicy{Reconstruct, InPlace} {
		b := startBridge(t, testOptions(Sync, policy)).(*SyncBridge)

		before := b.eng
		done, err := b.Resize(128)
		require.NoErrorf(t, err, "%s", policy)
		assert.Truef(t, done, "%s", policy)

		if policy == InPlace {
			assert.Same(t, before, b.eng)
		} else {
			assert.NotSame(t, before, b.eng)
		}
		assert.Equal(t, 72, b.eng.Height())

		res, err := b.Issue(request(1, 128))
		require.NoErrorf(t, err, "%s", policy)
		pixels, err := res.Bytes()
		require.NoError(t, err)
		assert.Len(t, pixels, 128*72*4)

		_, err = b.Resize(0)
		assert.ErrorIs(t, err, engine.ErrInvalidDimensions)
		require.NoError(t, b.Close())
	}
}

func TestBackgroundBridgeRespondsInOrder(t *testing.T) {
	b := startBridge(t, testOptions(Background, Reconstruct))

	const numRequests = 12
	responses := 0
	for seq := uint64(1); seq <= numRequests; seq++ {
		res, err := b.Issue(request(seq, 64))
		require.NoError(t, err)
		assert.Nil(t, res)

		// A second request must wait for the response
		_, err = b.Issue(request(seq+100, 64))
		assert.ErrorIs(t, err, ErrRequestInFlight)

		msg := awaitMessage(t, b.Events())
		require.Equalf(t, MsgResponse, msg.Kind, "unexpected message %s (%v)", msg.Kind, msg.Err)
		assert.Equal(t, seq, msg.Result.Seq)
		assert.True(t, msg.Result.Elapsed > 0)

		pixels, err := msg.Result.Bytes()
		require.NoError(t, err)
		assert.Len(t, pixels, 64*36*4)
		responses++
	}
	assert.Equal(t, numRequests, responses)

	require.NoError(t, b.Close())
	_, open := <-b.Events()
	assert.False(t, open)

	_, err := b.Issue(request(numRequests+1, 64))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBackgroundBridgeResizeWhileInFlight(t *testing.T) {
	for _, policy := range []ResizePolicy{Reconstruct, InPlace} {
		b := startBridge(t, testOptions(Background, policy))

		_, err := b.Issue(request(1, 64))
		require.NoError(t, err)
		done, err := b.Resize(128)
		require.NoError(t, err)
		assert.False(t, done)

		// The in-flight frame is answered with the old dimensions first
		msg := awaitMessage(t, b.Events())
		require.Equalf(t, MsgResponse, msg.Kind, "%s", policy)
		assert.Equal(t, 64, msg.Result.Width)
		assert.Len(t, msg.Result.Region, 64*36*4)

		msg = awaitMessage(t, b.Events())
		require.Equalf(t, MsgResized, msg.Kind, "%s", policy)
		assert.Equal(t, 128, msg.Width)
		assert.Equal(t, 72, msg.Height)

		_, err = b.Issue(request(2, 64))
		assert.ErrorIs(t, err, ErrProtocol)

		_, err = b.Issue(request(3, 128))
		require.NoError(t, err)
		msg = awaitMessage(t, b.Events())
		require.Equal(t, MsgResponse, msg.Kind)
		pixels, err := msg.Result.Bytes()
		require.NoError(t, err)
		assert.Len(t, pixels, 128*72*4)

		require.NoError(t, b.Close())
	}
}

func TestBackgroundBridgeRejectsOversizedResize(t *testing.T) {
	b := startBridge(t, testOptions(Background, Reconstruct))

	for _, width := range []int{0, engine.MaxDimension + 1, 1e8} {
		done, err := b.Resize(width)
		assert.ErrorIsf(t, err, engine.ErrInvalidDimensions, "width %d", width)
		assert.False(t, done)
	}

	// The region is untouched so requests for the current size still work
	_, err := b.Issue(request(1, 64))
	require.NoError(t, err)
	msg := awaitMessage(t, b.Events())
	require.Equal(t, MsgResponse, msg.Kind)
	assert.Len(t, msg.Result.Region, 64*36*4)

	require.NoError(t, b.Close())
}

func TestBackgroundBridgeNotReady(t *testing.T) {
	b := NewBackground(testOptions(Background, Reconstruct))
	_, err := b.Issue(request(1, 64))
	assert.ErrorIs(t, err, ErrNotReady)
	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Start(context.Background()), ErrClosed)
}

func TestBackgroundBridgeProtocolChecks(t *testing.T) {
	type spec struct {
		ready      bool
		inFlight   bool
		pendingSeq uint64
		msg        Message
		expKind    MessageKind
	}
	specs := []spec{
		{false, false, 0, Message{Kind: MsgReady}, MsgReady},
		{true, false, 0, Message{Kind: MsgReady}, MsgFault},
		{true, true, 3, Message{Kind: MsgResponse, Result: &FrameResult{Seq: 3}}, MsgResponse},
		{true, true, 3, Message{Kind: MsgResponse, Result: &FrameResult{Seq: 2}}, MsgFault},
		{true, false, 3, Message{Kind: MsgResponse, Result: &FrameResult{Seq: 3}}, MsgFault},
		{true, false, 0, Message{Kind: MsgResized, Width: 128, Height: 72}, MsgResized},
	}

	for index, s := range specs {
		b := NewBackground(testOptions(Background, Reconstruct))
		b.ready, b.inFlight, b.pendingSeq = s.ready, s.inFlight, s.pendingSeq

		got := b.accept(s.msg)
		assert.Equalf(t, s.expKind, got.Kind, "[spec %d]", index)
		if s.expKind == MsgFault {
			assert.ErrorIsf(t, got.Err, ErrProtocol, "[spec %d]", index)
			assert.Truef(t, b.faulted, "[spec %d]", index)
		}
		if s.expKind == MsgResponse {
			assert.Falsef(t, b.inFlight, "[spec %d]", index)
		}
	}
}

func TestFrameResultBytes(t *testing.T) {
	res := &FrameResult{
		Pixels:  engine.PixelData{Offset: 4, Length: 8},
		Region:  make([]byte, 12),
		Elapsed: 1500 * time.Microsecond,
	}
	pixels, err := res.Bytes()
	require.NoError(t, err)
	assert.Len(t, pixels, 8)
	assert.InDelta(t, 1.5, res.ElapsedMs(), 1e-9)

	res.Pixels.Length = 9
	_, err = res.Bytes()
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestBridgesDoNotExposeLocking(t *testing.T) {
	for _, b := range []Bridge{NewSync(testOptions(Sync, Reconstruct)), NewBackground(testOptions(Background, Reconstruct))} {
		typ := reflect.TypeOf(b)
		for _, name := range []string{"Lock", "Unlock", "TryLock"} {
			_, found := typ.MethodByName(name)
			assert.Falsef(t, found, "%s exposes %s", typ, name)
		}
		require.NoError(t, b.Close())
	}
}
