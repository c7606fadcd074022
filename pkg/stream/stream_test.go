package stream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lxzan/gws"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nakula/internal/ws"
	"nakula/pkg/core"
)

// newTestStream builds a stream without a live connection. ReadMessage only
// touches the frame and done channels, so the tests drive those directly.
func newTestStream(channel Channel) *Stream {
	s := &Stream{
		channel:    channel,
		state:      &ws.State{},
		logger:     zerolog.Nop(),
		bufferSize: defaultBufferSize,
		idleWindow: defaultIdleWindow,
		connected:  make(chan struct{}),
		done:       make(chan struct{}),
	}
	s.frames = make(chan []byte, s.bufferSize)
	s.state.Store(ws.StateOpen)
	return s
}

func TestStream_ReadMessage_DeliversInOrder(t *testing.T) {
	s := newTestStream(Trade("BNBBTC"))
	s.frames <- []byte(`{"e":"trade","p":"1"}`)
	s.frames <- []byte(`{"e":"trade","p":"2"}`)
	s.frames <- []byte(`{"e":"trade","p":"3"}`)
	close(s.done)

	ctx := context.Background()
	for _, want := range []string{`{"e":"trade","p":"1"}`, `{"e":"trade","p":"2"}`, `{"e":"trade","p":"3"}`} {
		msg, err := s.ReadMessage(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, msg.Text())
		assert.Equal(t, "bnbbtc@trade", msg.Stream)
	}

	// The fourth pull reports end of stream, immediately and forever after.
	_, err := s.ReadMessage(ctx)
	assert.ErrorIs(t, err, io.EOF)
	_, err = s.ReadMessage(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestStream_ReadMessage_MalformedFrameIsNotTerminal(t *testing.T) {
	s := newTestStream(Trade("BNBBTC"))
	s.frames <- []byte("not json")
	s.frames <- []byte(`{"e":"trade"}`)

	ctx := context.Background()
	_, err := s.ReadMessage(ctx)
	assert.True(t, core.IsDecodeError(err))

	msg, err := s.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"e":"trade"}`, msg.Text())
}

func TestStream_ReadMessage_FailureIsTerminal(t *testing.T) {
	s := newTestStream(Trade("BNBBTC"))
	s.closeErr = &core.StreamError{Err: errors.New("connection reset")}
	s.state.Store(ws.StateFailed)
	close(s.done)

	_, err := s.ReadMessage(context.Background())
	var streamErr *core.StreamError
	assert.ErrorAs(t, err, &streamErr)
}

func TestStream_ReadMessage_ContextCancel(t *testing.T) {
	s := newTestStream(Trade("BNBBTC"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.ReadMessage(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStream_Decode_EnvelopeUnwrap(t *testing.T) {
	s := newTestStream(Combined(Trade("BNBBTC"), Ticker("ETHBTC")))

	msg, err := s.decode([]byte(`{"stream":"ethbtc@ticker","data":{"e":"24hrTicker"}}`))
	require.NoError(t, err)
	assert.Equal(t, "ethbtc@ticker", msg.Stream)
	assert.Equal(t, `{"e":"24hrTicker"}`, msg.Text())
}

func TestStream_Decode_BareFrameUsesChannelName(t *testing.T) {
	s := newTestStream(Trade("BNBBTC"))

	msg, err := s.decode([]byte(`{"e":"trade","s":"BNBBTC"}`))
	require.NoError(t, err)
	assert.Equal(t, "bnbbtc@trade", msg.Stream)
}

func TestStream_Messages_StopsOnEOF(t *testing.T) {
	s := newTestStream(Trade("BNBBTC"))
	s.frames <- []byte(`{"p":"1"}`)
	s.frames <- []byte("garbage")
	s.frames <- []byte(`{"p":"2"}`)
	close(s.done)

	var got []string
	var errs int
	for msg, err := range s.Messages(context.Background()) {
		if err != nil {
			errs++
			continue
		}
		got = append(got, msg.Text())
	}

	assert.Equal(t, []string{`{"p":"1"}`, `{"p":"2"}`}, got)
	assert.Equal(t, 1, errs)
}

func TestStream_Messages_StopsOnStreamError(t *testing.T) {
	s := newTestStream(Trade("BNBBTC"))
	s.closeErr = &core.StreamError{Err: errors.New("reset")}
	close(s.done)

	var count int
	var last error
	for _, err := range s.Messages(context.Background()) {
		count++
		last = err
	}

	assert.Equal(t, 1, count)
	var streamErr *core.StreamError
	assert.ErrorAs(t, last, &streamErr)
}

func TestStream_Send_ClosedStream(t *testing.T) {
	s := newTestStream(Trade("BNBBTC"))
	s.state.Store(ws.StateClosed)

	assert.ErrorIs(t, s.Subscribe(Ticker("ETHBTC")), core.ErrStreamClosed)
}

// peerCloseRecorder is the server-side handler: it records when the peer's
// connection goes away.
type peerCloseRecorder struct {
	gws.BuiltinEventHandler
	closed chan struct{}
}

func (h *peerCloseRecorder) OnClose(socket *gws.Conn, err error) {
	close(h.closed)
}

func newStreamServer(t *testing.T) (string, *peerCloseRecorder) {
	t.Helper()
	recorder := &peerCloseRecorder{closed: make(chan struct{})}
	upgrader := gws.NewUpgrader(recorder, &gws.ServerOption{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket, err := upgrader.Upgrade(w, r)
		if err != nil {
			return
		}
		go socket.ReadLoop()
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http"), recorder
}

func TestConnect_ContextCancelReleasesSocket(t *testing.T) {
	baseURL, recorder := newStreamServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := Connect(ctx, Trade("BNBBTC"), baseURL)
	require.NoError(t, err)
	assert.Equal(t, ws.StateOpen, s.State())

	// Abandoning the stream through its context alone must release the
	// connection; no Close call happens here.
	cancel()

	select {
	case <-recorder.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("peer never observed a close after cancellation")
	}
	assert.Eventually(t, func() bool {
		return s.State() == ws.StateClosed
	}, time.Second, 10*time.Millisecond)
}

func TestConnect_CloseReleasesSocket(t *testing.T) {
	baseURL, recorder := newStreamServer(t)

	s, err := Connect(context.Background(), Trade("BNBBTC"), baseURL)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.Equal(t, ws.StateClosed, s.State())

	select {
	case <-recorder.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("peer never observed the close")
	}
}

func TestMessage_JSON(t *testing.T) {
	msg := &Message{Stream: "bnbbtc@trade", Data: []byte(`{"e":"trade","s":"BNBBTC"}`)}

	var event struct {
		Event  string `json:"e"`
		Symbol string `json:"s"`
	}
	require.NoError(t, msg.JSON(&event))
	assert.Equal(t, "trade", event.Event)
	assert.Equal(t, "BNBBTC", event.Symbol)

	var bad []int
	assert.True(t, core.IsDecodeError(msg.JSON(&bad)))
}
