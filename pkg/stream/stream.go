// Package stream provides the websocket surface: channel addressing and a
// pull-based message sequence over one persistent connection.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lxzan/gws"
	"github.com/rs/zerolog"

	"nakula/internal/ws"
	"nakula/pkg/core"
)

// ProductionWSURL is the public websocket endpoint.
const ProductionWSURL = "wss://stream.binance.com:9443"

const (
	defaultBufferSize = 64
	defaultIdleWindow = 10 * time.Minute
)

// Message is one decoded inbound frame. Stream names the originating
// subscription; on a combined connection it comes from the envelope,
// otherwise from the channel the stream was opened with.
type Message struct {
	Stream string
	Data   []byte
}

// Text returns the payload as a string.
func (m *Message) Text() string {
	return string(m.Data)
}

// JSON decodes the payload into v.
func (m *Message) JSON(v any) error {
	if err := sonic.Unmarshal(m.Data, v); err != nil {
		return &core.DecodeError{Err: err}
	}
	return nil
}

// Stream is one open streaming connection. It is owned by a single consumer:
// concurrent ReadMessage calls from two goroutines violate the contract and
// are not guarded against internally.
//
// The stream has no notion of session expiry. Keeping a user-data listen key
// alive is the caller's job, via periodic keep-alive calls on the REST
// surface; the stream merely observes the server closing the connection when
// the session lapses.
type Stream struct {
	channel    Channel
	conn       *gws.Conn
	state      *ws.State
	logger     zerolog.Logger
	bufferSize int
	idleWindow time.Duration

	frames      chan []byte
	connected   chan struct{}
	done        chan struct{}
	closeErr    error
	closeOnce   sync.Once
	cancelWatch func() bool
	msgID       atomic.Int64
}

// Option configures optional stream behavior.
type Option func(*Stream)

// WithLogger sets the stream logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Stream) {
		s.logger = logger
	}
}

// WithBufferSize sets how many undelivered frames may queue before the read
// loop applies backpressure.
func WithBufferSize(n int) Option {
	return func(s *Stream) {
		s.bufferSize = n
	}
}

// Connect opens a connection for the given channel against baseURL. It is
// the only transition into the open state; on handshake failure no stream
// object is returned. The context governs the connection's lifetime:
// cancelling it closes the stream, so abandoning a stream via its context
// never leaks the socket.
func Connect(ctx context.Context, channel Channel, baseURL string, opts ...Option) (*Stream, error) {
	s := &Stream{
		channel:    channel,
		state:      &ws.State{},
		logger:     zerolog.Nop(),
		bufferSize: defaultBufferSize,
		idleWindow: defaultIdleWindow,
		connected:  make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.frames = make(chan []byte, s.bufferSize)
	s.state.Store(ws.StateConnecting)

	addr := strings.TrimRight(baseURL, "/") + channel.Path()
	socket, _, err := gws.NewClient(&eventHandler{stream: s}, &gws.ClientOption{Addr: addr})
	if err != nil {
		return nil, &core.TransportError{Op: "connect " + channel.Name(), Err: err}
	}
	s.conn = socket

	go socket.ReadLoop()

	select {
	case <-s.connected:
	case <-s.done:
		if s.closeErr != nil {
			return nil, s.closeErr
		}
		return nil, &core.TransportError{Op: "connect " + channel.Name(), Err: core.ErrStreamClosed}
	case <-ctx.Done():
		_ = socket.NetConn().Close()
		return nil, &core.TransportError{Op: "connect " + channel.Name(), Err: ctx.Err()}
	}

	// Ask the server to wrap every message in a combined-stream envelope so
	// inbound frames always carry their source stream name.
	if err := s.setProperty("combined", true); err != nil {
		_ = s.Close()
		return nil, err
	}

	s.cancelWatch = context.AfterFunc(ctx, func() { _ = s.Close() })

	s.logger.Info().Str("channel", channel.Name()).Msg("stream connected")
	return s, nil
}

// Channel returns the channel this stream was opened with.
func (s *Stream) Channel() Channel {
	return s.channel
}

// State returns the connection's lifecycle state.
func (s *Stream) State() ws.ConnState {
	return s.state.Load()
}

// ReadMessage blocks until the next frame arrives and returns it decoded.
//
// A malformed frame returns a DecodeError and leaves the connection usable;
// exchange streams occasionally emit non-JSON control frames and a single
// bad message must not kill the subscription. A graceful peer close returns
// io.EOF, immediately and forever after. A transport failure returns a
// StreamError and is terminal.
func (s *Stream) ReadMessage(ctx context.Context) (*Message, error) {
	// Frames buffered before the close event are still delivered.
	select {
	case data := <-s.frames:
		return s.decode(data)
	default:
	}

	select {
	case data := <-s.frames:
		return s.decode(data)
	case <-s.done:
		select {
		case data := <-s.frames:
			return s.decode(data)
		default:
		}
		if s.closeErr != nil {
			return nil, s.closeErr
		}
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Messages returns the stream as a lazy iterator. It yields decoded messages
// until the connection ends: a graceful close stops the sequence without an
// error, a decode failure yields the error and continues, and a stream error
// yields the error and stops.
func (s *Stream) Messages(ctx context.Context) iter.Seq2[*Message, error] {
	return func(yield func(*Message, error) bool) {
		for {
			msg, err := s.ReadMessage(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(msg, err) {
				return
			}
			if err != nil && !core.IsDecodeError(err) {
				return
			}
		}
	}
}

// Subscribe adds channels to this connection.
func (s *Stream) Subscribe(channels ...Channel) error {
	return s.send("SUBSCRIBE", channelParams(channels))
}

// Unsubscribe removes channels from this connection.
func (s *Stream) Unsubscribe(channels ...Channel) error {
	return s.send("UNSUBSCRIBE", channelParams(channels))
}

// Close shuts the connection down gracefully. Safe to call more than once.
func (s *Stream) Close() error {
	if !s.state.CompareAndSwap(ws.StateOpen, ws.StateClosed) &&
		!s.state.CompareAndSwap(ws.StateConnecting, ws.StateClosed) {
		return nil
	}
	if s.cancelWatch != nil {
		s.cancelWatch()
	}
	s.conn.WriteClose(1000, nil)
	_ = s.conn.NetConn().Close()
	return nil
}

type subscribeMessage struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
	ID     int64  `json:"id"`
}

func (s *Stream) setProperty(key string, value any) error {
	return s.send("SET_PROPERTY", []any{key, value})
}

func (s *Stream) send(method string, params []any) error {
	if s.state.Load() != ws.StateOpen {
		return core.ErrStreamClosed
	}

	msg := subscribeMessage{
		Method: method,
		Params: params,
		ID:     s.msgID.Add(1),
	}
	data, err := sonic.Marshal(msg)
	if err != nil {
		return &core.DecodeError{Err: err}
	}
	if err := s.conn.WriteMessage(gws.OpcodeText, data); err != nil {
		return &core.StreamError{Err: err}
	}
	return nil
}

func channelParams(channels []Channel) []any {
	params := make([]any, 0, len(channels))
	for _, ch := range channels {
		for _, name := range ch.names() {
			params = append(params, name)
		}
	}
	return params
}

// envelope is the combined-stream wrapper the server applies once the
// combined property is set.
type envelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

func (s *Stream) decode(data []byte) (*Message, error) {
	var env envelope
	if err := sonic.Unmarshal(data, &env); err == nil && env.Stream != "" && len(env.Data) > 0 {
		return &Message{Stream: env.Stream, Data: env.Data}, nil
	}

	if !sonic.Valid(data) {
		return nil, &core.DecodeError{Err: errors.New("frame is not valid JSON")}
	}
	return &Message{Stream: s.channel.Name(), Data: data}, nil
}

type eventHandler struct {
	stream *Stream
}

func (h *eventHandler) OnOpen(socket *gws.Conn) {
	s := h.stream
	s.state.CompareAndSwap(ws.StateConnecting, ws.StateOpen)
	_ = socket.SetDeadline(time.Now().Add(s.idleWindow))

	select {
	case <-s.connected:
	default:
		close(s.connected)
	}
}

func (h *eventHandler) OnClose(socket *gws.Conn, err error) {
	s := h.stream
	s.closeOnce.Do(func() {
		var closeErr *gws.CloseError
		switch {
		case s.state.Load() == ws.StateClosed:
			// locally initiated, already graceful
		case err == nil,
			errors.As(err, &closeErr) && (closeErr.Code == 1000 || closeErr.Code == 1001):
			s.state.Store(ws.StateClosed)
			s.logger.Info().Str("channel", s.channel.Name()).Msg("stream closed by peer")
		default:
			s.closeErr = &core.StreamError{Err: err}
			s.state.Store(ws.StateFailed)
			s.logger.Warn().Err(err).Str("channel", s.channel.Name()).Msg("stream failed")
		}
		close(s.done)
	})
}

func (h *eventHandler) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(h.stream.idleWindow))
	_ = socket.WritePong(payload)
}

func (h *eventHandler) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(h.stream.idleWindow))
}

func (h *eventHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	data := message.Bytes()
	if len(data) == 0 {
		return
	}
	// The message buffer is recycled after Close; hand off a copy.
	frame := make([]byte, len(data))
	copy(frame, data)

	select {
	case h.stream.frames <- frame:
	case <-h.stream.done:
	}
}
