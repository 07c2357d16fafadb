package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"sniper-sim/internal/domain"
)

const (
	wsReconnectDelay    = time.Second
	wsMaxReconnectDelay = 30 * time.Second
	wsReadTimeout       = 90 * time.Second
)

// WSListingSource buffers new-listing events from the aggregator's
// websocket stream and serves them through the same LatestTokens contract
// as the HTTP discovery feed. The stream reconnects with growing delay
// until Close.
type WSListingSource struct {
	endpoint string
	log      zerolog.Logger

	mu     sync.Mutex
	recent []domain.TokenListing
	seen   map[string]struct{}
	cap    int

	done   chan struct{}
	closed sync.Once
	wg     sync.WaitGroup
}

// NewWSListingSource dials the listings stream and starts buffering.
func NewWSListingSource(ctx context.Context, endpoint string, bufferSize int, log zerolog.Logger) (*WSListingSource, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial listings stream: %w", err)
	}

	s := &WSListingSource{
		endpoint: endpoint,
		log:      log,
		seen:     make(map[string]struct{}),
		cap:      bufferSize,
		done:     make(chan struct{}),
	}
	s.wg.Add(1)
	go s.readLoop(conn)
	return s, nil
}

// LatestTokens returns up to limit buffered listings, newest first.
func (s *WSListingSource) LatestTokens(_ context.Context, limit int) ([]domain.TokenListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.recent)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.TokenListing, 0, n)
	for i := len(s.recent) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.recent[i])
	}
	return out, nil
}

// Close stops the read loop and waits for it to exit.
func (s *WSListingSource) Close() {
	s.closed.Do(func() { close(s.done) })
	s.wg.Wait()
}

func (s *WSListingSource) readLoop(conn *websocket.Conn) {
	defer s.wg.Done()

	delay := wsReconnectDelay
	for {
		select {
		case <-s.done:
			conn.Close()
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			s.log.Warn().Err(err).Msg("listings stream read failed, reconnecting")
			conn = s.redial(delay)
			if conn == nil {
				return
			}
			delay += wsReconnectDelay
			if delay > wsMaxReconnectDelay {
				delay = wsMaxReconnectDelay
			}
			continue
		}

		delay = wsReconnectDelay
		s.ingest(message)
	}
}

func (s *WSListingSource) redial(delay time.Duration) *websocket.Conn {
	for {
		select {
		case <-s.done:
			return nil
		case <-time.After(delay):
		}

		conn, _, err := websocket.DefaultDialer.Dial(s.endpoint, nil)
		if err == nil {
			return conn
		}
		s.log.Warn().Err(err).Dur("retry_in", delay).Msg("listings stream redial failed")
		delay += wsReconnectDelay
		if delay > wsMaxReconnectDelay {
			delay = wsMaxReconnectDelay
		}
	}
}

func (s *WSListingSource) ingest(message []byte) {
	event := gjson.ParseBytes(message)
	symbol := event.Get("symbol").String()
	mint := event.Get("tokenMint").String()
	if symbol == "" || mint == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[symbol]; ok {
		return
	}
	s.seen[symbol] = struct{}{}
	s.recent = append(s.recent, domain.TokenListing{Symbol: symbol, Mint: mint})
	for len(s.recent) > s.cap {
		evicted := s.recent[0]
		s.recent = s.recent[1:]
		delete(s.seen, evicted.Symbol)
	}
}
