package bybit

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alphaflow-trading/meanrev-bot/internal/market"
)

const (
	pingInterval     = 20 * time.Second
	reconnectDelay   = 5 * time.Second
	handshakeTimeout = 10 * time.Second
)

// TradeStream is the Bybit v5 public trade WebSocket. One connection
// carries every subscribed symbol; the reader goroutine dispatches each
// trade batch to the matching callback. On read failure the stream
// reconnects and resubscribes by itself.
type TradeStream struct {
	url string

	mu            sync.RWMutex
	conn          *websocket.Conn
	subscriptions map[string]func([]market.Tick) // topic -> callback
	closed        bool

	reconnectChan chan struct{}
	done          chan struct{}
}

// NewTradeStream creates a stream against the given public endpoint. The
// connection is established lazily on the first subscription.
func NewTradeStream(url string) *TradeStream {
	s := &TradeStream{
		url:           url,
		subscriptions: make(map[string]func([]market.Tick)),
		reconnectChan: make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
	go s.reconnectLoop()
	return s
}

// SubscribeTrades registers a callback for the symbol's publicTrade topic
// and subscribes on the wire. The callback runs on the reader goroutine
// and must not block.
func (s *TradeStream) SubscribeTrades(symbol string, callback func([]market.Tick)) error {
	topic := "publicTrade." + symbol

	s.mu.Lock()
	s.subscriptions[topic] = callback
	s.mu.Unlock()

	if err := s.ensureConnected(); err != nil {
		return fmt.Errorf("failed to connect trade stream: %w", err)
	}
	return s.sendSubscribe([]string{topic})
}

// Close shuts the stream down permanently.
func (s *TradeStream) Close() error {
	s.mu.Lock()
	s.closed = true
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	close(s.done)
	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (s *TradeStream) ensureConnected() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("stream is closed")
	}
	if s.conn != nil {
		return nil
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = handshakeTimeout
	conn, _, err := dialer.Dial(s.url, nil)
	if err != nil {
		return err
	}
	s.conn = conn

	go s.readLoop(conn)
	go s.pingLoop(conn)

	log.Printf("trade stream connected to %s", s.url)
	return nil
}

func (s *TradeStream) sendSubscribe(topics []string) error {
	msg := map[string]interface{}{
		"op":   "subscribe",
		"args": topics,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal subscribe message: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("stream not connected")
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send subscribe message: %w", err)
	}
	return nil
}

func (s *TradeStream) readLoop(conn *websocket.Conn) {
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.mu.RLock()
			closed := s.closed
			s.mu.RUnlock()
			if closed {
				return
			}
			log.Printf("trade stream read error: %v", err)
			s.dropConn(conn)
			s.triggerReconnect()
			return
		}
		s.handleMessage(message)
	}
}

// tradeMessage is the publicTrade payload shape.
type tradeMessage struct {
	Topic string `json:"topic"`
	Data  []struct {
		Timestamp int64  `json:"T"` // trade time, ms
		Price     string `json:"p"`
		Volume    string `json:"v"`
	} `json:"data"`
}

func (s *TradeStream) handleMessage(message []byte) {
	var msg tradeMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}
	if msg.Topic == "" || len(msg.Data) == 0 {
		return // op acks, pong frames
	}

	s.mu.RLock()
	callback := s.subscriptions[msg.Topic]
	s.mu.RUnlock()
	if callback == nil {
		return
	}

	ticks := make([]market.Tick, 0, len(msg.Data))
	for _, tr := range msg.Data {
		price, err := strconv.ParseFloat(tr.Price, 64)
		if err != nil {
			continue
		}
		volume, err := strconv.ParseFloat(tr.Volume, 64)
		if err != nil {
			continue
		}
		ticks = append(ticks, market.Tick{
			Timestamp: tr.Timestamp,
			Price:     price,
			Volume:    volume,
		})
	}
	if len(ticks) > 0 {
		callback(ticks)
	}
}

func (s *TradeStream) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	ping := []byte(`{"op":"ping"}`)
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			current := s.conn
			var err error
			if current == conn {
				err = conn.WriteMessage(websocket.TextMessage, ping)
			}
			s.mu.Unlock()
			if current != conn {
				return // superseded by a reconnect
			}
			if err != nil {
				log.Printf("trade stream ping failed: %v", err)
				return
			}
		}
	}
}

func (s *TradeStream) dropConn(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
}

func (s *TradeStream) triggerReconnect() {
	select {
	case s.reconnectChan <- struct{}{}:
	default:
	}
}

func (s *TradeStream) reconnectLoop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.reconnectChan:
			select {
			case <-s.done:
				return
			case <-time.After(reconnectDelay):
			}

			if err := s.ensureConnected(); err != nil {
				log.Printf("trade stream reconnect failed: %v", err)
				s.triggerReconnect()
				continue
			}

			// Resubscribe everything registered before the drop.
			s.mu.RLock()
			topics := make([]string, 0, len(s.subscriptions))
			for topic := range s.subscriptions {
				topics = append(topics, topic)
			}
			s.mu.RUnlock()

			if len(topics) > 0 {
				if err := s.sendSubscribe(topics); err != nil {
					log.Printf("trade stream resubscribe failed: %v", err)
					s.dropAndRetry()
				}
			}
		}
	}
}

func (s *TradeStream) dropAndRetry() {
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.mu.Unlock()
	s.triggerReconnect()
}
