package collector

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"market-advisor/internal/storage"
	"market-advisor/pkg/types"
)

// StreamCollector subscribes to the upstream quote websocket and feeds
// live prices into storage. It reconnects with exponential backoff and
// keeps the connection alive with periodic pings.
type StreamCollector struct {
	storage *storage.MemoryStorage
	config  types.DataSourceConfig
	symbols []string
	log     zerolog.Logger

	connMu sync.RWMutex
	conn   *websocket.Conn

	stopChan chan struct{}
	stopOnce sync.Once
}

// streamMessage is one frame from the upstream quote feed
type streamMessage struct {
	Type  string       `json:"type"`
	Quote *streamQuote `json:"quote,omitempty"`
	Error *streamError `json:"error,omitempty"`
}

type streamQuote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Epoch  int64   `json:"epoch"`
}

type streamError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewStreamCollector(store *storage.MemoryStorage, config types.DataSourceConfig, symbols []string, log zerolog.Logger) *StreamCollector {
	return &StreamCollector{
		storage:  store,
		config:   config,
		symbols:  symbols,
		log:      log.With().Str("component", "collector").Logger(),
		stopChan: make(chan struct{}),
	}
}

// Start launches the connection manager. Returns immediately; the
// collector runs until Stop.
func (c *StreamCollector) Start() {
	c.log.Info().Int("symbols", len(c.symbols)).Str("url", c.config.StreamURL).Msg("starting quote collector")
	go c.connectionManager()
}

func (c *StreamCollector) connectionManager() {
	backoff := c.config.ReconnectDelay
	if backoff <= 0 {
		backoff = 1
	}

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		if err := c.connect(); err != nil {
			c.log.Warn().Err(err).Int("retry_seconds", backoff).Msg("connection failed")
			select {
			case <-c.stopChan:
				return
			case <-time.After(time.Duration(backoff) * time.Second):
			}
			// Exponential backoff capped at 30s
			backoff *= 2
			if backoff > 30 {
				backoff = 30
			}
			continue
		}
		backoff = c.config.ReconnectDelay

		if err := c.subscribeAll(); err != nil {
			c.log.Warn().Err(err).Msg("subscription failed")
		}

		c.readMessages()

		c.log.Warn().Msg("connection lost, reconnecting")
	}
}

func (c *StreamCollector) connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.config.StreamURL, nil)
	if err != nil {
		return fmt.Errorf("dialing quote stream: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	c.log.Info().Msg("connected to quote stream")
	go c.keepAlive()
	return nil
}

func (c *StreamCollector) subscribeAll() error {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()
	if conn == nil {
		return fmt.Errorf("no active connection")
	}

	for _, symbol := range c.symbols {
		msg := map[string]interface{}{
			"action": "subscribe",
			"symbol": symbol,
		}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribing to %s: %w", symbol, err)
		}
	}
	return nil
}

func (c *StreamCollector) readMessages() {
	defer func() {
		c.connMu.Lock()
		if c.conn != nil {
			c.conn.Close()
			c.conn = nil
		}
		c.connMu.Unlock()
	}()

	for {
		c.connMu.RLock()
		conn := c.conn
		c.connMu.RUnlock()
		if conn == nil {
			return
		}

		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			select {
			case <-c.stopChan:
			default:
				c.log.Warn().Err(err).Msg("read error")
			}
			return
		}

		c.handleMessage(msg)
	}
}

func (c *StreamCollector) handleMessage(msg streamMessage) {
	switch msg.Type {
	case "quote":
		if msg.Quote != nil {
			c.processQuote(msg.Quote)
		}
	case "error":
		if msg.Error != nil {
			c.log.Warn().Str("code", msg.Error.Code).Str("message", msg.Error.Message).Msg("upstream error")
		}
	}
}

func (c *StreamCollector) processQuote(quote *streamQuote) {
	ts := time.Unix(quote.Epoch, 0)
	if quote.Epoch == 0 {
		ts = time.Now()
	}

	c.storage.AddPoint(types.PricePoint{
		Symbol:    quote.Symbol,
		Price:     quote.Price,
		Timestamp: ts,
	})

	if count := c.storage.Count(quote.Symbol); count%100 == 0 {
		c.log.Debug().Str("symbol", quote.Symbol).Float64("price", quote.Price).Int("stored", count).Msg("quotes collected")
	}
}

func (c *StreamCollector) keepAlive() {
	interval := c.config.PingInterval
	if interval <= 0 {
		interval = 30
	}
	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.connMu.RLock()
			conn := c.conn
			c.connMu.RUnlock()
			if conn == nil {
				return
			}
			if err := conn.WriteJSON(map[string]interface{}{"action": "ping"}); err != nil {
				c.log.Warn().Err(err).Msg("ping failed")
				return
			}
		}
	}
}

// Stop closes the connection and halts reconnection attempts
func (c *StreamCollector) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	c.log.Info().Msg("quote collector stopped")
}
