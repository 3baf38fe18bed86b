// Package deriv implements the brokerage transport over the Deriv websocket
// API. A single persistent connection carries all traffic: one writer guarded
// by a mutex, one reader goroutine translating inbound payloads into events,
// and an application-level ping loop keeping the session alive.
package deriv

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"deriv-trading-bot/internal/interfaces"
	"deriv-trading-bot/internal/logger"
	"deriv-trading-bot/internal/types"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultKeepAlive        = 25 * time.Second
	defaultEventBuffer      = 256
	closeGracePeriod        = 5 * time.Second
)

// Config holds the connection parameters for the Deriv endpoint.
type Config struct {
	Endpoint         string        // wss://ws.derivws.com/websockets/v3
	AppID            string        // appended as ?app_id=
	Token            string        // API token, empty skips authorization
	KeepAlive        time.Duration // ping interval, default 25s
	HandshakeTimeout time.Duration
	EventBuffer      int
}

// Client is the websocket transport. All request methods are fire-and-forget;
// responses arrive on Events in connection order.
type Client struct {
	cfg    Config
	conn   *websocket.Conn
	connMu sync.Mutex // guards conn pointer and writes

	events chan interfaces.Event
	done   chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup

	stateMu      sync.Mutex
	tickSubID    string
	lastProposal struct {
		contractType string
		symbol       string
	}
}

var _ interfaces.Transport = (*Client)(nil)

// New creates a client. Connect must be called before any request method.
func New(cfg Config) *Client {
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = defaultKeepAlive
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaultHandshakeTimeout
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = defaultEventBuffer
	}
	return &Client{
		cfg:    cfg,
		events: make(chan interfaces.Event, cfg.EventBuffer),
		done:   make(chan struct{}),
	}
}

// Connect dials the endpoint, sends the authorize request when a token is
// configured, and starts the read and ping loops.
func (c *Client) Connect(ctx context.Context) error {
	url := c.cfg.Endpoint + "?app_id=" + c.cfg.AppID

	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	logger.Info(ctx, "Connecting to brokerage", "endpoint", c.cfg.Endpoint, "app_id", c.cfg.AppID)

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.Endpoint, err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	c.wg.Add(2)
	go c.readLoop(conn)
	go c.pingLoop()

	if c.cfg.Token != "" {
		if err := c.send(authorizeRequest{Authorize: c.cfg.Token}); err != nil {
			return fmt.Errorf("authorize: %w", err)
		}
	}

	logger.Info(ctx, "Brokerage connection established")
	return nil
}

// RequestCandles asks for the most recent count candles at the given
// granularity in seconds.
func (c *Client) RequestCandles(symbol string, granularity, count int) error {
	return c.send(candlesRequest{
		TicksHistory: symbol,
		End:          "latest",
		Count:        count,
		Style:        "candles",
		Granularity:  granularity,
	})
}

// SubscribeTicks starts the live tick stream for symbol.
func (c *Client) SubscribeTicks(symbol string) error {
	return c.send(ticksRequest{Ticks: symbol, Subscribe: 1})
}

// ForgetTicks cancels the active tick subscription, if any.
func (c *Client) ForgetTicks() error {
	c.stateMu.Lock()
	id := c.tickSubID
	c.tickSubID = ""
	c.stateMu.Unlock()
	if id == "" {
		return nil
	}
	return c.send(forgetRequest{Forget: id})
}

// RequestProposal asks for a contract price quote. The contract type and
// symbol are remembered so the eventual buy confirmation can carry them.
func (c *Client) RequestProposal(req interfaces.ProposalRequest) error {
	c.stateMu.Lock()
	c.lastProposal.contractType = req.ContractType
	c.lastProposal.symbol = req.Symbol
	c.stateMu.Unlock()

	return c.send(proposalRequest{
		Proposal:     1,
		Amount:       req.Amount,
		Basis:        "stake",
		ContractType: req.ContractType,
		Currency:     req.Currency,
		Duration:     req.DurationMinutes,
		DurationUnit: "m",
		Symbol:       req.Symbol,
		Subscribe:    1,
	})
}

// Buy purchases a previously quoted proposal at the quoted ask price and
// subscribes to the resulting contract's settlement updates.
func (c *Client) Buy(proposalID string, price float64) error {
	return c.send(buyRequest{Buy: proposalID, Price: price, Subscribe: 1})
}

// Sell closes an open contract early at the given bid price.
func (c *Client) Sell(contractID string, price float64) error {
	id, err := strconv.ParseInt(contractID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid contract id %q: %w", contractID, err)
	}
	return c.send(sellRequest{Sell: id, Price: price})
}

// Events returns the inbound event stream.
func (c *Client) Events() <-chan interfaces.Event {
	return c.events
}

// Close shuts the connection down. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)

		c.connMu.Lock()
		if c.conn != nil {
			deadline := time.Now().Add(time.Second)
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = c.conn.Close()
		}
		c.connMu.Unlock()

		finished := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(finished)
		}()
		select {
		case <-finished:
		case <-time.After(closeGracePeriod):
			logger.Warn(context.Background(), "Timed out waiting for connection loops to stop")
		}
	})
	return nil
}

func (c *Client) send(v any) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	return c.conn.WriteJSON(v)
}

// readLoop is the single reader for one connection. It exits on any read
// error after emitting a DisconnectEvent; the session layer owns the
// reconnect policy.
func (c *Client) readLoop(conn *websocket.Conn) {
	defer c.wg.Done()
	ctx := context.Background()

	for {
		var msg serverMessage
		if err := conn.ReadJSON(&msg); err != nil {
			select {
			case <-c.done:
				// Deliberate shutdown, not a failure.
			default:
				logger.ErrorWithErr(ctx, "Brokerage connection lost", err)
				c.emit(interfaces.DisconnectEvent{Err: err})
			}
			return
		}
		c.handleMessage(ctx, &msg)
	}
}

func (c *Client) handleMessage(ctx context.Context, msg *serverMessage) {
	if msg.Error != nil {
		logger.Error(ctx, "Brokerage API error",
			"code", msg.Error.Code, "message", msg.Error.Message, "msg_type", msg.MsgType)
		c.emit(interfaces.APIErrorEvent{Code: msg.Error.Code, Message: msg.Error.Message})
		return
	}

	switch msg.MsgType {
	case "authorize":
		if msg.Authorize == nil {
			return
		}
		logger.Info(ctx, "Authorized",
			"loginid", msg.Authorize.LoginID, "balance", msg.Authorize.Balance)
		c.emit(interfaces.AuthorizedEvent{
			LoginID: msg.Authorize.LoginID,
			Balance: msg.Authorize.Balance,
		})

	case "candles":
		candles := make([]types.Candle, 0, len(msg.Candles))
		for _, cb := range msg.Candles {
			candles = append(candles, types.Candle{
				Epoch: cb.Epoch,
				Open:  cb.Open,
				High:  cb.High,
				Low:   cb.Low,
				Close: cb.Close,
			})
		}
		c.emit(interfaces.CandlesEvent{Candles: candles})

	case "tick":
		if msg.Tick == nil {
			return
		}
		subID := msg.Tick.ID
		if msg.Subscription != nil {
			subID = msg.Subscription.ID
		}
		if subID != "" {
			c.stateMu.Lock()
			c.tickSubID = subID
			c.stateMu.Unlock()
		}
		c.emit(interfaces.TickEvent{
			Tick:           types.Tick{Epoch: msg.Tick.Epoch, Quote: msg.Tick.Quote},
			SubscriptionID: subID,
		})

	case "proposal":
		if msg.Proposal == nil {
			return
		}
		c.emit(interfaces.ProposalEvent{
			ID:       msg.Proposal.ID,
			AskPrice: msg.Proposal.AskPrice,
			Payout:   msg.Proposal.Payout,
		})

	case "buy":
		if msg.Buy == nil {
			return
		}
		c.stateMu.Lock()
		contractType := c.lastProposal.contractType
		symbol := c.lastProposal.symbol
		c.stateMu.Unlock()
		c.emit(interfaces.BuyConfirmationEvent{
			ContractID:   strconv.FormatInt(msg.Buy.ContractID, 10),
			ContractType: contractType,
			Symbol:       symbol,
			BuyPrice:     msg.Buy.BuyPrice,
		})

	case "proposal_open_contract":
		if msg.ProposalOpenContract == nil {
			return
		}
		c.emit(interfaces.ContractUpdateEvent{
			ContractID: strconv.FormatInt(msg.ProposalOpenContract.ContractID, 10),
			Status:     msg.ProposalOpenContract.Status,
			Profit:     msg.ProposalOpenContract.Profit,
			BidPrice:   msg.ProposalOpenContract.BidPrice,
		})

	case "sell":
		if msg.Sell == nil {
			return
		}
		c.emit(interfaces.SoldEvent{
			TransactionID: msg.Sell.TransactionID,
			SoldFor:       msg.Sell.SoldFor,
		})

	case "ping":
		// pong, nothing to do
	}
}

// emit delivers an event without blocking shutdown. A full buffer drops the
// event with a warning rather than stalling the read loop.
func (c *Client) emit(ev interfaces.Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	default:
		logger.Warn(context.Background(), "Event buffer full, dropping event",
			"event", fmt.Sprintf("%T", ev))
	}
}

func (c *Client) pingLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.send(pingRequest{Ping: 1}); err != nil {
				logger.ErrorWithErr(context.Background(), "Keep-alive ping failed", err)
				return
			}
		}
	}
}
