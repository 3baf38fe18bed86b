package interfaces

import (
	"context"

	"deriv-trading-bot/internal/types"
)

// Event is one inbound message from the brokerage stream. The transport
// delivers events in connection order; the session consumes them one at a
// time.
type Event interface{ isEvent() }

type AuthorizedEvent struct {
	LoginID string
	Balance float64
}

type CandlesEvent struct {
	Candles []types.Candle
}

type TickEvent struct {
	Tick           types.Tick
	SubscriptionID string
}

type ProposalEvent struct {
	ID       string
	AskPrice float64
	Payout   float64
}

type BuyConfirmationEvent struct {
	ContractID   string
	ContractType string
	Symbol       string
	BuyPrice     float64
}

type ContractUpdateEvent struct {
	ContractID string
	Status     string // open, won, lost, sold
	Profit     float64
	BidPrice   float64
}

type SoldEvent struct {
	TransactionID int64
	SoldFor       float64
}

type APIErrorEvent struct {
	Code    string
	Message string
}

type DisconnectEvent struct {
	Err error
}

func (AuthorizedEvent) isEvent()      {}
func (CandlesEvent) isEvent()         {}
func (TickEvent) isEvent()            {}
func (ProposalEvent) isEvent()        {}
func (BuyConfirmationEvent) isEvent() {}
func (ContractUpdateEvent) isEvent()  {}
func (SoldEvent) isEvent()            {}
func (APIErrorEvent) isEvent()        {}
func (DisconnectEvent) isEvent()      {}

// ProposalRequest asks the brokerage to price a contract.
type ProposalRequest struct {
	Amount          float64
	ContractType    string // CALL or PUT
	Currency        string
	DurationMinutes int
	Symbol          string
}

// Transport is the persistent brokerage connection. Requests are
// fire-and-forget; results come back on Events.
type Transport interface {
	Connect(ctx context.Context) error
	RequestCandles(symbol string, granularity, count int) error
	SubscribeTicks(symbol string) error
	ForgetTicks() error
	RequestProposal(req ProposalRequest) error
	Buy(proposalID string, price float64) error
	Sell(contractID string, price float64) error
	Events() <-chan Event
	Close() error
}
