package deriv

// Outbound request shapes for the Deriv websocket API. Every request is a
// single JSON object keyed by its operation name; responses come back tagged
// with msg_type.

type authorizeRequest struct {
	Authorize string `json:"authorize"`
}

type candlesRequest struct {
	TicksHistory string `json:"ticks_history"`
	End          string `json:"end"`
	Count        int    `json:"count"`
	Style        string `json:"style"`
	Granularity  int    `json:"granularity"`
}

type ticksRequest struct {
	Ticks     string `json:"ticks"`
	Subscribe int    `json:"subscribe"`
}

type forgetRequest struct {
	Forget string `json:"forget"`
}

type proposalRequest struct {
	Proposal     int     `json:"proposal"`
	Amount       float64 `json:"amount"`
	Basis        string  `json:"basis"`
	ContractType string  `json:"contract_type"`
	Currency     string  `json:"currency"`
	Duration     int     `json:"duration"`
	DurationUnit string  `json:"duration_unit"`
	Symbol       string  `json:"symbol"`
	Subscribe    int     `json:"subscribe"`
}

type buyRequest struct {
	Buy       string  `json:"buy"`
	Price     float64 `json:"price"`
	Subscribe int     `json:"subscribe"`
}

type sellRequest struct {
	Sell  int64   `json:"sell"`
	Price float64 `json:"price"`
}

type pingRequest struct {
	Ping int `json:"ping"`
}

// serverMessage is the superset of every inbound payload we care about.
// Fields are pointers so absence is distinguishable from zero values.
type serverMessage struct {
	MsgType              string            `json:"msg_type"`
	Error                *apiError         `json:"error"`
	Authorize            *authorizeBody    `json:"authorize"`
	Candles              []candleBody      `json:"candles"`
	Tick                 *tickBody         `json:"tick"`
	Subscription         *subscriptionBody `json:"subscription"`
	Proposal             *proposalBody     `json:"proposal"`
	Buy                  *buyBody          `json:"buy"`
	ProposalOpenContract *openContractBody `json:"proposal_open_contract"`
	Sell                 *sellBody         `json:"sell"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type authorizeBody struct {
	LoginID  string  `json:"loginid"`
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

type candleBody struct {
	Epoch int64   `json:"epoch"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

type tickBody struct {
	Epoch int64   `json:"epoch"`
	Quote float64 `json:"quote"`
	ID    string  `json:"id"`
}

type subscriptionBody struct {
	ID string `json:"id"`
}

type proposalBody struct {
	ID       string  `json:"id"`
	AskPrice float64 `json:"ask_price"`
	Payout   float64 `json:"payout"`
}

type buyBody struct {
	ContractID    int64   `json:"contract_id"`
	BuyPrice      float64 `json:"buy_price"`
	Balance       float64 `json:"balance_after"`
	TransactionID int64   `json:"transaction_id"`
	Longcode      string  `json:"longcode"`
}

type openContractBody struct {
	ContractID int64   `json:"contract_id"`
	Status     string  `json:"status"` // open, won, lost, sold
	Profit     float64 `json:"profit"`
	BidPrice   float64 `json:"bid_price"`
	IsSold     int     `json:"is_sold"`
}

type sellBody struct {
	TransactionID int64   `json:"transaction_id"`
	SoldFor       float64 `json:"sold_for"`
}
