package v20

// Primitive definitions. The reference encodes decimals as strings to keep
// their precision.
type (
	// AccountID is the string representation of an Account Identifier.
	AccountID string
	// Currency is an ISO 4217 currency code, e.g. "USD".
	Currency string
	// DateTime is an RFC 3339 timestamp.
	DateTime string
	// DecimalNumber is a decimal number encoded as a string.
	DecimalNumber string
	// AccountUnits is a quantity of an Account's home currency.
	AccountUnits string
	// PriceValue is a price encoded as a string.
	PriceValue string
	// InstrumentName is an instrument identifier, e.g. "EUR_USD".
	InstrumentName string
	// TransactionID is the unique Transaction identifier within each Account.
	TransactionID string
	// OrderID is the Order's identifier, unique within the Order's Account.
	OrderID string
	// TradeID is the Trade's identifier, unique within the Trade's Account.
	TradeID string
	// ClientID is a client-provided identifier.
	ClientID string
)

// AccountProperties: Properties related to an Account.
type AccountProperties struct {
	ID           AccountID `json:"id"`
	MT4AccountID *int64    `json:"mt4AccountID,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
}

// AccountSummary is a summary representation of a client's Account.
type AccountSummary struct {
	ID                    AccountID      `json:"id"`
	Alias                 *string        `json:"alias,omitempty"`
	Currency              Currency       `json:"currency"`
	Balance               AccountUnits   `json:"balance"`
	CreatedByUserID       *int64         `json:"createdByUserID,omitempty"`
	CreatedTime           *DateTime      `json:"createdTime,omitempty"`
	PL                    *AccountUnits  `json:"pl,omitempty"`
	ResettablePL          *AccountUnits  `json:"resettablePL,omitempty"`
	Financing             *AccountUnits  `json:"financing,omitempty"`
	Commission            *AccountUnits  `json:"commission,omitempty"`
	MarginRate            *DecimalNumber `json:"marginRate,omitempty"`
	OpenTradeCount        int64          `json:"openTradeCount"`
	OpenPositionCount     int64          `json:"openPositionCount"`
	PendingOrderCount     int64          `json:"pendingOrderCount"`
	HedgingEnabled        bool           `json:"hedgingEnabled"`
	UnrealizedPL          *AccountUnits  `json:"unrealizedPL,omitempty"`
	NAV                   *AccountUnits  `json:"NAV,omitempty"`
	MarginUsed            *AccountUnits  `json:"marginUsed,omitempty"`
	MarginAvailable       *AccountUnits  `json:"marginAvailable,omitempty"`
	PositionValue         *AccountUnits  `json:"positionValue,omitempty"`
	MarginCloseoutPercent *DecimalNumber `json:"marginCloseoutPercent,omitempty"`
	WithdrawalLimit       *AccountUnits  `json:"withdrawalLimit,omitempty"`
	LastTransactionID     TransactionID  `json:"lastTransactionID"`
}

// InstrumentType is the type of an Instrument.
type InstrumentType string

const (
	InstrumentTypeCurrency InstrumentType = "CURRENCY"
	InstrumentTypeCfd      InstrumentType = "CFD"
	InstrumentTypeMetal    InstrumentType = "METAL"
)

// Instrument: Full specification of an Instrument.
type Instrument struct {
	Name                InstrumentName `json:"name"`
	Type                InstrumentType `json:"type"`
	DisplayName         string         `json:"displayName"`
	PipLocation         int64          `json:"pipLocation"`
	DisplayPrecision    int64          `json:"displayPrecision"`
	TradeUnitsPrecision int64          `json:"tradeUnitsPrecision"`
	MinimumTradeSize    DecimalNumber  `json:"minimumTradeSize"`
	MaximumOrderUnits   *DecimalNumber `json:"maximumOrderUnits,omitempty"`
	MarginRate          DecimalNumber  `json:"marginRate"`
}

// CandlestickGranularity is the granularity of a candlestick.
type CandlestickGranularity string

const (
	CandlestickGranularityS5  CandlestickGranularity = "S5"
	CandlestickGranularityS10 CandlestickGranularity = "S10"
	CandlestickGranularityS30 CandlestickGranularity = "S30"
	CandlestickGranularityM1  CandlestickGranularity = "M1"
	CandlestickGranularityM5  CandlestickGranularity = "M5"
	CandlestickGranularityM15 CandlestickGranularity = "M15"
	CandlestickGranularityM30 CandlestickGranularity = "M30"
	CandlestickGranularityH1  CandlestickGranularity = "H1"
	CandlestickGranularityH4  CandlestickGranularity = "H4"
	CandlestickGranularityD   CandlestickGranularity = "D"
	CandlestickGranularityW   CandlestickGranularity = "W"
	CandlestickGranularityM   CandlestickGranularity = "M"
)

// CandlestickData is the price data (open, high, low, close) for the Candlestick representation.
type CandlestickData struct {
	O PriceValue `json:"o"`
	H PriceValue `json:"h"`
	L PriceValue `json:"l"`
	C PriceValue `json:"c"`
}

// Candlestick is the Candlestick representation
type Candlestick struct {
	Time     DateTime         `json:"time"`
	Bid      *CandlestickData `json:"bid,omitempty"`
	Ask      *CandlestickData `json:"ask,omitempty"`
	Mid      *CandlestickData `json:"mid,omitempty"`
	Volume   int64            `json:"volume"`
	Complete bool             `json:"complete"`
}

// OrderBookBucket is the order book data for a partition of the instrument's prices.
type OrderBookBucket struct {
	Price             PriceValue    `json:"price"`
	LongCountPercent  DecimalNumber `json:"longCountPercent"`
	ShortCountPercent DecimalNumber `json:"shortCountPercent"`
}

// OrderBook is the representation of an instrument's order book at a point in time
type OrderBook struct {
	Instrument  InstrumentName    `json:"instrument"`
	Time        DateTime          `json:"time"`
	Price       PriceValue        `json:"price"`
	BucketWidth PriceValue        `json:"bucketWidth"`
	Buckets     []OrderBookBucket `json:"buckets,omitempty"`
}

// PriceBucket is a Price Bucket represents a price available for an amount of liquidity
type PriceBucket struct {
	Price     PriceValue `json:"price"`
	Liquidity int64      `json:"liquidity"`
}

// ClientPrice is the specification of an Account-specific Price.
type ClientPrice struct {
	Type        string         `json:"type" default:"PRICE"`
	Instrument  InstrumentName `json:"instrument"`
	Time        DateTime       `json:"time"`
	Tradeable   bool           `json:"tradeable"`
	Bids        []PriceBucket  `json:"bids,omitempty"`
	Asks        []PriceBucket  `json:"asks,omitempty"`
	CloseoutBid PriceValue     `json:"closeoutBid"`
	CloseoutAsk PriceValue     `json:"closeoutAsk"`
}

// PricingHeartbeat is a heartbeat sent on the pricing stream.
type PricingHeartbeat struct {
	Type string   `json:"type" default:"HEARTBEAT"`
	Time DateTime `json:"time"`
}

// PricingStreamMessage is a message of the pricing stream: *ClientPrice or
// *PricingHeartbeat.
type PricingStreamMessage interface {
	isPricingStreamMessage()
}

func (ClientPrice) isPricingStreamMessage()      {}
func (PricingHeartbeat) isPricingStreamMessage() {}

// OrderType is the type of the Order.
type OrderType string

const (
	OrderTypeMarket     OrderType = "MARKET"
	OrderTypeLimit      OrderType = "LIMIT"
	OrderTypeStop       OrderType = "STOP"
	OrderTypeTakeProfit OrderType = "TAKE_PROFIT"
	OrderTypeStopLoss   OrderType = "STOP_LOSS"
)

// TimeInForce is the time-in-force of an Order.
type TimeInForce string

const (
	TimeInForceGtc TimeInForce = "GTC"
	TimeInForceGtd TimeInForce = "GTD"
	TimeInForceGfd TimeInForce = "GFD"
	TimeInForceFok TimeInForce = "FOK"
	TimeInForceIoc TimeInForce = "IOC"
)

// OrderPositionFill specifies how Positions in the Account are modified when the Order is filled.
type OrderPositionFill string

const (
	OrderPositionFillOpenOnly    OrderPositionFill = "OPEN_ONLY"
	OrderPositionFillReduceFirst OrderPositionFill = "REDUCE_FIRST"
	OrderPositionFillReduceOnly  OrderPositionFill = "REDUCE_ONLY"
	OrderPositionFillDefault     OrderPositionFill = "DEFAULT"
)

// OrderTriggerCondition specifies which price component should be used when
// determining if an Order should be triggered and filled.
type OrderTriggerCondition string

const (
	OrderTriggerConditionDefault OrderTriggerCondition = "DEFAULT"
	OrderTriggerConditionInverse OrderTriggerCondition = "INVERSE"
	OrderTriggerConditionBid     OrderTriggerCondition = "BID"
	OrderTriggerConditionAsk     OrderTriggerCondition = "ASK"
	OrderTriggerConditionMid     OrderTriggerCondition = "MID"
)

// ClientExtensions allow clients to attach a clientID, tag and comment to Orders and Trades.
type ClientExtensions struct {
	ID      *ClientID `json:"id,omitempty"`
	Tag     *string   `json:"tag,omitempty"`
	Comment *string   `json:"comment,omitempty"`
}

// TakeProfitDetails specifies the details of a Take Profit Order to be created on behalf of a client.
type TakeProfitDetails struct {
	Price       PriceValue  `json:"price"`
	TimeInForce TimeInForce `json:"timeInForce" default:"GTC"`
	GtdTime     *DateTime   `json:"gtdTime,omitempty"`
}

// StopLossDetails specifies the details of a Stop Loss Order to be created on behalf of a client.
type StopLossDetails struct {
	Price       *PriceValue    `json:"price,omitempty"`
	Distance    *DecimalNumber `json:"distance,omitempty"`
	TimeInForce TimeInForce    `json:"timeInForce" default:"GTC"`
	GtdTime     *DateTime      `json:"gtdTime,omitempty"`
}

// OrderRequest is the base Order specification used when requesting that an
// Order be created: *MarketOrderRequest or *LimitOrderRequest.
type OrderRequest interface {
	isOrderRequest()
}

// MarketOrderRequest specifies the parameters that may be set when creating a Market Order.
type MarketOrderRequest struct {
	Type             OrderType          `json:"type" default:"MARKET"`
	Instrument       InstrumentName     `json:"instrument"`
	Units            DecimalNumber      `json:"units"`
	TimeInForce      TimeInForce        `json:"timeInForce" default:"FOK"`
	PriceBound       *PriceValue        `json:"priceBound,omitempty"`
	PositionFill     OrderPositionFill  `json:"positionFill" default:"DEFAULT"`
	ClientExtensions *ClientExtensions  `json:"clientExtensions,omitempty"`
	TakeProfitOnFill *TakeProfitDetails `json:"takeProfitOnFill,omitempty"`
	StopLossOnFill   *StopLossDetails   `json:"stopLossOnFill,omitempty"`
}

// LimitOrderRequest specifies the parameters that may be set when creating a Limit Order.
type LimitOrderRequest struct {
	Type             OrderType             `json:"type" default:"LIMIT"`
	Instrument       InstrumentName        `json:"instrument"`
	Units            DecimalNumber         `json:"units"`
	Price            PriceValue            `json:"price"`
	TimeInForce      TimeInForce           `json:"timeInForce" default:"GTC"`
	GtdTime          *DateTime             `json:"gtdTime,omitempty"`
	PositionFill     OrderPositionFill     `json:"positionFill" default:"DEFAULT"`
	TriggerCondition OrderTriggerCondition `json:"triggerCondition" default:"DEFAULT"`
	ClientExtensions *ClientExtensions     `json:"clientExtensions,omitempty"`
	TakeProfitOnFill *TakeProfitDetails    `json:"takeProfitOnFill,omitempty"`
	StopLossOnFill   *StopLossDetails      `json:"stopLossOnFill,omitempty"`
}

func (MarketOrderRequest) isOrderRequest() {}
func (LimitOrderRequest) isOrderRequest()  {}

// Transaction carries the fields shared by every Transaction type plus the
// order and fill fields most callers inspect.
type Transaction struct {
	ID           TransactionID  `json:"id"`
	Time         DateTime       `json:"time"`
	UserID       int64          `json:"userID"`
	AccountID    AccountID      `json:"accountID"`
	BatchID      TransactionID  `json:"batchID"`
	RequestID    string         `json:"requestID,omitempty"`
	Type         string         `json:"type"`
	Instrument   InstrumentName `json:"instrument,omitempty"`
	Units        DecimalNumber  `json:"units,omitempty"`
	Price        PriceValue     `json:"price,omitempty"`
	OrderID      OrderID        `json:"orderID,omitempty"`
	Reason       string         `json:"reason,omitempty"`
	RejectReason string         `json:"rejectReason,omitempty"`
}

// TradeState is the current state of the Trade.
type TradeState string

const (
	TradeStateOpen               TradeState = "OPEN"
	TradeStateClosed             TradeState = "CLOSED"
	TradeStateCloseWhenTradeable TradeState = "CLOSE_WHEN_TRADEABLE"
)

// Trade is the specification of a Trade within an Account.
type Trade struct {
	ID               TradeID           `json:"id"`
	Instrument       InstrumentName    `json:"instrument"`
	Price            PriceValue        `json:"price"`
	OpenTime         DateTime          `json:"openTime"`
	State            TradeState        `json:"state"`
	InitialUnits     DecimalNumber     `json:"initialUnits"`
	CurrentUnits     DecimalNumber     `json:"currentUnits"`
	RealizedPL       AccountUnits      `json:"realizedPL"`
	UnrealizedPL     *AccountUnits     `json:"unrealizedPL,omitempty"`
	MarginUsed       *AccountUnits     `json:"marginUsed,omitempty"`
	Financing        *AccountUnits     `json:"financing,omitempty"`
	CloseTime        *DateTime         `json:"closeTime,omitempty"`
	ClientExtensions *ClientExtensions `json:"clientExtensions,omitempty"`
}
