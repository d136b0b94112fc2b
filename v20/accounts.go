package v20

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// AccountsResponse is returned by GET /v3/accounts
type AccountsResponse struct {
	Accounts []AccountProperties `json:"accounts"`
}

// AccountSummaryResponse is returned by GET /v3/accounts/{accountID}/summary
type AccountSummaryResponse struct {
	Account           AccountSummary `json:"account"`
	LastTransactionID TransactionID  `json:"lastTransactionID"`
}

// AccountInstrumentsResponse is returned by GET /v3/accounts/{accountID}/instruments
type AccountInstrumentsResponse struct {
	Instruments       []Instrument  `json:"instruments"`
	LastTransactionID TransactionID `json:"lastTransactionID"`
}

// Accounts lists the Accounts the token is authorized to access
func (c *Client) Accounts(ctx context.Context) ([]AccountProperties, error) {
	var out AccountsResponse
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Accounts, nil
}

// AccountSummary gets a summary of an Account
func (c *Client) AccountSummary(ctx context.Context, accountID AccountID) (*AccountSummaryResponse, error) {
	var out AccountSummaryResponse
	if err := c.do(ctx, http.MethodGet, accountPath(accountID, "/summary"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AccountInstruments lists the tradeable instruments of an Account, all of
// them when no instrument is given.
func (c *Client) AccountInstruments(ctx context.Context, accountID AccountID, instruments ...InstrumentName) ([]Instrument, error) {
	var query url.Values
	if len(instruments) > 0 {
		query = url.Values{"instruments": {joinInstruments(instruments)}}
	}

	var out AccountInstrumentsResponse
	if err := c.do(ctx, http.MethodGet, accountPath(accountID, "/instruments"), query, nil, &out); err != nil {
		return nil, err
	}
	return out.Instruments, nil
}

func joinInstruments(instruments []InstrumentName) string {
	names := make([]string, len(instruments))
	for i, name := range instruments {
		names[i] = string(name)
	}
	return strings.Join(names, ",")
}
