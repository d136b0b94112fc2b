package v20

import (
	"context"
	"net/http"
	"net/url"
)

type createOrderBody struct {
	Order OrderRequest `json:"order"`
}

// CreateOrderResponse is returned by POST /v3/accounts/{accountID}/orders
type CreateOrderResponse struct {
	OrderCreateTransaction Transaction     `json:"orderCreateTransaction"`
	OrderFillTransaction   *Transaction    `json:"orderFillTransaction,omitempty"`
	OrderCancelTransaction *Transaction    `json:"orderCancelTransaction,omitempty"`
	RelatedTransactionIDs  []TransactionID `json:"relatedTransactionIDs"`
	LastTransactionID      TransactionID   `json:"lastTransactionID"`
}

// CancelOrderResponse is returned by PUT /v3/accounts/{accountID}/orders/{orderSpecifier}/cancel
type CancelOrderResponse struct {
	OrderCancelTransaction Transaction     `json:"orderCancelTransaction"`
	RelatedTransactionIDs  []TransactionID `json:"relatedTransactionIDs"`
	LastTransactionID      TransactionID   `json:"lastTransactionID"`
}

// OpenTradesResponse is returned by GET /v3/accounts/{accountID}/openTrades
type OpenTradesResponse struct {
	Trades            []Trade       `json:"trades"`
	LastTransactionID TransactionID `json:"lastTransactionID"`
}

// CreateOrder creates an Order. Documented defaults of the request, such as
// the order type, are filled in before sending. Order creation is never
// retried.
func (c *Client) CreateOrder(ctx context.Context, accountID AccountID, order OrderRequest) (*CreateOrderResponse, error) {
	var out CreateOrderResponse
	if err := c.do(ctx, http.MethodPost, accountPath(accountID, "/orders"), nil, createOrderBody{Order: order}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelOrder cancels a pending Order. The specifier is an OrderID or a
// client ID prefixed with "@".
func (c *Client) CancelOrder(ctx context.Context, accountID AccountID, orderSpecifier string) (*CancelOrderResponse, error) {
	var out CancelOrderResponse
	path := accountPath(accountID, "/orders/", url.PathEscape(orderSpecifier), "/cancel")
	if err := c.do(ctx, http.MethodPut, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OpenTrades lists the open Trades of an Account
func (c *Client) OpenTrades(ctx context.Context, accountID AccountID) ([]Trade, error) {
	var out OpenTradesResponse
	if err := c.do(ctx, http.MethodGet, accountPath(accountID, "/openTrades"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Trades, nil
}
