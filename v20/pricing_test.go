package v20

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pricingStream = `{"type":"PRICE","time":"2016-09-20T15:05:47Z","bids":[{"price":"1.11650","liquidity":10000000}],"asks":[{"price":"1.11670","liquidity":10000000}],"closeoutBid":"1.11650","closeoutAsk":"1.11670","tradeable":true,"instrument":"EUR_USD"}

{"type":"HEARTBEAT","time":"2016-09-20T15:05:50Z"}
{"type":"SURPRISE","time":"2016-09-20T15:05:51Z"}
{"type":"PRICE","time":"2016-09-20T15:05:52Z","instrument":"USD_CAD","tradeable":false,"closeoutBid":"1.31","closeoutAsk":"1.32"}
`

func TestClient_StreamPricing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/accounts/101-004-1234567-001/pricing/stream", r.URL.Path)
		assert.Equal(t, "EUR_USD,USD_CAD", r.URL.Query().Get("instruments"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		fmt.Fprint(w, pricingStream)
	})

	var messages []PricingStreamMessage
	err := c.StreamPricing(context.Background(), testAccount, []InstrumentName{"EUR_USD", "USD_CAD"}, func(msg PricingStreamMessage) error {
		messages = append(messages, msg)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, messages, 3)

	price, ok := messages[0].(*ClientPrice)
	require.True(t, ok, "expected *ClientPrice, got %T", messages[0])
	assert.Equal(t, InstrumentName("EUR_USD"), price.Instrument)
	assert.Equal(t, PriceValue("1.11670"), price.Asks[0].Price)

	heartbeat, ok := messages[1].(*PricingHeartbeat)
	require.True(t, ok, "expected *PricingHeartbeat, got %T", messages[1])
	assert.Equal(t, DateTime("2016-09-20T15:05:50Z"), heartbeat.Time)

	assert.False(t, messages[2].(*ClientPrice).Tradeable)
}

func TestClient_StreamPricing_HandlerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pricingStream)
	})

	stop := errors.New("enough")
	calls := 0
	err := c.StreamPricing(context.Background(), testAccount, []InstrumentName{"EUR_USD"}, func(PricingStreamMessage) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestClient_StreamPricing_Cancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"type":"HEARTBEAT","time":"2016-09-20T15:05:50Z"}`)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	err := c.StreamPricing(ctx, testAccount, []InstrumentName{"EUR_USD"}, func(PricingStreamMessage) error {
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

// countingTransport counts the requests it forwards
type countingTransport struct {
	calls int
}

func (ct *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	ct.calls++
	return http.DefaultTransport.RoundTrip(r)
}

func TestClient_StreamPricing_StreamHTTPClient(t *testing.T) {
	rest := &countingTransport{}
	stream := &countingTransport{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"type":"HEARTBEAT","time":"2016-09-20T15:05:50Z"}`)
	}, WithHTTPClient(&http.Client{Transport: rest}), WithStreamHTTPClient(&http.Client{Transport: stream}))

	err := c.StreamPricing(context.Background(), testAccount, []InstrumentName{"EUR_USD"}, func(PricingStreamMessage) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, stream.calls)
	assert.Equal(t, 0, rest.calls)
}

func TestClient_StreamPricing_Errors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errorMessage":"Insufficient authorization to perform request."}`)
	})

	err := c.StreamPricing(context.Background(), testAccount, []InstrumentName{"EUR_USD"}, func(PricingStreamMessage) error { return nil })
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	err = c.StreamPricing(context.Background(), testAccount, nil, func(PricingStreamMessage) error { return nil })
	assert.Error(t, err)
}

func TestDecodePricingMessage_Malformed(t *testing.T) {
	_, err := decodePricingMessage([]byte(`{"type":`))
	assert.Error(t, err)

	msg, err := decodePricingMessage([]byte(`{"type":"UNKNOWN"}`))
	require.NoError(t, err)
	assert.Nil(t, msg)
}
