package v20

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// maxStreamLine bounds a single message of the pricing stream
const maxStreamLine = 1 << 20

// PricingResponse is returned by GET /v3/accounts/{accountID}/pricing
type PricingResponse struct {
	Prices []ClientPrice `json:"prices"`
	Time   DateTime      `json:"time"`
}

// Pricing gets pricing information for the given instruments
func (c *Client) Pricing(ctx context.Context, accountID AccountID, instruments ...InstrumentName) (*PricingResponse, error) {
	if len(instruments) == 0 {
		return nil, errors.New("at least one instrument is required")
	}

	var out PricingResponse
	query := url.Values{"instruments": {joinInstruments(instruments)}}
	if err := c.do(ctx, http.MethodGet, accountPath(accountID, "/pricing"), query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StreamPricing streams prices for the given instruments until ctx is done,
// the server closes the stream or handler returns an error. Each message is
// a *ClientPrice or a *PricingHeartbeat; unknown message types are skipped.
// A server-closed stream returns nil and a cancelled one ctx.Err().
func (c *Client) StreamPricing(ctx context.Context, accountID AccountID, instruments []InstrumentName, handler func(PricingStreamMessage) error) error {
	if len(instruments) == 0 {
		return errors.New("at least one instrument is required")
	}

	query := url.Values{"instruments": {joinInstruments(instruments)}}
	endpoint := c.streamURL + apiVersion + accountPath(accountID, "/pricing/stream") + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.stream.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to open pricing stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return newAPIError(resp.StatusCode, data)
	}

	c.logger.Info("pricing stream opened",
		zap.String("account", string(accountID)),
		zap.Int("instruments", len(instruments)))

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		msg, err := decodePricingMessage(line)
		if err != nil {
			return err
		}
		if msg == nil {
			c.logger.Debug("skipping unknown pricing stream message", zap.ByteString("line", line))
			continue
		}

		if err := handler(msg); err != nil {
			return err
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read pricing stream: %w", err)
	}
	return nil
}

// decodePricingMessage decodes one stream line; nil without error means an
// unknown message type.
func decodePricingMessage(line []byte) (PricingStreamMessage, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(line, &head); err != nil {
		return nil, fmt.Errorf("failed to decode pricing stream message: %w", err)
	}

	var msg PricingStreamMessage
	switch head.Type {
	case "PRICE":
		msg = &ClientPrice{}
	case "HEARTBEAT":
		msg = &PricingHeartbeat{}
	default:
		return nil, nil
	}

	if err := json.Unmarshal(line, msg); err != nil {
		return nil, fmt.Errorf("failed to decode %s message: %w", head.Type, err)
	}
	return msg, nil
}
