package v20

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

type defaultsFixture struct {
	Kind     string  `default:"PRICE"`
	Count    int64   `default:"500"`
	Enabled  bool    `default:"true"`
	Ratio    float64 `default:"0.5"`
	Alias    *string `default:"primary"`
	Bad      int     `default:"lots"`
	Nested   TakeProfitDetails
	Optional *StopLossDetails
	Items    []PricingHeartbeat
	Plain    string
}

func TestWithDefaults(t *testing.T) {
	in := &defaultsFixture{
		Count:    10,
		Optional: &StopLossDetails{},
		Items:    []PricingHeartbeat{{}, {Type: "CUSTOM"}},
	}

	out := withDefaults(in).(*defaultsFixture)

	primary := "primary"
	want := &defaultsFixture{
		Kind:     "PRICE",
		Count:    10,
		Enabled:  true,
		Ratio:    0.5,
		Alias:    &primary,
		Nested:   TakeProfitDetails{TimeInForce: TimeInForceGtc},
		Optional: &StopLossDetails{TimeInForce: TimeInForceGtc},
		Items:    []PricingHeartbeat{{Type: "HEARTBEAT"}, {Type: "CUSTOM"}},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("withDefaults mismatch (-want +got):\n%s", diff)
	}

	// the input is not modified
	assert.Empty(t, in.Kind)
	assert.Empty(t, in.Optional.TimeInForce)
	assert.Empty(t, in.Items[0].Type)
}

func TestWithDefaults_Values(t *testing.T) {
	out := withDefaults(MarketOrderRequest{Instrument: "EUR_USD"}).(MarketOrderRequest)
	assert.Equal(t, OrderTypeMarket, out.Type)
	assert.Equal(t, TimeInForceFok, out.TimeInForce)
	assert.Equal(t, OrderPositionFillDefault, out.PositionFill)

	// explicit values win
	out = withDefaults(MarketOrderRequest{TimeInForce: TimeInForceIoc}).(MarketOrderRequest)
	assert.Equal(t, TimeInForceIoc, out.TimeInForce)
}

func TestWithDefaults_Passthrough(t *testing.T) {
	assert.Nil(t, withDefaults(nil))

	var nilOrder *LimitOrderRequest
	assert.Nil(t, withDefaults(nilOrder))

	m := map[string]string{"a": "b"}
	assert.Equal(t, m, withDefaults(m))
}
