package api

import (
	"context"

	"github.com/pkg/errors"
)

// GetBalance returns the account balance.
func (a *API) GetBalance(ctx context.Context) (*Balance, error) {
	return requestInto[Balance](ctx, a, "info/balance", nil, get)
}

// GetPrice returns the per-minute rate for calls to number under the current price plan.
// callerID is optional.
func (a *API) GetPrice(ctx context.Context, number, callerID string) (*Price, error) {
	n, err := FilterNumber(number)
	if err != nil {
		return nil, err
	}
	p := new(params).add("number", n)
	if callerID != "" {
		c, err := FilterNumber(callerID)
		if err != nil {
			return nil, err
		}
		p.add("caller_id", c)
	}
	info, err := requestInfo[Price](ctx, a, "info/price", p.Params, get)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GetTimezone returns the account timezone.
func (a *API) GetTimezone(ctx context.Context) (*Timezone, error) {
	return requestInto[Timezone](ctx, a, "info/timezone", nil, get)
}

// GetTariff returns the current price plan.
func (a *API) GetTariff(ctx context.Context) (*Tariff, error) {
	info, err := requestInfo[Tariff](ctx, a, "tariff", nil, get)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GetDirectNumbers lists the purchased virtual phone numbers.
func (a *API) GetDirectNumbers(ctx context.Context) ([]DirectNumber, error) {
	return requestInfo[[]DirectNumber](ctx, a, "direct_numbers", nil, get)
}

// GetWebRTCKey returns a key for the WebRTC widget of a SIP login or PBX extension login.
func (a *API) GetWebRTCKey(ctx context.Context, sipLogin string) (*WebRTCKey, error) {
	if sipLogin == "" {
		return nil, errors.New("missing sip login")
	}
	return requestInto[WebRTCKey](ctx, a, "webrtc/get_key", new(params).add("sip", sipLogin).Params, get)
}

// NumberLookup returns carrier information for a single number.
func (a *API) NumberLookup(ctx context.Context, number string) (*NumberLookup, error) {
	n, err := FilterNumber(number)
	if err != nil {
		return nil, err
	}
	info, err := requestInfo[NumberLookup](ctx, a, "info/number_lookup", new(params).add("numbers", n).Params, post)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// NumberLookupMultiple starts a lookup for several numbers. Results are delivered
// asynchronously by the service, so only the acceptance is reported. Entries without any
// digit are skipped.
func (a *API) NumberLookupMultiple(ctx context.Context, numbers []string) error {
	filtered := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if f, err := FilterNumber(n); err == nil {
			filtered = append(filtered, f)
		}
	}
	if len(filtered) == 0 {
		return errors.Wrap(ErrWrongNumberFormat, "no valid numbers")
	}
	return a.request(ctx, "info/number_lookup", new(params).add("numbers", filtered).Params, post, nil)
}
