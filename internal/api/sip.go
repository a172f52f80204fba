package api

import (
	"context"
)

// GetSIPs lists the SIP numbers of the account.
func (a *API) GetSIPs(ctx context.Context) ([]SIP, error) {
	var out struct {
		SIPs []SIP `json:"sips"`
	}
	if err := a.request(ctx, "sip", nil, get, &out); err != nil {
		return nil, err
	}
	return out.SIPs, nil
}

// GetSIPStatus returns the online status of a SIP number.
func (a *API) GetSIPStatus(ctx context.Context, sipID string) (*SIPStatus, error) {
	id, err := FilterNumber(sipID)
	if err != nil {
		return nil, err
	}
	return requestInto[SIPStatus](ctx, a, "sip/"+id+"/status", nil, get)
}

// GetSIPRedirection returns the call forwarding of every SIP number, or of sipID only when set.
func (a *API) GetSIPRedirection(ctx context.Context, sipID string) ([]Redirection, error) {
	p := new(params)
	if sipID != "" {
		id, err := FilterNumber(sipID)
		if err != nil {
			return nil, err
		}
		p.add("id", id)
	}
	return requestInfo[[]Redirection](ctx, a, "sip/redirection", p.Params, get)
}

// SetSIPCallerID changes the CallerID of a SIP number to a confirmed or purchased number.
func (a *API) SetSIPCallerID(ctx context.Context, sipID, number string) (*SIPCaller, error) {
	nums, err := filterNumbers(sipID, number)
	if err != nil {
		return nil, err
	}
	p := new(params).add("id", nums[0]).add("number", nums[1])
	return requestInto[SIPCaller](ctx, a, "sip/callerid", p.Params, put)
}

// SetSIPRedirectionStatus switches call forwarding of a SIP number on or off.
func (a *API) SetSIPRedirectionStatus(ctx context.Context, sipID string, on bool) (*SIPRedirectionStatus, error) {
	id, err := FilterNumber(sipID)
	if err != nil {
		return nil, err
	}
	p := new(params).add("id", id).add("status", onOff(on))
	return requestInto[SIPRedirectionStatus](ctx, a, "sip/redirection", p.Params, put)
}

// SetSIPRedirectionNumber forwards calls of a SIP number to a phone number.
func (a *API) SetSIPRedirectionNumber(ctx context.Context, sipID, number string) (*Redirection, error) {
	nums, err := filterNumbers(sipID, number)
	if err != nil {
		return nil, err
	}
	p := new(params).add("id", nums[0]).add("type", "phone").add("number", nums[1])
	return requestInto[Redirection](ctx, a, "sip/redirection", p.Params, put)
}
