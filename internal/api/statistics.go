package api

import (
	"context"
	"time"
)

// CallType narrows the PBX statistics to one direction.
type CallType string

const (
	CallTypeAny      CallType = ""
	CallTypeIncoming CallType = "in"
	CallTypeOutgoing CallType = "out"
)

// StatisticsFilter selects overall statistics. The service caps the period at one month; a zero
// Start means the start of the current month and a zero End means now. Zero values are omitted.
type StatisticsFilter struct {
	Start, End time.Time
	SIP        string
	CostOnly   bool
	// Type is one of overall (empty), toll or ru495.
	Type  string
	Skip  int
	Limit int
}

// PBXStatisticsFilter selects PBX statistics.
type PBXStatisticsFilter struct {
	Start, End time.Time
	// LegacyFormat asks for the version 1 result format instead of version 2.
	LegacyFormat bool
	CallType     CallType
	Skip         int
	Limit        int
}

// IncomingCallStatisticsFilter selects incoming call statistics.
type IncomingCallStatisticsFilter struct {
	Start, End time.Time
	SIP        string
	Skip       int
	Limit      int
}

// GetStatistics returns the overall call statistics.
func (a *API) GetStatistics(ctx context.Context, f StatisticsFilter) (*Statistics, error) {
	p := new(params).addTime("start", f.Start).addTime("end", f.End)
	if f.SIP != "" {
		sip, err := FilterNumber(f.SIP)
		if err != nil {
			return nil, err
		}
		p.add("sip", sip)
	}
	if f.CostOnly {
		p.add("cost_only", true)
	}
	p.addString("type", f.Type).addInt("skip", f.Skip).addInt("limit", f.Limit)
	return requestInto[Statistics](ctx, a, "statistics", p.Params, get)
}

// GetPBXStatistics returns the PBX call statistics.
func (a *API) GetPBXStatistics(ctx context.Context, f PBXStatisticsFilter) (*PBXStatistics, error) {
	version := 2
	if f.LegacyFormat {
		version = 1
	}
	p := new(params).
		addTime("start", f.Start).
		addTime("end", f.End).
		add("version", version).
		addInt("skip", f.Skip).
		addInt("limit", f.Limit).
		addString("call_type", string(f.CallType))
	return requestInto[PBXStatistics](ctx, a, "statistics/pbx", p.Params, get)
}

// GetCallbackWidgetStatistics returns the CallBack widget statistics, optionally for one widget.
func (a *API) GetCallbackWidgetStatistics(ctx context.Context, start, end time.Time, widgetID string) (*PBXStatistics, error) {
	p := new(params).addTime("start", start).addTime("end", end).addString("widget_id", widgetID)
	return requestInto[PBXStatistics](ctx, a, "statistics/callback_widget", p.Params, get)
}

// GetIncomingCallStatistics returns the incoming call statistics.
func (a *API) GetIncomingCallStatistics(ctx context.Context, f IncomingCallStatisticsFilter) (*IncomingCallsStatistics, error) {
	p := new(params).addTime("start", f.Start).addTime("end", f.End)
	if f.SIP != "" {
		sip, err := FilterNumber(f.SIP)
		if err != nil {
			return nil, err
		}
		p.add("sip", sip)
	}
	p.addInt("skip", f.Skip).addInt("limit", f.Limit)
	return requestInto[IncomingCallsStatistics](ctx, a, "statistics/incoming-calls", p.Params, get)
}
