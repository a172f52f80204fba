package webhook

import (
	"slices"
)

// Kind is the value of the event field of a webhook delivery.
type Kind string

const (
	KindStart    Kind = "NOTIFY_START"
	KindInternal Kind = "NOTIFY_INTERNAL"
	KindAnswer   Kind = "NOTIFY_ANSWER"
	KindEnd      Kind = "NOTIFY_END"
	KindOutStart Kind = "NOTIFY_OUT_START"
	KindOutEnd   Kind = "NOTIFY_OUT_END"
	KindRecord   Kind = "NOTIFY_RECORD"
	KindIVR      Kind = "NOTIFY_IVR"
)

// Kinds lists every recognised event kind.
var Kinds = []Kind{
	KindStart, KindInternal, KindAnswer, KindEnd, KindOutStart, KindOutEnd, KindRecord, KindIVR,
}

// Valid reports whether k is a recognised event kind.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds, k)
}

// SignedFields returns the payload fields whose values, concatenated in order, form the signing
// input of k. It returns nil for an unrecognised kind.
func (k Kind) SignedFields() []string {
	switch k {
	case KindStart, KindInternal, KindEnd, KindIVR:
		return []string{"caller_id", "called_did", "call_start"}
	case KindAnswer:
		return []string{"caller_id", "destination", "call_start"}
	case KindOutStart, KindOutEnd:
		return []string{"internal", "destination", "call_start"}
	case KindRecord:
		return []string{"pbx_call_id", "call_id_with_rec"}
	}
	return nil
}

// Event is one of the eight webhook variants. The set is closed: only this package implements it.
type Event interface {
	Kind() Kind
	// CallID returns the permanent PBX call ID shared by every event of the same call.
	CallID() string
	signingInput() string
}

// Start is sent when an incoming call reaches the PBX.
type Start struct {
	CallStart string `mapstructure:"call_start" json:"call_start"`
	PBXCallID string `mapstructure:"pbx_call_id" json:"pbx_call_id"`
	CallerID  string `mapstructure:"caller_id" json:"caller_id"`
	CalledDID string `mapstructure:"called_did" json:"called_did"`
}

func (e *Start) Kind() Kind { return KindStart }
func (e *Start) CallID() string { return e.PBXCallID }
func (e *Start) signingInput() string { return e.CallerID + e.CalledDID + e.CallStart }

// Internal is sent when an incoming call is routed to an extension.
type Internal struct {
	CallStart string `mapstructure:"call_start" json:"call_start"`
	PBXCallID string `mapstructure:"pbx_call_id" json:"pbx_call_id"`
	CallerID  string `mapstructure:"caller_id" json:"caller_id"`
	CalledDID string `mapstructure:"called_did" json:"called_did"`
	Internal  string `mapstructure:"internal" json:"internal"`
}

func (e *Internal) Kind() Kind { return KindInternal }
func (e *Internal) CallID() string { return e.PBXCallID }
func (e *Internal) signingInput() string { return e.CallerID + e.CalledDID + e.CallStart }

// Answer is sent when a call is answered.
type Answer struct {
	CallerID    string `mapstructure:"caller_id" json:"caller_id"`
	Destination string `mapstructure:"destination" json:"destination"`
	CallStart   string `mapstructure:"call_start" json:"call_start"`
	PBXCallID   string `mapstructure:"pbx_call_id" json:"pbx_call_id"`
	Internal    string `mapstructure:"internal" json:"internal"`
}

func (e *Answer) Kind() Kind { return KindAnswer }
func (e *Answer) CallID() string { return e.PBXCallID }
func (e *Answer) signingInput() string { return e.CallerID + e.Destination + e.CallStart }

// End is sent when an incoming call finishes.
type End struct {
	CallStart     string `mapstructure:"call_start" json:"call_start"`
	PBXCallID     string `mapstructure:"pbx_call_id" json:"pbx_call_id"`
	CallerID      string `mapstructure:"caller_id" json:"caller_id"`
	CalledDID     string `mapstructure:"called_did" json:"called_did"`
	Internal      string `mapstructure:"internal" json:"internal"`
	Duration      string `mapstructure:"duration" json:"duration"`
	Disposition   string `mapstructure:"disposition" json:"disposition"`
	StatusCode    string `mapstructure:"status_code" json:"status_code"`
	IsRecorded    string `mapstructure:"is_recorded" json:"is_recorded"`
	CallIDWithRec string `mapstructure:"call_id_with_rec" json:"call_id_with_rec"`
}

func (e *End) Kind() Kind { return KindEnd }
func (e *End) CallID() string { return e.PBXCallID }
func (e *End) signingInput() string { return e.CallerID + e.CalledDID + e.CallStart }

// Recorded reports whether the call was recorded.
func (e *End) Recorded() bool { return e.IsRecorded == "1" }

// OutStart is sent when an outgoing call starts.
type OutStart struct {
	CallStart   string `mapstructure:"call_start" json:"call_start"`
	PBXCallID   string `mapstructure:"pbx_call_id" json:"pbx_call_id"`
	Internal    string `mapstructure:"internal" json:"internal"`
	Destination string `mapstructure:"destination" json:"destination"`
}

func (e *OutStart) Kind() Kind { return KindOutStart }
func (e *OutStart) CallID() string { return e.PBXCallID }
func (e *OutStart) signingInput() string { return e.Internal + e.Destination + e.CallStart }

// OutEnd is sent when an outgoing call finishes.
type OutEnd struct {
	CallStart     string `mapstructure:"call_start" json:"call_start"`
	PBXCallID     string `mapstructure:"pbx_call_id" json:"pbx_call_id"`
	CallerID      string `mapstructure:"caller_id" json:"caller_id"`
	Destination   string `mapstructure:"destination" json:"destination"`
	Internal      string `mapstructure:"internal" json:"internal"`
	Duration      string `mapstructure:"duration" json:"duration"`
	Disposition   string `mapstructure:"disposition" json:"disposition"`
	StatusCode    string `mapstructure:"status_code" json:"status_code"`
	IsRecorded    string `mapstructure:"is_recorded" json:"is_recorded"`
	CallIDWithRec string `mapstructure:"call_id_with_rec" json:"call_id_with_rec"`
}

func (e *OutEnd) Kind() Kind { return KindOutEnd }
func (e *OutEnd) CallID() string { return e.PBXCallID }
func (e *OutEnd) signingInput() string { return e.Internal + e.Destination + e.CallStart }

// Recorded reports whether the call was recorded.
func (e *OutEnd) Recorded() bool { return e.IsRecorded == "1" }

// Record is sent when a call recording is ready for download.
type Record struct {
	CallIDWithRec string `mapstructure:"call_id_with_rec" json:"call_id_with_rec"`
	PBXCallID     string `mapstructure:"pbx_call_id" json:"pbx_call_id"`
}

func (e *Record) Kind() Kind { return KindRecord }
func (e *Record) CallID() string { return e.PBXCallID }
func (e *Record) signingInput() string { return e.PBXCallID + e.CallIDWithRec }

// IVR is sent when a caller interacts with a voice menu.
type IVR struct {
	CallStart    string    `mapstructure:"call_start" json:"call_start"`
	PBXCallID    string    `mapstructure:"pbx_call_id" json:"pbx_call_id"`
	CallerID     string    `mapstructure:"caller_id" json:"caller_id"`
	CalledDID    string    `mapstructure:"called_did" json:"called_did"`
	IVRSayDigits any       `mapstructure:"ivr_saydigits" json:"ivr_saydigits,omitempty"`
	IVRSayNumber any       `mapstructure:"ivr_saynumber" json:"ivr_saynumber,omitempty"`
	WaitDTMF     *WaitDTMF `mapstructure:"wait_dtmf" json:"wait_dtmf,omitempty"`
}

// WaitDTMF is the result of a voice menu waiting for key presses.
type WaitDTMF struct {
	Name             string `mapstructure:"name" json:"name"`
	Digits           string `mapstructure:"digits" json:"digits"`
	DefaultBehaviour string `mapstructure:"default_behaviour" json:"default_behaviour"`
}

func (e *IVR) Kind() Kind { return KindIVR }
func (e *IVR) CallID() string { return e.PBXCallID }
func (e *IVR) signingInput() string { return e.CallerID + e.CalledDID + e.CallStart }

func newEvent(k Kind) Event {
	switch k {
	case KindStart:
		return new(Start)
	case KindInternal:
		return new(Internal)
	case KindAnswer:
		return new(Answer)
	case KindEnd:
		return new(End)
	case KindOutStart:
		return new(OutStart)
	case KindOutEnd:
		return new(OutEnd)
	case KindRecord:
		return new(Record)
	case KindIVR:
		return new(IVR)
	}
	return nil
}
