package api

import (
	"bytes"
	"encoding/json"
	"strings"
)

// OptionalString decodes fields the service reports either as a string or as false when unset.
type OptionalString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *OptionalString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("false")), bytes.Equal(b, []byte("null")):
		*s = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = OptionalString(v)
		return nil
	default:
		*s = OptionalString(strings.Trim(string(b), `"`))
		return nil
	}
}

type Balance struct {
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

type Price struct {
	Prefix      string  `json:"prefix"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
}

type Timezone struct {
	Unixtime int64  `json:"unixtime"`
	Datetime string `json:"datetime"`
	Timezone string `json:"timezone"`
}

// Tariff describes the current price plan.
type Tariff struct {
	TariffID              int     `json:"tariff_id"`
	TariffName            string  `json:"tariff_name"`
	IsActive              bool    `json:"is_active"`
	Cost                  float64 `json:"cost"`
	Currency              string  `json:"currency"`
	UsedSeconds           int     `json:"used_seconds"`
	UsedSecondsMobile     int     `json:"used_seconds_mobile"`
	UsedSecondsFix        int     `json:"used_seconds_fix"`
	TariffIDForNextPeriod int     `json:"tariff_id_for_next_period"`
	TariffForNextPeriod   string  `json:"tariff_for_next_period"`
}

type RequestCallback struct {
	From string `json:"from"`
	To   string `json:"to"`
	Time int64  `json:"time"`
}

type SIP struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Lines       int    `json:"lines"`
}

type SIPStatus struct {
	SIP      string `json:"sip"`
	IsOnline string `json:"is_online"`
}

// Redirection is the call forwarding state of a SIP number.
type Redirection struct {
	SIPID            string `json:"sip_id"`
	Status           string `json:"status"`
	Condition        string `json:"condition"`
	Destination      string `json:"destination"`
	DestinationValue string `json:"destination_value"`
}

// DirectNumber is a purchased virtual phone number. Fields marked common, revenue or rufree are
// only populated for those number types.
type DirectNumber struct {
	Number      string         `json:"number"`
	Status      string         `json:"status"`
	Country     string         `json:"country"`
	Description string         `json:"description"`
	NumberName  OptionalString `json:"number_name"`
	SIP         OptionalString `json:"sip"`
	SIPName     OptionalString `json:"sip_name"`
	StartDate   string         `json:"start_date"`
	StopDate    string         `json:"stop_date"`
	MonthlyFee  float64        `json:"monthly_fee"`
	Currency    string         `json:"currency"`
	Channels    int            `json:"channels"`
	Minutes     int            `json:"minutes"`
	Autorenew   string         `json:"autorenew"`
	IsOnTest    string         `json:"is_on_test"`
	Type        string         `json:"type"`
}

type PBXInternal struct {
	PBXID   int   `json:"pbx_id"`
	Numbers []int `json:"numbers"`
}

type PBXStatus struct {
	PBXID    int    `json:"pbx_id"`
	Number   int    `json:"number"`
	IsOnline string `json:"is_online"`
}

// PBXInfo describes a PBX extension number.
type PBXInfo struct {
	PBXID               int            `json:"pbx_id"`
	Number              int            `json:"number"`
	Name                string         `json:"name"`
	CallerID            string         `json:"caller_id"`
	CallerIDAppChange   string         `json:"caller_id_app_change"`
	CallerIDByDirection string         `json:"caller_id_by_direction"`
	Lines               string         `json:"lines"`
	IPRestriction       OptionalString `json:"ip_restriction"`
	RecordStore         OptionalString `json:"record_store"`
	RecordEmail         OptionalString `json:"record_email"`
}

type PBXRecordRequest struct {
	Link         string   `json:"link"`
	Links        []string `json:"links"`
	LifetimeTill string   `json:"lifetime_till"`
}

// PBXRedirection is the call forwarding state of a PBX extension number.
type PBXRedirection struct {
	CurrentStatus     string `json:"current_status"`
	PBXID             int    `json:"pbx_id"`
	PBXName           string `json:"pbx_name"`
	Type              string `json:"type"`
	Destination       string `json:"destination"`
	Condition         string `json:"condition"`
	VoicemailGreeting string `json:"voicemail_greeting,omitempty"`
	GreetingFile      string `json:"greeting_file,omitempty"`
	SetCallerID       string `json:"set_caller_id,omitempty"`
}

// Stat is a single call in the overall statistics.
type Stat struct {
	ID          string  `json:"id"`
	SIP         string  `json:"sip"`
	CallStart   string  `json:"callstart"`
	Description string  `json:"description"`
	Disposition string  `json:"disposition"`
	BillSeconds int     `json:"billseconds"`
	Cost        float64 `json:"cost"`
	BillCost    float64 `json:"billcost"`
	Currency    string  `json:"currency"`
	From        string  `json:"from"`
	To          string  `json:"to"`
}

type Statistics struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Stats []Stat `json:"stats"`
}

// PBXStat is a single call in the PBX statistics.
type PBXStat struct {
	SIP         string `json:"sip"`
	CallStart   string `json:"callstart"`
	CLID        string `json:"clid"`
	Destination string `json:"destination"`
	Disposition string `json:"disposition"`
	Seconds     int    `json:"seconds"`
	IsRecorded  bool   `json:"is_recorded"`
	PBXCallID   string `json:"pbx_call_id"`
}

type PBXStatistics struct {
	Start   string    `json:"start"`
	End     string    `json:"end"`
	Version int       `json:"version"`
	Stats   []PBXStat `json:"stats"`
}

type IncomingCallsStatistics struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Stats []Stat `json:"stats"`
}

type SIPCaller struct {
	SIP         string `json:"sip"`
	NewCallerID string `json:"new_caller_id"`
}

type SIPRedirectionStatus struct {
	SIP           string `json:"sip"`
	CurrentStatus string `json:"current_status"`
}

type PBXRecording struct {
	InternalNumber    string `json:"internal_number"`
	Recording         string `json:"recording"`
	Email             string `json:"email"`
	SpeechRecognition string `json:"speech_recognition"`
}

// SMS reports how many messages the text was split into.
type SMS struct {
	Messages int     `json:"messages"`
	Cost     float64 `json:"cost"`
	Currency string  `json:"currency"`
}

type NumberLookup struct {
	MCC              string `json:"mcc"`
	MNC              string `json:"mnc"`
	MCCName          string `json:"mccName"`
	MNCName          string `json:"mncName"`
	Ported           bool   `json:"ported"`
	Roaming          bool   `json:"roaming"`
	ErrorDescription string `json:"errorDescription"`
	Status           string `json:"status"`
}

type Phrase struct {
	Channel   int     `json:"channel"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Phrase    string  `json:"phrase"`
}

type Word struct {
	Channel    int     `json:"channel"`
	StartTime  float64 `json:"startTime"`
	EndTime    float64 `json:"endTime"`
	Word       string  `json:"word"`
	Confidence float64 `json:"confidence"`
}

type SpeechRecognition struct {
	Lang              string   `json:"lang"`
	RecognitionStatus string   `json:"recognitionStatus"`
	OtherLangs        []string `json:"otherLangs"`
	Phrases           []Phrase `json:"phrases"`
	Words             []Word   `json:"words"`
}

type WebRTCKey struct {
	Key string `json:"key"`
}
