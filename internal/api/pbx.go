package api

import (
	"context"
	"slices"

	"github.com/pkg/errors"
)

// RecordingStatus values accepted by SetPBXRecording.
const (
	RecordingOn       = "on"
	RecordingOff      = "off"
	RecordingOnEmail  = "on_email"
	RecordingOffEmail = "off_email"
	RecordingOnStore  = "on_store"
	RecordingOffStore = "off_store"
)

// Speech recognition modes accepted by SetPBXRecording.
const (
	SpeechRecognitionAll      = "all"
	SpeechRecognitionOptional = "optional"
	SpeechRecognitionOff      = "off"
)

// Voicemail greetings accepted by SetPBXVoicemailRedirection.
const (
	GreetingNone     = "no"
	GreetingStandard = "standart"
	GreetingOwn      = "own"
)

const (
	minRecordLifetime = 180
	maxRecordLifetime = 5184000
)

var recordingStatuses = []string{
	RecordingOn, RecordingOff, RecordingOnEmail, RecordingOffEmail, RecordingOnStore, RecordingOffStore,
}

// GetPBXInternal lists the PBX extension numbers.
func (a *API) GetPBXInternal(ctx context.Context) (*PBXInternal, error) {
	return requestInto[PBXInternal](ctx, a, "pbx/internal", nil, get)
}

// GetPBXStatus returns the online status of a PBX extension number.
func (a *API) GetPBXStatus(ctx context.Context, pbxID string) (*PBXStatus, error) {
	id, err := FilterNumber(pbxID)
	if err != nil {
		return nil, err
	}
	return requestInto[PBXStatus](ctx, a, "pbx/internal/"+id+"/status", nil, get)
}

// GetPBXInfo describes a PBX extension number.
func (a *API) GetPBXInfo(ctx context.Context, pbxID string) (*PBXInfo, error) {
	id, err := FilterNumber(pbxID)
	if err != nil {
		return nil, err
	}
	return requestInto[PBXInfo](ctx, a, "pbx/internal/"+id+"/info", nil, get)
}

// GetPBXRecord requests download links for a call recording, identified by callID or pbxCallID.
// lifetime is the link lifetime in seconds; zero leaves the service default (1800).
func (a *API) GetPBXRecord(ctx context.Context, callID, pbxCallID string, lifetime int) (*PBXRecordRequest, error) {
	if callID == "" && pbxCallID == "" {
		return nil, ErrMissingCallID
	}
	if lifetime != 0 && (lifetime < minRecordLifetime || lifetime > maxRecordLifetime) {
		return nil, errors.Errorf("lifetime must be between %d and %d seconds", minRecordLifetime, maxRecordLifetime)
	}
	p := new(params).addString("call_id", callID).addString("pbx_call_id", pbxCallID).addInt("lifetime", lifetime)
	return requestInto[PBXRecordRequest](ctx, a, "pbx/record/request", p.Params, get)
}

// GetPBXRedirection returns the call forwarding of a PBX extension number.
func (a *API) GetPBXRedirection(ctx context.Context, pbxNumber string) (*PBXRedirection, error) {
	n, err := FilterNumber(pbxNumber)
	if err != nil {
		return nil, err
	}
	return requestInto[PBXRedirection](ctx, a, "pbx/redirection", new(params).add("pbx_number", n).Params, get)
}

// SetPBXRecording changes call recording of a PBX extension number. email (up to three addresses,
// comma separated) and speechRecognition are optional; speechRecognition is ignored when
// recording is being switched off.
func (a *API) SetPBXRecording(ctx context.Context, pbxID, status, email, speechRecognition string) (*PBXRecording, error) {
	id, err := FilterNumber(pbxID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(recordingStatuses, status) {
		return nil, errors.Errorf("unsupported recording status %q", status)
	}
	p := new(params).add("id", id).add("status", status).addString("email", email)
	if status != RecordingOff && status != RecordingOffStore {
		p.addString("speech_recognition", speechRecognition)
	}
	return requestInto[PBXRecording](ctx, a, "pbx/internal/recording", p.Params, put)
}

// SetPBXRedirectionOff turns call forwarding of a PBX extension number off.
func (a *API) SetPBXRedirectionOff(ctx context.Context, pbxNumber string) (*PBXRedirection, error) {
	n, err := FilterNumber(pbxNumber)
	if err != nil {
		return nil, err
	}
	p := new(params).add("pbx_number", n).add("status", "off")
	return requestInto[PBXRedirection](ctx, a, "pbx/redirection", p.Params, post)
}

// SetPBXPhoneRedirection forwards calls of a PBX extension number to a phone, always or on no answer.
func (a *API) SetPBXPhoneRedirection(ctx context.Context, pbxNumber, destination string, always, setCallerID bool) (*PBXRedirection, error) {
	nums, err := filterNumbers(pbxNumber, destination)
	if err != nil {
		return nil, err
	}
	p := new(params).
		add("pbx_number", nums[0]).
		add("type", "phone").
		add("condition", condition(always)).
		add("destination", nums[1]).
		add("set_caller_id", onOff(setCallerID))
	return requestInto[PBXRedirection](ctx, a, "pbx/redirection", p.Params, post)
}

// SetPBXVoicemailRedirection forwards calls of a PBX extension number to voicemail sent to the
// email address in destination. Uploading an own greeting file is not supported.
func (a *API) SetPBXVoicemailRedirection(ctx context.Context, pbxNumber, destination string, always bool, greeting string) (*PBXRedirection, error) {
	n, err := FilterNumber(pbxNumber)
	if err != nil {
		return nil, err
	}
	switch greeting {
	case GreetingNone, GreetingStandard, GreetingOwn:
	default:
		return nil, errors.Errorf("unsupported voicemail greeting %q", greeting)
	}
	p := new(params).
		add("pbx_number", n).
		add("type", "voicemail").
		add("condition", condition(always)).
		add("destination", destination).
		add("voicemail_greeting", greeting)
	return requestInto[PBXRedirection](ctx, a, "pbx/redirection", p.Params, post)
}

func condition(always bool) string {
	if always {
		return "always"
	}
	return "noanswer"
}
