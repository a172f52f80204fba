package api

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// RequestCallback asks the service to connect from and to. from may be a phone or SIP number, a
// PBX extension or a PBX scenario and is sent as is. sip selects the line used for the call and
// is optional. A predicted callback calls to first and only connects from once it answers.
func (a *API) RequestCallback(ctx context.Context, from, to, sip string, predicted bool) (*RequestCallback, error) {
	if from == "" {
		return nil, errors.New("missing callback origin")
	}
	t, err := FilterNumber(to)
	if err != nil {
		return nil, err
	}
	p := new(params).add("from", from).add("to", t)
	if sip != "" {
		s, err := FilterNumber(sip)
		if err != nil {
			return nil, err
		}
		p.add("sip", s)
	}
	if predicted {
		p.add("predicted", true)
	}
	return requestInto[RequestCallback](ctx, a, "request/callback", p.Params, get)
}

// SendSMS sends message to one or more numbers. callerID must be one of the confirmed numbers of
// the account and is optional.
func (a *API) SendSMS(ctx context.Context, to []string, message, callerID string) (*SMS, error) {
	if len(to) == 0 {
		return nil, errors.Wrap(ErrWrongNumberFormat, "no recipients")
	}
	if message == "" {
		return nil, errors.New("missing message")
	}
	numbers, err := filterNumbers(to...)
	if err != nil {
		return nil, err
	}
	p := new(params).
		add("number", strings.Join(numbers, ",")).
		add("message", message).
		addString("caller_id", callerID)
	return requestInto[SMS](ctx, a, "sms/send", p.Params, post)
}

// StartSpeechRecognition queues speech recognition of a recorded call. lang is optional.
func (a *API) StartSpeechRecognition(ctx context.Context, callID, lang string) (bool, error) {
	if callID == "" {
		return false, ErrMissingCallID
	}
	var out struct {
		Status string `json:"status"`
	}
	p := new(params).add("call_id", callID).addString("lang", lang)
	if err := a.request(ctx, "speech_recognition", p.Params, put, &out); err != nil {
		return false, err
	}
	return out.Status == "success", nil
}

// GetSpeechRecognitionResult returns the recognised phrases, or words when returnWords is set.
func (a *API) GetSpeechRecognitionResult(ctx context.Context, callID, lang string, returnWords, returnAlternatives bool) (*SpeechRecognition, error) {
	if callID == "" {
		return nil, ErrMissingCallID
	}
	ret := "phrases"
	if returnWords {
		ret = "words"
	}
	alternatives := 0
	if returnAlternatives {
		alternatives = 1
	}
	p := new(params).
		add("call_id", callID).
		add("return", ret).
		add("alternatives", alternatives).
		addString("lang", lang)
	return requestInto[SpeechRecognition](ctx, a, "speech_recognition", p.Params, get)
}
