package webhook

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/url"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/isometry/zadarma-go/internal/query"
	"github.com/pkg/errors"
)

// ErrUnsupportedContentType is returned by ParseBody for bodies that are neither form nor JSON encoded.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// Payload is the flat field set of a delivery. Bracketed form keys such as wait_dtmf[name] are
// nested as maps.
type Payload map[string]any

// Kind returns the event tag of the payload, or false when there is none.
func (p Payload) Kind() (Kind, bool) {
	v, ok := p["event"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return Kind(s), true
}

// Encode returns the canonical encoding of the payload with keys sorted.
func (p Payload) Encode() string {
	return query.Encode(query.FromMap(p))
}

// ParseForm builds a Payload from decoded form values. Only the first value of a repeated key is kept.
func ParseForm(values url.Values) Payload {
	p := make(Payload, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		setPath(p, formPath(key), vals[0])
	}
	return p
}

// ParseJSON builds a Payload from a JSON object. Numbers keep their exact textual form.
func ParseJSON(body []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, errors.Wrap(err, "failed to decode json payload")
	}
	if p == nil {
		return nil, errors.New("empty json payload")
	}
	return p, nil
}

// ParseBody builds a Payload according to the request content type. An empty content type is
// treated as a form body.
func ParseBody(contentType string, body []byte) (Payload, error) {
	mediaType := "application/x-www-form-urlencoded"
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return nil, errors.Wrapf(ErrUnsupportedContentType, "%q", contentType)
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/json":
		return ParseJSON(body)
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode form payload")
		}
		return ParseForm(values), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedContentType, "%q", mediaType)
	}
}

// Decode converts the payload into the event variant selected by its tag.
func Decode(p Payload) (Event, error) {
	kind, ok := p.Kind()
	if !ok {
		return nil, errors.New("missing event tag")
	}
	event := newEvent(kind)
	if event == nil {
		return nil, errors.Errorf("unknown event %q", kind)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           event,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create payload decoder")
	}
	if err = dec.Decode(map[string]any(p)); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s payload", kind)
	}
	return event, nil
}

func formPath(key string) []string {
	base, rest, ok := strings.Cut(key, "[")
	if !ok || base == "" || !strings.HasSuffix(rest, "]") {
		return []string{key}
	}
	return append([]string{base}, strings.Split(strings.TrimSuffix(rest, "]"), "][")...)
}

func setPath(m map[string]any, path []string, value string) {
	for _, key := range path[:len(path)-1] {
		child, ok := m[key].(map[string]any)
		if !ok {
			child = make(map[string]any)
			m[key] = child
		}
		m = child
	}
	m[path[len(path)-1]] = value
}
