package server

import (
	"github.com/goccy/go-json"

	"github.com/vango-dev/patchwork/internal/errors"
	"github.com/vango-dev/patchwork/pkg/host"
)

// Frame types.
const (
	FrameHello    = "hello"
	FrameOps      = "ops"
	FrameError    = "error"
	FrameEvent    = "event"
	FrameNavigate = "navigate"
)

// ClientFrame is a frame sent by the client.
type ClientFrame struct {
	Type   string      `json:"type"`
	Handle host.Handle `json:"handle,omitempty"`
	Event  string      `json:"event,omitempty"`
	Value  string      `json:"value,omitempty"`
	Path   string      `json:"path,omitempty"`
}

// ServerFrame is a frame sent to the client.
type ServerFrame struct {
	Type    string      `json:"type"`
	Session string      `json:"session,omitempty"`
	Seq     uint64      `json:"seq,omitempty"`
	Root    host.Handle `json:"root,omitempty"`
	Ops     []host.Op   `json:"ops,omitempty"`
	Path    string      `json:"path,omitempty"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

// DecodeClientFrame parses and validates a client frame.
func DecodeClientFrame(data []byte) (ClientFrame, error) {
	var f ClientFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return f, errors.New(errors.CodeMalformedFrame).Wrap(err)
	}
	switch f.Type {
	case FrameEvent:
		if f.Handle == host.None || f.Event == "" {
			return f, errors.New(errors.CodeMalformedFrame).
				WithDetail("event frame needs handle and event")
		}
	case FrameNavigate:
		if f.Path == "" {
			return f, errors.New(errors.CodeMalformedFrame).
				WithDetail("navigate frame needs path")
		}
	default:
		return f, errors.New(errors.CodeMalformedFrame).
			WithDetail("unknown frame type %q", f.Type)
	}
	return f, nil
}

// EncodeServerFrame serializes f.
func EncodeServerFrame(f ServerFrame) ([]byte, error) {
	return json.Marshal(f)
}

// errorFrame builds an error frame from err.
func errorFrame(err error) ServerFrame {
	e := errors.FromError(err, errors.CodeInternal)
	return ServerFrame{
		Type:    FrameError,
		Code:    e.Code,
		Message: e.Message,
	}
}
