package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"coderbridge/internal/problem"
)

// ErrProtocol marks a complete frame whose payload could not be decoded.
var ErrProtocol = errors.New("protocol error")

// Kind tags an envelope with its request or response variant.
type Kind string

const (
	KindCreateWorkspace   Kind = "create_workspace"
	KindGetSolutionSource Kind = "get_solution_source"
	KindAck               Kind = "ack"
	KindStringResult      Kind = "string_result"
	KindFailure           Kind = "failure"
)

// Message is the envelope carried by every frame.
type Message struct {
	Type      Kind            `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     *ErrorInfo      `json:"error,omitempty"`
}

// ErrorInfo carries a failure reported by the peer.
type ErrorInfo struct {
	Message string `json:"message"`
}

// Request is implemented by CreateWorkspace and GetSolutionSource.
type Request interface {
	Kind() Kind
}

// Response is implemented by Ack, StringResult, and Failure.
type Response interface {
	Kind() Kind
}

// CreateWorkspace asks the editor to materialise a problem.
type CreateWorkspace struct {
	Problem problem.Problem
}

// GetSolutionSource asks for the compiled source of a solution class.
type GetSolutionSource struct {
	ClassName string
}

// Ack acknowledges a request without a value.
type Ack struct{}

// StringResult carries a string value.
type StringResult struct {
	Value string
}

// Failure carries the message of an error raised while handling a request.
type Failure struct {
	Message string
}

func (CreateWorkspace) Kind() Kind   { return KindCreateWorkspace }
func (GetSolutionSource) Kind() Kind { return KindGetSolutionSource }
func (Ack) Kind() Kind               { return KindAck }
func (StringResult) Kind() Kind      { return KindStringResult }
func (Failure) Kind() Kind           { return KindFailure }

type classNamePayload struct {
	ClassName string `json:"class_name"`
}

type valuePayload struct {
	Value string `json:"value"`
}

// EncodeProblem serialises a problem payload.
func EncodeProblem(p problem.Problem) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode problem: %w", err)
	}
	return data, nil
}

// DecodeProblem reconstructs a problem payload.
func DecodeProblem(data []byte) (problem.Problem, error) {
	var p problem.Problem
	if len(data) == 0 {
		return p, fmt.Errorf("%w: empty problem payload", ErrProtocol)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return problem.Problem{}, fmt.Errorf("%w: decode problem: %w", ErrProtocol, err)
	}
	return p, nil
}

// EncodeRequest serialises a request envelope.
func EncodeRequest(requestID string, req Request) ([]byte, error) {
	msg := Message{RequestID: requestID}
	var err error
	switch r := req.(type) {
	case CreateWorkspace:
		msg.Type = KindCreateWorkspace
		msg.Data, err = EncodeProblem(r.Problem)
	case GetSolutionSource:
		msg.Type = KindGetSolutionSource
		msg.Data, err = json.Marshal(classNamePayload{ClassName: r.ClassName})
	default:
		return nil, fmt.Errorf("encode request: unsupported type %T", req)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}

// DecodeRequest reconstructs a request envelope. The request id is returned
// whenever the envelope itself parsed, even if the payload did not.
func DecodeRequest(frame []byte) (string, Request, error) {
	msg, err := decodeMessage(frame)
	if err != nil {
		return "", nil, err
	}
	switch msg.Type {
	case KindCreateWorkspace:
		p, err := DecodeProblem(msg.Data)
		if err != nil {
			return msg.RequestID, nil, err
		}
		return msg.RequestID, CreateWorkspace{Problem: p}, nil
	case KindGetSolutionSource:
		var payload classNamePayload
		if err := unmarshalPayload(msg.Data, &payload); err != nil {
			return msg.RequestID, nil, err
		}
		return msg.RequestID, GetSolutionSource{ClassName: payload.ClassName}, nil
	default:
		return msg.RequestID, nil, fmt.Errorf("%w: unknown request type %q", ErrProtocol, msg.Type)
	}
}

// EncodeResponse serialises a response envelope.
func EncodeResponse(requestID string, resp Response) ([]byte, error) {
	msg := Message{RequestID: requestID}
	switch r := resp.(type) {
	case Ack:
		msg.Type = KindAck
	case StringResult:
		msg.Type = KindStringResult
		data, err := json.Marshal(valuePayload{Value: r.Value})
		if err != nil {
			return nil, err
		}
		msg.Data = data
	case Failure:
		msg.Type = KindFailure
		msg.Error = &ErrorInfo{Message: r.Message}
	default:
		return nil, fmt.Errorf("encode response: unsupported type %T", resp)
	}
	return json.Marshal(msg)
}

// DecodeResponse reconstructs a response envelope.
func DecodeResponse(frame []byte) (string, Response, error) {
	msg, err := decodeMessage(frame)
	if err != nil {
		return "", nil, err
	}
	switch msg.Type {
	case KindAck:
		return msg.RequestID, Ack{}, nil
	case KindStringResult:
		var payload valuePayload
		if err := unmarshalPayload(msg.Data, &payload); err != nil {
			return msg.RequestID, nil, err
		}
		return msg.RequestID, StringResult{Value: payload.Value}, nil
	case KindFailure:
		if msg.Error == nil {
			return msg.RequestID, nil, fmt.Errorf("%w: failure without error details", ErrProtocol)
		}
		return msg.RequestID, Failure{Message: msg.Error.Message}, nil
	default:
		return msg.RequestID, nil, fmt.Errorf("%w: unknown response type %q", ErrProtocol, msg.Type)
	}
}

func decodeMessage(frame []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: decode envelope: %w", ErrProtocol, err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("%w: envelope without type", ErrProtocol)
	}
	return msg, nil
}

func unmarshalPayload(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing payload", ErrProtocol)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode payload: %w", ErrProtocol, err)
	}
	return nil
}
