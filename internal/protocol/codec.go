package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned for payloads that are not valid messages.
	ErrMalformed = errors.New("protocol: malformed message")
	// ErrUnknownType is returned for messages with an unrecognized type.
	ErrUnknownType = errors.New("protocol: unknown message type")
)

type envelope struct {
	Type string `json:"type"`
}

// Encode marshals a message to JSON.
func Encode(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode: %w", err)
	}
	return data, nil
}

// PeekType returns the type field of a raw message.
func PeekType(data []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformed, err)
	}
	if env.Type == "" {
		return "", fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return env.Type, nil
}

// DecodeClient parses a message sent by a client.
func DecodeClient(data []byte) (ClientMessage, error) {
	typ, err := PeekType(data)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeInput:
		return decodeClient[Input](data)
	case TypeChat:
		return decodeClient[Chat](data)
	case TypePing:
		return decodeClient[Ping](data)
	case TypeJoinLobby:
		return decodeClient[JoinLobby](data)
	case TypeChooseSlot:
		return decodeClient[ChooseSlot](data)
	case TypeSetReady:
		return decodeClient[SetReady](data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
}

// DecodeServer parses a message sent by the server.
func DecodeServer(data []byte) (ServerMessage, error) {
	typ, err := PeekType(data)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeConnected:
		return decodeServer[Connected](data)
	case TypeSnapshot:
		return decodeServer[Snapshot](data)
	case TypeLobbyUpdate:
		return decodeServer[LobbyUpdate](data)
	case TypeStartMatch:
		return decodeServer[StartMatch](data)
	case TypeMatchEnd:
		return decodeServer[MatchEnd](data)
	case TypeError:
		return decodeServer[Error](data)
	case TypePong:
		return decodeServer[Pong](data)
	case TypeChat:
		return decodeServer[Chat](data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
}

func decodeClient[T ClientMessage](data []byte) (ClientMessage, error) {
	var m T
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err)
	}
	return m, nil
}

func decodeServer[T ServerMessage](data []byte) (ServerMessage, error) {
	var m T
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err)
	}
	return m, nil
}
