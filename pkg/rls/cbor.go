// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rls

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Bridge payload map keys
const (
	keyBytes     = 0
	keyErrorCode = 0
	keyErrorText = 1
)

// EncodeBridgeMessage encodes a bridge message: [msg_type, payload_map]
func EncodeBridgeMessage(msgType uint8, payload map[int]interface{}) ([]byte, error) {
	var msg interface{}
	if len(payload) == 0 {
		msg = []interface{}{uint64(msgType), nil}
	} else {
		msg = []interface{}{uint64(msgType), payload}
	}

	data, err := cbor.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode CBOR: %w", err)
	}
	return data, nil
}

// EncodeTransferRequest encodes the bytes to clock out for one frame
func EncodeTransferRequest(mosi []byte) ([]byte, error) {
	return EncodeBridgeMessage(MsgTransferRequest, map[int]interface{}{keyBytes: mosi})
}

// EncodeTransferResponse encodes the bytes clocked in for one frame
func EncodeTransferResponse(miso []byte) ([]byte, error) {
	return EncodeBridgeMessage(MsgTransferResponse, map[int]interface{}{keyBytes: miso})
}

// EncodeBridgeError encodes an error reply
func EncodeBridgeError(code uint8, text string) ([]byte, error) {
	return EncodeBridgeMessage(MsgError, map[int]interface{}{
		keyErrorCode: uint64(code),
		keyErrorText: text,
	})
}

// ParseBridgeMessage parses a bridge message: [msg_type, payload_map]
// Returns the message type and decoded payload map (nil for empty payloads)
func ParseBridgeMessage(data []byte) (msgType uint8, payload map[int]interface{}, err error) {
	if len(data) == 0 {
		return 0, nil, fmt.Errorf("empty CBOR payload")
	}

	var msg []interface{}
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return 0, nil, fmt.Errorf("failed to decode CBOR: %w", err)
	}

	if len(msg) != 2 {
		return 0, nil, fmt.Errorf("expected 2-element array, got %d elements", len(msg))
	}

	switch v := msg[0].(type) {
	case uint64:
		if v > 255 {
			return 0, nil, fmt.Errorf("message type out of range: %d", v)
		}
		msgType = uint8(v)
	default:
		return 0, nil, fmt.Errorf("expected uint for message type, got %T", msg[0])
	}

	if msg[1] == nil {
		return msgType, nil, nil
	}

	// CBOR maps decode as map[interface{}]interface{}
	switch v := msg[1].(type) {
	case map[interface{}]interface{}:
		payload = make(map[int]interface{}, len(v))
		for key, val := range v {
			switch k := key.(type) {
			case uint64:
				payload[int(k)] = val
			case int64:
				payload[int(k)] = val
			default:
				return 0, nil, fmt.Errorf("expected integer map key, got %T", key)
			}
		}
	default:
		return 0, nil, fmt.Errorf("expected map or nil for payload, got %T", msg[1])
	}

	return msgType, payload, nil
}

// ParseTransferResponse extracts the received frame from a bridge reply.
// Error replies are returned as *BridgeError.
func ParseTransferResponse(data []byte) (Frame, error) {
	msgType, payload, err := ParseBridgeMessage(data)
	if err != nil {
		return Frame{}, err
	}

	switch msgType {
	case MsgTransferResponse:
		miso, ok := GetMapBytes(payload, keyBytes)
		if !ok {
			return Frame{}, fmt.Errorf("transfer response missing bytes")
		}
		return ParseFrame(miso)

	case MsgError:
		code, _ := GetMapUint(payload, keyErrorCode)
		text, _ := GetMapString(payload, keyErrorText)
		return Frame{}, &BridgeError{Code: uint8(code), Text: text}

	default:
		return Frame{}, fmt.Errorf("unexpected bridge message %s (0x%02X)", FormatMessageType(msgType), msgType)
	}
}

// BridgeError is an error reported by the remote bridge
type BridgeError struct {
	Code uint8
	Text string
}

// Error formats the bridge code and text
func (e *BridgeError) Error() string {
	return fmt.Sprintf("bridge error 0x%02X: %s", e.Code, e.Text)
}

// GetMapUint extracts a uint64 from a CBOR map by key
func GetMapUint(m map[int]interface{}, key int) (uint64, bool) {
	if m == nil {
		return 0, false
	}
	switch val := m[key].(type) {
	case uint64:
		return val, true
	case int64:
		if val >= 0 {
			return uint64(val), true
		}
	}
	return 0, false
}

// GetMapBytes extracts a []byte from a CBOR map by key
func GetMapBytes(m map[int]interface{}, key int) ([]byte, bool) {
	if m == nil {
		return nil, false
	}
	val, ok := m[key].([]byte)
	return val, ok
}

// GetMapString extracts a string from a CBOR map by key
func GetMapString(m map[int]interface{}, key int) (string, bool) {
	if m == nil {
		return "", false
	}
	val, ok := m[key].(string)
	return val, ok
}
