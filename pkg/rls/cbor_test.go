// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rls

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func TestParseBridgeMessage_Empty(t *testing.T) {
	if _, _, err := ParseBridgeMessage([]byte{}); err == nil {
		t.Error("Expected error for empty CBOR payload")
	}
}

func TestParseBridgeMessage_NotAnArray(t *testing.T) {
	data, _ := cbor.Marshal(map[int]int{1: 2})
	if _, _, err := ParseBridgeMessage(data); err == nil {
		t.Error("Expected error for non-array message")
	}
}

func TestTransferRequest(t *testing.T) {
	mosi := make([]byte, FrameSize)
	data, err := EncodeTransferRequest(mosi)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	msgType, payload, err := ParseBridgeMessage(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if msgType != MsgTransferRequest {
		t.Errorf("msgType = 0x%02X, want 0x%02X", msgType, MsgTransferRequest)
	}
	got, ok := GetMapBytes(payload, 0)
	if !ok || !bytes.Equal(got, mosi) {
		t.Errorf("payload bytes = %v, %v", got, ok)
	}
}

func TestParseTransferResponse(t *testing.T) {
	f := validFrame(3, 0x1234F)
	data, err := EncodeTransferResponse(f[:])
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	got, err := ParseTransferResponse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got != f {
		t.Errorf("frame = %s, want %s", got, f)
	}
}

func TestParseTransferResponse_ShortFrame(t *testing.T) {
	data, _ := EncodeTransferResponse([]byte{1, 2, 3})
	if _, err := ParseTransferResponse(data); !errors.Is(err, ErrFrameLength) {
		t.Errorf("error = %v, want ErrFrameLength", err)
	}
}

func TestParseTransferResponse_BridgeError(t *testing.T) {
	data, err := EncodeBridgeError(BridgeErrBusy, "bus busy")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	_, err = ParseTransferResponse(data)
	var bridgeErr *BridgeError
	if !errors.As(err, &bridgeErr) {
		t.Fatalf("error = %v, want *BridgeError", err)
	}
	if bridgeErr.Code != BridgeErrBusy || bridgeErr.Text != "bus busy" {
		t.Errorf("unexpected bridge error %+v", bridgeErr)
	}
}

func TestParseTransferResponse_UnexpectedType(t *testing.T) {
	data, _ := EncodeTransferRequest(make([]byte, FrameSize))
	if _, err := ParseTransferResponse(data); err == nil {
		t.Error("Expected error for request echoed back as response")
	}
}
