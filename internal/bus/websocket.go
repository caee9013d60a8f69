// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bus

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Thermoquad/encoderstat/pkg/rls"
	"github.com/gorilla/websocket"
)

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = errors.New("websocket connection closed")

// WebSocketBridge reads frames from a remote bridge. Each frame is one
// CBOR transfer request answered by one transfer response.
type WebSocketBridge struct {
	conn   *websocket.Conn
	closed bool // Track if connection has failed/closed
}

// OpenWebSocketBridge opens a WebSocket connection with HTTP Basic auth
func OpenWebSocketBridge(wsURL, username, password string, skipSSLVerify bool) (*WebSocketBridge, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %v", err)
	}

	return &WebSocketBridge{conn: conn}, nil
}

// ReadFrame requests one transaction from the bridge. The context deadline,
// if any, bounds the round trip. Cancelling the context aborts a pending
// round trip and leaves the bridge closed.
func (w *WebSocketBridge) ReadFrame(ctx context.Context) (f rls.Frame, err error) {
	if w.closed {
		return rls.Frame{}, ErrConnectionClosed
	}
	if err := ctx.Err(); err != nil {
		return rls.Frame{}, err
	}

	deadline, _ := ctx.Deadline()
	w.conn.SetWriteDeadline(deadline)
	w.conn.SetReadDeadline(deadline)

	// Expire the deadlines on cancel to unblock a stalled bridge
	stop := context.AfterFunc(ctx, func() {
		now := time.Now()
		w.conn.SetWriteDeadline(now)
		w.conn.SetReadDeadline(now)
	})
	defer func() {
		if !stop() && ctx.Err() != nil && err != nil {
			err = ctx.Err()
		}
	}()

	request, err := rls.EncodeTransferRequest(make([]byte, rls.FrameSize))
	if err != nil {
		return rls.Frame{}, err
	}
	if err := w.conn.WriteMessage(websocket.BinaryMessage, request); err != nil {
		w.closed = true
		return rls.Frame{}, err
	}

	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.closed = true
			return rls.Frame{}, err
		}

		// Only binary messages carry bridge replies
		if messageType != websocket.BinaryMessage {
			continue
		}

		return rls.ParseTransferResponse(data)
	}
}

// Close closes the connection to the bridge
func (w *WebSocketBridge) Close() error {
	return w.conn.Close()
}
