// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rls

import "fmt"

// FormatReading formats a reading into a human-readable line
func FormatReading(r Reading) string {
	timestamp := r.Timestamp.Format("15:04:05.000")

	if !r.Valid() {
		return fmt.Sprintf("[%s] INVALID frame=[%s] crc=%s status=%s\n",
			timestamp, r.Frame, formatCRC(r), formatStatus(r.StatusValid))
	}

	return fmt.Sprintf("[%s] ANGLE %s pos=%d turns=%d frame=[%s]\n",
		timestamp, FormatDegrees(r.Degrees), r.Position, r.Multiturn, r.Frame)
}

// FormatFrame formats every field of a frame, including the checksum check
func FormatFrame(f Frame) string {
	result := fmt.Sprintf("Frame:      %s\n", f)
	result += fmt.Sprintf("  Multiturn: %d (0x%04X)\n", f.Multiturn(), f.Multiturn())
	result += fmt.Sprintf("  Position:  %d (0x%05X)\n", f.RawPosition(), f.RawPosition())
	result += fmt.Sprintf("  Low bits:  0x%02X\n", f.LowBits())
	result += fmt.Sprintf("  Status:    %s\n", formatStatus(f.StatusValid()))

	calculated := FrameChecksum(f)
	if calculated == f.ReceivedCRC() {
		result += fmt.Sprintf("  CRC:       0x%02X OK\n", f.ReceivedCRC())
	} else {
		result += fmt.Sprintf("  CRC:       0x%02X MISMATCH (calculated 0x%02X)\n", f.ReceivedCRC(), calculated)
	}
	return result
}

// FormatDegrees formats an angle with millidegree precision
func FormatDegrees(deg float64) string {
	return fmt.Sprintf("%8.3f°", deg)
}

// FormatAnomalyType returns the human-readable name for an anomaly type
func FormatAnomalyType(t AnomalyType) string {
	switch t {
	case AnomalyCRCError:
		return "CRC_ERROR"
	case AnomalyStale:
		return "STALE"
	case AnomalyPositionRange:
		return "POSITION_RANGE"
	case AnomalyAngleJump:
		return "ANGLE_JUMP"
	case AnomalyMultiturnJump:
		return "MULTITURN_JUMP"
	case AnomalyTransportError:
		return "TRANSPORT_ERROR"
	default:
		return "UNKNOWN"
	}
}

// FormatMessageType returns the human-readable name for a bridge message type
func FormatMessageType(msgType uint8) string {
	switch msgType {
	case MsgTransferRequest:
		return "TRANSFER_REQUEST"
	case MsgTransferResponse:
		return "TRANSFER_RESPONSE"
	case MsgError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func formatCRC(r Reading) string {
	if r.CRCValid {
		return fmt.Sprintf("0x%02X OK", r.ReceivedCRC)
	}
	return fmt.Sprintf("0x%02X!=0x%02X", r.ReceivedCRC, r.CalculatedCRC)
}

func formatStatus(fresh bool) string {
	if fresh {
		return "FRESH"
	}
	return "STALE"
}
