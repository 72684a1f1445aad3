package speech

import (
	"bytes"
	"testing"
)

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	header := NewHeader(FullClientRequest, WithEvent, JSONSerialization, GzipCompression)

	decoded, err := DecodeHeader(header.Encode())
	if err != nil {
		t.Fatalf("failed to decode header: %v", err)
	}
	if decoded.MessageType != FullClientRequest {
		t.Fatalf("message type mismatch: %v", decoded.MessageType)
	}
	if decoded.MessageFlags != WithEvent {
		t.Fatalf("flags mismatch: %v", decoded.MessageFlags)
	}
	if decoded.SerializationMethod != JSONSerialization {
		t.Fatalf("serialization mismatch: %v", decoded.SerializationMethod)
	}
	if decoded.CompressionMethod != GzipCompression {
		t.Fatalf("compression mismatch: %v", decoded.CompressionMethod)
	}
}

func TestDecodeHeaderRejectsShortData(t *testing.T) {
	if _, err := DecodeHeader([]byte{0x11, 0x10}); err == nil {
		t.Fatal("expected error for truncated header")
	}
}

func TestDecodeHeaderRejectsWrongVersion(t *testing.T) {
	raw := NewHeader(FullClientRequest, NoSequenceNumber, JSONSerialization, NoCompression).Encode()
	raw[0] = (0b0111 << 4) | (raw[0] & 0x0F)
	if _, err := DecodeHeader(raw); err == nil {
		t.Fatal("expected error for unsupported protocol version")
	}
}

func TestFullClientRequestRoundTrip(t *testing.T) {
	payload := []byte(`{"user":{"uid":"test"}}`)
	msg := NewFullClientRequest(payload, NoCompression)

	encoded, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("failed to encode message: %v", err)
	}

	decoded, err := DecodeMessage(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	if decoded.Header.MessageType != FullClientRequest {
		t.Fatalf("unexpected message type: %v", decoded.Header.MessageType)
	}
	if !bytes.Equal(decoded.Payload, payload) {
		t.Fatalf("payload mismatch: %q", decoded.Payload)
	}
}

func TestAudioOnlyRequestSequenceFlags(t *testing.T) {
	middle := NewAudioOnlyRequest([]byte{0x01, 0x02}, 3, false, NoCompression)
	if middle.Header.MessageFlags != PositiveSequenceNumber {
		t.Fatalf("expected positive sequence flags, got %v", middle.Header.MessageFlags)
	}
	if middle.IsLastPacket() {
		t.Fatal("middle packet must not report last")
	}

	last := NewAudioOnlyRequest([]byte{0x03}, 4, true, NoCompression)
	if last.Header.MessageFlags != NegativeSequenceNumber {
		t.Fatalf("expected negative sequence flags, got %v", last.Header.MessageFlags)
	}
	if last.Sequence != -4 {
		t.Fatalf("expected negated sequence, got %d", last.Sequence)
	}
	if !last.IsLastPacket() {
		t.Fatal("last packet must report last")
	}

	encoded, err := EncodeMessage(last)
	if err != nil {
		t.Fatalf("failed to encode audio packet: %v", err)
	}
	decoded, err := DecodeMessage(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("failed to decode audio packet: %v", err)
	}
	if decoded.Sequence != -4 {
		t.Fatalf("sequence lost in transit: %d", decoded.Sequence)
	}
}

func TestEventMessageCarriesSessionAndConnectIDs(t *testing.T) {
	msg := &Message{
		Header:    NewHeader(FullServerResponse, WithEvent, JSONSerialization, NoCompression),
		EventType: EventTypeConnectionStarted,
		ConnectID: "conn-42",
	}

	encoded, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("failed to encode event message: %v", err)
	}
	decoded, err := DecodeMessage(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("failed to decode event message: %v", err)
	}
	if decoded.EventType != EventTypeConnectionStarted {
		t.Fatalf("event type mismatch: %v", decoded.EventType)
	}
	if decoded.ConnectID != "conn-42" {
		t.Fatalf("connect id mismatch: %q", decoded.ConnectID)
	}

	// 会话级事件携带session id而非connect id。
	sessionMsg := &Message{
		Header:    NewHeader(FullServerResponse, WithEvent, JSONSerialization, NoCompression),
		EventType: EventTypeSessionStarted,
		SessionID: "sess-7",
	}
	encoded, err = EncodeMessage(sessionMsg)
	if err != nil {
		t.Fatalf("failed to encode session event: %v", err)
	}
	decoded, err = DecodeMessage(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("failed to decode session event: %v", err)
	}
	if decoded.SessionID != "sess-7" {
		t.Fatalf("session id mismatch: %q", decoded.SessionID)
	}
}

func TestDecodeErrorMessageReadsCode(t *testing.T) {
	msg := &Message{
		Header:      NewHeader(ErrorMessage, NoSequenceNumber, JSONSerialization, NoCompression),
		ErrorCode:   45000001,
		PayloadSize: 0,
	}

	encoded := msg.Header.Encode()
	encoded = append(encoded, 0x02, 0xAE, 0xA5, 0x41) // 45000001 big-endian
	encoded = append(encoded, 0x00, 0x00, 0x00, 0x00) // empty payload

	decoded, err := DecodeMessage(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("failed to decode error message: %v", err)
	}
	if !decoded.IsErrorMessage() {
		t.Fatal("expected an error message")
	}
	if decoded.ErrorCode != 45000001 {
		t.Fatalf("error code mismatch: %d", decoded.ErrorCode)
	}
}
