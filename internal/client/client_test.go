package client

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"
	"time"

	"github.com/quecble/quecble/internal/ttlv"
)

// fakeTransport is an in-memory transport.Transport that lets a test script
// inbound notifications and capture outbound writes.
type fakeTransport struct {
	notifications chan []byte
	written       chan []byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		notifications: make(chan []byte, 16),
		written:       make(chan []byte, 16),
	}
}

func (f *fakeTransport) Write(ctx context.Context, data []byte) error {
	cp := append([]byte(nil), data...)
	f.written <- cp
	return nil
}

func (f *fakeTransport) Notifications() <-chan []byte { return f.notifications }

func (f *fakeTransport) Close() error {
	close(f.notifications)
	return nil
}

func encodeFrame(t *testing.T, frame ttlv.CommandFrame) []byte {
	t.Helper()
	result, err := ttlv.EncodeCommand(frame, true, ttlv.NewSerialGenerator())
	if err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}
	return result.Bytes
}

func TestAuthenticateCompletesRandomLoginHandshake(t *testing.T) {
	ft := newFakeTransport()

	rawKey := make([]byte, 8)
	for i := range rawKey {
		rawKey[i] = byte(i)
	}
	bindingKey := base64.StdEncoding.EncodeToString(rawKey)

	dev := New(ft, bindingKey)
	defer dev.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- dev.Authenticate(ctx) }()

	// Wait for the outbound Random request, then answer with RandomResp.
	select {
	case <-ft.written:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for outbound Random frame")
	}

	random := "abc123"
	randomResp := ttlv.CommandFrame{
		Cmd:      uint16(ttlv.CmdRandomResp),
		PacketID: 1,
		Payloads: []ttlv.Field{ttlv.NewField(1, ttlv.TypeBinary, true).WithBinary([]byte(random))},
	}
	ft.notifications <- encodeFrame(t, randomResp)

	// Expect the Login frame in response, verify its hash field.
	var loginBytes []byte
	select {
	case loginBytes = <-ft.written:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for outbound Login frame")
	}
	decoder := ttlv.NewDecoder()
	events := decoder.Feed(loginBytes)
	if len(events) != 1 || events[0].Kind != ttlv.EventSuccess {
		t.Fatalf("expected one successful decode of Login frame, got %+v", events)
	}
	field, ok := events[0].Frame.FindField(2)
	if !ok {
		t.Fatal("Login frame missing field id=2")
	}
	gotHash, ok := field.AsBinary()
	if !ok {
		t.Fatal("Login field id=2 is not binary")
	}

	rawHex := hex.EncodeToString(rawKey)
	sum := sha256.Sum256([]byte(rawHex + ";" + random))
	wantHash := hex.EncodeToString(sum[:])
	if string(gotHash) != wantHash {
		t.Fatalf("login hash = %x, want %s", gotHash, wantHash)
	}

	loginResp := ttlv.CommandFrame{Cmd: uint16(ttlv.CmdLoginResp), PacketID: 1}
	ft.notifications <- encodeFrame(t, loginResp)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Authenticate did not complete")
	}
}

func TestPairTimesOutWithoutResponse(t *testing.T) {
	ft := newFakeTransport()
	dev := New(ft, base64.StdEncoding.EncodeToString([]byte{1, 2, 3, 4}))
	defer dev.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := dev.Pair(ctx, "myssid", "mypassword", "mqtt://broker", 30)
	if err == nil {
		t.Fatal("expected Pair to time out, got nil error")
	}

	select {
	case written := <-ft.written:
		if len(written) == 0 || !bytes.HasPrefix(written, []byte{0xAA, 0xAA}) {
			t.Fatalf("outbound WifiPair frame missing preamble: % x", written)
		}
	default:
		t.Fatal("expected an outbound WifiPair write before timing out")
	}
}
