package session

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/quecble/quecble/internal/ttlv"
)

func testBindingKey(t *testing.T) (base64Key string, rawHex string) {
	t.Helper()
	rawHex = "deadbeefdeadbeef"
	raw, err := hex.DecodeString(rawHex)
	if err != nil {
		t.Fatalf("hex.DecodeString: %v", err)
	}
	return base64.StdEncoding.EncodeToString(raw), rawHex
}

func TestRandomLoginHandshakeProducesExpectedLoginHash(t *testing.T) {
	bindingKeyB64, rawHex := testBindingKey(t)
	s := NewSession(bindingKeyB64)

	if _, err := s.StartRandomLogin(); err != nil {
		t.Fatalf("StartRandomLogin: %v", err)
	}
	if s.State() != StateAwaitRandom {
		t.Fatalf("state = %v, want AwaitRandom", s.State())
	}

	randomChallenge := "abc123"
	resp := ttlv.CommandFrame{
		Cmd: uint16(ttlv.CmdRandomResp),
		Payloads: []ttlv.Field{
			ttlv.NewField(1, ttlv.TypeBinary, true).WithBinary([]byte(randomChallenge)),
		},
	}
	reply, err := s.HandleFrame(resp)
	if err != nil {
		t.Fatalf("HandleFrame(RandomResp): %v", err)
	}
	if reply == nil {
		t.Fatal("expected a Login reply frame")
	}
	if reply.Cmd != uint16(ttlv.CmdLogin) {
		t.Fatalf("reply cmd = 0x%04x, want CmdLogin", reply.Cmd)
	}

	loginField, ok := reply.FindField(2)
	if !ok {
		t.Fatal("reply missing field id=2")
	}
	loginBytes, ok := loginField.AsBinary()
	if !ok {
		t.Fatal("field id=2 is not binary")
	}

	sum := sha256.Sum256([]byte(rawHex + ";" + randomChallenge))
	want := hex.EncodeToString(sum[:])
	if string(loginBytes) != want {
		t.Fatalf("login hash = %q, want %q", loginBytes, want)
	}
	if s.State() != StateAwaitLogin {
		t.Fatalf("state = %v, want AwaitLogin", s.State())
	}

	if _, err := s.HandleFrame(ttlv.CommandFrame{Cmd: uint16(ttlv.CmdLoginResp)}); err != nil {
		t.Fatalf("HandleFrame(LoginResp): %v", err)
	}
	if !s.IsAuthenticated() {
		t.Fatal("expected session authenticated after LoginResp")
	}
}

func TestBLEAccountAuthPathAuthenticatesDirectly(t *testing.T) {
	s := NewSession("")
	frame, err := s.StartBLEAccountAuth()
	if err != nil {
		t.Fatalf("StartBLEAccountAuth: %v", err)
	}
	if frame.Cmd != uint16(ttlv.CmdBLEAccountAuth) {
		t.Fatalf("cmd = 0x%04x, want CmdBLEAccountAuth", frame.Cmd)
	}
	f, ok := frame.FindField(1)
	if !ok {
		t.Fatal("missing field id=1")
	}
	iv, _ := f.AsInt()
	if iv != 1 {
		t.Fatalf("field id=1 = %d, want 1", iv)
	}

	if _, err := s.HandleFrame(ttlv.CommandFrame{Cmd: uint16(ttlv.CmdBLEAccountAuthResp)}); err != nil {
		t.Fatalf("HandleFrame(BLEAccountAuthResp): %v", err)
	}
	if !s.IsAuthenticated() {
		t.Fatal("expected session authenticated after BLEAccountAuthResp")
	}
}

func TestMutuallyExclusiveAuthPathsReject(t *testing.T) {
	s := NewSession("")
	if _, err := s.StartRandomLogin(); err != nil {
		t.Fatalf("StartRandomLogin: %v", err)
	}
	if _, err := s.StartBLEAccountAuth(); err == nil {
		t.Fatal("expected error switching to BLEAccountAuth after committing to Random/Login")
	}
}

func TestWifiPairRespUpdatesBindingKey(t *testing.T) {
	s := NewSession("old-key")
	_, err := s.HandleFrame(ttlv.CommandFrame{
		Cmd: uint16(ttlv.CmdWifiPairResp),
		Payloads: []ttlv.Field{
			ttlv.NewField(9, ttlv.TypeBinary, true).WithBinary([]byte("new-binding-key")),
		},
	})
	if err != nil {
		t.Fatalf("HandleFrame(WifiPairResp): %v", err)
	}
	if s.BindingKey() != "new-binding-key" {
		t.Fatalf("binding key = %q, want new-binding-key", s.BindingKey())
	}
}

func TestUnexpectedResponseInWrongStateErrors(t *testing.T) {
	s := NewSession("")
	_, err := s.HandleFrame(ttlv.CommandFrame{Cmd: uint16(ttlv.CmdLoginResp)})
	if err == nil {
		t.Fatal("expected error for LoginResp while Idle")
	}
}

func TestBuildWifiPairFrame(t *testing.T) {
	s := NewSession("")
	frame := s.BuildWifiPair("my-ssid", "my-pass", 30, 0, "mqtt://broker")
	if frame.Cmd != uint16(ttlv.CmdWifiPair) || frame.PacketID != 1001 {
		t.Fatalf("frame = %+v", frame)
	}
	ssidField, ok := frame.FindField(1)
	if !ok {
		t.Fatal("missing ssid field")
	}
	b, _ := ssidField.AsBinary()
	if string(b) != "my-ssid" {
		t.Fatalf("ssid = %q", b)
	}
}
