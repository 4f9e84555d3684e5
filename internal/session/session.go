package session

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"sync"

	"github.com/quecble/quecble/internal/errs"
	"github.com/quecble/quecble/internal/ttlv"
)

// State names a point in the onboarding handshake.
type State int

const (
	StateIdle State = iota
	StateAwaitRandom
	StateAwaitLogin
	StateAwaitBLEAccountAuth
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAwaitRandom:
		return "AwaitRandom"
	case StateAwaitLogin:
		return "AwaitLogin"
	case StateAwaitBLEAccountAuth:
		return "AwaitBLEAccountAuth"
	case StateAuthenticated:
		return "Authenticated"
	default:
		return "Unknown"
	}
}

// authMode records which of the two mutually exclusive handshake paths a
// session has committed to, so the other path's responses are rejected as
// unexpected rather than silently accepted.
type authMode int

const (
	authModeNone authMode = iota
	authModeRandomLogin
	authModeBLEAccount
)

// Session drives one device's handshake. It is safe for concurrent use:
// the notification task and the write task may both call into it, guarded
// by a single mutex that each method holds for its whole call (HandleFrame
// included, login-hash computation and all).
type Session struct {
	mu         sync.Mutex
	state      State
	mode       authMode
	bindingKey string // base64, as supplied out-of-band or updated from WifiPairResp
	random     string
	gen        *ttlv.SerialGenerator
}

// NewSession creates a session for a device whose binding key (a base64
// string wrapping a 16-hex-char secret) is already known out-of-band.
func NewSession(bindingKey string) *Session {
	return &Session{
		state:      StateIdle,
		bindingKey: bindingKey,
		gen:        ttlv.NewSerialGenerator(),
	}
}

// BindingKey returns the session's current binding key (base64).
func (s *Session) BindingKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bindingKey
}

// State returns the session's current handshake state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated reports whether the handshake has completed.
func (s *Session) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

// StartRandomLogin begins the random-challenge/login-hash path. It fails if
// the session has already committed to the alternate BLEAccountAuth path.
func (s *Session) StartRandomLogin() (ttlv.CommandFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == authModeBLEAccount {
		return ttlv.CommandFrame{}, errs.NewUnexpectedResponse(s.state.String(), "Random")
	}
	s.mode = authModeRandomLogin
	s.state = StateAwaitRandom
	return ttlv.CommandFrame{Cmd: uint16(ttlv.CmdRandom), PacketID: s.gen.Next()}, nil
}

// StartBLEAccountAuth begins the alternate direct-account auth path. It
// fails if the session has already committed to the random/login path.
func (s *Session) StartBLEAccountAuth() (ttlv.CommandFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == authModeRandomLogin {
		return ttlv.CommandFrame{}, errs.NewUnexpectedResponse(s.state.String(), "BLEAccountAuth")
	}
	s.mode = authModeBLEAccount
	s.state = StateAwaitBLEAccountAuth
	return ttlv.CommandFrame{
		Cmd:      uint16(ttlv.CmdBLEAccountAuth),
		PacketID: s.gen.Next(),
		Payloads: []ttlv.Field{ttlv.NewField(1, ttlv.TypeNumeric, true).WithInt(1)},
	}, nil
}

// BuildWifiPair produces a WifiPair frame; it may be sent in any state once
// connected, independent of the auth handshake's progress.
func (s *Session) BuildWifiPair(ssid, password string, timeoutSeconds, otherInt int64, mqttURL string) ttlv.CommandFrame {
	return ttlv.CommandFrame{
		Cmd:      uint16(ttlv.CmdWifiPair),
		PacketID: 1001,
		Payloads: []ttlv.Field{
			ttlv.NewField(1, ttlv.TypeBinary, true).WithBinary([]byte(ssid)),
			ttlv.NewField(2, ttlv.TypeBinary, true).WithBinary([]byte(password)),
			ttlv.NewField(11, ttlv.TypeNumeric, true).WithInt(timeoutSeconds),
			ttlv.NewField(12, ttlv.TypeNumeric, true).WithInt(otherInt),
			ttlv.NewField(13, ttlv.TypeBinary, true).WithBinary([]byte(mqttURL)),
		},
	}
}

// HandleFrame advances the state machine for one decoded response frame.
// It returns a non-nil reply frame when the handshake has a next message to
// send (e.g. Login after RandomResp); nil,nil means the frame was handled
// with nothing further required right now. Recognized commands without a
// handler here pass through as nil,nil; only unknown codes are rejected.
func (s *Session) HandleFrame(frame ttlv.CommandFrame) (*ttlv.CommandFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ttlv.Cmd(frame.Cmd) {
	case ttlv.CmdRandomResp:
		return s.handleRandomResp(frame)
	case ttlv.CmdLoginResp:
		return s.handleLoginResp(frame)
	case ttlv.CmdWifiPairResp:
		return s.handleWifiPairResp(frame)
	case ttlv.CmdBLEAccountAuthResp:
		return s.handleBLEAccountAuthResp(frame)
	default:
		if ttlv.IsKnownCommand(frame.Cmd) {
			return nil, nil
		}
		return nil, errs.NewUnexpectedResponse(s.state.String(), "unknown")
	}
}

// callers must hold s.mu.
func (s *Session) handleRandomResp(frame ttlv.CommandFrame) (*ttlv.CommandFrame, error) {
	if s.state != StateAwaitRandom {
		return nil, errs.NewUnexpectedResponse(s.state.String(), "RandomResp")
	}
	field, ok := frame.FindField(1)
	if !ok {
		return nil, errs.NewMissingField("RandomResp", 1)
	}
	bin, ok := field.AsBinary()
	if !ok {
		return nil, errs.NewMissingField("RandomResp", 1)
	}
	s.random = string(bin)

	loginHex, err := computeLoginHash(s.bindingKey, s.random)
	if err != nil {
		return nil, err
	}

	s.state = StateAwaitLogin
	reply := ttlv.CommandFrame{
		Cmd:      uint16(ttlv.CmdLogin),
		PacketID: 1001,
		Payloads: []ttlv.Field{
			ttlv.NewField(2, ttlv.TypeBinary, true).WithBinary([]byte(loginHex)),
		},
	}
	return &reply, nil
}

func (s *Session) handleLoginResp(frame ttlv.CommandFrame) (*ttlv.CommandFrame, error) {
	if s.state != StateAwaitLogin {
		return nil, errs.NewUnexpectedResponse(s.state.String(), "LoginResp")
	}
	s.state = StateAuthenticated
	return nil, nil
}

func (s *Session) handleWifiPairResp(frame ttlv.CommandFrame) (*ttlv.CommandFrame, error) {
	field, ok := frame.FindField(9)
	if !ok {
		return nil, nil
	}
	bin, ok := field.AsBinary()
	if !ok {
		return nil, nil
	}
	s.bindingKey = string(bin)
	return nil, nil
}

func (s *Session) handleBLEAccountAuthResp(frame ttlv.CommandFrame) (*ttlv.CommandFrame, error) {
	if s.state != StateAwaitBLEAccountAuth {
		return nil, errs.NewUnexpectedResponse(s.state.String(), "BLEAccountAuthResp")
	}
	s.state = StateAuthenticated
	return nil, nil
}

// computeLoginHash implements login = sha256_hex(hex(base64_decode(binding_key)) + ";" + random).
func computeLoginHash(bindingKeyBase64, randomASCII string) (string, *errs.Error) {
	raw, err := base64.StdEncoding.DecodeString(bindingKeyBase64)
	if err != nil {
		return "", &errs.Error{Type: errs.ErrTypeAuth, Message: "binding_key is not valid base64", Err: err}
	}
	hexLower := hex.EncodeToString(raw)
	sum := sha256.Sum256([]byte(hexLower + ";" + randomASCII))
	return hex.EncodeToString(sum[:]), nil
}
