package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/quecble/quecble/internal/errs"
	"github.com/quecble/quecble/internal/logging"
	"github.com/quecble/quecble/internal/session"
	"github.com/quecble/quecble/internal/transport"
	"github.com/quecble/quecble/internal/ttlv"
)

// DefaultResponseTimeout bounds how long Authenticate/Pair wait for the
// device to answer a single request before giving up.
const DefaultResponseTimeout = 10 * time.Second

// Device owns one connected device's transport, decoder, and session, and
// runs the event loop that ties them together: inbound chunks are fed
// through the decoder, successful frames are handed to the session, and
// any reply the session produces is encoded straight back out.
type Device struct {
	transport transport.Transport
	session   *session.Session
	decoder   *ttlv.Decoder
	gen       *ttlv.SerialGenerator

	mu      sync.Mutex
	waiters map[uint16]chan waitResult

	done chan struct{}
}

type waitResult struct {
	frame ttlv.CommandFrame
	err   error
}

// New starts the event loop over t and bindingKey's session and returns a
// ready-to-use Device. The caller must call Close when finished.
func New(t transport.Transport, bindingKey string) *Device {
	d := &Device{
		transport: t,
		session:   session.NewSession(bindingKey),
		decoder:   ttlv.NewDecoder(),
		gen:       ttlv.NewSerialGenerator(),
		waiters:   make(map[uint16]chan waitResult),
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Device) run() {
	for {
		select {
		case <-d.done:
			return
		case chunk, ok := <-d.transport.Notifications():
			if !ok {
				return
			}
			for _, event := range d.decoder.Feed(chunk) {
				d.handleEvent(event)
			}
		}
	}
}

func (d *Device) handleEvent(event ttlv.DecodeEvent) {
	switch event.Kind {
	case ttlv.EventError:
		logging.LogDecodeError(fmt.Sprintf("%v", event.Err.Kind), event.Err.Error(), nil)
	case ttlv.EventTransparent:
		logging.LogFrame("inbound-transparent", "Transparent", event.Transparent.Cmd, event.Transparent.PacketID, 0)
	case ttlv.EventSuccess:
		name, _ := ttlv.CommandName(event.Frame.Cmd)
		logging.LogFrame("inbound", name, event.Frame.Cmd, event.Frame.PacketID, len(event.Frame.Payloads))

		reply, err := d.session.HandleFrame(event.Frame)
		d.deliver(event.Frame.Cmd, event.Frame, err)
		if err != nil {
			return
		}
		if reply != nil {
			d.send(*reply)
		}
	}
}

// deliver wakes up any goroutine waiting on cmd via waitFor.
func (d *Device) deliver(cmd uint16, frame ttlv.CommandFrame, err error) {
	d.mu.Lock()
	ch, ok := d.waiters[cmd]
	if ok {
		delete(d.waiters, cmd)
	}
	d.mu.Unlock()
	if ok {
		ch <- waitResult{frame: frame, err: err}
	}
}

// waitFor registers interest in the next frame carrying cmd and blocks
// until it arrives, ctx is cancelled, or timeout elapses.
func (d *Device) waitFor(ctx context.Context, cmd uint16, timeout time.Duration) (ttlv.CommandFrame, error) {
	ch := make(chan waitResult, 1)
	d.mu.Lock()
	d.waiters[cmd] = ch
	d.mu.Unlock()

	select {
	case res := <-ch:
		return res.frame, res.err
	case <-ctx.Done():
		return ttlv.CommandFrame{}, ctx.Err()
	case <-time.After(timeout):
		return ttlv.CommandFrame{}, errs.NewTransportError(fmt.Sprintf("timed out waiting for 0x%04x", cmd), nil, true)
	}
}

func (d *Device) send(frame ttlv.CommandFrame) error {
	result, err := ttlv.EncodeCommand(frame, frame.PacketID != 0, d.gen)
	if err != nil {
		return err
	}
	name, _ := ttlv.CommandName(frame.Cmd)
	logging.LogFrame("outbound", name, frame.Cmd, result.PacketID, len(frame.Payloads))
	return d.transport.Write(context.Background(), result.Bytes)
}

// Authenticate runs the random-challenge/login-hash handshake to
// completion, blocking until the device confirms login or ctx expires.
func (d *Device) Authenticate(ctx context.Context) error {
	logging.LogHandshake(d.session.State().String(), "AwaitRandom", "Authenticate")
	frame, err := d.session.StartRandomLogin()
	if err != nil {
		return err
	}
	if err := d.send(frame); err != nil {
		return err
	}
	if _, err := d.waitFor(ctx, uint16(ttlv.CmdLoginResp), DefaultResponseTimeout); err != nil {
		return err
	}
	logging.LogHandshake("AwaitLogin", d.session.State().String(), "LoginResp")
	return nil
}

// AuthenticateBLEAccount runs the alternate direct-account auth path,
// mutually exclusive with Authenticate on the same Device.
func (d *Device) AuthenticateBLEAccount(ctx context.Context) error {
	logging.LogHandshake(d.session.State().String(), "AwaitBLEAccountAuth", "AuthenticateBLEAccount")
	frame, err := d.session.StartBLEAccountAuth()
	if err != nil {
		return err
	}
	if err := d.send(frame); err != nil {
		return err
	}
	if _, err := d.waitFor(ctx, uint16(ttlv.CmdBLEAccountAuthResp), DefaultResponseTimeout); err != nil {
		return err
	}
	logging.LogHandshake("AwaitBLEAccountAuth", d.session.State().String(), "BLEAccountAuthResp")
	return nil
}

// Pair sends a WifiPair request and waits for the device's acknowledgement,
// returning the (possibly rotated) binding key afterward.
func (d *Device) Pair(ctx context.Context, ssid, password, mqttURL string, timeoutSeconds int64) (string, error) {
	frame := d.session.BuildWifiPair(ssid, password, timeoutSeconds, 0, mqttURL)
	if err := d.send(frame); err != nil {
		return "", err
	}
	if _, err := d.waitFor(ctx, uint16(ttlv.CmdWifiPairResp), DefaultResponseTimeout); err != nil {
		return "", err
	}
	return d.session.BindingKey(), nil
}

// Close stops the event loop and closes the underlying transport.
func (d *Device) Close() error {
	close(d.done)
	return d.transport.Close()
}
