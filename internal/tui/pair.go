package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quecble/quecble/internal/bletransport"
	"github.com/quecble/quecble/internal/client"
)

// pairTimeout bounds the WifiPair exchange once connected; the BLE connect
// step itself runs without this deadline.
const pairTimeout = 20 * time.Second

type pairField int

const (
	fieldSSID pairField = iota
	fieldPassword
)

type pairResultMsg struct {
	bindingKey string
	err        error
}

type pairKeyMap struct {
	Next   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

func (k pairKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Cancel}
}

func (k pairKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Submit, k.Cancel}}
}

func newPairKeyMap() pairKeyMap {
	return pairKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "pair")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}

// PairModel collects WiFi credentials for a selected device and drives the
// connect+pair sequence against it.
type PairModel struct {
	Device bletransport.FoundDevice

	SSID     textinput.Model
	Password textinput.Model
	Focused  pairField

	Pairing bool
	Done    bool
	Err     error

	Width  int
	Height int

	Help help.Model
	Keys pairKeyMap
}

// NewPairModel builds a pair screen for the given selected device.
func NewPairModel(device bletransport.FoundDevice) PairModel {
	ssid := textinput.New()
	ssid.Placeholder = "WiFi SSID"
	ssid.Focus()
	ssid.CharLimit = 64
	ssid.Width = 32

	password := textinput.New()
	password.Placeholder = "WiFi password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 64
	password.Width = 32

	return PairModel{
		Device:   device,
		SSID:     ssid,
		Password: password,
		Help:     help.New(),
		Keys:     newPairKeyMap(),
	}
}

func (m PairModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m PairModel) Update(msg tea.Msg) (PairModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tea.KeyMsg:
		if m.Pairing || m.Done {
			return m, nil
		}
		switch msg.String() {
		case "tab":
			m.toggleFocus()
			return m, nil
		case "enter":
			if m.SSID.Value() == "" {
				return m, nil
			}
			m.Pairing = true
			return m, pairDevice(m.Device, m.SSID.Value(), m.Password.Value())
		}

	case pairResultMsg:
		m.Pairing = false
		m.Done = true
		m.Err = msg.err
		return m, nil
	}

	if m.Focused == fieldSSID {
		m.SSID, cmd = m.SSID.Update(msg)
	} else {
		m.Password, cmd = m.Password.Update(msg)
	}
	return m, cmd
}

func (m *PairModel) toggleFocus() {
	if m.Focused == fieldSSID {
		m.Focused = fieldPassword
		m.SSID.Blur()
		m.Password.Focus()
	} else {
		m.Focused = fieldSSID
		m.Password.Blur()
		m.SSID.Focus()
	}
}

func (m PairModel) View() string {
	var content string
	switch {
	case m.Pairing:
		content = fmt.Sprintf("\nPairing with %s...\n", m.Device.Descriptor.DeviceKey)
	case m.Done && m.Err == nil:
		content = RenderSuccess(fmt.Sprintf("paired with %s", m.Device.Descriptor.DeviceKey)) +
			"\n\nPress q to quit, esc to scan again.\n"
	case m.Done && m.Err != nil:
		content = RenderError(fmt.Sprintf("pairing failed: %v", m.Err)) +
			"\n\nPress q to quit, esc to scan again.\n"
	default:
		content = fmt.Sprintf(
			"Pairing device %s\n\n  SSID:     %s\n  Password: %s\n",
			m.Device.Descriptor.DeviceKey, m.SSID.View(), m.Password.View(),
		)
	}

	helpText := m.Help.View(m.Keys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// pairDevice connects to device over BLE, runs the WifiPair exchange, and
// reports the resulting (possibly rotated) binding key.
func pairDevice(device bletransport.FoundDevice, ssid, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pairTimeout)
		defer cancel()

		adapter, err := bletransport.Connect(device.Address)
		if err != nil {
			return pairResultMsg{err: err}
		}

		dev := client.New(adapter, "")
		defer dev.Close()

		bindingKey, err := dev.Pair(ctx, ssid, password, "", 30)
		if err != nil {
			return pairResultMsg{err: err}
		}
		return pairResultMsg{bindingKey: bindingKey}
	}
}
