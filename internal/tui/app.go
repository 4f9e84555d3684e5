package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quecble/quecble/internal/config"
)

// Screen names the active screen in the onboarding wizard.
type Screen string

const (
	ScreenScan Screen = "scan"
	ScreenPair Screen = "pair"
)

// AppModel is the top-level coordinator: scan for devices, hand the
// selection off to the pair screen; once pairing finishes, q quits and esc
// returns to a fresh scan.
type AppModel struct {
	CurrentScreen Screen

	ScanModel ScanModel
	PairModel PairModel

	Registry *config.Registry

	Width  int
	Height int
}

// NewAppModel creates the wizard starting at the scan screen. registry may
// be nil; when set, a successful pairing records the device's last-seen
// address, product key, and status. No nickname is recorded.
func NewAppModel(registry *config.Registry) AppModel {
	return AppModel{
		CurrentScreen: ScreenScan,
		ScanModel:     NewScanModel(),
		Registry:      registry,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.ScanModel.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.ScanModel.Width = msg.Width
		m.ScanModel.Height = msg.Height
		m.PairModel.Width = msg.Width
		m.PairModel.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.CurrentScreen {
	case ScreenScan:
		updated, cmd := m.ScanModel.Update(msg)
		m.ScanModel = updated
		if m.ScanModel.Selected {
			if device := m.ScanModel.GetSelectedDevice(); device != nil {
				m.PairModel = NewPairModel(*device)
				m.CurrentScreen = ScreenPair
				return m, m.PairModel.Init()
			}
		}
		if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.ScanModel.Scanning {
			if keyMsg.String() == "q" || keyMsg.String() == "esc" {
				return m, tea.Quit
			}
		}
		return m, cmd

	case ScreenPair:
		updated, cmd := m.PairModel.Update(msg)
		m.PairModel = updated
		if m.PairModel.Done {
			if m.PairModel.Err == nil && m.Registry != nil {
				desc := m.PairModel.Device.Descriptor
				m.Registry.UpdateDeviceLastSeen(desc.DeviceKey, m.PairModel.Device.Address.String(), desc.ProductKey, desc.DeviceStatus)
			}
			if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
				m.CurrentScreen = ScreenScan
				m.ScanModel = NewScanModel()
				return m, m.ScanModel.Init()
			}
			if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "q" {
				return m, tea.Quit
			}
		}
		return m, cmd
	}

	return m, nil
}

func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenScan:
		return m.ScanModel.View()
	case ScreenPair:
		return m.PairModel.View()
	default:
		return "unknown screen"
	}
}
