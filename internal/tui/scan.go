package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quecble/quecble/internal/bletransport"
)

// scanTimeout bounds how long one BLE scan runs before results are
// reported, matching the registry's default ScanTimeoutSeconds.
const scanTimeout = 10 * time.Second

type scanStartMsg struct{}
type scanCompleteMsg struct {
	devices []bletransport.FoundDevice
	err     error
}

type scanKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Quit   key.Binding
}

func (k scanKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Quit}
}

func (k scanKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Enter}, {k.Rescan, k.Quit}}
}

func newScanKeyMap() scanKeyMap {
	return scanKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
		Enter:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "pair")),
		Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
	}
}

// deviceItem wraps a FoundDevice for use with bubbles/list.
type deviceItem struct {
	device bletransport.FoundDevice
}

func (d deviceItem) FilterValue() string {
	desc := d.device.Descriptor
	return desc.ProductKey + " " + desc.DeviceKey + " " + d.device.Address.String()
}

func (d deviceItem) Title() string {
	return fmt.Sprintf("%s (%s)", d.device.Descriptor.DeviceKey, d.device.Address.String())
}

func (d deviceItem) Description() string {
	desc := d.device.Descriptor
	status := "unbound"
	if desc.IsBound {
		status = "bound"
	}
	return fmt.Sprintf("product=%s wifi_configured=%v status=%s", desc.ProductKey, desc.IsWifiConfigured, status)
}

// ScanModel drives the scan screen: runs Scan, lists FoundDevices, and
// reports the user's selection via Selected/GetSelectedDevice.
type ScanModel struct {
	Scanning   bool
	DeviceList list.Model
	Selected   bool
	Err        error

	Width  int
	Height int

	Spinner spinner.Model
	Help    help.Model
	Keys    scanKeyMap
}

// NewScanModel builds a scan screen ready to run Init.
func NewScanModel() ScanModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	deviceList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	deviceList.Title = "QUEC Devices"
	deviceList.SetShowStatusBar(false)
	deviceList.SetFilteringEnabled(true)
	deviceList.Styles.Title = TitleStyle

	return ScanModel{
		DeviceList: deviceList,
		Spinner:    s,
		Help:       help.New(),
		Keys:       newScanKeyMap(),
	}
}

func (m ScanModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		scanDevices,
		m.Spinner.Tick,
	)
}

func (m ScanModel) Update(msg tea.Msg) (ScanModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DeviceList.SetWidth(msg.Width - 4)
		m.DeviceList.SetHeight(msg.Height - 10)

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.DeviceList.SetItems(nil)
			m.Err = nil
			return m, tea.Batch(
				func() tea.Msg { return scanStartMsg{} },
				scanDevices,
				m.Spinner.Tick,
			)
		case "enter", " ":
			if item, ok := m.DeviceList.SelectedItem().(deviceItem); ok {
				_ = item
				m.Selected = true
			}
			return m, nil
		}

	case scanStartMsg:
		m.Scanning = true

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.devices))
		for i, dev := range msg.devices {
			items[i] = deviceItem{device: dev}
		}
		m.DeviceList.SetItems(items)

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if !m.Scanning {
		m.DeviceList, cmd = m.DeviceList.Update(msg)
	}
	return m, cmd
}

func (m ScanModel) View() string {
	var content string
	if m.Scanning {
		content = fmt.Sprintf("\n%s Scanning for QUEC devices (%s)...\n", m.Spinner.View(), scanTimeout)
	} else if m.Err != nil {
		content = RenderError(fmt.Sprintf("scan failed: %v", m.Err))
	} else if len(m.DeviceList.Items()) == 0 {
		var b strings.Builder
		b.WriteString(lipgloss.NewStyle().Foreground(WarningColor).Bold(true).Render("⚠ No QUEC devices found"))
		b.WriteString("\n\nPress 'r' to rescan.\n")
		content = b.String()
	} else {
		content = m.DeviceList.View()
	}

	helpText := m.Help.View(m.Keys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// GetSelectedDevice returns the selected device, if any.
func (m ScanModel) GetSelectedDevice() *bletransport.FoundDevice {
	if !m.Selected {
		return nil
	}
	if item, ok := m.DeviceList.SelectedItem().(deviceItem); ok {
		return &item.device
	}
	return nil
}

func scanDevices() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()
	devices, err := bletransport.Scan(ctx)
	return scanCompleteMsg{devices: devices, err: err}
}
