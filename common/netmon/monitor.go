// Package netmon turns default interface updates of the host into network
// change notifications.
package netmon

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/sagernet/sing-connect/log"
	"github.com/sagernet/sing-tun"
	"github.com/sagernet/sing/common/control"
	E "github.com/sagernet/sing/common/exceptions"
	"github.com/sagernet/sing/common/x/list"

	"github.com/benbjohnson/clock"
)

var ErrUnsupported = E.New("network monitor is not supported on this platform")

type Callback = func(now time.Time)

type Monitor struct {
	logger           log.ContextLogger
	clock            clock.Clock
	callback         Callback
	networkMonitor   tun.NetworkUpdateMonitor
	interfaceMonitor tun.DefaultInterfaceMonitor
	element          *list.Element[tun.DefaultInterfaceUpdateCallback]
	access           sync.Mutex
	lastInterface    string
	lastIndex        int
}

func New(logger log.ContextLogger, clk clock.Clock, callback Callback) (*Monitor, error) {
	if clk == nil {
		clk = clock.New()
	}
	monitor := &Monitor{
		logger:   logger,
		clock:    clk,
		callback: callback,
	}
	networkMonitor, err := tun.NewNetworkUpdateMonitor(logger)
	if err != nil {
		if errors.Is(err, os.ErrInvalid) {
			return nil, ErrUnsupported
		}
		return nil, E.Cause(err, "create network monitor")
	}
	interfaceMonitor, err := tun.NewDefaultInterfaceMonitor(networkMonitor, logger, tun.DefaultInterfaceMonitorOptions{
		InterfaceFinder: control.NewDefaultInterfaceFinder(),
	})
	if err != nil {
		return nil, E.Cause(err, "create interface monitor")
	}
	monitor.networkMonitor = networkMonitor
	monitor.interfaceMonitor = interfaceMonitor
	return monitor, nil
}

func (m *Monitor) Start() error {
	err := m.networkMonitor.Start()
	if err != nil {
		return E.Cause(err, "start network monitor")
	}
	err = m.interfaceMonitor.Start()
	if err != nil {
		m.networkMonitor.Close()
		return E.Cause(err, "start interface monitor")
	}
	if defaultInterface := m.interfaceMonitor.DefaultInterface(); defaultInterface != nil {
		m.lastInterface = defaultInterface.Name
		m.lastIndex = defaultInterface.Index
	}
	m.element = m.interfaceMonitor.RegisterCallback(m.notifyInterfaceUpdate)
	return nil
}

func (m *Monitor) Close() error {
	if m.element != nil {
		m.interfaceMonitor.UnregisterCallback(m.element)
	}
	var err error
	err = E.Append(err, m.interfaceMonitor.Close(), func(err error) error {
		return E.Cause(err, "close interface monitor")
	})
	err = E.Append(err, m.networkMonitor.Close(), func(err error) error {
		return E.Cause(err, "close network monitor")
	})
	return err
}

func (m *Monitor) notifyInterfaceUpdate(defaultInterface *control.Interface, flags int) {
	if defaultInterface == nil {
		m.logger.Error("missing default interface")
		return
	}
	m.access.Lock()
	m.lastInterface = defaultInterface.Name
	m.lastIndex = defaultInterface.Index
	m.access.Unlock()
	m.logger.Info("updated default interface ", defaultInterface.Name, ", index ", defaultInterface.Index)
	m.callback(m.clock.Now())
}

// DefaultInterface returns the name and index of the last default interface
// seen.
func (m *Monitor) DefaultInterface() (string, int) {
	m.access.Lock()
	defer m.access.Unlock()
	return m.lastInterface, m.lastIndex
}
