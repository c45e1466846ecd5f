package selfcheck

import (
	"context"

	"github.com/xkilldash9x/luci-doctor/internal/luci"
)

// Status classifies one catalog entry in the support report.
type Status int

const (
	// StatusProbe marks an entry that must be invoked live; it never
	// appears in a finished report.
	StatusProbe Status = iota
	// StatusSupported means the endpoint answered, or is known good on
	// every firmware (the login that produced the session proves itself).
	StatusSupported
	// StatusUnsupported means the endpoint failed, or is known broken.
	StatusUnsupported
	// StatusSkipped marks mutating endpoints that must never be invoked
	// automatically.
	StatusSkipped
)

var statusSymbols = map[Status]string{
	StatusSupported:   "🟢",
	StatusUnsupported: "🔴",
	StatusSkipped:     "⚪",
}

// Symbol returns the check-list marker for the status.
func (s Status) Symbol() string {
	if symbol, ok := statusSymbols[s]; ok {
		return symbol
	}
	return "❓"
}

// Probe invokes one endpoint exactly once; a non-nil error marks the
// endpoint unsupported.
type Probe func(ctx context.Context, client *luci.Client) error

// Endpoint is one catalog entry. Entries whose Status is not StatusProbe
// carry a sentinel classification and are recorded without a network call.
type Endpoint struct {
	// Path labels the entry in the report and names the remote operation.
	Path   string
	Status Status
	Probe  Probe
}

// probe adapts a Client method into a Probe, discarding the payload.
func probe(call func(*luci.Client, context.Context) (luci.Response, error)) Probe {
	return func(ctx context.Context, client *luci.Client) error {
		_, err := call(client, ctx)
		return err
	}
}

// Catalog returns the fixed endpoint list, in report order. Login and
// init_info are pre-classified as supported: without them there would be no
// session to sweep with. The trailing entries are mutating and stay skipped.
func Catalog() []Endpoint {
	return []Endpoint{
		{Path: "xqsystem/login", Status: StatusSupported},
		{Path: "xqsystem/init_info", Status: StatusSupported},
		{Path: "misystem/status", Status: StatusProbe, Probe: probe((*luci.Client).Status)},
		{Path: "xqnetwork/mode", Status: StatusProbe, Probe: probe((*luci.Client).Mode)},
		{Path: "misystem/topo_graph", Status: StatusProbe, Probe: probe((*luci.Client).TopoGraph)},
		{Path: "xqsystem/check_rom_update", Status: StatusProbe, Probe: probe((*luci.Client).RomUpdate)},
		{Path: "xqnetwork/wan_info", Status: StatusProbe, Probe: probe((*luci.Client).WanInfo)},
		{Path: "misystem/led", Status: StatusProbe, Probe: probe((*luci.Client).LED)},
		{Path: "xqnetwork/wifi_detail_all", Status: StatusProbe, Probe: probe((*luci.Client).WifiDetailAll)},
		{Path: "xqnetwork/wifi_diag_detail_all", Status: StatusProbe, Probe: probe((*luci.Client).WifiDiagDetailAll)},
		{Path: "xqnetwork/avaliable_channels", Status: StatusProbe, Probe: func(ctx context.Context, client *luci.Client) error {
			_, err := client.AvailableChannels(ctx, 1)
			return err
		}},
		{Path: "xqnetwork/wifi_connect_devices", Status: StatusProbe, Probe: probe((*luci.Client).WifiConnectDevices)},
		{Path: "misystem/devicelist", Status: StatusProbe, Probe: probe((*luci.Client).DeviceList)},
		{Path: "xqnetwork/wifiap_signal", Status: StatusProbe, Probe: probe((*luci.Client).WifiApSignal)},
		{Path: "misystem/newstatus", Status: StatusProbe, Probe: probe((*luci.Client).NewStatus)},
		{Path: "xqsystem/reboot", Status: StatusSkipped},
		{Path: "xqsystem/upgrade_rom", Status: StatusSkipped},
		{Path: "xqsystem/flash_permission", Status: StatusSkipped},
		{Path: "xqnetwork/set_wifi", Status: StatusSkipped},
		{Path: "xqnetwork/set_wifi_without_restart", Status: StatusSkipped},
	}
}
