package luci

import "strconv"

// Mode is the operating mode reported by xqnetwork/mode.
type Mode int

const (
	ModeDefault     Mode = 0
	ModeRepeater    Mode = 1
	ModeAccessPoint Mode = 2
	ModeMesh        Mode = 9
)

var modePhrases = map[Mode]string{
	ModeDefault:     "default",
	ModeRepeater:    "repeater",
	ModeAccessPoint: "access_point",
	ModeMesh:        "mesh",
}

// Phrase returns the display label for the mode, "undefined" for values the
// firmware has not been seen to report.
func (m Mode) Phrase() string {
	if phrase, ok := modePhrases[m]; ok {
		return phrase
	}
	return "undefined"
}

func (m Mode) String() string {
	return strconv.Itoa(int(m))
}

// Connection is the band a client device is attached through, as reported in
// the device list.
type Connection int

const (
	ConnectionLAN     Connection = 0
	ConnectionWifi24  Connection = 1
	ConnectionWifi50  Connection = 2
	ConnectionGuest   Connection = 3
	ConnectionWifi50G Connection = 6
)

var connectionPhrases = map[Connection]string{
	ConnectionLAN:     "Lan",
	ConnectionWifi24:  "2.4G",
	ConnectionWifi50:  "5G",
	ConnectionGuest:   "Guest",
	ConnectionWifi50G: "5G Game",
}

// Phrase returns the display label for the band.
func (c Connection) Phrase() string {
	if phrase, ok := connectionPhrases[c]; ok {
		return phrase
	}
	return "undefined"
}

func (c Connection) String() string {
	return strconv.Itoa(int(c))
}

// IfName is a wifi interface name as the firmware's wifi endpoints report
// it.
type IfName string

const (
	IfNameWL0 IfName = "wl0"
	IfNameWL1 IfName = "wl1"
	IfNameWL2 IfName = "wl2"
)

var ifNamePhrases = map[IfName]string{
	IfNameWL0: "wifi_5_0",
	IfNameWL1: "wifi_2_4",
	IfNameWL2: "wifi_5_0_game",
}

// Phrase returns the band label for the interface.
func (i IfName) Phrase() string {
	if phrase, ok := ifNamePhrases[i]; ok {
		return phrase
	}
	return "undefined"
}

func (i IfName) String() string {
	return string(i)
}

// DeviceAction classifies how a tracked device moved between polls.
type DeviceAction int

const (
	DeviceActionAdd  DeviceAction = 0
	DeviceActionMove DeviceAction = 1
	DeviceActionSkip DeviceAction = 2
)

var deviceActionPhrases = map[DeviceAction]string{
	DeviceActionAdd:  "Add",
	DeviceActionMove: "Move",
	DeviceActionSkip: "Skip",
}

// Phrase returns the display label for the action.
func (a DeviceAction) Phrase() string {
	if phrase, ok := deviceActionPhrases[a]; ok {
		return phrase
	}
	return "undefined"
}

func (a DeviceAction) String() string {
	return strconv.Itoa(int(a))
}
