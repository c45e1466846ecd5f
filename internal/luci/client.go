// Package luci implements the session and request protocol of the
// proprietary HTTP management API ("Luci") exposed by MiWiFi-class routers.
package luci

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"
)

const (
	// DefaultAddress is the hostname the stock firmware answers on.
	DefaultAddress = "miwifi.com"
	// DefaultTimeout bounds every single request against the router.
	DefaultTimeout = 20 * time.Second

	baseResource = "http://%s/cgi-bin/luci"
	loginPath    = "api/xqsystem/login"
	logoutPath   = "web/logout"
)

// Response is the decoded JSON body of one router reply.
type Response = map[string]any

// Config carries the connection parameters for one router.
type Config struct {
	// Address is the router's hostname or IP, without scheme.
	Address  string
	Password string
	// Timeout applies per request; zero means DefaultTimeout.
	Timeout time.Duration
}

// Client owns a single logical session against one router: it performs the
// challenge-response login, holds the resulting stok token, and dispatches
// every API call. One Client assumes at most one login in flight; concurrent
// logins race on the token and the last writer wins.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger

	address  string
	password string
	baseURL  string

	// token is read at call time and written only by Login and Logout.
	token string
}

// NewClient builds a Client from cfg. A nil logger is replaced with a nop.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	address := strings.TrimSuffix(cfg.Address, "/")
	if address == "" {
		address = DefaultAddress
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("luci"),
		address:    address,
		password:   cfg.Password,
		baseURL:    fmt.Sprintf(baseResource, address),
	}
}

// Address returns the router address the client was built for.
func (c *Client) Address() string {
	return c.address
}

// Token returns the current session token, empty before a successful login.
func (c *Client) Token() string {
	return c.token
}

// Login authenticates with a fresh nonce and the challenge-response password
// hash, stores the returned stok token, and returns the decoded payload. Any
// previously held token is overwritten unconditionally. Transport failures
// return ErrConnection; a reply without a usable token returns ErrToken.
func (c *Client) Login(ctx context.Context) (Response, error) {
	nonce := Nonce()
	form := url.Values{
		"username": {Username},
		"logtype":  {strconv.Itoa(LoginType)},
		"password": {PasswordHash(nonce, c.password)},
		"nonce":    {nonce},
	}

	endpoint := c.baseURL + "/" + loginPath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	data, status, err := c.do(req)
	if err != nil {
		return nil, err
	}

	token, ok := data["token"].(string)
	if status != http.StatusOK || !ok || token == "" {
		return nil, fmt.Errorf("%w: login answered status %d without a token", ErrToken, status)
	}

	c.token = token
	return data, nil
}

// Logout issues a best-effort logout against the router and clears the local
// token. It is a no-op without a token, never returns an error, and clears
// local state even when the router is unreachable.
func (c *Client) Logout(ctx context.Context) {
	if c.token == "" {
		return
	}

	endpoint := fmt.Sprintf("%s/;stok=%s/%s", c.baseURL, c.token, logoutPath)
	c.token = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Debug("logout request build failed", zap.Error(err))
		return
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("logout failed", zap.String("url", endpoint), zap.Error(err))
		return
	}
	resp.Body.Close()

	c.logger.Debug("logged out", zap.String("url", endpoint))
}

// Get dispatches one API call. The URL is {base}/;stok={token}/api/{path}
// with the token segment present only when useToken is true; the token used
// is whatever the session holds at call time, including the empty string
// before a login. A decodable body with code 0 is returned as is; a missing
// or positive code returns ErrToken, everything below that ErrConnection.
func (c *Client) Get(ctx context.Context, path string, useToken bool) (Response, error) {
	var stok string
	if useToken {
		stok = fmt.Sprintf(";stok=%s/", c.token)
	}
	endpoint := fmt.Sprintf("%s/%sapi/%s", c.baseURL, stok, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	data, _, err := c.do(req)
	if err != nil {
		return nil, err
	}

	code, ok := data["code"].(float64)
	if !ok || code > 0 {
		return nil, fmt.Errorf("%w: %s answered code %v", ErrToken, path, data["code"])
	}

	return data, nil
}

// do executes the request and decodes the body, classifying transport and
// decode failures as ErrConnection.
func (c *Client) do(req *http.Request) (Response, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("url", req.URL.String()), zap.Error(err))
		return nil, 0, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	c.logger.Debug("request completed",
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", body),
	)

	var data Response
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, 0, fmt.Errorf("%w: undecodable body: %v", ErrConnection, err)
	}

	return data, resp.StatusCode, nil
}

// The remote surface below is a set of literal-path calls through Get; each
// inherits Get's error semantics and reads the token at call time.

// TopoGraph calls misystem/topo_graph. It is the one anonymous endpoint and
// works before any login.
func (c *Client) TopoGraph(ctx context.Context) (Response, error) {
	return c.Get(ctx, "misystem/topo_graph", false)
}

// InitInfo calls xqsystem/init_info, which carries model and firmware data.
func (c *Client) InitInfo(ctx context.Context) (Response, error) {
	return c.Get(ctx, "xqsystem/init_info", true)
}

// Status calls misystem/status.
func (c *Client) Status(ctx context.Context) (Response, error) {
	return c.Get(ctx, "misystem/status", true)
}

// NewStatus calls misystem/newstatus.
func (c *Client) NewStatus(ctx context.Context) (Response, error) {
	return c.Get(ctx, "misystem/newstatus", true)
}

// Mode calls xqnetwork/mode.
func (c *Client) Mode(ctx context.Context) (Response, error) {
	return c.Get(ctx, "xqnetwork/mode", true)
}

// WifiStatus calls xqnetwork/wifi_status.
func (c *Client) WifiStatus(ctx context.Context) (Response, error) {
	return c.Get(ctx, "xqnetwork/wifi_status", true)
}

// WifiDetailAll calls xqnetwork/wifi_detail_all.
func (c *Client) WifiDetailAll(ctx context.Context) (Response, error) {
	return c.Get(ctx, "xqnetwork/wifi_detail_all", true)
}

// WifiDiagDetailAll calls xqnetwork/wifi_diag_detail_all.
func (c *Client) WifiDiagDetailAll(ctx context.Context) (Response, error) {
	return c.Get(ctx, "xqnetwork/wifi_diag_detail_all", true)
}

// AvailableChannels calls xqnetwork/avaliable_channels for one adapter.
// The misspelled path is what the firmware serves.
func (c *Client) AvailableChannels(ctx context.Context, index int) (Response, error) {
	return c.Get(ctx, fmt.Sprintf("xqnetwork/avaliable_channels?index=%d", index), true)
}

// WanInfo calls xqnetwork/wan_info.
func (c *Client) WanInfo(ctx context.Context) (Response, error) {
	return c.Get(ctx, "xqnetwork/wan_info", true)
}

// WifiApSignal calls xqnetwork/wifiap_signal.
func (c *Client) WifiApSignal(ctx context.Context) (Response, error) {
	return c.Get(ctx, "xqnetwork/wifiap_signal", true)
}

// WifiConnectDevices calls xqnetwork/wifi_connect_devices.
func (c *Client) WifiConnectDevices(ctx context.Context) (Response, error) {
	return c.Get(ctx, "xqnetwork/wifi_connect_devices", true)
}

// DeviceList calls misystem/devicelist.
func (c *Client) DeviceList(ctx context.Context) (Response, error) {
	return c.Get(ctx, "misystem/devicelist", true)
}

// RomUpdate calls xqsystem/check_rom_update.
func (c *Client) RomUpdate(ctx context.Context) (Response, error) {
	return c.Get(ctx, "xqsystem/check_rom_update", true)
}

// LED reads the LED state via misystem/led.
func (c *Client) LED(ctx context.Context) (Response, error) {
	return c.Get(ctx, "misystem/led", true)
}

// SetLED switches the status LED on (1) or off (0).
func (c *Client) SetLED(ctx context.Context, state int) (Response, error) {
	return c.Get(ctx, fmt.Sprintf("misystem/led?on=%d", state), true)
}

// WifiTurnOn enables the wifi adapter at index via xqnetwork/wifi_up.
func (c *Client) WifiTurnOn(ctx context.Context, index int) (Response, error) {
	return c.Get(ctx, fmt.Sprintf("xqnetwork/wifi_up?index=%d", index), true)
}

// WifiTurnOff disables the wifi adapter at index via xqnetwork/wifi_down.
func (c *Client) WifiTurnOff(ctx context.Context, index int) (Response, error) {
	return c.Get(ctx, fmt.Sprintf("xqnetwork/wifi_down?index=%d", index), true)
}

// Reboot calls xqsystem/reboot. It is mutating and never probed
// automatically.
func (c *Client) Reboot(ctx context.Context) (Response, error) {
	return c.Get(ctx, "xqsystem/reboot", true)
}
