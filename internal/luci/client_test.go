package luci

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points a Client at an httptest server.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		Address:  strings.TrimPrefix(server.URL, "http://"),
		Password: "test1234",
		Timeout:  2 * time.Second,
	}, nil)

	return client, server
}

// loginHandler answers the login POST with a token and delegates everything
// else to next.
func loginHandler(token string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/cgi-bin/luci/api/xqsystem/login" {
			fmt.Fprintf(w, `{"code":0,"token":%q}`, token)
			return
		}
		if next != nil {
			next(w, r)
			return
		}
		http.NotFound(w, r)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{}, nil)

	assert.Equal(t, DefaultAddress, client.Address())
	assert.Equal(t, "http://miwifi.com/cgi-bin/luci", client.baseURL)
	assert.Equal(t, 20*time.Second, DefaultTimeout)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.Empty(t, client.Token())
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient(Config{Address: "192.168.31.1/"}, nil)

	assert.Equal(t, "192.168.31.1", client.Address())
	assert.Equal(t, "http://192.168.31.1/cgi-bin/luci", client.baseURL)
}

func TestLogin_Success(t *testing.T) {
	var form struct {
		username, logtype, password, nonce string
	}

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/cgi-bin/luci/api/xqsystem/login", r.URL.Path)
		require.NoError(t, r.ParseForm())

		form.username = r.PostFormValue("username")
		form.logtype = r.PostFormValue("logtype")
		form.password = r.PostFormValue("password")
		form.nonce = r.PostFormValue("nonce")

		fmt.Fprint(w, `{"code":0,"token":"stok-value","url":"/cgi-bin/luci/;stok=stok-value/web/home"}`)
	}))

	data, err := client.Login(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "stok-value", client.Token())
	assert.Equal(t, "stok-value", data["token"])

	assert.Equal(t, Username, form.username)
	assert.Equal(t, "2", form.logtype)
	assert.NotEmpty(t, form.nonce)
	// The hash on the wire must be the challenge response for the nonce the
	// client actually sent.
	assert.Equal(t, PasswordHash(form.nonce, "test1234"), form.password)
}

func TestLogin_MissingToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":0,"msg":"no token for you"}`)
	}))

	_, err := client.Login(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToken)
	assert.ErrorIs(t, err, ErrLuci)
	assert.Empty(t, client.Token())
}

func TestLogin_BadStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"code":401,"token":"ignored"}`)
	}))

	_, err := client.Login(context.Background())
	assert.ErrorIs(t, err, ErrToken)
}

func TestLogin_MalformedBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	}))

	_, err := client.Login(context.Background())
	assert.ErrorIs(t, err, ErrConnection)
}

func TestLogin_TransportFailure(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := client.Login(context.Background())
	assert.ErrorIs(t, err, ErrConnection)
}

func TestLogin_OverwritesPriorToken(t *testing.T) {
	var token atomic.Value
	token.Store("first")

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"code":0,"token":%q}`, token.Load())
	}))

	_, err := client.Login(context.Background())
	require.NoError(t, err)
	require.Equal(t, "first", client.Token())

	token.Store("second")
	_, err = client.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", client.Token())
}

func TestGet_TokenQualifiedURL(t *testing.T) {
	var gotPath string

	client, _ := newTestClient(t, loginHandler("abc123", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"code":0,"hardware":"RA67"}`)
	}))

	_, err := client.Login(context.Background())
	require.NoError(t, err)

	data, err := client.Get(context.Background(), "xqsystem/init_info", true)
	require.NoError(t, err)

	assert.Equal(t, "/cgi-bin/luci/;stok=abc123/api/xqsystem/init_info", gotPath)
	assert.Equal(t, "RA67", data["hardware"])
}

func TestGet_AnonymousURL(t *testing.T) {
	var gotPath string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"code":0}`)
	}))

	_, err := client.Get(context.Background(), "misystem/topo_graph", false)
	require.NoError(t, err)
	assert.Equal(t, "/cgi-bin/luci/api/misystem/topo_graph", gotPath)
}

// TestGet_EmptyTokenBeforeLogin verifies the URL-construction branch: with
// useToken set but no login performed, the stok segment is present and
// empty, and the server's rejection still classifies as ErrToken.
func TestGet_EmptyTokenBeforeLogin(t *testing.T) {
	var gotPath string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"code":401}`)
	}))

	_, err := client.Get(context.Background(), "misystem/status", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToken)
	assert.Equal(t, "/cgi-bin/luci/;stok=/api/misystem/status", gotPath)
}

func TestGet_ErrorClassification(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{name: "nonzero code", body: `{"code":1629}`, want: ErrToken},
		{name: "missing code", body: `{"list":[]}`, want: ErrToken},
		{name: "undecodable body", body: `login required`, want: ErrConnection},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))

			_, err := client.Get(context.Background(), "misystem/status", true)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, ErrLuci)
		})
	}
}

func TestGet_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{
		Address: strings.TrimPrefix(server.URL, "http://"),
		Timeout: 50 * time.Millisecond,
	}, nil)

	_, err := client.Get(context.Background(), "misystem/status", true)
	assert.ErrorIs(t, err, ErrConnection)
}

func TestLogout_NoTokenIsNoOp(t *testing.T) {
	var calls atomic.Int32

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	client.Logout(context.Background())
	assert.Zero(t, calls.Load())
}

func TestLogout_ClearsTokenAndCallsRouter(t *testing.T) {
	var gotPath string

	client, _ := newTestClient(t, loginHandler("bye-token", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, "ok")
	}))

	_, err := client.Login(context.Background())
	require.NoError(t, err)

	client.Logout(context.Background())
	assert.Equal(t, "/cgi-bin/luci/;stok=bye-token/web/logout", gotPath)
	assert.Empty(t, client.Token())
}

// TestLogout_NeverRaises covers the unreachable-router case: logout swallows
// the transport failure and still clears local session state.
func TestLogout_NeverRaises(t *testing.T) {
	client, server := newTestClient(t, loginHandler("doomed", nil))

	_, err := client.Login(context.Background())
	require.NoError(t, err)

	server.Close()

	client.Logout(context.Background())
	assert.Empty(t, client.Token())
}

func TestThinCalls_Paths(t *testing.T) {
	cases := []struct {
		name string
		call func(*Client, context.Context) (Response, error)
		path string
	}{
		{"status", (*Client).Status, "/cgi-bin/luci/;stok=tok/api/misystem/status"},
		{"new status", (*Client).NewStatus, "/cgi-bin/luci/;stok=tok/api/misystem/newstatus"},
		{"mode", (*Client).Mode, "/cgi-bin/luci/;stok=tok/api/xqnetwork/mode"},
		{"wifi status", (*Client).WifiStatus, "/cgi-bin/luci/;stok=tok/api/xqnetwork/wifi_status"},
		{"wifi detail all", (*Client).WifiDetailAll, "/cgi-bin/luci/;stok=tok/api/xqnetwork/wifi_detail_all"},
		{"wan info", (*Client).WanInfo, "/cgi-bin/luci/;stok=tok/api/xqnetwork/wan_info"},
		{"device list", (*Client).DeviceList, "/cgi-bin/luci/;stok=tok/api/misystem/devicelist"},
		{"rom update", (*Client).RomUpdate, "/cgi-bin/luci/;stok=tok/api/xqsystem/check_rom_update"},
		{"led", (*Client).LED, "/cgi-bin/luci/;stok=tok/api/misystem/led"},
		{"reboot", (*Client).Reboot, "/cgi-bin/luci/;stok=tok/api/xqsystem/reboot"},
		{
			"wifi on", func(c *Client, ctx context.Context) (Response, error) { return c.WifiTurnOn(ctx, 2) },
			"/cgi-bin/luci/;stok=tok/api/xqnetwork/wifi_up?index=2",
		},
		{
			"wifi off", func(c *Client, ctx context.Context) (Response, error) { return c.WifiTurnOff(ctx, 1) },
			"/cgi-bin/luci/;stok=tok/api/xqnetwork/wifi_down?index=1",
		},
		{
			"set led", func(c *Client, ctx context.Context) (Response, error) { return c.SetLED(ctx, 1) },
			"/cgi-bin/luci/;stok=tok/api/misystem/led?on=1",
		},
		{
			"available channels", func(c *Client, ctx context.Context) (Response, error) { return c.AvailableChannels(ctx, 1) },
			"/cgi-bin/luci/;stok=tok/api/xqnetwork/avaliable_channels?index=1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string

			client, _ := newTestClient(t, loginHandler("tok", func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.RequestURI()
				fmt.Fprint(w, `{"code":0}`)
			}))

			_, err := client.Login(context.Background())
			require.NoError(t, err)

			_, err = tc.call(client, context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.path, got)
		})
	}
}

func TestErrors_Unwrap(t *testing.T) {
	assert.True(t, errors.Is(ErrConnection, ErrLuci))
	assert.True(t, errors.Is(ErrToken, ErrLuci))
	assert.False(t, errors.Is(ErrConnection, ErrToken))
}
