package luci

import (
	"errors"
	"fmt"
)

// ErrLuci is the umbrella classification for any failure talking to the
// router. Both concrete kinds wrap it, so callers that only care about
// "the call did not succeed" match once with errors.Is.
var ErrLuci = errors.New("luci api error")

var (
	// ErrConnection marks transport-level failures: unreachable host,
	// timeout, or a body that could not be decoded as JSON.
	ErrConnection = fmt.Errorf("%w: connection failed", ErrLuci)

	// ErrToken marks application-level rejection: the router answered, but
	// with a non-2xx status, a missing session token, or a nonzero result
	// code. The firmware does not distinguish "not authenticated" from
	// "endpoint rejected the call", so neither can we.
	ErrToken = fmt.Errorf("%w: request rejected", ErrLuci)
)
