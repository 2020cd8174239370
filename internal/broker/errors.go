package broker

import "errors"

// errUnsupportedAPIKey is returned internally when a client sends a
// request whose api_key this broker does not implement. It is never
// sent on the wire: the connection is simply closed.
var errUnsupportedAPIKey = errors.New("broker: unsupported api key")
