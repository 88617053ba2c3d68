package client

import "errors"

// Session and command errors. All are sentinel values suitable for
// errors.Is; the client wraps them with fmt.Errorf("%w") to add context.
var (
	// ErrNoHost means the client was built with an empty host.
	ErrNoHost = errors.New("no host configured")

	// ErrNotConnected means the operation needs an open session.
	ErrNotConnected = errors.New("not connected")

	// ErrConnectFailed means the controller refused or the network rejected
	// the connection. Retrying without fixing the cause will not help.
	ErrConnectFailed = errors.New("connection failed")

	// ErrConnectTimeout means every connection attempt timed out.
	ErrConnectTimeout = errors.New("connection timed out")

	// ErrPollTimeout means the controller did not answer with every
	// requested message type inside the poll window. No partial results
	// accompany it.
	ErrPollTimeout = errors.New("poll timed out")

	// ErrUnknownCommand means the CommandType is not one the client knows.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrValueType means a command value has the wrong Go type.
	ErrValueType = errors.New("wrong value type for command")

	// ErrValueOutOfRange means a command value is outside the range the
	// controller accepts.
	ErrValueOutOfRange = errors.New("command value out of range")
)
