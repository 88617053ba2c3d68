package payload

import (
	"github.com/poolhouse/arcticspa/protocol"
)

// DefaultRegistry returns a registry with every implemented schema wired
// in. Callers can register additional decoders on the result.
func DefaultRegistry() *protocol.Registry {
	reg := protocol.NewRegistry()
	reg.Register(protocol.MsgTypeLive, func(p []byte) (protocol.Body, error) {
		return DecodeLive(p)
	})
	reg.Register(protocol.MsgTypeOnzenLive, func(p []byte) (protocol.Body, error) {
		return DecodeOnzenLive(p)
	})
	reg.Register(protocol.MsgTypeConfiguration, func(p []byte) (protocol.Body, error) {
		return DecodeConfiguration(p)
	})
	reg.Register(protocol.MsgTypeInformation, func(p []byte) (protocol.Body, error) {
		return DecodeInformation(p)
	})
	reg.Register(protocol.MsgTypeSettings, func(p []byte) (protocol.Body, error) {
		return DecodeSettings(p)
	})
	reg.Register(protocol.MsgTypeCommand, func(p []byte) (protocol.Body, error) {
		return DecodeCommand(p)
	})
	return reg
}
