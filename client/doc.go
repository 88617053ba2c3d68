// Package client maintains a session with an Arctic Spa controller: a
// persistent TCP connection over which status messages are requested and
// commands written.
//
// A session is explicit about connection state. Connect dials, Disconnect
// hangs up, and nothing reconnects behind the caller's back; a dropped
// controller surfaces as an error on the next operation.
//
//	spa := client.New("192.168.1.42")
//	if err := spa.Connect(ctx); err != nil {
//		return err
//	}
//	defer spa.Disconnect()
//
//	msgs, err := spa.Poll(ctx, 5*time.Second,
//		protocol.MsgTypeLive, protocol.MsgTypeOnzenLive)
//	if err != nil {
//		return err
//	}
//	live := msgs[protocol.MsgTypeLive].Body.(*payload.Live)
//
// Writes go through Command, which validates the value against the target
// property before anything touches the wire:
//
//	err := spa.Command(ctx, client.CmdTemperatureSetpoint, 102)
//	err = spa.Command(ctx, client.CmdPump1, payload.PumpHigh)
//	err = spa.Command(ctx, client.CmdLights, true)
//
// The controller pushes state changes on its own; between polls, use
// ReadMessages to drain them.
package client
