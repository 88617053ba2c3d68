package payload

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/poolhouse/arcticspa/protocol"
)

// Information holds the pack's identity: serial numbers, firmware and
// hardware versions for the pack, topside panel, SpaBoy module, and RFID
// reader. Everything is reported as opaque version strings except SpaType.
type Information struct {
	PackSerialNumber           string
	PackFirmwareVersion        string
	PackHardwareVersion        string
	PackProductID              string
	PackBoardID                string
	TopsideProductID           string
	TopsideSoftwareVersion     string
	Guid                       string
	SpaType                    uint32
	WebsiteRegistration        string
	WebsiteRegistrationConfirm string
	MacAddress                 string
	FirmwareVersion            string
	ProductCode                string
	VarSoftwareVersion         string
	SpaboyFirmwareVersion      string
	SpaboyHardwareVersion      string
	SpaboyProductID            string
	SpaboySerialNumber         string
	RfidFirmwareVersion        string
	RfidHardwareVersion        string
	RfidProductID              string
	RfidSerialNumber           string
}

// MessageType implements protocol.Body.
func (*Information) MessageType() protocol.MessageType { return protocol.MsgTypeInformation }

// DecodeInformation parses an Information payload.
func DecodeInformation(data []byte) (*Information, error) {
	m := &Information{}
	strings := map[protowire.Number]*string{
		1:  &m.PackSerialNumber,
		2:  &m.PackFirmwareVersion,
		3:  &m.PackHardwareVersion,
		4:  &m.PackProductID,
		5:  &m.PackBoardID,
		6:  &m.TopsideProductID,
		7:  &m.TopsideSoftwareVersion,
		8:  &m.Guid,
		10: &m.WebsiteRegistration,
		11: &m.WebsiteRegistrationConfirm,
		12: &m.MacAddress,
		13: &m.FirmwareVersion,
		14: &m.ProductCode,
		15: &m.VarSoftwareVersion,
		16: &m.SpaboyFirmwareVersion,
		17: &m.SpaboyHardwareVersion,
		18: &m.SpaboyProductID,
		19: &m.SpaboySerialNumber,
		20: &m.RfidFirmwareVersion,
		21: &m.RfidHardwareVersion,
		22: &m.RfidProductID,
		23: &m.RfidSerialNumber,
	}
	err := unmarshal(data, func(num protowire.Number, typ protowire.Type, v uint64, raw []byte) {
		if num == 9 {
			if typ == protowire.VarintType {
				m.SpaType = uint32(v)
			}
			return
		}
		if typ != protowire.BytesType {
			return
		}
		if p, ok := strings[num]; ok {
			*p = string(raw)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("information: %w", err)
	}
	return m, nil
}

// Encode serializes the message in protobuf wire format.
func (m *Information) Encode() []byte {
	var b []byte
	b = appendString(b, 1, m.PackSerialNumber)
	b = appendString(b, 2, m.PackFirmwareVersion)
	b = appendString(b, 3, m.PackHardwareVersion)
	b = appendString(b, 4, m.PackProductID)
	b = appendString(b, 5, m.PackBoardID)
	b = appendString(b, 6, m.TopsideProductID)
	b = appendString(b, 7, m.TopsideSoftwareVersion)
	b = appendString(b, 8, m.Guid)
	b = appendVarint(b, 9, uint64(m.SpaType))
	b = appendString(b, 10, m.WebsiteRegistration)
	b = appendString(b, 11, m.WebsiteRegistrationConfirm)
	b = appendString(b, 12, m.MacAddress)
	b = appendString(b, 13, m.FirmwareVersion)
	b = appendString(b, 14, m.ProductCode)
	b = appendString(b, 15, m.VarSoftwareVersion)
	b = appendString(b, 16, m.SpaboyFirmwareVersion)
	b = appendString(b, 17, m.SpaboyHardwareVersion)
	b = appendString(b, 18, m.SpaboyProductID)
	b = appendString(b, 19, m.SpaboySerialNumber)
	b = appendString(b, 20, m.RfidFirmwareVersion)
	b = appendString(b, 21, m.RfidHardwareVersion)
	b = appendString(b, 22, m.RfidProductID)
	b = appendString(b, 23, m.RfidSerialNumber)
	return b
}
