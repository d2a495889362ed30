package protocol

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// InboundMessage is the oneof envelope for every message the host may send
// to the child. Exactly one field is non-nil.
type InboundMessage struct {
	CompileRequest        *CompileRequest
	CanonicalizeResponse  *CanonicalizeResponse
	ImportResponse        *ImportResponse
	FileImportResponse    bool // discriminant only; unsupported, see ErrFileImportUnsupported
	FunctionCallResponse  *FunctionCallResponse
	VersionRequest        *VersionRequest
}

func (m *InboundMessage) Marshal() []byte {
	var b []byte
	switch {
	case m.CompileRequest != nil:
		b = appendMessageField(b, 1, m.CompileRequest.Marshal())
	case m.CanonicalizeResponse != nil:
		b = appendMessageField(b, 2, m.CanonicalizeResponse.Marshal())
	case m.ImportResponse != nil:
		b = appendMessageField(b, 3, m.ImportResponse.Marshal())
	case m.FunctionCallResponse != nil:
		b = appendMessageField(b, 5, m.FunctionCallResponse.Marshal())
	case m.VersionRequest != nil:
		b = appendMessageField(b, 6, m.VersionRequest.Marshal())
	}
	return b
}

// UnmarshalInboundMessage decodes a frame payload as an InboundMessage. A
// FileImportResponse discriminant (field 4) is recognized but rejected:
// that half of the protocol is unsupported, per ErrFileImportUnsupported.
func UnmarshalInboundMessage(data []byte) (*InboundMessage, error) {
	m := &InboundMessage{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			v, err := UnmarshalCompileRequest(raw)
			if err != nil {
				return err
			}
			m.CompileRequest = v
		case 2:
			v, err := UnmarshalCanonicalizeResponse(raw)
			if err != nil {
				return err
			}
			m.CanonicalizeResponse = v
		case 3:
			v, err := UnmarshalImportResponse(raw)
			if err != nil {
				return err
			}
			m.ImportResponse = v
		case 4:
			return ErrFileImportUnsupported
		case 5:
			v, err := UnmarshalFunctionCallResponse(raw)
			if err != nil {
				return err
			}
			m.FunctionCallResponse = v
		case 6:
			v, err := UnmarshalVersionRequest(raw)
			if err != nil {
				return err
			}
			m.VersionRequest = v
		default:
			return fmt.Errorf("protocol: unknown inbound message discriminant %d", num)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// OutboundMessage is the oneof envelope for every message the child may
// send to the host. Exactly one field is non-nil.
type OutboundMessage struct {
	CompileResponse      *CompileResponse
	LogEvent             *LogEvent
	CanonicalizeRequest  *CanonicalizeRequest
	ImportRequest        *ImportRequest
	FileImportRequest    bool // discriminant only; unsupported, see ErrFileImportUnsupported
	FunctionCallRequest  *FunctionCallRequest
	VersionResponse      *VersionResponse
	ProtocolError        *ProtocolError
}

func (m *OutboundMessage) Marshal() []byte {
	var b []byte
	switch {
	case m.CompileResponse != nil:
		b = appendMessageField(b, 1, m.CompileResponse.Marshal())
	case m.LogEvent != nil:
		b = appendMessageField(b, 2, m.LogEvent.Marshal())
	case m.CanonicalizeRequest != nil:
		b = appendMessageField(b, 3, m.CanonicalizeRequest.Marshal())
	case m.ImportRequest != nil:
		b = appendMessageField(b, 4, m.ImportRequest.Marshal())
	case m.FunctionCallRequest != nil:
		b = appendMessageField(b, 6, m.FunctionCallRequest.Marshal())
	case m.VersionResponse != nil:
		b = appendMessageField(b, 7, m.VersionResponse.Marshal())
	case m.ProtocolError != nil:
		b = appendMessageField(b, 8, m.ProtocolError.Marshal())
	}
	return b
}

func UnmarshalOutboundMessage(data []byte) (*OutboundMessage, error) {
	m := &OutboundMessage{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			v, err := UnmarshalCompileResponse(raw)
			if err != nil {
				return err
			}
			m.CompileResponse = v
		case 2:
			v, err := UnmarshalLogEvent(raw)
			if err != nil {
				return err
			}
			m.LogEvent = v
		case 3:
			v, err := UnmarshalCanonicalizeRequest(raw)
			if err != nil {
				return err
			}
			m.CanonicalizeRequest = v
		case 4:
			v, err := UnmarshalImportRequest(raw)
			if err != nil {
				return err
			}
			m.ImportRequest = v
		case 5:
			return ErrFileImportUnsupported
		case 6:
			v, err := UnmarshalFunctionCallRequest(raw)
			if err != nil {
				return err
			}
			m.FunctionCallRequest = v
		case 7:
			v, err := UnmarshalVersionResponse(raw)
			if err != nil {
				return err
			}
			m.VersionResponse = v
		case 8:
			v, err := UnmarshalProtocolError(raw)
			if err != nil {
				return err
			}
			m.ProtocolError = v
		default:
			return fmt.Errorf("protocol: unknown outbound message discriminant %d", num)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
