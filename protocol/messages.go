package protocol

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// SourceSpan locates a range of source text. An absent URL or empty Text
// round-trips as the zero value; decoders never need to distinguish
// "absent" from "empty string" beyond that.
type SourceSpan struct {
	Text        string
	URL         string
	StartLine   int32
	StartColumn int32
	EndLine     int32
	EndColumn   int32
	Context     string
}

func marshalSourceSpan(s *SourceSpan) []byte {
	if s == nil {
		return nil
	}
	var b []byte
	b = appendStringField(b, 1, s.Text)
	b = appendStringField(b, 2, s.URL)
	b = appendVarintField(b, 3, uint64(uint32(s.StartLine)))
	b = appendVarintField(b, 4, uint64(uint32(s.StartColumn)))
	b = appendVarintField(b, 5, uint64(uint32(s.EndLine)))
	b = appendVarintField(b, 6, uint64(uint32(s.EndColumn)))
	b = appendStringField(b, 7, s.Context)
	return b
}

func unmarshalSourceSpan(data []byte) (*SourceSpan, error) {
	s := &SourceSpan{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			s.Text = stringFromRaw(raw)
		case 2:
			s.URL = stringFromRaw(raw)
		case 3:
			s.StartLine = int32(varintFromRaw(raw))
		case 4:
			s.StartColumn = int32(varintFromRaw(raw))
		case 5:
			s.EndLine = int32(varintFromRaw(raw))
		case 6:
			s.EndColumn = int32(varintFromRaw(raw))
		case 7:
			s.Context = stringFromRaw(raw)
		}
		return nil
	})
	return s, err
}

// --- Importer descriptor (shared by CompileRequest) ----------------------

// WireImporterKind discriminates an importer entry in a CompileRequest.
type WireImporterKind int32

const (
	ImporterCustom WireImporterKind = iota
	ImporterLoadPath
)

type WireImporter struct {
	Kind     WireImporterKind
	ID       uint64
	LoadPath string
}

func marshalWireImporter(v *WireImporter) []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(v.Kind))
	b = appendVarintField(b, 2, v.ID)
	b = appendStringField(b, 3, v.LoadPath)
	return b
}

func unmarshalWireImporter(data []byte) (*WireImporter, error) {
	v := &WireImporter{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			v.Kind = WireImporterKind(varintFromRaw(raw))
		case 2:
			v.ID = varintFromRaw(raw)
		case 3:
			v.LoadPath = stringFromRaw(raw)
		}
		return nil
	})
	return v, err
}

// --- CompileRequest / CompileResponse ------------------------------------

type WireCompileInputKind int32

const (
	CompileInputString WireCompileInputKind = iota
	CompileInputPath
)

type CompileRequest struct {
	ID int64

	InputKind WireCompileInputKind
	// InputString/InputURL/InputSyntax apply when InputKind == CompileInputString.
	InputString string
	InputURL    string
	InputSyntax Syntax
	// InputPath applies when InputKind == CompileInputPath.
	InputPath string

	Style          OutputStyle
	SourceMap      bool
	SourceMapStyle SourceMapStyle
	Importers      []*WireImporter
	GlobalFunctions []string
}

func (m *CompileRequest) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.ID))
	b = appendVarintField(b, 2, uint64(m.InputKind))
	switch m.InputKind {
	case CompileInputString:
		var s []byte
		s = appendStringField(s, 1, m.InputString)
		s = appendStringField(s, 2, m.InputURL)
		s = appendVarintField(s, 3, uint64(m.InputSyntax))
		b = appendMessageField(b, 3, s)
	case CompileInputPath:
		b = appendStringField(b, 4, m.InputPath)
	}
	b = appendVarintField(b, 5, uint64(m.Style))
	b = appendBoolField(b, 6, m.SourceMap)
	b = appendVarintField(b, 7, uint64(m.SourceMapStyle))
	for _, imp := range m.Importers {
		b = appendMessageField(b, 8, marshalWireImporter(imp))
	}
	for _, sig := range m.GlobalFunctions {
		b = appendStringField(b, 9, sig)
	}
	return b
}

func UnmarshalCompileRequest(data []byte) (*CompileRequest, error) {
	m := &CompileRequest{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			m.ID = int64(varintFromRaw(raw))
		case 2:
			m.InputKind = WireCompileInputKind(varintFromRaw(raw))
		case 3:
			return walkFields(raw, func(n2 protowire.Number, t2 protowire.Type, raw2 []byte) error {
				switch n2 {
				case 1:
					m.InputString = stringFromRaw(raw2)
				case 2:
					m.InputURL = stringFromRaw(raw2)
				case 3:
					m.InputSyntax = Syntax(varintFromRaw(raw2))
				}
				return nil
			})
		case 4:
			m.InputPath = stringFromRaw(raw)
		case 5:
			m.Style = OutputStyle(varintFromRaw(raw))
		case 6:
			m.SourceMap = varintFromRaw(raw) != 0
		case 7:
			m.SourceMapStyle = SourceMapStyle(varintFromRaw(raw))
		case 8:
			imp, err := unmarshalWireImporter(raw)
			if err != nil {
				return err
			}
			m.Importers = append(m.Importers, imp)
		case 9:
			m.GlobalFunctions = append(m.GlobalFunctions, stringFromRaw(raw))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if m.Style < OutputExpanded || m.Style > OutputCompact {
		return nil, fmt.Errorf("protocol: unknown output style discriminant %d", m.Style)
	}
	return m, nil
}

type CompileResponse struct {
	ID int64

	// Success is non-nil iff compilation succeeded; mutually exclusive
	// with Failure.
	Success *CompileSuccess
	Failure *CompileFailure
}

type CompileSuccess struct {
	CSS       string
	SourceMap string
}

type CompileFailure struct {
	Message    string
	Span       *SourceSpan
	StackTrace string
	LoadedURLs []string
}

func (m *CompileResponse) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.ID))
	if m.Success != nil {
		var s []byte
		s = appendStringField(s, 1, m.Success.CSS)
		s = appendStringField(s, 2, m.Success.SourceMap)
		b = appendMessageField(b, 2, s)
	}
	if m.Failure != nil {
		var f []byte
		f = appendStringField(f, 1, m.Failure.Message)
		f = appendMessageField(f, 2, marshalSourceSpan(m.Failure.Span))
		f = appendStringField(f, 3, m.Failure.StackTrace)
		for _, u := range m.Failure.LoadedURLs {
			f = appendStringField(f, 4, u)
		}
		b = appendMessageField(b, 3, f)
	}
	return b
}

func UnmarshalCompileResponse(data []byte) (*CompileResponse, error) {
	m := &CompileResponse{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			m.ID = int64(varintFromRaw(raw))
		case 2:
			s := &CompileSuccess{}
			err := walkFields(raw, func(n2 protowire.Number, t2 protowire.Type, raw2 []byte) error {
				switch n2 {
				case 1:
					s.CSS = stringFromRaw(raw2)
				case 2:
					s.SourceMap = stringFromRaw(raw2)
				}
				return nil
			})
			if err != nil {
				return err
			}
			m.Success = s
		case 3:
			f := &CompileFailure{}
			err := walkFields(raw, func(n2 protowire.Number, t2 protowire.Type, raw2 []byte) error {
				switch n2 {
				case 1:
					f.Message = stringFromRaw(raw2)
				case 2:
					span, err := unmarshalSourceSpan(raw2)
					if err != nil {
						return err
					}
					f.Span = span
				case 3:
					f.StackTrace = stringFromRaw(raw2)
				case 4:
					f.LoadedURLs = append(f.LoadedURLs, stringFromRaw(raw2))
				}
				return nil
			})
			if err != nil {
				return err
			}
			m.Failure = f
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if m.Success == nil && m.Failure == nil {
		return nil, fmt.Errorf("protocol: compile response %d carries neither success nor failure", m.ID)
	}
	return m, nil
}

// --- LogEvent -------------------------------------------------------------

type LogEvent struct {
	CompilationID int64
	Kind          LogEventKind
	Message       string
	Formatted     string
	Span          *SourceSpan
	StackTrace    string
}

func (m *LogEvent) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.CompilationID))
	b = appendVarintField(b, 2, uint64(m.Kind))
	b = appendStringField(b, 3, m.Message)
	b = appendStringField(b, 4, m.Formatted)
	b = appendMessageField(b, 5, marshalSourceSpan(m.Span))
	b = appendStringField(b, 6, m.StackTrace)
	return b
}

func UnmarshalLogEvent(data []byte) (*LogEvent, error) {
	m := &LogEvent{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			m.CompilationID = int64(varintFromRaw(raw))
		case 2:
			m.Kind = LogEventKind(varintFromRaw(raw))
		case 3:
			m.Message = stringFromRaw(raw)
		case 4:
			m.Formatted = stringFromRaw(raw)
		case 5:
			span, err := unmarshalSourceSpan(raw)
			if err != nil {
				return err
			}
			m.Span = span
		case 6:
			m.StackTrace = stringFromRaw(raw)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if m.Kind < LogWarning || m.Kind > LogDebug {
		return nil, fmt.Errorf("protocol: unknown log event kind discriminant %d", m.Kind)
	}
	return m, nil
}

// --- Canonicalize (host importer callback) --------------------------------

type CanonicalizeRequest struct {
	CompilationID  int64
	ImporterID     uint64
	URL            string
	FromImport     bool
	ContainingURL  string
}

func (m *CanonicalizeRequest) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.CompilationID))
	b = appendVarintField(b, 2, m.ImporterID)
	b = appendStringField(b, 3, m.URL)
	b = appendBoolField(b, 4, m.FromImport)
	b = appendStringField(b, 5, m.ContainingURL)
	return b
}

func UnmarshalCanonicalizeRequest(data []byte) (*CanonicalizeRequest, error) {
	m := &CanonicalizeRequest{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			m.CompilationID = int64(varintFromRaw(raw))
		case 2:
			m.ImporterID = varintFromRaw(raw)
		case 3:
			m.URL = stringFromRaw(raw)
		case 4:
			m.FromImport = varintFromRaw(raw) != 0
		case 5:
			m.ContainingURL = stringFromRaw(raw)
		}
		return nil
	})
	return m, err
}

// CanonicalizeResponse carries either a canonical URL (absent/empty means
// "this importer declines") or an error message; never both.
type CanonicalizeResponse struct {
	CompilationID int64
	URL           string
	Error         string
}

func (m *CanonicalizeResponse) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.CompilationID))
	if m.Error != "" {
		b = appendStringField(b, 3, m.Error)
	} else {
		b = appendStringField(b, 2, m.URL)
	}
	return b
}

func UnmarshalCanonicalizeResponse(data []byte) (*CanonicalizeResponse, error) {
	m := &CanonicalizeResponse{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			m.CompilationID = int64(varintFromRaw(raw))
		case 2:
			m.URL = stringFromRaw(raw)
		case 3:
			m.Error = stringFromRaw(raw)
		}
		return nil
	})
	return m, err
}

// --- Import (host importer callback, load stage) --------------------------

type ImportRequest struct {
	CompilationID int64
	ImporterID    uint64
	URL           string
}

func (m *ImportRequest) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.CompilationID))
	b = appendVarintField(b, 2, m.ImporterID)
	b = appendStringField(b, 3, m.URL)
	return b
}

func UnmarshalImportRequest(data []byte) (*ImportRequest, error) {
	m := &ImportRequest{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			m.CompilationID = int64(varintFromRaw(raw))
		case 2:
			m.ImporterID = varintFromRaw(raw)
		case 3:
			m.URL = stringFromRaw(raw)
		}
		return nil
	})
	return m, err
}

type ImportResponse struct {
	CompilationID int64

	Success      bool
	Contents     string
	Syntax       Syntax
	SourceMapURL string
	Error        string
}

func (m *ImportResponse) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.CompilationID))
	if m.Success {
		var s []byte
		s = appendStringField(s, 1, m.Contents)
		s = appendVarintField(s, 2, uint64(m.Syntax))
		s = appendStringField(s, 3, m.SourceMapURL)
		b = appendMessageField(b, 2, s)
	} else {
		b = appendStringField(b, 3, m.Error)
	}
	return b
}

func UnmarshalImportResponse(data []byte) (*ImportResponse, error) {
	m := &ImportResponse{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			m.CompilationID = int64(varintFromRaw(raw))
		case 2:
			m.Success = true
			return walkFields(raw, func(n2 protowire.Number, t2 protowire.Type, raw2 []byte) error {
				switch n2 {
				case 1:
					m.Contents = stringFromRaw(raw2)
				case 2:
					m.Syntax = Syntax(varintFromRaw(raw2))
				case 3:
					m.SourceMapURL = stringFromRaw(raw2)
				}
				return nil
			})
		case 3:
			m.Error = stringFromRaw(raw)
		}
		return nil
	})
	return m, err
}

// --- FunctionCall (host function callback) ---------------------------------

type FunctionCallRequest struct {
	CompilationID int64

	// Exactly one of FunctionID/Name identifies the callee: by the
	// process-wide registry ID, or by name, resolved against the
	// compilation's merged host-function map.
	FunctionID uint64
	HasID      bool
	Name       string

	Arguments []*WireValue
}

func (m *FunctionCallRequest) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.CompilationID))
	if m.HasID {
		b = appendVarintField(b, 2, m.FunctionID)
	} else {
		b = appendStringField(b, 3, m.Name)
	}
	for _, a := range m.Arguments {
		b = appendMessageField(b, 4, MarshalWireValue(a))
	}
	return b
}

func UnmarshalFunctionCallRequest(data []byte) (*FunctionCallRequest, error) {
	m := &FunctionCallRequest{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			m.CompilationID = int64(varintFromRaw(raw))
		case 2:
			m.HasID, m.FunctionID = true, varintFromRaw(raw)
		case 3:
			m.Name = stringFromRaw(raw)
		case 4:
			v, err := UnmarshalWireValue(raw)
			if err != nil {
				return err
			}
			m.Arguments = append(m.Arguments, v)
		}
		return nil
	})
	return m, err
}

type FunctionCallResponse struct {
	CompilationID int64

	Success *WireValue
	Error   string
}

func (m *FunctionCallResponse) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.CompilationID))
	if m.Success != nil {
		b = appendMessageField(b, 2, MarshalWireValue(m.Success))
	} else {
		b = appendStringField(b, 3, m.Error)
	}
	return b
}

func UnmarshalFunctionCallResponse(data []byte) (*FunctionCallResponse, error) {
	m := &FunctionCallResponse{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			m.CompilationID = int64(varintFromRaw(raw))
		case 2:
			v, err := UnmarshalWireValue(raw)
			if err != nil {
				return err
			}
			m.Success = v
		case 3:
			m.Error = stringFromRaw(raw)
		}
		return nil
	})
	return m, err
}

// --- Version negotiation ----------------------------------------------------

type VersionRequest struct {
	ID int64
}

func (m *VersionRequest) Marshal() []byte {
	return appendVarintField(nil, 1, uint64(m.ID))
}

func UnmarshalVersionRequest(data []byte) (*VersionRequest, error) {
	m := &VersionRequest{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		if num == 1 {
			m.ID = int64(varintFromRaw(raw))
		}
		return nil
	})
	return m, err
}

type VersionResponse struct {
	ID              int64
	ProtocolVersion string
	PackageVersion  string
	CompilerVersion string
	CompilerName    string
}

func (m *VersionResponse) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.ID))
	b = appendStringField(b, 2, m.ProtocolVersion)
	b = appendStringField(b, 3, m.PackageVersion)
	b = appendStringField(b, 4, m.CompilerVersion)
	b = appendStringField(b, 5, m.CompilerName)
	return b
}

func UnmarshalVersionResponse(data []byte) (*VersionResponse, error) {
	m := &VersionResponse{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			m.ID = int64(varintFromRaw(raw))
		case 2:
			m.ProtocolVersion = stringFromRaw(raw)
		case 3:
			m.PackageVersion = stringFromRaw(raw)
		case 4:
			m.CompilerVersion = stringFromRaw(raw)
		case 5:
			m.CompilerName = stringFromRaw(raw)
		}
		return nil
	})
	return m, err
}

// ProtocolError is an out-of-band message either side may send when it
// detects a framing or encoding violation it cannot recover from; receipt
// always terminates the compiler driver.
type ProtocolError struct {
	ID      int64
	Message string
}

func (m *ProtocolError) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.ID))
	b = appendStringField(b, 2, m.Message)
	return b
}

func UnmarshalProtocolError(data []byte) (*ProtocolError, error) {
	m := &ProtocolError{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			m.ID = int64(varintFromRaw(raw))
		case 2:
			m.Message = stringFromRaw(raw)
		}
		return nil
	})
	return m, err
}

// ErrFileImportUnsupported is returned when the child sends a
// FileImportRequest, or the host is asked to honor a FileImportResponse.
// The file-importer half of the protocol is intentionally unimplemented;
// encountering its discriminant is treated as a protocol error rather than
// silently ignored, so a compiler that actually requires it fails loudly
// instead of hanging.
var ErrFileImportUnsupported = fmt.Errorf("protocol: file importer requests are not supported")
