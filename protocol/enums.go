package protocol

// OutputStyle is the wire encoding of the compiler's output style enum.
type OutputStyle int32

const (
	OutputExpanded OutputStyle = iota
	OutputCompressed
	OutputNested
	OutputCompact
)

// Syntax is the wire encoding of a stylesheet's syntax.
type Syntax int32

const (
	SyntaxSCSS Syntax = iota
	SyntaxIndented
	SyntaxCSS
)

// SourceMapStyle controls whether/how a source map is produced.
type SourceMapStyle int32

const (
	SourceMapNone SourceMapStyle = iota
	SourceMapSeparateSources
	SourceMapEmbeddedSources
)

// WireColorSpace enumerates the wire discriminants for [sassvalue.ColorSpace].
type WireColorSpace int32

const (
	ColorRGB WireColorSpace = iota
	ColorHSL
	ColorHWB
	ColorSRGB
	ColorSRGBLinear
	ColorDisplayP3
	ColorA98RGB
	ColorProphotoRGB
	ColorRec2020
	ColorXYZD65
	ColorXYZD50
	ColorLab
	ColorLCH
	ColorOklab
	ColorOklch
)

// WireSeparator enumerates the wire discriminants for list separators.
type WireSeparator int32

const (
	SepComma WireSeparator = iota
	SepSlash
	SepSpace
	SepUndecided
)

// LogEventKind enumerates the kinds of out-of-band log event the child may
// emit during a compilation.
type LogEventKind int32

const (
	LogWarning LogEventKind = iota
	LogDeprecationWarning
	LogDebug
)

// WireCalcOperator enumerates the wire discriminants for a calculation's
// binary operator.
type WireCalcOperator int32

const (
	CalcOpPlus WireCalcOperator = iota
	CalcOpMinus
	CalcOpTimes
	CalcOpDividedBy
)

// WireCalcKind enumerates the wire discriminants for a calculation's kind.
type WireCalcKind int32

const (
	CalcKindCalc WireCalcKind = iota
	CalcKindMin
	CalcKindMax
	CalcKindClamp
)

// messageKind discriminates the oneof carried by InboundMessage/OutboundMessage.
type messageKind int32

const (
	msgNone messageKind = iota

	// Inbound (host -> child)
	msgCompileRequest
	msgCanonicalizeResponse
	msgImportResponse
	msgFileImportResponse
	msgFunctionCallResponse
	msgVersionRequest

	// Outbound (child -> host)
	msgCompileResponse
	msgLogEvent
	msgCanonicalizeRequest
	msgImportRequest
	msgFileImportRequest
	msgFunctionCallRequest
	msgVersionResponse
	msgProtocolError
)
