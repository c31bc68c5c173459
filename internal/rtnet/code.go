package rtnet

import (
	"errors"

	"github.com/seregonwar/rtnetstack/internal/bufpool"
	"github.com/seregonwar/rtnetstack/internal/mdns"
	"github.com/seregonwar/rtnetstack/internal/ndp"
	"github.com/seregonwar/rtnetstack/internal/route"
	"github.com/seregonwar/rtnetstack/internal/rx"
	"github.com/seregonwar/rtnetstack/internal/tcplite"
	"github.com/seregonwar/rtnetstack/internal/udpstack"
)

// Code is the stable, loggable classification of an operation's outcome,
// one value per status spec.md Section 6 lists for the public interface
// (plus CodeOK). Every non-nil error this package returns has a matching
// Code, obtainable via CodeOf.
type Code int

const (
	CodeOK Code = iota
	CodeInvalidParam
	CodeNoBuffer
	CodeNoRoute
	CodeChecksum
	CodeTimeout
	CodeConnection
	CodeOverflow
)

// String returns the lower-snake-case name spec.md Section 6 uses for each
// status, e.g. "no_route".
func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeInvalidParam:
		return "invalid_param"
	case CodeNoBuffer:
		return "no_buffer"
	case CodeNoRoute:
		return "no_route"
	case CodeChecksum:
		return "checksum"
	case CodeTimeout:
		return "timeout"
	case CodeConnection:
		return "connection"
	case CodeOverflow:
		return "overflow"
	default:
		return "unknown"
	}
}

// Sentinel errors for failures originated directly by this package, rather
// than forwarded from a lower engine (e.g. a zero local address passed to
// Initialize).
var (
	ErrInvalidParam   = errors.New("invalid_param")
	ErrNotInitialized = errors.New("context not initialized")
)

// CodeOf classifies err against every sentinel error the core's engines can
// return, so a caller (cmd/rtnetd, cmd/rtnetctl, tests) can branch on a
// single stable Code instead of importing every internal engine package.
// A nil error maps to CodeOK; an unrecognized non-nil error maps to
// CodeInvalidParam, since every intentional failure path in this module is
// expected to wrap one of the sentinels below.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}

	switch {
	case errors.Is(err, ErrInvalidParam),
		errors.Is(err, ErrNotInitialized),
		errors.Is(err, udpstack.ErrInvalidParam),
		errors.Is(err, tcplite.ErrInvalidParam),
		errors.Is(err, mdns.ErrInvalidParam),
		errors.Is(err, route.ErrInvalidPrefixLen),
		errors.Is(err, rx.ErrUnknownProtocol),
		errors.Is(err, rx.ErrHopLimitZero),
		errors.Is(err, rx.ErrNotIPv6EtherType),
		errors.Is(err, rx.ErrNotForUs):
		return CodeInvalidParam

	case errors.Is(err, bufpool.ErrNoBuffer), errors.Is(err, tcplite.ErrNoBuffer):
		return CodeNoBuffer

	case errors.Is(err, ndp.ErrNoRoute), errors.Is(err, ndp.ErrUnresolved):
		return CodeNoRoute

	case errors.Is(err, rx.ErrChecksum):
		return CodeChecksum

	case errors.Is(err, mdns.ErrTimeout):
		return CodeTimeout

	case errors.Is(err, tcplite.ErrConnection):
		return CodeConnection

	case errors.Is(err, route.ErrOverflow):
		return CodeOverflow

	default:
		return CodeInvalidParam
	}
}
