package property

import "math"

// CapacityProfile is the msgCapacityProfile enum (RFC 9622 §8.1.4;
// ct_capacity_profile_enum_t in the reference implementation).
type CapacityProfile int8

const (
	CapacityProfileBestEffort CapacityProfile = iota
	CapacityProfileScavenger
	CapacityProfileLowLatencyInteractive
	CapacityProfileLowLatencyNonInteractive
	CapacityProfileConstantRate
)

func (p CapacityProfile) String() string {
	switch p {
	case CapacityProfileBestEffort:
		return "BEST_EFFORT"
	case CapacityProfileScavenger:
		return "SCAVENGER"
	case CapacityProfileLowLatencyInteractive:
		return "LOW_LATENCY_INTERACTIVE"
	case CapacityProfileLowLatencyNonInteractive:
		return "LOW_LATENCY_NON_INTERACTIVE"
	case CapacityProfileConstantRate:
		return "CONSTANT_RATE"
	default:
		return "UNKNOWN"
	}
}

// MsgLifetimeInfinite mirrors MSG_LIFETIME_INFINITE: a lifetime of
// "never expires".
const MsgLifetimeInfinite uint64 = math.MaxUint64

// MsgChecksumFullCoverage mirrors MSG_CHECKSUM_FULL_COVERAGE.
const MsgChecksumFullCoverage uint32 = math.MaxUint32

const defaultMsgPriority = 100

// MessageProperties is the per-send property bag (spec.md §3), settable
// both as a Preconnection-level template and per MessageContext.
type MessageProperties struct {
	msgLifetime        uint64
	msgPriority        int
	msgOrdered         bool
	safelyReplayable   bool
	final              bool
	msgChecksumLen     uint32
	msgReliable        bool
	msgCapacityProfile CapacityProfile
	noFragmentation    bool
	noSegmentation     bool
}

// BuildMessageProperties returns a new table holding the defaults named
// in spec.md §8 (ct_message_properties_init / DEFAULT_MESSAGE_PROPERTIES):
// msgOrdered=true, msgReliable=true, msgLifetime=∞, msgPriority=100,
// msgCapacityProfile=BEST_EFFORT.
func BuildMessageProperties() *MessageProperties {
	return &MessageProperties{
		msgLifetime:        MsgLifetimeInfinite,
		msgPriority:        defaultMsgPriority,
		msgOrdered:         true,
		msgChecksumLen:     MsgChecksumFullCoverage,
		msgReliable:        true,
		msgCapacityProfile: CapacityProfileBestEffort,
	}
}

func (m *MessageProperties) MsgLifetime() uint64     { return m.msgLifetime }
func (m *MessageProperties) SetMsgLifetime(v uint64) { m.msgLifetime = v }

func (m *MessageProperties) MsgPriority() int     { return m.msgPriority }
func (m *MessageProperties) SetMsgPriority(v int) { m.msgPriority = v }

func (m *MessageProperties) MsgOrdered() bool     { return m.msgOrdered }
func (m *MessageProperties) SetMsgOrdered(v bool) { m.msgOrdered = v }

func (m *MessageProperties) SafelyReplayable() bool     { return m.safelyReplayable }
func (m *MessageProperties) SetSafelyReplayable(v bool) { m.safelyReplayable = v }

func (m *MessageProperties) MsgChecksumLen() uint32     { return m.msgChecksumLen }
func (m *MessageProperties) SetMsgChecksumLen(v uint32) { m.msgChecksumLen = v }

func (m *MessageProperties) MsgReliable() bool     { return m.msgReliable }
func (m *MessageProperties) SetMsgReliable(v bool) { m.msgReliable = v }

func (m *MessageProperties) MsgCapacityProfile() CapacityProfile     { return m.msgCapacityProfile }
func (m *MessageProperties) SetMsgCapacityProfile(v CapacityProfile) { m.msgCapacityProfile = v }

func (m *MessageProperties) NoFragmentation() bool     { return m.noFragmentation }
func (m *MessageProperties) SetNoFragmentation(v bool) { m.noFragmentation = v }

func (m *MessageProperties) NoSegmentation() bool     { return m.noSegmentation }
func (m *MessageProperties) SetNoSegmentation(v bool) { m.noSegmentation = v }

// IsFinal reports the FINAL slot. A nil receiver returns false rather
// than panicking (spec.md §4.2, Open Question (a) resolved in
// DESIGN.md: nil-safe reads return false).
func (m *MessageProperties) IsFinal() bool {
	if m == nil {
		return false
	}
	return m.final
}

// SetFinal marks FINAL true. A nil receiver is a silent no-op, the
// write-side half of the same Open Question resolution.
func (m *MessageProperties) SetFinal() {
	if m == nil {
		return
	}
	m.final = true
}

// DeepCopy duplicates m into a new table; m has no heap-owned fields so
// this is a plain value copy, but the method exists so callers never
// need to special-case MessageProperties against SecurityParameters,
// which does own slices.
func (m *MessageProperties) DeepCopy() *MessageProperties {
	if m == nil {
		return BuildMessageProperties()
	}
	cp := *m
	return &cp
}
