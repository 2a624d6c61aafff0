// Package config defines the protocol configuration consumed by the ARQ
// simulator, together with its defaults, decoding and validation.
package config

import (
	"sort"

	"github.com/sarchlab/arqsim/sim"
)

// Keys used in configuration files.
const (
	KeyProtocol          = "protocol"
	KeyBits              = "bit for numbering"
	KeyNumFrames         = "number of frames"
	KeySenderWindow      = "sender window"
	KeyFramesLost        = "frames lost"
	KeyAcksLost          = "acks lost"
	KeyFrameTransmission = "frame transmission time"
	KeyFramePropagation  = "frame propagation time"
	KeyProcessing        = "processing time"
	KeyAckTransmission   = "ack transmission time"
	KeyAckPropagation    = "ack propagation time"
	KeyTimeout           = "timeout"
	KeyMaxEvents         = "max events"

	legacyKeyFramesLost = "frame lost"
	legacyKeyAcksLost   = "ack lost"
)

// MaxBits is the largest accepted number of bits for numbering.
const MaxBits = 30

// DefaultMaxEvents bounds the number of events a single run may process.
const DefaultMaxEvents = 1000000

// Timing holds the durations of the link.
type Timing struct {
	FrameTransmission sim.VTimeInSec
	FramePropagation  sim.VTimeInSec
	Processing        sim.VTimeInSec
	AckTransmission   sim.VTimeInSec
	AckPropagation    sim.VTimeInSec
	Timeout           sim.VTimeInSec
}

// DefaultTiming returns the timing used when a configuration does not
// override it.
func DefaultTiming() Timing {
	return Timing{
		FrameTransmission: 1,
		FramePropagation:  1,
		Processing:        0.5,
		AckTransmission:   0.5,
		AckPropagation:    1,
		Timeout:           12,
	}
}

// Config is a validated protocol configuration. It must not be modified after
// it has been returned by FromMap, Parse or Load.
type Config struct {
	Protocol         Protocol
	BitsForNumbering int
	NumFrames        int
	SenderWindow     int
	ReceiverWindow   int
	Timing           Timing
	MaxEvents        int

	// FramesLost and AcksLost hold sorted, deduplicated 1-based ordinals.
	FramesLost []int
	AcksLost   []int
}

// SeqSpace returns the number of distinct sequence numbers, 2^bits.
func (c Config) SeqSpace() int {
	return 1 << c.BitsForNumbering
}

// SeqOf returns the sequence number carried by the 0-based frame index.
func (c Config) SeqOf(frame int) int {
	return frame % c.SeqSpace()
}

// FrameLost tells if the frame transmission with the given 1-based ordinal is
// dropped.
func (c Config) FrameLost(ordinal int) bool {
	return containsSorted(c.FramesLost, ordinal)
}

// AckLost tells if the ack or nack transmission with the given 1-based
// ordinal is dropped.
func (c Config) AckLost(ordinal int) bool {
	return containsSorted(c.AcksLost, ordinal)
}

func containsSorted(list []int, v int) bool {
	i := sort.SearchInts(list, v)
	return i < len(list) && list[i] == v
}
