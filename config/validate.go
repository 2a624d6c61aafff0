package config

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/sarchlab/arqsim/sim"
)

var knownKeys = map[string]bool{
	KeyProtocol:          true,
	KeyBits:              true,
	KeyNumFrames:         true,
	KeySenderWindow:      true,
	KeyFramesLost:        true,
	KeyAcksLost:          true,
	KeyFrameTransmission: true,
	KeyFramePropagation:  true,
	KeyProcessing:        true,
	KeyAckTransmission:   true,
	KeyAckPropagation:    true,
	KeyTimeout:           true,
	KeyMaxEvents:         true,
	legacyKeyFramesLost:  true,
	legacyKeyAcksLost:    true,
}

// FromMap validates a decoded configuration document and fills in defaults.
func FromMap(raw map[string]any) (Config, error) {
	if err := rejectUnknownKeys(raw); err != nil {
		return Config{}, err
	}

	c := Config{Timing: DefaultTiming()}

	name, ok := raw[KeyProtocol].(string)
	if !ok {
		return Config{}, invalid(KeyProtocol,
			fmt.Sprintf("the selected protocol (%v) is not valid", raw[KeyProtocol]))
	}

	p, err := ParseProtocol(name)
	if err != nil {
		return Config{}, err
	}
	c.Protocol = p

	c.BitsForNumbering, err = requiredInt(raw, KeyBits, 1,
		"the number of bits for numbering the frames should be at least 1")
	if err != nil {
		return Config{}, err
	}

	if c.BitsForNumbering > MaxBits {
		return Config{}, invalid(KeyBits,
			fmt.Sprintf("at most %d bits are supported", MaxBits))
	}

	c.NumFrames, err = requiredInt(raw, KeyNumFrames, 1,
		"the number of frames to be sent should be at least 1")
	if err != nil {
		return Config{}, err
	}

	c.FramesLost, err = ordinalList(raw, KeyFramesLost, legacyKeyFramesLost, "frames")
	if err != nil {
		return Config{}, err
	}

	c.AcksLost, err = ordinalList(raw, KeyAcksLost, legacyKeyAcksLost, "acks")
	if err != nil {
		return Config{}, err
	}

	if err := c.decodeTiming(raw); err != nil {
		return Config{}, err
	}

	c.MaxEvents = DefaultMaxEvents
	if _, ok := raw[KeyMaxEvents]; ok {
		c.MaxEvents, err = requiredInt(raw, KeyMaxEvents, 1,
			"the maximum number of events should be at least 1")
		if err != nil {
			return Config{}, err
		}
	}

	if err := c.decodeWindows(raw); err != nil {
		return Config{}, err
	}

	return c, nil
}

func rejectUnknownKeys(raw map[string]any) error {
	var unknown []string
	for k := range raw {
		if !knownKeys[k] {
			unknown = append(unknown, k)
		}
	}

	if len(unknown) == 0 {
		return nil
	}

	sort.Strings(unknown)

	return invalid(unknown[0], "unknown configuration key")
}

func (c *Config) decodeTiming(raw map[string]any) error {
	fields := []struct {
		key string
		dst *sim.VTimeInSec
	}{
		{KeyFrameTransmission, &c.Timing.FrameTransmission},
		{KeyFramePropagation, &c.Timing.FramePropagation},
		{KeyProcessing, &c.Timing.Processing},
		{KeyAckTransmission, &c.Timing.AckTransmission},
		{KeyAckPropagation, &c.Timing.AckPropagation},
		{KeyTimeout, &c.Timing.Timeout},
	}

	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok {
			continue
		}

		n, ok := asNumber(v)
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			return invalid(f.key, "should be a number")
		}

		if n < 0 {
			return invalid(f.key, "should be >= 0")
		}

		*f.dst = sim.VTimeInSec(n)
	}

	return nil
}

func (c *Config) decodeWindows(raw map[string]any) error {
	n := c.SeqSpace()

	switch c.Protocol {
	case StopAndWait:
		c.BitsForNumbering = 1
		c.SenderWindow = 1
		c.ReceiverWindow = 1
		return nil
	case GoBackN:
		ws, err := senderWindow(raw, n-1)
		if err != nil {
			return err
		}

		if ws <= 0 || ws >= n {
			return invalid(KeySenderWindow, fmt.Sprintf(
				"sender window size %d invalid for %s, must be in [1, %d]",
				ws, c.Protocol, n-1))
		}

		c.SenderWindow = ws
		c.ReceiverWindow = 1
	case SelectiveRepeat:
		ws, err := senderWindow(raw, n/2)
		if err != nil {
			return err
		}

		if ws <= 0 || ws > n/2 {
			return invalid(KeySenderWindow, fmt.Sprintf(
				"sender window size %d invalid for %s, must be in [1, %d]",
				ws, c.Protocol, n/2))
		}

		c.SenderWindow = ws
		c.ReceiverWindow = ws
	default:
		panic(fmt.Sprintf("unknown protocol %d", c.Protocol))
	}

	return nil
}

func senderWindow(raw map[string]any, def int) (int, error) {
	v, ok := raw[KeySenderWindow]
	if !ok {
		return def, nil
	}

	ws, ok := asInt(v)
	if !ok {
		return 0, invalid(KeySenderWindow, "should be an integer")
	}

	return ws, nil
}

func requiredInt(raw map[string]any, key string, min int, msg string) (int, error) {
	v, ok := raw[key]
	if !ok {
		return 0, invalid(key, msg)
	}

	n, ok := asInt(v)
	if !ok {
		return 0, invalid(key, "should be an integer")
	}

	if n < min {
		return 0, invalid(key, msg)
	}

	return n, nil
}

func ordinalList(raw map[string]any, key, legacyKey, what string) ([]int, error) {
	v, ok := raw[key]
	if !ok {
		key = legacyKey
		v, ok = raw[legacyKey]
	}

	if !ok {
		return nil, nil
	}

	list, ok := v.([]any)
	if !ok {
		return nil, invalid(key, fmt.Sprintf(
			"the list of %s lost should be a list, even if only one is lost",
			what))
	}

	seen := make(map[int]bool, len(list))
	ordinals := make([]int, 0, len(list))
	for _, item := range list {
		n, ok := asInt(item)
		if !ok || n < 1 {
			return nil, invalid(key, fmt.Sprintf(
				"the lost %s should be numbered as 1, 2...", what))
		}

		if seen[n] {
			continue
		}

		seen[n] = true
		ordinals = append(ordinals, n)
	}

	sort.Ints(ordinals)

	return ordinals, nil
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	f, ok := asNumber(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}

	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}

	return int(f), true
}
