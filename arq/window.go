package arq

import (
	"strconv"
	"strings"
)

// Membership describes where a sequence number falls in the receiver window.
type Membership struct {
	// InWindow tells if the sequence number matches a slot of the current
	// receiver range.
	InWindow bool

	// IsFirst tells if the matching slot is the base of the range.
	IsFirst bool

	// FirstSeq is the sequence number of the base slot, i.e. the first frame
	// that has not been accepted.
	FirstSeq int

	// LastAcceptedSeq is the sequence number of the last frame accepted in
	// order. It is (0 - 1) mod N before any frame is accepted.
	LastAcceptedSeq int
}

// Window tracks the sliding windows of the sender and of the receiver.
//
// Both windows are contiguous ranges of 0-based frame indices. Sequence
// numbers repeat modulo the sequence space, so lookups by sequence number are
// only resolved inside the active range.
type Window struct {
	numFrames    int
	seqSpace     int
	senderSize   int
	receiverSize int

	senderStart   int
	receiverStart int

	inFlight []bool
	accepted []bool
}

// NewWindow creates the windows of a run with numFrames frames.
func NewWindow(numFrames, seqSpace, senderSize, receiverSize int) *Window {
	if numFrames < 1 || seqSpace < 2 || senderSize < 1 || receiverSize < 1 {
		panic("invalid window parameters")
	}

	return &Window{
		numFrames:    numFrames,
		seqSpace:     seqSpace,
		senderSize:   senderSize,
		receiverSize: receiverSize,
		inFlight:     make([]bool, numFrames),
		accepted:     make([]bool, numFrames),
	}
}

// SeqOf returns the sequence number of a frame.
func (w *Window) SeqOf(frame int) int {
	return frame % w.seqSpace
}

// SenderStart returns the index of the first frame not acknowledged.
func (w *Window) SenderStart() int {
	return w.senderStart
}

// ReceiverStart returns the index of the first frame not accepted.
func (w *Window) ReceiverStart() int {
	return w.receiverStart
}

func (w *Window) senderEnd() int {
	return min(w.senderStart+w.senderSize, w.numFrames)
}

func (w *Window) receiverEnd() int {
	return min(w.receiverStart+w.receiverSize, w.numFrames)
}

// positionIn resolves seq to a frame index in [start, end).
func (w *Window) positionIn(seq, start, end int) (int, bool) {
	if seq < 0 || seq >= w.seqSpace {
		return 0, false
	}

	offset := (seq - w.SeqOf(start) + w.seqSpace) % w.seqSpace
	index := start + offset
	if index >= end {
		return 0, false
	}

	return index, true
}

// SenderContains tells if a frame may be sent.
func (w *Window) SenderContains(frame int) bool {
	return frame >= w.senderStart && frame < w.senderEnd()
}

// SenderPosition locates seq within the current sender range.
func (w *Window) SenderPosition(seq int) (int, bool) {
	return w.positionIn(seq, w.senderStart, w.senderEnd())
}

// MarkSender sets the in-flight flag of the sender slot matching seq. It
// returns false if seq is not in the sender window.
func (w *Window) MarkSender(seq int, sent bool) bool {
	index, ok := w.SenderPosition(seq)
	if !ok {
		return false
	}

	w.inFlight[index] = sent

	return true
}

// IsInFlight tells if a frame has been completely sent and waits for an
// acknowledgment.
func (w *Window) IsInFlight(frame int) bool {
	return w.SenderContains(frame) && w.inFlight[frame]
}

// InFlight returns the in-flight frames of the sender window, in ascending
// order.
func (w *Window) InFlight() []int {
	var frames []int
	for i := w.senderStart; i < w.senderEnd(); i++ {
		if w.inFlight[i] {
			frames = append(frames, i)
		}
	}

	return frames
}

// SlideSenderTo moves the sender window past the frame at index, as a result
// of the acknowledgment of that frame. It returns the sequence numbers of the
// slots slid past.
func (w *Window) SlideSenderTo(index int) []int {
	if index < w.senderStart {
		return nil
	}

	if index >= w.numFrames {
		panic("sliding past the last frame")
	}

	slid := make([]int, 0, index+1-w.senderStart)
	for i := w.senderStart; i <= index; i++ {
		w.inFlight[i] = false
		slid = append(slid, w.SeqOf(i))
	}

	w.senderStart = index + 1

	return slid
}

// ReceiverMembership tells how seq relates to the receiver window.
func (w *Window) ReceiverMembership(seq int) Membership {
	m := Membership{
		FirstSeq:        w.SeqOf(w.receiverStart),
		LastAcceptedSeq: w.LastAcceptedSeq(),
	}

	index, ok := w.positionIn(seq, w.receiverStart, w.receiverEnd())
	if !ok {
		return m
	}

	m.InWindow = true
	m.IsFirst = index == w.receiverStart

	return m
}

// LastAcceptedSeq returns the sequence number of the last frame accepted in
// order.
func (w *Window) LastAcceptedSeq() int {
	return (w.receiverStart - 1 + w.seqSpace) % w.seqSpace
}

// MarkReceiver accepts the slot of the receiver window matching seq. The
// window then advances past all the accepted frames at its base. It returns
// false if seq is not in the receiver window.
func (w *Window) MarkReceiver(seq int) bool {
	index, ok := w.positionIn(seq, w.receiverStart, w.receiverEnd())
	if !ok {
		return false
	}

	w.accepted[index] = true

	for w.receiverStart < w.numFrames && w.accepted[w.receiverStart] {
		w.receiverStart++
	}

	return true
}

// IsAccepted tells if a frame has been accepted by the receiver.
func (w *Window) IsAccepted(frame int) bool {
	return w.accepted[frame]
}

// SenderSnapshot renders the sequence numbers of the sender window.
func (w *Window) SenderSnapshot() string {
	return w.render(w.senderStart, w.senderEnd())
}

// ReceiverSnapshot renders the sequence numbers of the receiver window.
func (w *Window) ReceiverSnapshot() string {
	return w.render(w.receiverStart, w.receiverEnd())
}

func (w *Window) render(start, end int) string {
	var sb strings.Builder

	sb.WriteByte('[')
	for i := start; i < end; i++ {
		if i > start {
			sb.WriteByte(' ')
		}

		sb.WriteString(strconv.Itoa(w.SeqOf(i)))
	}
	sb.WriteByte(']')

	return sb.String()
}
