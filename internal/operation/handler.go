package operation

import (
	"sync"

	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/wire"
)

// Handler packs per-device operation pairs into Tx frames, one frame's
// worth at a time, until every device's pair reports done.
type Handler struct{}

// IsDone reports whether every device's pair (or lack of one) has nothing
// left to pack.
func (Handler) IsDone(pairs []*Pair) bool {
	for _, p := range pairs {
		if p == nil {
			continue
		}
		if !p.Op1.IsDone() || !p.Op2.IsDone() {
			return false
		}
	}
	return true
}

// Pack fills tx (one TxMessage per device, already allocated) for this
// round. When parallel is true, devices are packed concurrently since each
// writes only to its own disjoint Tx slice.
func (Handler) Pack(msgID wire.MsgID, pairs []*Pair, geo *geometry.Geometry, tx []wire.TxMessage, parallel bool) error {
	if parallel {
		return packParallel(msgID, pairs, geo, tx)
	}
	return packSerial(msgID, pairs, geo, tx)
}

func packSerial(msgID wire.MsgID, pairs []*Pair, geo *geometry.Geometry, tx []wire.TxMessage) error {
	for i := range pairs {
		if pairs[i] == nil {
			continue
		}
		if err := packOne(msgID, pairs[i], geo.Device(i), &tx[i]); err != nil {
			return err
		}
	}
	return nil
}

func packParallel(msgID wire.MsgID, pairs []*Pair, geo *geometry.Geometry, tx []wire.TxMessage) error {
	var wg sync.WaitGroup
	errs := make([]error, len(pairs))
	for i := range pairs {
		if pairs[i] == nil {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = packOne(msgID, pairs[i], geo.Device(i), &tx[i])
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func packOne(msgID wire.MsgID, pair *Pair, dev *geometry.Device, tx *wire.TxMessage) error {
	op1Done, op2Done := pair.Op1.IsDone(), pair.Op2.IsDone()
	switch {
	case op1Done && op2Done:
		return nil
	case op1Done && !op2Done:
		_, err := packSlot1(msgID, pair.Op2, dev, tx)
		return err
	case !op1Done && op2Done:
		_, err := packSlot1(msgID, pair.Op1, dev, tx)
		return err
	default:
		n, err := packSlot1(msgID, pair.Op1, dev, tx)
		if err != nil {
			return err
		}
		payload := tx.Payload()
		if len(payload)-n >= pair.Op2.RequiredSize(dev) {
			if _, err := pair.Op2.Pack(dev, payload[n:]); err != nil {
				return err
			}
			tx.Header.Slot2Offset = uint16(n)
		}
		return nil
	}
}

func packSlot1(msgID wire.MsgID, op Operation, dev *geometry.Device, tx *wire.TxMessage) (int, error) {
	tx.Header.MsgID = msgID
	tx.Header.Slot2Offset = 0
	n, err := op.Pack(dev, tx.Payload())
	if err != nil {
		return 0, err
	}
	return n, nil
}
