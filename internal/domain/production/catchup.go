package production

import "math"

// CatchUpInput is the persisted state of one factory plus the wall-clock gap
// since it was saved.
type CatchUpInput struct {
	Variant        Variant
	CycleDuration  float64
	Capacity       int
	CurrentStored  int
	QueueLength    int
	TimerRemaining float64
	ElapsedSeconds float64
}

// CatchUpResult is the reconstructed state after the gap
type CatchUpResult struct {
	Produced       int
	CurrentStored  int
	QueueLength    int
	TimerRemaining float64
	WorkRemains    bool

	// Orders in the save that did not fit next to the stored output.
	// They were paid for, so the caller owes a refund.
	DroppedOrders int
}

// CatchUp fast-forwards a factory by ElapsedSeconds in closed form.
//
//	timePassed      = timerRemaining + elapsed
//	completedCycles = floor(timePassed / cycle)
//	remainder       = timePassed mod cycle
//	producible      = min(completedCycles, queue)              queued
//	producible      = min(completedCycles, capacity - stored)  continuous
//	stored          = min(stored + producible, capacity)
//	queue          -= producible
//	timerRemaining  = work remains ? remainder : 0
//
// The result equals stepping the factory for the same amount of time.
// Out of range inputs are clamped first so the invariants
// 0 <= stored <= capacity and stored + queue <= capacity always hold.
// Orders cut by the clamp are reported in DroppedOrders.
func CatchUp(in CatchUpInput) CatchUpResult {
	capacity := max(in.Capacity, 0)
	stored := clampInt(in.CurrentStored, 0, capacity)
	queue, dropped := 0, 0
	if in.Variant == VariantQueued {
		queue = clampInt(in.QueueLength, 0, capacity-stored)
		dropped = max(in.QueueLength, 0) - queue
	}
	elapsed := math.Max(in.ElapsedSeconds, 0)
	progress := math.Max(in.TimerRemaining, 0)
	if in.CycleDuration > 0 {
		progress = math.Min(progress, in.CycleDuration)
	}

	if in.CycleDuration <= 0 {
		return CatchUpResult{CurrentStored: stored, QueueLength: queue, DroppedOrders: dropped}
	}

	timePassed := progress + elapsed
	completedCycles := math.Floor(timePassed / in.CycleDuration)
	remainder := math.Mod(timePassed, in.CycleDuration)

	var limit int
	switch in.Variant {
	case VariantContinuous:
		limit = capacity - stored
	default:
		limit = queue
	}
	producible := limit
	if completedCycles < float64(limit) {
		producible = int(completedCycles)
	}

	stored = min(stored+producible, capacity)
	if in.Variant == VariantQueued {
		queue -= producible
	}

	var workRemains bool
	switch in.Variant {
	case VariantContinuous:
		workRemains = stored < capacity
	default:
		workRemains = queue > 0
	}

	res := CatchUpResult{
		Produced:      producible,
		CurrentStored: stored,
		QueueLength:   queue,
		WorkRemains:   workRemains,
		DroppedOrders: dropped,
	}
	if workRemains {
		res.TimerRemaining = remainder
	}
	return res
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
