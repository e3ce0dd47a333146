package planner

import "weekly-planner/domain"

// Reorder returns a copy of slot with the task at from moved to index to.
// Indices are clamped into range.
func Reorder(slot []domain.Task, from, to int) []domain.Task {
	out := cloneTasks(slot)
	if len(out) == 0 {
		return out
	}
	from = clamp(from, len(out)-1)
	to = clamp(to, len(out)-1)
	if from == to {
		return out
	}
	moved := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = moved
	return out
}

// Transfer moves the task at fromIndex of src into dst at toIndex and retags
// it with the destination slot. It returns the new contents of both slots,
// ready for Store.UpdateTwoSlotsTasks. ok is false when fromIndex is out of range.
func Transfer(src []domain.Task, fromIndex int, dst []domain.Task, toIndex int, to domain.Slot) (newSrc, newDst []domain.Task, ok bool) {
	if fromIndex < 0 || fromIndex >= len(src) {
		return nil, nil, false
	}
	newSrc = make([]domain.Task, 0, len(src)-1)
	for i, t := range src {
		if i != fromIndex {
			newSrc = append(newSrc, t.Clone())
		}
	}
	moved := src[fromIndex].Clone()
	moved.Day = to.Day
	moved.Period = to.Period

	toIndex = clamp(toIndex, len(dst))
	newDst = make([]domain.Task, 0, len(dst)+1)
	for i, t := range dst {
		if i == toIndex {
			newDst = append(newDst, moved)
		}
		newDst = append(newDst, t.Clone())
	}
	if toIndex == len(dst) {
		newDst = append(newDst, moved)
	}
	return newSrc, newDst, true
}

func clamp(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

func cloneTasks(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
