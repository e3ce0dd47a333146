package planner

import "weekly-planner/domain"

// Grouping maps every day and period to the tasks in that slot. All 21 slots
// are present; empty slots hold empty, non-nil slices.
type Grouping map[domain.Day]map[domain.Period][]domain.Task

// Slot returns the tasks of one slot, or nil for coordinates outside the week.
func (g Grouping) Slot(day domain.Day, period domain.Period) []domain.Task {
	return g[day][period]
}

// GroupBySlot projects tasks onto the week grid preserving their relative
// order. Tasks with a day or period outside the week are left out.
func GroupBySlot(tasks []domain.Task) Grouping {
	g := make(Grouping, len(domain.AllDays))
	for _, day := range domain.AllDays {
		periods := make(map[domain.Period][]domain.Task, len(domain.AllPeriods))
		for _, p := range domain.AllPeriods {
			periods[p] = []domain.Task{}
		}
		g[day] = periods
	}
	for _, t := range tasks {
		periods, ok := g[t.Day]
		if !ok {
			continue
		}
		slot, ok := periods[t.Period]
		if !ok {
			continue
		}
		periods[t.Period] = append(slot, t.Clone())
	}
	return g
}
