package transfer

import "weekly-planner/domain"

// Exports written by the first, Portuguese-language release of the planner
// name the period field "periodo" and use localized day and period values.
var (
	legacyDays = map[string]domain.Day{
		"Segunda": domain.Monday,
		"Terça":   domain.Tuesday,
		"Quarta":  domain.Wednesday,
		"Quinta":  domain.Thursday,
		"Sexta":   domain.Friday,
		"Sábado":  domain.Saturday,
		"Domingo": domain.Sunday,
	}
	legacyPeriods = map[string]domain.Period{
		"Manhã": domain.Morning,
		"Tarde": domain.Afternoon,
		"Noite": domain.Evening,
	}
)

type importedTask struct {
	domain.Task
	Periodo string `json:"periodo"`
}

// task returns the entry with legacy field names and values translated.
// Values that are neither current nor legacy are kept as given.
func (it importedTask) task() domain.Task {
	t := it.Task
	if t.Period == "" && it.Periodo != "" {
		t.Period = domain.Period(it.Periodo)
	}
	if d, ok := legacyDays[string(t.Day)]; ok {
		t.Day = d
	}
	if p, ok := legacyPeriods[string(t.Period)]; ok {
		t.Period = p
	}
	return t
}
