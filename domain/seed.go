package domain

// SeedTasks returns the example week shown when no snapshot exists.
func SeedTasks() []Task {
	return []Task{
		{ID: "1", Title: "Hand in project", Content: "Send the .zip", Tags: []string{"Important", "Work", "ProjectX"}, Day: Friday, Period: Afternoon, Color: "rose"},
		{ID: "2", Title: "Cinema", Content: "Watch the new Ghibli film", Tags: []string{"Leisure"}, Day: Friday, Period: Evening, Color: "violet"},
		{ID: "3", Title: "Study JavaScript", Content: "Modules, Promises...", Tags: []string{"Study", "JS"}, Day: Monday, Period: Morning, Color: "amber"},
		{ID: "4", Title: "Go to the gym", Content: "Leg day", Tags: []string{"Health"}, Day: Tuesday, Period: Morning, Completed: true, Color: "sky"},
		{ID: "5", Title: "Team meeting", Content: "Discuss sprint progress", Tags: []string{"Work"}, Day: Wednesday, Period: Afternoon, Color: "white"},
	}
}
