package manager

import "time"

// DemoTasks - стартовый список экрана "Smart Tasks".
// CreatedAt убывает, чтобы хранилища, сортирующие по времени создания, вернули тот же порядок.
func DemoTasks() []Task {
	base := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	return []Task{
		{
			ID:          1,
			Title:       "Buy groceries at Whole Foods",
			Description: "Milk, eggs, bread, and organic vegetables",
			DueTime:     "2:00 PM",
			Location:    "Whole Foods Market",
			CreatedAt:   base,
		},
		{
			ID:          2,
			Title:       "Identify the red flower in the park",
			Description: "Use visual search to learn about the species",
			Completed:   true,
			DueTime:     "10:30 AM",
			Location:    "Central Park",
			CreatedAt:   base.Add(-1 * time.Minute),
		},
		{
			ID:          3,
			Title:       "Meeting with design team",
			Description: "Review mockups and discuss user feedback",
			DueTime:     "4:00 PM",
			Location:    "Office Building A",
			CreatedAt:   base.Add(-2 * time.Minute),
		},
		{
			ID:          4,
			Title:       "Research coffee shops nearby",
			Description: "Find a good place for tomorrow's client meeting",
			Location:    "Downtown Area",
			CreatedAt:   base.Add(-3 * time.Minute),
		},
	}
}
