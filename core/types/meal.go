package types

// Meal identifies one of the daily meals that can be provided.
type Meal int

const (
	Breakfast Meal = iota
	Lunch
	Dinner
)

// Meals lists every meal in deduction order.
var Meals = []Meal{Breakfast, Lunch, Dinner}

// String returns the meal name
func (m Meal) String() string {
	switch m {
	case Breakfast:
		return "breakfast"
	case Lunch:
		return "lunch"
	case Dinner:
		return "dinner"
	default:
		return "unknown"
	}
}
