package scheduling

import "errors"

var (
	ErrInvalidDate          = errors.New("date must be YYYY-MM-DD")
	ErrNutritionistRequired = errors.New("nutritionistId is required")
	ErrNutritionistNotFound = errors.New("nutritionist not found")
	ErrForbidden            = errors.New("only nutritionists and admins can view a schedule")
)
