package recipe

import "errors"

// Domain errors for recipe operations

var (
	// Content validation errors
	ErrTitleRequired           = errors.New("recipe title is required")
	ErrTitleTooLong            = errors.New("recipe title must not exceed 200 characters")
	ErrIngredientNameRequired  = errors.New("ingredient name is required")
	ErrNegativeQuantity        = errors.New("ingredient quantity cannot be negative")
	ErrStepInstructionRequired = errors.New("step instruction is required")
	ErrStepInstructionTooLong  = errors.New("step instruction must not exceed 4000 characters")
	ErrInvalidPortions         = errors.New("portions must be greater than 0")
	ErrEmptyDuration           = errors.New("duration must carry minutes or a prep/cook/total breakdown")

	// Lineage errors
	ErrVariationNoteRequired = errors.New("a variation note is required when the recipe has a parent")
	ErrSelfParent            = errors.New("a recipe cannot be its own parent")
	ErrLineageCycle          = errors.New("parent assignment would create a lineage cycle")
	ErrParentNotOwned        = errors.New("parent recipe belongs to another user")
	ErrParentNotFound        = errors.New("parent recipe does not exist")
	ErrLineageTooDeep        = errors.New("recipe lineage exceeds the maximum depth")
	ErrInvalidLineageMode    = errors.New("lineage mode must be ancestor or branch")

	// Import plan errors
	ErrForwardParent   = errors.New("an imported recipe can only descend from an earlier import")
	ErrUnknownParent   = errors.New("parent selection refers to an unknown import index")
	ErrDuplicateImport = errors.New("import candidates must have distinct indexes")
)
