package knowledge

import "errors"

// ErrCategoryHasChildren - a category cannot be deleted while child
// categories still point at it; re-parent the children first.
var ErrCategoryHasChildren = errors.New("category has child categories")
