package notify

// Category classifies a notification by the sign of its diff byte delta.
type Category int

const (
	// CategoryAdd is a positive delta, or any new page.
	CategoryAdd Category = iota
	// CategoryRemove is a negative delta.
	CategoryRemove
	// CategoryZero is a delta of exactly zero bytes.
	CategoryZero
	// CategoryLog is an event with no resolved revision.
	CategoryLog
)

// categoryInfo is the fixed color/icon table. Colors are 24-bit RGB as the
// webhook embed format expects.
var categoryInfo = [...]struct {
	name  string
	color int
	icon  string
}{
	CategoryAdd:    {"add", 0x2ECC71, "https://upload.wikimedia.org/wikipedia/commons/thumb/1/18/OOjs_UI_icon_add.svg/48px-OOjs_UI_icon_add.svg.png"},
	CategoryRemove: {"remove", 0xE74C3C, "https://upload.wikimedia.org/wikipedia/commons/thumb/5/52/OOjs_UI_icon_subtract.svg/48px-OOjs_UI_icon_subtract.svg.png"},
	CategoryZero:   {"zero", 0x95A5A6, "https://upload.wikimedia.org/wikipedia/commons/thumb/8/8e/OOjs_UI_icon_edit-ltr.svg/48px-OOjs_UI_icon_edit-ltr.svg.png"},
	CategoryLog:    {"log", 0x3498DB, "https://upload.wikimedia.org/wikipedia/commons/thumb/c/c4/OOjs_UI_icon_book-ltr.svg/48px-OOjs_UI_icon_book-ltr.svg.png"},
}

func (c Category) String() string { return categoryInfo[c].name }

// Color returns the embed color for the category.
func (c Category) Color() int { return categoryInfo[c].color }

// Icon returns the author icon URL for the category.
func (c Category) Icon() string { return categoryInfo[c].icon }

// Categorize maps diff metrics to a category. A new page is always "add"
// regardless of delta sign; an absent delta (no revision resolved, or the
// diff lookup failed) is "log".
func Categorize(delta *int, newPage bool) Category {
	if newPage {
		return CategoryAdd
	}
	if delta == nil {
		return CategoryLog
	}
	switch {
	case *delta > 0:
		return CategoryAdd
	case *delta < 0:
		return CategoryRemove
	default:
		return CategoryZero
	}
}
