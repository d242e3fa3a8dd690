package properties

// Widgets is the immediate-mode toolkit the panel draws with. Every editing
// widget mutates its argument in place and reports whether it changed.
type Widgets interface {
	DragNumber(label string, v *float64, speed float32) bool
	DragFloatN(label string, v []float32, speed float32) bool
	DragIntN(label string, v []int32, speed float32) bool
	Checkbox(label string, v *bool) bool
	InputText(label string, v *string, maxLen int) bool
	ColorEdit3(label string, c *[3]float32) bool
	Combo(label string, current *int, options []string) bool

	CollapsingHeader(label string) bool
	TreeNode(label string) bool
	TreePop()
	Text(text string)
	Separator()
}
