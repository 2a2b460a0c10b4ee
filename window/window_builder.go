package window

// WindowBuilderOption is a functional option for configuring a hostWindow.
type WindowBuilderOption func(w *hostWindow)

// WithTitle sets the window title displayed in the title bar.
func WithTitle(title string) WindowBuilderOption {
	return func(w *hostWindow) { w.title = title }
}

// WithMaxWidth sets the maximum allowed window width.
func WithMaxWidth(maxWidth int) WindowBuilderOption {
	return func(w *hostWindow) { w.maxWidth = maxWidth }
}

// WithMaxHeight sets the maximum allowed window height.
func WithMaxHeight(maxHeight int) WindowBuilderOption {
	return func(w *hostWindow) { w.maxHeight = maxHeight }
}

// WithMinWidth sets the minimum allowed window width.
func WithMinWidth(minWidth int) WindowBuilderOption {
	return func(w *hostWindow) { w.minWidth = minWidth }
}

// WithMinHeight sets the minimum allowed window height.
func WithMinHeight(minHeight int) WindowBuilderOption {
	return func(w *hostWindow) { w.minHeight = minHeight }
}

// WithWidth sets the initial window width.
func WithWidth(width int) WindowBuilderOption {
	return func(w *hostWindow) { w.width = width }
}

// WithHeight sets the initial window height.
func WithHeight(height int) WindowBuilderOption {
	return func(w *hostWindow) { w.height = height }
}
