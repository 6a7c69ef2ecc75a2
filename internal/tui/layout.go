package tui

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	inputWidth     int
	inputHeight    int
	viewportWidth  int
	viewportHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{
		inputWidth:     76,
		inputHeight:    6,
		viewportWidth:  80,
		viewportHeight: 12,
	}
}

// Update splits the window between the input panel and the results viewport.
func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth
	l.inputWidth = innerWidth

	// hero, status bar, headers, tabs, hints, banner and footer
	const chrome = 14
	usable := height - chrome
	if usable < 10 {
		usable = 10
	}
	l.inputHeight = usable / 3
	if l.inputHeight < 3 {
		l.inputHeight = 3
	}
	if l.inputHeight > 10 {
		l.inputHeight = 10
	}
	l.viewportHeight = usable - l.inputHeight
	if l.viewportHeight < 6 {
		l.viewportHeight = 6
	}
}

// wrapWidth leaves room for the viewport's indentation.
func (l pageLayout) wrapWidth(indent int) int {
	width := l.viewportWidth - indent
	if width < 20 {
		width = 20
	}
	return width
}
