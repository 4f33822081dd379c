package availability

import "roombooking/models"

// Display receives every screen a Board publishes. Render is called inside the
// loop, so implementations must return promptly and must not call back into
// the Board.
type Display interface {
	Render(screen models.Screen)
}

// FormDisplay is the Form counterpart of Display.
type FormDisplay interface {
	RenderForm(screen models.FormScreen)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(models.Screen)

func (f DisplayFunc) Render(s models.Screen) { f(s) }

// FormDisplayFunc adapts a function to FormDisplay.
type FormDisplayFunc func(models.FormScreen)

func (f FormDisplayFunc) RenderForm(s models.FormScreen) { f(s) }
