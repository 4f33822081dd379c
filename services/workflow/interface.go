package workflow

import "context"

type Variant string

const (
	VariantSuccess Variant = "success"
	VariantDanger  Variant = "danger"
	VariantInfo    Variant = "info"
)

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(message string, variant Variant)
}

type ConfirmOptions struct {
	Title     string
	Body      string
	OKText    string
	OKVariant string
}

// Confirmer asks the user to approve an action. A dismissed prompt is false.
type Confirmer interface {
	Confirm(ctx context.Context, opts ConfirmOptions) bool
}

// Navigator leaves the current page.
type Navigator interface {
	Redirect(url string)
}

// Hooks connect one submission to the controller that started it. All of them
// are optional. SetControlsEnabled and OnState run inside the loop; Reload runs
// outside it and should block until the forced reload has been applied.
type Hooks struct {
	SetControlsEnabled func(enabled bool)
	OnState            func(s State)
	Reload             func(ctx context.Context)
}
