package domain

// CheckoutStep identifies one page of the four-step checkout wizard.
// The step travels as a query parameter; users may open any step directly,
// so later steps must tolerate missing earlier fields.
type CheckoutStep int

const (
	StepClientInfo CheckoutStep = iota + 1
	StepDelivery
	StepPayment
	StepSubmit
)

// ParseCheckoutStep maps the "step" query parameter to a step,
// defaulting to the first step for anything unrecognized.
func ParseCheckoutStep(s string) CheckoutStep {
	switch s {
	case "2":
		return StepDelivery
	case "3":
		return StepPayment
	case "4":
		return StepSubmit
	}
	return StepClientInfo
}

// Next returns the step that follows, saturating at the final step.
func (s CheckoutStep) Next() CheckoutStep {
	if s >= StepSubmit {
		return StepSubmit
	}
	return s + 1
}

// CheckoutFields is the order state accumulated across wizard steps.
// It lives in the session and is merged field-by-field as each step
// validates; it is logically superseded once the order commits.
// Passwords are deliberately absent: signup credentials are consumed
// immediately and never written to the session store.
type CheckoutFields struct {
	Name      string `json:"name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	DeliverID int64  `json:"deliver_id,omitempty"`
	City      string `json:"city,omitempty"`
	Address   string `json:"address,omitempty"`
	Payment   string `json:"payment,omitempty"`
	Comment   string `json:"comment,omitempty"`
}
