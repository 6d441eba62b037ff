package automation

// Automation is a registered rule with a label and an action.
//
// Labels identify automations in manual interfaces, so they should be
// succinct and easy to type: "Light Bedroom" rather than "Switch on
// Bedroom Lights". Labels need not be unique; the first registered
// automation wins a by-label lookup.
type Automation interface {
	// Label returns the label of the automation.
	Label() string

	// Perform executes the automation's action.
	//
	// Time automations are performed concurrently on the shared worker
	// pool, so lengthy work will not block other automations — but do
	// not treat that liberally. Actions should be succinct. Failures
	// are the action author's responsibility; the scheduler and router
	// do not intercept them.
	Perform()
}

// FixedAutomation is an automation performed only on explicit by-label
// request, either from a manual interface or from another automation
// chaining into it.
type FixedAutomation struct {
	label  string
	action func()
}

// NewFixedAutomation creates a manually-triggered automation.
func NewFixedAutomation(label string, action func()) *FixedAutomation {
	return &FixedAutomation{label: label, action: action}
}

// Label returns the label of the automation.
func (f *FixedAutomation) Label() string {
	return f.label
}

// Perform executes the automation's action on the calling goroutine.
func (f *FixedAutomation) Perform() {
	f.action()
}
