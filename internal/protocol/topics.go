package protocol

// Peer names on the bus. Each peer publishes aim commands on its own
// subtopic; this controller answers on the bare aim topic.
const (
	peerEmbedded    = "embedded"
	peerGUI         = "gui"
	peerCalibration = "calibration"

	aimSubtopic    = "aim"
	lasersSubtopic = "lasers"
)

// Topics builds the instrument's topic tree from its root (the configured
// instrument serial).
type Topics struct {
	root string
}

// NewTopics returns the topic scheme rooted at root.
func NewTopics(root string) Topics {
	return Topics{root: root}
}

// Aim is the outbound topic carrying every message this controller emits,
// including the last-will disconnect announcement.
func (t Topics) Aim() string {
	return t.root + "/" + aimSubtopic
}

// EmbeddedAim carries aim commands from the embedded controller.
func (t Topics) EmbeddedAim() string {
	return t.root + "/" + peerEmbedded + "/" + aimSubtopic
}

// GUIAim carries aim commands from the operator GUI.
func (t Topics) GUIAim() string {
	return t.root + "/" + peerGUI + "/" + aimSubtopic
}

// CalibrationAim carries aim commands from the calibration tool.
func (t Topics) CalibrationAim() string {
	return t.root + "/" + peerCalibration + "/" + aimSubtopic
}

// EmbeddedLasers carries laser bank reports from the embedded controller.
func (t Topics) EmbeddedLasers() string {
	return t.root + "/" + peerEmbedded + "/" + lasersSubtopic
}

// Subscriptions lists the four inbound topics the dispatcher listens on.
func (t Topics) Subscriptions() []string {
	return []string{
		t.EmbeddedAim(),
		t.GUIAim(),
		t.CalibrationAim(),
		t.EmbeddedLasers(),
	}
}
