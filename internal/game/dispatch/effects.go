package dispatch

// Level is the severity of a notice.
type Level string

const (
	Info  Level = "info"
	Error Level = "error"
)

// Notice is a user-facing notification produced by a tool.
type Notice struct {
	Level Level
	Text  string
}

// ImageKind says what an image request will patch on completion.
type ImageKind int

const (
	// SceneImage patches the transcript message MessageID.
	SceneImage ImageKind = iota
	// CombatBackground patches the combat background.
	CombatBackground
)

// Prompt prefixes.
const (
	ScenePromptPrefix  = "cinematic, fantasy art, detailed, epic, concept art, digital painting, "
	CombatPromptPrefix = "dramatic fantasy combat scene, "
)

// ImageRequest is an asynchronous image generation to start after the batch.
type ImageRequest struct {
	Kind      ImageKind
	MessageID string
	Prompt    string
}

// Effects collects the side effects of one batch of calls that the
// dispatcher does not perform itself.
type Effects struct {
	Notices     []Notice
	Images      []ImageRequest
	PlayerDied  bool
	CombatEnded bool
}

func (fx *Effects) info(text string) {
	fx.Notices = append(fx.Notices, Notice{Level: Info, Text: text})
}

func (fx *Effects) warn(text string) {
	fx.Notices = append(fx.Notices, Notice{Level: Error, Text: text})
}
