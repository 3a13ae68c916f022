package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/engine"
	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/session"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
)

const (
	prompt       = "> "
	recapLength  = 4
	maxLineBytes = 64 * 1024
)

// Console is an interactive terminal session over an Engine. It implements
// server.Service.
type Console struct {
	engine   *engine.Engine
	events   *engine.ChannelListener
	registry *Registry
	in       io.Reader
	out      io.Writer
	outMu    sync.Mutex
	logger   *zap.Logger

	lines     chan string
	stopCh    chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	drained   chan struct{}
}

// New creates a Console reading commands from in and writing to out. The
// engine must have been built with events as its listener.
//
// Precondition: every argument must be non-nil.
func New(eng *engine.Engine, events *engine.ChannelListener, in io.Reader, out io.Writer, logger *zap.Logger) *Console {
	return &Console{
		engine:   eng,
		events:   events,
		registry: DefaultRegistry(),
		in:       in,
		out:      out,
		logger:   logger,
		lines:    make(chan string),
		stopCh:   make(chan struct{}),
		drained:  make(chan struct{}),
	}
}

// Start runs the read-eval loop until the player quits, input ends, ctx is
// cancelled, or Stop is called.
//
// Postcondition: Returns nil on a clean exit, or a wrapped read error.
func (c *Console) Start(ctx context.Context) error {
	readErr := make(chan error, 1)
	go c.readLines(readErr)
	c.startOnce.Do(func() { go c.forwardEvents() })

	c.write(Colorize(BrightMagenta, "Taleweaver") + "\n")
	c.write(Colorize(Dim, "Tapez \"aide\" pour la liste des commandes, \"nouvelle\" pour commencer.") + "\n")
	for {
		c.write(Colorize(BrightCyan, prompt))
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case <-c.stopCh:
			return nil
		case line, ok = <-c.lines:
		}
		if !ok {
			if err := <-readErr; err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			return nil
		}
		if quit := c.Handle(ctx, line); quit {
			return nil
		}
	}
}

// Stop ends the loop, waits for pending illustrations, and closes the event
// stream.
func (c *Console) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		c.engine.Wait()
		c.events.Close()
		c.startOnce.Do(func() { close(c.drained) })
		<-c.drained
	})
}

func (c *Console) readLines(errCh chan<- error) {
	defer close(c.lines)
	sc := bufio.NewScanner(c.in)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for sc.Scan() {
		select {
		case c.lines <- sc.Text():
		case <-c.stopCh:
			errCh <- nil
			return
		}
	}
	errCh <- sc.Err()
}

func (c *Console) forwardEvents() {
	defer close(c.drained)
	for ev := range c.events.Events() {
		if text := RenderEvent(ev); text != "" {
			c.write(text)
		}
	}
}

// ask prints question and waits for one line of input.
func (c *Console) ask(ctx context.Context, question string) (string, error) {
	c.write(Colorize(BrightYellow, question) + " ")
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.stopCh:
		return "", io.EOF
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

func (c *Console) write(s string) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	_, _ = io.WriteString(c.out, s)
}

func (c *Console) writeLine(s string) {
	c.write(s + "\n")
}

// Handle executes one input line.
//
// Postcondition: Returns true when the player asked to quit. Engine errors
// are rendered, never returned.
func (c *Console) Handle(ctx context.Context, line string) bool {
	parsed := Parse(line)
	if parsed.Command == "" {
		return false
	}
	cmd, ok := c.registry.Resolve(parsed.Command)
	if !ok {
		c.report(c.engine.Say(ctx, engine.Do, strings.TrimSpace(line)))
		c.afterTurn()
		return false
	}

	switch cmd.Handler {
	case HandlerDo, HandlerSpeak, HandlerStory:
		if parsed.RawArgs == "" {
			c.writeLine(Colorf(Red, "Usage: %s %s", cmd.Name, cmd.Usage))
			return false
		}
		mode := map[string]engine.InputMode{HandlerDo: engine.Do, HandlerSpeak: engine.Speak, HandlerStory: engine.Story}[cmd.Handler]
		c.report(c.engine.Say(ctx, mode, parsed.RawArgs))
		c.afterTurn()

	case HandlerRoll:
		res, err := c.engine.ResolveSkillCheck(ctx)
		if c.report(err) {
			c.writeLine("\n" + RenderCheck(res))
			c.afterTurn()
		}

	case HandlerAction:
		if len(parsed.Args) == 0 {
			c.writeLine(Colorf(Red, "Usage: %s %s", cmd.Name, cmd.Usage))
			return false
		}
		target := ""
		if len(parsed.Args) > 1 {
			target = parsed.Args[1]
		}
		res, err := c.engine.PerformCombatAction(ctx, parsed.Args[0], target)
		if c.report(err) {
			c.writeLine("\n" + RenderCheck(res))
			c.afterTurn()
		}

	case HandlerUse:
		if parsed.RawArgs == "" {
			c.writeLine(Colorf(Red, "Usage: %s %s", cmd.Name, cmd.Usage))
			return false
		}
		c.report(c.engine.UseItem(ctx, parsed.RawArgs))
		c.afterTurn()

	case HandlerDrop:
		if parsed.RawArgs == "" {
			c.writeLine(Colorf(Red, "Usage: %s %s", cmd.Name, cmd.Usage))
			return false
		}
		if c.report(c.engine.DropItem(ctx, parsed.RawArgs)) {
			c.writeLine(Colorf(Dim, "%s jeté.", parsed.RawArgs))
		}

	case HandlerTravel:
		if len(parsed.Args) == 0 {
			c.show(RenderMap)
			return false
		}
		c.report(c.engine.FastTravel(ctx, parsed.Args[0]))
		c.afterTurn()

	case HandlerIllustrate:
		c.illustrate(ctx, parsed.Args)

	case HandlerStatus:
		c.show(RenderStatus)
	case HandlerInventory:
		c.show(RenderInventory)
	case HandlerQuests:
		c.show(RenderQuests)
	case HandlerMap:
		c.show(RenderMap)
	case HandlerCombat:
		c.show(RenderCombat)

	case HandlerSpend:
		c.spend(ctx, cmd, parsed.Args)

	case HandlerSettings:
		c.settings(ctx, cmd, parsed)

	case HandlerNew:
		if err := c.newAdventure(ctx); err != nil && !errors.Is(err, io.EOF) {
			c.report(err)
		}
		c.afterTurn()

	case HandlerLoad:
		if len(parsed.Args) == 0 {
			c.writeLine(Colorf(Red, "Usage: %s %s", cmd.Name, cmd.Usage))
			return false
		}
		if c.report(c.engine.Load(ctx, parsed.Args[0])) {
			c.show(func(st *session.State) string { return RenderTranscript(st.Transcript, recapLength) })
			c.afterTurn()
		}

	case HandlerList:
		list, err := c.engine.List(ctx)
		if c.report(err) {
			c.write(RenderSessions(list, c.engine.SessionID()))
		}

	case HandlerDelete:
		if len(parsed.Args) == 0 {
			c.writeLine(Colorf(Red, "Usage: %s %s", cmd.Name, cmd.Usage))
			return false
		}
		if c.report(c.engine.Delete(ctx, parsed.Args[0])) {
			c.writeLine(Colorf(Dim, "Partie %s supprimée.", parsed.Args[0]))
		}

	case HandlerRestart:
		if c.report(c.engine.Restart()) {
			c.writeLine(Colorize(Dim, "Retour à l'écran de départ."))
		}

	case HandlerHelp:
		c.write(RenderHelp(c.registry))

	case HandlerQuit:
		c.writeLine(Colorize(Cyan, "L'histoire s'arrête ici. À bientôt."))
		return true
	}
	return false
}

// report renders err for the player and reports whether the call succeeded.
func (c *Console) report(err error) bool {
	if err == nil {
		return true
	}
	var msg string
	switch {
	case errors.Is(err, engine.ErrBusy):
		msg = "Le maître du jeu est encore en train d'écrire."
	case errors.Is(err, engine.ErrNoSession):
		msg = "Aucune partie en cours. Tapez \"nouvelle\" ou \"charger <id>\"."
	case errors.Is(err, engine.ErrGameOver):
		msg = "La partie est terminée. Tapez \"nouvelle\" ou \"charger <id>\"."
	case errors.Is(err, engine.ErrSkillCheckPending):
		msg = "Un jet de compétence est en attente. Tapez \"jet\"."
	case errors.Is(err, session.ErrNotFound):
		msg = "Partie introuvable."
	default:
		msg = err.Error()
	}
	c.logger.Debug("command failed", zap.Error(err))
	c.writeLine("\n" + Colorf(BrightRed, "! %s", msg))
	return false
}

// show renders a view of the active session.
func (c *Console) show(render func(st *session.State) string) {
	var text string
	if c.report(c.engine.View(func(st *session.State) { text = render(st) })) {
		c.write(text)
	}
}

// afterTurn reports a pending roll or the end of the game.
func (c *Console) afterTurn() {
	var lines []string
	_ = c.engine.View(func(st *session.State) {
		if st.PendingCheck != nil {
			lines = append(lines, RenderPendingCheck(st.PendingCheck))
		}
		if st.IsOver() {
			lines = append(lines, Colorf(BrightRed, "FIN DE PARTIE: %s", st.GameOverReason))
		}
	})
	c.write("\n")
	for _, l := range lines {
		c.writeLine(l)
	}
}

func (c *Console) illustrate(ctx context.Context, args []string) {
	id := ""
	if len(args) > 0 {
		id = args[0]
	} else {
		_ = c.engine.View(func(st *session.State) {
			for i := len(st.Transcript) - 1; i >= 0; i-- {
				if m := st.Transcript[i]; m.Role == history.Model && !m.IsSystem && m.Content != "" {
					id = m.ID
					return
				}
			}
		})
	}
	if id == "" {
		c.writeLine(Colorize(Red, "Aucun message à illustrer."))
		return
	}
	if c.report(c.engine.IllustrateMessage(ctx, id)) {
		c.writeLine(Colorize(Dim, "Illustration en cours…"))
	}
}

func (c *Console) spend(ctx context.Context, cmd *Command, args []string) {
	if len(args) != 2 {
		c.writeLine(Colorf(Red, "Usage: %s %s", cmd.Name, cmd.Usage))
		return
	}
	k, err := stat.ParseKey(args[0])
	if !c.report(err) {
		return
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n <= 0 {
		c.writeLine(Colorf(Red, "Nombre de points invalide: %q", args[1]))
		return
	}
	if c.report(c.engine.SpendStatPoints(ctx, k, n)) {
		c.show(RenderStatus)
	}
}

func (c *Console) settings(ctx context.Context, cmd *Command, parsed ParseResult) {
	if len(parsed.Args) < 2 {
		c.writeLine(Colorf(Red, "Usage: %s %s", cmd.Name, cmd.Usage))
		return
	}
	var (
		sampling  session.Sampling
		narration session.Narration
	)
	if !c.report(c.engine.View(func(st *session.State) {
		sampling, narration = st.Sampling, st.Narration
	})) {
		return
	}
	value := strings.TrimSpace(strings.TrimPrefix(parsed.RawArgs, parsed.Args[0]))
	if err := ApplySetting(&sampling, &narration, strings.ToLower(parsed.Args[0]), value); err != nil {
		c.writeLine(Colorf(Red, "%v", err))
		return
	}
	if c.report(c.engine.UpdateSettings(ctx, sampling, narration)) {
		c.writeLine(Colorf(Dim, "%s = %s", parsed.Args[0], value))
	}
}

// ApplySetting parses value into the setting named key.
func ApplySetting(s *session.Sampling, n *session.Narration, key, value string) error {
	parseFloat := func() (float32, error) {
		f, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return 0, fmt.Errorf("%s: nombre attendu, reçu %q", key, value)
		}
		return float32(f), nil
	}
	parseInt := func() (int32, error) {
		i, err := strconv.ParseInt(value, 10, 32)
		if err != nil || i <= 0 {
			return 0, fmt.Errorf("%s: entier positif attendu, reçu %q", key, value)
		}
		return int32(i), nil
	}
	var err error
	switch key {
	case "temperature":
		s.Temperature, err = parseFloat()
	case "top_p":
		s.TopP, err = parseFloat()
	case "top_k":
		s.TopK, err = parseInt()
	case "max_tokens":
		s.MaxOutputTokens, err = parseInt()
	case "ton":
		n.Tone, n.CustomTone = session.CustomTone, value
		for _, t := range []session.Tone{session.Neutral, session.Humorous, session.Dramatic, session.Poetic} {
			if strings.EqualFold(value, string(t)) {
				n.Tone, n.CustomTone = t, ""
			}
		}
	case "pov":
		switch value {
		case "1":
			n.PointOfView = session.FirstPerson
		case "2":
			n.PointOfView = session.SecondPerson
		case "3":
			n.PointOfView = session.ThirdPerson
		default:
			err = fmt.Errorf("pov: 1, 2 ou 3 attendu, reçu %q", value)
		}
	case "maturite":
		switch strings.ToLower(value) {
		case "enfant":
			n.Maturity = session.Child
		case "normal":
			n.Maturity = session.Normal
		case "adulte":
			n.Maturity = session.Adult
		default:
			err = fmt.Errorf("maturite: enfant, normal ou adulte attendu, reçu %q", value)
		}
	case "instruction":
		n.CustomInstruction = value
	default:
		err = fmt.Errorf("réglage inconnu %q", key)
	}
	return err
}

// newAdventure walks the player through the creation screen. Blank answers
// are written by the assistant where it can.
func (c *Console) newAdventure(ctx context.Context) error {
	d := engine.Draft{Narration: session.DefaultNarration}
	var err error
	if d.Premise, err = c.field(ctx, "Prémisse (vide = suggestion):", engine.PremiseField, &d); err != nil {
		return err
	}
	if d.Race, err = c.ask(ctx, "Race (vide = Humain):"); err != nil {
		return err
	}
	if d.Race == "" {
		d.Race = "Humain"
	}
	if d.Class, err = c.ask(ctx, "Classe (vide = Aventurier):"); err != nil {
		return err
	}
	if d.Class == "" {
		d.Class = "Aventurier"
	}
	if d.Name, err = c.field(ctx, "Nom (vide = suggestion):", engine.NameField, &d); err != nil {
		return err
	}
	if d.Look, err = c.field(ctx, "Apparence (vide = suggestion):", engine.LookField, &d); err != nil {
		return err
	}
	if d.Background, err = c.field(ctx, "Histoire (vide = suggestion):", engine.BackgroundField, &d); err != nil {
		return err
	}
	tone, err := c.ask(ctx, "Ton (Neutre, Humoristique, Dramatique, Poétique ou libre; vide = Neutre):")
	if err != nil {
		return err
	}
	if tone != "" {
		s := session.DefaultSampling
		if err := ApplySetting(&s, &d.Narration, "ton", tone); err != nil {
			return err
		}
	}

	c.writeLine(Colorize(Dim, "Création de l'aventure…"))
	_, err = c.engine.StartAdventure(ctx, engine.Adventure{
		Premise: d.Premise,
		Character: character.Creation{
			Name:       d.Name,
			Race:       d.Race,
			Class:      d.Class,
			Look:       d.Look,
			Background: d.Background,
		},
		Narration: d.Narration,
	})
	return err
}

// field asks for one creation field, falling back to the assistant on a blank
// answer and re-asking when the assistant fails.
func (c *Console) field(ctx context.Context, question string, f engine.Field, d *engine.Draft) (string, error) {
	for {
		answer, err := c.ask(ctx, question)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		text, err := c.engine.Suggest(ctx, f, *d)
		if err != nil {
			c.report(err)
			continue
		}
		c.writeLine(Colorize(White, text))
		return text, nil
	}
}
