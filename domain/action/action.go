// Package action sends mouse and keyboard input to the bound game window.
package action

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/go-vgo/robotgo"

	"github.com/soocke/critter-bot-go/config"
)

// Sink is the input surface the battle controller drives. Implementations
// translate viewport-relative bindings into real input events.
type Sink interface {
	// ClickSkillSlot clicks the on-screen slot (1-based, within the
	// visible page).
	ClickSkillSlot(slot int) error
	// PageNext and PagePrev turn the skill bar one page.
	PageNext() error
	PagePrev() error
	// ClickCapture presses the capture button on the battle HUD.
	ClickCapture() error
	// ClickContinue dismisses the end-of-battle screen.
	ClickContinue() error
	// ClickKeep confirms keeping a captured creature.
	ClickKeep() error
	// ClickAt clicks an arbitrary viewport-relative point. Used by the
	// session search loop for encounter spots.
	ClickAt(p config.Point) error
}

// Robot sends input through robotgo, offset by the viewport origin. Each
// click is followed by a short jittered delay so event bursts do not
// outrun the game's UI.
type Robot struct {
	logger   *slog.Logger
	bindings config.Bindings
	originX  int
	originY  int
	delay    time.Duration
}

var _ Sink = (*Robot)(nil)

// NewRobot builds a Sink for a viewport whose top-left screen corner is
// (originX, originY).
func NewRobot(logger *slog.Logger, bindings config.Bindings, originX, originY int, delay time.Duration) *Robot {
	return &Robot{
		logger:   logger,
		bindings: bindings,
		originX:  originX,
		originY:  originY,
		delay:    delay,
	}
}

func (r *Robot) ClickSkillSlot(slot int) error {
	if slot < 1 || slot > len(r.bindings.SkillSlots) {
		return fmt.Errorf("action: skill slot %d out of range 1..%d", slot, len(r.bindings.SkillSlots))
	}
	return r.click("skill_slot", r.bindings.SkillSlots[slot-1])
}

func (r *Robot) PageNext() error      { return r.click("page_next", r.bindings.PageNext) }
func (r *Robot) PagePrev() error      { return r.click("page_prev", r.bindings.PagePrev) }
func (r *Robot) ClickCapture() error  { return r.click("capture", r.bindings.Capture) }
func (r *Robot) ClickContinue() error { return r.click("continue", r.bindings.Continue) }
func (r *Robot) ClickKeep() error     { return r.click("keep", r.bindings.Keep) }

func (r *Robot) ClickAt(p config.Point) error { return r.click("point", p) }

func (r *Robot) click(name string, p config.Point) error {
	x := r.originX + p.X
	y := r.originY + p.Y
	robotgo.Move(x, y)
	robotgo.MilliSleep(20)
	robotgo.Click("left", false)
	r.logger.Debug("click",
		slog.String("target", name),
		slog.Int("x", x),
		slog.Int("y", y),
	)
	r.sleep()
	return nil
}

// sleep pauses for the configured delay plus up to 40ms of jitter.
func (r *Robot) sleep() {
	d := r.delay + time.Duration(rand.Intn(40))*time.Millisecond
	time.Sleep(d)
}
