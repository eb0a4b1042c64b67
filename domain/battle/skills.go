package battle

import (
	"fmt"
	"log/slog"

	"github.com/soocke/critter-bot-go/domain/action"
)

// SkillNavigator tracks which skill-bar page is visible and turns pages to
// reach a requested skill. The HUD resets to the first page at the start of
// every battle, so the tracked page is only valid between Reset calls.
type SkillNavigator struct {
	logger     *slog.Logger
	sink       action.Sink
	skillCount int
	pageSize   int
	page       int
}

// NewSkillNavigator builds a navigator for a skill bar with skillCount
// skills shown pageSize at a time.
func NewSkillNavigator(logger *slog.Logger, sink action.Sink, skillCount, pageSize int) *SkillNavigator {
	return &SkillNavigator{
		logger:     logger,
		sink:       sink,
		skillCount: skillCount,
		pageSize:   pageSize,
		page:       1,
	}
}

// Reset marks the first page as visible. Call at battle start.
func (n *SkillNavigator) Reset() { n.page = 1 }

// Page returns the page the navigator believes is visible.
func (n *SkillNavigator) Page() int { return n.page }

// pageOf returns the 1-based page holding the skill.
func (n *SkillNavigator) pageOf(skill int) int { return (skill-1)/n.pageSize + 1 }

// slotOf returns the 1-based slot of the skill within its page.
func (n *SkillNavigator) slotOf(skill int) int { return (skill-1)%n.pageSize + 1 }

// Visible reports whether the skill sits on the currently visible page.
func (n *SkillNavigator) Visible(skill int) bool {
	return skill >= 1 && skill <= n.skillCount && n.pageOf(skill) == n.page
}

// VisibleSkills returns the inclusive skill range of the current page.
func (n *SkillNavigator) VisibleSkills() (lo, hi int) {
	lo = (n.page-1)*n.pageSize + 1
	hi = lo + n.pageSize - 1
	if hi > n.skillCount {
		hi = n.skillCount
	}
	return lo, hi
}

// Navigate turns pages one at a time until the skill's page is visible and
// returns how many page turns it issued. Navigating to an already visible
// skill issues nothing.
func (n *SkillNavigator) Navigate(skill int) (int, error) {
	if skill < 1 || skill > n.skillCount {
		return 0, fmt.Errorf("%w: skill %d out of range 1..%d", ErrNavigationFailed, skill, n.skillCount)
	}
	target := n.pageOf(skill)
	steps := 0
	for n.page != target {
		var err error
		if n.page < target {
			err = n.sink.PageNext()
			n.page++
		} else {
			err = n.sink.PagePrev()
			n.page--
		}
		if err != nil {
			return steps, fmt.Errorf("%w: page turn: %v", ErrNavigationFailed, err)
		}
		steps++
	}
	return steps, nil
}

// Invoke navigates to the skill's page and clicks its slot.
func (n *SkillNavigator) Invoke(skill int) error {
	steps, err := n.Navigate(skill)
	if err != nil {
		return err
	}
	slot := n.slotOf(skill)
	if err := n.sink.ClickSkillSlot(slot); err != nil {
		return fmt.Errorf("battle: invoke skill %d: %w", skill, err)
	}
	n.logger.Debug("skill invoked",
		slog.Int("skill", skill),
		slog.Int("page", n.page),
		slog.Int("slot", slot),
		slog.Int("page_turns", steps),
	)
	return nil
}
