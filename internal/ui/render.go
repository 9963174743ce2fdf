package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dem-News/demnews/internal/news"
	"github.com/Dem-News/demnews/internal/store"
)

const trustBarWidth = 20

// RenderTabs renders the scope switcher line.
func RenderTabs(active store.Scope) string {
	render := func(s store.Scope, label string) string {
		if s == active {
			return ActiveTab.Render(label)
		}
		return InactiveTab.Render(label)
	}
	return render(store.ScopeLocal, "Local") + render(store.ScopeExplore, "Explore")
}

// RenderFeed renders the item list for the feed screen.
func RenderFeed(items []*news.NewsItem, cursor, width, height int) string {
	if len(items) == 0 {
		return NormalItem.Render("No news here yet.") + "\n"
	}

	var b strings.Builder
	visible := height
	if visible < 1 {
		visible = 1
	}
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	for i := start; i < len(items) && i < start+visible; i++ {
		line := feedLine(items[i], width)
		if i == cursor {
			b.WriteString(SelectedItem.Render(line))
		} else {
			b.WriteString(NormalItem.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func feedLine(item *news.NewsItem, width int) string {
	trust := item.Trust()
	badge := CategoryBadge.Render(item.Category)
	mark := ""
	if trust.IsVerified {
		mark = VerifiedBadge.Render("✓ ") // community verified
	}
	summary := fmt.Sprintf(" %s · ♥%d 💬%d", relativeTime(item.CreatedAt), len(item.Likes), len(item.Comments))

	content := strings.ReplaceAll(item.Content, "\n", " ")
	avail := width - lipgloss.Width(badge) - lipgloss.Width(mark) - lipgloss.Width(summary) - 4
	if avail > 0 && len(content) > avail {
		content = content[:avail-1] + "…"
	}
	return badge + mark + content + MutedText.Render(summary)
}

// RenderTrustBar renders the community trust split as a colored bar
// with percentages.
func RenderTrustBar(m news.TrustMetrics) string {
	verified := int(m.VerifyPercent / 100 * trustBarWidth)
	if verified > trustBarWidth {
		verified = trustBarWidth
	}
	bar := TrustVerified.Render(strings.Repeat("█", verified)) +
		TrustFlagged.Render(strings.Repeat("█", trustBarWidth-verified))
	label := fmt.Sprintf(" %.0f%% verify / %.0f%% flag (%d responses)",
		m.VerifyPercent, m.FlagPercent, m.TotalResponses)
	if m.TotalResponses == 0 {
		label = " no community responses yet"
	}
	return bar + MutedText.Render(label)
}

// RenderDetail renders the full item view with trust and comments.
func RenderDetail(item *news.NewsItem, width int) string {
	var b strings.Builder

	b.WriteString(DetailHeader.Render("@"+item.Author.Username) +
		MutedText.Render("  "+relativeTime(item.CreatedAt)) + "\n")
	b.WriteString(CategoryBadge.Render(item.Category))
	trust := item.Trust()
	if trust.IsVerified {
		b.WriteString(VerifiedBadge.Render("✓ community verified"))
	}
	b.WriteString("\n\n")
	b.WriteString(item.Content + "\n\n")
	b.WriteString(RenderTrustBar(trust) + "\n")
	b.WriteString(MutedText.Render(fmt.Sprintf("♥ %d likes · %d verifications · %d flags",
		len(item.Likes), len(item.Verifications), len(item.Flags))) + "\n")

	if len(item.Comments) > 0 {
		b.WriteString("\n" + DetailHeader.Render("Comments") + "\n")
		for _, c := range item.Comments {
			author := "@" + c.Author.Username
			if c.Pending {
				b.WriteString(PendingMark.Render(author+" (sending…)") + " " + c.Content + "\n")
				continue
			}
			b.WriteString(MutedText.Render(author) + " " + c.Content + "\n")
		}
	}
	return b.String()
}

// RenderStatusBar renders the bottom key-hint bar.
func RenderStatusBar(width int, hints [][2]string, note string) string {
	var parts []string
	for _, h := range hints {
		parts = append(parts, StatusBarKey.Render(h[0])+StatusBarText.Render(" "+h[1]))
	}
	line := strings.Join(parts, StatusBarText.Render("  "))
	if note != "" {
		line += StatusBarText.Render("  ") + StatusBarText.Render(note)
	}
	return StatusBar.Width(width).Render(line)
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
