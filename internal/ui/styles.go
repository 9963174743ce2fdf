package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorVerified  = lipgloss.Color("78")  // Green
	colorFlagged   = lipgloss.Color("203") // Red
	colorPending   = lipgloss.Color("221") // Yellow
)

// SelectedItem style for the currently highlighted item.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalItem style for unselected items.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// ActiveTab style for the selected scope tab.
var ActiveTab = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 2)

// InactiveTab style for the other scope tab.
var InactiveTab = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 2)

// CategoryBadge style for category labels.
var CategoryBadge = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Background(lipgloss.Color("236")).
	Padding(0, 1).
	MarginRight(1)

// VerifiedBadge style for community-verified items.
var VerifiedBadge = lipgloss.NewStyle().
	Foreground(colorVerified).
	Bold(true)

// PendingMark style for optimistic, unconfirmed comments.
var PendingMark = lipgloss.NewStyle().
	Foreground(colorPending)

// TrustVerified colors the verify share of the trust bar.
var TrustVerified = lipgloss.NewStyle().Foreground(colorVerified)

// TrustFlagged colors the flag share of the trust bar.
var TrustFlagged = lipgloss.NewStyle().Foreground(colorFlagged)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for the transient error bar.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorFlagged).
	Padding(0, 1)

// DetailHeader style for the detail view's author line.
var DetailHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// MutedText style for timestamps and secondary detail.
var MutedText = lipgloss.NewStyle().
	Foreground(colorSecondary)
