package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/parlo/internal/ui/theme"
)

const bannerArt = `
 ██████╗  █████╗ ██████╗ ██╗      ██████╗
 ██╔══██╗██╔══██╗██╔══██╗██║     ██╔═══██╗
 ██████╔╝███████║██████╔╝██║     ██║   ██║
 ██╔═══╝ ██╔══██║██╔══██╗██║     ██║   ██║
 ██║     ██║  ██║██║  ██║███████╗╚██████╔╝
 ╚═╝     ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝ ╚═════╝`

const bannerCompact = "P A R L O"

// RenderBanner returns the banner in the primary color, or a compact
// fallback below 46 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 46 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
