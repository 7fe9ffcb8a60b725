// Package icon provides a flexible multi-variant rendering engine for UI symbols and feedback indicators.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII, kaomoji,
// or Unicode squares depending on user preference.
package icon

import (
	"github.com/mpx-cli/mpx/key"
	"github.com/spf13/viper"
)

// Visual Variant Constants - these define the supported aesthetic styles for icon rendering.
const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Play Icon = iota
	Pause
	Stop
	Seek
	Buffering
	Volume
	Mute
	Screenshot
	Subtitle
	Progress
	Success
	Fail
)

// iconDef encapsulates the visual representations of a single UI symbol across all supported variants.
type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

var icons = map[Icon]*iconDef{
	Play:       {emoji: "▶️", nerd: "", plain: ">", kaomoji: "(ﾉ◕ヮ◕)ﾉ", squares: "▶"},
	Pause:      {emoji: "⏸️", nerd: "", plain: "||", kaomoji: "(－_－) zzZ", squares: "⏸"},
	Stop:       {emoji: "⏹️", nerd: "", plain: "[]", kaomoji: "(￣ー￣)", squares: "■"},
	Seek:       {emoji: "⏩", nerd: "", plain: ">>", kaomoji: "ε=ε=┌( >_<)┘", squares: "▷▷"},
	Buffering:  {emoji: "⏳", nerd: "", plain: "...", kaomoji: "(・_・;)", squares: "◴"},
	Volume:     {emoji: "🔊", nerd: "", plain: "vol", kaomoji: "ヽ(°〇°)ﾉ", squares: "◀)"},
	Mute:       {emoji: "🔇", nerd: "", plain: "mute", kaomoji: "(˘_˘)", squares: "◀x"},
	Screenshot: {emoji: "📸", nerd: "", plain: "shot", kaomoji: "[◉°]", squares: "▣"},
	Subtitle:   {emoji: "💬", nerd: "", plain: "sub", kaomoji: "(・ω・)ﾉ", squares: "▤"},
	Progress:   {emoji: "👀", nerd: "", plain: "~", kaomoji: "(o_O)", squares: "▬"},
	Success:    {emoji: "🎉", nerd: "", plain: "ok", kaomoji: "(ᵔ◡ᵔ)", squares: "✓"},
	Fail:       {emoji: "💀", nerd: "", plain: "x", kaomoji: "(╯°□°)╯︵ ┻━┻", squares: "✗"},
}

// Get retrieves the visual representation for the receiver Def based on the global icons variant configuration.
func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return ""
	}
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	d, ok := icons[i]
	if !ok {
		return ""
	}
	return d.Get()
}
