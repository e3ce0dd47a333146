package domain

// ColorTheme holds the presentation classes of one palette entry.
type ColorTheme struct {
	Name    string `json:"name"`
	Bg      string `json:"bg"`
	Text    string `json:"text"`
	TagBg   string `json:"tagBg"`
	TagText string `json:"tagText"`
	Border  string `json:"border"`
	Dot     string `json:"dot"`
}

// Palette is the fixed set of card themes. The first entry is the default.
var Palette = []ColorTheme{
	{Name: "white", Bg: "bg-white", Text: "text-slate-800", TagBg: "bg-slate-100", TagText: "text-slate-700", Border: "border-slate-300", Dot: "bg-slate-400"},
	{Name: "rose", Bg: "bg-rose-100", Text: "text-rose-800", TagBg: "bg-rose-200/70", TagText: "text-rose-900", Border: "border-rose-300", Dot: "bg-rose-400"},
	{Name: "sky", Bg: "bg-sky-100", Text: "text-sky-800", TagBg: "bg-sky-200/70", TagText: "text-sky-900", Border: "border-sky-300", Dot: "bg-sky-400"},
	{Name: "teal", Bg: "bg-teal-100", Text: "text-teal-800", TagBg: "bg-teal-200/70", TagText: "text-teal-900", Border: "border-teal-300", Dot: "bg-teal-400"},
	{Name: "amber", Bg: "bg-amber-100", Text: "text-amber-800", TagBg: "bg-amber-200/70", TagText: "text-amber-900", Border: "border-amber-300", Dot: "bg-amber-400"},
	{Name: "violet", Bg: "bg-violet-100", Text: "text-violet-800", TagBg: "bg-violet-200/70", TagText: "text-violet-900", Border: "border-violet-300", Dot: "bg-violet-400"},
	{Name: "lime", Bg: "bg-lime-100", Text: "text-lime-800", TagBg: "bg-lime-200/70", TagText: "text-lime-900", Border: "border-lime-300", Dot: "bg-lime-400"},
	{Name: "slate", Bg: "bg-slate-200", Text: "text-slate-800", TagBg: "bg-slate-300/70", TagText: "text-slate-900", Border: "border-slate-400", Dot: "bg-slate-500"},
}

// DefaultColor is the theme name used when none is chosen.
const DefaultColor = "white"

// ThemeFor returns the theme with the given name, falling back to the default entry.
func ThemeFor(name string) ColorTheme {
	if t, ok := LookupTheme(name); ok {
		return t
	}
	return Palette[0]
}

// LookupTheme reports whether name is a palette entry.
func LookupTheme(name string) (ColorTheme, bool) {
	for _, t := range Palette {
		if t.Name == name {
			return t, true
		}
	}
	return ColorTheme{}, false
}
