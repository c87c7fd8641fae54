package render

// Palette colours groups in first-seen order, wrapping when exhausted.
var Palette = []string{
	"#2DB682", "#0171E3", "#E07C3A", "#9B59B6", "#E74C3C",
	"#1ABC9C", "#F1C40F", "#3498DB", "#E91E63", "#00BCD4",
}

// Colours outside the group palette.
const (
	UngroupedColor = "#97C2FC"
	EdgeColor      = "#848484"
	FocusColor     = "#FFFFFF"
	LabelColor     = "#E0E0E0"
)

// GroupColors assigns a palette colour to each group. The empty group maps to
// UngroupedColor.
func GroupColors(groups []string) map[string]string {
	out := make(map[string]string, len(groups)+1)
	out[""] = UngroupedColor
	i := 0
	for _, g := range groups {
		if _, seen := out[g]; seen {
			continue
		}
		out[g] = Palette[i%len(Palette)]
		i++
	}
	return out
}
