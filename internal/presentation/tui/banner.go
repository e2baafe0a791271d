package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`                         __ _`, "#818cf8"},
	{` _ __  _ __ ___   ___   / _| | _____      __`, "#a78bfa"},
	{`| '_ \| '__/ _ \ / __| | |_| |/ _ \ \ /\ / /`, "#c084fc"},
	{`| |_) | | | (_) | (__  |  _| | (_) \ V  V /`, "#e879f9"},
	{`| .__/|_|  \___/ \___| |_| |_|\___/ \_/\_/`, "#f472b6"},
	{`|_|`, "#fb7185"},
}

// PrintBanner writes the colored banner to w using the terminal's color profile.
func PrintBanner(w io.Writer) {
	output := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, output.String(l.text).Foreground(output.Color(l.color)))
	}
	fmt.Fprintln(w)
}
