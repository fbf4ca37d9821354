package place

import (
	"io"
	"strings"

	"github.com/manifoldco/promptui"

	"tableflip.dev/notiq/pkg/places"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func (p *Place) prompt(candidates []places.Candidate) (int, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "➜  {{ .Name | bold }} {{ .State | green }} {{ .Country | green }}",
		Inactive: "   {{ .Name }} {{ .State | cyan }} {{ .Country | cyan }}",
		Selected: "{{ .Name | bold }}",
		Details: `
--------- Location ----------
{{ .Address }}
{{ printf "%.5f, %.5f" .Latitude .Longitude }}
`,
	}

	searcher := func(input string, index int) bool {
		name := strings.ToLower(candidates[index].Name + candidates[index].Address)
		return strings.Contains(strings.Replace(name, " ", "", -1), strings.Replace(strings.ToLower(input), " ", "", -1))
	}

	prompt := promptui.Select{
		HideHelp:  true,
		Label:     "Location",
		Items:     candidates,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
		Stdin:     p.In,
		Stdout:    nopCloser{p.out()},
	}
	i, _, err := prompt.Run()
	return i, err
}
