package text

import (
	"bytes"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/davidmdm/ansi"
)

type File struct {
	Name    string
	Content string
}

// Diff returns a unified diff between the two files with the requested lines
// of context. An empty string means the contents are equal.
func Diff(expected, actual File, context int, color bool) string {
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected.Content),
		B:        difflib.SplitLines(actual.Content),
		FromFile: expected.Name,
		ToFile:   actual.Name,
		Context:  context,
	})
	if color {
		return colorize(diff)
	}
	return diff
}

var (
	green = ansi.MakeStyle(ansi.FgGreen)
	red   = ansi.MakeStyle(ansi.FgRed)
)

func colorize(value string) string {
	lines := strings.Split(value, "\n")
	colorized := make([]string, len(lines))
	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '-':
			colorized[i] = green.Sprint(line)
		case '+':
			colorized[i] = red.Sprint(line)
		default:
			colorized[i] = line
		}
	}

	return strings.Join(colorized, "\n")
}

func ToYamlFile(name string, value any) (File, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(2)
	err := encoder.Encode(value)
	return File{Name: name, Content: buffer.String()}, err
}
