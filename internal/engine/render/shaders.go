package render

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed shaders
var shaderFS embed.FS

const includeDirective = "//#include "

// loadShader returns the named shader source with include lines expanded.
func loadShader(name string) (string, error) {
	src, err := shaderFS.ReadFile("shaders/" + name)
	if err != nil {
		return "", fmt.Errorf("shader %s: %w", name, err)
	}

	var b strings.Builder
	for _, line := range strings.SplitAfter(string(src), "\n") {
		inc, ok := strings.CutPrefix(strings.TrimSpace(line), includeDirective)
		if !ok {
			b.WriteString(line)
			continue
		}
		body, err := shaderFS.ReadFile("shaders/" + strings.TrimSpace(inc))
		if err != nil {
			return "", fmt.Errorf("shader %s: include %s: %w", name, inc, err)
		}
		b.Write(body)
	}
	return b.String(), nil
}

func mustShader(name string) string {
	src, err := loadShader(name)
	if err != nil {
		panic(err)
	}
	return src
}
