package validation

import "regexp"

var sceneNameRe = regexp.MustCompile(`class\s+(\w+)\s*\(\s*Scene\s*\)`)

// ExtractSceneClass returns the name of the first Scene subclass defined in
// the source, or an empty string if none is found. The renderer passes this
// name to manim on the command line.
func ExtractSceneClass(source string) string {
	m := sceneNameRe.FindStringSubmatch(source)
	if m == nil {
		return ""
	}
	return m[1]
}
