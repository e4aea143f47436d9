package challenge

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ErrScriptNotFound means the page carried no inline script long enough to
// be a challenge. Short fragments are inline tracking stubs, not the gate.
var ErrScriptNotFound = errors.New("challenge script not found")

// minScriptLen is the floor below which captured script text is treated as
// "no script found" rather than an empty success.
const minScriptLen = 100

// ExtractScript returns the text of the first non-empty inline <script>
// element in page. It runs a single streaming scan and stops as soon as the
// first qualifying script closes; later scripts are never read.
func ExtractScript(page []byte) (string, error) {
	z := html.NewTokenizer(bytes.NewReader(page))

	inScript := false
	var script strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", err
			}
			return "", ErrScriptNotFound
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "script" {
				inScript = true
			}
		case html.TextToken:
			if inScript {
				script.Write(z.Text())
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) != "script" {
				continue
			}
			inScript = false
			if script.Len() == 0 {
				continue
			}
			if script.Len() < minScriptLen {
				return "", ErrScriptNotFound
			}
			return script.String(), nil
		}
	}
}
