package util

import (
	"fmt"
	"os"
)

// WriteToFile writes the given lines to savePath separated by new lines
func WriteToFile(savePath string, lines ...string) error {
	content := ""
	for _, l := range lines {
		content = fmt.Sprintf("%s%s\n", content, l)
	}
	return os.WriteFile(savePath, []byte(content), 0644)
}
