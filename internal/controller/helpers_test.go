package controller

import (
	"fmt"
	"io"
	"strings"
)

func path(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}
