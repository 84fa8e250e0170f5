package reporting

import (
	"fmt"
	"io"
)

// WriteList prints the registered test names in registration order.
func WriteList(w io.Writer, names []string) {
	fmt.Fprintln(w, "Unit tests:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", name)
	}
}
