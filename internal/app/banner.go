package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/mdp/qrterminal/v3"
)

// PrintBanner announces where the UI is served and, when withQR is set,
// renders the URL as a terminal QR code so another device can open it.
func PrintBanner(w io.Writer, url string, models []string, withQR bool) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 64))
	fmt.Fprintf(w, "Commit message UI: %s\n", url)
	fmt.Fprintf(w, "Models: %s\n", strings.Join(models, ", "))
	fmt.Fprintln(w, strings.Repeat("=", 64))

	if !withQR {
		return
	}

	cfg := qrterminal.Config{
		Level:      qrterminal.M,
		Writer:     w,
		HalfBlocks: true,
		QuietZone:  1,
	}
	qrterminal.GenerateWithConfig(url, cfg)

	fmt.Fprintln(w, strings.Repeat("=", 64)+"\n")
}
