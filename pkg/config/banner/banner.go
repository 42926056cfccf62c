package banner

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"tinyhttpd/pkg/config"
)

const banner = `
 _   _             _     _   _             _
| |_(_)_ __  _   _| |__ | |_| |_ _ __   __| |
| __| | '_ \| | | | '_ \| __| __| '_ \ / _' |
| |_| | | | | |_| | | | | |_| |_| |_) | (_| |
 \__|_|_| |_|\__, |_| |_|\__|\__| .__/ \__,_|
             |___/              |_|
`

// Print writes the startup banner for eff.
func Print(w io.Writer, eff config.EffectiveConfigResult, version string) {
	addr := eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}
	src := eff.Source
	if src == "" {
		src = "defaults"
	}

	fmt.Fprint(w, banner)
	fmt.Fprintln(w, "== Config =====================================================")
	fmt.Fprintf(w, "Listen:    http://%s\n", addr)
	if version != "" {
		fmt.Fprintf(w, "Version:   %s\n", version)
	}
	fmt.Fprintf(w, "Config:    %s\n", src)
	if eff.Path != "" {
		fmt.Fprintf(w, "File:      %s\n", eff.Path)
	}
	if eff.Config == nil {
		fmt.Fprintln(w, "===============================================================")
		return
	}
	c := eff.Config
	fmt.Fprintf(w, "Web root:  %s (index %s)\n", c.Server.WebRoot, c.Server.Index)
	fmt.Fprintf(w, "Workers:   %d\n", c.Pool.Size())
	fmt.Fprintf(w, "Read buf:  %s\n", humanize.IBytes(uint64(c.Server.ReadBufferSize.Int64())))

	fmt.Fprintln(w, "\n== Features ===================================================")
	feature(w, "Metrics", c.Metrics.Enabled, "http://"+c.MetricsAddr()+"/metrics")
	feature(w, "Journal", c.Journal.Enabled, c.Journal.Path)
	feature(w, "Report", c.Report.Enabled, c.Report.Cron)
	feature(w, "Console", c.Console.IsEnabled(), "type 'exit' to stop")
	fmt.Fprintln(w, strings.Repeat("=", 63))
}

func feature(w io.Writer, name string, on bool, detail string) {
	if on {
		fmt.Fprintf(w, "- %s: on (%s)\n", name, detail)
		return
	}
	fmt.Fprintf(w, "- %s: off\n", name)
}
