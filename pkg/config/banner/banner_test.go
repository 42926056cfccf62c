package banner

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyhttpd/pkg/config"
)

func TestPrint(t *testing.T) {
	eff := config.EffectiveConfigResult{Config: &config.Config{}, Source: "defaults+env"}
	eff.Config.Journal.Enabled = true
	require.NoError(t, config.ValidateConfig(&eff))

	var buf bytes.Buffer
	Print(&buf, eff, "v1.2.3")
	out := buf.String()

	assert.Contains(t, out, "Listen:    http://127.0.0.1:50000")
	assert.Contains(t, out, "Version:   v1.2.3")
	assert.Contains(t, out, "Config:    defaults+env")
	assert.Contains(t, out, "Workers:   8")
	assert.Contains(t, out, "Read buf:  512 B")
	assert.Contains(t, out, "- Journal: on (./.journal)")
	assert.Contains(t, out, "- Metrics: off")
}

func TestPrintWithoutConfig(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, config.EffectiveConfigResult{Addr: "0.0.0.0:1"}, "")
	assert.Contains(t, buf.String(), "http://0.0.0.0:1")
	assert.NotContains(t, buf.String(), "Workers")
}
