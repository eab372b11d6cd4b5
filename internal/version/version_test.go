package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "0.3.0", GitSHA: "d7a0426330bb", BuildTime: "2024-06-01T08:00:00Z"}
	assert.Equal(t, "trajectory-report 0.3.0 (d7a0426, built 2024-06-01T08:00:00Z)", info.String())
}
