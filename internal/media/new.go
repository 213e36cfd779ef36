package media

import "github.com/nguyentantai21042004/slide-flow/pkg/executor"

type implProber struct {
	executor executor.Executor
	binary   string
}

// New creates a Prober backed by ffprobe. An empty binary means "ffprobe"
// from PATH.
func New(exec executor.Executor, binary string) Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &implProber{
		executor: exec,
		binary:   binary,
	}
}
