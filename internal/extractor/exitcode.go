package extractor

// ExitCode is the process status reported by an extraction run.
type ExitCode int

const (
	Success           ExitCode = 0
	Unexpected        ExitCode = 1
	DependencyMissing ExitCode = 2
	NoDevice          ExitCode = 3
	CopyFailed        ExitCode = 4
	Cancelled         ExitCode = 130
)

func (c ExitCode) String() string {
	switch c {
	case Success:
		return "success"
	case DependencyMissing:
		return "dependency-missing"
	case NoDevice:
		return "no-device"
	case CopyFailed:
		return "copy-failed"
	case Cancelled:
		return "cancelled"
	}
	return "unexpected"
}
